package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/inkhaven/blog-backend/internal/mailer"
	"github.com/inkhaven/blog-backend/internal/models"
	"github.com/inkhaven/blog-backend/internal/store"
)

// In-memory store fakes backing the service tests. They mirror the GORM
// stores' contract: lookups return (nil, nil) when nothing matches, and the
// Consume/Revoke methods are conditional so race-loser behavior is testable.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Exact match, same as the production store's `email = ?`.
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) FindOrCreateByEmail(ctx context.Context, email string, name *string, role string) (*models.User, bool, error) {
	if existing, err := f.FindByEmail(ctx, email); err != nil || existing != nil {
		return existing, false, err
	}
	user := &models.User{Email: email, Name: name, Role: role, IsActive: true}
	if err := f.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (f *fakeUserStore) UpdatePasswordHash(_ context.Context, userID uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		u.PasswordHash = &hash
	}
	return nil
}

func (f *fakeUserStore) UpdateRole(_ context.Context, userID uuid.UUID, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		u.Role = role
	}
	return nil
}

func (f *fakeUserStore) List(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return false, nil
	}
	delete(f.users, id)
	return true, nil
}

func (f *fakeUserStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

type fakeTokenStore struct {
	mu      sync.Mutex
	users   *fakeUserStore
	refresh map[uuid.UUID]*models.RefreshToken
	magic   []*models.MagicLinkToken
	resets  []*models.PasswordResetToken
}

func newFakeTokenStore(users *fakeUserStore) *fakeTokenStore {
	return &fakeTokenStore{
		users:   users,
		refresh: make(map[uuid.UUID]*models.RefreshToken),
	}
}

func (f *fakeTokenStore) CreateRefresh(_ context.Context, token *models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	token.CreatedAt = time.Now()
	cp := *token
	f.refresh[token.ID] = &cp
	return nil
}

func (f *fakeTokenStore) FindRefreshByID(ctx context.Context, id uuid.UUID) (*models.RefreshToken, error) {
	f.mu.Lock()
	token, ok := f.refresh[id]
	if !ok {
		f.mu.Unlock()
		return nil, nil
	}
	cp := *token
	f.mu.Unlock()

	if f.users != nil {
		if u, _ := f.users.FindByID(ctx, cp.UserID); u != nil {
			cp.User = *u
		}
	}
	return &cp, nil
}

func (f *fakeTokenStore) RevokeRefresh(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token, ok := f.refresh[id]
	if !ok || token.RevokedAt != nil {
		return false, nil
	}
	token.RevokedAt = &at
	return true, nil
}

func (f *fakeTokenStore) CreateMagicLink(_ context.Context, token *models.MagicLinkToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = time.Now()
	cp := *token
	f.magic = append(f.magic, &cp)
	return nil
}

func (f *fakeTokenStore) FindMagicLink(_ context.Context, userID uuid.UUID, tokenHash string) (*models.MagicLinkToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.magic) - 1; i >= 0; i-- {
		if f.magic[i].UserID == userID && f.magic[i].TokenHash == tokenHash {
			cp := *f.magic[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeTokenStore) ConsumeMagicLink(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.magic {
		if t.ID == id {
			if t.UsedAt != nil {
				return false, nil
			}
			t.UsedAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTokenStore) CreateReset(_ context.Context, token *models.PasswordResetToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = time.Now()
	cp := *token
	f.resets = append(f.resets, &cp)
	return nil
}

func (f *fakeTokenStore) FindResetByHash(_ context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.resets {
		if t.TokenHash == tokenHash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeTokenStore) ConsumeReset(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.resets {
		if t.ID == id {
			if t.UsedAt != nil {
				return false, nil
			}
			t.UsedAt = &at
			return true, nil
		}
	}
	return false, nil
}

// expireMagicLinks backdates every stored magic link so expiry paths can be
// exercised without sleeping.
func (f *fakeTokenStore) expireMagicLinks() {
	f.mu.Lock()
	defer f.mu.Unlock()
	past := time.Now().Add(-time.Minute)
	for _, t := range f.magic {
		t.ExpiresAt = past
	}
}

func (f *fakeTokenStore) expireResets() {
	f.mu.Lock()
	defer f.mu.Unlock()
	past := time.Now().Add(-time.Minute)
	for _, t := range f.resets {
		t.ExpiresAt = past
	}
}

func (f *fakeTokenStore) resetCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.resets)
}

type fakeOAuthStore struct {
	mu       sync.Mutex
	users    *fakeUserStore
	accounts []*models.OAuthAccount
}

func newFakeOAuthStore(users *fakeUserStore) *fakeOAuthStore {
	return &fakeOAuthStore{users: users}
}

func (f *fakeOAuthStore) FindAccount(ctx context.Context, provider, providerID string) (*models.OAuthAccount, error) {
	f.mu.Lock()
	var found *models.OAuthAccount
	for _, a := range f.accounts {
		if a.Provider == provider && a.ProviderID == providerID {
			cp := *a
			found = &cp
			break
		}
	}
	f.mu.Unlock()

	if found != nil && f.users != nil {
		if u, _ := f.users.FindByID(ctx, found.UserID); u != nil {
			found.User = *u
		}
	}
	return found, nil
}

func (f *fakeOAuthStore) CreateAccount(_ context.Context, account *models.OAuthAccount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	account.CreatedAt = time.Now()
	cp := *account
	f.accounts = append(f.accounts, &cp)
	return nil
}

func (f *fakeOAuthStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.accounts)
}

type recordingSender struct {
	mu   sync.Mutex
	sent []mailer.Email
}

func (r *recordingSender) Send(_ context.Context, email mailer.Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, email)
	return nil
}

func (r *recordingSender) last() *mailer.Email {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return nil
	}
	cp := r.sent[len(r.sent)-1]
	return &cp
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

type fakePostStore struct {
	mu    sync.Mutex
	posts map[uuid.UUID]*models.BlogPost
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: make(map[uuid.UUID]*models.BlogPost)}
}

func (f *fakePostStore) Create(_ context.Context, post *models.BlogPost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	cp := *post
	f.posts[post.ID] = &cp
	return nil
}

func (f *fakePostStore) Save(_ context.Context, post *models.BlogPost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	post.UpdatedAt = time.Now()
	cp := *post
	f.posts[post.ID] = &cp
	return nil
}

func (f *fakePostStore) FindByID(_ context.Context, id uuid.UUID) (*models.BlogPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePostStore) FindAll(_ context.Context) ([]models.BlogPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.BlogPost, 0, len(f.posts))
	for _, p := range f.posts {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePostStore) FindPublished(_ context.Context, q store.PublishedQuery) ([]models.BlogPost, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BlogPost
	for _, p := range f.posts {
		if p.Status == models.PostStatusPublished {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakePostStore) FindPublishedBySlug(_ context.Context, slug string) (*models.BlogPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.Status == models.PostStatusPublished && p.Slug != nil && *p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePostStore) FindFeatured(_ context.Context, limit int) ([]models.BlogPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BlogPost
	for _, p := range f.posts {
		if p.Status == models.PostStatusPublished && p.IsFeatured {
			out = append(out, *p)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakePostStore) IncrementViews(_ context.Context, slug string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.Status == models.PostStatusPublished && p.Slug != nil && *p.Slug == slug {
			p.Views++
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePostStore) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return false, nil
	}
	delete(f.posts, id)
	return true, nil
}

var (
	_ store.UserStore  = (*fakeUserStore)(nil)
	_ store.TokenStore = (*fakeTokenStore)(nil)
	_ store.OAuthStore = (*fakeOAuthStore)(nil)
	_ store.PostStore  = (*fakePostStore)(nil)
	_ mailer.Sender    = (*recordingSender)(nil)
)
