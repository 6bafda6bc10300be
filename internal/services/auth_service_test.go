package services

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/inkhaven/blog-backend/internal/config"
	"github.com/inkhaven/blog-backend/internal/dto"
	"github.com/inkhaven/blog-backend/internal/mailer"
	"github.com/inkhaven/blog-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	svc    *AuthService
	users  *fakeUserStore
	tokens *fakeTokenStore
	oauth  *fakeOAuthStore
	sender *recordingSender
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	users := newFakeUserStore()
	tokens := newFakeTokenStore(users)
	oauth := newFakeOAuthStore(users)
	sender := &recordingSender{}

	cfg := &config.Config{
		MagicLinkTTL:     15 * time.Minute,
		PasswordResetTTL: 15 * time.Minute,
		MagicLinkBaseURL: "http://localhost:3001",
	}
	tokenSvc := NewTokenService(tokens, "access-secret", "refresh-secret", 15*time.Minute, "7d")

	return &authFixture{
		svc:    NewAuthService(users, tokens, oauth, tokenSvc, sender, cfg),
		users:  users,
		tokens: tokens,
		oauth:  oauth,
		sender: sender,
	}
}

// secretFromEmail pulls the raw one-time token out of the link in the last
// sent mail.
func secretFromEmail(t *testing.T, email *mailer.Email) string {
	t.Helper()
	require.NotNil(t, email)

	idx := strings.Index(email.TextBody, "http")
	require.GreaterOrEqual(t, idx, 0)

	u, err := url.Parse(email.TextBody[idx:])
	require.NoError(t, err)

	secret := u.Query().Get("token")
	require.NotEmpty(t, secret)
	return secret
}

func TestRegisterAndLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	name := "Alice"
	req := &dto.RegisterRequest{Email: "alice@example.com", Password: "correct horse battery", Name: &name}
	require.NoError(t, f.svc.Register(ctx, req))

	// Registration stores a hash, never the plaintext.
	user, err := f.users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotNil(t, user.PasswordHash)
	assert.NotEqual(t, req.Password, *user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)))
	assert.Equal(t, models.RoleMember, user.Role)

	resp, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "correct horse battery"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, user.ID, resp.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	req := &dto.RegisterRequest{Email: "alice@example.com", Password: "correct horse battery"}
	require.NoError(t, f.svc.Register(ctx, req))

	err := f.svc.Register(ctx, &dto.RegisterRequest{Email: "alice@example.com", Password: "another password"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, 1, f.users.count())
}

func TestLoginFailures(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Register(ctx, &dto.RegisterRequest{Email: "alice@example.com", Password: "correct horse battery"}))

	_, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Email lookup is exact, matching the database comparison.
	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "ALICE@example.com", Password: "correct horse battery"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Magic-link-only accounts have no password hash and fail the same way.
	_, _, err = f.users.FindOrCreateByEmail(ctx, "linkonly@example.com", nil, models.RoleMember)
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "linkonly@example.com", Password: "anything"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMagicLinkFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	// Requesting a link for an unknown address creates the account.
	require.NoError(t, f.svc.RequestMagicLink(ctx, "new@example.com"))
	assert.Equal(t, 1, f.users.count())
	assert.Equal(t, 1, f.sender.count())

	mail := f.sender.last()
	assert.Equal(t, "new@example.com", mail.To)
	assert.Contains(t, mail.TextBody, "email=new%40example.com")
	secret := secretFromEmail(t, mail)

	resp, err := f.svc.VerifyMagicLink(ctx, "new@example.com", secret)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "new@example.com", resp.User.Email)
	assert.Equal(t, models.RoleMember, resp.User.Role)

	// Single use.
	_, err = f.svc.VerifyMagicLink(ctx, "new@example.com", secret)
	assert.ErrorIs(t, err, ErrMagicLinkUsed)
}

func TestMagicLinkRejections(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestMagicLink(ctx, "alice@example.com"))
	secret := secretFromEmail(t, f.sender.last())

	// Wrong secret and wrong email are indistinguishable.
	_, err := f.svc.VerifyMagicLink(ctx, "alice@example.com", "wrong-secret")
	assert.ErrorIs(t, err, ErrInvalidMagicLink)
	_, err = f.svc.VerifyMagicLink(ctx, "other@example.com", secret)
	assert.ErrorIs(t, err, ErrInvalidMagicLink)

	// Expired links are called out as expired.
	f.tokens.expireMagicLinks()
	_, err = f.svc.VerifyMagicLink(ctx, "alice@example.com", secret)
	assert.ErrorIs(t, err, ErrMagicLinkExpired)
}

func TestVerifyMagicLinkConcurrentSingleWinner(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestMagicLink(ctx, "alice@example.com"))
	secret := secretFromEmail(t, f.sender.last())

	// Concurrent redemptions of one link: the conditional consume must admit
	// exactly one, and every loser sees the already-used error.
	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.VerifyMagicLink(ctx, "alice@example.com", secret)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrMagicLinkUsed)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestMagicLinkRequestReusesAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestMagicLink(ctx, "alice@example.com"))
	require.NoError(t, f.svc.RequestMagicLink(ctx, "alice@example.com"))

	assert.Equal(t, 1, f.users.count())
	assert.Equal(t, 2, f.sender.count())

	// Each request minted its own secret; both redeem independently.
	first := secretFromEmail(t, &f.sender.sent[0])
	second := secretFromEmail(t, &f.sender.sent[1])
	assert.NotEqual(t, first, second)

	_, err := f.svc.VerifyMagicLink(ctx, "alice@example.com", second)
	require.NoError(t, err)
	_, err = f.svc.VerifyMagicLink(ctx, "alice@example.com", first)
	require.NoError(t, err)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Register(ctx, &dto.RegisterRequest{Email: "alice@example.com", Password: "old password 123"}))
	require.NoError(t, f.svc.RequestPasswordReset(ctx, "alice@example.com"))

	mail := f.sender.last()
	assert.Equal(t, "alice@example.com", mail.To)
	assert.Contains(t, mail.TextBody, "/reset-password?token=")
	secret := secretFromEmail(t, mail)

	require.NoError(t, f.svc.ResetPassword(ctx, secret, "new password 456"))

	_, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "old password 123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "new password 456"})
	assert.NoError(t, err)

	// The token is single use.
	err = f.svc.ResetPassword(ctx, secret, "yet another password")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestResetPasswordConcurrentSingleWinner(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Register(ctx, &dto.RegisterRequest{Email: "alice@example.com", Password: "old password 123"}))
	require.NoError(t, f.svc.RequestPasswordReset(ctx, "alice@example.com"))
	secret := secretFromEmail(t, f.sender.last())

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.svc.ResetPassword(ctx, secret, "new password 456")
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrResetTokenInvalid)
		}
	}
	assert.Equal(t, 1, wins)

	_, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "new password 456"})
	assert.NoError(t, err)
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "ghost@example.com"))

	assert.Equal(t, 0, f.users.count())
	assert.Equal(t, 0, f.sender.count())
	assert.Equal(t, 0, f.tokens.resetCount())
}

func TestPasswordResetRejections(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Register(ctx, &dto.RegisterRequest{Email: "alice@example.com", Password: "old password 123"}))
	require.NoError(t, f.svc.RequestPasswordReset(ctx, "alice@example.com"))
	secret := secretFromEmail(t, f.sender.last())

	err := f.svc.ResetPassword(ctx, "bogus-secret", "new password")
	assert.ErrorIs(t, err, ErrResetTokenInvalid)

	f.tokens.expireResets()
	err = f.svc.ResetPassword(ctx, secret, "new password")
	assert.ErrorIs(t, err, ErrResetTokenExpired)

	// The expired token never touched the password.
	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "old password 123"})
	assert.NoError(t, err)
}

func TestGoogleLoginCreatesUserAndLink(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	profile := &GoogleProfile{ProviderID: "g-12345", Email: "alice@gmail.com", Name: "Alice"}

	resp, err := f.svc.HandleGoogleLogin(ctx, profile)
	require.NoError(t, err)
	assert.Equal(t, "alice@gmail.com", resp.User.Email)
	assert.Equal(t, 1, f.users.count())
	assert.Equal(t, 1, f.oauth.count())

	// Same external identity maps to the same user, without a second link row.
	again, err := f.svc.HandleGoogleLogin(ctx, profile)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, again.User.ID)
	assert.Equal(t, 1, f.users.count())
	assert.Equal(t, 1, f.oauth.count())
}

func TestGoogleLoginLinksExistingUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Register(ctx, &dto.RegisterRequest{Email: "alice@example.com", Password: "correct horse battery"}))
	existing, err := f.users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	resp, err := f.svc.HandleGoogleLogin(ctx, &GoogleProfile{ProviderID: "g-99", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, resp.User.ID)
	assert.Equal(t, 1, f.users.count())
	assert.Equal(t, 1, f.oauth.count())
}

func TestGoogleLoginWithoutEmail(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.svc.HandleGoogleLogin(context.Background(), &GoogleProfile{ProviderID: "g-777"})
	require.NoError(t, err)
	assert.Equal(t, "google_g-777@example.local", resp.User.Email)
}

func TestRefreshAndLogout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Register(ctx, &dto.RegisterRequest{Email: "alice@example.com", Password: "correct horse battery"}))
	login, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "correct horse battery"})
	require.NoError(t, err)

	rotated, err := f.svc.RefreshTokens(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	require.NoError(t, f.svc.Logout(ctx, rotated.RefreshToken))
	_, err = f.svc.RefreshTokens(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Logout never reports token problems.
	assert.NoError(t, f.svc.Logout(ctx, rotated.RefreshToken))
	assert.NoError(t, f.svc.Logout(ctx, "garbage"))
}
