package services

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/inkhaven/blog-backend/internal/config"
	"github.com/inkhaven/blog-backend/internal/dto"
	"github.com/inkhaven/blog-backend/internal/mailer"
	"github.com/inkhaven/blog-backend/internal/models"
	"github.com/inkhaven/blog-backend/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const providerGoogle = "google"

// AuthService orchestrates every authentication flow: password, magic link,
// password reset, OAuth linking and refresh rotation. Successful logins all
// funnel through the token service for a fresh access/refresh pair.
type AuthService struct {
	users    store.UserStore
	tokens   store.TokenStore
	oauth    store.OAuthStore
	tokenSvc *TokenService
	sender   mailer.Sender
	cfg      *config.Config
}

func NewAuthService(users store.UserStore, tokens store.TokenStore, oauth store.OAuthStore, tokenSvc *TokenService, sender mailer.Sender, cfg *config.Config) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		oauth:    oauth,
		tokenSvc: tokenSvc,
		sender:   sender,
		cfg:      cfg,
	}
}

// RequestMagicLink finds or creates the account, persists the hashed one-time
// token, then emails the raw secret. The response is identical whether or not
// the address was known before.
func (s *AuthService) RequestMagicLink(ctx context.Context, email string) error {
	user, created, err := s.users.FindOrCreateByEmail(ctx, email, nil, models.RoleMember)
	if err != nil {
		return err
	}
	if created {
		slog.Info("user created via magic link request", "user_id", user.ID)
	}

	secret, err := generateSecret()
	if err != nil {
		return err
	}

	token := &models.MagicLinkToken{
		UserID:    user.ID,
		TokenHash: HashToken(secret),
		ExpiresAt: time.Now().Add(s.cfg.MagicLinkTTL),
	}
	if err := s.tokens.CreateMagicLink(ctx, token); err != nil {
		return err
	}

	link := s.cfg.MagicLinkBaseURL + "/verify?email=" + url.QueryEscape(user.Email) + "&token=" + secret
	return s.sender.Send(ctx, mailer.MagicLinkEmail(user.Email, link))
}

// VerifyMagicLink redeems a one-time login token. Wrong email and wrong secret
// return the same error; used and expired are distinguishable on purpose.
func (s *AuthService) VerifyMagicLink(ctx context.Context, email, secret string) (*dto.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidMagicLink
	}

	token, err := s.tokens.FindMagicLink(ctx, user.ID, HashToken(secret))
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, ErrInvalidMagicLink
	}
	if token.Used() {
		return nil, ErrMagicLinkUsed
	}
	if token.Expired(time.Now()) {
		return nil, ErrMagicLinkExpired
	}

	consumed, err := s.tokens.ConsumeMagicLink(ctx, token.ID, time.Now())
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, ErrMagicLinkUsed
	}

	return s.issueFor(ctx, user)
}

// Register creates a password-backed account. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) error {
	existing, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	hashStr := string(hash)
	user := &models.User{
		Email:        req.Email,
		Name:         req.Name,
		Role:         models.RoleMember,
		PasswordHash: &hashStr,
		IsActive:     true,
	}
	return s.users.Create(ctx, user)
}

// Login checks the password. Accounts without a password hash (magic-link or
// OAuth only) fail the same way as a wrong password.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueFor(ctx, user)
}

// RequestPasswordReset is a silent no-op for unknown addresses: no user is
// created and no record is written, but the caller still sees success.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	secret, err := generateSecret()
	if err != nil {
		return err
	}

	token := &models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: HashToken(secret),
		ExpiresAt: time.Now().Add(s.cfg.PasswordResetTTL),
	}
	if err := s.tokens.CreateReset(ctx, token); err != nil {
		return err
	}

	link := s.cfg.MagicLinkBaseURL + "/reset-password?token=" + url.QueryEscape(secret)
	return s.sender.Send(ctx, mailer.PasswordResetEmail(user.Email, link))
}

// ResetPassword redeems a reset token by digest alone and replaces the user's
// password hash. It never issues login tokens.
func (s *AuthService) ResetPassword(ctx context.Context, secret, newPassword string) error {
	token, err := s.tokens.FindResetByHash(ctx, HashToken(secret))
	if err != nil {
		return err
	}
	if token == nil || token.Used() {
		return ErrResetTokenInvalid
	}
	if token.Expired(time.Now()) {
		return ErrResetTokenExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, token.UserID, string(hash)); err != nil {
		return err
	}

	consumed, err := s.tokens.ConsumeReset(ctx, token.ID, time.Now())
	if err != nil {
		return err
	}
	if !consumed {
		return ErrResetTokenInvalid
	}
	return nil
}

// HandleGoogleLogin maps an external identity onto a local user, creating both
// the user and the link lazily on first callback.
func (s *AuthService) HandleGoogleLogin(ctx context.Context, profile *GoogleProfile) (*dto.AuthResponse, error) {
	account, err := s.oauth.FindAccount(ctx, providerGoogle, profile.ProviderID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return s.issueFor(ctx, &account.User)
	}

	var user *models.User
	if profile.Email != "" {
		user, err = s.users.FindByEmail(ctx, profile.Email)
		if err != nil {
			return nil, err
		}
	}

	if user == nil {
		email := profile.Email
		if email == "" {
			// Provider withheld the address; synthesize a stable placeholder.
			email = "google_" + profile.ProviderID + "@example.local"
		}
		var name *string
		if profile.Name != "" {
			name = &profile.Name
		}
		user, _, err = s.users.FindOrCreateByEmail(ctx, email, name, models.RoleMember)
		if err != nil {
			return nil, err
		}
	}

	var accountEmail *string
	if profile.Email != "" {
		accountEmail = &profile.Email
	}
	account = &models.OAuthAccount{
		UserID:     user.ID,
		Provider:   providerGoogle,
		ProviderID: profile.ProviderID,
		Email:      accountEmail,
	}
	if err := s.oauth.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	return s.issueFor(ctx, user)
}

// RefreshTokens rotates the presented refresh token for a fresh pair.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	pair, _, err := s.tokenSvc.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Logout revokes the refresh token; it succeeds whether or not the token was
// valid.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokenSvc.Revoke(ctx, refreshToken)
}

func (s *AuthService) issueFor(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	pair, err := s.tokenSvc.Issue(ctx, user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User: dto.UserResponse{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		},
	}, nil
}
