package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/inkhaven/blog-backend/internal/models"
	"github.com/inkhaven/blog-backend/internal/store"
)

// TokenPair is what every successful authentication hands back.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AccessClaims ride in the short-lived access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// RefreshClaims carry the persisted record's id so a presented token can be
// looked up directly instead of scanned by hash.
type RefreshClaims struct {
	jwt.RegisteredClaims
	TokenID string `json:"token_id"`
}

// TokenService mints access/refresh pairs and rotates refresh tokens. Every
// issued refresh token has a matching RefreshToken row storing only its digest.
type TokenService struct {
	tokens        store.TokenStore
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshExpiry time.Duration
}

func NewTokenService(tokens store.TokenStore, accessSecret, refreshSecret string, accessTTL time.Duration, refreshTTL string) *TokenService {
	return &TokenService{
		tokens:        tokens,
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshExpiry: ParseExpiry(refreshTTL),
	}
}

var expiryRe = regexp.MustCompile(`^([0-9]+)(s|m|h|d)$`)

// ParseExpiry parses "<integer><s|m|h|d>" durations, lowercase and exact.
// Anything unparseable falls back to 7 days; that fallback is load-bearing,
// not an error path.
func ParseExpiry(value string) time.Duration {
	m := expiryRe.FindStringSubmatch(value)
	if m == nil {
		return 7 * 24 * time.Hour
	}

	amount, err := strconv.Atoi(m[1])
	if err != nil {
		return 7 * 24 * time.Hour
	}

	switch m[2] {
	case "s":
		return time.Duration(amount) * time.Second
	case "m":
		return time.Duration(amount) * time.Minute
	case "h":
		return time.Duration(amount) * time.Hour
	default:
		return time.Duration(amount) * 24 * time.Hour
	}
}

// Issue mints a signed access/refresh pair for the user and records the
// refresh token's digest under its embedded token id.
func (s *TokenService) Issue(ctx context.Context, user *models.User) (*TokenPair, error) {
	now := time.Now()

	accessClaims := AccessClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(s.accessSecret))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	tokenID := uuid.New()
	refreshClaims := RefreshClaims{
		TokenID: tokenID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshExpiry)),
		},
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(s.refreshSecret))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	record := &models.RefreshToken{
		ID:        tokenID,
		UserID:    user.ID,
		TokenHash: HashToken(refreshToken),
		ExpiresAt: now.Add(s.refreshExpiry),
	}
	if err := s.tokens.CreateRefresh(ctx, record); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh rotates: the presented token is revoked and a fresh pair is issued.
// Every failure mode collapses to ErrInvalidToken so callers can't probe which
// check rejected them.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, *models.User, error) {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}

	tokenID, err := uuid.Parse(claims.TokenID)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}

	record, err := s.tokens.FindRefreshByID(ctx, tokenID)
	if err != nil {
		return nil, nil, err
	}
	if record == nil || record.Revoked() || record.Expired(time.Now()) {
		return nil, nil, ErrInvalidToken
	}
	// The signature alone isn't proof: a superseded token string for the same
	// record would still verify, so the stored digest must match too.
	if record.TokenHash != HashToken(refreshToken) {
		return nil, nil, ErrInvalidToken
	}

	revoked, err := s.tokens.RevokeRefresh(ctx, record.ID, time.Now())
	if err != nil {
		return nil, nil, err
	}
	if !revoked {
		// A concurrent refresh won the race; this caller loses.
		return nil, nil, ErrInvalidToken
	}

	pair, err := s.Issue(ctx, &record.User)
	if err != nil {
		return nil, nil, err
	}
	return pair, &record.User, nil
}

// Revoke marks the presented token revoked. Invalid, unknown and already
// revoked tokens are all silently accepted so logout never leaks validity.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return nil
	}

	tokenID, err := uuid.Parse(claims.TokenID)
	if err != nil {
		return nil
	}

	if _, err := s.tokens.RevokeRefresh(ctx, tokenID, time.Now()); err != nil {
		return err
	}
	return nil
}

// VerifyAccess parses and validates an access token, returning its claims.
// Role-gated routes still consult the stored role; this is for callers that
// only need the verified subject.
func (s *TokenService) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.accessSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenService) parseRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.refreshSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
