package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/inkhaven/blog-backend/internal/models"
)

// Lookup methods return (nil, nil) when no row matches; an error always means
// the store itself failed. Consume/Revoke methods are conditional updates:
// they report false when another caller already flipped the row, which is how
// concurrent redemptions of the same token resolve to exactly one winner.

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	// FindOrCreateByEmail reports whether a new user was created so callers
	// (and tests) can observe implicit account creation.
	FindOrCreateByEmail(ctx context.Context, email string, name *string, role string) (*models.User, bool, error)
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error
	UpdateRole(ctx context.Context, userID uuid.UUID, role string) error
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type TokenStore interface {
	CreateRefresh(ctx context.Context, token *models.RefreshToken) error
	FindRefreshByID(ctx context.Context, id uuid.UUID) (*models.RefreshToken, error)
	RevokeRefresh(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	CreateMagicLink(ctx context.Context, token *models.MagicLinkToken) error
	// FindMagicLink returns the most recent token for (user, digest).
	FindMagicLink(ctx context.Context, userID uuid.UUID, tokenHash string) (*models.MagicLinkToken, error)
	ConsumeMagicLink(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	CreateReset(ctx context.Context, token *models.PasswordResetToken) error
	FindResetByHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)
	ConsumeReset(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

type OAuthStore interface {
	FindAccount(ctx context.Context, provider, providerID string) (*models.OAuthAccount, error)
	CreateAccount(ctx context.Context, account *models.OAuthAccount) error
}

// PublishedQuery filters the public post listing.
type PublishedQuery struct {
	Page       int
	PageSize   int
	Search     string
	Tags       []string
	Categories []string
	Sort       string // newest | oldest | most_viewed | featured
}

type PostStore interface {
	Create(ctx context.Context, post *models.BlogPost) error
	Save(ctx context.Context, post *models.BlogPost) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error)
	FindAll(ctx context.Context) ([]models.BlogPost, error)
	FindPublished(ctx context.Context, q PublishedQuery) ([]models.BlogPost, int64, error)
	FindPublishedBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	FindFeatured(ctx context.Context, limit int) ([]models.BlogPost, error)
	IncrementViews(ctx context.Context, slug string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
