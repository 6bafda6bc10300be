package models

import (
	"time"

	"github.com/google/uuid"
)

// OAuthAccount links one external provider identity to exactly one local user.
// (provider, provider_id) is unique; the row is created lazily on first callback.
type OAuthAccount struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Provider   string    `gorm:"size:50;not null;uniqueIndex:idx_oauth_provider_identity" json:"provider"`
	ProviderID string    `gorm:"size:255;not null;uniqueIndex:idx_oauth_provider_identity" json:"provider_id"`
	Email      *string   `gorm:"size:255" json:"email"`
	CreatedAt  time.Time `json:"created_at"`
	User       User      `gorm:"foreignKey:UserID" json:"-"`
}
