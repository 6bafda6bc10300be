package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken persists one rotation slot. The ID doubles as the token_id claim
// embedded in the signed refresh JWT, so a presented token can be looked up
// without scanning by hash. TokenHash is the SHA-256 hex digest of the full
// signed token string; the raw token is never stored.
type RefreshToken struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	TokenHash string     `gorm:"not null;size:64;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at"`
	CreatedAt time.Time  `json:"created_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

// Revoked reports whether the token has been rotated out or logged out.
func (t *RefreshToken) Revoked() bool {
	return t.RevokedAt != nil
}

// Expired is a use-time predicate, not a stored state transition.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
