package models

import (
	"time"

	"github.com/google/uuid"
)

// MagicLinkToken is a single-use login token delivered by email. Only the
// SHA-256 hex digest of the secret is stored; UsedAt is set exactly once.
type MagicLinkToken struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	TokenHash string     `gorm:"not null;size:64;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (t *MagicLinkToken) Used() bool {
	return t.UsedAt != nil
}

func (t *MagicLinkToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
