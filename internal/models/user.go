package models

import (
	"time"

	"github.com/google/uuid"
)

// Role values stored on User. Authorization middleware compares against these.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleMember  = "member"
)

// User is the central identity record. PasswordHash is nil for accounts that
// only ever signed in through a magic link or an OAuth provider.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string    `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Name         *string   `gorm:"size:255" json:"name"`
	Role         string    `gorm:"size:20;not null;default:'member'" json:"role"`
	PasswordHash *string   `gorm:"size:255" json:"-"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	RefreshTokens       []RefreshToken       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	MagicLinkTokens     []MagicLinkToken     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PasswordResetTokens []PasswordResetToken `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	OAuthAccounts       []OAuthAccount       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
