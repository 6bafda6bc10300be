package services

import "errors"

// Sentinel errors matched by handlers with errors.Is. Magic-link and reset
// tokens distinguish "used" and "expired" (actionable, BadRequest) from "no
// match" (Unauthorized, deliberately vague).
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrInvalidMagicLink   = errors.New("invalid magic link")
	ErrMagicLinkUsed      = errors.New("magic link already used")
	ErrMagicLinkExpired   = errors.New("magic link expired")
	ErrResetTokenInvalid  = errors.New("invalid or used reset token")
	ErrResetTokenExpired  = errors.New("reset token expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrPostNotFound       = errors.New("blog post not found")
)
