package mailer

import "context"

// Email is one outbound message.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
	Tag      string
}

// Sender delivers email out of band. Token records are always persisted before
// a send is attempted, so a failed delivery never loses server-side state.
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// MagicLinkEmail builds the sign-in mail carrying the raw one-time link.
func MagicLinkEmail(to, link string) Email {
	return Email{
		To:       to,
		Subject:  "Your magic sign-in link",
		TextBody: "Use this link to sign in: " + link,
		HTMLBody: `<p>Use this link to sign in:</p><p><a href="` + link + `">` + link + `</a></p>`,
		Tag:      "magic-link",
	}
}

// PasswordResetEmail builds the reset mail carrying the raw one-time link.
func PasswordResetEmail(to, link string) Email {
	return Email{
		To:       to,
		Subject:  "Reset your password",
		TextBody: "Reset your password using this link: " + link,
		HTMLBody: `<p>Reset your password using this link:</p><p><a href="` + link + `">` + link + `</a></p>`,
		Tag:      "password-reset",
	}
}
