package mailer

import (
	"context"
	"log/slog"
)

// LogSender is the development sender: it logs the message instead of
// delivering it, which keeps magic links reachable from local logs.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) Send(_ context.Context, email Email) error {
	slog.Info("outbound email (dev mode)",
		"to", email.To,
		"subject", email.Subject,
		"tag", email.Tag,
		"body", email.TextBody,
	)
	return nil
}
