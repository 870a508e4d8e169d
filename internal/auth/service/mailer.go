package service

import (
	"context"
	"log/slog"
	"time"
)

// Mailer delivers login links.
type Mailer interface {
	SendMagicLink(ctx context.Context, email, link string, ttl time.Duration) error
}

// LogMailer writes login links to the log instead of sending mail. It is the
// development default when no mail transport is configured.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendMagicLink(ctx context.Context, email, link string, ttl time.Duration) error {
	m.logger.InfoContext(ctx, "login link issued",
		"to", email,
		"subject", "Your Family Directory Login Link",
		"link", link,
		"expires_in", ttl.String(),
	)
	return nil
}
