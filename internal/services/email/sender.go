package email

import (
	"context"
	"log/slog"
)

// Sender delivers a rendered HTML email
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// LogSender writes emails to the log instead of delivering them.
// Used when no SMTP host is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the recipient and subject
func (s *LogSender) Send(ctx context.Context, to, subject, html string) error {
	s.logger.Info("email not delivered (no smtp configured)",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.Int("html_bytes", len(html)),
	)
	return nil
}
