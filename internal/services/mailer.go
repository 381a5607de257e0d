package services

import (
	"context"
	"fmt"

	"github.com/BishoyAdelAziz/backend/internal/security"
)

// Mailer is the outbound email boundary. Delivery itself is an external
// concern; the API only depends on this interface.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes outbound mail to the structured log instead of
// delivering it. Used in development and in tests.
type LogMailer struct {
	logger *security.Logger
}

// NewLogMailer creates a mailer that logs instead of sending.
func NewLogMailer(logger *security.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message and always succeeds.
func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.logger.Info(fmt.Sprintf("mail to %s: %s", to, subject))
	return nil
}
