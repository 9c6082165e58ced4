package notify

import (
	"context"

	"go.uber.org/zap"
)

// Notifier delivers user-facing messages. Failures are the caller's to
// swallow: notification problems never abort the workflow that raised them.
type Notifier interface {
	PasswordReset(ctx context.Context, email string) error
	RegistrationRejected(ctx context.Context, email, name, reason string) error
}

// LogNotifier writes notifications to the log stream. It stands in for a
// mail provider in environments without one.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) PasswordReset(ctx context.Context, email string) error {
	n.logger.Info("password reset notification",
		zap.String("email", email))
	return nil
}

func (n *LogNotifier) RegistrationRejected(ctx context.Context, email, name, reason string) error {
	n.logger.Info("registration rejected notification",
		zap.String("email", email),
		zap.String("name", name),
		zap.String("reason", reason))
	return nil
}
