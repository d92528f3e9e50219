package notifier

import (
	"context"

	"domainwatch/pkg/logger"

	"go.uber.org/zap"
)

type logMailer struct{}

// NewLog returns a Mailer that only logs messages. Useful in development.
func NewLog() Mailer { return logMailer{} }

func (logMailer) Send(ctx context.Context, msg Message) error {
	if _, err := compose(msg); err != nil {
		return err
	}

	logger.Info(ctx, "email not sent (log mailer)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Any("headers", msg.Headers),
		zap.String("body", msg.Body),
	)

	return nil
}
