package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"domainwatch/pkg/logger"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// SMTPOptions configure the SMTP transport.
type SMTPOptions struct {
	Host     string
	Port     int
	Username string
	Password string
	// AuthType is an SMTP auth mechanism name such as "plain" or "login".
	// Empty disables authentication.
	AuthType string
	// TLSPolicy is one of "mandatory", "opportunistic" or "none".
	TLSPolicy string
	Timeout   time.Duration
}

type smtpMailer struct {
	client *mail.Client
}

// NewSMTP returns a Mailer that delivers through an SMTP relay. A connection
// is opened per message.
func NewSMTP(options SMTPOptions) (Mailer, error) {
	policy, err := parseTLSPolicy(options.TLSPolicy)
	if err != nil {
		return nil, err
	}

	var opts []mail.Option
	if options.Port > 0 {
		opts = append(opts, mail.WithPort(options.Port))
	}
	opts = append(opts, mail.WithTLSPortPolicy(policy))
	if options.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(options.Timeout))
	}
	if options.AuthType != "" {
		var auth mail.SMTPAuthType
		if err := auth.UnmarshalString(options.AuthType); err != nil {
			return nil, fmt.Errorf("could not parse smtp auth type: %w", err)
		}
		opts = append(opts,
			mail.WithSMTPAuth(auth),
			mail.WithUsername(options.Username),
			mail.WithPassword(options.Password),
		)
	}

	client, err := mail.NewClient(options.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create smtp client: %w", err)
	}

	return &smtpMailer{client: client}, nil
}

func (s *smtpMailer) Send(ctx context.Context, msg Message) error {
	m, err := compose(msg)
	if err != nil {
		return fmt.Errorf("could not compose message: %w", err)
	}

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("could not send message via smtp: %w", err)
	}

	logger.Info(ctx, "email sent via smtp", zap.String("to", msg.To), zap.String("subject", msg.Subject))

	return nil
}

func parseTLSPolicy(s string) (mail.TLSPolicy, error) {
	switch strings.ToLower(s) {
	case "", "mandatory":
		return mail.TLSMandatory, nil
	case "opportunistic":
		return mail.TLSOpportunistic, nil
	case "none":
		return mail.NoTLS, nil
	default:
		return mail.NoTLS, fmt.Errorf("unknown tls policy %q", s)
	}
}
