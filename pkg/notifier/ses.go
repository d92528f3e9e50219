package notifier

import (
	"context"
	"fmt"
	"net/http"

	"domainwatch/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"
)

// SESOptions configure the AWS SES transport. Credentials are static; the SDK
// default credential chain is not consulted.
type SESOptions struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// sesAPI is the subset of *ses.Client used by the SES transport.
type sesAPI interface {
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

type sesMailer struct {
	client sesAPI
}

// NewSES returns a Mailer that delivers through AWS SES. Messages are sent
// raw so that custom headers survive.
func NewSES(options SESOptions, httpClient *http.Client) Mailer {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	cfg := aws.Config{
		Region: options.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(options.AccessKeyID, options.SecretAccessKey, ""),
		),
		HTTPClient: httpClient,
	}

	return &sesMailer{client: ses.NewFromConfig(cfg)}
}

func (s *sesMailer) Send(ctx context.Context, msg Message) error {
	raw, err := Raw(msg)
	if err != nil {
		return fmt.Errorf("could not compose message: %w", err)
	}

	out, err := s.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		Source:       aws.String(msg.Headers[HeaderFrom]),
		Destinations: []string{msg.To},
		RawMessage:   &types.RawMessage{Data: raw},
	})
	if err != nil {
		return fmt.Errorf("could not send message via ses: %w", err)
	}

	logger.Info(ctx, "email sent via ses",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("message_id", aws.ToString(out.MessageId)),
	)

	return nil
}
