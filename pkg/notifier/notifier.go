package notifier

import (
	"fmt"
	"net/http"
)

// Providers accepted by New.
const (
	ProviderSMTP = "smtp"
	ProviderSES  = "ses"
	ProviderLog  = "log"
)

// Options select and configure a mail transport.
type Options struct {
	Provider string
	SMTP     SMTPOptions
	SES      SESOptions
	// HTTPClient is used by the SES transport. Nil means http.DefaultClient.
	HTTPClient *http.Client
}

// New returns the Mailer for options.Provider.
func New(options Options) (Mailer, error) {
	switch options.Provider {
	case ProviderSMTP:
		return NewSMTP(options.SMTP)
	case ProviderSES:
		return NewSES(options.SES, options.HTTPClient), nil
	case ProviderLog, "":
		return NewLog(), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", options.Provider)
	}
}
