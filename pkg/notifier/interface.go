// Package notifier composes subscriber emails and hands them to a mail
// transport.
//
//go:generate mockgen -package mocknotifier -source=interface.go -destination=mock/mocknotifier.go *
package notifier

import "context"

// Well-known message headers.
const (
	HeaderFrom      = "From"
	HeaderReplyTo   = "Reply-To"
	HeaderVisitorIP = "X-Visitor-IP"
)

// Message is a plain-text email. Headers must carry HeaderFrom; any other
// header is added to the message as is.
type Message struct {
	To      string
	Subject string
	Body    string
	Headers map[string]string
}

// Mailer delivers a message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Renderer renders the subject and body of a named email template.
type Renderer interface {
	Render(name string, data any) (subject, body string, err error)
}
