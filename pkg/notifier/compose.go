package notifier

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/wneessen/go-mail"
)

var errNoSender = errors.New("message has no From header")

// compose turns msg into a MIME message.
func compose(msg Message) (*mail.Msg, error) {
	from := msg.Headers[HeaderFrom]
	if from == "" {
		return nil, errNoSender
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("could not set sender: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("could not set recipient: %w", err)
	}
	if replyTo := msg.Headers[HeaderReplyTo]; replyTo != "" {
		if err := m.ReplyTo(replyTo); err != nil {
			return nil, fmt.Errorf("could not set reply-to: %w", err)
		}
	}

	keys := make([]string, 0, len(msg.Headers))
	for k := range msg.Headers {
		if k != HeaderFrom && k != HeaderReplyTo {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	for _, k := range keys {
		m.SetGenHeader(mail.Header(k), msg.Headers[k])
	}

	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	return m, nil
}

// Raw returns msg as an RFC 5322 message.
func Raw(msg Message) ([]byte, error) {
	m, err := compose(msg)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("could not write message: %w", err)
	}

	return buf.Bytes(), nil
}
