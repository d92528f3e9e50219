package domain

import (
	"strconv"
	"time"
)

// SubscriptionID is the opaque key shared by a pending record and the
// confirmed record it becomes.
type SubscriptionID = string

// PendingRecord is a subscription request that has not been confirmed yet.
type PendingRecord struct {
	Domain               string
	Email                string
	VisitorPreRegisterIP string
	PreAddDate           Timestamp
}

// ConfirmedRecord is an active subscription. It is created once per ID when
// the matching pending record is confirmed and never overwritten afterwards.
type ConfirmedRecord struct {
	Domain               string
	Email                string
	// Errors counts consecutive failed checks of the domain; starts at 0.
	Errors               int
	VisitorPreRegisterIP string
	PreAddDate           Timestamp
	VisitorConfirmIP     string
	ConfirmDate          Timestamp
}

// Confirm builds the confirmed record for p.
func (p PendingRecord) Confirm(visitorIP string, at time.Time) ConfirmedRecord {
	return ConfirmedRecord{
		Domain:               p.Domain,
		Email:                p.Email,
		Errors:               0,
		VisitorPreRegisterIP: p.VisitorPreRegisterIP,
		PreAddDate:           p.PreAddDate,
		VisitorConfirmIP:     visitorIP,
		ConfirmDate:          UnixTimestamp(at.Unix()),
	}
}

// SameSubscriber reports whether r belongs to the same domain/email combo.
func (r ConfirmedRecord) SameSubscriber(domain, email string) bool {
	return r.Domain == domain && r.Email == email
}

type timestampForm uint8

const (
	timestampNone timestampForm = iota
	timestampUnix
	timestampText
)

// Timestamp is a date in the form it was recorded in: unix seconds or free
// text such as "2024-01-01". It is written back in the same form.
type Timestamp struct {
	form timestampForm
	unix int64
	text string
}

// UnixTimestamp returns a Timestamp holding unix seconds.
func UnixTimestamp(sec int64) Timestamp {
	return Timestamp{form: timestampUnix, unix: sec}
}

// TextTimestamp returns a Timestamp holding free text.
func TextTimestamp(s string) Timestamp {
	return Timestamp{form: timestampText, text: s}
}

// IsZero reports whether no value was recorded.
func (t Timestamp) IsZero() bool { return t.form == timestampNone }

// Unix returns the unix seconds and true when t was recorded as a number.
func (t Timestamp) Unix() (int64, bool) { return t.unix, t.form == timestampUnix }

// Text returns the text and true when t was recorded as a string.
func (t Timestamp) Text() (string, bool) { return t.text, t.form == timestampText }

var textLayouts = []string{ //nolint: gochecknoglobals
	time.RFC3339,
	time.DateTime,
	time.DateOnly,
	time.RFC1123Z,
	time.RFC1123,
}

// Time converts t into a time.Time. Text forms are parsed with a few common
// layouts; ok is false when t is empty or unparsable.
func (t Timestamp) Time() (time.Time, bool) {
	switch t.form {
	case timestampUnix:
		return time.Unix(t.unix, 0), true
	case timestampText:
		for _, layout := range textLayouts {
			if v, err := time.Parse(layout, t.text); err == nil {
				return v, true
			}
		}
		if sec, err := strconv.ParseInt(t.text, 10, 64); err == nil {
			return time.Unix(sec, 0), true
		}
	}

	return time.Time{}, false
}

func (t Timestamp) String() string {
	switch t.form {
	case timestampUnix:
		return strconv.FormatInt(t.unix, 10)
	case timestampText:
		return t.text
	default:
		return ""
	}
}
