package storage

import (
	"bytes"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"domainwatch/pkg/domain"
)

// JSON field names of store entries.
const (
	fieldDomain               = "domain"
	fieldEmail                = "email"
	fieldErrors               = "errors"
	fieldVisitorPreRegisterIP = "visitor_pre_register_ip"
	fieldPreAddDate           = "pre_add_date"
	fieldVisitorConfirmIP     = "visitor_confirm_ip"
	fieldConfirmDate          = "confirm_date"
)

var errNotObject = errors.New("entry is not an object")

// DecodePending decodes a pending store entry. The entry must be an object
// with string domain and email fields; other fields are optional.
func DecodePending(raw jx.Raw) (domain.PendingRecord, error) {
	var (
		rec                 domain.PendingRecord
		hasDomain, hasEmail bool
	)

	err := decodeEntry(raw, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case fieldDomain:
			rec.Domain, hasDomain, err = decodeString(d)
		case fieldEmail:
			rec.Email, hasEmail, err = decodeString(d)
		case fieldVisitorPreRegisterIP:
			rec.VisitorPreRegisterIP, _, err = decodeString(d)
		case fieldPreAddDate:
			rec.PreAddDate, err = decodeTimestamp(d)
		default:
			err = d.Skip()
		}

		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}

		return nil
	})
	if err != nil {
		return domain.PendingRecord{}, err
	}
	if !hasDomain || !hasEmail {
		return domain.PendingRecord{}, errors.New("entry has no domain/email")
	}

	return rec, nil
}

// DecodeConfirmed decodes a confirmed store entry. Like DecodePending it
// requires string domain and email fields.
func DecodeConfirmed(raw jx.Raw) (domain.ConfirmedRecord, error) {
	var (
		rec                 domain.ConfirmedRecord
		hasDomain, hasEmail bool
	)

	err := decodeEntry(raw, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case fieldDomain:
			rec.Domain, hasDomain, err = decodeString(d)
		case fieldEmail:
			rec.Email, hasEmail, err = decodeString(d)
		case fieldErrors:
			rec.Errors, err = decodeCounter(d)
		case fieldVisitorPreRegisterIP:
			rec.VisitorPreRegisterIP, _, err = decodeString(d)
		case fieldPreAddDate:
			rec.PreAddDate, err = decodeTimestamp(d)
		case fieldVisitorConfirmIP:
			rec.VisitorConfirmIP, _, err = decodeString(d)
		case fieldConfirmDate:
			rec.ConfirmDate, err = decodeTimestamp(d)
		default:
			err = d.Skip()
		}

		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}

		return nil
	})
	if err != nil {
		return domain.ConfirmedRecord{}, err
	}
	if !hasDomain || !hasEmail {
		return domain.ConfirmedRecord{}, errors.New("entry has no domain/email")
	}

	return rec, nil
}

// EncodePending encodes rec as a pending store entry.
func EncodePending(rec domain.PendingRecord) jx.Raw {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field(fieldDomain, func(e *jx.Encoder) { e.Str(rec.Domain) })
		e.Field(fieldEmail, func(e *jx.Encoder) { e.Str(rec.Email) })
		e.Field(fieldVisitorPreRegisterIP, func(e *jx.Encoder) { e.Str(rec.VisitorPreRegisterIP) })
		e.Field(fieldPreAddDate, func(e *jx.Encoder) { encodeTimestamp(e, rec.PreAddDate) })
	})

	return e.Bytes()
}

// EncodeConfirmed encodes rec as a confirmed store entry.
func EncodeConfirmed(rec domain.ConfirmedRecord) jx.Raw {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field(fieldDomain, func(e *jx.Encoder) { e.Str(rec.Domain) })
		e.Field(fieldEmail, func(e *jx.Encoder) { e.Str(rec.Email) })
		e.Field(fieldErrors, func(e *jx.Encoder) { e.Int(rec.Errors) })
		e.Field(fieldVisitorPreRegisterIP, func(e *jx.Encoder) { e.Str(rec.VisitorPreRegisterIP) })
		e.Field(fieldPreAddDate, func(e *jx.Encoder) { encodeTimestamp(e, rec.PreAddDate) })
		e.Field(fieldVisitorConfirmIP, func(e *jx.Encoder) { e.Str(rec.VisitorConfirmIP) })
		e.Field(fieldConfirmDate, func(e *jx.Encoder) { encodeTimestamp(e, rec.ConfirmDate) })
	})

	return e.Bytes()
}

func decodeEntry(raw jx.Raw, field func(d *jx.Decoder, key string) error) error {
	d := jx.DecodeBytes(raw)
	if d.Next() != jx.Object {
		return errNotObject
	}

	return d.Obj(field) //nolint: wrapcheck
}

// decodeString reads a string field. ok is false for any other JSON type,
// which is skipped.
func decodeString(d *jx.Decoder) (string, bool, error) {
	if d.Next() != jx.String {
		return "", false, d.Skip()
	}

	s, err := d.Str()

	return s, err == nil, err
}

// decodeCounter reads an integer counter. Non-numeric values count as zero.
func decodeCounter(d *jx.Decoder) (int, error) {
	if d.Next() != jx.Number {
		return 0, d.Skip()
	}

	n, err := d.Num()
	if err != nil {
		return 0, err
	}
	if v, err := n.Int64(); err == nil {
		return int(v), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}

	return int(f), nil
}

func decodeTimestamp(d *jx.Decoder) (domain.Timestamp, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return domain.Timestamp{}, err
		}

		return domain.TextTimestamp(s), nil
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return domain.Timestamp{}, err
		}
		if v, err := n.Int64(); err == nil {
			return domain.UnixTimestamp(v), nil
		}
		// keep exotic numbers (floats, exponents) readable as text
		return domain.TextTimestamp(string(bytes.TrimSpace(n))), nil
	default:
		return domain.Timestamp{}, d.Skip()
	}
}

func encodeTimestamp(e *jx.Encoder, t domain.Timestamp) {
	if sec, ok := t.Unix(); ok {
		e.Int64(sec)

		return
	}
	if s, ok := t.Text(); ok {
		e.Str(s)

		return
	}
	e.Null()
}
