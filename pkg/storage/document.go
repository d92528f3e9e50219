package storage

import (
	"bytes"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"domainwatch/pkg/domain"
)

// Document is an in-memory copy of a store file. Entries are kept as raw
// JSON values in file order, so saving a document rewrites the entries it did
// not touch exactly as they were read, malformed ones included.
type Document struct {
	keys    []string
	entries map[string]jx.Raw
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{entries: map[string]jx.Raw{}}
}

// DecodeDocument parses data as a store document. The top level must be a
// JSON object; null and an empty array (how some writers encode an
// empty store) decode to an empty document. For duplicate keys the last value
// wins while the key keeps its first position.
func DecodeDocument(data []byte) (*Document, error) {
	doc := NewDocument()

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("empty document")
	}
	if err := jx.DecodeBytes(data).Validate(); err != nil {
		return nil, errors.Wrap(err, "syntax error")
	}

	d := jx.DecodeBytes(data)
	switch tt := d.Next(); tt {
	case jx.Null:
		return doc, nil
	case jx.Array:
		empty := true
		if err := d.Arr(func(d *jx.Decoder) error {
			empty = false

			return d.Skip()
		}); err != nil {
			return nil, errors.Wrap(err, "decode array")
		}
		if !empty {
			return nil, errors.New("document is a non-empty array, object expected")
		}

		return doc, nil
	case jx.Object:
	default:
		return nil, errors.Errorf("document is %s, object expected", tt)
	}

	if err := d.Obj(func(d *jx.Decoder, key string) error {
		raw, err := d.Raw()
		if err != nil {
			return errors.Wrapf(err, "decode entry %q", key)
		}
		doc.set(key, bytes.Clone(raw))

		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode object")
	}

	return doc, nil
}

// Encode serializes the document as a compact JSON object.
func (d *Document) Encode() []byte {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.ObjStart()
	for _, k := range d.keys {
		e.FieldStart(k)
		e.Raw(d.entries[k])
	}
	e.ObjEnd()

	return bytes.Clone(e.Bytes())
}

// Len returns the number of entries.
func (d *Document) Len() int { return len(d.keys) }

// Keys returns the entry keys in document order.
func (d *Document) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Has reports whether an entry exists under key, malformed or not.
func (d *Document) Has(key string) bool {
	_, ok := d.entries[key]

	return ok
}

// Raw returns the undecoded entry stored under key.
func (d *Document) Raw(key string) (jx.Raw, bool) {
	raw, ok := d.entries[key]

	return raw, ok
}

// Delete removes the entry under key and reports whether it existed.
func (d *Document) Delete(key string) bool {
	if _, ok := d.entries[key]; !ok {
		return false
	}

	delete(d.entries, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)

			break
		}
	}

	return true
}

func (d *Document) set(key string, raw jx.Raw) {
	if _, ok := d.entries[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.entries[key] = raw
}

// Pending decodes the entry under id as a pending record. ok is false when
// the entry is absent or malformed.
func (d *Document) Pending(id string) (domain.PendingRecord, bool) {
	raw, found := d.entries[id]
	if !found {
		return domain.PendingRecord{}, false
	}

	rec, err := DecodePending(raw)
	if err != nil {
		return domain.PendingRecord{}, false
	}

	return rec, true
}

// Confirmed decodes the entry under id as a confirmed record. ok is false
// when the entry is absent or malformed.
func (d *Document) Confirmed(id string) (domain.ConfirmedRecord, bool) {
	raw, found := d.entries[id]
	if !found {
		return domain.ConfirmedRecord{}, false
	}

	rec, err := DecodeConfirmed(raw)
	if err != nil {
		return domain.ConfirmedRecord{}, false
	}

	return rec, true
}

// PutPending stores rec under id, replacing any previous entry.
func (d *Document) PutPending(id string, rec domain.PendingRecord) {
	d.set(id, EncodePending(rec))
}

// PutConfirmed stores rec under id, replacing any previous entry.
func (d *Document) PutConfirmed(id string, rec domain.ConfirmedRecord) {
	d.set(id, EncodeConfirmed(rec))
}

// RangeConfirmed calls fn for every entry in document order until fn returns
// false. ok tells whether the entry decoded as a confirmed record.
func (d *Document) RangeConfirmed(fn func(id string, rec domain.ConfirmedRecord, ok bool) bool) {
	for _, k := range d.keys {
		rec, err := DecodeConfirmed(d.entries[k])
		if !fn(k, rec, err == nil) {
			return
		}
	}
}
