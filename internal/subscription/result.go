package subscription

import (
	"bytes"

	"github.com/go-faster/jx"
)

// User-facing messages reported in Result.Errors.
const (
	msgStoreRead    = "Can't open database."
	msgStoreParse   = "Can't read database: "
	msgNotFound     = "Can't find record in database for: "
	msgDuplicate    = "Domain/email combo for %s already exists."
	msgStoreWrite   = "Can't write database."
	msgNotification = "Can't send email."
)

// Result is the outcome of an operation in the shape front-ends consume:
// {"errors": [...], "success": [...]}. A successful result has no errors and
// a single true in Success.
type Result struct {
	Errors  []string
	Success []bool

	err error
}

// Succeeded returns a successful result.
func Succeeded() Result {
	return Result{Errors: []string{}, Success: []bool{true}}
}

// Failed returns a failed result carrying err and the user-facing messages.
func Failed(err error, messages ...string) Result {
	if messages == nil {
		messages = []string{}
	}

	return Result{Errors: messages, Success: []bool{}, err: err}
}

// Err returns the classified error of a failed result, or nil. Its kind can
// be matched with errors.Is against the serrors kinds.
func (r Result) Err() error { return r.err }

// OK reports whether the operation succeeded.
func (r Result) OK() bool { return r.err == nil && len(r.Errors) == 0 }

// MarshalJSON encodes r with both arrays always present.
func (r Result) MarshalJSON() ([]byte, error) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	r.Encode(e)

	return bytes.Clone(e.Bytes()), nil
}

// Encode writes r to e.
func (r Result) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("errors")
	e.ArrStart()
	for _, msg := range r.Errors {
		e.Str(msg)
	}
	e.ArrEnd()
	e.FieldStart("success")
	e.ArrStart()
	for _, ok := range r.Success {
		e.Bool(ok)
	}
	e.ArrEnd()
	e.ObjEnd()
}
