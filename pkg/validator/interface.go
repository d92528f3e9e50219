// Package validator checks that a domain can be monitored before a
// subscription for it is confirmed.
//
//go:generate mockgen -package mockvalidator -source=interface.go -destination=mock/mockvalidator.go *
package validator

import "context"

// Report lists every problem found in a validated input. An empty report
// means the input is acceptable.
type Report struct {
	Errors []string
}

// OK reports whether no problem was found.
func (r Report) OK() bool { return len(r.Errors) == 0 }

// Validator validates the domains found in input. Problems are reported as
// user-facing messages, not as errors: a Validator never fails.
type Validator interface {
	ValidateDomains(ctx context.Context, input string) Report
}
