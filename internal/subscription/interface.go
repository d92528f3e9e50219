// Package subscription confirms pending domain monitoring subscriptions and
// removes confirmed ones, notifying the subscriber by email.
//
//go:generate mockgen -package mocksubscription -source=interface.go -destination=mock/mocksubscription.go *
package subscription

import "context"

// Service is the subscription workflow. Both operations report failures
// through the returned Result, never by panicking, and are safe to call
// concurrently; racing calls for one ID may both pass the duplicate check.
type Service interface {
	// Confirm moves the pending record id into the confirmed store and emails
	// the subscriber. visitorIP is the address the confirmation came from.
	Confirm(ctx context.Context, id, visitorIP string) Result
	// Unsubscribe deletes the confirmed record id and emails the subscriber.
	Unsubscribe(ctx context.Context, id, visitorIP string) Result
}
