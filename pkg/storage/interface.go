// Package storage defines the document store port used by the subscription
// workflow. A store persists one JSON document, an object keyed by
// subscription ID, and is always read and written as a whole.
//
//go:generate mockgen -package mockstorage -source=interface.go -destination=mock/mockstorage.go *
package storage

import "context"

// DocumentStore loads and saves a whole store document.
//
// Load failures are reported with serrors.ErrStoreRead (document missing or
// unreadable) or serrors.ErrStoreParse (not a JSON object). Save failures are
// reported with serrors.ErrStoreWrite. Save replaces the document atomically
// while holding an exclusive lock; Load takes no lock and may observe a
// document that is about to be replaced.
type DocumentStore interface {
	// Load reads and decodes the current document.
	Load(ctx context.Context) (*Document, error)
	// Save encodes doc and replaces the stored document with it.
	Save(ctx context.Context, doc *Document) error
}
