// Package jsonfile provides a storage.DocumentStore backed by a single JSON
// file. Writes take an exclusive advisory lock on a sidecar "<file>.lock" and
// replace the file through a rename, so concurrent writers serialize and
// readers never see a half-written document.
package jsonfile

import (
	"context"
	"fmt"
	"os"
	"time"

	"domainwatch/pkg/logger"
	"domainwatch/pkg/serrors"
	"domainwatch/pkg/storage"

	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"
	"go.uber.org/zap"
)

const (
	defaultFileMode       os.FileMode = 0o644
	defaultLockTimeout                = 10 * time.Second
	defaultLockRetryDelay             = 50 * time.Millisecond
)

// Options configure a Store.
type Options struct {
	// Path is the JSON document location.
	Path string
	// FileMode is applied to newly written documents. Zero means 0644.
	FileMode os.FileMode
	// LockTimeout bounds how long Save waits for the write lock. Zero means 10s.
	LockTimeout time.Duration
	// LockRetryDelay is the pause between lock attempts. Zero means 50ms.
	LockRetryDelay time.Duration
}

// Store is a storage.DocumentStore over one JSON file.
type Store struct {
	options Options
}

var _ storage.DocumentStore = (*Store)(nil)

// New returns a Store for options.Path. The file is not touched until the
// first Load or Save.
func New(options Options) *Store {
	if options.FileMode == 0 {
		options.FileMode = defaultFileMode
	}
	if options.LockTimeout <= 0 {
		options.LockTimeout = defaultLockTimeout
	}
	if options.LockRetryDelay <= 0 {
		options.LockRetryDelay = defaultLockRetryDelay
	}

	return &Store{options: options}
}

// Path returns the document location.
func (s *Store) Path() string { return s.options.Path }

// Load reads the whole document without locking. A missing file is a read
// error, not an empty document.
func (s *Store) Load(ctx context.Context) (*storage.Document, error) {
	data, err := os.ReadFile(s.options.Path)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrStoreRead, err, "could not read %s", s.options.Path)
	}

	doc, err := storage.DecodeDocument(data)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrStoreParse, err, "could not parse %s", s.options.Path)
	}

	logger.Debug(ctx, "store loaded", zap.String("path", s.options.Path), zap.Int("entries", doc.Len()))

	return doc, nil
}

// Save replaces the document with doc under the exclusive lock.
func (s *Store) Save(ctx context.Context, doc *storage.Document) error {
	data := doc.Encode()

	err := s.withLock(ctx, func() error {
		if err := renameio.WriteFile(s.options.Path, data, s.options.FileMode); err != nil {
			return fmt.Errorf("could not replace document: %w", err)
		}

		return nil
	})
	if err != nil {
		return serrors.Wrap(serrors.ErrStoreWrite, err, "could not write %s", s.options.Path)
	}

	logger.Debug(ctx, "store saved", zap.String("path", s.options.Path), zap.Int("entries", doc.Len()))

	return nil
}

// withLock runs fn while holding the exclusive lock on the sidecar lock
// file. The lock is released on every return path.
func (s *Store) withLock(ctx context.Context, fn func() error) error {
	lock := flock.New(s.options.Path+".lock", flock.SetPermissions(s.options.FileMode))

	lockCtx, cancel := context.WithTimeout(ctx, s.options.LockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(lockCtx, s.options.LockRetryDelay)
	if err != nil {
		return fmt.Errorf("could not acquire lock %s: %w", lock.Path(), err)
	}
	if !locked {
		return fmt.Errorf("could not acquire lock %s", lock.Path())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn(ctx, "could not release store lock", zap.String("path", lock.Path()), zap.Error(err))
		}
	}()

	return fn()
}
