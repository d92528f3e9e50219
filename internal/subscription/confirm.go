package subscription

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"domainwatch/pkg/domain"
	"domainwatch/pkg/logger"
	"domainwatch/pkg/metrics"
	"domainwatch/pkg/notifier"
	"domainwatch/pkg/serrors"
	"domainwatch/pkg/storage"

	"go.uber.org/zap"
)

// Confirm moves the pending record id into the confirmed store. All checks
// run before the first write. The confirmed store is written first, so a
// failure to prune the pending store leaves the record in both stores.
func (s *service) Confirm(ctx context.Context, id, visitorIP string) (res Result) {
	start := time.Now()
	ctx, span := s.begin(ctx, "Confirm", id, visitorIP)
	defer func() { s.end(ctx, span, metrics.OperationConfirm, start, res) }()

	pending, err := s.deps.Pending.Load(ctx)
	if err != nil {
		return loadFailed(err, "pending")
	}

	rec, ok := pending.Pending(id)
	if !ok {
		return notFound(id)
	}
	ctx = logger.WithFields(ctx, zap.String("domain", rec.Domain))

	confirmed, err := s.deps.Confirmed.Load(ctx)
	if err != nil {
		return loadFailed(err, "confirmed")
	}

	if conflict, found := findConflict(confirmed, id, rec); found {
		return Failed(
			serrors.With(serrors.ErrDuplicateRecord, "%s conflicts with confirmed record %q", rec.Domain, conflict),
			fmt.Sprintf(msgDuplicate, html.EscapeString(rec.Domain)),
		)
	}

	if report := s.deps.Validator.ValidateDomains(ctx, rec.Domain); !report.OK() {
		return Failed(
			serrors.With(serrors.ErrValidation, "%s", strings.Join(report.Errors, " ")),
			report.Errors...,
		)
	}

	now := s.deps.Now()
	record := rec.Confirm(visitorIP, now)
	confirmed.PutConfirmed(id, record)
	if err := s.deps.Confirmed.Save(ctx, confirmed); err != nil {
		return saveFailed(err, "confirmed")
	}

	pending.Delete(id)
	if err := s.deps.Pending.Save(ctx, pending); err != nil {
		logger.Error(ctx, "record confirmed but still pending", zap.Error(err))

		return saveFailed(err, "pending")
	}

	err = s.notify(ctx, notifier.TemplateConfirmed, record.Domain, record.Email, visitorIP, id, now)
	if err != nil {
		return Failed(serrors.Wrap(serrors.ErrNotification, err, "could not notify subscriber"), msgNotification)
	}

	return Succeeded()
}

// findConflict returns the key of a confirmed entry that blocks confirming
// rec under id: an entry stored under id itself, malformed or not, or a
// record of the same domain/email combo.
func findConflict(confirmed *storage.Document, id string, rec domain.PendingRecord) (string, bool) {
	if confirmed.Has(id) {
		return id, true
	}

	var (
		conflict string
		found    bool
	)
	confirmed.RangeConfirmed(func(key string, existing domain.ConfirmedRecord, ok bool) bool {
		if ok && existing.SameSubscriber(rec.Domain, rec.Email) {
			conflict, found = key, true

			return false
		}

		return true
	})

	return conflict, found
}
