package subscription

import (
	"context"
	"time"

	"domainwatch/pkg/logger"
	"domainwatch/pkg/metrics"
	"domainwatch/pkg/notifier"
	"domainwatch/pkg/serrors"

	"go.uber.org/zap"
)

// Unsubscribe deletes the confirmed record id and tells the subscriber.
func (s *service) Unsubscribe(ctx context.Context, id, visitorIP string) (res Result) {
	start := time.Now()
	ctx, span := s.begin(ctx, "Unsubscribe", id, visitorIP)
	defer func() { s.end(ctx, span, metrics.OperationUnsubscribe, start, res) }()

	confirmed, err := s.deps.Confirmed.Load(ctx)
	if err != nil {
		return loadFailed(err, "confirmed")
	}

	rec, ok := confirmed.Confirmed(id)
	if !ok {
		return notFound(id)
	}
	ctx = logger.WithFields(ctx, zap.String("domain", rec.Domain))

	confirmed.Delete(id)
	if err := s.deps.Confirmed.Save(ctx, confirmed); err != nil {
		return saveFailed(err, "confirmed")
	}

	err = s.notify(ctx, notifier.TemplateUnsubscribed, rec.Domain, rec.Email, visitorIP, id, s.deps.Now())
	if err != nil {
		return Failed(serrors.Wrap(serrors.ErrNotification, err, "could not notify subscriber"), msgNotification)
	}

	return Succeeded()
}
