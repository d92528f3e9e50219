package subscription

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"domainwatch/internal/config"
	"domainwatch/pkg/logger"
	"domainwatch/pkg/metrics"
	"domainwatch/pkg/notifier"
	"domainwatch/pkg/serrors"
	"domainwatch/pkg/storage"
	"domainwatch/pkg/validator"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02 15:04:05 MST"

var tracer = otel.Tracer("domainwatch/internal/subscription") //nolint: gochecknoglobals

// Options identify the deployment in outgoing emails.
type Options struct {
	// Title names the service in email subjects and bodies.
	Title string
	// Domain is the mail domain; emails are sent from noreply@<Domain>.
	Domain string
	// Link is the public host of the front-end, used for unsubscribe links.
	Link string
	// Location is the time zone of dates in emails. Nil means UTC.
	Location *time.Location
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	loc, err := cfg.Location()
	if err != nil {
		loc = time.UTC
	}

	return Options{
		Title:    cfg.Site.Title,
		Domain:   cfg.Site.Domain,
		Link:     cfg.Site.Link,
		Location: loc,
	}
}

// Deps are the collaborators of the service.
type Deps struct {
	Pending   storage.DocumentStore
	Confirmed storage.DocumentStore
	Validator validator.Validator
	Mailer    notifier.Mailer
	Renderer  notifier.Renderer
	// Metrics may be nil.
	Metrics *metrics.Subscription
	// Now defaults to time.Now.
	Now func() time.Time
}

type service struct {
	options Options
	deps    Deps
}

// New creates a new Service backed by the provided dependencies.
func New(deps Deps, options Options) Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Renderer == nil {
		deps.Renderer = notifier.NewTemplateRenderer()
	}
	if options.Location == nil {
		options.Location = time.UTC
	}

	return &service{options: options, deps: deps}
}

// begin opens the span of an operation and tags the logger.
func (s *service) begin(ctx context.Context, operation, id, visitorIP string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "subscription."+operation, trace.WithAttributes(
		attribute.String("subscription.id", id),
		attribute.String("subscription.visitor_ip", visitorIP),
	))

	return logger.WithFields(ctx, zap.String("id", id), zap.String("visitor_ip", visitorIP)), span
}

// end records the outcome of an operation.
func (s *service) end(ctx context.Context, span trace.Span, operation string, start time.Time, res Result) {
	defer span.End()

	err := res.Err()
	s.deps.Metrics.Observe(operation, start, err)
	if err == nil {
		span.SetStatus(codes.Ok, "")
		logger.Info(ctx, operation+" succeeded")

		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, metrics.Outcome(err))

	fields := []zap.Field{zap.Error(err), zap.Strings("messages", res.Errors)}
	switch serrors.KindOf(err) {
	case serrors.ErrRecordNotFound, serrors.ErrDuplicateRecord, serrors.ErrValidation:
		logger.Info(ctx, operation+" rejected", fields...)
	default:
		logger.Error(ctx, operation+" failed", fields...)
	}
}

// loadFailed classifies a store load error.
func loadFailed(err error, store string) Result {
	if errors.Is(err, serrors.ErrStoreParse) {
		detail := err.Error()
		var serr *serrors.Error
		if errors.As(err, &serr) && serr.Cause() != nil {
			detail = serr.Cause().Error()
		}

		return Failed(err, msgStoreParse+html.EscapeString(detail))
	}
	if !errors.Is(err, serrors.ErrStoreRead) {
		err = serrors.Wrap(serrors.ErrStoreRead, err, "could not load %s store", store)
	}

	return Failed(err, msgStoreRead)
}

// saveFailed classifies a store save error.
func saveFailed(err error, store string) Result {
	if !errors.Is(err, serrors.ErrStoreWrite) {
		err = serrors.Wrap(serrors.ErrStoreWrite, err, "could not save %s store", store)
	}

	return Failed(err, msgStoreWrite)
}

func notFound(id string) Result {
	return Failed(serrors.With(serrors.ErrRecordNotFound, "record %q not found", id),
		msgNotFound+html.EscapeString(id))
}

// notify renders template name for the subscriber and sends it.
func (s *service) notify(ctx context.Context, name, domain, email, visitorIP, id string, at time.Time) error {
	subject, body, err := s.deps.Renderer.Render(name, notifier.SubscriptionData{
		Title:           s.options.Title,
		Domain:          domain,
		Email:           email,
		VisitorIP:       visitorIP,
		Date:            at.In(s.options.Location).Format(dateLayout),
		UnsubscribeLink: s.unsubscribeLink(id),
	})
	if err != nil {
		return fmt.Errorf("could not render email: %w", err)
	}

	sender := "noreply@" + s.options.Domain
	err = s.deps.Mailer.Send(ctx, notifier.Message{
		To:      strings.TrimSpace(email),
		Subject: subject,
		Body:    body,
		Headers: map[string]string{
			notifier.HeaderFrom:      sender,
			notifier.HeaderReplyTo:   sender,
			notifier.HeaderVisitorIP: visitorIP,
		},
	})
	if err != nil {
		return fmt.Errorf("could not send email: %w", err)
	}

	return nil
}

func (s *service) unsubscribeLink(id string) string {
	return fmt.Sprintf("https://%s/unsubscribe.php?id=%s", s.options.Link, url.QueryEscape(id))
}
