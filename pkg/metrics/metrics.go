// Package metrics holds the Prometheus collectors of the subscription
// workflow.
package metrics

import (
	"strings"
	"time"

	"domainwatch/pkg/serrors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// Operation names used as the "operation" label.
const (
	OperationConfirm     = "confirm"
	OperationUnsubscribe = "unsubscribe"
)

// OutcomeSuccess is the "outcome" label of a successful operation. Failed
// operations are labelled with their lowercased error kind, e.g.
// "record_not_found".
const OutcomeSuccess = "success"

// Subscription tracks subscription operations. A nil *Subscription is valid
// and records nothing.
type Subscription struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewSubscription creates the subscription collectors and registers them
// with reg.
func NewSubscription(reg prometheus.Registerer) *Subscription {
	factory := promauto.With(reg)

	return &Subscription{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "domainwatch",
			Subsystem: "subscription",
			Name:      "operations_total",
			Help:      "Total number of subscription operations by outcome",
		}, []string{"operation", "outcome"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "domainwatch",
			Subsystem: "subscription",
			Name:      "operation_duration_seconds",
			Help:      "Duration of subscription operations, email delivery included",
			Buckets:   DefaultBuckets,
		}, []string{"operation"}),
	}
}

// Observe records one operation that started at start and ended with err.
func (m *Subscription) Observe(operation string, start time.Time, err error) {
	if m == nil {
		return
	}

	m.Operations.WithLabelValues(operation, Outcome(err)).Inc()
	m.Duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Outcome returns the outcome label for err.
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}

	return strings.ToLower(serrors.KindOf(err).Error())
}
