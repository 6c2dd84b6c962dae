// Package metrics holds the Prometheus instruments for sitehost. All
// collectors are registered with the global registry, so mounting
// promhttp.Handler is enough to expose them.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sagarc03/sitehost"
)

var (
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sitehost",
			Name:      "operations_total",
			Help:      "Site operations by operation and result.",
		}, []string{"operation", "result"})

	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sitehost",
			Name:      "operation_duration_seconds",
			Help:      "Latency of site operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"})

	UploadBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sitehost",
			Name:      "upload_request_bytes_total",
			Help:      "Cumulative decoded bytes received by upload requests.",
		})
)

func init() {
	prometheus.MustRegister(
		OperationsTotal,
		OperationDuration,
		UploadBytesTotal,
	)
}

// Observe records one finished operation.
func Observe(operation string, err error, start time.Time) {
	OperationsTotal.WithLabelValues(operation, Result(err)).Inc()
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Result maps an operation error onto a low-cardinality label value.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, sitehost.ErrNotFound):
		return "not_found"
	case errors.Is(err, sitehost.ErrConflict):
		return "conflict"
	case errors.Is(err, sitehost.ErrForbiddenContent):
		return "forbidden"
	case errors.Is(err, sitehost.ErrNotAllowed):
		return "not_allowed"
	case errors.Is(err, sitehost.ErrTooLarge):
		return "too_large"
	case errors.Is(err, sitehost.ErrInvalidName), errors.Is(err, sitehost.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, sitehost.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
