package fetch

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apierrors "econdata/internal/errors"
)

const meterName = "econdata/internal/fetch"

var (
	instrumentsOnce sync.Once
	requestCounter  metric.Int64Counter
	fetchDuration   metric.Float64Histogram
)

// instruments lazily creates the package instruments against the global
// meter provider. The otel global delegates late provider installation, so
// creating these before a caller installs an SDK is safe.
func instruments() (metric.Int64Counter, metric.Float64Histogram) {
	instrumentsOnce.Do(func() {
		meter := otel.Meter(meterName)
		requestCounter, _ = meter.Int64Counter("econdata.fetch.requests",
			metric.WithDescription("Completed series fetches by source and outcome"))
		fetchDuration, _ = meter.Float64Histogram("econdata.fetch.duration",
			metric.WithUnit("s"),
			metric.WithDescription("Wall time of a single series fetch"))
	})
	return requestCounter, fetchDuration
}

// RecordFetch records one completed series fetch. err may be nil.
func RecordFetch(ctx context.Context, source string, err error, elapsed time.Duration) {
	counter, duration := instruments()
	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("outcome", outcomeOf(err)),
	)
	counter.Add(ctx, 1, attrs)
	duration.Record(ctx, elapsed.Seconds(), attrs)
}

func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	if code := apierrors.CodeOf(err); code != "" {
		return string(code)
	}
	return "error"
}
