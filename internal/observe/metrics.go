// Package observe records wordfix metrics through the OpenTelemetry metrics
// API. InitProvider bridges them to a Prometheus exporter so they can be
// scraped from /metrics. Tests build Metrics on their own MeterProvider with
// NewMetrics.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/bastiangx/wordfix/pkg/correct"
)

const meterName = "github.com/bastiangx/wordfix"

// Metrics holds the instruments wordfix records. It implements
// correct.Observer.
type Metrics struct {
	// CorrectRequests counts corrections. Attribute "outcome" is
	// "changed" or "unchanged".
	CorrectRequests metric.Int64Counter

	// Fallbacks counts corrections that scanned the whole vocabulary.
	Fallbacks metric.Int64Counter

	// Candidates records how many candidates each correction scored.
	Candidates metric.Int64Histogram

	// CorrectDuration records the latency of one correction in seconds.
	CorrectDuration metric.Float64Histogram

	// IPCRequests counts IPC requests by "action" and "status".
	IPCRequests metric.Int64Counter
}

var latencyBuckets = []float64{
	0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1,
}

var candidateBuckets = []float64{1, 2, 5, 10, 25, 50, 100, 500, 1000, 10000}

// NewMetrics creates all instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.CorrectRequests, err = m.Int64Counter("wordfix.correct.requests",
		metric.WithDescription("Corrections performed, by outcome."),
	); err != nil {
		return nil, err
	}
	if met.Fallbacks, err = m.Int64Counter("wordfix.correct.fallbacks",
		metric.WithDescription("Corrections that fell back to the full vocabulary."),
	); err != nil {
		return nil, err
	}
	if met.Candidates, err = m.Int64Histogram("wordfix.correct.candidates",
		metric.WithDescription("Candidates scored per correction."),
		metric.WithExplicitBucketBoundaries(candidateBuckets...),
	); err != nil {
		return nil, err
	}
	if met.CorrectDuration, err = m.Float64Histogram("wordfix.correct.duration",
		metric.WithDescription("Latency of a single correction."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.IPCRequests, err = m.Int64Counter("wordfix.ipc.requests",
		metric.WithDescription("IPC requests by action and status."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns Metrics on the global meter provider, created on
// first use. Call it after InitProvider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// ObserveCorrection records one finished correction.
func (m *Metrics) ObserveCorrection(ctx context.Context, o correct.Outcome) {
	outcome := "unchanged"
	if o.Changed {
		outcome = "changed"
	}
	m.CorrectRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	if o.Fallback {
		m.Fallbacks.Add(ctx, 1)
	}
	m.Candidates.Record(ctx, int64(o.Candidates))
	m.CorrectDuration.Record(ctx, o.Duration.Seconds())
}

// RecordIPCRequest counts one IPC request.
func (m *Metrics) RecordIPCRequest(ctx context.Context, action, status string) {
	m.IPCRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("action", action),
			attribute.String("status", status),
		),
	)
}

var _ correct.Observer = (*Metrics)(nil)
