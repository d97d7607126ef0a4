// Package observe provides application-wide observability primitives for
// karukan: OpenTelemetry metrics, distributed tracing, and structured
// logging.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still
// be scraped via the standard /metrics endpoint when the host process
// chooses to expose one. A package-level default [Metrics] instance
// ([DefaultMetrics]) is provided for convenience; tests should use
// [NewMetrics] with a custom [metric.MeterProvider] to avoid cross-test
// pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all karukan metrics.
const meterName = "github.com/vrclipboard-ime/karukan"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// ConversionDuration tracks kana-to-kanji conversion latency: the time
	// spent building and merging candidates for a single reading.
	ConversionDuration metric.Float64Histogram

	// ProcessKeyDuration tracks the latency of a single process_key call
	// through the IME state machine.
	ProcessKeyDuration metric.Float64Histogram

	// ModelGenerateDuration tracks LM backend generation latency (greedy or
	// beam search), labelled by model kind ("main"/"light").
	ModelGenerateDuration metric.Float64Histogram

	// --- Counters ---

	// CandidatesBySource counts candidates contributed to a conversion by
	// origin. Use with attribute: attribute.String("source", ...) — one of
	// "learning", "user_dictionary", "model", "system_dictionary",
	// "fallback".
	CandidatesBySource metric.Int64Counter

	// ConversionRequests counts conversion pipeline invocations. Use with
	// attribute: attribute.String("strategy", ...) — "main", "light", or
	// "adaptive".
	ConversionRequests metric.Int64Counter

	// LearningRecords counts accepted-candidate recordings into the
	// learning cache.
	LearningRecords metric.Int64Counter

	// --- Error counters ---

	// ModelFailures counts LM backend failures, by model kind and whether
	// the call failed over to a fallback.
	ModelFailures metric.Int64Counter

	// --- Gauges ---

	// AdaptiveUseLightModel reports whether the Adaptive strategy is
	// currently preferring the light model (1) or the main model (0),
	// based on the rolling latency feedback signal.
	AdaptiveUseLightModel metric.Int64UpDownCounter

	// ActiveEngines tracks the number of live IME engine handles currently
	// registered in the host ABI handle registry.
	ActiveEngines metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for interactive, per-keystroke IME latencies.
var latencyBuckets = []float64{
	0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.ConversionDuration, err = m.Float64Histogram("karukan.conversion.duration",
		metric.WithDescription("Latency of kana-to-kanji candidate conversion."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ProcessKeyDuration, err = m.Float64Histogram("karukan.process_key.duration",
		metric.WithDescription("Latency of a single process_key call through the IME state machine."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ModelGenerateDuration, err = m.Float64Histogram("karukan.model.generate.duration",
		metric.WithDescription("Latency of LM backend generation, by model kind."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.CandidatesBySource, err = m.Int64Counter("karukan.candidates.by_source",
		metric.WithDescription("Total candidates contributed to conversions, by source."),
	); err != nil {
		return nil, err
	}
	if met.ConversionRequests, err = m.Int64Counter("karukan.conversion.requests",
		metric.WithDescription("Total conversion pipeline invocations, by strategy."),
	); err != nil {
		return nil, err
	}
	if met.LearningRecords, err = m.Int64Counter("karukan.learning.records",
		metric.WithDescription("Total candidates recorded into the learning cache."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.ModelFailures, err = m.Int64Counter("karukan.model.failures",
		metric.WithDescription("Total LM backend failures, by model kind and failover outcome."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.AdaptiveUseLightModel, err = m.Int64UpDownCounter("karukan.adaptive.use_light_model",
		metric.WithDescription("1 when the Adaptive strategy currently prefers the light model, 0 otherwise."),
	); err != nil {
		return nil, err
	}
	if met.ActiveEngines, err = m.Int64UpDownCounter("karukan.active_engines",
		metric.WithDescription("Number of live IME engine handles currently registered."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
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

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordCandidateSource is a convenience method that records a candidate
// counted toward the given source.
func (m *Metrics) RecordCandidateSource(ctx context.Context, source string) {
	m.CandidatesBySource.Add(ctx, 1,
		metric.WithAttributes(attribute.String("source", source)),
	)
}

// RecordConversionRequest is a convenience method that records a conversion
// pipeline invocation under the given strategy.
func (m *Metrics) RecordConversionRequest(ctx context.Context, strategy string) {
	m.ConversionRequests.Add(ctx, 1,
		metric.WithAttributes(attribute.String("strategy", strategy)),
	)
}

// RecordModelFailure is a convenience method that records an LM backend
// failure, noting whether it failed over to a fallback backend.
func (m *Metrics) RecordModelFailure(ctx context.Context, modelKind string, failedOver bool) {
	m.ModelFailures.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("model_kind", modelKind),
			attribute.Bool("failed_over", failedOver),
		),
	)
}

// SetAdaptiveUseLightModel adjusts the adaptive-strategy gauge toward 1
// (light model preferred) or 0 (main model preferred). Callers are expected
// to call this only on a transition, since it records a delta against the
// up-down counter rather than an absolute value.
func (m *Metrics) SetAdaptiveUseLightModel(ctx context.Context, useLight bool) {
	delta := int64(-1)
	if useLight {
		delta = 1
	}
	m.AdaptiveUseLightModel.Add(ctx, delta)
}
