// Package metrics provides Prometheus metrics for phoneme conversion.
package metrics

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dgnsrekt/espeak-phonemizer/espeak"
)

// PhonemizerMetrics contains all Prometheus metrics related to conversions.
type PhonemizerMetrics struct {
	ConversionsTotal   *prometheus.CounterVec
	ConversionErrors   *prometheus.CounterVec
	ConversionDuration *prometheus.HistogramVec
	CacheLookups       *prometheus.CounterVec
	InputRunes         prometheus.Histogram
	ActiveConversions  prometheus.Gauge
}

// NewPhonemizerMetrics creates the metrics and registers them with
// registry.
func NewPhonemizerMetrics(registry *prometheus.Registry) (*PhonemizerMetrics, error) {
	m := &PhonemizerMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register phonemizer metrics: %w", err)
	}
	return m, nil
}

func (m *PhonemizerMetrics) initMetrics() {
	m.ConversionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonemizer_conversions_total",
			Help: "Total number of text to phoneme conversions",
		},
		[]string{"language", "status"},
	)

	m.ConversionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonemizer_conversion_errors_total",
			Help: "Total number of failed conversions by cause",
		},
		[]string{"error_type"},
	)

	m.ConversionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "phonemizer_conversion_duration_seconds",
			Help:    "Time taken to convert one input",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		},
		[]string{"language"},
	)

	m.CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonemizer_cache_lookups_total",
			Help: "Phoneme cache lookups by the tier that answered",
		},
		[]string{"result"},
	)

	m.InputRunes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "phonemizer_input_runes",
			Help:    "Length of converted inputs in characters",
			Buckets: prometheus.ExponentialBuckets(8, 2, 10), // 8 to 4096
		},
	)

	m.ActiveConversions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "phonemizer_active_conversions",
			Help: "Number of conversions currently in progress",
		},
	)
}

// RecordConversion records the outcome of converting one input.
func (m *PhonemizerMetrics) RecordConversion(language string, durationSeconds float64, err error) {
	if err != nil {
		m.ConversionsTotal.WithLabelValues(language, "error").Inc()
		m.ConversionErrors.WithLabelValues(ErrorType(err)).Inc()
		return
	}
	m.ConversionsTotal.WithLabelValues(language, "success").Inc()
	m.ConversionDuration.WithLabelValues(language).Observe(durationSeconds)
}

// RecordCacheLookup counts a lookup answered by result ("memory", "disk" or
// "miss").
func (m *PhonemizerMetrics) RecordCacheLookup(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}

// ObserveInput records the length of an input in characters.
func (m *PhonemizerMetrics) ObserveInput(runes int) {
	m.InputRunes.Observe(float64(runes))
}

// ConversionStarted marks a conversion in progress; call the returned
// function when it ends.
func (m *PhonemizerMetrics) ConversionStarted() func() {
	m.ActiveConversions.Inc()
	return m.ActiveConversions.Dec
}

// ErrorType maps a conversion error to its metric label.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, espeak.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, espeak.ErrEngineUnavailable):
		return "engine_unavailable"
	case errors.Is(err, espeak.ErrInitializationFailed):
		return "initialization"
	case errors.Is(err, espeak.ErrVoiceSelectionFailed):
		return "voice_selection"
	case errors.Is(err, espeak.ErrConversionFailed):
		return "conversion"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unknown"
	}
}

// Describe implements the prometheus.Collector interface.
func (m *PhonemizerMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.ConversionsTotal.Describe(ch)
	m.ConversionErrors.Describe(ch)
	m.ConversionDuration.Describe(ch)
	m.CacheLookups.Describe(ch)
	ch <- m.InputRunes.Desc()
	ch <- m.ActiveConversions.Desc()
}

// Collect implements the prometheus.Collector interface.
func (m *PhonemizerMetrics) Collect(ch chan<- prometheus.Metric) {
	m.ConversionsTotal.Collect(ch)
	m.ConversionErrors.Collect(ch)
	m.ConversionDuration.Collect(ch)
	m.CacheLookups.Collect(ch)
	ch <- m.InputRunes
	ch <- m.ActiveConversions
}
