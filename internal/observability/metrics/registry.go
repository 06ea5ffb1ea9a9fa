package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"blog-summarizer/internal/domain/entity"
)

const namespace = "blog_summarizer"

// Metrics holds every collector recorded during a run.
type Metrics struct {
	// DocumentsTotal counts processed documents by terminal status
	DocumentsTotal *prometheus.CounterVec

	// SummarizationDuration measures the latency of text-generation calls
	SummarizationDuration prometheus.Histogram

	// SummaryLength is the distribution of finished summary lengths in runes
	SummaryLength prometheus.Histogram

	// SummaryTrimmed counts summaries whose trailing partial sentence was dropped
	SummaryTrimmed prometheus.Counter

	// PromptTruncated counts bodies cut to fit the prompt token budget
	PromptTruncated prometheus.Counter

	// ProviderErrors counts failed text-generation calls by provider
	ProviderErrors *prometheus.CounterVec

	// LastRunTimestamp is the unix time at which the last run finished
	LastRunTimestamp prometheus.Gauge
}

// New creates the run collectors and registers them on reg.
// Registering twice on the same registry panics, as with promauto.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DocumentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_total",
				Help:      "Total number of documents processed by terminal status",
			},
			[]string{"status"},
		),
		SummarizationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summarization_duration_seconds",
			Help:      "Time taken to generate a summary via the text-generation service",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		SummaryLength: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summary_length_characters",
			Help:      "Distribution of finished summary lengths in characters (Unicode runes)",
			Buckets:   []float64{50, 100, 200, 300, 500, 700, 900, 1200},
		}),
		SummaryTrimmed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_trimmed_total",
			Help:      "Total number of generated summaries cut back to the last sentence boundary",
		}),
		PromptTruncated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prompt_truncated_total",
			Help:      "Total number of document bodies truncated to the prompt token budget",
		}),
		ProviderErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_errors_total",
				Help:      "Total number of failed text-generation calls by provider",
			},
			[]string{"provider"},
		),
		LastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time at which the last run finished",
		}),
	}
}

// RecordDocument records the terminal status of a processed document.
func (m *Metrics) RecordDocument(status entity.Status) {
	m.DocumentsTotal.WithLabelValues(string(status)).Inc()
}

// RecordSummaryTrimmed records that a trailing sentence fragment was dropped.
func (m *Metrics) RecordSummaryTrimmed() {
	m.SummaryTrimmed.Inc()
}

// RecordPromptTruncated records that a body was cut to the prompt budget.
func (m *Metrics) RecordPromptTruncated() {
	m.PromptTruncated.Inc()
}

// RecordLength records the rune length of a generated summary.
func (m *Metrics) RecordLength(length int) {
	m.SummaryLength.Observe(float64(length))
}

// RecordDuration records the latency of a text-generation call.
func (m *Metrics) RecordDuration(duration time.Duration) {
	m.SummarizationDuration.Observe(duration.Seconds())
}

// RecordProviderError records a failed text-generation call.
func (m *Metrics) RecordProviderError(provider string) {
	m.ProviderErrors.WithLabelValues(provider).Inc()
}

// RecordRunFinished stamps the end of a run.
func (m *Metrics) RecordRunFinished(at time.Time) {
	m.LastRunTimestamp.Set(float64(at.Unix()))
}

// WriteTextfile dumps every metric gathered by g to path in the Prometheus text
// format, for pickup by the node_exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
