package summarizer

import "time"

// SummaryMetricsRecorder records provider-level metrics.
// *metrics.Metrics implements it; tests inject fakes.
type SummaryMetricsRecorder interface {
	// RecordDuration records the latency of a completed API call.
	RecordDuration(duration time.Duration)

	// RecordProviderError records a failed API call.
	RecordProviderError(provider string)
}

// NoopMetricsRecorder discards every measurement.
type NoopMetricsRecorder struct{}

func (NoopMetricsRecorder) RecordDuration(time.Duration) {}

func (NoopMetricsRecorder) RecordProviderError(string) {}
