package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-summarizer/internal/domain/entity"
)

func TestMetrics_RecordDocument(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordDocument(entity.StatusWritten)
	m.RecordDocument(entity.StatusWritten)
	m.RecordDocument(entity.StatusSkipped)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DocumentsTotal.WithLabelValues("written")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsTotal.WithLabelValues("skipped")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DocumentsTotal.WithLabelValues("failed")))
}

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordSummaryTrimmed()
	m.RecordPromptTruncated()
	m.RecordPromptTruncated()
	m.RecordProviderError("openai")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SummaryTrimmed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PromptTruncated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderErrors.WithLabelValues("openai")))
}

func TestMetrics_Histograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordLength(120)
	m.RecordDuration(2 * time.Second)

	count, err := testutil.GatherAndCount(reg,
		"blog_summarizer_summary_length_characters",
		"blog_summarizer_summarization_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RecordDocument(entity.StatusWritten)
	m.RecordRunFinished(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "summarizer.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `blog_summarizer_documents_total{status="written"} 1`)
	assert.Contains(t, string(data), "blog_summarizer_last_run_timestamp_seconds 1.7e+09")
}
