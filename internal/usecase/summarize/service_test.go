package summarize_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"blog-summarizer/internal/config"
	"blog-summarizer/internal/domain/entity"
	"blog-summarizer/internal/infra/document"
	"blog-summarizer/internal/infra/markup"
	"blog-summarizer/internal/observability/metrics"
	"blog-summarizer/internal/usecase/summarize"
	"blog-summarizer/internal/utils/text"
)

const marker = "<!-- Insert Summary Here -->"

// header11 is an eleven-line front matter block.
const header11 = "---\n" +
	"layout: post\n" +
	"title: Hello\n" +
	"date: 2024-01-01\n" +
	"author: someone\n" +
	"tags: [go]\n" +
	"category: notes\n" +
	"comments: true\n" +
	"draft: false\n" +
	"summary: none\n" +
	"---\n"

type fakeSummarizer struct {
	inputs  []string
	respond func(text string) (string, error)
}

func (f *fakeSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	f.inputs = append(f.inputs, text)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.respond == nil {
		return "This is a summary. Partial", nil
	}
	return f.respond(text)
}

func defaultOptions() summarize.Options {
	return summarize.Options{
		Marker:            marker,
		HeaderOffset:      11,
		MarkerReplace:     config.ReplaceAll,
		FailurePolicy:     config.FailureContinue,
		TruncationPolicy:  config.TruncationTruncate,
		PromptTokenBudget: 1000,
		Provider:          "fake",
		Model:             "fake-model",
	}
}

type fixture struct {
	dir        string
	summarizer *fakeSummarizer
	metrics    *metrics.Metrics
	service    *summarize.Service
}

func newFixture(t *testing.T, opts summarize.Options, files map[string]string) *fixture {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	f := &fixture{
		dir:        dir,
		summarizer: &fakeSummarizer{},
		metrics:    metrics.New(prometheus.NewRegistry()),
	}
	f.service = summarize.NewService(
		document.NewDirSource(dir, ".markdown"),
		&document.FileStore{},
		markup.NewNormalizer(markup.Options{}),
		markup.FrontMatter{},
		f.summarizer,
		f.metrics,
		opts,
	)
	return f
}

func (f *fixture) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestRun_ElevenLineHeaderScenario(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		reply     string
		wantInput string
	}{
		{
			name:      "inline markup",
			body:      "<p>Hello <b>world</b></p>",
			reply:     "This is a summary. Partial",
			wantInput: "Hello world",
		},
		{
			name:      "heading and paragraph",
			body:      "<h1>Title</h1><p>Some article text.</p>",
			reply:     "This is a summary. Trailing fragment",
			wantInput: "Title\nSome article text.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := header11 + tt.body + "\n" + marker + "\n"
			f := newFixture(t, defaultOptions(), map[string]string{"post.markdown": original})
			f.summarizer.respond = func(string) (string, error) { return tt.reply, nil }

			report, err := f.service.Run(context.Background())
			require.NoError(t, err)

			assert.Equal(t, []string{tt.wantInput}, f.summarizer.inputs)
			assert.Equal(t, header11+tt.body+"\nThis is a summary.\n", f.read(t, "post.markdown"))

			want := []entity.Result{{
				Path:     filepath.Join(f.dir, "post.markdown"),
				Status:   entity.StatusWritten,
				Summary:  "This is a summary.",
				Replaced: 1,
			}}
			if diff := cmp.Diff(want, report.Results, cmpopts.IgnoreFields(entity.Result{}, "Duration")); diff != "" {
				t.Errorf("results mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, 1, report.Stats.Documents)
			assert.Equal(t, 1, report.Stats.Written)

			assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DocumentsTotal.WithLabelValues("written")))
			assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.SummaryTrimmed))
		})
	}
}

func TestRun_OffsetBeyondLineCount(t *testing.T) {
	original := "line 1\nline 2\n" + marker + "\nline 4\nline 5\n"
	f := newFixture(t, defaultOptions(), map[string]string{"short.markdown": original})

	report, err := f.service.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, f.summarizer.inputs, "no service call")
	assert.Equal(t, original, f.read(t, "short.markdown"))
	require.Len(t, report.Results, 1)
	assert.Equal(t, entity.StatusSkipped, report.Results[0].Status)
	assert.Equal(t, entity.SkipNoMarker, report.Results[0].SkipReason)
	assert.ErrorIs(t, report.Results[0].Err, entity.ErrNoMarker)
	assert.Zero(t, report.Stats.Failed)
}

func TestRun_MarkerOnlyInHeaderIsSkipped(t *testing.T) {
	header := strings.Replace(header11, "summary: none", "summary: "+marker, 1)
	original := header + "Body without placeholder.\n"
	f := newFixture(t, defaultOptions(), map[string]string{"post.markdown": original})

	report, err := f.service.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, f.summarizer.inputs)
	assert.Equal(t, original, f.read(t, "post.markdown"))
	assert.Equal(t, 1, report.Stats.Skipped)
}

func TestRun_NonMatchingFilesUntouched(t *testing.T) {
	other := header11 + marker + "\n"
	f := newFixture(t, defaultOptions(), map[string]string{
		"notes.txt":     other,
		"post.md":       other,
		"post.markdown": header11 + "Text. " + marker + "\n",
	})
	require.NoError(t, os.Mkdir(filepath.Join(f.dir, "dir.markdown"), 0o755))

	report, err := f.service.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, other, f.read(t, "notes.txt"))
	assert.Equal(t, other, f.read(t, "post.md"))
	assert.Equal(t, 1, report.Stats.Documents)
	assert.Equal(t, 1, report.Stats.Written)
}

func threeDocuments() map[string]string {
	return map[string]string{
		"a.markdown": header11 + "Alpha. " + marker + "\n",
		"b.markdown": header11 + "Bravo. " + marker + "\n",
		"c.markdown": header11 + "Charlie. " + marker + "\n",
	}
}

var errServiceDown = errors.New("service down")

func failOnBravo(text string) (string, error) {
	if strings.Contains(text, "Bravo") {
		return "", &entity.ServiceError{Provider: "fake", Err: errServiceDown}
	}
	return "Summary of " + strings.TrimSpace(text), nil
}

func TestRun_ContinueAfterFailure(t *testing.T) {
	files := threeDocuments()
	f := newFixture(t, defaultOptions(), files)
	f.summarizer.respond = failOnBravo

	report, err := f.service.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, f.summarizer.inputs, 3)
	assert.Equal(t, header11+"Alpha. Summary of Alpha.\n", f.read(t, "a.markdown"))
	assert.Equal(t, files["b.markdown"], f.read(t, "b.markdown"))
	assert.Equal(t, header11+"Charlie. Summary of Charlie.\n", f.read(t, "c.markdown"))

	stats := report.Stats
	assert.Positive(t, stats.Duration)
	stats.Duration = 0
	assert.Equal(t, entity.RunStats{Documents: 3, Written: 2, Failed: 1}, stats)
	require.Len(t, report.Results, 3)
	assert.Equal(t, entity.StatusFailed, report.Results[1].Status)
	assert.True(t, entity.IsServiceError(report.Results[1].Err))
}

func TestRun_AbortOnFailure(t *testing.T) {
	files := threeDocuments()
	opts := defaultOptions()
	opts.FailurePolicy = config.FailureAbort
	f := newFixture(t, opts, files)
	f.summarizer.respond = failOnBravo

	report, err := f.service.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, summarize.ErrRunAborted)
	assert.ErrorIs(t, err, errServiceDown)
	assert.Len(t, f.summarizer.inputs, 2)
	assert.Equal(t, header11+"Alpha. Summary of Alpha.\n", f.read(t, "a.markdown"))
	assert.Equal(t, files["b.markdown"], f.read(t, "b.markdown"))
	assert.Equal(t, files["c.markdown"], f.read(t, "c.markdown"), "documents after the failure are untouched")
	assert.Equal(t, 2, report.Stats.Documents)
	assert.Equal(t, 1, report.Stats.Failed)
}

func TestRun_ReplaceFirst(t *testing.T) {
	opts := defaultOptions()
	opts.MarkerReplace = config.ReplaceFirst
	body := "Intro. " + marker + "\n```\n" + marker + "\n```\n"
	f := newFixture(t, opts, map[string]string{"post.markdown": header11 + body})

	report, err := f.service.Run(context.Background())
	require.NoError(t, err)

	got := f.read(t, "post.markdown")
	assert.Equal(t, 1, strings.Count(got, marker))
	assert.Equal(t, 1, strings.Count(got, "This is a summary."))
	assert.Equal(t, 1, report.Results[0].Replaced)
}

func TestRun_ReplaceAll(t *testing.T) {
	body := "Intro. " + marker + "\nOutro. " + marker + "\n"
	f := newFixture(t, defaultOptions(), map[string]string{"post.markdown": header11 + body})

	_, err := f.service.Run(context.Background())
	require.NoError(t, err)

	got := f.read(t, "post.markdown")
	assert.NotContains(t, got, marker)
	assert.Equal(t, 2, strings.Count(got, "This is a summary."))
}

func TestRun_DryRunNeverWrites(t *testing.T) {
	opts := defaultOptions()
	opts.DryRun = true
	files := threeDocuments()
	f := newFixture(t, opts, files)

	report, err := f.service.Run(context.Background())
	require.NoError(t, err)

	for name, content := range files {
		assert.Equal(t, content, f.read(t, name))
	}
	assert.Equal(t, 3, report.Stats.DryRun)
	for _, res := range report.Results {
		assert.Equal(t, entity.StatusDryRun, res.Status)
		assert.Equal(t, "This is a summary.", res.Summary)
	}
}

func TestRun_AutoFrontMatter(t *testing.T) {
	opts := defaultOptions()
	opts.HeaderOffset = config.AutoHeaderOffset
	opts.MarkerReplace = config.ReplaceFirst
	frontMatter := "---\ntitle: Secret Title\nnote: \"" + marker + "\"\n---\n"
	f := newFixture(t, opts, map[string]string{
		"with.markdown":    frontMatter + "Visible body. " + marker + "\n",
		"only-fm.markdown": frontMatter + "No placeholder here.\n",
		"plain.markdown":   "Plain body. " + marker + "\n",
	})

	report, err := f.service.Run(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"Visible body.", "Plain body."}, f.summarizer.inputs)
	assert.Equal(t, frontMatter+"Visible body. This is a summary.\n", f.read(t, "with.markdown"))
	assert.Equal(t, frontMatter+"No placeholder here.\n", f.read(t, "only-fm.markdown"))
	assert.Equal(t, "Plain body. This is a summary.\n", f.read(t, "plain.markdown"))
	assert.Equal(t, 1, report.Stats.Skipped)
}

func TestRun_TruncatesToBudget(t *testing.T) {
	opts := defaultOptions()
	opts.PromptTokenBudget = 10
	long := strings.Repeat("word ", 100)
	f := newFixture(t, opts, map[string]string{"post.markdown": header11 + long + marker + "\n"})

	report, err := f.service.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, f.summarizer.inputs, 1)
	assert.LessOrEqual(t, text.EstimateTokens(f.summarizer.inputs[0]), 10)
	assert.True(t, report.Results[0].Truncated)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.PromptTruncated))
}

func TestRun_SkipsOverBudget(t *testing.T) {
	opts := defaultOptions()
	opts.TruncationPolicy = config.TruncationSkip
	opts.PromptTokenBudget = 10
	original := header11 + strings.Repeat("word ", 100) + marker + "\n"
	f := newFixture(t, opts, map[string]string{"post.markdown": original})

	report, err := f.service.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, f.summarizer.inputs)
	assert.Equal(t, original, f.read(t, "post.markdown"))
	assert.Equal(t, entity.SkipOverBudget, report.Results[0].SkipReason)
	assert.ErrorIs(t, report.Results[0].Err, entity.ErrOverBudget)
	assert.Equal(t, 1, report.Stats.Skipped)
}

func TestRun_TruncationOff(t *testing.T) {
	opts := defaultOptions()
	opts.TruncationPolicy = config.TruncationOff
	opts.PromptTokenBudget = 10
	long := strings.TrimSpace(strings.Repeat("word ", 100))
	f := newFixture(t, opts, map[string]string{"post.markdown": header11 + long + " " + marker + "\n"})

	_, err := f.service.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, f.summarizer.inputs, 1)
	assert.Equal(t, long, f.summarizer.inputs[0])
}

func TestRun_Canceled(t *testing.T) {
	files := threeDocuments()
	f := newFixture(t, defaultOptions(), files)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.service.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.summarizer.inputs)
	assert.Equal(t, 0, report.Stats.Documents)
	for name, content := range files {
		assert.Equal(t, content, f.read(t, name))
	}
}

func TestRun_MissingDirectory(t *testing.T) {
	f := newFixture(t, defaultOptions(), nil)
	f.service.Source = document.NewDirSource(filepath.Join(f.dir, "missing"), ".markdown")

	_, err := f.service.Run(context.Background())

	require.Error(t, err)
	assert.True(t, entity.IsIOError(err))
}

func TestRun_RecordsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(sdktrace.NewTracerProvider()) })

	f := newFixture(t, defaultOptions(), threeDocuments())
	_, err := f.service.Run(context.Background())
	require.NoError(t, err)

	var runs, docs int
	for _, span := range exporter.GetSpans() {
		switch span.Name {
		case "summarize.run":
			runs++
		case "summarize.document":
			docs++
		}
	}
	assert.Equal(t, 1, runs)
	assert.Equal(t, 3, docs)
}

func TestScan(t *testing.T) {
	f := newFixture(t, defaultOptions(), map[string]string{
		"a.markdown": header11 + "Pending. " + marker + "\n",
		"b.markdown": header11 + "Done.\n",
		"c.markdown": "short " + marker + "\n",
	})

	pending, err := f.service.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(f.dir, "a.markdown")}, pending)
	assert.Empty(t, f.summarizer.inputs)
}
