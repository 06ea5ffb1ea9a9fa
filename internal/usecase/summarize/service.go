package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"blog-summarizer/internal/config"
	"blog-summarizer/internal/domain/entity"
	"blog-summarizer/internal/observability/logging"
	"blog-summarizer/internal/observability/tracing"
	"blog-summarizer/internal/utils/text"
)

// Source enumerates the documents of a run.
type Source interface {
	List(ctx context.Context) ([]string, error)
}

// Store reads and rewrites documents.
type Store interface {
	Read(ctx context.Context, path string) (*entity.Document, error)
	Write(ctx context.Context, path, content string) error
}

// Normalizer turns a markup body into plain text. It never fails.
type Normalizer interface {
	Normalize(body string) string
}

// FrontMatterSplitter separates a front matter block from the document body.
type FrontMatterSplitter interface {
	Split(raw string) (body string, found bool, err error)
}

// Summarizer is an interface for AI-powered text summarization.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// MetricsRecorder records pipeline metrics. *metrics.Metrics implements it.
type MetricsRecorder interface {
	RecordDocument(status entity.Status)
	RecordSummaryTrimmed()
	RecordPromptTruncated()
	RecordLength(length int)
	RecordRunFinished(at time.Time)
}

// Options controls how the pipeline treats each document.
type Options struct {
	Marker            string
	HeaderOffset      int
	MarkerReplace     config.ReplaceMode
	FailurePolicy     config.FailurePolicy
	TruncationPolicy  config.TruncationPolicy
	PromptTokenBudget int
	DryRun            bool
	Provider          string
	Model             string
}

// OptionsFromConfig copies the pipeline settings out of a validated Config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Marker:            cfg.Marker,
		HeaderOffset:      cfg.HeaderOffset,
		MarkerReplace:     cfg.MarkerReplace,
		FailurePolicy:     cfg.FailurePolicy,
		TruncationPolicy:  cfg.TruncationPolicy,
		PromptTokenBudget: cfg.PromptTokenBudget,
		DryRun:            cfg.DryRun,
		Provider:          string(cfg.Provider),
		Model:             cfg.Model,
	}
}

// Service provides the summarization use cases.
// Documents are processed strictly one at a time.
type Service struct {
	Source      Source
	Store       Store
	Normalizer  Normalizer
	FrontMatter FrontMatterSplitter
	Summarizer  Summarizer
	Metrics     MetricsRecorder
	opts        Options
}

// NewService creates a new summarize Service with the provided dependencies.
// metrics may be nil to disable recording.
func NewService(
	source Source,
	store Store,
	normalizer Normalizer,
	frontMatter FrontMatterSplitter,
	summarizer Summarizer,
	metrics MetricsRecorder,
	opts Options,
) *Service {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Service{
		Source:      source,
		Store:       store,
		Normalizer:  normalizer,
		FrontMatter: frontMatter,
		Summarizer:  summarizer,
		Metrics:     metrics,
		opts:        opts,
	}
}

// RunReport is the outcome of a batch run: one result per attempted document
// and the aggregated counts.
type RunReport struct {
	Stats   entity.RunStats
	Results []entity.Result
}

// Run processes every document of the source in lexical order.
//
// With the continue policy a failed document is logged and counted and the run
// moves on. With the abort policy the run stops at the first failure and
// returns an error wrapping ErrRunAborted and the document error. Context
// cancellation always stops the run. The report is returned in every case.
func (s *Service) Run(ctx context.Context) (*RunReport, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()
	report := &RunReport{}

	ctx, span := tracing.GetTracer().Start(ctx, "summarize.run",
		trace.WithAttributes(
			tracing.AttrProvider.String(s.opts.Provider),
			tracing.AttrModel.String(s.opts.Model),
			attribute.Bool("dry_run", s.opts.DryRun),
		))
	defer span.End()

	defer func() {
		report.Stats.Duration = time.Since(start)
		s.Metrics.RecordRunFinished(time.Now())
		span.SetAttributes(
			attribute.Int("documents", report.Stats.Documents),
			attribute.Int("written", report.Stats.Written),
			attribute.Int("failed", report.Stats.Failed),
		)
	}()

	paths, err := s.Source.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list documents")
		return report, fmt.Errorf("list documents: %w", err)
	}

	logger.Info("summarization run started",
		slog.Int("documents", len(paths)),
		slog.Bool("dry_run", s.opts.DryRun))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			logger.Warn("summarization run canceled", slog.String("error", err.Error()))
			span.SetStatus(codes.Error, "canceled")
			return report, err
		}

		res := s.ProcessDocument(ctx, path)
		report.Results = append(report.Results, res)
		report.Stats.Add(res)

		if res.Status != entity.StatusFailed {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(res.Err, ctxErr) {
			span.SetStatus(codes.Error, "canceled")
			return report, ctxErr
		}
		if s.opts.FailurePolicy == config.FailureAbort {
			span.SetStatus(codes.Error, "aborted")
			logger.Error("summarization run aborted",
				slog.String("path", path),
				slog.String("error", res.Err.Error()))
			return report, fmt.Errorf("%w: %s: %w", ErrRunAborted, path, res.Err)
		}
	}

	logger.Info("summarization run completed",
		slog.Int("documents", report.Stats.Documents),
		slog.Int("written", report.Stats.Written),
		slog.Int("dry_run", report.Stats.DryRun),
		slog.Int("skipped", report.Stats.Skipped),
		slog.Int("failed", report.Stats.Failed),
		slog.Duration("duration", time.Since(start)))

	return report, nil
}

// Scan returns the documents whose body still contains the marker, without
// calling the text-generation service or writing anything.
func (s *Service) Scan(ctx context.Context) ([]string, error) {
	paths, err := s.Source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	var pending []string
	for _, path := range paths {
		doc, err := s.Store.Read(ctx, path)
		if err != nil {
			return pending, err
		}
		_, body := s.splitBody(ctx, doc)
		if strings.Contains(body, s.opts.Marker) {
			pending = append(pending, path)
		}
	}
	return pending, nil
}

// ProcessDocument runs the full pipeline for one document and reports the
// terminal state. It never panics on document content; every failure is
// returned in the result.
func (s *Service) ProcessDocument(ctx context.Context, path string) (res entity.Result) {
	start := time.Now()
	res = entity.Result{Path: path, Status: entity.StatusUnprocessed}
	logger := logging.WithFields(logging.FromContext(ctx), map[string]interface{}{"path": path})

	ctx, span := tracing.GetTracer().Start(ctx, "summarize.document",
		trace.WithAttributes(tracing.AttrPath.String(path)))

	defer func() {
		res.Duration = time.Since(start)
		s.Metrics.RecordDocument(res.Status)
		span.SetAttributes(tracing.AttrStatus.String(string(res.Status)))
		switch {
		case res.Status == entity.StatusSkipped:
			logger.Info("document skipped",
				slog.String("reason", string(res.SkipReason)),
				slog.String("detail", res.Err.Error()),
				slog.Duration("duration", res.Duration))
		case res.Err != nil:
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, string(res.Status))
			logger.Error("document failed",
				slog.String("status", string(res.Status)),
				slog.Duration("duration", res.Duration),
				slog.String("error", res.Err.Error()))
		default:
			logger.Info("document processed",
				slog.String("status", string(res.Status)),
				slog.Duration("duration", res.Duration))
		}
		span.End()
	}()

	fail := func(err error) entity.Result {
		res.Status = entity.StatusFailed
		res.Err = err
		return res
	}
	skip := func(reason entity.SkipReason, err error) entity.Result {
		res.Status = entity.StatusSkipped
		res.SkipReason = reason
		res.Err = err
		return res
	}

	doc, err := s.Store.Read(ctx, path)
	if err != nil {
		return fail(err)
	}

	header, body := s.splitBody(ctx, doc)
	if !strings.Contains(body, s.opts.Marker) {
		return skip(entity.SkipNoMarker, entity.ErrNoMarker)
	}
	res.Status = entity.StatusMarkerFound

	content := s.Normalizer.Normalize(body)

	switch s.opts.TruncationPolicy {
	case config.TruncationTruncate:
		content, res.Truncated = text.TruncateToTokens(content, s.opts.PromptTokenBudget)
		if res.Truncated {
			s.Metrics.RecordPromptTruncated()
			logger.Warn("content truncated to prompt token budget",
				slog.Int("budget", s.opts.PromptTokenBudget))
		}
	case config.TruncationSkip:
		if tokens := text.EstimateTokens(content); tokens > s.opts.PromptTokenBudget {
			logger.Warn("content exceeds prompt token budget, skipping",
				slog.Int("estimated_tokens", tokens),
				slog.Int("budget", s.opts.PromptTokenBudget))
			return skip(entity.SkipOverBudget, fmt.Errorf("%w: %d > %d", entity.ErrOverBudget, tokens, s.opts.PromptTokenBudget))
		}
	}

	generated, err := s.Summarizer.Summarize(ctx, content)
	if err != nil {
		return fail(fmt.Errorf("summarize: %w", err))
	}

	summary := FinishSummary(generated)
	if summary != generated {
		s.Metrics.RecordSummaryTrimmed()
	}
	s.Metrics.RecordLength(text.CountRunes(summary))
	res.Summary = summary
	res.Status = entity.StatusSummarized

	updated, replaced := ReplaceMarker(header, body, s.opts.Marker, summary, s.opts.MarkerReplace)
	res.Replaced = replaced

	if s.opts.DryRun {
		logger.Info("dry run, document not written", slog.String("summary", summary))
		res.Status = entity.StatusDryRun
		return res
	}

	if err := s.Store.Write(ctx, path, updated); err != nil {
		return fail(err)
	}
	res.Status = entity.StatusWritten
	return res
}

// splitBody separates the header (preserved verbatim) from the summarizable
// body. The body is always a suffix of the raw document content.
func (s *Service) splitBody(ctx context.Context, doc *entity.Document) (header, body string) {
	raw := doc.Raw()

	if s.opts.HeaderOffset == config.AutoHeaderOffset && s.FrontMatter != nil {
		rest, found, err := s.FrontMatter.Split(raw)
		switch {
		case err != nil:
			logging.FromContext(ctx).Warn("front matter unreadable, using whole document as body",
				slog.String("path", doc.Path),
				slog.String("error", err.Error()))
			return "", raw
		case !found:
			return "", raw
		default:
			return raw[:len(raw)-len(rest)], rest
		}
	}

	body = ExtractBody(doc.Lines, s.opts.HeaderOffset)
	return raw[:len(raw)-len(body)], body
}

type noopMetrics struct{}

func (noopMetrics) RecordDocument(entity.Status) {}
func (noopMetrics) RecordSummaryTrimmed()        {}
func (noopMetrics) RecordPromptTruncated()       {}
func (noopMetrics) RecordLength(int)             {}
func (noopMetrics) RecordRunFinished(time.Time)  {}
