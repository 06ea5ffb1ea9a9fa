package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"blog-summarizer/internal/domain/entity"
	"blog-summarizer/internal/observability/logging"
	"blog-summarizer/internal/resilience/circuitbreaker"
	"blog-summarizer/internal/resilience/ratelimit"
	"blog-summarizer/internal/utils/text"
)

// guard runs a single provider request under the rate limiter, the per-call
// timeout and, when enabled, the circuit breaker. Requests are never retried.
type guard struct {
	provider        string
	model           string
	timeout         time.Duration
	circuitBreaker  *circuitbreaker.CircuitBreaker // nil when disabled
	limiter         *ratelimit.Limiter
	metricsRecorder SummaryMetricsRecorder
}

func newGuard(provider string, cbConfig circuitbreaker.Config, cfg Config, recorder SummaryMetricsRecorder) guard {
	if recorder == nil {
		recorder = NoopMetricsRecorder{}
	}
	g := guard{
		provider:        provider,
		model:           cfg.Model,
		timeout:         cfg.Timeout,
		limiter:         ratelimit.New(cfg.RequestsPerSecond, 1),
		metricsRecorder: recorder,
	}
	if cfg.CircuitBreaker {
		g.circuitBreaker = circuitbreaker.New(cbConfig)
	}
	return g
}

// requestFunc performs one API call with the given prompt and returns the raw generated text.
type requestFunc func(ctx context.Context, prompt string) (string, error)

// do builds the prompt for content, runs request and returns the generated
// text trimmed of surrounding whitespace. Every failure is a *entity.ServiceError.
func (g *guard) do(ctx context.Context, content string, request requestFunc) (string, error) {
	logger := logging.FromContext(ctx).With(
		slog.String("request_id", uuid.New().String()),
		slog.String("provider", g.provider),
		slog.String("model", g.model))

	if err := g.limiter.Wait(ctx); err != nil {
		return "", &entity.ServiceError{Provider: g.provider, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	prompt := BuildPrompt(content)
	logger.DebugContext(ctx, "Starting summarization",
		slog.Int("input_length", text.CountRunes(content)),
		slog.Int("estimated_tokens", text.EstimateTokens(prompt)))

	start := time.Now()
	generated, err := g.execute(ctx, prompt, request)
	duration := time.Since(start)

	if err != nil {
		g.metricsRecorder.RecordProviderError(g.provider)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logger.WarnContext(ctx, "circuit breaker open, request rejected",
				slog.String("state", g.circuitBreaker.State().String()))
			return "", &entity.ServiceError{Provider: g.provider, Err: fmt.Errorf("api unavailable: %w", err)}
		}
		logger.ErrorContext(ctx, "Summarization failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", &entity.ServiceError{Provider: g.provider, Err: err}
	}

	summary := strings.TrimSpace(generated)
	g.metricsRecorder.RecordDuration(duration)

	logger.InfoContext(ctx, "Summarization completed",
		slog.Int("summary_length", text.CountRunes(summary)),
		slog.Duration("duration", duration))

	return summary, nil
}

func (g *guard) execute(ctx context.Context, prompt string, request requestFunc) (string, error) {
	if g.circuitBreaker == nil {
		return request(ctx, prompt)
	}
	result, err := g.circuitBreaker.Execute(func() (interface{}, error) {
		return request(ctx, prompt)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}
