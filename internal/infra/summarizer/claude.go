package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"blog-summarizer/internal/domain/entity"
	"blog-summarizer/internal/resilience/circuitbreaker"
)

// ProviderClaude is the provider name reported in errors, logs and metrics.
const ProviderClaude = "claude"

// Claude summarizes text with Anthropic's Messages API.
type Claude struct {
	client anthropic.Client
	config Config
	guard  guard
}

// NewClaude creates a new Claude summarizer with the given API key.
// The SDK's built-in retries are disabled; a failed call fails the document.
func NewClaude(apiKey string, cfg Config, recorder SummaryMetricsRecorder) *Claude {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	g := newGuard(ProviderClaude, circuitbreaker.ClaudeAPIConfig(), cfg, recorder)

	slog.Info("Initialized Claude summarizer",
		slog.String("model", cfg.Model),
		slog.Int("max_tokens", cfg.MaxTokens),
		slog.Bool("rate_limited", g.limiter.Enabled()),
		slog.Bool("circuit_breaker", g.circuitBreaker != nil))

	return &Claude{
		client: anthropic.NewClient(opts...),
		config: cfg,
		guard:  g,
	}
}

// Summarize generates a summary of content and returns the first text block.
func (c *Claude) Summarize(ctx context.Context, content string) (string, error) {
	return c.guard.do(ctx, content, c.doSummarize)
}

func (c *Claude) doSummarize(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		return "", fmt.Errorf("%w: empty content", entity.ErrMalformedResponse)
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("%w: unexpected content type %q", entity.ErrMalformedResponse, message.Content[0].Type)
	}
	if strings.TrimSpace(textBlock.Text) == "" {
		return "", fmt.Errorf("%w: empty text", entity.ErrMalformedResponse)
	}

	return textBlock.Text, nil
}
