package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"blog-summarizer/internal/domain/entity"
	"blog-summarizer/internal/resilience/circuitbreaker"
)

// ProviderOpenAI is the provider name reported in errors, logs and metrics.
const ProviderOpenAI = "openai"

// OpenAI summarizes text with the OpenAI chat completion API.
type OpenAI struct {
	client *openai.Client
	config Config
	guard  guard
}

// NewOpenAI creates a new OpenAI summarizer with the given API key.
// A non-empty cfg.BaseURL points the client at a compatible endpoint.
func NewOpenAI(apiKey string, cfg Config, recorder SummaryMetricsRecorder) *OpenAI {
	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	g := newGuard(ProviderOpenAI, circuitbreaker.OpenAIAPIConfig(), cfg, recorder)

	slog.Info("Initialized OpenAI summarizer",
		slog.String("model", cfg.Model),
		slog.Int("max_tokens", cfg.MaxTokens),
		slog.Bool("rate_limited", g.limiter.Enabled()),
		slog.Bool("circuit_breaker", g.circuitBreaker != nil))

	return &OpenAI{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		guard:  g,
	}
}

// Summarize generates a summary of content and returns the first choice.
func (o *OpenAI) Summarize(ctx context.Context, content string) (string, error) {
	return o.guard.do(ctx, content, o.doSummarize)
}

func (o *OpenAI) doSummarize(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.config.Model,
		MaxTokens: o.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}

	// Validate response structure (safety check to prevent panic on array access)
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", entity.ErrMalformedResponse)
	}

	summary := resp.Choices[0].Message.Content
	if strings.TrimSpace(summary) == "" {
		return "", fmt.Errorf("%w: empty text", entity.ErrMalformedResponse)
	}
	return summary, nil
}
