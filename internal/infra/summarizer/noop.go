// Package summarizer provides the text-generation backends that turn cleaned
// document content into a summary: OpenAI, Claude and an offline NoOp.
// Remote calls run through a circuit breaker and an optional rate limiter,
// are bounded by a timeout and are never retried.
package summarizer

import (
	"context"
	"strings"
)

// ProviderNoop is the provider name of the offline summarizer.
const ProviderNoop = "noop"

// noopMaxRunes bounds the length of a NoOp summary.
const noopMaxRunes = 500

// NoOp is a summarizer that echoes the leading part of the content without any
// network call. It is useful for dry runs and development.
type NoOp struct{}

// NewNoOp creates a new NoOp summarizer.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Summarize returns the content with whitespace collapsed, cut to 500 characters.
func (n *NoOp) Summarize(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	summary := strings.Join(strings.Fields(content), " ")
	runes := []rune(summary)
	if len(runes) > noopMaxRunes {
		summary = string(runes[:noopMaxRunes])
	}
	return summary, nil
}
