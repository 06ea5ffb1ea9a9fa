package summarizer

import (
	"fmt"
	"time"
)

// Config holds the request parameters shared by every provider.
type Config struct {
	// Model is the provider model identifier.
	Model string

	// MaxTokens is the maximum number of tokens generated per request.
	MaxTokens int

	// Timeout is the maximum duration for a single summarization API call.
	Timeout time.Duration

	// BaseURL overrides the provider endpoint when non-empty.
	BaseURL string

	// RequestsPerSecond paces API calls; 0 disables pacing.
	RequestsPerSecond float64

	// CircuitBreaker rejects calls after repeated failures instead of sending
	// them. Off by default: every qualifying document gets its own request.
	CircuitBreaker bool
}

// Validate validates the configuration and returns an error if invalid.
func (c Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second must be >= 0, got %v", c.RequestsPerSecond)
	}

	return nil
}
