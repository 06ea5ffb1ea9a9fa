package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variable names.
const (
	EnvConfigFile        = "SUMMARIZER_CONFIG"
	EnvAPIKey            = "SUMMARIZER_API_KEY"
	EnvProvider          = "SUMMARIZER_TYPE"
	EnvBaseURL           = "SUMMARIZER_BASE_URL"
	EnvBlogDir           = "BLOG_DIR"
	EnvFileExt           = "BLOG_FILE_EXT"
	EnvHeaderOffset      = "BLOG_OFFSET"
	EnvModel             = "MODEL_NAME"
	EnvMaxResponseTokens = "MAX_RESPONSE_TOKENS"
	EnvMarker            = "INSERTION_MARKER"
	EnvFailurePolicy     = "FAILURE_POLICY"
	EnvTruncationPolicy  = "TRUNCATION_POLICY"
	EnvPromptTokenBudget = "PROMPT_TOKEN_BUDGET"
	EnvMarkerReplace     = "MARKER_REPLACE"
	EnvRenderMarkdown    = "RENDER_MARKDOWN"
	EnvExtractor         = "CONTENT_EXTRACTOR"
	EnvAtomicWrite       = "ATOMIC_WRITE"
	EnvDryRun            = "DRY_RUN"
	EnvTimeout           = "SUMMARIZER_TIMEOUT"
	EnvRequestsPerSecond = "SUMMARIZER_RPS"
	EnvCircuitBreaker    = "SUMMARIZER_CIRCUIT_BREAKER"
	EnvMetricsAddr       = "METRICS_ADDR"
	EnvMetricsFile       = "METRICS_TEXTFILE"
)

// mergeEnv overlays every environment variable that is set.
// Malformed numeric, boolean or duration values are errors (fail-closed):
// a typo must not silently fall back to a default and rewrite a whole blog.
func (c *Config) mergeEnv() error {
	var errs []error

	overrideString(&c.APIKey, EnvAPIKey)
	overrideString((*string)(&c.Provider), EnvProvider)
	overrideString(&c.BaseURL, EnvBaseURL)
	overrideString(&c.BlogDir, EnvBlogDir)
	overrideString(&c.FileExt, EnvFileExt)
	overrideString(&c.Model, EnvModel)
	overrideString(&c.Marker, EnvMarker)
	overrideString((*string)(&c.FailurePolicy), EnvFailurePolicy)
	overrideString((*string)(&c.TruncationPolicy), EnvTruncationPolicy)
	overrideString((*string)(&c.MarkerReplace), EnvMarkerReplace)
	overrideString((*string)(&c.Extractor), EnvExtractor)
	overrideString(&c.MetricsAddr, EnvMetricsAddr)
	overrideString(&c.MetricsFile, EnvMetricsFile)

	errs = append(errs,
		overrideInt(&c.HeaderOffset, EnvHeaderOffset),
		overrideInt(&c.MaxResponseTokens, EnvMaxResponseTokens),
		overrideInt(&c.PromptTokenBudget, EnvPromptTokenBudget),
		overrideBool(&c.RenderMarkdown, EnvRenderMarkdown),
		overrideBool(&c.AtomicWrite, EnvAtomicWrite),
		overrideBool(&c.DryRun, EnvDryRun),
		overrideDuration(&c.Timeout, EnvTimeout),
		overrideFloat(&c.RequestsPerSecond, EnvRequestsPerSecond),
		overrideBool(&c.CircuitBreaker, EnvCircuitBreaker),
	)

	return errors.Join(errs...)
}

// lookup returns the trimmed value of key and whether it is set and non-empty.
func lookup(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	// The marker may legitimately carry surrounding spaces; only blank values are ignored.
	if strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

func overrideString(dst *string, key string) {
	if value, ok := lookup(key); ok {
		*dst = value
	}
}

func overrideInt(dst *int, key string) error {
	value, ok := lookup(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid %s format: %s: %w", key, value, err)
	}
	*dst = parsed
	return nil
}

func overrideBool(dst *bool, key string) error {
	value, ok := lookup(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid %s format: %s: %w", key, value, err)
	}
	*dst = parsed
	return nil
}

func overrideFloat(dst *float64, key string) error {
	value, ok := lookup(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fmt.Errorf("invalid %s format: %s: %w", key, value, err)
	}
	*dst = parsed
	return nil
}

// overrideDuration supports formats like "30s", "1m", "2h".
func overrideDuration(dst *time.Duration, key string) error {
	value, ok := lookup(key)
	if !ok {
		return nil
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid %s format: %s: %w", key, value, err)
	}
	*dst = parsed
	return nil
}
