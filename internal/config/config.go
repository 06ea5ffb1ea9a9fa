// Package config holds the process-wide, read-only configuration of a summarization run.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// environment variables, then command-line flags (applied by the CLI).
// The resulting Config is validated once at startup and passed explicitly into
// the pipeline; nothing reads configuration from globals afterwards.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"blog-summarizer/internal/domain/entity"
)

// Provider names the text-generation backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderClaude Provider = "claude"
	// ProviderNoop generates summaries locally without any network call.
	ProviderNoop Provider = "noop"
)

// FailurePolicy decides what the batch driver does when a document fails.
type FailurePolicy string

const (
	// FailureContinue logs the failed document and moves on to the next one.
	FailureContinue FailurePolicy = "continue"
	// FailureAbort stops the run at the first failed document.
	FailureAbort FailurePolicy = "abort"
)

// TruncationPolicy decides what happens when a cleaned body exceeds the prompt token budget.
type TruncationPolicy string

const (
	TruncationTruncate TruncationPolicy = "truncate"
	TruncationSkip     TruncationPolicy = "skip"
	TruncationOff      TruncationPolicy = "off"
)

// ReplaceMode selects how many marker occurrences are substituted.
type ReplaceMode string

const (
	// ReplaceAll substitutes every occurrence in the file, including ones inside
	// code blocks or the header.
	ReplaceAll ReplaceMode = "all"
	// ReplaceFirst substitutes only the first occurrence in the body.
	ReplaceFirst ReplaceMode = "first"
)

// Extractor selects the markup-to-text strategy.
type Extractor string

const (
	ExtractorGoquery     Extractor = "goquery"
	ExtractorReadability Extractor = "readability"
)

// AutoHeaderOffset makes the pipeline detect front matter instead of skipping a fixed line count.
const AutoHeaderOffset = -1

// Default values.
const (
	DefaultFileExt           = ".markdown"
	DefaultHeaderOffset      = 11
	DefaultMaxResponseTokens = 150
	DefaultMarker            = "<!-- Insert Summary Here -->"
	DefaultPromptTokenBudget = 1000
	DefaultTimeout           = 60 * time.Second
	DefaultOpenAIModel       = "gpt-3.5-turbo"
	DefaultClaudeModel       = "claude-sonnet-4-5"
)

// Config is the complete run configuration.
type Config struct {
	// APIKey is the credential for the text-generation service.
	// Required unless Provider is noop.
	APIKey string `yaml:"api_key"`

	// Provider selects the text-generation backend. Default: openai
	Provider Provider `yaml:"provider"`

	// BaseURL overrides the provider API endpoint (proxies, compatible servers).
	BaseURL string `yaml:"base_url"`

	// BlogDir is the directory holding the documents. Required.
	BlogDir string `yaml:"blog_dir"`

	// FileExt is the extension filter, dot included. Default: .markdown
	FileExt string `yaml:"file_ext"`

	// HeaderOffset is the number of leading front matter lines excluded from the
	// summarization input. -1 detects front matter automatically. Default: 11
	HeaderOffset int `yaml:"header_offset"`

	// Model is the provider model identifier. Default depends on Provider.
	Model string `yaml:"model"`

	// MaxResponseTokens caps the generated tokens per request. Default: 150
	MaxResponseTokens int `yaml:"max_response_tokens"`

	// Marker is the literal placeholder replaced by the summary.
	Marker string `yaml:"marker"`

	// FailurePolicy is continue (default) or abort.
	FailurePolicy FailurePolicy `yaml:"failure_policy"`

	// TruncationPolicy is truncate (default), skip or off.
	TruncationPolicy TruncationPolicy `yaml:"truncation_policy"`

	// PromptTokenBudget is the maximum estimated token count of the cleaned body. Default: 1000
	PromptTokenBudget int `yaml:"prompt_token_budget"`

	// MarkerReplace is all (default) or first.
	MarkerReplace ReplaceMode `yaml:"marker_replace"`

	// RenderMarkdown renders the body with goldmark before stripping tags.
	RenderMarkdown bool `yaml:"render_markdown"`

	// Extractor is goquery (default) or readability.
	Extractor Extractor `yaml:"extractor"`

	// AtomicWrite writes through a temporary file and rename.
	AtomicWrite bool `yaml:"atomic_write"`

	// DryRun reports summaries without rewriting any file.
	DryRun bool `yaml:"dry_run"`

	// Timeout bounds a single text-generation call. Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// RequestsPerSecond paces provider calls; 0 disables pacing.
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// CircuitBreaker stops calling the provider after repeated failures.
	// Off by default, so a burst of errors never fails the remaining documents unsent.
	CircuitBreaker bool `yaml:"circuit_breaker"`

	// MetricsAddr serves /metrics and /health during the run when set (e.g. ":9090").
	MetricsAddr string `yaml:"metrics_addr"`

	// MetricsFile receives a Prometheus textfile dump at the end of the run when set.
	MetricsFile string `yaml:"metrics_file"`
}

// Default returns a Config with every default applied.
// Model and APIKey stay empty until ApplyProviderDefaults runs.
func Default() Config {
	return Config{
		Provider:          ProviderOpenAI,
		FileExt:           DefaultFileExt,
		HeaderOffset:      DefaultHeaderOffset,
		MaxResponseTokens: DefaultMaxResponseTokens,
		Marker:            DefaultMarker,
		FailurePolicy:     FailureContinue,
		TruncationPolicy:  TruncationTruncate,
		PromptTokenBudget: DefaultPromptTokenBudget,
		MarkerReplace:     ReplaceAll,
		Extractor:         ExtractorGoquery,
		Timeout:           DefaultTimeout,
	}
}

// Load builds a Config from defaults, the optional YAML file at path and the environment.
// It does not validate; callers apply flag overrides, then ApplyProviderDefaults and Validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.mergeEnv(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeFile overlays the YAML file at path. Unknown keys are rejected.
func (c *Config) mergeFile(path string) error {
	// #nosec G304 -- path is provided by trusted source (CLI flag or environment)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyProviderDefaults fills the model and API key that depend on the final provider.
func (c *Config) ApplyProviderDefaults() {
	switch c.Provider {
	case ProviderClaude:
		if c.Model == "" {
			c.Model = DefaultClaudeModel
		}
		if c.APIKey == "" {
			c.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case ProviderNoop:
		if c.Model == "" {
			c.Model = string(ProviderNoop)
		}
	default:
		if c.Model == "" {
			c.Model = DefaultOpenAIModel
		}
		if c.APIKey == "" {
			c.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
}

// Validate checks every field and returns all failures joined together.
// Each failure is an *entity.ValidationError, so errors.Is(err, entity.ErrInvalidConfig) holds.
func (c *Config) Validate() error {
	var errs []error

	switch c.Provider {
	case ProviderOpenAI, ProviderClaude:
		if c.APIKey == "" {
			errs = append(errs, &entity.ValidationError{
				Field:   "api_key",
				Message: fmt.Sprintf("API key is required for provider %s", c.Provider),
			})
		}
	case ProviderNoop:
	default:
		errs = append(errs, invalidChoice("provider", string(c.Provider), ProviderOpenAI, ProviderClaude, ProviderNoop))
	}

	if c.BlogDir == "" {
		errs = append(errs, &entity.ValidationError{Field: "blog_dir", Message: "input directory is required"})
	}

	if err := entity.ValidateFileExt(c.FileExt); err != nil {
		errs = append(errs, err)
	}
	if err := entity.ValidateHeaderOffset(c.HeaderOffset); err != nil {
		errs = append(errs, err)
	}
	if err := entity.ValidateMarker(c.Marker); err != nil {
		errs = append(errs, err)
	}

	if c.Model == "" {
		errs = append(errs, &entity.ValidationError{Field: "model", Message: "model cannot be empty"})
	}
	if err := validateIntRange("max_response_tokens", c.MaxResponseTokens, 1, 32000); err != nil {
		errs = append(errs, err)
	}

	switch c.FailurePolicy {
	case FailureContinue, FailureAbort:
	default:
		errs = append(errs, invalidChoice("failure_policy", string(c.FailurePolicy), FailureContinue, FailureAbort))
	}

	switch c.TruncationPolicy {
	case TruncationOff:
	case TruncationTruncate, TruncationSkip:
		if err := validateIntRange("prompt_token_budget", c.PromptTokenBudget, 1, 1_000_000); err != nil {
			errs = append(errs, err)
		}
	default:
		errs = append(errs, invalidChoice("truncation_policy", string(c.TruncationPolicy), TruncationTruncate, TruncationSkip, TruncationOff))
	}

	switch c.MarkerReplace {
	case ReplaceAll, ReplaceFirst:
	default:
		errs = append(errs, invalidChoice("marker_replace", string(c.MarkerReplace), ReplaceAll, ReplaceFirst))
	}

	switch c.Extractor {
	case ExtractorGoquery, ExtractorReadability:
	default:
		errs = append(errs, invalidChoice("extractor", string(c.Extractor), ExtractorGoquery, ExtractorReadability))
	}

	if c.Timeout <= 0 {
		errs = append(errs, &entity.ValidationError{
			Field:   "timeout",
			Message: fmt.Sprintf("timeout must be positive, got %v", c.Timeout),
		})
	}
	if c.RequestsPerSecond < 0 {
		errs = append(errs, &entity.ValidationError{
			Field:   "requests_per_second",
			Message: fmt.Sprintf("requests per second must be >= 0, got %v", c.RequestsPerSecond),
		})
	}

	return errors.Join(errs...)
}

// Redacted returns a copy safe for logging.
func (c Config) Redacted() Config {
	if c.APIKey != "" {
		c.APIKey = "***"
	}
	return c
}

func validateIntRange(field string, value, min, max int) error {
	if value < min || value > max {
		return &entity.ValidationError{
			Field:   field,
			Message: fmt.Sprintf("value %d out of range [%d, %d]", value, min, max),
		}
	}
	return nil
}

func invalidChoice[T ~string](field, value string, allowed ...T) error {
	return &entity.ValidationError{
		Field:   field,
		Message: fmt.Sprintf("unsupported value %q (allowed: %v)", value, allowed),
	}
}
