package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"blog-summarizer/internal/config"
	"blog-summarizer/internal/infra/document"
	"blog-summarizer/internal/infra/markup"
	"blog-summarizer/internal/infra/summarizer"
	"blog-summarizer/internal/observability/logging"
	"blog-summarizer/internal/observability/metrics"
	"blog-summarizer/internal/usecase/summarize"
)

// newCLIApp creates the CLI application with all commands.
// Running without a command is the same as "run".
func newCLIApp(stdout, stderr io.Writer) *cli.App {
	app := &cli.App{
		Name:      "blog-summarizer",
		Usage:     "Replace the summary placeholder of every blog post with a generated summary",
		Version:   Version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     pipelineFlags(),
		Action:    runAction,
		Commands: []*cli.Command{
			runCmd(),
			scanCmd(),
			versionCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// pipelineFlags returns the flags that override configuration values.
// Environment variables are resolved by the config package, not by the flags,
// so that precedence stays defaults < file < environment < flags.
func pipelineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, EnvVars: []string{config.EnvConfigFile}, Usage: "YAML configuration file"},
		&cli.StringFlag{Name: "api-key", Usage: "Text-generation service API key"},
		&cli.StringFlag{Name: "provider", Usage: "Text-generation provider: openai|claude|noop"},
		&cli.StringFlag{Name: "base-url", Usage: "Override the provider API endpoint"},
		&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "Directory holding the blog posts"},
		&cli.StringFlag{Name: "ext", Usage: "File extension of blog posts, dot included"},
		&cli.IntFlag{Name: "offset", Usage: "Leading header lines excluded from the summary input (-1 detects front matter)"},
		&cli.StringFlag{Name: "model", Usage: "Model identifier"},
		&cli.IntFlag{Name: "max-tokens", Usage: "Maximum tokens generated per summary"},
		&cli.StringFlag{Name: "marker", Usage: "Placeholder replaced by the summary"},
		&cli.StringFlag{Name: "failure-policy", Usage: "On a failed document: continue|abort"},
		&cli.StringFlag{Name: "truncation-policy", Usage: "On content over the prompt budget: truncate|skip|off"},
		&cli.IntFlag{Name: "prompt-token-budget", Usage: "Maximum estimated tokens of summary input"},
		&cli.StringFlag{Name: "marker-replace", Usage: "Placeholder occurrences replaced: all|first"},
		&cli.BoolFlag{Name: "render-markdown", Usage: "Render markdown before extracting text"},
		&cli.StringFlag{Name: "extractor", Usage: "Text extraction: goquery|readability"},
		&cli.BoolFlag{Name: "atomic-write", Usage: "Write through a temporary file and rename"},
		&cli.BoolFlag{Name: "dry-run", Usage: "Print summaries without rewriting files"},
		&cli.DurationFlag{Name: "timeout", Usage: "Timeout of a single text-generation call"},
		&cli.Float64Flag{Name: "rps", Usage: "Maximum text-generation requests per second (0 = unlimited)"},
		&cli.BoolFlag{Name: "circuit-breaker", Usage: "Stop calling the provider after repeated failures"},
		&cli.StringFlag{Name: "metrics-addr", Usage: "Serve /metrics and /health on this address during the run"},
		&cli.StringFlag{Name: "metrics-file", Usage: "Write a Prometheus textfile at the end of the run"},
	}
}

// runCmd creates the run command.
func runCmd() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Summarize every pending post and rewrite it in place",
		Flags:  pipelineFlags(),
		Action: runAction,
	}
}

// scanCmd creates the scan command.
func scanCmd() *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "List posts that still contain the placeholder",
		Flags: pipelineFlags(),
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			// No text-generation call is made, so credentials are not required.
			scanCfg := *cfg
			scanCfg.Provider = config.ProviderNoop
			scanCfg.ApplyProviderDefaults()
			if err := scanCfg.Validate(); err != nil {
				return cli.Exit(fmt.Sprintf("invalid configuration: %v", err), exitConfig)
			}

			logger := logging.NewLogger(c.App.ErrWriter)
			ctx := logging.WithLogger(c.Context, logger)

			svc := newService(&scanCfg, summarizer.NewNoOp(), nil)
			pending, err := svc.Scan(ctx)
			if err != nil {
				return cli.Exit(fmt.Sprintf("scan failed: %v", err), exitFailure)
			}
			for _, path := range pending {
				fmt.Fprintln(c.App.Writer, path)
			}
			return nil
		},
	}
}

// versionCmd creates the version command.
func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the version",
		Action: func(c *cli.Context) error {
			fmt.Fprintf(c.App.Writer, "%s %s\n", c.App.Name, Version)
			return nil
		},
	}
}

// runAction executes a full summarization run.
func runAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	cfg.ApplyProviderDefaults()
	if err := cfg.Validate(); err != nil {
		return cli.Exit(fmt.Sprintf("invalid configuration: %v", err), exitConfig)
	}

	runID := uuid.New().String()
	logger := logging.WithRunID(logging.NewLogger(c.App.ErrWriter), runID)
	slog.SetDefault(logger)
	logger.Debug("configuration loaded", slog.Any("config", cfg.Redacted()))

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	sum, err := newSummarizer(cfg, m)
	if err != nil {
		return cli.Exit(err.Error(), exitConfig)
	}
	svc := newService(cfg, sum, m)

	var (
		report *summarize.RunReport
		runErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancelRun := context.WithCancel(gctx)
	defer cancelRun()

	if cfg.MetricsAddr != "" {
		server := newMetricsServer(cfg.MetricsAddr, registry)
		g.Go(func() error {
			return serveMetrics(runCtx, server, logger)
		})
	}
	g.Go(func() error {
		// The metrics server stops when the run ends.
		defer cancelRun()
		report, runErr = svc.Run(runCtx)
		return nil
	})
	serveErr := g.Wait()

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile, registry); err != nil {
			logger.Error("failed to write metrics textfile", slog.Any("error", err))
		}
	}

	if report != nil {
		printReport(c.App.Writer, report)
	}

	switch {
	case serveErr != nil:
		return cli.Exit(serveErr.Error(), exitFailure)
	case runErr != nil:
		return cli.Exit(fmt.Sprintf("run failed: %v", runErr), exitFailure)
	case report.Stats.Failed > 0:
		return cli.Exit(fmt.Sprintf("%d document(s) failed", report.Stats.Failed), exitFailure)
	}
	return nil
}

// loadConfig layers the YAML file and environment (config.Load) under the flags that were set.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var path string
	override(c, "config", &path, (*cli.Context).String)

	cfg, err := config.Load(path)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("failed to load config: %v", err), exitConfig)
	}
	applyFlags(c, cfg)
	return cfg, nil
}

func applyFlags(c *cli.Context, cfg *config.Config) {
	str := (*cli.Context).String
	override(c, "api-key", &cfg.APIKey, str)
	override(c, "provider", (*string)(&cfg.Provider), str)
	override(c, "base-url", &cfg.BaseURL, str)
	override(c, "dir", &cfg.BlogDir, str)
	override(c, "ext", &cfg.FileExt, str)
	override(c, "offset", &cfg.HeaderOffset, (*cli.Context).Int)
	override(c, "model", &cfg.Model, str)
	override(c, "max-tokens", &cfg.MaxResponseTokens, (*cli.Context).Int)
	override(c, "marker", &cfg.Marker, str)
	override(c, "failure-policy", (*string)(&cfg.FailurePolicy), str)
	override(c, "truncation-policy", (*string)(&cfg.TruncationPolicy), str)
	override(c, "prompt-token-budget", &cfg.PromptTokenBudget, (*cli.Context).Int)
	override(c, "marker-replace", (*string)(&cfg.MarkerReplace), str)
	override(c, "render-markdown", &cfg.RenderMarkdown, (*cli.Context).Bool)
	override(c, "extractor", (*string)(&cfg.Extractor), str)
	override(c, "atomic-write", &cfg.AtomicWrite, (*cli.Context).Bool)
	override(c, "dry-run", &cfg.DryRun, (*cli.Context).Bool)
	override(c, "timeout", &cfg.Timeout, (*cli.Context).Duration)
	override(c, "rps", &cfg.RequestsPerSecond, (*cli.Context).Float64)
	override(c, "circuit-breaker", &cfg.CircuitBreaker, (*cli.Context).Bool)
	override(c, "metrics-addr", &cfg.MetricsAddr, str)
	override(c, "metrics-file", &cfg.MetricsFile, str)
}

// override sets *dst from the flag when it was given, either before the command
// name (global) or after it. The innermost occurrence wins.
func override[T any](c *cli.Context, name string, dst *T, get func(*cli.Context, string) T) {
	for _, ctx := range c.Lineage() {
		if ctx.IsSet(name) {
			*dst = get(ctx, name)
			return
		}
	}
}

// newSummarizer creates a summarizer based on the configured provider.
func newSummarizer(cfg *config.Config, recorder summarizer.SummaryMetricsRecorder) (summarize.Summarizer, error) {
	sumCfg := summarizer.Config{
		Model:             cfg.Model,
		MaxTokens:         cfg.MaxResponseTokens,
		Timeout:           cfg.Timeout,
		BaseURL:           cfg.BaseURL,
		RequestsPerSecond: cfg.RequestsPerSecond,
		CircuitBreaker:    cfg.CircuitBreaker,
	}

	switch cfg.Provider {
	case config.ProviderNoop:
		return summarizer.NewNoOp(), nil
	case config.ProviderClaude:
		if err := sumCfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid claude configuration: %w", err)
		}
		return summarizer.NewClaude(cfg.APIKey, sumCfg, recorder), nil
	case config.ProviderOpenAI:
		if err := sumCfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid openai configuration: %w", err)
		}
		return summarizer.NewOpenAI(cfg.APIKey, sumCfg, recorder), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

// newService wires the pipeline for cfg. m may be nil.
func newService(cfg *config.Config, sum summarize.Summarizer, m *metrics.Metrics) *summarize.Service {
	var recorder summarize.MetricsRecorder
	if m != nil {
		recorder = m
	}

	return summarize.NewService(
		document.NewDirSource(cfg.BlogDir, cfg.FileExt),
		&document.FileStore{Atomic: cfg.AtomicWrite},
		markup.NewNormalizer(markup.Options{
			RenderMarkdown: cfg.RenderMarkdown,
			Extractor:      markup.Extractor(cfg.Extractor),
		}),
		markup.FrontMatter{},
		sum,
		recorder,
		summarize.OptionsFromConfig(cfg),
	)
}

// printReport writes one line per document and the run totals.
func printReport(w io.Writer, report *summarize.RunReport) {
	for _, res := range report.Results {
		switch {
		case res.SkipReason != "":
			fmt.Fprintf(w, "%-8s %s (%s)\n", res.Status, res.Path, res.SkipReason)
		case res.Err != nil:
			fmt.Fprintf(w, "%-8s %s: %v\n", res.Status, res.Path, res.Err)
		default:
			fmt.Fprintf(w, "%-8s %s\n", res.Status, res.Path)
		}
		if res.Summary != "" && res.Err == nil {
			fmt.Fprintf(w, "         summary: %s\n", res.Summary)
		}
	}

	s := report.Stats
	fmt.Fprintf(w, "documents=%d written=%d dry_run=%d skipped=%d failed=%d duration=%s\n",
		s.Documents, s.Written, s.DryRun, s.Skipped, s.Failed, s.Duration.Round(time.Millisecond))
}
