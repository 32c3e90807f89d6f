package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/kalshi-livegames/internal/api"
	"github.com/rickgao/kalshi-livegames/internal/config"
	"github.com/rickgao/kalshi-livegames/internal/feed"
	"github.com/rickgao/kalshi-livegames/internal/output"
	"github.com/rickgao/kalshi-livegames/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: built-in live Sports pipeline)")
	envPath := flag.String("env", ".env", "path to .env file")
	format := flag.String("format", "", "output format: json, envelope or table")
	limit := flag.Int("limit", -1, "maximum records to print (-1 keeps the config value)")
	category := flag.String("category", "", "override pipeline.category")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if err := config.LoadDotEnv(*envPath); err != nil {
		fmt.Fprintf(os.Stderr, "load env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *format != "" {
		cfg.Output.Format = *format
	}
	if *limit >= 0 {
		cfg.Pipeline.MaxResults = limit
	}
	if *category != "" {
		cfg.Pipeline.Category = *category
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "validate config: %v\n", err)
		os.Exit(1)
	}

	// Records go to stdout, logs to stderr
	logger := newLogger(cfg.Logging).With("run_id", uuid.NewString())
	slog.SetDefault(logger)

	logger.Info("starting livegames",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"api_url", cfg.API.RestURL,
		"pipeline", cfg.Pipeline.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("run failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	client := api.NewClient(
		cfg.API.RestURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
	)

	res := feed.Build(cfg, client, feed.WithLogger(logger))

	printer, err := output.NewPrinter(os.Stdout, cfg.Output.Format,
		output.WithEnvelopeKey(cfg.EnvelopeKeyFor()),
		output.WithColumns(res.Keys),
		output.WithKind(res.Kind),
	)
	if err != nil {
		return fmt.Errorf("create printer: %w", err)
	}

	start := time.Now()
	n, err := printer.Print(ctx, res.Records)
	if err != nil {
		return fmt.Errorf("print %s: %w", res.Kind, err)
	}

	logger.Info("done",
		"printed", n,
		"events", res.Stats.Events,
		"markets", res.Stats.Markets,
		"live", res.Stats.Live,
		"duration", time.Since(start),
	)
	return nil
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
