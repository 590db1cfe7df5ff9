package main

import (
	"context"
	"fmt"
	"os"

	"signal-trading-bot/internal/broker/brokerobs"
	"signal-trading-bot/internal/broker/schwab"
	"signal-trading-bot/internal/dedup"
	"signal-trading-bot/internal/engine"
	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/llm/gemini"
	"signal-trading-bot/internal/llm/llmobs"
	"signal-trading-bot/internal/llm/noop"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/notify"
	"signal-trading-bot/internal/notify/notifyobs"
	"signal-trading-bot/internal/policy"
	"signal-trading-bot/internal/source"
	"signal-trading-bot/internal/store"
	"signal-trading-bot/internal/trace"
	"signal-trading-bot/internal/tradelog"

	"github.com/joho/godotenv"
)

// initializeSystem initializes environment, logger, and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize tracer
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	path := os.Getenv("BOT_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs compresses old tradelog files if retention is configured
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// dependencies carries everything the runner needs, fully wired.
type dependencies struct {
	Source     interfaces.Source
	Classifier interfaces.Classifier
	Table      *policy.Table
	Engine     *engine.Engine
	Notifier   interfaces.Notifier
	Seen       *dedup.Store
}

// wireDependencies builds every component. Any error here is a fatal
// configuration failure.
func wireDependencies(ctx context.Context, cfg *store.Config) (*dependencies, error) {
	table, err := policy.LoadTable(cfg.MappingPath)
	if err != nil {
		return nil, fmt.Errorf("load mapping table: %w", err)
	}

	brk, err := initializeBroker(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ntf, err := initializeNotifier(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cls, err := initializeClassifier(ctx, cfg, table.Subjects())
	if err != nil {
		return nil, err
	}

	return &dependencies{
		Source:     source.NewFeedScraper(cfg),
		Classifier: cls,
		Table:      table,
		Engine:     engine.New(brk, cfg.Notional),
		Notifier:   ntf,
		Seen:       dedup.Load(ctx, cfg.DedupPath),
	}, nil
}

// initializeBroker connects the broker and wraps it with observability
func initializeBroker(ctx context.Context, cfg *store.Config) (interfaces.Broker, error) {
	accountHash := ""
	if cfg.Account.IDEnv != "" {
		accountHash = os.Getenv(cfg.Account.IDEnv)
	}
	brk := schwab.New(schwab.Params{
		Mode:        cfg.Mode,
		BaseURL:     cfg.Broker.BaseURL,
		AccessToken: os.Getenv("SCHWAB_ACCESS_TOKEN"),
		AccountHash: accountHash,
	})

	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
	}

	if err := brk.Connect(ctx); err != nil {
		return nil, fmt.Errorf("broker connect: %w", err)
	}

	// Wrap with observability middleware
	return brokerobs.Wrap(brk), nil
}

// initializeClassifier selects the LLM provider and wraps it with observability
func initializeClassifier(ctx context.Context, cfg *store.Config, subjects []string) (interfaces.Classifier, error) {
	var cls interfaces.Classifier

	switch cfg.LLM.Provider {
	case "GEMINI":
		g, err := gemini.NewGeminiClassifier(cfg, subjects)
		if err != nil {
			return nil, fmt.Errorf("gemini classifier: %w", err)
		}
		cls = g
	default:
		cls = noop.NewNoopClassifier()
		logger.Warn(ctx, "No LLM provider configured - using Noop classifier (never signals)")
	}

	// Wrap with observability middleware
	return llmobs.Wrap(cls), nil
}

// initializeNotifier selects the alert channel and wraps it with observability
func initializeNotifier(ctx context.Context, cfg *store.Config) (interfaces.Notifier, error) {
	if !cfg.Notify.Enabled {
		logger.Info(ctx, "Notifications disabled - alerts go to stdout")
		return notifyobs.Wrap(notify.NewStdoutNotifier()), nil
	}

	ntf, err := notify.NewPushoverNotifier()
	if err != nil {
		return nil, err
	}
	return notifyobs.Wrap(ntf), nil
}
