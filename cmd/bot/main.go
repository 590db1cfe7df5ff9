package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/runner"
	"signal-trading-bot/internal/trace"
)

func main() {
	if err := initializeSystem(); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx)
	if err != nil {
		os.Exit(1)
	}

	compressOldLogs(ctx)

	deps, err := wireDependencies(ctx, cfg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Startup failed", err)
		os.Exit(1)
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigc
		logger.Info(ctx, "Interrupt received, shutting down", "signal", s.String())
		cancel()
	}()

	r := runner.New(cfg, deps.Source, deps.Classifier, deps.Table, deps.Engine, deps.Notifier, deps.Seen)
	r.Run(ctx)

	_ = trace.Shutdown(context.Background())
	_ = logger.Shutdown(context.Background())
	os.Exit(0)
}
