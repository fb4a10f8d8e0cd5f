package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"llm-portfolio-trader/internal/logger"
	"llm-portfolio-trader/internal/sched"
	"llm-portfolio-trader/internal/store"
	"llm-portfolio-trader/internal/trace"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := initializeSystem(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer func() { _ = trace.Shutdown(context.Background()) }()

	cfg, err := store.LoadConfig(configPath())
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return err
	}

	compressOldLogs(ctx)

	ex := initializeExchange(ctx, cfg)

	analyses, pool, err := initializeAnalysisStore(ctx, cfg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to connect to database", err)
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	trader, err := initializeTrader(cfg, ex, analyses)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to initialize trader", err)
		return err
	}

	scheduler, err := sched.New(cfg.Schedule.Times, trader)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to build schedule", err)
		return err
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigc
		logger.Info(ctx, "Shutting down", "signal", sig.String())
		cancel()
	}()

	logger.Info(ctx, "Trader started",
		"name", cfg.Name, "mode", cfg.Mode, "targets", cfg.Targets, "times", cfg.Schedule.Times)

	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func configPath() string {
	if v := os.Getenv("TRADER_CONFIG"); v != "" {
		return v
	}
	return "config.yaml"
}
