package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"llm-portfolio-trader/internal/analysis"
	"llm-portfolio-trader/internal/analysis/sentiment"
	"llm-portfolio-trader/internal/analysis/technical"
	"llm-portfolio-trader/internal/cycle"
	"llm-portfolio-trader/internal/cycle/cycleobs"
	"llm-portfolio-trader/internal/decision"
	"llm-portfolio-trader/internal/exchange/binance"
	"llm-portfolio-trader/internal/exchange/exchangeobs"
	"llm-portfolio-trader/internal/exchange/paper"
	"llm-portfolio-trader/internal/executor"
	"llm-portfolio-trader/internal/interfaces"
	"llm-portfolio-trader/internal/llm"
	"llm-portfolio-trader/internal/llm/llmobs"
	"llm-portfolio-trader/internal/logger"
	"llm-portfolio-trader/internal/store"
	"llm-portfolio-trader/internal/store/postgres"
	"llm-portfolio-trader/internal/trace"
	"llm-portfolio-trader/internal/tradelog"
)

// initializeSystem initializes environment, logger and tracer.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
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

// initializeExchange builds the Binance client, wraps it in the paper
// decorator for DRY_RUN, then in the observability middleware.
func initializeExchange(ctx context.Context, cfg *store.Config) interfaces.Exchange {
	var ex interfaces.Exchange = binance.New(binance.Params{
		BaseURL:   cfg.Exchange.BaseURL,
		APIKey:    os.Getenv("BINANCE_API_KEY"),
		SecretKey: os.Getenv("BINANCE_SECRET_KEY"),
		Timeout:   time.Duration(cfg.Exchange.TimeoutMS) * time.Millisecond,
	})

	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
		ex = paper.Wrap(ex)
	}

	return exchangeobs.Wrap(ex)
}

// initializeCompleter resolves a model name against the backend registry
// and wraps it with observability middleware.
func initializeCompleter(model, name string) (interfaces.Completer, error) {
	c, err := llm.New(model)
	if err != nil {
		return nil, fmt.Errorf("%s completer: %w", name, err)
	}
	return llmobs.Wrap(c, name), nil
}

// initializeAnalysisStore connects to Postgres when a DSN is configured.
// Without one the trader runs with persistence disabled.
func initializeAnalysisStore(ctx context.Context, cfg *store.Config) (interfaces.AnalysisStore, *pgxpool.Pool, error) {
	dsn := cfg.Database.DSN
	if dsn == "" {
		dsn = os.Getenv("DATABASE_DSN")
	}
	if dsn == "" {
		logger.Warn(ctx, "No database DSN configured - analysis persistence disabled")
		return nil, nil, nil
	}

	pool, err := postgres.Connect(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewAnalysisStore(pool), pool, nil
}

// initializeTrader wires the full cycle: analyzers, decision engine,
// executor, driver, observability wrapper.
func initializeTrader(cfg *store.Config, ex interfaces.Exchange, analyses interfaces.AnalysisStore) (interfaces.Cycle, error) {
	techLLM, err := initializeCompleter(cfg.Technical.LLM.Model, "technical")
	if err != nil {
		return nil, err
	}
	sentLLM, err := initializeCompleter(cfg.Sentiment.LLM.Model, "sentiment")
	if err != nil {
		return nil, err
	}
	reasoner, err := initializeCompleter(cfg.Management.Model, "advisor")
	if err != nil {
		return nil, err
	}
	parser, err := initializeCompleter(cfg.Management.Parser, "extractor")
	if err != nil {
		return nil, err
	}

	coord := analysis.NewCoordinator(
		technical.New(cfg, ex, techLLM),
		sentiment.New(cfg, sentLLM),
		analysis.Policy(cfg.Analysis.Policy),
	)

	trader := cycle.New(cfg, ex, coord, decision.New(reasoner, parser), executor.New(ex), analyses)
	return cycleobs.Wrap(trader), nil
}
