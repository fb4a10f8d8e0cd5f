// Package cycle drives one full trading pass: reconcile resting orders,
// fan out the analyses, persist them, snapshot the account, decide, and
// dispatch the resulting order book.
package cycle

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"llm-portfolio-trader/internal/analysis"
	"llm-portfolio-trader/internal/decision"
	"llm-portfolio-trader/internal/executor"
	"llm-portfolio-trader/internal/interfaces"
	"llm-portfolio-trader/internal/logger"
	"llm-portfolio-trader/internal/store"
	"llm-portfolio-trader/internal/tradelog"
	"llm-portfolio-trader/internal/types"
)

// balancePrecision is the rounding applied to portfolio free balances.
const balancePrecision = 4

type Trader struct {
	cfg      *store.Config
	ex       interfaces.Exchange
	coord    *analysis.Coordinator
	engine   *decision.Engine
	exec     *executor.Executor
	analyses interfaces.AnalysisStore

	running atomic.Bool
}

var _ interfaces.Cycle = (*Trader)(nil)

func New(cfg *store.Config, ex interfaces.Exchange, coord *analysis.Coordinator, engine *decision.Engine, exec *executor.Executor, analyses interfaces.AnalysisStore) *Trader {
	return &Trader{cfg: cfg, ex: ex, coord: coord, engine: engine, exec: exec, analyses: analyses}
}

// Run executes one cycle. A trigger that arrives while a cycle is still
// in progress is skipped, not queued: the next scheduled run will see
// fresher data anyway.
func (t *Trader) Run(ctx context.Context) error {
	if !t.running.CompareAndSwap(false, true) {
		logger.Warn(ctx, "Cycle already in progress, skipping trigger")
		return nil
	}
	defer t.running.Store(false)

	start := time.Now()
	logger.Info(ctx, "Cycle started", "targets", t.cfg.Targets, "mode", t.cfg.Mode)

	if err := t.exec.Reconcile(ctx); err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	reports, err := t.coord.GenerateReports(ctx, t.cfg.Targets)
	if err != nil {
		return fmt.Errorf("generate reports: %w", err)
	}

	t.persistReports(ctx, reports)

	portfolio, err := t.portfolioSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("portfolio snapshot: %w", err)
	}

	prices, err := t.ex.Prices(ctx, t.cfg.Targets)
	if err != nil {
		return fmt.Errorf("price snapshot: %w", err)
	}

	book, reasoning, err := t.engine.Decide(ctx, portfolio, prices, reports)
	if err != nil {
		return fmt.Errorf("decide: %w", err)
	}

	if err := tradelog.AppendDecision(tradelog.DecisionEntry{
		Strategy:  t.cfg.Name,
		Reasoning: reasoning,
		OrderBook: book,
	}); err != nil {
		logger.Warn(ctx, "Decision log append failed", "error", err)
	}

	res := t.exec.Dispatch(ctx, book)

	logger.Info(ctx, "Cycle finished",
		"duration", time.Since(start).Round(time.Millisecond).String(),
		"submitted", len(res.Submitted), "held", len(res.Held), "failed", len(res.Failed))
	return nil
}

// persistReports writes both summaries of every report. Inserts are
// isolated: a failed write loses one row, not the cycle.
func (t *Trader) persistReports(ctx context.Context, reports []types.Report) {
	if t.analyses == nil {
		return
	}
	created := time.Now().UTC().Format(time.RFC3339)
	for _, r := range reports {
		rows := []types.AnalysisRow{
			{Name: t.cfg.Name, Type: "technical", Content: r.Technical.Summary, Created: created, Target: r.Name},
			{Name: t.cfg.Name, Type: "sentimental", Content: r.Sentiment.Summary, Created: created, Target: r.Name},
		}
		for _, row := range rows {
			if err := t.analyses.Insert(ctx, row); err != nil {
				logger.Warn(ctx, "Analysis insert failed", "target", row.Target, "type", row.Type, "error", err)
			}
		}
	}
}

// portfolioSnapshot reduces the account balances to the assets the
// strategy trades: the quote asset plus each target's base asset, free
// balances rounded to 4 decimal places.
func (t *Trader) portfolioSnapshot(ctx context.Context) (types.PortfolioSnapshot, error) {
	balances, err := t.ex.Balances(ctx)
	if err != nil {
		return nil, err
	}

	wanted := map[string]bool{t.cfg.QuoteAsset: true}
	for _, target := range t.cfg.Targets {
		wanted[strings.TrimSuffix(target, t.cfg.QuoteAsset)] = true
	}

	snapshot := make(types.PortfolioSnapshot, len(wanted))
	for asset := range wanted {
		snapshot[asset] = 0
	}
	for _, b := range balances {
		if !wanted[b.Asset] {
			continue
		}
		free, _ := decimal.NewFromFloat(b.Free).Round(balancePrecision).Float64()
		snapshot[b.Asset] = free
	}
	return snapshot, nil
}
