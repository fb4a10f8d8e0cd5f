// Package technical produces the per-target technical report: exchange
// klines, configured indicators, derivative market data and bitcoin
// dominance, summarized by a reasoning backend.
package technical

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"llm-portfolio-trader/internal/interfaces"
	"llm-portfolio-trader/internal/logger"
	"llm-portfolio-trader/internal/store"
	"llm-portfolio-trader/internal/trace"
	"llm-portfolio-trader/internal/types"
)

const systemPrompt = `Create a comprehensive technical analysis report on the target cryptocurrency using the provided context to plan a trading strategy. Be as quantitative as possible.

Consider the following score classification to assign a score to the report:
- x <= -0.35: Bearish
- -0.35 < x <= -0.15: Somewhat-Bearish
- -0.15 < x < 0.15: Neutral
- 0.15 <= x < 0.35: Somewhat_Bullish
- x >= 0.35: Bullish

Note that this report will be generated every 4 hours for a swing trading strategy.`

type Analyzer struct {
	cfg  *store.Config
	ex   interfaces.Exchange
	llm  interfaces.Completer
	rest *resty.Client
}

var _ interfaces.TechnicalAnalyzer = (*Analyzer)(nil)

func New(cfg *store.Config, ex interfaces.Exchange, llm interfaces.Completer) *Analyzer {
	rest := resty.New()
	rest.SetTimeout(time.Duration(cfg.Exchange.TimeoutMS) * time.Millisecond)
	return &Analyzer{cfg: cfg, ex: ex, llm: llm, rest: rest}
}

func (a *Analyzer) Analyze(ctx context.Context, target string) (types.TechnicalAnalysis, error) {
	ctx, span := trace.StartSpan(ctx, "technical.Analyze")
	defer span.End()

	logger.Info(ctx, "Starting technical analysis", "target", target)

	ohlcv, err := a.ex.Klines(ctx, target, a.cfg.Technical.Data.Interval, a.cfg.Technical.Data.Lookback)
	if err != nil {
		return types.TechnicalAnalysis{}, err
	}

	indicators, err := ComputeIndicators(ohlcv.Close, a.cfg.Technical.Indicators)
	if err != nil {
		return types.TechnicalAnalysis{}, err
	}

	dominance := fetchBitcoinDominance(ctx, a.rest, a.cfg.Technical.BitcoinDominance.Days)

	derivative, err := fetchDerivativeData(ctx, a.rest, target, a.cfg)
	if err != nil {
		return types.TechnicalAnalysis{}, err
	}

	prompt := a.buildPrompt(target, ohlcv, indicators, derivative, dominance)

	summary, err := a.llm.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return types.TechnicalAnalysis{}, fmt.Errorf("technical summary for %s: %w", target, err)
	}

	logger.Info(ctx, "Finished technical analysis", "target", target)

	return types.TechnicalAnalysis{
		OHLCV:      ohlcv,
		Indicators: indicators,
		Summary:    summary,
	}, nil
}

func (a *Analyzer) buildPrompt(target string, ohlcv types.OHLCV, indicators map[string][]float64, derivative map[string]any, dominance DominanceSeries) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "DATE: %s\n", time.Now().UTC().Format("02-01-2006"))
	fmt.Fprintf(&sb, "Target Cryptocurrency: %s\n\n", target)

	fmt.Fprintf(&sb, "Historical Prices (%s OHLCV in chronological order):\n", a.cfg.Technical.Data.Interval)
	fmt.Fprintf(&sb, "- open price: %v\n", ohlcv.Open)
	fmt.Fprintf(&sb, "- high price: %v\n", ohlcv.High)
	fmt.Fprintf(&sb, "- low price: %v\n", ohlcv.Low)
	fmt.Fprintf(&sb, "- close price: %v\n", ohlcv.Close)
	fmt.Fprintf(&sb, "- volume: %v\n\n", ohlcv.Volume)

	sb.WriteString("Technical Indicators:\n")
	for name, series := range indicators {
		fmt.Fprintf(&sb, "- %s: %v\n", name, series)
	}

	if len(derivative) > 0 {
		fmt.Fprintf(&sb, "\nDerivative Market Data (last %d in %s interval):\n",
			a.cfg.Technical.Derivative.Lookback, a.cfg.Technical.Derivative.Interval)
		for name, series := range derivative {
			b, _ := json.Marshal(series)
			fmt.Fprintf(&sb, "- %s: %s\n", name, b)
		}
	}

	if len(dominance.Value) > 0 {
		fmt.Fprintf(&sb, "\nBitcoin Dominance (last %d days):\n- %v: %v\n",
			a.cfg.Technical.BitcoinDominance.Days, dominance.Date, dominance.Value)
	}

	return sb.String()
}
