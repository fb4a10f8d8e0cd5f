package technical

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"llm-portfolio-trader/internal/logger"
	"llm-portfolio-trader/internal/store"
)

// DominanceSeries is the bitcoin dominance history used as macro context.
type DominanceSeries struct {
	Date  []string  `json:"date"`
	Value []float64 `json:"bitcoin_dominance"`
}

// HistoryBar is one OHLC bar from a derivative history endpoint.
type HistoryBar struct {
	OpenTime int64   `json:"open_time"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
}

// LiquidationBar is one long/short liquidation row.
type LiquidationBar struct {
	OpenTime int64   `json:"open_time"`
	Long     float64 `json:"long"`
	Short    float64 `json:"short"`
}

// RatioBar is one long/short ratio row.
type RatioBar struct {
	OpenTime int64   `json:"open_time"`
	Ratio    float64 `json:"ratio"`
	Long     float64 `json:"long"`
	Short    float64 `json:"short"`
}

// fetchBitcoinDominance pulls the dominance history. A provider outage is
// recovered to an empty series: dominance is supplementary context and must
// not fail the analysis.
func fetchBitcoinDominance(ctx context.Context, rest *resty.Client, days int) DominanceSeries {
	var rows []struct {
		Date  string `json:"d"`
		Value string `json:"bitcoinDominance"`
	}

	resp, err := rest.R().
		SetContext(ctx).
		SetResult(&rows).
		Get("https://bitcoin-data.com/v1/bitcoin-dominance")
	if err != nil {
		logger.Warn(ctx, "Bitcoin dominance fetch failed", "error", err)
		return DominanceSeries{Date: []string{}, Value: []float64{}}
	}
	if resp.IsError() {
		logger.Warn(ctx, "Bitcoin dominance fetch failed", "status", resp.StatusCode())
		return DominanceSeries{Date: []string{}, Value: []float64{}}
	}

	if len(rows) > days {
		rows = rows[len(rows)-days:]
	}

	out := DominanceSeries{Date: make([]string, 0, len(rows)), Value: make([]float64, 0, len(rows))}
	for _, r := range rows {
		v, err := strconv.ParseFloat(r.Value, 64)
		if err != nil {
			continue
		}
		out.Date = append(out.Date, strings.Fields(r.Date)[0])
		out.Value = append(out.Value, v)
	}
	return out
}

type coinalyzeHistory struct {
	Symbol  string `json:"symbol"`
	History []struct {
		T int64   `json:"t"`
		O float64 `json:"o"`
		H float64 `json:"h"`
		L float64 `json:"l"`
		C float64 `json:"c"`
		R float64 `json:"r"`
		S float64 `json:"s"`
	} `json:"history"`
}

// fetchDerivativeData pulls the configured derivative series (open
// interest, funding rate, liquidations, long/short ratio) from Coinalyze.
// Unlike dominance, a failure here propagates: derivative data is a primary
// input when configured.
func fetchDerivativeData(ctx context.Context, rest *resty.Client, target string, cfg *store.Config) (map[string]any, error) {
	dcfg := cfg.Technical.Derivative
	if len(dcfg.Indicators) == 0 {
		return map[string]any{}, nil
	}

	symbol := target + "_PERP.A"
	to := time.Now().Unix()
	intervalSeconds := int64(24 * 3600)
	if dcfg.Interval == "4hour" {
		intervalSeconds = 4 * 3600
	}
	from := to - intervalSeconds*int64(dcfg.Lookback)

	baseParams := map[string]string{
		"api_key":  os.Getenv("COINALYZE_API_KEY"),
		"symbols":  symbol,
		"interval": dcfg.Interval,
		"from":     strconv.FormatInt(from, 10),
		"to":       strconv.FormatInt(to, 10),
	}

	endpoints := map[string]string{
		"open_interest":    "https://api.coinalyze.net/v1/open-interest-history",
		"funding_rate":     "https://api.coinalyze.net/v1/funding-rate-history",
		"liquidation":      "https://api.coinalyze.net/v1/liquidation-history",
		"long_short_ratio": "https://api.coinalyze.net/v1/long-short-ratio-history",
	}

	out := make(map[string]any, len(dcfg.Indicators))
	for _, kind := range dcfg.Indicators {
		url, ok := endpoints[kind]
		if !ok {
			return nil, fmt.Errorf("unsupported derivative indicator %q", kind)
		}

		var rows []coinalyzeHistory
		resp, err := rest.R().
			SetContext(ctx).
			SetQueryParams(baseParams).
			SetResult(&rows).
			Get(url)
		if err != nil {
			return nil, fmt.Errorf("coinalyze %s for %s: %w", kind, target, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("coinalyze %s for %s: http %d", kind, target, resp.StatusCode())
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("coinalyze %s for %s: empty response", kind, target)
		}

		hist := rows[0].History
		switch kind {
		case "liquidation":
			bars := make([]LiquidationBar, 0, len(hist))
			for _, h := range hist {
				bars = append(bars, LiquidationBar{OpenTime: h.T * 1000, Long: h.L, Short: h.S})
			}
			out[kind] = bars
		case "long_short_ratio":
			bars := make([]RatioBar, 0, len(hist))
			for _, h := range hist {
				bars = append(bars, RatioBar{OpenTime: h.T * 1000, Ratio: h.R, Long: h.L, Short: h.S})
			}
			out[kind] = bars
		default:
			bars := make([]HistoryBar, 0, len(hist))
			for _, h := range hist {
				bars = append(bars, HistoryBar{OpenTime: h.T * 1000, Open: h.O, High: h.H, Low: h.L, Close: h.C})
			}
			out[kind] = bars
		}
	}
	return out, nil
}
