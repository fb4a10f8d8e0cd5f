package technical

import (
	"fmt"

	"llm-portfolio-trader/internal/store"
	"llm-portfolio-trader/internal/ta"
)

// ComputeIndicators evaluates every configured indicator over the close
// series. The supported kinds form a closed set; an unknown name is a
// configuration error rather than a silent skip.
func ComputeIndicators(closes []float64, cfg map[string]store.IndicatorParams) (map[string][]float64, error) {
	out := make(map[string][]float64, len(cfg))
	for name, p := range cfg {
		switch name {
		case "EMA":
			out[fmt.Sprintf("EMA_%d", p.TimePeriod)] = ta.EMA(closes, p.TimePeriod)
		case "RSI":
			out[fmt.Sprintf("RSI_%d", p.TimePeriod)] = ta.RSI(closes, p.TimePeriod)
		case "MACD":
			macd, signal := ta.MACD(closes, p.FastPeriod, p.SlowPeriod, p.SignalPeriod)
			key := fmt.Sprintf("MACD_%d_%d_%d", p.FastPeriod, p.SlowPeriod, p.SignalPeriod)
			out[key] = macd
			out[key+"_signal"] = signal
		case "BBANDS":
			mid, up, low := ta.Bollinger(closes, p.TimePeriod, 2.0)
			key := fmt.Sprintf("BBANDS_%d", p.TimePeriod)
			out[key+"_middle"] = mid
			out[key+"_upper"] = up
			out[key+"_lower"] = low
		default:
			return nil, fmt.Errorf("unsupported indicator %q", name)
		}
	}
	return out, nil
}
