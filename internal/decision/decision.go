// Package decision turns cycle inputs into a typed order book through two
// model stages: a reasoning stage that writes a free-form recommendation,
// and an extraction stage that converts that text into the OrderBook
// schema. Splitting the stages decouples reasoning quality from syntactic
// reliability; a failure in either one fails the cycle before any order is
// submitted.
package decision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"llm-portfolio-trader/internal/interfaces"
	"llm-portfolio-trader/internal/logger"
	"llm-portfolio-trader/internal/trace"
	"llm-portfolio-trader/internal/types"
)

// MinQuantity is the negligible-quantity floor: BUY/SELL orders below it
// are demoted to HOLD instead of being submitted.
const MinQuantity = 0.00001

// precision is the number of decimal places carried by order numerics.
const precision = 5

type Engine struct {
	reasoner interfaces.Completer
	parser   interfaces.Completer
}

func New(reasoner, parser interfaces.Completer) *Engine {
	return &Engine{reasoner: reasoner, parser: parser}
}

// Decide runs both stages and returns the validated order book together
// with the reasoning text for auditing.
func (e *Engine) Decide(ctx context.Context, portfolio types.PortfolioSnapshot, prices types.PriceSnapshot, reports []types.Report) (types.OrderBook, string, error) {
	ctx, span := trace.StartSpan(ctx, "decision.Decide")
	defer span.End()

	prompt := buildUserPrompt(portfolio, prices, reports)

	reasoning, err := e.reasoner.Complete(ctx, advisorPrompt, prompt)
	if err != nil {
		return types.OrderBook{}, "", fmt.Errorf("reasoning stage: %w", err)
	}

	raw, err := e.parser.Complete(ctx, extractorPrompt, reasoning)
	if err != nil {
		return types.OrderBook{}, reasoning, fmt.Errorf("extraction stage: %w", err)
	}

	book, err := ParseOrderBook(ctx, raw)
	if err != nil {
		return types.OrderBook{}, reasoning, fmt.Errorf("extraction stage: %w", err)
	}

	logger.Info(ctx, "Order book decided", "orders", len(book.Orders))
	return book, reasoning, nil
}

// buildUserPrompt aggregates the whole cycle state into one prompt:
// portfolio, current prices, then every report's two summaries.
func buildUserPrompt(portfolio types.PortfolioSnapshot, prices types.PriceSnapshot, reports []types.Report) string {
	var sb strings.Builder

	pb, _ := json.Marshal(portfolio)
	cb, _ := json.Marshal(prices)
	fmt.Fprintf(&sb, "portfolio: %s\n", pb)
	fmt.Fprintf(&sb, "# current prices: %s\n", cb)

	for _, r := range reports {
		fmt.Fprintf(&sb, "\n# %s\n", r.Name)
		fmt.Fprintf(&sb, "## Technical Analysis\n%s\n", r.Technical.Summary)
		fmt.Fprintf(&sb, "## Sentimental Analysis\n%s\n", r.Sentiment.Summary)
	}
	return sb.String()
}

// ParseOrderBook decodes extraction output and normalizes it against the
// schema: valid sides, 5-decimal rounding, required bracket fields on
// BUY/SELL, and negligible quantities demoted to HOLD.
func ParseOrderBook(ctx context.Context, raw string) (types.OrderBook, error) {
	var book types.OrderBook
	if err := json.Unmarshal([]byte(stripFences(raw)), &book); err != nil {
		return types.OrderBook{}, fmt.Errorf("decode order book: %w", err)
	}

	for i := range book.Orders {
		o := &book.Orders[i]
		o.Side = types.Side(strings.ToUpper(strings.TrimSpace(string(o.Side))))
		if !o.Side.Valid() {
			return types.OrderBook{}, fmt.Errorf("order %d (%s): invalid side %q", i, o.Symbol, o.Side)
		}
		if o.Symbol == "" {
			return types.OrderBook{}, fmt.Errorf("order %d: missing symbol", i)
		}

		if o.Side == types.SideHold {
			o.Quantity, o.Price, o.TakeProfit, o.StopLoss = 0, 0, 0, 0
			continue
		}

		o.Quantity = round5(o.Quantity)
		o.Price = round5(o.Price)
		o.TakeProfit = round5(o.TakeProfit)
		o.StopLoss = round5(o.StopLoss)

		if o.Quantity < MinQuantity {
			logger.Warn(ctx, "Negligible quantity, demoting to HOLD",
				"symbol", o.Symbol, "side", o.Side, "quantity", o.Quantity)
			o.Side = types.SideHold
			o.Quantity, o.Price, o.TakeProfit, o.StopLoss = 0, 0, 0, 0
			continue
		}

		// A BUY becomes a bracket: entry price and both exits are required.
		// A SELL is an immediate market order and only needs the quantity.
		if o.Side == types.SideBuy {
			if o.Price <= 0 {
				return types.OrderBook{}, fmt.Errorf("order %d (%s): BUY requires a price", i, o.Symbol)
			}
			if o.TakeProfit <= 0 || o.StopLoss <= 0 {
				return types.OrderBook{}, fmt.Errorf("order %d (%s): BUY requires take_profit and stop_loss", i, o.Symbol)
			}
		}
	}
	return book, nil
}

func round5(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(precision).Float64()
	return f
}

// stripFences removes a surrounding markdown code fence if the model added
// one despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
