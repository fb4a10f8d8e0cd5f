// Package executor reconciles and dispatches one cycle's order book
// against the exchange. Reconcile clears all resting orders so the new
// book starts from a clean slate; Dispatch routes each decided order to
// its exchange operation.
package executor

import (
	"context"
	"fmt"

	"llm-portfolio-trader/internal/interfaces"
	"llm-portfolio-trader/internal/logger"
	"llm-portfolio-trader/internal/tradelog"
	"llm-portfolio-trader/internal/trace"
	"llm-portfolio-trader/internal/types"
)

// minQuantity mirrors the decision engine's negligible-quantity floor as
// a last line of defense before hitting the exchange.
const minQuantity = 0.00001

type Executor struct {
	ex interfaces.Exchange
}

func New(ex interfaces.Exchange) *Executor {
	return &Executor{ex: ex}
}

// Reconcile cancels every open order on the account. A failed listing
// aborts, because dispatching on top of unknown resting orders risks
// double exposure. Individual cancel failures are logged and skipped so
// one stuck order does not block the rest.
func (e *Executor) Reconcile(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "executor.Reconcile")
	defer span.End()

	open, err := e.ex.OpenOrders(ctx)
	if err != nil {
		return fmt.Errorf("list open orders: %w", err)
	}
	if len(open) == 0 {
		logger.Debug(ctx, "No open orders to cancel")
		return nil
	}

	canceled := 0
	for _, o := range open {
		if err := e.ex.CancelOrder(ctx, o.Symbol, o.OrderID); err != nil {
			logger.ErrorWithErr(ctx, "Cancel failed", err,
				"symbol", o.Symbol, "order_id", o.OrderID)
			continue
		}
		canceled++
	}

	logger.Info(ctx, "Open orders reconciled", "open", len(open), "canceled", canceled)
	return nil
}

// Dispatch submits each order in the book: BUY becomes an OTOCO bracket,
// SELL a market order, HOLD is recorded without touching the exchange.
// Orders are isolated from each other; a failed submission is recorded
// in the result and does not stop the remaining orders.
func (e *Executor) Dispatch(ctx context.Context, book types.OrderBook) types.DispatchResult {
	ctx, span := trace.StartSpan(ctx, "executor.Dispatch")
	defer span.End()

	var res types.DispatchResult

	for _, o := range book.Orders {
		switch o.Side {
		case types.SideHold:
			logger.Decision(ctx, o.Symbol, string(o.Side), o.Reason)
			res.Held = append(res.Held, o.Symbol)

		case types.SideSell:
			if o.Quantity < minQuantity {
				logger.Warn(ctx, "Skipping negligible order", "symbol", o.Symbol, "quantity", o.Quantity)
				res.Held = append(res.Held, o.Symbol)
				continue
			}
			ack, err := e.ex.MarketSell(ctx, o.Symbol, o.Quantity)
			if err != nil {
				logger.ErrorWithErr(ctx, "Market sell failed", err, "symbol", o.Symbol)
				res.Failed = append(res.Failed, o.Symbol)
				continue
			}
			e.record(ctx, o, ack)
			res.Submitted = append(res.Submitted, ack)

		case types.SideBuy:
			if o.Quantity < minQuantity {
				logger.Warn(ctx, "Skipping negligible order", "symbol", o.Symbol, "quantity", o.Quantity)
				res.Held = append(res.Held, o.Symbol)
				continue
			}
			ack, err := e.ex.PlaceBracket(ctx, types.BracketReq{
				Symbol:     o.Symbol,
				Price:      o.Price,
				Quantity:   o.Quantity,
				TakeProfit: o.TakeProfit,
				StopLoss:   o.StopLoss,
			})
			if err != nil {
				logger.ErrorWithErr(ctx, "Bracket placement failed", err, "symbol", o.Symbol)
				res.Failed = append(res.Failed, o.Symbol)
				continue
			}
			e.record(ctx, o, ack)
			res.Submitted = append(res.Submitted, ack)
		}
	}

	logger.Info(ctx, "Order book dispatched",
		"submitted", len(res.Submitted), "held", len(res.Held), "failed", len(res.Failed))
	return res
}

func (e *Executor) record(ctx context.Context, o types.Order, ack types.OrderAck) {
	logger.Trade(ctx, o.Symbol, string(o.Side), o.Quantity, o.Price, ack.OrderID,
		"status", ack.Status)

	if err := tradelog.Append(tradelog.Entry{
		Symbol:      o.Symbol,
		Side:        string(o.Side),
		Reason:      o.Reason,
		Quantity:    o.Quantity,
		Price:       o.Price,
		OrderID:     ack.OrderID,
		OrderListID: ack.OrderListID,
	}); err != nil {
		logger.Warn(ctx, "Trade log append failed", "symbol", o.Symbol, "error", err)
	}
}
