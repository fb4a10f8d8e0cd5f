// Package paper wraps an exchange so every money-moving call is simulated.
// Reads pass through to the real exchange; cancellations and submissions
// are acknowledged locally and logged. Used in DRY_RUN mode.
package paper

import (
	"context"
	"sync/atomic"

	"llm-portfolio-trader/internal/interfaces"
	"llm-portfolio-trader/internal/logger"
	"llm-portfolio-trader/internal/types"
)

type Exchange struct {
	real   interfaces.Exchange
	nextID atomic.Int64
}

var _ interfaces.Exchange = (*Exchange)(nil)

func Wrap(real interfaces.Exchange) *Exchange {
	e := &Exchange{real: real}
	e.nextID.Store(1)
	return e
}

func (e *Exchange) Prices(ctx context.Context, symbols []string) (types.PriceSnapshot, error) {
	return e.real.Prices(ctx, symbols)
}

func (e *Exchange) Balances(ctx context.Context) ([]types.Balance, error) {
	return e.real.Balances(ctx)
}

func (e *Exchange) Klines(ctx context.Context, symbol, interval string, limit int) (types.OHLCV, error) {
	return e.real.Klines(ctx, symbol, interval, limit)
}

// OpenOrders reports no resting orders: the simulator never leaves any.
func (e *Exchange) OpenOrders(ctx context.Context) ([]types.OpenOrder, error) {
	return nil, nil
}

func (e *Exchange) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	logger.Info(ctx, "DRY_RUN cancel simulated", "symbol", symbol, "order_id", orderID)
	return nil
}

func (e *Exchange) MarketSell(ctx context.Context, symbol string, quantity float64) (types.OrderAck, error) {
	ack := types.OrderAck{Symbol: symbol, OrderID: e.nextID.Add(1), Status: "FILLED"}
	logger.Info(ctx, "DRY_RUN market sell simulated", "symbol", symbol, "quantity", quantity, "order_id", ack.OrderID)
	return ack, nil
}

func (e *Exchange) PlaceBracket(ctx context.Context, req types.BracketReq) (types.OrderAck, error) {
	ack := types.OrderAck{Symbol: req.Symbol, OrderListID: e.nextID.Add(1), Status: "EXECUTING"}
	logger.Info(ctx, "DRY_RUN bracket simulated",
		"symbol", req.Symbol,
		"price", req.Price,
		"quantity", req.Quantity,
		"take_profit", req.TakeProfit,
		"stop_loss", req.StopLoss,
		"order_list_id", ack.OrderListID,
	)
	return ack, nil
}
