package exchangeobs

import (
	"context"

	"llm-portfolio-trader/internal/interfaces"
	"llm-portfolio-trader/internal/logger"
	"llm-portfolio-trader/internal/trace"
	"llm-portfolio-trader/internal/types"
)

// observableExchange wraps an Exchange with observability (logging & tracing)
type observableExchange struct {
	ex interfaces.Exchange
}

// Compile-time interface check
var _ interfaces.Exchange = (*observableExchange)(nil)

// Wrap wraps an exchange with observability middleware
func Wrap(ex interfaces.Exchange) interfaces.Exchange {
	return &observableExchange{ex: ex}
}

func (oe *observableExchange) Prices(ctx context.Context, symbols []string) (types.PriceSnapshot, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.Prices")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching prices", "symbols", symbols)

	snap, err := oe.ex.Prices(ctx, symbols)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch prices", err, "symbols", symbols)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Prices fetched", "count", len(snap))
	return snap, nil
}

func (oe *observableExchange) Balances(ctx context.Context) ([]types.Balance, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.Balances")
	defer span.End()

	balances, err := oe.ex.Balances(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch account balances", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Account balances fetched", "count", len(balances))
	return balances, nil
}

func (oe *observableExchange) OpenOrders(ctx context.Context) ([]types.OpenOrder, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.OpenOrders")
	defer span.End()

	orders, err := oe.ex.OpenOrders(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to list open orders", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Open orders listed", "count", len(orders))
	return orders, nil
}

func (oe *observableExchange) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	ctx, span := trace.StartSpan(ctx, "exchange.CancelOrder")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Canceling order", "symbol", symbol, "order_id", orderID)

	if err := oe.ex.CancelOrder(ctx, symbol, orderID); err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to cancel order", err, "symbol", symbol, "order_id", orderID)
		return err
	}

	logger.InfoSkip(ctx, 1, "Order canceled", "symbol", symbol, "order_id", orderID)
	return nil
}

func (oe *observableExchange) MarketSell(ctx context.Context, symbol string, quantity float64) (types.OrderAck, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.MarketSell")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Submitting market sell", "symbol", symbol, "quantity", quantity)

	ack, err := oe.ex.MarketSell(ctx, symbol, quantity)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to submit market sell", err, "symbol", symbol, "quantity", quantity)
		return types.OrderAck{}, err
	}

	logger.InfoSkip(ctx, 1, "Market sell submitted", "symbol", symbol, "order_id", ack.OrderID, "status", ack.Status)
	return ack, nil
}

func (oe *observableExchange) PlaceBracket(ctx context.Context, req types.BracketReq) (types.OrderAck, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.PlaceBracket")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Submitting bracket order",
		"symbol", req.Symbol,
		"price", req.Price,
		"quantity", req.Quantity,
		"take_profit", req.TakeProfit,
		"stop_loss", req.StopLoss,
	)

	ack, err := oe.ex.PlaceBracket(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to submit bracket order", err, "symbol", req.Symbol)
		return types.OrderAck{}, err
	}

	logger.InfoSkip(ctx, 1, "Bracket order submitted", "symbol", req.Symbol, "order_list_id", ack.OrderListID, "status", ack.Status)
	return ack, nil
}

func (oe *observableExchange) Klines(ctx context.Context, symbol, interval string, limit int) (types.OHLCV, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.Klines")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching klines", "symbol", symbol, "interval", interval, "limit", limit)

	ohlcv, err := oe.ex.Klines(ctx, symbol, interval, limit)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch klines", err, "symbol", symbol)
		return types.OHLCV{}, err
	}

	logger.DebugSkip(ctx, 1, "Klines fetched", "symbol", symbol, "count", ohlcv.Len())
	return ohlcv, nil
}
