package interfaces

import (
	"context"

	"llm-portfolio-trader/internal/types"
)

type Exchange interface {
	Prices(ctx context.Context, symbols []string) (types.PriceSnapshot, error)
	Balances(ctx context.Context) ([]types.Balance, error)
	OpenOrders(ctx context.Context) ([]types.OpenOrder, error)
	CancelOrder(ctx context.Context, symbol string, orderID int64) error
	MarketSell(ctx context.Context, symbol string, quantity float64) (types.OrderAck, error)
	PlaceBracket(ctx context.Context, req types.BracketReq) (types.OrderAck, error)
	Klines(ctx context.Context, symbol, interval string, limit int) (types.OHLCV, error)
}
