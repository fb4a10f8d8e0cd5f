package executor

import (
	"context"
	"errors"
	"testing"

	"llm-portfolio-trader/internal/types"
)

type fakeExchange struct {
	open        []types.OpenOrder
	openErr     error
	cancelErr   map[int64]error
	sellErr     map[string]error
	bracketErr  map[string]error
	canceled    []int64
	marketSells []struct {
		Symbol   string
		Quantity float64
	}
	brackets []types.BracketReq
}

func (f *fakeExchange) Prices(ctx context.Context, symbols []string) (types.PriceSnapshot, error) {
	return nil, nil
}
func (f *fakeExchange) Balances(ctx context.Context) ([]types.Balance, error) { return nil, nil }
func (f *fakeExchange) Klines(ctx context.Context, symbol, interval string, limit int) (types.OHLCV, error) {
	return types.OHLCV{}, nil
}

func (f *fakeExchange) OpenOrders(ctx context.Context) ([]types.OpenOrder, error) {
	return f.open, f.openErr
}

func (f *fakeExchange) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	if err := f.cancelErr[orderID]; err != nil {
		return err
	}
	f.canceled = append(f.canceled, orderID)
	return nil
}

func (f *fakeExchange) MarketSell(ctx context.Context, symbol string, quantity float64) (types.OrderAck, error) {
	if err := f.sellErr[symbol]; err != nil {
		return types.OrderAck{}, err
	}
	f.marketSells = append(f.marketSells, struct {
		Symbol   string
		Quantity float64
	}{symbol, quantity})
	return types.OrderAck{Symbol: symbol, OrderID: 100, Status: "FILLED"}, nil
}

func (f *fakeExchange) PlaceBracket(ctx context.Context, req types.BracketReq) (types.OrderAck, error) {
	if err := f.bracketErr[req.Symbol]; err != nil {
		return types.OrderAck{}, err
	}
	f.brackets = append(f.brackets, req)
	return types.OrderAck{Symbol: req.Symbol, OrderID: 200, OrderListID: 201, Status: "NEW"}, nil
}

func TestReconcileCancelsAll(t *testing.T) {
	ex := &fakeExchange{open: []types.OpenOrder{
		{Symbol: "BTCUSDT", OrderID: 1},
		{Symbol: "ETHUSDT", OrderID: 2},
		{Symbol: "SOLUSDT", OrderID: 3},
	}}

	if err := New(ex).Reconcile(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(ex.canceled) != 3 {
		t.Errorf("Expected 3 cancels, got %d", len(ex.canceled))
	}
}

func TestReconcileNoOpenOrders(t *testing.T) {
	ex := &fakeExchange{}
	if err := New(ex).Reconcile(context.Background()); err != nil {
		t.Fatalf("Expected no-op success, got %v", err)
	}
}

func TestReconcileListingFailureAborts(t *testing.T) {
	ex := &fakeExchange{openErr: errors.New("api down")}
	if err := New(ex).Reconcile(context.Background()); err == nil {
		t.Fatal("Expected error when listing open orders fails")
	}
}

func TestReconcileCancelFailureIsolated(t *testing.T) {
	ex := &fakeExchange{
		open: []types.OpenOrder{
			{Symbol: "BTCUSDT", OrderID: 1},
			{Symbol: "ETHUSDT", OrderID: 2},
			{Symbol: "SOLUSDT", OrderID: 3},
		},
		cancelErr: map[int64]error{2: errors.New("unknown order")},
	}

	if err := New(ex).Reconcile(context.Background()); err != nil {
		t.Fatalf("Expected no error despite one failed cancel, got %v", err)
	}
	if len(ex.canceled) != 2 {
		t.Fatalf("Expected the remaining 2 cancels to run, got %d", len(ex.canceled))
	}
	if ex.canceled[0] != 1 || ex.canceled[1] != 3 {
		t.Errorf("Expected orders 1 and 3 canceled, got %v", ex.canceled)
	}
}

func TestDispatchRouting(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	ex := &fakeExchange{}
	book := types.OrderBook{Orders: []types.Order{
		{Symbol: "BTCUSDT", Side: types.SideBuy, Quantity: 0.015, Price: 97000, TakeProfit: 99500, StopLoss: 95800, Reason: "momentum"},
		{Symbol: "ETHUSDT", Side: types.SideSell, Quantity: 0.5, Reason: "weak"},
		{Symbol: "SOLUSDT", Side: types.SideHold, Reason: "wait"},
	}}

	res := New(ex).Dispatch(context.Background(), book)

	if len(res.Submitted) != 2 {
		t.Fatalf("Expected 2 submissions, got %d", len(res.Submitted))
	}
	if len(res.Held) != 1 || res.Held[0] != "SOLUSDT" {
		t.Errorf("Expected SOLUSDT held, got %v", res.Held)
	}
	if len(res.Failed) != 0 {
		t.Errorf("Expected no failures, got %v", res.Failed)
	}

	if len(ex.brackets) != 1 {
		t.Fatalf("Expected 1 bracket, got %d", len(ex.brackets))
	}
	br := ex.brackets[0]
	if br.Symbol != "BTCUSDT" || br.Price != 97000 || br.Quantity != 0.015 || br.TakeProfit != 99500 || br.StopLoss != 95800 {
		t.Errorf("Unexpected bracket request: %+v", br)
	}

	if len(ex.marketSells) != 1 {
		t.Fatalf("Expected 1 market sell, got %d", len(ex.marketSells))
	}
	if ex.marketSells[0].Symbol != "ETHUSDT" || ex.marketSells[0].Quantity != 0.5 {
		t.Errorf("Unexpected market sell: %+v", ex.marketSells[0])
	}
}

func TestDispatchPartialFailureIsolated(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	ex := &fakeExchange{bracketErr: map[string]error{"BTCUSDT": errors.New("insufficient balance")}}
	book := types.OrderBook{Orders: []types.Order{
		{Symbol: "BTCUSDT", Side: types.SideBuy, Quantity: 1, Price: 97000, TakeProfit: 99500, StopLoss: 95800},
		{Symbol: "ETHUSDT", Side: types.SideSell, Quantity: 0.5},
	}}

	res := New(ex).Dispatch(context.Background(), book)

	if len(res.Failed) != 1 || res.Failed[0] != "BTCUSDT" {
		t.Errorf("Expected BTCUSDT failed, got %v", res.Failed)
	}
	if len(res.Submitted) != 1 || res.Submitted[0].Symbol != "ETHUSDT" {
		t.Errorf("Expected ETHUSDT still submitted, got %+v", res.Submitted)
	}
}

func TestDispatchSkipsNegligibleQuantity(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	ex := &fakeExchange{}
	book := types.OrderBook{Orders: []types.Order{
		{Symbol: "BTCUSDT", Side: types.SideSell, Quantity: 0.000001},
	}}

	res := New(ex).Dispatch(context.Background(), book)

	if len(ex.marketSells) != 0 {
		t.Error("Expected no exchange call for negligible quantity")
	}
	if len(res.Held) != 1 {
		t.Errorf("Expected negligible order recorded as held, got %+v", res)
	}
}

func TestDispatchEmptyBook(t *testing.T) {
	ex := &fakeExchange{}
	res := New(ex).Dispatch(context.Background(), types.OrderBook{})

	if len(res.Submitted) != 0 || len(res.Held) != 0 || len(res.Failed) != 0 {
		t.Errorf("Expected empty result for empty book, got %+v", res)
	}
}
