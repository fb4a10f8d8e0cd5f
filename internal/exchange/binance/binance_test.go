package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"llm-portfolio-trader/internal/types"
)

func testClient(baseURL string) *Client {
	c := New(Params{
		BaseURL:   baseURL,
		APIKey:    "test-key",
		SecretKey: "test-secret",
		Timeout:   2 * time.Second,
	})
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return c
}

func TestSignCanonicalAndVerifiable(t *testing.T) {
	c := testClient("http://unused")

	params := url.Values{}
	params.Set("symbol", "BTCUSDT")
	params.Set("orderId", "42")
	qs := c.Sign(params)

	if !strings.Contains(qs, "timestamp=1700000000000") {
		t.Errorf("Expected fixed timestamp in query, got %s", qs)
	}

	// The signature must cover the encoded query exactly as sent.
	parts := strings.SplitN(qs, "&signature=", 2)
	if len(parts) != 2 {
		t.Fatalf("Expected signature suffix, got %s", qs)
	}
	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write([]byte(parts[0]))
	want := hex.EncodeToString(mac.Sum(nil))
	if parts[1] != want {
		t.Errorf("Expected signature %s, got %s", want, parts[1])
	}

	// url.Values.Encode sorts keys, so the signed string is canonical.
	if !strings.HasPrefix(parts[0], "orderId=42&symbol=BTCUSDT") {
		t.Errorf("Expected sorted query parameters, got %s", parts[0])
	}
}

func TestSignDeterministic(t *testing.T) {
	c := testClient("http://unused")

	a := c.Sign(url.Values{"symbol": {"ETHUSDT"}})
	b := c.Sign(url.Values{"symbol": {"ETHUSDT"}})
	if a != b {
		t.Errorf("Expected identical signatures for identical input, got %s vs %s", a, b)
	}
}

func TestPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/ticker/price" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		symbols := r.URL.Query().Get("symbols")
		if symbols != `["BTCUSDT","ETHUSDT"]` {
			t.Errorf("Expected compact JSON symbol list, got %s", symbols)
		}
		w.Write([]byte(`[{"symbol":"BTCUSDT","price":"97123.45"},{"symbol":"ETHUSDT","price":"3456.70"}]`))
	}))
	defer srv.Close()

	snap, err := testClient(srv.URL).Prices(context.Background(), []string{"BTCUSDT", "ETHUSDT"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if snap["BTCUSDT"] != 97123.45 {
		t.Errorf("Expected parsed BTC price, got %f", snap["BTCUSDT"])
	}
	if snap["ETHUSDT"] != 3456.70 {
		t.Errorf("Expected parsed ETH price, got %f", snap["ETHUSDT"])
	}
}

func TestBalancesSignedRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-MBX-APIKEY"); got != "test-key" {
			t.Errorf("Expected API key header, got %q", got)
		}
		q := r.URL.Query()
		if q.Get("timestamp") == "" || q.Get("signature") == "" {
			t.Error("Expected timestamp and signature on signed endpoint")
		}
		w.Write([]byte(`{"balances":[{"asset":"USDT","free":"1000.50","locked":"0.00"},{"asset":"BTC","free":"0.015","locked":"0.001"}]}`))
	}))
	defer srv.Close()

	balances, err := testClient(srv.URL).Balances(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("Expected 2 balances, got %d", len(balances))
	}
	if balances[0].Asset != "USDT" || balances[0].Free != 1000.50 {
		t.Errorf("Expected string-encoded free balance parsed, got %+v", balances[0])
	}
}

func TestCancelOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("Expected DELETE, got %s", r.Method)
		}
		q := r.URL.Query()
		if q.Get("symbol") != "BTCUSDT" || q.Get("orderId") != "42" {
			t.Errorf("Unexpected cancel params: %v", q)
		}
		w.Write([]byte(`{"symbol":"BTCUSDT","orderId":42,"status":"CANCELED"}`))
	}))
	defer srv.Close()

	if err := testClient(srv.URL).CancelOrder(context.Background(), "BTCUSDT", 42); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

func TestMarketSellParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("side") != "SELL" || q.Get("type") != "MARKET" {
			t.Errorf("Unexpected order params: %v", q)
		}
		if q.Get("quantity") != "0.5" {
			t.Errorf("Expected plain decimal quantity, got %s", q.Get("quantity"))
		}
		w.Write([]byte(`{"symbol":"ETHUSDT","orderId":7,"status":"FILLED"}`))
	}))
	defer srv.Close()

	ack, err := testClient(srv.URL).MarketSell(context.Background(), "ETHUSDT", 0.5)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ack.OrderID != 7 || ack.Status != "FILLED" {
		t.Errorf("Unexpected ack: %+v", ack)
	}
}

func TestPlaceBracketParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/orderList/otoco" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		checks := map[string]string{
			"workingSide":             "BUY",
			"workingType":             "LIMIT",
			"workingPrice":            "97000",
			"workingQuantity":         "0.015",
			"workingTimeInForce":      "GTC",
			"pendingSide":             "SELL",
			"pendingQuantity":         "0.015",
			"pendingAbovePrice":       "99500",
			"pendingAboveType":        "LIMIT_MAKER",
			"pendingBelowPrice":       "95800",
			"pendingBelowStopPrice":   "95800",
			"pendingBelowType":        "STOP_LOSS_LIMIT",
			"pendingBelowTimeInForce": "GTC",
		}
		for k, want := range checks {
			if got := q.Get(k); got != want {
				t.Errorf("Expected %s=%s, got %s", k, want, got)
			}
		}
		w.Write([]byte(`{"orderListId":33,"status":"NEW"}`))
	}))
	defer srv.Close()

	ack, err := testClient(srv.URL).PlaceBracket(context.Background(), types.BracketReq{
		Symbol: "BTCUSDT", Price: 97000, Quantity: 0.015, TakeProfit: 99500, StopLoss: 95800,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ack.OrderListID != 33 {
		t.Errorf("Expected order list id 33, got %d", ack.OrderListID)
	}
	if ack.Symbol != "BTCUSDT" {
		t.Errorf("Expected request symbol backfilled on ack, got %q", ack.Symbol)
	}
}

func TestKlinesMixedCells(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("interval") != "4h" || q.Get("limit") != "2" {
			t.Errorf("Unexpected kline params: %v", q)
		}
		w.Write([]byte(`[
			[1700000000000,"96000.1","97500.2","95800.3","97000.4","123.5",1700014399999,"11900000.6",4321,"60.7","5890000.8","0"],
			[1700014400000,"97000.4","98100.0","96900.0","98000.0","150.0",1700028799999,"14600000.0",5000,"80.0","7800000.0","0"]
		]`))
	}))
	defer srv.Close()

	ohlcv, err := testClient(srv.URL).Klines(context.Background(), "BTCUSDT", "4h", 2)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ohlcv.Len() != 2 {
		t.Fatalf("Expected 2 candles, got %d", ohlcv.Len())
	}
	if ohlcv.OpenTime[0] != 1700000000000 {
		t.Errorf("Expected open time parsed, got %d", ohlcv.OpenTime[0])
	}
	if ohlcv.Close[1] != 98000.0 {
		t.Errorf("Expected close parsed from string cell, got %f", ohlcv.Close[1])
	}
	if ohlcv.Trades[0] != 4321 {
		t.Errorf("Expected trades parsed from number cell, got %d", ohlcv.Trades[0])
	}
	if ohlcv.TakerBuyQuoteVol[1] != 7800000.0 {
		t.Errorf("Expected taker buy quote volume parsed, got %f", ohlcv.TakerBuyQuoteVol[1])
	}
}

func TestKlinesShortRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[1700000000000,"1","2"]]`))
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).Klines(context.Background(), "BTCUSDT", "4h", 1); err == nil {
		t.Fatal("Expected error for truncated kline row")
	}
}

func TestErrorStatusIncludesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Prices(context.Background(), []string{"NOPE"})
	if err == nil {
		t.Fatal("Expected error on http 400")
	}
	if !strings.Contains(err.Error(), "-1121") {
		t.Errorf("Expected exchange error body in message, got %v", err)
	}
}
