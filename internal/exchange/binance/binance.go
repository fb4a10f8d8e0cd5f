// Package binance implements the spot REST exchange client. Authenticated
// endpoints sign the urlencoded query with HMAC-SHA256 over the secret key
// and send the public key in the X-MBX-APIKEY header.
package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"llm-portfolio-trader/internal/interfaces"
	"llm-portfolio-trader/internal/types"
)

type Params struct {
	BaseURL   string
	APIKey    string
	SecretKey string
	Timeout   time.Duration
}

type Client struct {
	p          Params
	httpClient *http.Client
	// now is swappable for deterministic request timestamps in tests.
	now func() time.Time
}

var _ interfaces.Exchange = (*Client)(nil)

func New(p Params) *Client {
	if p.BaseURL == "" {
		p.BaseURL = "https://api.binance.com"
	}
	if p.Timeout == 0 {
		p.Timeout = 15 * time.Second
	}
	return &Client{
		p:          p,
		httpClient: &http.Client{Timeout: p.Timeout},
		now:        time.Now,
	}
}

// Sign appends timestamp and signature to the given query parameters and
// returns the final encoded query string. url.Values.Encode sorts keys, so
// the signed string is canonical.
func (c *Client) Sign(params url.Values) string {
	params.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
	qs := params.Encode()
	mac := hmac.New(sha256.New, []byte(c.p.SecretKey))
	mac.Write([]byte(qs))
	return qs + "&signature=" + hex.EncodeToString(mac.Sum(nil))
}

func (c *Client) do(ctx context.Context, method, endpoint, query string, signed bool) ([]byte, error) {
	u := c.p.BaseURL + endpoint
	if query != "" {
		u += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, err
	}
	if signed {
		req.Header.Set("X-MBX-APIKEY", c.p.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("binance %s %s: http %d: %s", method, endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// Prices returns the last traded price for each requested symbol.
func (c *Client) Prices(ctx context.Context, symbols []string) (types.PriceSnapshot, error) {
	// The endpoint takes the symbol list as a compact JSON array.
	list, _ := json.Marshal(symbols)
	params := url.Values{}
	params.Set("symbols", string(list))

	body, err := c.do(ctx, http.MethodGet, "/api/v3/ticker/price", params.Encode(), false)
	if err != nil {
		return nil, fmt.Errorf("get prices: %w", err)
	}

	var rows []struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode prices: %w", err)
	}

	snap := make(types.PriceSnapshot, len(rows))
	for _, r := range rows {
		p, err := strconv.ParseFloat(r.Price, 64)
		if err != nil {
			return nil, fmt.Errorf("parse price for %s: %w", r.Symbol, err)
		}
		snap[r.Symbol] = p
	}
	return snap, nil
}

// Balances returns every asset row from the account endpoint.
func (c *Client) Balances(ctx context.Context) ([]types.Balance, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v3/account", c.Sign(url.Values{}), true)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	var resp struct {
		Balances []types.Balance `json:"balances"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	return resp.Balances, nil
}

// OpenOrders lists all currently resting orders on the account.
func (c *Client) OpenOrders(ctx context.Context) ([]types.OpenOrder, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v3/openOrders", c.Sign(url.Values{}), true)
	if err != nil {
		return nil, fmt.Errorf("list open orders: %w", err)
	}

	var orders []types.OpenOrder
	if err := json.Unmarshal(body, &orders); err != nil {
		return nil, fmt.Errorf("decode open orders: %w", err)
	}
	return orders, nil
}

// CancelOrder cancels a single resting order.
func (c *Client) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("orderId", strconv.FormatInt(orderID, 10))

	if _, err := c.do(ctx, http.MethodDelete, "/api/v3/order", c.Sign(params), true); err != nil {
		return fmt.Errorf("cancel order %d on %s: %w", orderID, symbol, err)
	}
	return nil
}

// MarketSell submits an immediate market sell for the given quantity.
func (c *Client) MarketSell(ctx context.Context, symbol string, quantity float64) (types.OrderAck, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", "SELL")
	params.Set("type", "MARKET")
	params.Set("quantity", formatQty(quantity))

	body, err := c.do(ctx, http.MethodPost, "/api/v3/order", c.Sign(params), true)
	if err != nil {
		return types.OrderAck{}, fmt.Errorf("market sell %s: %w", symbol, err)
	}

	var ack types.OrderAck
	if err := json.Unmarshal(body, &ack); err != nil {
		return types.OrderAck{}, fmt.Errorf("decode market sell ack: %w", err)
	}
	return ack, nil
}

// PlaceBracket submits an OTOCO order list: a working LIMIT buy that, when
// filled, arms a LIMIT_MAKER take-profit and a STOP_LOSS_LIMIT stop-loss
// for the same quantity, all good-till-canceled.
func (c *Client) PlaceBracket(ctx context.Context, req types.BracketReq) (types.OrderAck, error) {
	params := url.Values{}
	params.Set("symbol", req.Symbol)
	params.Set("workingSide", "BUY")
	params.Set("workingType", "LIMIT")
	params.Set("workingPrice", formatQty(req.Price))
	params.Set("workingQuantity", formatQty(req.Quantity))
	params.Set("workingTimeInForce", "GTC")
	params.Set("pendingSide", "SELL")
	params.Set("pendingQuantity", formatQty(req.Quantity))
	params.Set("pendingAbovePrice", formatQty(req.TakeProfit))
	params.Set("pendingAboveType", "LIMIT_MAKER")
	params.Set("pendingBelowPrice", formatQty(req.StopLoss))
	params.Set("pendingBelowStopPrice", formatQty(req.StopLoss))
	params.Set("pendingBelowType", "STOP_LOSS_LIMIT")
	params.Set("pendingBelowTimeInForce", "GTC")

	body, err := c.do(ctx, http.MethodPost, "/api/v3/orderList/otoco", c.Sign(params), true)
	if err != nil {
		return types.OrderAck{}, fmt.Errorf("bracket order %s: %w", req.Symbol, err)
	}

	var ack types.OrderAck
	if err := json.Unmarshal(body, &ack); err != nil {
		return types.OrderAck{}, fmt.Errorf("decode bracket ack: %w", err)
	}
	if ack.Symbol == "" {
		ack.Symbol = req.Symbol
	}
	return ack, nil
}

// Klines returns the most recent candles for a symbol. The wire format is
// an array of arrays with mixed string/number cells.
func (c *Client) Klines(ctx context.Context, symbol, interval string, limit int) (types.OHLCV, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.do(ctx, http.MethodGet, "/api/v3/klines", params.Encode(), false)
	if err != nil {
		return types.OHLCV{}, fmt.Errorf("get klines %s: %w", symbol, err)
	}

	var raw [][]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return types.OHLCV{}, fmt.Errorf("decode klines %s: %w", symbol, err)
	}

	out := types.OHLCV{}
	for _, row := range raw {
		if len(row) < 11 {
			return types.OHLCV{}, fmt.Errorf("kline row for %s has %d cells, want 11+", symbol, len(row))
		}
		openTime, err := cellInt(row[0])
		if err != nil {
			return types.OHLCV{}, fmt.Errorf("kline open time: %w", err)
		}
		trades, err := cellInt(row[8])
		if err != nil {
			return types.OHLCV{}, fmt.Errorf("kline trades: %w", err)
		}

		cols := []*[]float64{
			&out.Open, &out.High, &out.Low, &out.Close, &out.Volume,
		}
		for i, dst := range cols {
			v, err := cellFloat(row[i+1])
			if err != nil {
				return types.OHLCV{}, fmt.Errorf("kline cell %d: %w", i+1, err)
			}
			*dst = append(*dst, v)
		}
		quoteVol, err := cellFloat(row[7])
		if err != nil {
			return types.OHLCV{}, fmt.Errorf("kline quote volume: %w", err)
		}
		takerBuy, err := cellFloat(row[9])
		if err != nil {
			return types.OHLCV{}, fmt.Errorf("kline taker buy volume: %w", err)
		}
		takerBuyQuote, err := cellFloat(row[10])
		if err != nil {
			return types.OHLCV{}, fmt.Errorf("kline taker buy quote volume: %w", err)
		}

		out.OpenTime = append(out.OpenTime, openTime)
		out.Trades = append(out.Trades, trades)
		out.QuoteVolume = append(out.QuoteVolume, quoteVol)
		out.TakerBuyVolume = append(out.TakerBuyVolume, takerBuy)
		out.TakerBuyQuoteVol = append(out.TakerBuyQuoteVol, takerBuyQuote)
	}
	return out, nil
}

func cellFloat(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseFloat(s, 64)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, err
	}
	return f, nil
}

func cellInt(raw json.RawMessage) (int64, error) {
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	return n, nil
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
