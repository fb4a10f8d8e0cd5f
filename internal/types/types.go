package types

// Side is the direction of a decided order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
	SideHold Side = "HOLD"
)

// Valid reports whether the side is one of the three supported values.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell || s == SideHold
}

// OHLCV holds one kline series as parallel columns, chronological order.
type OHLCV struct {
	OpenTime         []int64   `json:"open_time"`
	Open             []float64 `json:"open"`
	High             []float64 `json:"high"`
	Low              []float64 `json:"low"`
	Close            []float64 `json:"close"`
	Volume           []float64 `json:"volume"`
	QuoteVolume      []float64 `json:"quote_volume"`
	Trades           []int64   `json:"trades"`
	TakerBuyVolume   []float64 `json:"taker_buy_volume"`
	TakerBuyQuoteVol []float64 `json:"taker_buy_quote_volume"`
}

// Len returns the number of candles in the series.
func (o OHLCV) Len() int { return len(o.Close) }

// TechnicalAnalysis is one target's technical report. Only Summary is
// consumed downstream; OHLCV and Indicators are provenance for it.
type TechnicalAnalysis struct {
	OHLCV      OHLCV                `json:"ohlcv"`
	Indicators map[string][]float64 `json:"indicators"`
	Summary    string               `json:"summary"`
}

// SentimentAnalysis is one target's sentiment report.
type SentimentAnalysis struct {
	Summary string `json:"summary"`
}

// Report pairs the technical and sentiment analyses for one target symbol.
// Reports are cycle-scoped: created by the fan-out, read-only afterward.
type Report struct {
	Name      string            `json:"name"`
	Technical TechnicalAnalysis `json:"technical_analysis"`
	Sentiment SentimentAnalysis `json:"sentimental_analysis"`
}

// PortfolioSnapshot maps asset to free balance, rounded to 4 decimal
// places. Includes the quote asset plus the base asset of every target.
type PortfolioSnapshot map[string]float64

// PriceSnapshot maps symbol to last traded price.
type PriceSnapshot map[string]float64

// Order is one trading decision extracted from the model output.
// Quantity, Price, TakeProfit and StopLoss are required for BUY and SELL
// and meaningless for HOLD. Numeric fields carry 5 decimal places.
type Order struct {
	Symbol     string  `json:"symbol"`
	Side       Side    `json:"side"`
	Quantity   float64 `json:"quantity,omitempty"`
	Price      float64 `json:"price,omitempty"`
	TakeProfit float64 `json:"take_profit,omitempty"`
	StopLoss   float64 `json:"stop_loss,omitempty"`
	Reason     string  `json:"reason"`
}

// OrderBook is the structured output of the decision engine for one cycle,
// consumed exactly once by the dispatcher.
type OrderBook struct {
	Orders []Order `json:"orders"`
}

// OpenOrder identifies an order currently resting on the exchange.
type OpenOrder struct {
	Symbol  string `json:"symbol"`
	OrderID int64  `json:"orderId"`
}

// Balance is one asset row from the exchange account endpoint.
type Balance struct {
	Asset  string  `json:"asset"`
	Free   float64 `json:"free,string"`
	Locked float64 `json:"locked,string"`
}

// OrderAck is the exchange acknowledgement for a submitted order or
// order list.
type OrderAck struct {
	Symbol      string `json:"symbol"`
	OrderID     int64  `json:"orderId"`
	OrderListID int64  `json:"orderListId"`
	Status      string `json:"status"`
}

// BracketReq describes an OTOCO bracket submission: a working LIMIT buy
// that, once filled, arms a contingent take-profit / stop-loss pair.
type BracketReq struct {
	Symbol     string
	Price      float64
	Quantity   float64
	TakeProfit float64
	StopLoss   float64
}

// AnalysisRow is one persisted analysis summary.
type AnalysisRow struct {
	Name    string
	Type    string // "technical" or "sentimental"
	Content string
	Created string // RFC 3339 UTC
	Target  string
}

// DispatchResult summarizes one cycle's execution step.
type DispatchResult struct {
	Submitted []OrderAck `json:"submitted"`
	Held      []string   `json:"held"`
	Failed    []string   `json:"failed"`
}
