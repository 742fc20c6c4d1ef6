package mt5

import (
	"time"

	"github.com/shopspring/decimal"

	"c79sniper/src/model"
)

// -----------------------------
// BRIDGE WIRE STRUCTURES
// -----------------------------
// The terminal bridge wraps every payload in a status envelope.

type bridgeResponse struct {
	Status string `json:"status"` // "ok" | "error"
	Error  string `json:"error,omitempty"`
}

type barsResponse struct {
	bridgeResponse
	Bars []barWire `json:"bars"`
}

type barWire struct {
	Time   int64   `json:"time"` // unix seconds
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

type accountResponse struct {
	bridgeResponse
	Account AccountInfo `json:"account"`
}

// AccountInfo mirrors the terminal account snapshot.
type AccountInfo struct {
	Login      int64   `json:"login"`
	Currency   string  `json:"currency"`
	Balance    float64 `json:"balance"`
	Equity     float64 `json:"equity"`
	Margin     float64 `json:"margin"`
	FreeMargin float64 `json:"free_margin"`
}

type positionsResponse struct {
	bridgeResponse
	Positions []Position `json:"positions"`
}

// Position is an open trade at the broker, mirrored read-only.
type Position struct {
	Ticket     int64   `json:"ticket"`
	Magic      int64   `json:"magic"`
	Symbol     string  `json:"symbol"`
	Type       string  `json:"type"` // buy | sell
	Lots       float64 `json:"lots"`
	OpenPrice  float64 `json:"open_price"`
	StopLoss   float64 `json:"stop_loss"`
	TakeProfit float64 `json:"take_profit"`
	Profit     float64 `json:"profit"`
	OpenTime   int64   `json:"open_time"` // unix seconds
}

// OrderRequest is a new market order submission.
type OrderRequest struct {
	Symbol     string  `json:"symbol"`
	Type       string  `json:"type"` // buy | sell
	Lots       float64 `json:"lots"`
	StopLoss   float64 `json:"stop_loss,omitempty"`
	TakeProfit float64 `json:"take_profit,omitempty"`
	Magic      int64   `json:"magic"`
	Comment    string  `json:"comment,omitempty"`
}

type orderResponse struct {
	bridgeResponse
	Ticket int64   `json:"ticket"`
	Price  float64 `json:"price"`
}

// OrderResult is the fill acknowledgement.
type OrderResult struct {
	Ticket int64
	Price  float64
}

type dealsResponse struct {
	bridgeResponse
	Deals []Deal `json:"deals"`
}

// Deal is one closed-deal history entry (entry=out), used for daily totals.
type Deal struct {
	Ticket    int64   `json:"ticket"`
	Magic     int64   `json:"magic"`
	Symbol    string  `json:"symbol"`
	Type      string  `json:"type"`
	Lots      float64 `json:"lots"`
	Profit    float64 `json:"profit"`
	CloseTime int64   `json:"close_time"` // unix seconds
}

// Tick is one streamed quote from the bridge websocket.
type Tick struct {
	Symbol string  `json:"symbol"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
	Time   int64   `json:"time"` // unix milliseconds
}

func (w barWire) toBar(symbol string) model.Bar {
	return model.Bar{
		Symbol:   symbol,
		Datetime: time.Unix(w.Time, 0).UTC(),
		Open:     decimal.NewFromFloat(w.Open),
		High:     decimal.NewFromFloat(w.High),
		Low:      decimal.NewFromFloat(w.Low),
		Close:    decimal.NewFromFloat(w.Close),
		Volume:   decimal.NewFromFloat(w.Volume),
	}
}
