// Package exchange provides market data and order access for Upbit, behind
// small interfaces so the engine and the backtester can swap in mocks.
package exchange

import (
	"time"

	"CryptoSentry/internal/model"
)

// Fetcher supplies public market data. Candle series come back time-ordered,
// newest last, regardless of the transport's native ordering.
type Fetcher interface {
	// FetchCandles returns up to count candles at the given interval, e.g.
	// "1m", "5m", "15m", "1h", "4h", "1d".
	FetchCandles(symbol, interval string, count int) (model.Series, error)
	FetchCurrentPrice(symbol string) (float64, error)
	FetchOrderbook(symbol string) (Orderbook, error)
	Name() string
}

// Broker places orders and reads balances on the private API.
type Broker interface {
	// Balances returns holdings keyed by currency, e.g. "KRW", "BTC".
	Balances() (map[string]Balance, error)
	// BuyMarket spends the given quote amount at market.
	BuyMarket(symbol string, amount float64) (Order, error)
	// SellMarket sells the given base volume at market.
	SellMarket(symbol string, volume float64) (Order, error)
}

// Balance is one currency's holding.
type Balance struct {
	Currency    string
	Available   float64
	Locked      float64
	AvgBuyPrice float64
}

// Order is the acknowledgment of a placed order.
type Order struct {
	ID        string
	Symbol    string
	Side      string // "bid" or "ask"
	Price     float64
	Volume    float64
	CreatedAt time.Time
}

// OrderbookLevel is one price level of the book.
type OrderbookLevel struct {
	AskPrice float64
	BidPrice float64
	AskSize  float64
	BidSize  float64
}

// Orderbook is a snapshot of the top levels.
type Orderbook struct {
	Symbol    string
	Timestamp time.Time
	Levels    []OrderbookLevel
}

// BestBid returns the top-of-book bid price, 0 when the book is empty.
func (o Orderbook) BestBid() float64 {
	if len(o.Levels) == 0 {
		return 0
	}
	return o.Levels[0].BidPrice
}

// BestAsk returns the top-of-book ask price, 0 when the book is empty.
func (o Orderbook) BestAsk() float64 {
	if len(o.Levels) == 0 {
		return 0
	}
	return o.Levels[0].AskPrice
}
