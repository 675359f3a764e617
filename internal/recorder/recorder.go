package recorder

import "CryptoSentry/internal/model"

// TradeEvent records one executed (or simulated) order.
type TradeEvent struct {
	Symbol   string
	Side     string // "BUY" or "SELL"
	Strategy string
	Price    float64
	Amount   float64 // quote currency
	Volume   float64 // base currency
	Profit   float64 // realized, SELL only
	Mode     string  // "semi" or "full"
	Reason   string
}

// SignalEvent records every signal a cycle produced, traded or not.
type SignalEvent struct {
	Symbol     string
	Action     string
	Strategy   string
	Confidence float64
	Price      float64
	Reason     string
	Executed   bool
	DenyReason string // risk gate denial, empty when executed or HOLD
}

// RegimeSnapshot records the classifier's view of one symbol at one cycle.
type RegimeSnapshot struct {
	Symbol string
	State  model.MarketState
}

// DailySummary records the ledger's end-of-day totals.
type DailySummary struct {
	Stats       model.DailyStats
	RealizedPct float64
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordTrade(evt *TradeEvent) error
	RecordSignal(evt *SignalEvent) error
	RecordRegime(snap *RegimeSnapshot) error
	RecordDailySummary(sum *DailySummary) error
	Close() error
}
