package model

import "fmt"

// Action is the trade decision carried by a Signal.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Signal is the unified output of every strategy. It is produced fresh on
// each analysis call and never mutated afterwards.
type Signal struct {
	Action     Action
	Strategy   string
	Confidence float64 // 0.0 ~ 1.0
	Reason     string

	// Optional, strategy dependent.
	TakeProfit        float64 // percent
	StopLoss          float64 // percent
	PositionSizeRatio float64 // fraction of capital
}

// Hold builds a HOLD signal with the default low confidence.
func Hold(strategy, reason string) Signal {
	return Signal{Action: ActionHold, Strategy: strategy, Confidence: 0.3, Reason: reason}
}

// HoldNoData builds the zero-confidence HOLD used when inputs are missing.
func HoldNoData(strategy, reason string) Signal {
	return Signal{Action: ActionHold, Strategy: strategy, Confidence: 0.0, Reason: reason}
}

// Sell builds a SELL signal with exit-grade confidence.
func Sell(strategy, reason string) Signal {
	return Signal{Action: ActionSell, Strategy: strategy, Confidence: 0.95, Reason: reason}
}

func (s Signal) String() string {
	return fmt.Sprintf("[%s] %s: %s (confidence %.0f%%)", s.Strategy, s.Action, s.Reason, s.Confidence*100)
}

// Position is the engine-owned per-symbol position context handed to
// strategies. Strategies read it and never write it.
type Position struct {
	InPosition   bool
	EntryPrice   float64
	StrategyType string // which strategy opened it, e.g. "ICT" or "TREND"
}
