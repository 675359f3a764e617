// Package strategy contains the signal strategies and the hybrid composer.
// Every strategy is pure given its inputs: a candle series snapshot, the
// current price and the caller-owned position context. Missing or short
// inputs always degrade to a HOLD signal, never an error or a panic.
package strategy

import "CryptoSentry/internal/model"

// Context carries one analysis call's inputs. The engine fetches series and
// prices before invoking a strategy; strategies never perform I/O.
type Context struct {
	Series   model.Series
	Price    float64
	Position model.Position
}

// Strategy produces a trade decision from a context snapshot.
type Strategy interface {
	Name() string
	Analyze(ctx Context) model.Signal
	// PositionSize is the fraction of capital this strategy wants per entry,
	// before any hybrid or regime multiplier.
	PositionSize() float64
}

// profitRate is the signed percent gain of price over entry.
func profitRate(entry, price float64) float64 {
	if entry <= 0 {
		return 0
	}
	return (price - entry) / entry * 100
}
