// Package risk gates every prospective trade against the day's ledger:
// trade count, cumulative loss, per-trade cap and a forward-looking
// worst-case estimate. The ledger is the sole writer of the persisted
// DailyStats record.
package risk

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"CryptoSentry/internal/model"
)

const dateLayout = "2006-01-02"

// Worst-case loss estimates carry a safety margin over the configured stop,
// since market sells can slip past it.
const worstCaseMargin = 1.2

// Limits is the ledger's configuration surface.
type Limits struct {
	MaxTradeAmount float64 // per-trade cap, quote currency
	MaxDailyTrades int
	MaxDailyLoss   float64 // quote currency, positive number
	StopLossPct    float64 // configured stop used for worst-case estimates
}

// Ledger is the day-scoped risk accountant. Rollover is lazy: the first call
// on a new calendar day replaces the record before any gate runs, so a stale
// emergency stop lifts itself at midnight.
type Ledger struct {
	mu       sync.Mutex
	stats    model.DailyStats
	filePath string
	limits   Limits
	now      func() time.Time
	logger   zerolog.Logger
}

// NewLedger loads or initializes the ledger state from disk.
func NewLedger(filePath string, limits Limits, logger zerolog.Logger) (*Ledger, error) {
	stats, err := LoadStats(filePath)
	if err != nil {
		return nil, fmt.Errorf("load daily stats: %w", err)
	}
	l := &Ledger{
		stats:    stats,
		filePath: filePath,
		limits:   limits,
		now:      time.Now,
		logger:   logger.With().Str("component", "risk").Logger(),
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover()
	return l, nil
}

// CanTrade reports whether a trade of the given amount is allowed right now.
// Pass amount 0 to check only the day-level gates. The reason string
// distinguishes which gate denied.
func (l *Ledger) CanTrade(amount float64) (bool, string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover()

	if l.stats.TotalTrades >= l.limits.MaxDailyTrades {
		return false, fmt.Sprintf("daily trade limit reached (%d/%d)", l.stats.TotalTrades, l.limits.MaxDailyTrades)
	}
	if l.stats.TotalProfit < -l.limits.MaxDailyLoss {
		return false, fmt.Sprintf("daily loss limit breached (%.0f < -%.0f)", l.stats.TotalProfit, l.limits.MaxDailyLoss)
	}
	if amount > 0 {
		if amount > l.limits.MaxTradeAmount {
			return false, fmt.Sprintf("amount %.0f exceeds per-trade cap %.0f", amount, l.limits.MaxTradeAmount)
		}
		worstCase := amount * (l.limits.StopLossPct / 100) * worstCaseMargin
		if l.stats.TotalProfit-worstCase < -l.limits.MaxDailyLoss {
			return false, fmt.Sprintf("worst-case loss %.0f would breach daily loss limit", worstCase)
		}
	}
	return true, "ok"
}

// RecordTrade books a completed trade. Win or loss is inferred from the
// profit sign unless the caller states it. This is the only mutation path
// for the day's stats; a failed save is logged and the in-memory record
// stays authoritative.
func (l *Ledger) RecordTrade(amount, profit float64, strategy string, won *bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover()

	l.stats.TotalTrades++
	l.stats.TotalWagered += amount
	l.stats.TotalProfit += profit

	isWin := profit > 0
	if won != nil {
		isWin = *won
	}
	if isWin {
		l.stats.WinCount++
	} else {
		l.stats.LossCount++
	}

	switch strategy {
	case "ICT":
		l.stats.ICTTrades++
	case "TREND":
		l.stats.TrendTrades++
	}

	l.persist()
	l.logger.Info().Str("strategy", strategy).Float64("amount", amount).
		Float64("profit", profit).Bool("win", isWin).
		Int("total_trades", l.stats.TotalTrades).Msg("trade recorded")
}

// EmergencyStop saturates the day's trade count so every further CanTrade
// denies. It sets no separate flag: the next day's rollover lifts it.
func (l *Ledger) EmergencyStop(reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover()

	l.stats.TotalTrades = l.limits.MaxDailyTrades
	l.persist()
	l.logger.Warn().Str("reason", reason).Msg("emergency stop engaged")
}

// ForceRollover replaces the record with a fresh one for today. The midnight
// scheduler job calls this so the ledger and the hybrid accumulator reset
// from the same clock edge.
func (l *Ledger) ForceRollover() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stats = model.NewDailyStats(l.now().Format(dateLayout))
	l.persist()
}

// Stats returns a copy of today's record.
func (l *Ledger) Stats() model.DailyStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover()
	return l.stats
}

// RemainingTrades reports how many entries the count gate still allows.
func (l *Ledger) RemainingTrades() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover()

	left := l.limits.MaxDailyTrades - l.stats.TotalTrades
	if left < 0 {
		return 0
	}
	return left
}

// rollover replaces a stale record with today's. Callers hold the lock.
func (l *Ledger) rollover() {
	today := l.now().Format(dateLayout)
	if l.stats.Date == today {
		return
	}
	l.logger.Info().Str("from", l.stats.Date).Str("to", today).Msg("daily ledger rollover")
	l.stats = model.NewDailyStats(today)
	l.persist()
}

func (l *Ledger) persist() {
	if err := SaveStats(l.filePath, l.stats); err != nil {
		l.logger.Error().Err(err).Msg("failed to save daily stats")
	}
}
