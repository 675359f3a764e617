package risk

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testLimits() Limits {
	return Limits{
		MaxTradeAmount: 100000,
		MaxDailyTrades: 5,
		MaxDailyLoss:   50000,
		StopLossPct:    1.0,
	}
}

func newTestLedger(t *testing.T, limits Limits) *Ledger {
	t.Helper()
	path := filepath.Join(t.TempDir(), "daily_stats.json")
	l, err := NewLedger(path, limits, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestCanTradeWithinLimits(t *testing.T) {
	l := newTestLedger(t, testLimits())
	ok, reason := l.CanTrade(50000)
	if !ok {
		t.Errorf("fresh ledger must allow a trade, denied: %s", reason)
	}
}

func TestTradeCountGate(t *testing.T) {
	l := newTestLedger(t, testLimits())
	for i := 0; i < 5; i++ {
		l.RecordTrade(10000, 100, "TREND", nil)
	}
	ok, reason := l.CanTrade(10000)
	if ok {
		t.Fatal("5 trades must exhaust max_daily_trades=5")
	}
	if !strings.Contains(reason, "trade limit") {
		t.Errorf("reason = %q, want the trade-count gate named", reason)
	}
	if got := l.RemainingTrades(); got != 0 {
		t.Errorf("RemainingTrades = %d, want 0", got)
	}
}

func TestDailyLossGate(t *testing.T) {
	l := newTestLedger(t, testLimits())
	l.RecordTrade(100000, -60000, "ICT", nil)
	ok, reason := l.CanTrade(0)
	if ok {
		t.Fatal("loss of 60000 must breach max_daily_loss=50000")
	}
	if !strings.Contains(reason, "loss limit") {
		t.Errorf("reason = %q, want the loss gate named", reason)
	}
}

func TestPerTradeCapGate(t *testing.T) {
	l := newTestLedger(t, testLimits())
	ok, reason := l.CanTrade(150000)
	if ok {
		t.Fatal("150000 must exceed the 100000 per-trade cap")
	}
	if !strings.Contains(reason, "per-trade cap") {
		t.Errorf("reason = %q, want the cap gate named", reason)
	}
}

func TestWorstCaseGate(t *testing.T) {
	l := newTestLedger(t, testLimits())
	// Loss of 49500 leaves 500 headroom; worst case of a 100000 trade at
	// 1% stop * 1.2 margin = 1200 > 500.
	l.RecordTrade(100000, -49500, "ICT", nil)
	ok, reason := l.CanTrade(100000)
	if ok {
		t.Fatal("worst-case estimate must deny near the loss limit")
	}
	if !strings.Contains(reason, "worst-case") {
		t.Errorf("reason = %q, want the worst-case gate named", reason)
	}
	// A smaller trade's worst case (360) fits inside the headroom.
	if ok, reason := l.CanTrade(30000); !ok {
		t.Errorf("30000 should pass the worst-case gate, denied: %s", reason)
	}
}

func TestDenialIsMonotonicWithinDay(t *testing.T) {
	l := newTestLedger(t, testLimits())
	for i := 0; i < 5; i++ {
		l.RecordTrade(10000, 100, "TREND", nil)
	}
	for i := 0; i < 3; i++ {
		if ok, _ := l.CanTrade(10000); ok {
			t.Fatal("a denied day must stay denied without a rollover")
		}
	}
}

func TestLazyRollover(t *testing.T) {
	l := newTestLedger(t, testLimits())
	l.now = func() time.Time { return time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC) }
	for i := 0; i < 5; i++ {
		l.RecordTrade(10000, -100, "ICT", nil)
	}
	if ok, _ := l.CanTrade(10000); ok {
		t.Fatal("day one must be exhausted")
	}

	l.now = func() time.Time { return time.Date(2026, 8, 31, 0, 1, 0, 0, time.UTC) }
	ok, reason := l.CanTrade(10000)
	if !ok {
		t.Errorf("first call on the new day must roll over and allow, denied: %s", reason)
	}
	stats := l.Stats()
	if stats.Date != "2026-08-31" || stats.TotalTrades != 0 {
		t.Errorf("rollover produced %+v, want a zeroed record for 2026-08-31", stats)
	}
}

func TestEmergencyStopSaturatesAndLifts(t *testing.T) {
	l := newTestLedger(t, testLimits())
	l.now = func() time.Time { return time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC) }
	l.ForceRollover()

	l.EmergencyStop("manual kill")
	if ok, _ := l.CanTrade(10000); ok {
		t.Fatal("emergency stop must deny all trades")
	}

	l.now = func() time.Time { return time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC) }
	if ok, reason := l.CanTrade(10000); !ok {
		t.Errorf("emergency stop must lift on rollover, denied: %s", reason)
	}
}

func TestRecordTradeBookkeeping(t *testing.T) {
	l := newTestLedger(t, testLimits())
	l.RecordTrade(10000, 500, "ICT", nil)
	l.RecordTrade(20000, -300, "TREND", nil)
	loss := false
	l.RecordTrade(5000, 100, "ICT", &loss) // explicit override wins

	stats := l.Stats()
	if stats.TotalTrades != 3 || stats.TotalWagered != 35000 || stats.TotalProfit != 300 {
		t.Errorf("totals = %d/%.0f/%.0f, want 3/35000/300", stats.TotalTrades, stats.TotalWagered, stats.TotalProfit)
	}
	if stats.WinCount != 1 || stats.LossCount != 2 {
		t.Errorf("win/loss = %d/%d, want 1/2", stats.WinCount, stats.LossCount)
	}
	if stats.ICTTrades != 2 || stats.TrendTrades != 1 {
		t.Errorf("per-strategy counts = %d/%d, want 2/1", stats.ICTTrades, stats.TrendTrades)
	}
}

func TestStatsPersistAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily_stats.json")
	l, err := NewLedger(path, testLimits(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	l.RecordTrade(10000, 500, "ICT", nil)

	reloaded, err := NewLedger(path, testLimits(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	stats := reloaded.Stats()
	if stats.TotalTrades != 1 || stats.TotalProfit != 500 {
		t.Errorf("reloaded stats = %+v, want the recorded trade preserved", stats)
	}
}
