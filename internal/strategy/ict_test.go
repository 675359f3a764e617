package strategy

import (
	"math"
	"strings"
	"testing"

	"CryptoSentry/internal/model"
)

func TestICTBullishConfluenceEntry(t *testing.T) {
	s := NewICTStrategy(DefaultICTConfig())
	series := confluenceFixture()
	sig := s.Analyze(Context{Series: series, Price: series.LastClose()})

	if sig.Action != model.ActionBuy {
		t.Fatalf("action = %s (%s), want BUY", sig.Action, sig.Reason)
	}
	if math.Abs(sig.Confidence-0.7) > 1e-9 {
		t.Errorf("confidence at score 80 = %.2f, want 0.70", sig.Confidence)
	}
	if sig.TakeProfit != 1.5 || sig.StopLoss != 0.75 {
		t.Errorf("exit levels = %.2f/%.2f, want 1.5/0.75", sig.TakeProfit, sig.StopLoss)
	}
	if sig.PositionSizeRatio != 0.20 {
		t.Errorf("position size = %.2f, want 0.20", sig.PositionSizeRatio)
	}
}

func TestICTFullConfluenceScoresHundred(t *testing.T) {
	s := NewICTStrategy(DefaultICTConfig())
	sig := s.Analyze(Context{Series: fullConfluenceFixture(), Price: 102.9})

	if sig.Action != model.ActionBuy {
		t.Fatalf("action = %s (%s), want BUY", sig.Action, sig.Reason)
	}
	if !strings.Contains(sig.Reason, "100/100") {
		t.Fatalf("reason = %q, want the full score 100/100", sig.Reason)
	}
	if math.Abs(sig.Confidence-0.9) > 1e-9 {
		t.Errorf("confidence at score 100 = %.2f, want 0.90", sig.Confidence)
	}
}

func TestICTBelowThresholdHolds(t *testing.T) {
	cfg := DefaultICTConfig()
	cfg.ConfluenceThreshold = 90
	s := NewICTStrategy(cfg)
	series := confluenceFixture()
	sig := s.Analyze(Context{Series: series, Price: series.LastClose()})

	if sig.Action != model.ActionHold {
		t.Fatalf("action = %s, want HOLD at threshold 90", sig.Action)
	}
	if sig.Confidence != 0.5 {
		t.Errorf("confidence = %.2f, want 0.5 for insufficient confluence", sig.Confidence)
	}
}

func TestICTBearishStructureNeverTraded(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 110 - float64(i)
	}
	cfg := DefaultICTConfig()
	cfg.ConfluenceThreshold = 30
	s := NewICTStrategy(cfg)
	series := seriesFromCloses(closes)
	sig := s.Analyze(Context{Series: series, Price: series.LastClose()})

	if sig.Action != model.ActionHold {
		t.Fatalf("bearish structure must never BUY, got %s (%s)", sig.Action, sig.Reason)
	}
	if sig.Confidence != 0.4 {
		t.Errorf("confidence = %.2f, want 0.4 for bearish hold", sig.Confidence)
	}
	if !strings.Contains(sig.Reason, "long-only") {
		t.Errorf("reason should state the long-only policy, got %q", sig.Reason)
	}
}

func TestICTRiskRewardGate(t *testing.T) {
	cfg := DefaultICTConfig()
	cfg.TakeProfitPct = 1.0
	cfg.StopLossPct = 0.75 // rr 1.33 < 2.0
	s := NewICTStrategy(cfg)
	series := confluenceFixture()
	sig := s.Analyze(Context{Series: series, Price: series.LastClose()})

	if sig.Action != model.ActionHold || sig.Confidence != 0.6 {
		t.Errorf("rr below minimum must HOLD at 0.6, got %s %.2f", sig.Action, sig.Confidence)
	}
}

func TestICTExits(t *testing.T) {
	s := NewICTStrategy(DefaultICTConfig())
	series := confluenceFixture()
	pos := model.Position{InPosition: true, EntryPrice: 100, StrategyType: "ICT"}

	tests := []struct {
		name   string
		price  float64
		action model.Action
	}{
		{"take profit", 101.6, model.ActionSell}, // +1.6% >= 1.5
		{"stop loss", 99.2, model.ActionSell},    // -0.8% <= -0.75
		{"holding", 100.5, model.ActionHold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := s.Analyze(Context{Series: series, Price: tt.price, Position: pos})
			if sig.Action != tt.action {
				t.Errorf("at price %.1f action = %s, want %s (%s)", tt.price, sig.Action, tt.action, sig.Reason)
			}
		})
	}
}

func TestICTNoData(t *testing.T) {
	s := NewICTStrategy(DefaultICTConfig())
	sig := s.Analyze(Context{Series: nil, Price: 100})
	if sig.Action != model.ActionHold || sig.Confidence != 0.0 {
		t.Errorf("empty series must HOLD at 0.0, got %s %.2f", sig.Action, sig.Confidence)
	}
	sig = s.Analyze(Context{Series: confluenceFixture(), Price: 0})
	if sig.Action != model.ActionHold || sig.Confidence != 0.0 {
		t.Errorf("zero price must HOLD at 0.0, got %s %.2f", sig.Action, sig.Confidence)
	}
}
