package strategy

import (
	"testing"

	"CryptoSentry/internal/model"
)

func TestBollingerBuyBelowLowerBand(t *testing.T) {
	closes := flatCloses(25, 100)
	closes[24] = 90
	s := NewBollingerStrategy(DefaultBollingerConfig())
	sig := s.Analyze(Context{Series: seriesFromCloses(closes), Price: 90})

	if sig.Action != model.ActionBuy {
		t.Fatalf("action = %s (%s), want BUY below the lower band", sig.Action, sig.Reason)
	}
	if sig.Confidence != 1.0 {
		t.Errorf("deep breach confidence = %.2f, want capped 1.0", sig.Confidence)
	}
	if sig.TakeProfit != 0.8 || sig.StopLoss != 0.4 {
		t.Errorf("exit levels = %.2f/%.2f, want 0.8/0.4", sig.TakeProfit, sig.StopLoss)
	}
}

func TestBollingerSellAboveUpperBand(t *testing.T) {
	closes := flatCloses(25, 100)
	closes[24] = 110
	s := NewBollingerStrategy(DefaultBollingerConfig())
	pos := model.Position{InPosition: true, EntryPrice: 110, StrategyType: "BOLLINGER"}
	sig := s.Analyze(Context{Series: seriesFromCloses(closes), Price: 110, Position: pos})

	if sig.Action != model.ActionSell {
		t.Fatalf("action = %s (%s), want SELL above the upper band", sig.Action, sig.Reason)
	}
	if sig.Confidence != 1.0 {
		t.Errorf("deep breach confidence = %.2f, want capped 1.0", sig.Confidence)
	}
}

func TestBollingerHoldInsideBands(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100 + float64(i%5)
	}
	s := NewBollingerStrategy(DefaultBollingerConfig())
	sig := s.Analyze(Context{Series: seriesFromCloses(closes), Price: closes[24]})
	if sig.Action != model.ActionHold {
		t.Errorf("inside the bands must HOLD, got %s (%s)", sig.Action, sig.Reason)
	}
}

func TestBollingerInsufficientData(t *testing.T) {
	s := NewBollingerStrategy(DefaultBollingerConfig())
	sig := s.Analyze(Context{Series: seriesFromCloses(flatCloses(5, 100)), Price: 100})
	if sig.Action != model.ActionHold || sig.Confidence != 0.0 {
		t.Errorf("5 closes must HOLD at 0.0, got %s %.2f", sig.Action, sig.Confidence)
	}
}
