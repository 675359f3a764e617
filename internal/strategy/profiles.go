package strategy

import (
	"fmt"

	"CryptoSentry/internal/regime"
)

// Profile is a named preset of entry/exit parameters.
type Profile struct {
	Name                string
	ConfluenceThreshold float64
	TakeProfitPct       float64
	StopLossPct         float64
	MinRRRatio          float64
	PositionSizeRatio   float64
}

// Profiles holds the selectable presets, loosest confluence last.
var Profiles = map[string]Profile{
	"CONSERVATIVE":           {Name: "CONSERVATIVE", ConfluenceThreshold: 90, TakeProfitPct: 1.0, StopLossPct: 0.5, MinRRRatio: 2.0, PositionSizeRatio: 0.10},
	"BALANCED":               {Name: "BALANCED", ConfluenceThreshold: 70, TakeProfitPct: 1.5, StopLossPct: 0.75, MinRRRatio: 2.0, PositionSizeRatio: 0.20},
	"ICT_OPTIMIZED":          {Name: "ICT_OPTIMIZED", ConfluenceThreshold: 60, TakeProfitPct: 2.0, StopLossPct: 1.0, MinRRRatio: 2.0, PositionSizeRatio: 0.25},
	"TREND_ONLY":             {Name: "TREND_ONLY", ConfluenceThreshold: 50, TakeProfitPct: 2.5, StopLossPct: 1.0, MinRRRatio: 2.5, PositionSizeRatio: 0.15},
	"RANGING_MEAN_REVERSION": {Name: "RANGING_MEAN_REVERSION", ConfluenceThreshold: 80, TakeProfitPct: 0.8, StopLossPct: 0.4, MinRRRatio: 2.0, PositionSizeRatio: 0.15},
	"FVG_RETRACEMENT":        {Name: "FVG_RETRACEMENT", TakeProfitPct: 1.5, StopLossPct: 0.75, MinRRRatio: 2.0, PositionSizeRatio: 0.15},
}

// Overrides replaces individual profile parameters. Zero fields keep the
// profile's value.
type Overrides struct {
	ConfluenceThreshold float64
	TakeProfitPct       float64
	StopLossPct         float64
	PositionSizeRatio   float64
}

func (o Overrides) apply(p Profile) Profile {
	if o.ConfluenceThreshold > 0 {
		p.ConfluenceThreshold = o.ConfluenceThreshold
	}
	if o.TakeProfitPct > 0 {
		p.TakeProfitPct = o.TakeProfitPct
	}
	if o.StopLossPct > 0 {
		p.StopLossPct = o.StopLossPct
	}
	if o.PositionSizeRatio > 0 {
		p.PositionSizeRatio = o.PositionSizeRatio
	}
	return p
}

// ForProfile builds the strategy a named profile configures. ICT-style
// profiles parameterize the confluence strategy; TREND_ONLY runs the
// crossover, RANGING_MEAN_REVERSION the Bollinger reversion and
// FVG_RETRACEMENT the standalone gap retracement.
func ForProfile(name string) (Strategy, error) {
	return ForProfileWithOverrides(name, Overrides{})
}

// ForProfileWithOverrides builds a profile's strategy with config-level
// parameter overrides applied on top.
func ForProfileWithOverrides(name string, o Overrides) (Strategy, error) {
	p, ok := Profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy profile %q", name)
	}
	p = o.apply(p)

	switch name {
	case "TREND_ONLY":
		cfg := DefaultCrossoverConfig()
		cfg.TakeProfitPct = p.TakeProfitPct
		cfg.StopLossPct = p.StopLossPct
		cfg.PositionSizeRatio = p.PositionSizeRatio
		return NewCrossoverStrategy(cfg), nil
	case "RANGING_MEAN_REVERSION":
		cfg := DefaultBollingerConfig()
		cfg.TakeProfitPct = p.TakeProfitPct
		cfg.StopLossPct = p.StopLossPct
		cfg.PositionSizeRatio = p.PositionSizeRatio
		return NewBollingerStrategy(cfg), nil
	case "FVG_RETRACEMENT":
		cfg := DefaultFVGConfig()
		cfg.TakeProfitPct = p.TakeProfitPct
		cfg.StopLossPct = p.StopLossPct
		cfg.PositionSizeRatio = p.PositionSizeRatio
		return NewFVGStrategy(cfg), nil
	}

	cfg := DefaultICTConfig()
	cfg.ConfluenceThreshold = p.ConfluenceThreshold
	cfg.MinRRRatio = p.MinRRRatio
	cfg.TakeProfitPct = p.TakeProfitPct
	cfg.StopLossPct = p.StopLossPct
	cfg.PositionSizeRatio = p.PositionSizeRatio
	return NewICTStrategy(cfg), nil
}

// recommendationProfiles maps the regime classifier's recommendation onto a
// configured profile. SKIP has no entry mapping on purpose.
var recommendationProfiles = map[string]string{
	regime.ProfileConservativeTrend: "CONSERVATIVE",
	regime.ProfileICTMeanReversion:  "RANGING_MEAN_REVERSION",
	regime.ProfileTrendFollowing:    "TREND_ONLY",
	regime.ProfileICTConfluence:     "ICT_OPTIMIZED",
}

// ForRecommendation resolves a regime recommendation to a strategy. The
// second return is false when the recommendation is SKIP (or unknown), which
// means no entry evaluation this cycle.
func ForRecommendation(recommended string) (Strategy, bool) {
	name, ok := recommendationProfiles[recommended]
	if !ok {
		return nil, false
	}
	s, err := ForProfile(name)
	if err != nil {
		return nil, false
	}
	return s, true
}
