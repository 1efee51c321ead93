package bias

import (
	"strings"
	"testing"

	"daybias/internal/candle"
	"daybias/internal/structure"
	"daybias/pkg/model"
)

func resolve(t *testing.T, d2, d1 model.PriceBar) Verdict {
	t.Helper()
	dbpd, err := candle.Classify(d2)
	if err != nil {
		t.Fatalf("Classify D-2: %v", err)
	}
	pd, err := candle.Classify(d1)
	if err != nil {
		t.Fatalf("Classify D-1: %v", err)
	}
	st := structure.Analyze(dbpd, pd, d2, d1)
	return Resolve(st, dbpd, pd, d2, d1)
}

func TestResolve_FakeBreakoutHigh(t *testing.T) {
	// D-1 sweeps above the D-2 high at 1.112 but closes back inside with a
	// bearish candle.
	d2 := model.PriceBar{Open: 1.100, High: 1.112, Low: 1.090, Close: 1.110}
	d1 := model.PriceBar{Open: 1.110, High: 1.118, Low: 1.095, Close: 1.097}

	v := resolve(t, d2, d1)

	if v.Bias != model.BiasBearishReversal {
		t.Fatalf("Expected BEARISH REVERSAL, got %s", v.Bias)
	}
	if v.Strength != 85 {
		t.Errorf("Expected fixed strength 85, got %d", v.Strength)
	}
	if v.Direction != model.DirectionShort {
		t.Errorf("Expected SHORT direction, got %s", v.Direction)
	}
	if v.BearishSetup == nil {
		t.Fatal("Expected a bearish setup")
	}
	if v.BullishSetup != nil {
		t.Error("Fake breakout high must emit the bearish setup only")
	}
	if v.BearishSetup.SweepLevel != 1.118 {
		t.Errorf("Expected sweep level 1.118, got %v", v.BearishSetup.SweepLevel)
	}
	if v.BearishSetup.Invalidation <= v.BearishSetup.SweepLevel {
		t.Errorf("Short invalidation must sit above the sweep: %v vs %v",
			v.BearishSetup.Invalidation, v.BearishSetup.SweepLevel)
	}
	targets := v.BearishSetup.Targets
	if len(targets) != 3 {
		t.Fatalf("Expected 3 targets, got %d", len(targets))
	}
	if !(targets[0].Level > targets[1].Level && targets[1].Level > targets[2].Level) {
		t.Errorf("Short targets must descend: %+v", targets)
	}
}

func TestResolve_FakeBreakoutLow(t *testing.T) {
	d2 := model.PriceBar{Open: 1.100, High: 1.112, Low: 1.090, Close: 1.092}
	d1 := model.PriceBar{Open: 1.092, High: 1.105, Low: 1.082, Close: 1.103}

	v := resolve(t, d2, d1)

	if v.Bias != model.BiasBullishReversal {
		t.Fatalf("Expected BULLISH REVERSAL, got %s", v.Bias)
	}
	if v.Strength != 85 {
		t.Errorf("Expected fixed strength 85, got %d", v.Strength)
	}
	if v.BullishSetup == nil || v.BearishSetup != nil {
		t.Fatal("Fake breakout low must emit the bullish setup only")
	}
	if v.BullishSetup.SweepLevel != 1.082 {
		t.Errorf("Expected sweep level 1.082, got %v", v.BullishSetup.SweepLevel)
	}
	if v.BullishSetup.Invalidation >= v.BullishSetup.SweepLevel {
		t.Errorf("Long invalidation must sit below the sweep: %v vs %v",
			v.BullishSetup.Invalidation, v.BullishSetup.SweepLevel)
	}
}

func TestResolve_ContinuationBeatsConfluence(t *testing.T) {
	// Satisfies both the uptrend+bullish rule and confluence >= 3: the
	// higher-priority continuation rule must win.
	d2 := model.PriceBar{Open: 1.000, High: 1.050, Low: 0.990, Close: 1.045}
	d1 := model.PriceBar{Open: 1.045, High: 1.100, Low: 1.040, Close: 1.095}

	v := resolve(t, d2, d1)

	if v.Bias != model.BiasBullishContinuation {
		t.Fatalf("Expected BULLISH CONTINUATION, got %s", v.Bias)
	}
	if v.Strength < 75 || v.Strength > 95 {
		t.Errorf("Continuation strength must be within [75,95], got %d", v.Strength)
	}
	if v.BullishSetup == nil || v.BearishSetup != nil {
		t.Error("Continuation must emit the bullish setup only")
	}
}

func TestResolve_InsideBarEmitsBothSetups(t *testing.T) {
	d2 := model.PriceBar{Open: 1.00, High: 1.10, Low: 0.90, Close: 1.02}

	tests := []struct {
		name     string
		d1       model.PriceBar
		bias     string
		strength int
	}{
		{
			name:     "bullish inside close",
			d1:       model.PriceBar{Open: 1.01, High: 1.06, Low: 0.98, Close: 1.04},
			bias:     model.BiasBullishBreakout,
			strength: 70,
		},
		{
			name:     "bearish inside close",
			d1:       model.PriceBar{Open: 1.04, High: 1.06, Low: 0.98, Close: 1.01},
			bias:     model.BiasBearishBreakout,
			strength: 70,
		},
		{
			name:     "doji inside close",
			d1:       model.PriceBar{Open: 1.01, High: 1.05, Low: 0.97, Close: 1.007},
			bias:     model.BiasNeutralWait,
			strength: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := resolve(t, d2, tt.d1)

			if v.Bias != tt.bias {
				t.Errorf("Expected bias %s, got %s", tt.bias, v.Bias)
			}
			if v.Strength != tt.strength {
				t.Errorf("Expected strength %d, got %d", tt.strength, v.Strength)
			}
			if v.BullishSetup == nil || v.BearishSetup == nil {
				t.Fatal("Inside bar must emit both setups")
			}
			if v.BullishSetup.SweepLevel != 1.10 {
				t.Errorf("Bull trigger must be the mother-bar high, got %v", v.BullishSetup.SweepLevel)
			}
			if v.BearishSetup.SweepLevel != 0.90 {
				t.Errorf("Bear trigger must be the mother-bar low, got %v", v.BearishSetup.SweepLevel)
			}
		})
	}
}

func TestResolve_ConfluenceRules(t *testing.T) {
	// Higher high, higher low, confirmed breakout, but a bearish close:
	// the continuation rule is skipped and confluence (+3) decides.
	d2 := model.PriceBar{Open: 0.96, High: 1.05, Low: 0.95, Close: 1.04}
	d1 := model.PriceBar{Open: 1.10, High: 1.12, Low: 1.00, Close: 1.06}

	v := resolve(t, d2, d1)

	if v.Bias != model.BiasBullish {
		t.Fatalf("Expected BULLISH, got %s", v.Bias)
	}
	if v.Strength != 75 { // 60 + 5*3
		t.Errorf("Expected strength 75, got %d", v.Strength)
	}
	if v.BullishSetup == nil || v.BearishSetup != nil {
		t.Error("Confluence bullish must emit the bullish setup only")
	}
}

func TestResolve_Neutral(t *testing.T) {
	// Same structure as the confluence case but back-to-back bearish
	// closes pull the score to +2, below the threshold.
	d2 := model.PriceBar{Open: 1.04, High: 1.05, Low: 0.95, Close: 0.96}
	d1 := model.PriceBar{Open: 1.10, High: 1.12, Low: 1.00, Close: 1.06}

	v := resolve(t, d2, d1)

	if v.Bias != model.BiasNeutral {
		t.Fatalf("Expected NEUTRAL, got %s", v.Bias)
	}
	if v.Strength != 50 {
		t.Errorf("Expected strength 50, got %d", v.Strength)
	}
	if v.BullishSetup != nil || v.BearishSetup != nil {
		t.Error("Neutral must emit no setups")
	}
}

func TestRecommend_NeutralReferencesTriggers(t *testing.T) {
	d2 := model.PriceBar{Open: 1.00, High: 1.10, Low: 0.90, Close: 1.02}
	d1 := model.PriceBar{Open: 1.01, High: 1.05, Low: 0.97, Close: 1.007}

	v := resolve(t, d2, d1)
	if v.Bias != model.BiasNeutralWait {
		t.Fatalf("Expected NEUTRAL - WAIT, got %s", v.Bias)
	}

	rec := Recommend(v, d2, d1)
	if !strings.Contains(rec, "1.10000") || !strings.Contains(rec, "0.90000") {
		t.Errorf("Expected both trigger levels in recommendation, got %q", rec)
	}
}

func TestRecommend_DirectionalReferencesSweep(t *testing.T) {
	d2 := model.PriceBar{Open: 1.100, High: 1.112, Low: 1.090, Close: 1.110}
	d1 := model.PriceBar{Open: 1.110, High: 1.118, Low: 1.095, Close: 1.097}

	v := resolve(t, d2, d1)
	rec := Recommend(v, d2, d1)

	if !strings.Contains(rec, "shorts") {
		t.Errorf("Expected a short-side plan, got %q", rec)
	}
	if !strings.Contains(rec, v.BearishSetup.EntryZone) {
		t.Errorf("Expected the entry zone in the plan, got %q", rec)
	}
}
