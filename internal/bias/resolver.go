package bias

import (
	"fmt"

	"daybias/internal/structure"
	"daybias/pkg/model"
)

// Verdict is the resolver's output: one bias label, a direction, a
// strength score and up to two trade setups.
type Verdict struct {
	Bias         string
	Direction    string
	Strength     int
	Headline     string
	BullishSetup *model.TradeSetup
	BearishSetup *model.TradeSetup
}

// input bundles everything a rule may consult.
type input struct {
	state  *structure.State
	dbpd   model.CandleProfile
	pd     model.CandleProfile
	d2, d1 model.PriceBar
}

// rule is one guard/producer pair in the priority table.
type rule struct {
	match   func(in input) bool
	produce func(in input) Verdict
}

// rules is the priority table, evaluated top to bottom. The first match
// wins and later rules are never consulted.
var rules = []rule{
	{
		// Fake breakout above the prior high: liquidity sweep, fade it.
		match: func(in input) bool { return in.state.Flags.FakeBreakoutHigh },
		produce: func(in input) Verdict {
			return Verdict{
				Bias:      model.BiasBearishReversal,
				Direction: model.DirectionShort,
				Strength:  85,
				Headline: fmt.Sprintf("Swept liquidity above %s and closed back inside - bearish reversal expected",
					model.FormatPrice(in.d1.High)),
				BearishSetup: bearishSetup(in.d1.High, maxLevel(in.d1.High, in.d2.High), in.d1.Range()),
			}
		},
	},
	{
		match: func(in input) bool { return in.state.Flags.FakeBreakoutLow },
		produce: func(in input) Verdict {
			return Verdict{
				Bias:      model.BiasBullishReversal,
				Direction: model.DirectionLong,
				Strength:  85,
				Headline: fmt.Sprintf("Swept liquidity below %s and closed back inside - bullish reversal expected",
					model.FormatPrice(in.d1.Low)),
				BullishSetup: bullishSetup(in.d1.Low, minLevel(in.d1.Low, in.d2.Low), in.d1.Range()),
			}
		},
	},
	{
		match: func(in input) bool { return in.state.Flags.Uptrend && in.pd.IsBullish },
		produce: func(in input) Verdict {
			return Verdict{
				Bias:         model.BiasBullishContinuation,
				Direction:    model.DirectionLong,
				Strength:     capStrength(75+3*in.state.Confluence, 95),
				Headline:     "Uptrend structure with a bullish close - continuation higher favored",
				BullishSetup: bullishSetup(in.d1.Low, minLevel(in.d1.Low, in.d2.Low), in.d1.Range()),
			}
		},
	},
	{
		match: func(in input) bool { return in.state.Flags.Downtrend && in.pd.IsBearish },
		produce: func(in input) Verdict {
			return Verdict{
				Bias:         model.BiasBearishContinuation,
				Direction:    model.DirectionShort,
				Strength:     capStrength(75+3*abs(in.state.Confluence), 95),
				Headline:     "Downtrend structure with a bearish close - continuation lower favored",
				BearishSetup: bearishSetup(in.d1.High, maxLevel(in.d1.High, in.d2.High), in.d1.Range()),
			}
		},
	},
	{
		// Inside bar: both breakout setups are armed regardless of lean.
		match:   func(in input) bool { return in.state.Flags.InsideBar },
		produce: produceInsideBar,
	},
	{
		match: func(in input) bool { return in.state.Confluence >= 3 },
		produce: func(in input) Verdict {
			return Verdict{
				Bias:      model.BiasBullish,
				Direction: model.DirectionLong,
				Strength:  capStrength(60+5*in.state.Confluence, 95),
				Headline: fmt.Sprintf("Bullish confluence (%+d) - upside bias", in.state.Confluence),
				BullishSetup: bullishSetup(in.d1.Low, minLevel(in.d1.Low, in.d2.Low), in.d1.Range()),
			}
		},
	},
	{
		match: func(in input) bool { return in.state.Confluence <= -3 },
		produce: func(in input) Verdict {
			return Verdict{
				Bias:      model.BiasBearish,
				Direction: model.DirectionShort,
				Strength:  capStrength(60+5*abs(in.state.Confluence), 95),
				Headline: fmt.Sprintf("Bearish confluence (%+d) - downside bias", in.state.Confluence),
				BearishSetup: bearishSetup(in.d1.High, maxLevel(in.d1.High, in.d2.High), in.d1.Range()),
			}
		},
	},
	{
		match: func(in input) bool { return true },
		produce: func(in input) Verdict {
			return Verdict{
				Bias:      model.BiasNeutral,
				Direction: model.DirectionNeutral,
				Strength:  50,
				Headline:  "No directional edge - neutral",
			}
		},
	},
}

// produceInsideBar arms breakout setups on both sides of the mother bar.
// The bias label follows the prior day's close direction.
func produceInsideBar(in input) Verdict {
	v := Verdict{
		// Triggers sit at the mother-bar (D-2) extremes.
		BullishSetup: bullishSetup(in.d2.High, in.d1.Low, in.d2.Range()),
		BearishSetup: bearishSetup(in.d2.Low, in.d1.High, in.d2.Range()),
	}
	switch {
	case in.pd.IsBullish:
		v.Bias = model.BiasBullishBreakout
		v.Direction = model.DirectionLong
		v.Strength = 70
		v.Headline = fmt.Sprintf("Inside bar after a bullish close - break above %s favored",
			model.FormatPrice(in.d2.High))
	case in.pd.IsBearish:
		v.Bias = model.BiasBearishBreakout
		v.Direction = model.DirectionShort
		v.Strength = 70
		v.Headline = fmt.Sprintf("Inside bar after a bearish close - break below %s favored",
			model.FormatPrice(in.d2.Low))
	default:
		v.Bias = model.BiasNeutralWait
		v.Direction = model.DirectionNeutral
		v.Strength = 50
		v.Headline = "Inside bar with no directional close - wait for the range to break"
	}
	return v
}

// Resolve walks the priority table and returns the first matching verdict.
func Resolve(state *structure.State, dbpd, pd model.CandleProfile, d2, d1 model.PriceBar) Verdict {
	in := input{state: state, dbpd: dbpd, pd: pd, d2: d2, d1: d1}
	for _, r := range rules {
		if r.match(in) {
			return r.produce(in)
		}
	}
	// The last rule always matches.
	panic("bias: priority table has no terminal rule")
}

func capStrength(v, max int) int {
	if v > max {
		v = max
	}
	if v < 0 {
		v = 0
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func maxLevel(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minLevel(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
