package structure

import (
	"fmt"

	"daybias/pkg/model"
)

// Flags is the closed set of scenario flags the analyzer can raise.
// The set is known at design time, so named fields instead of a map.
type Flags struct {
	ReversalUp       bool
	ReversalDown     bool
	UpperRejection   bool
	LowerRejection   bool
	Indecision       bool
	BreakoutHigh     bool
	FakeBreakoutHigh bool
	BreakoutLow      bool
	FakeBreakoutLow  bool
	InsideBar        bool
	OutsideBar       bool
	Uptrend          bool
	Downtrend        bool
}

// State is the mutable accumulator for one analysis pass. It lives for a
// single engine call and is never shared between calls.
type State struct {
	Confluence int
	Reasoning  []string
	Flags      Flags
	Levels     model.KeyLevels
}

// score adjusts confluence and appends the reason for the adjustment.
func (s *State) score(delta int, format string, args ...any) {
	s.Confluence += delta
	s.note(format, args...)
}

// note appends a reasoning line without touching the score.
func (s *State) note(format string, args ...any) {
	s.Reasoning = append(s.Reasoning, fmt.Sprintf(format, args...))
}

// Analyze compares the two classified candles and their source bars,
// raising scenario flags and accumulating the signed confluence score.
//
// Every check runs unconditionally in source order. The order only
// determines the reasoning log; the final flag set and score are the
// same regardless. Overlapping patterns (outside bar + breakout + trend)
// all fire and all contribute their deltas.
func Analyze(dbpd, pd model.CandleProfile, d2, d1 model.PriceBar) *State {
	s := &State{}

	// Candle-pattern checks.
	if dbpd.IsBullish && pd.IsBullish {
		s.score(2, "Back-to-back bullish closes (+2)")
	}
	if dbpd.IsBearish && pd.IsBearish {
		s.score(-2, "Back-to-back bearish closes (-2)")
	}
	if dbpd.IsBearish && pd.IsBullish {
		s.Flags.ReversalUp = true
		s.score(1, "Bearish-to-bullish reversal candle (+1)")
	}
	if dbpd.IsBullish && pd.IsBearish {
		s.Flags.ReversalDown = true
		s.score(-1, "Bullish-to-bearish reversal candle (-1)")
	}
	if pd.HasUpperWickRejection {
		s.Flags.UpperRejection = true
		s.score(-1, "Prior day rejected higher prices with a long upper wick (-1)")
	}
	if pd.HasLowerWickRejection {
		s.Flags.LowerRejection = true
		s.score(1, "Prior day defended lower prices with a long lower wick (+1)")
	}
	if pd.IsDoji {
		s.Flags.Indecision = true
		s.note("Prior day closed as a doji - indecision")
	}
	if pd.StrengthScore >= 2 || pd.StrengthScore <= -2 {
		s.note("Strong momentum candle on the prior day (strength %+d)", pd.StrengthScore)
	}

	// Structural checks against the D-2 extremes.
	if d1.High > d2.High {
		s.Flags.BreakoutHigh = true
		s.score(1, "Prior day traded above the previous high %s (+1)", model.FormatPrice(d2.High))
		if d1.Close > d2.High {
			s.score(1, "Close above %s confirms the breakout (+1)", model.FormatPrice(d2.High))
		} else {
			// The +1 breakout delta stands; the fake flag is what the
			// resolver keys on.
			s.Flags.FakeBreakoutHigh = true
			s.note("Swept above %s but closed back inside - possible trap", model.FormatPrice(d2.High))
		}
	}
	if d1.Low < d2.Low {
		s.Flags.BreakoutLow = true
		s.score(-1, "Prior day traded below the previous low %s (-1)", model.FormatPrice(d2.Low))
		if d1.Close < d2.Low {
			s.score(-1, "Close below %s confirms the breakdown (-1)", model.FormatPrice(d2.Low))
		} else {
			s.Flags.FakeBreakoutLow = true
			s.note("Swept below %s but closed back inside - possible trap", model.FormatPrice(d2.Low))
		}
	}

	if d1.High <= d2.High && d1.Low >= d2.Low {
		s.Flags.InsideBar = true
		s.note("Inside bar - prior day held within the previous range")
	}
	if d1.High > d2.High && d1.Low < d2.Low {
		s.Flags.OutsideBar = true
		if d1.Close > d1.Open {
			s.score(2, "Outside bar engulfed the previous range and closed bullish (+2)")
		} else {
			s.score(-2, "Outside bar engulfed the previous range and closed bearish (-2)")
		}
	}

	if d1.High > d2.High && d1.Low > d2.Low {
		s.Flags.Uptrend = true
		s.score(2, "Higher high and higher low - uptrend structure (+2)")
	}
	if d1.High < d2.High && d1.Low < d2.Low {
		s.Flags.Downtrend = true
		s.score(-2, "Lower high and lower low - downtrend structure (-2)")
	}

	// Where the prior day closed within its own range.
	position := 100 * (d1.Close - d1.Low) / d1.Range()
	switch {
	case position > 75:
		s.score(1, "Close in the top quarter of the prior day's range (+1)")
	case position < 25:
		s.score(-1, "Close in the bottom quarter of the prior day's range (-1)")
	default:
		s.note("Close mid-range - no positioning edge")
	}

	s.Levels = model.KeyLevels{
		DBPDOpen:  d2.Open,
		DBPDHigh:  d2.High,
		DBPDLow:   d2.Low,
		DBPDClose: d2.Close,
		DBPDMid:   d2.Mid(),
		PDOpen:    d1.Open,
		PDHigh:    d1.High,
		PDLow:     d1.Low,
		PDClose:   d1.Close,
		PDMid:     d1.Mid(),
	}

	return s
}
