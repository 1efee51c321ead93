package bias

import (
	"fmt"
	"math"

	"daybias/pkg/model"
)

// Setup geometry as fractions of the reference bar range.
const (
	entryBandFrac    = 0.05  // entry zone half-width around the sweep level
	invalidationFrac = 0.15  // stop distance beyond the opposing level
	extensionFrac    = 0.618 // final target extension beyond the far extreme
)

// bullishSetup builds the long-side parameters. sweep is the level being
// defended (or the breakout trigger), opposing the structure level the
// stop sits beyond, rng the reference bar range.
func bullishSetup(sweep, opposing, rng float64) *model.TradeSetup {
	band := entryBandFrac * rng
	return &model.TradeSetup{
		SweepLevel: round5(sweep),
		EntryZone: fmt.Sprintf("%s - %s",
			model.FormatPrice(sweep-band), model.FormatPrice(sweep+band)),
		Invalidation: round5(opposing - invalidationFrac*rng),
		Targets: []model.Target{
			{Level: round5(sweep + 0.5*rng), Label: "Half range"},
			{Level: round5(sweep + rng), Label: "Full range"},
			{Level: round5(sweep + (1+extensionFrac)*rng), Label: "0.618 extension"},
		},
	}
}

// bearishSetup mirrors bullishSetup on the short side.
func bearishSetup(sweep, opposing, rng float64) *model.TradeSetup {
	band := entryBandFrac * rng
	return &model.TradeSetup{
		SweepLevel: round5(sweep),
		EntryZone: fmt.Sprintf("%s - %s",
			model.FormatPrice(sweep-band), model.FormatPrice(sweep+band)),
		Invalidation: round5(opposing + invalidationFrac*rng),
		Targets: []model.Target{
			{Level: round5(sweep - 0.5*rng), Label: "Half range"},
			{Level: round5(sweep - rng), Label: "Full range"},
			{Level: round5(sweep - (1+extensionFrac)*rng), Label: "0.618 extension"},
		},
	}
}

// round5 fixes a price to 5 decimal places so JSON output is stable.
func round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}
