package bias

import (
	"fmt"

	"daybias/pkg/model"
)

// Recommend renders a one-sentence trading plan for the resolved verdict.
// Directional verdicts reference the setup's sweep level; neutral ones
// reference the two raw breakout trigger levels instead.
func Recommend(v Verdict, d2, d1 model.PriceBar) string {
	switch v.Direction {
	case model.DirectionLong:
		s := v.BullishSetup
		return fmt.Sprintf("Look for longs in the %s zone, invalidation below %s, first target %s.",
			s.EntryZone, model.FormatPrice(s.Invalidation), model.FormatPrice(s.Targets[0].Level))
	case model.DirectionShort:
		s := v.BearishSetup
		return fmt.Sprintf("Look for shorts in the %s zone, invalidation above %s, first target %s.",
			s.EntryZone, model.FormatPrice(s.Invalidation), model.FormatPrice(s.Targets[0].Level))
	default:
		// Inside-bar wait: triggers at the armed setups. Plain neutral:
		// triggers at the prior day's extremes.
		upper, lower := d1.High, d1.Low
		if v.BullishSetup != nil && v.BearishSetup != nil {
			upper = v.BullishSetup.SweepLevel
			lower = v.BearishSetup.SweepLevel
		}
		return fmt.Sprintf("Stay flat until price breaks above %s or below %s.",
			model.FormatPrice(upper), model.FormatPrice(lower))
	}
}
