package candle

import (
	"errors"
	"fmt"
	"math"

	"daybias/pkg/model"
)

// ErrDegenerateRange reports a zero-range bar reaching the classifier.
// Callers are expected to reject high <= low before classifying, so this
// is a contract violation, not a recoverable condition.
var ErrDegenerateRange = errors.New("degenerate range")

// Body percent thresholds for the shape buckets.
const (
	dojiBodyPct   = 10.0
	strongBodyPct = 70.0
	normalBodyPct = 50.0
	wickBodyRatio = 2.0 // wick > 2x body counts as rejection
)

// Classify derives a CandleProfile from one price bar. Pure function:
// the same bar always yields the same profile.
func Classify(bar model.PriceBar) (model.CandleProfile, error) {
	rng := bar.Range()
	if rng <= 0 {
		return model.CandleProfile{}, fmt.Errorf("%w: high %s low %s",
			ErrDegenerateRange, model.FormatPrice(bar.High), model.FormatPrice(bar.Low))
	}

	body := math.Abs(bar.Close - bar.Open)
	bodyPct := 100 * body / rng
	upperWick := bar.High - math.Max(bar.Open, bar.Close)
	lowerWick := math.Min(bar.Open, bar.Close) - bar.Low

	p := model.CandleProfile{
		Shape:       model.ShapeNeutral,
		BodyPercent: math.Round(bodyPct*10) / 10,
	}

	switch {
	case bodyPct < dojiBodyPct:
		// Doji wins over direction no matter which side the close is on.
		p.Shape = model.ShapeDoji
		p.IsDoji = true
	case bar.Close > bar.Open:
		p.IsBullish = true
		switch {
		case bodyPct > strongBodyPct:
			p.Shape = model.ShapeStrongBullish
			p.StrengthScore = 3
		case bodyPct > normalBodyPct:
			p.Shape = model.ShapeBullish
			p.StrengthScore = 2
		default:
			p.Shape = model.ShapeWeakBullish
			p.StrengthScore = 1
		}
	case bar.Close < bar.Open:
		p.IsBearish = true
		switch {
		case bodyPct > strongBodyPct:
			p.Shape = model.ShapeStrongBearish
			p.StrengthScore = -3
		case bodyPct > normalBodyPct:
			p.Shape = model.ShapeBearish
			p.StrengthScore = -2
		default:
			p.Shape = model.ShapeWeakBearish
			p.StrengthScore = -1
		}
	}
	// close == open with body >= 10% of range cannot happen, so the
	// NEUTRAL default is unreachable for valid bars.

	// With a zero body any positive wick satisfies the rejection test.
	p.HasUpperWickRejection = upperWick > wickBodyRatio*body
	p.HasLowerWickRejection = lowerWick > wickBodyRatio*body

	return p, nil
}
