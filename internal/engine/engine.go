package engine

import (
	"errors"
	"fmt"
	"math"

	"daybias/internal/bias"
	"daybias/internal/candle"
	"daybias/internal/structure"
	"daybias/pkg/model"
)

// ErrInvalidInput reports a bar that violates the input contract: a
// non-finite field, high <= low, or open/close outside [low, high].
var ErrInvalidInput = errors.New("invalid input")

// ClassifyBias runs the full pipeline on two consecutive daily bars:
// classify both candles, analyze the structure between them, resolve the
// bias and render the recommendation. Pure function of its inputs; safe
// to call from any number of goroutines.
func ClassifyBias(d2, d1 model.PriceBar, symbol string) (*model.ForecastResult, error) {
	if err := validateBar(d2, "D-2"); err != nil {
		return nil, err
	}
	if err := validateBar(d1, "D-1"); err != nil {
		return nil, err
	}

	dbpd, err := candle.Classify(d2)
	if err != nil {
		return nil, fmt.Errorf("classify D-2: %w", err)
	}
	pd, err := candle.Classify(d1)
	if err != nil {
		return nil, fmt.Errorf("classify D-1: %w", err)
	}

	state := structure.Analyze(dbpd, pd, d2, d1)
	verdict := bias.Resolve(state, dbpd, pd, d2, d1)

	return &model.ForecastResult{
		Symbol:         symbol,
		Bias:           verdict.Bias,
		Direction:      verdict.Direction,
		Strength:       verdict.Strength,
		Headline:       verdict.Headline,
		Reasoning:      state.Reasoning,
		BullishSetup:   verdict.BullishSetup,
		BearishSetup:   verdict.BearishSetup,
		Recommendation: bias.Recommend(verdict, d2, d1),
		CandleAnalysis: model.CandleAnalysis{DBPD: dbpd, PD: pd},
		KeyLevels:      state.Levels,
		Confluence:     state.Confluence,
	}, nil
}

// validateBar enforces the input contract before any analysis runs. The
// error names the bar and the offending field so the caller can fix the
// input.
func validateBar(bar model.PriceBar, label string) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"open", bar.Open},
		{"high", bar.High},
		{"low", bar.Low},
		{"close", bar.Close},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s bar: %s is not a finite number", ErrInvalidInput, label, f.name)
		}
	}

	if bar.High <= bar.Low {
		return fmt.Errorf("%w: %s bar: high %s must be above low %s",
			ErrInvalidInput, label, model.FormatPrice(bar.High), model.FormatPrice(bar.Low))
	}
	if bar.Open < bar.Low || bar.Open > bar.High {
		return fmt.Errorf("%w: %s bar: open %s outside range [%s, %s]",
			ErrInvalidInput, label, model.FormatPrice(bar.Open),
			model.FormatPrice(bar.Low), model.FormatPrice(bar.High))
	}
	if bar.Close < bar.Low || bar.Close > bar.High {
		return fmt.Errorf("%w: %s bar: close %s outside range [%s, %s]",
			ErrInvalidInput, label, model.FormatPrice(bar.Close),
			model.FormatPrice(bar.Low), model.FormatPrice(bar.High))
	}
	return nil
}
