package model

import (
	"strconv"
	"time"
)

// Shape classifies a candle body into one of the directional buckets.
type Shape string

const (
	ShapeNeutral       Shape = "NEUTRAL" // pre-classification default, never emitted
	ShapeDoji          Shape = "DOJI"
	ShapeStrongBullish Shape = "STRONG_BULLISH"
	ShapeBullish       Shape = "BULLISH"
	ShapeWeakBullish   Shape = "WEAK_BULLISH"
	ShapeStrongBearish Shape = "STRONG_BEARISH"
	ShapeBearish       Shape = "BEARISH"
	ShapeWeakBearish   Shape = "WEAK_BEARISH"
)

// Bias labels emitted by the resolver.
const (
	BiasBearishReversal     = "BEARISH REVERSAL"
	BiasBullishReversal     = "BULLISH REVERSAL"
	BiasBullishContinuation = "BULLISH CONTINUATION"
	BiasBearishContinuation = "BEARISH CONTINUATION"
	BiasBullishBreakout     = "BULLISH BREAKOUT"
	BiasBearishBreakout     = "BEARISH BREAKOUT"
	BiasNeutralWait         = "NEUTRAL - WAIT"
	BiasBullish             = "BULLISH"
	BiasBearish             = "BEARISH"
	BiasNeutral             = "NEUTRAL"
)

// Direction of the resolved bias.
const (
	DirectionLong    = "LONG"
	DirectionShort   = "SHORT"
	DirectionNeutral = "NEUTRAL"
)

// PriceBar is one daily OHLC bar. Value type, never mutated.
type PriceBar struct {
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// Range returns the full high-low span of the bar.
func (b PriceBar) Range() float64 {
	return b.High - b.Low
}

// Mid returns the midpoint of the bar's range.
func (b PriceBar) Mid() float64 {
	return (b.High + b.Low) / 2
}

// CandleProfile describes the shape of a single classified candle.
type CandleProfile struct {
	Shape                 Shape   `json:"shape"`
	BodyPercent           float64 `json:"body_percent"`   // body as % of range, 1 decimal
	StrengthScore         int     `json:"strength_score"` // -3..+3
	IsBullish             bool    `json:"is_bullish"`
	IsBearish             bool    `json:"is_bearish"`
	IsDoji                bool    `json:"is_doji"`
	HasUpperWickRejection bool    `json:"has_upper_wick_rejection"`
	HasLowerWickRejection bool    `json:"has_lower_wick_rejection"`
}

// Target is one named price projection in a trade setup.
type Target struct {
	Level float64 `json:"level"`
	Label string  `json:"label"`
}

// TradeSetup holds the directional trade parameters for a resolved bias.
type TradeSetup struct {
	SweepLevel   float64  `json:"sweep_level"`
	EntryZone    string   `json:"entry_zone"` // rendered price band, e.g. "1.11685 - 1.11915"
	Invalidation float64  `json:"invalidation"`
	Targets      []Target `json:"targets"`
}

// KeyLevels collects the named price levels of both comparator bars.
// dbpd is the day before the prior day (D-2), pd the prior day (D-1).
type KeyLevels struct {
	DBPDOpen  float64 `json:"dbpd_open"`
	DBPDHigh  float64 `json:"dbpd_high"`
	DBPDLow   float64 `json:"dbpd_low"`
	DBPDClose float64 `json:"dbpd_close"`
	DBPDMid   float64 `json:"dbpd_mid"`
	PDOpen    float64 `json:"pd_open"`
	PDHigh    float64 `json:"pd_high"`
	PDLow     float64 `json:"pd_low"`
	PDClose   float64 `json:"pd_close"`
	PDMid     float64 `json:"pd_mid"`
}

// CandleAnalysis pairs the two classified comparator candles.
type CandleAnalysis struct {
	DBPD CandleProfile `json:"dbpd"`
	PD   CandleProfile `json:"pd"`
}

// ForecastResult is the immutable output of one bias classification.
type ForecastResult struct {
	Symbol         string         `json:"symbol"`
	Bias           string         `json:"bias"`
	Direction      string         `json:"direction"`
	Strength       int            `json:"strength"` // 0-100
	Headline       string         `json:"headline"`
	Reasoning      []string       `json:"reasoning"`
	BullishSetup   *TradeSetup    `json:"bullish_setup,omitempty"`
	BearishSetup   *TradeSetup    `json:"bearish_setup,omitempty"`
	Recommendation string         `json:"recommendation"`
	CandleAnalysis CandleAnalysis `json:"candle_analysis"`
	KeyLevels      KeyLevels      `json:"key_levels"`
	Confluence     int            `json:"confluence"`
}

// ScanResult represents the output of a batch scan over bar-pair datasets.
type ScanResult struct {
	TotalScanned int              `json:"total_scanned"`
	Forecasts    []ForecastResult `json:"forecasts"`
	Failed       int              `json:"failed"`
	ScanTime     time.Duration    `json:"scan_time"`
}

// FormatPrice renders a price fixed-point to 5 decimal places.
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 5, 64)
}
