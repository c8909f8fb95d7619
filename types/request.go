package types

import (
	"strings"
	"time"
)

// Bar is one OHLCV candle.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// SignalRequest is the core's input. It is caller-owned and read-only
// inside the core.
type SignalRequest struct {
	Pair       string
	Timeframe  Timeframe
	AsOf       time.Time
	Bars       []Bar
	Indicators map[string]float64

	// RequireAllProviders forces should_trade to require participation
	// from every provider enabled at the start of this request
	// (spec.md §4.4 step 8).
	RequireAllProviders bool
}

// NormalizedPair returns the pair identifier upper-cased, the
// case-normalization spec.md §3 requires.
func (r *SignalRequest) NormalizedPair() string {
	return strings.ToUpper(strings.TrimSpace(r.Pair))
}

// Validate checks the structural invariants of spec.md §3: timeframe
// membership, bar count bounds, strictly increasing contiguous
// timestamps. It never mutates the request.
func (r *SignalRequest) Validate(lookbackMin, lookbackMax int) *Error {
	if !r.Timeframe.Valid() {
		return NewError(ErrValidationBadTimeframe, "unknown timeframe: "+string(r.Timeframe))
	}
	if len(r.Bars) == 0 {
		return NewError(ErrValidationEmptyBars, "bars must not be empty")
	}
	if lookbackMin <= 0 {
		lookbackMin = 50
	}
	if lookbackMax <= 0 {
		lookbackMax = 500
	}
	if len(r.Bars) < lookbackMin || len(r.Bars) > lookbackMax {
		return NewError(ErrValidationBarCount, "bar count out of range")
	}
	expected, _ := r.Timeframe.Duration()
	for i := 1; i < len(r.Bars); i++ {
		gap := r.Bars[i].Timestamp.Sub(r.Bars[i-1].Timestamp)
		if gap <= 0 {
			return NewError(ErrValidationBarOrder, "bars must be strictly increasing in time")
		}
		if expected > 0 && int64(gap.Seconds()) != expected {
			return NewError(ErrValidationBarOrder, "bars must be contiguous for the declared timeframe")
		}
	}
	return nil
}
