package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidSeries is returned when candles violate the ordering or price rules
// the analysis relies on.
var ErrInvalidSeries = errors.New("invalid candle series")

// Series is a chronologically ordered, read-only sequence of candles.
// The zero value is an empty series.
type Series struct {
	candles []Candle
}

// NewSeries validates the candles and returns a series holding its own copy of them.
func NewSeries(candles []Candle) (Series, error) {
	if err := ValidateCandles(candles); err != nil {
		return Series{}, err
	}
	owned := make([]Candle, len(candles))
	copy(owned, candles)
	return Series{candles: owned}, nil
}

// Len returns the number of candles.
func (s Series) Len() int { return len(s.candles) }

// At returns the candle at index i.
func (s Series) At(i int) Candle { return s.candles[i] }

// Candles returns a copy of the underlying candles.
func (s Series) Candles() []Candle {
	out := make([]Candle, len(s.candles))
	copy(out, s.candles)
	return out
}

// Closes extracts the closing prices in series order.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s.candles))
	for i, c := range s.candles {
		closes[i] = c.Close
	}
	return closes
}

// ValidateCandles checks that open times strictly increase and that every candle
// carries finite, non-negative, internally consistent prices.
func ValidateCandles(candles []Candle) error {
	for i, c := range candles {
		if err := validateCandle(c); err != nil {
			return fmt.Errorf("%w: candle %d at %s: %v", ErrInvalidSeries, i, c.OpenTime.UTC().Format(time.RFC3339), err)
		}
		if i > 0 && !c.OpenTime.After(candles[i-1].OpenTime) {
			return fmt.Errorf("%w: candle %d: open time %s does not follow %s", ErrInvalidSeries, i,
				c.OpenTime.UTC().Format(time.RFC3339), candles[i-1].OpenTime.UTC().Format(time.RFC3339))
		}
	}
	return nil
}

func validateCandle(c Candle) error {
	prices := []struct {
		name  string
		value float64
	}{
		{"open", c.Open},
		{"high", c.High},
		{"low", c.Low},
		{"close", c.Close},
	}
	for _, p := range prices {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) {
			return fmt.Errorf("%s is not finite", p.name)
		}
		if p.value < 0 {
			return fmt.Errorf("%s is negative (%g)", p.name, p.value)
		}
	}
	if c.High < c.Low {
		return fmt.Errorf("high %g below low %g", c.High, c.Low)
	}
	if c.High < math.Max(c.Open, c.Close) {
		return fmt.Errorf("high %g below body", c.High)
	}
	if c.Low > math.Min(c.Open, c.Close) {
		return fmt.Errorf("low %g above body", c.Low)
	}
	return nil
}
