package technical

import (
	"fmt"
	"math"

	"github.com/Alias1177/Breakout/internal/model"
)

// Default Bollinger parameters.
const (
	DefaultBBPeriod = 20
	DefaultBBStdDev = 3.0
)

// Band is the Bollinger envelope at a single index.
type Band struct {
	Middle float64 `json:"middle"`
	Upper  float64 `json:"upper"`
	Lower  float64 `json:"lower"`
}

// BandPoint is a band that may be undefined (before the first full window).
type BandPoint struct {
	Band
	Defined bool
}

// BollingerCalculator computes Bollinger Bands incrementally over the trailing
// window of closes held in a circular buffer.
type BollingerCalculator struct {
	period int
	stdDev float64
	buf    []float64
	idx    int // next write position, also the oldest value once full
	count  int
}

// NewBollingerCalculator creates a calculator for the given period and deviation multiplier.
func NewBollingerCalculator(period int, stdDev float64) (*BollingerCalculator, error) {
	if err := ValidateBollingerParams(period, stdDev); err != nil {
		return nil, err
	}
	return &BollingerCalculator{
		period: period,
		stdDev: stdDev,
		buf:    make([]float64, period),
	}, nil
}

// ValidateBollingerParams checks period >= 2 and a finite positive multiplier.
func ValidateBollingerParams(period int, stdDev float64) error {
	if period < 2 {
		return fmt.Errorf("bollinger period must be at least 2, got %d", period)
	}
	if !(stdDev > 0) || math.IsInf(stdDev, 0) {
		return fmt.Errorf("bollinger deviation multiplier must be positive and finite, got %g", stdDev)
	}
	return nil
}

// Push feeds the next close and returns the band for the window ending at it.
// The second result is false until period closes have been seen.
func (b *BollingerCalculator) Push(price float64) (Band, bool) {
	b.buf[b.idx] = price
	b.idx = (b.idx + 1) % b.period
	if b.count < b.period {
		b.count++
	}
	if b.count < b.period {
		return Band{}, false
	}

	// Work on offsets from the oldest close so identical closes give an exact
	// mean and zero deviation.
	base := b.buf[b.idx]
	var sum float64
	for j := 0; j < b.period; j++ {
		sum += b.buf[(b.idx+j)%b.period] - base
	}
	offset := sum / float64(b.period)
	middle := base + offset

	var variance float64
	for j := 0; j < b.period; j++ {
		d := b.buf[(b.idx+j)%b.period] - base - offset
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(b.period))

	return Band{
		Middle: middle,
		Upper:  middle + sd*b.stdDev,
		Lower:  middle - sd*b.stdDev,
	}, true
}

// CalculateBollingerBands returns one point per candle; points before the first
// full window are undefined.
func CalculateBollingerBands(series model.Series, period int, stdDev float64) ([]BandPoint, error) {
	calc, err := NewBollingerCalculator(period, stdDev)
	if err != nil {
		return nil, err
	}
	closes := series.Closes()
	points := make([]BandPoint, len(closes))
	for i, c := range closes {
		band, ok := calc.Push(c)
		points[i] = BandPoint{Band: band, Defined: ok}
	}
	return points, nil
}
