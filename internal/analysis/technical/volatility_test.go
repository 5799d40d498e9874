package technical

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/Breakout/internal/model"
)

func seriesFromCloses(t *testing.T, closes ...float64) model.Series {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]model.Candle, len(closes))
	for i, c := range closes {
		candles[i] = model.Candle{OpenTime: start.Add(time.Duration(i) * time.Hour), Open: c, High: c, Low: c, Close: c}
	}
	s, err := model.NewSeries(candles)
	require.NoError(t, err)
	return s
}

func TestBollingerCalculator_HandComputed(t *testing.T) {
	// closes 1..5: mean 3, population variance (4+1+0+1+4)/5 = 2
	calc, err := NewBollingerCalculator(5, 2)
	require.NoError(t, err)

	for _, c := range []float64{1, 2, 3, 4} {
		_, ok := calc.Push(c)
		assert.False(t, ok)
	}
	band, ok := calc.Push(5)
	require.True(t, ok)
	assert.InDelta(t, 3.0, band.Middle, 1e-12)
	assert.InDelta(t, 3+2*math.Sqrt2, band.Upper, 1e-12)
	assert.InDelta(t, 3-2*math.Sqrt2, band.Lower, 1e-12)

	// window slides to 2..6: mean 4, same spread
	band, ok = calc.Push(6)
	require.True(t, ok)
	assert.InDelta(t, 4.0, band.Middle, 1e-12)
	assert.InDelta(t, 4+2*math.Sqrt2, band.Upper, 1e-12)
}

func TestBollingerCalculator_IdenticalClosesCollapse(t *testing.T) {
	for _, price := range []float64{100, 0.1, 3.3, 67123.45} {
		calc, err := NewBollingerCalculator(DefaultBBPeriod, DefaultBBStdDev)
		require.NoError(t, err)

		// a few distinct closes first, then a window of identical ones
		calc.Push(price * 2)
		calc.Push(price / 3)
		var band Band
		var ok bool
		for i := 0; i < DefaultBBPeriod; i++ {
			band, ok = calc.Push(price)
		}
		require.True(t, ok)
		assert.Equal(t, price, band.Middle, "close %v", price)
		assert.Equal(t, price, band.Upper, "close %v", price)
		assert.Equal(t, price, band.Lower, "close %v", price)
	}
}

func TestCalculateBollingerBands_UndefinedLeadingWindow(t *testing.T) {
	s := seriesFromCloses(t, 10, 11, 12, 13, 14, 15)
	points, err := CalculateBollingerBands(s, 4, 3)
	require.NoError(t, err)
	require.Len(t, points, 6)

	for i := 0; i < 3; i++ {
		assert.False(t, points[i].Defined, "index %d", i)
		assert.Equal(t, Band{}, points[i].Band)
	}
	for i := 3; i < 6; i++ {
		assert.True(t, points[i].Defined, "index %d", i)
	}
	assert.InDelta(t, 11.5, points[3].Middle, 1e-12)
}

func TestCalculateBollingerBands_NoLookAhead(t *testing.T) {
	a := seriesFromCloses(t, 10, 11, 12, 13, 14)
	b := seriesFromCloses(t, 10, 11, 12, 13, 14, 500, 1)

	pa, err := CalculateBollingerBands(a, 3, 2)
	require.NoError(t, err)
	pb, err := CalculateBollingerBands(b, 3, 2)
	require.NoError(t, err)

	assert.Equal(t, pa, pb[:len(pa)])
}

func TestValidateBollingerParams(t *testing.T) {
	assert.Error(t, ValidateBollingerParams(1, 3))
	assert.Error(t, ValidateBollingerParams(20, 0))
	assert.Error(t, ValidateBollingerParams(20, -1))
	assert.Error(t, ValidateBollingerParams(20, math.NaN()))
	assert.Error(t, ValidateBollingerParams(20, math.Inf(1)))
	assert.NoError(t, ValidateBollingerParams(2, 0.5))

	_, err := NewBollingerCalculator(0, 3)
	assert.Error(t, err)
}
