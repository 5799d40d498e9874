package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func flat(i int, price float64) Candle {
	return Candle{
		OpenTime: base.Add(time.Duration(i) * 5 * time.Minute),
		Open:     price,
		High:     price,
		Low:      price,
		Close:    price,
	}
}

func TestNewSeries_CopiesInput(t *testing.T) {
	candles := []Candle{flat(0, 100), flat(1, 101)}
	s, err := NewSeries(candles)
	require.NoError(t, err)

	candles[0].Close = 1
	assert.Equal(t, 100.0, s.At(0).Close)
	assert.Equal(t, []float64{100, 101}, s.Closes())
	assert.Equal(t, 2, s.Len())

	out := s.Candles()
	out[1].Close = 5
	assert.Equal(t, 101.0, s.At(1).Close)
}

func TestNewSeries_Empty(t *testing.T) {
	s, err := NewSeries(nil)
	require.NoError(t, err)
	assert.Zero(t, s.Len())
}

func TestValidateCandles(t *testing.T) {
	tests := []struct {
		name    string
		candles []Candle
		wantErr bool
	}{
		{name: "valid", candles: []Candle{flat(0, 1), flat(1, 2), flat(2, 3)}},
		{name: "duplicate timestamp", candles: []Candle{flat(0, 1), flat(0, 2)}, wantErr: true},
		{name: "decreasing timestamp", candles: []Candle{flat(1, 1), flat(0, 2)}, wantErr: true},
		{name: "nan close", candles: []Candle{{OpenTime: base, Open: 1, High: 1, Low: 1, Close: math.NaN()}}, wantErr: true},
		{name: "negative low", candles: []Candle{{OpenTime: base, Open: 1, High: 1, Low: -1, Close: 1}}, wantErr: true},
		{name: "high below low", candles: []Candle{{OpenTime: base, Open: 1, High: 1, Low: 2, Close: 1}}, wantErr: true},
		{name: "high below close", candles: []Candle{{OpenTime: base, Open: 1, High: 2, Low: 1, Close: 3}}, wantErr: true},
		{name: "low above open", candles: []Candle{{OpenTime: base, Open: 1, High: 3, Low: 2, Close: 3}}, wantErr: true},
		{name: "zero range", candles: []Candle{flat(0, 0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCandles(tt.candles)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSeries)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCandleBody(t *testing.T) {
	assert.True(t, Candle{Open: 1, Close: 2}.IsBullish())
	assert.True(t, Candle{Open: 2, Close: 1}.IsBearish())

	doji := Candle{Open: 1, Close: 1}
	assert.False(t, doji.IsBullish())
	assert.False(t, doji.IsBearish())
}
