package breakout

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateMetrics(t *testing.T) {
	may := time.Date(2024, 5, 31, 23, 0, 0, 0, time.UTC)
	june := time.Date(2024, 6, 1, 2, 0, 0, 0, time.UTC)

	bull1 := Event{Index: 20, OpenTime: may, Direction: Bullish, BandDistancePct: 2}
	bull2 := Event{Index: 25, OpenTime: june, Direction: Bullish, BandDistancePct: 4}
	bear := Event{Index: 30, OpenTime: june.Add(time.Hour), Direction: Bearish, BandDistancePct: -1}
	last := Event{Index: 40, OpenTime: june.Add(2 * time.Hour), Direction: Bearish, DistanceErr: ErrDivisionUndefined}

	rep := &Report{
		Events: []Event{bull1, bull2, bear, last},
		Outcomes: []Outcome{
			{Event: bull1, DistanceToMinPct: -1.0, Bucket: AtOrAboveThreshold},
			{Event: bull2, DistanceToMinPct: 0.2, Bucket: BelowThreshold},
			{Event: bear, DistanceToMinErr: ErrDivisionUndefined, Bucket: BelowThreshold},
		},
	}

	m := CalculateMetrics(rep, nil)
	assert.Equal(t, 2, m.Bullish.Events)
	assert.Equal(t, 2, m.Bullish.Evaluated)
	assert.Equal(t, 1, m.Bullish.Hits)
	assert.InDelta(t, 50.0, m.Bullish.HitRate, 1e-12)
	assert.InDelta(t, 3.0, m.Bullish.MeanBandDistancePct, 1e-12)
	assert.InDelta(t, 0.6, m.Bullish.MeanDistanceToMinPct, 1e-12)
	assert.InDelta(t, math.Sqrt(0.32), m.Bullish.StdDevDistanceToMinPct, 1e-12)

	assert.Equal(t, 2, m.Bearish.Events)
	assert.Equal(t, 1, m.Bearish.Evaluated)
	assert.Zero(t, m.Bearish.HitRate)
	assert.InDelta(t, -1.0, m.Bearish.MeanBandDistancePct, 1e-12)
	assert.Zero(t, m.Bearish.MeanDistanceToMinPct)

	require.Len(t, m.Monthly, 2)
	assert.Equal(t, MonthlyStats{Month: "2024-05", Breakouts: 1, Hits: 1}, m.Monthly[0])
	assert.Equal(t, MonthlyStats{Month: "2024-06", Breakouts: 3, Misses: 2}, m.Monthly[1])

	// early June in UTC is still May in Bogota
	bogota := time.FixedZone("COT", -5*3600)
	byLocal := CalculateMetrics(rep, bogota).Monthly
	require.Len(t, byLocal, 1)
	assert.Equal(t, MonthlyStats{Month: "2024-05", Breakouts: 4, Hits: 1, Misses: 2}, byLocal[0])
}

func TestCalculateMetrics_Empty(t *testing.T) {
	m := CalculateMetrics(nil, nil)
	assert.Equal(t, &Metrics{}, m)

	rep, err := AnalyzeCandles(flatCandles(30, 10), DefaultParams())
	require.NoError(t, err)
	assert.Empty(t, CalculateMetrics(rep, nil).Monthly)
}
