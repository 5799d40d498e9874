package breakout

import (
	"math"
	"sort"
	"time"
)

// DirectionMetrics describes the breakouts of one direction.
type DirectionMetrics struct {
	Events    int
	Evaluated int
	Hits      int // outcomes at or above the take-profit threshold

	HitRate                float64 // percent of evaluated outcomes
	MeanBandDistancePct    float64
	MeanDistanceToMinPct   float64 // absolute values
	StdDevDistanceToMinPct float64
}

// MonthlyStats counts breakouts by calendar month.
type MonthlyStats struct {
	Month     string // 2006-01
	Breakouts int
	Hits      int
	Misses    int
}

// Metrics breaks a report down by direction and month.
type Metrics struct {
	Bullish DirectionMetrics
	Bearish DirectionMetrics
	Monthly []MonthlyStats
}

// CalculateMetrics computes per-direction and monthly statistics for rep.
// Months are taken in loc, UTC when nil.
func CalculateMetrics(rep *Report, loc *time.Location) *Metrics {
	if loc == nil {
		loc = time.UTC
	}
	m := &Metrics{}
	if rep == nil {
		return m
	}

	bandDist := map[Direction][]float64{}
	for _, ev := range rep.Events {
		dm := m.direction(ev.Direction)
		if dm == nil {
			continue
		}
		dm.Events++
		if ev.DistanceErr == nil {
			bandDist[ev.Direction] = append(bandDist[ev.Direction], ev.BandDistancePct)
		}
	}

	minDist := map[Direction][]float64{}
	monthly := map[string]*MonthlyStats{}
	for _, ev := range rep.Events {
		month := ev.OpenTime.In(loc).Format("2006-01")
		if monthly[month] == nil {
			monthly[month] = &MonthlyStats{Month: month}
		}
		monthly[month].Breakouts++
	}
	for _, o := range rep.Outcomes {
		dm := m.direction(o.Event.Direction)
		if dm == nil {
			continue
		}
		dm.Evaluated++
		ms := monthly[o.Event.OpenTime.In(loc).Format("2006-01")]
		if o.Bucket == AtOrAboveThreshold {
			dm.Hits++
			ms.Hits++
		} else {
			ms.Misses++
		}
		if o.DistanceToMinErr == nil {
			minDist[o.Event.Direction] = append(minDist[o.Event.Direction], math.Abs(o.DistanceToMinPct))
		}
	}

	for _, d := range []Direction{Bullish, Bearish} {
		dm := m.direction(d)
		if dm.Evaluated > 0 {
			dm.HitRate = float64(dm.Hits) / float64(dm.Evaluated) * 100
		}
		dm.MeanBandDistancePct = mean(bandDist[d])
		dm.MeanDistanceToMinPct = mean(minDist[d])
		dm.StdDevDistanceToMinPct = stdDev(minDist[d], dm.MeanDistanceToMinPct)
	}

	for _, ms := range monthly {
		m.Monthly = append(m.Monthly, *ms)
	}
	sort.Slice(m.Monthly, func(i, j int) bool { return m.Monthly[i].Month < m.Monthly[j].Month })
	return m
}

func (m *Metrics) direction(d Direction) *DirectionMetrics {
	switch d {
	case Bullish:
		return &m.Bullish
	case Bearish:
		return &m.Bearish
	}
	return nil
}

// Helper functions
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// stdDev is the sample standard deviation.
func stdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}

	var sumSquaredDiff float64
	for _, v := range values {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}

	return math.Sqrt(sumSquaredDiff / float64(len(values)-1))
}
