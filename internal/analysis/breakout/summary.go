package breakout

import "math"

// Summary aggregates breakouts and their outcomes. The zero value is the identity
// for Combine.
type Summary struct {
	TotalBreakouts      int     `json:"total_breakouts"`
	MaxUpperDistancePct float64 `json:"max_upper_distance_pct"`
	MinLowerDistancePct float64 `json:"min_lower_distance_pct"`
	AboveThreshold      int     `json:"above_threshold"`
	BelowThreshold      int     `json:"below_threshold"`
}

// AddEvent folds one breakout into the summary. Events with an undefined band
// distance are counted but do not move the extremes.
func (s Summary) AddEvent(ev Event) Summary {
	s.TotalBreakouts++
	if ev.DistanceErr != nil {
		return s
	}
	switch ev.Direction {
	case Bullish:
		s.MaxUpperDistancePct = math.Max(s.MaxUpperDistancePct, ev.BandDistancePct)
	case Bearish:
		s.MinLowerDistancePct = math.Min(s.MinLowerDistancePct, ev.BandDistancePct)
	}
	return s
}

// AddOutcome folds one outcome's threshold bucket into the summary.
func (s Summary) AddOutcome(o Outcome) Summary {
	if o.Bucket == AtOrAboveThreshold {
		s.AboveThreshold++
	} else {
		s.BelowThreshold++
	}
	return s
}

// Combine merges two partial summaries.
func (s Summary) Combine(other Summary) Summary {
	return Summary{
		TotalBreakouts:      s.TotalBreakouts + other.TotalBreakouts,
		MaxUpperDistancePct: math.Max(s.MaxUpperDistancePct, other.MaxUpperDistancePct),
		MinLowerDistancePct: math.Min(s.MinLowerDistancePct, other.MinLowerDistancePct),
		AboveThreshold:      s.AboveThreshold + other.AboveThreshold,
		BelowThreshold:      s.BelowThreshold + other.BelowThreshold,
	}
}

// Summarize folds every event and every outcome exactly once.
func Summarize(events []Event, outcomes []Outcome) Summary {
	var s Summary
	for _, ev := range events {
		s = s.AddEvent(ev)
	}
	for _, o := range outcomes {
		s = s.AddOutcome(o)
	}
	return s
}
