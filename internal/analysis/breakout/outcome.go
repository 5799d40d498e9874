package breakout

import (
	"math"
	"time"

	"github.com/Alias1177/Breakout/internal/model"
)

// DefaultTakeProfitPct is the move, in percent, a breakout's next candle must offer
// to count as reaching take profit.
const DefaultTakeProfitPct = 0.5

// Bucket classifies an outcome against the take-profit threshold.
type Bucket int

const (
	BelowThreshold Bucket = iota
	AtOrAboveThreshold
)

func (b Bucket) String() string {
	if b == AtOrAboveThreshold {
		return "AT_OR_ABOVE"
	}
	return "BELOW"
}

// Outcome is what the candle after a breakout did relative to the breakout's extreme.
type Outcome struct {
	Event        Event
	NextOpenTime time.Time
	NextMin      float64 // next candle low
	NextMax      float64 // next candle high

	// For a bullish event DistanceToMin is measured against NextMin and DistanceToMax
	// against NextMax. A bearish event swaps the references.
	DistanceToMinPct float64
	DistanceToMinErr error
	DistanceToMaxPct float64
	DistanceToMaxErr error

	Bucket Bucket
}

// FirstPrice is the next-candle price DistanceToMinPct was measured against.
func (o Outcome) FirstPrice() float64 {
	if o.Event.Direction == Bearish {
		return o.NextMax
	}
	return o.NextMin
}

// SecondPrice is the next-candle price DistanceToMaxPct was measured against.
func (o Outcome) SecondPrice() float64 {
	if o.Event.Direction == Bearish {
		return o.NextMin
	}
	return o.NextMax
}

// Evaluate measures the breakout against the candle that follows it.
// An undefined DistanceToMin buckets as below the threshold.
func Evaluate(ev Event, next model.Candle, takeProfitPct float64) Outcome {
	o := Outcome{
		Event:        ev,
		NextOpenTime: next.OpenTime,
		NextMin:      next.Low,
		NextMax:      next.High,
	}
	o.DistanceToMinPct, o.DistanceToMinErr = excursionPct(ev.ExtremePrice, o.FirstPrice())
	o.DistanceToMaxPct, o.DistanceToMaxErr = excursionPct(ev.ExtremePrice, o.SecondPrice())

	if o.DistanceToMinErr == nil && math.Abs(o.DistanceToMinPct) >= takeProfitPct {
		o.Bucket = AtOrAboveThreshold
	}
	return o
}

// excursionPct returns (extreme - reference) / reference * -100.
func excursionPct(extreme, reference float64) (float64, error) {
	if reference == 0 {
		return 0, ErrDivisionUndefined
	}
	return (extreme - reference) / reference * -100, nil
}
