// Package breakout detects candles that pierce their Bollinger envelope in the
// direction of their own body and measures what the following candle does.
package breakout

import (
	"errors"
	"time"

	"github.com/Alias1177/Breakout/internal/analysis/technical"
	"github.com/Alias1177/Breakout/internal/model"
)

// ErrDivisionUndefined marks a percentage whose reference price is exactly zero.
var ErrDivisionUndefined = errors.New("division undefined: reference price is zero")

// Direction of a breakout.
type Direction int

const (
	None Direction = iota
	Bullish
	Bearish
)

func (d Direction) String() string {
	switch d {
	case Bullish:
		return "BULLISH"
	case Bearish:
		return "BEARISH"
	default:
		return "NONE"
	}
}

// Event is a candle classified as a breakout.
type Event struct {
	Index        int
	OpenTime     time.Time
	Direction    Direction
	Band         technical.Band
	ExtremePrice float64 // high for bullish, low for bearish

	// BandDistancePct is how far ExtremePrice sits beyond the pierced band, in percent.
	// It is meaningless when DistanceErr is set.
	BandDistancePct float64
	DistanceErr     error
}

// Classify applies the breakout rules to one candle. A bullish body piercing the
// upper band wins over the bearish rule; comparisons are strict.
func Classify(c model.Candle, point technical.BandPoint) Direction {
	if !point.Defined {
		return None
	}
	switch {
	case c.IsBullish() && c.High > point.Upper:
		return Bullish
	case c.IsBearish() && c.Low < point.Lower:
		return Bearish
	default:
		return None
	}
}

// Detect classifies the candle at index and builds its Event.
// The boolean is false when the candle is not a breakout.
func Detect(index int, c model.Candle, point technical.BandPoint) (Event, bool) {
	dir := Classify(c, point)
	if dir == None {
		return Event{}, false
	}

	ev := Event{
		Index:     index,
		OpenTime:  c.OpenTime,
		Direction: dir,
		Band:      point.Band,
	}
	reference := point.Upper
	ev.ExtremePrice = c.High
	if dir == Bearish {
		reference = point.Lower
		ev.ExtremePrice = c.Low
	}
	ev.BandDistancePct, ev.DistanceErr = percentFrom(ev.ExtremePrice, reference)
	return ev, true
}

// percentFrom returns (price - reference) / reference * 100.
func percentFrom(price, reference float64) (float64, error) {
	if reference == 0 {
		return 0, ErrDivisionUndefined
	}
	return (price - reference) / reference * 100, nil
}
