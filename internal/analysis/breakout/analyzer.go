package breakout

import (
	"fmt"
	"math"

	"github.com/Alias1177/Breakout/internal/analysis/technical"
	"github.com/Alias1177/Breakout/internal/model"
)

// Params configures a run.
type Params struct {
	Window        int
	Deviation     float64
	TakeProfitPct float64
}

// DefaultParams returns window 20, multiplier 3 and a 0.5% take-profit threshold.
func DefaultParams() Params {
	return Params{
		Window:        technical.DefaultBBPeriod,
		Deviation:     technical.DefaultBBStdDev,
		TakeProfitPct: DefaultTakeProfitPct,
	}
}

func (p Params) Validate() error {
	if err := technical.ValidateBollingerParams(p.Window, p.Deviation); err != nil {
		return err
	}
	if !(p.TakeProfitPct >= 0) || math.IsInf(p.TakeProfitPct, 0) {
		return fmt.Errorf("take profit threshold must be a finite non-negative percentage, got %g", p.TakeProfitPct)
	}
	return nil
}

// Report is the result of one analysis run.
type Report struct {
	Params   Params
	Candles  int
	Events   []Event
	Outcomes []Outcome
	Summary  Summary
}

// Analyze computes bands, detects breakouts and evaluates each breakout against the
// next candle in a single forward pass. A breakout on the last candle is reported
// without an outcome.
func Analyze(series model.Series, params Params) (*Report, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	calc, err := technical.NewBollingerCalculator(params.Window, params.Deviation)
	if err != nil {
		return nil, err
	}

	rep := &Report{Params: params, Candles: series.Len()}
	var pending *Event
	for i := 0; i < series.Len(); i++ {
		c := series.At(i)
		if pending != nil {
			rep.Outcomes = append(rep.Outcomes, Evaluate(*pending, c, params.TakeProfitPct))
			pending = nil
		}

		band, ok := calc.Push(c.Close)
		if ev, hit := Detect(i, c, technical.BandPoint{Band: band, Defined: ok}); hit {
			rep.Events = append(rep.Events, ev)
			pending = &ev
		}
	}

	rep.Summary = Summarize(rep.Events, rep.Outcomes)
	return rep, nil
}

// AnalyzeCandles validates raw candles and analyzes them. Nothing is computed for
// an invalid series.
func AnalyzeCandles(candles []model.Candle, params Params) (*Report, error) {
	series, err := model.NewSeries(candles)
	if err != nil {
		return nil, err
	}
	return Analyze(series, params)
}

// HasOutcome reports whether the event at position i of Events was evaluated.
// Only a breakout on the final candle lacks one.
func (r *Report) HasOutcome(i int) bool {
	return i < len(r.Outcomes)
}
