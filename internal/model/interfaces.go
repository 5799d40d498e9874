package model

import (
	"context"
	"time"
)

// Request describes the candle range to retrieve.
type Request struct {
	Symbol   string
	Interval string
	From     time.Time
	To       time.Time
}

// Source retrieves historical candles ordered oldest first.
type Source interface {
	Name() string
	FetchCandles(ctx context.Context, req Request) ([]Candle, error)
}
