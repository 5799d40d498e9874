// Package source builds the candle source selected in the configuration.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/Alias1177/Breakout/internal/api/binance"
	"github.com/Alias1177/Breakout/internal/api/twelvedata"
	"github.com/Alias1177/Breakout/internal/config"
	"github.com/Alias1177/Breakout/internal/database"
	"github.com/Alias1177/Breakout/internal/model"
	httpClient "github.com/Alias1177/Breakout/internal/platform/http"
)

const (
	Binance    = "binance"
	TwelveData = "twelvedata"
	Postgres   = "postgres"
)

// New returns the configured source and a function releasing its resources.
func New(ctx context.Context, cfg *config.Config) (model.Source, func(), error) {
	noop := func() {}

	switch cfg.Source {
	case Binance:
		return NewBinance(cfg), noop, nil
	case TwelveData:
		return twelvedata.NewClient(twelvedata.ClientOptions{
			APIKey: cfg.TwelveAPIKey,
			HTTP:   newHTTPClient(cfg),
		}), noop, nil
	case Postgres:
		db, err := OpenDB(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		return db, func() { db.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown source %q", cfg.Source)
	}
}

// NewBinance builds the Binance klines client from cfg.
func NewBinance(cfg *config.Config) *binance.Client {
	return binance.NewClient(binance.ClientOptions{
		BaseURL: cfg.BinanceBaseURL,
		HTTP:    newHTTPClient(cfg),
	})
}

// OpenDB connects to the configured Postgres candle store.
func OpenDB(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	return database.New(ctx, database.ConnectionParams{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
		Table:    cfg.DBTable,
	})
}

// RequestFor covers the last cfg.Days days up to now.
func RequestFor(cfg *config.Config, now time.Time) model.Request {
	return model.Request{
		Symbol:   cfg.Symbol,
		Interval: cfg.Interval,
		From:     now.AddDate(0, 0, -cfg.Days),
		To:       now,
	}
}

func newHTTPClient(cfg *config.Config) *httpClient.Client {
	return httpClient.NewClient(httpClient.ClientOptions{
		Timeout:        cfg.Timeout(),
		RequestsPerSec: cfg.RequestsPerSec,
		MaxRetries:     cfg.MaxRetries,
	})
}
