package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Breakout/internal/config"
	"github.com/Alias1177/Breakout/internal/model"
	"github.com/Alias1177/Breakout/internal/source"
)

// importer copies Binance futures klines into the Postgres candle store so later
// runs can analyze them with -source postgres.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Error().Err(err).Msg("Import failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	fs := flag.NewFlagSet("importer", flag.ContinueOnError)
	fs.StringVar(&cfg.Symbol, "symbol", cfg.Symbol, "instrument symbol, e.g. BTCUSDT")
	fs.StringVar(&cfg.Interval, "interval", cfg.Interval, "candle timeframe, e.g. 5m, 1h, 1d")
	fs.IntVar(&cfg.Days, "days", cfg.Days, "number of days back to import")
	if err := fs.Parse(args); err != nil {
		return err
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Output(output).Level(level).With().Str("run_id", uuid.NewString()).Logger()

	// the importer always reads from Binance; the source setting only matters for analysis
	cfg.Source = source.Binance
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := source.OpenDB(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	client := source.NewBinance(cfg)
	req := source.RequestFor(cfg, time.Now().UTC())

	candles, err := client.FetchCandles(ctx, req)
	if err != nil {
		return fmt.Errorf("fetching candles: %w", err)
	}
	series, err := model.NewSeries(candles)
	if err != nil {
		return fmt.Errorf("fetched candles do not form a valid series: %w", err)
	}

	n, err := db.SaveCandles(ctx, cfg.Symbol, cfg.Interval, series.Candles())
	if err != nil {
		return fmt.Errorf("saving candles: %w", err)
	}

	log.Info().
		Str("symbol", cfg.Symbol).
		Str("interval", cfg.Interval).
		Int("saved", n).
		Time("from", req.From).
		Time("to", req.To).
		Msg("Import complete")
	return nil
}
