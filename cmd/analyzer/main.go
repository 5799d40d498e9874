package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Breakout/internal/analysis/breakout"
	"github.com/Alias1177/Breakout/internal/config"
	"github.com/Alias1177/Breakout/internal/model"
	"github.com/Alias1177/Breakout/internal/notifier"
	httpClient "github.com/Alias1177/Breakout/internal/platform/http"
	"github.com/Alias1177/Breakout/internal/report"
	"github.com/Alias1177/Breakout/internal/source"
)

func main() {
	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	setupSignalHandling(cancel)
	setupLogging("info")

	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, interactive); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Error().Err(err).Msg("Analysis failed")
		os.Exit(1)
	}
}

// setupSignalHandling configures signal handling for graceful shutdown
func setupSignalHandling(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("Shutdown signal received, cancelling...")
		cancel()
	}()
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	// Set log level from config
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}

type options struct {
	noPrompt bool
	telegram bool
	stats    bool
	given    map[string]bool
}

// parseFlags overrides cfg with command line flags.
func parseFlags(args []string, cfg *config.Config) (options, error) {
	fs := flag.NewFlagSet("analyzer", flag.ContinueOnError)
	fs.StringVar(&cfg.Symbol, "symbol", cfg.Symbol, "instrument symbol, e.g. BTCUSDT")
	fs.StringVar(&cfg.Interval, "interval", cfg.Interval, "candle timeframe, e.g. 5m, 1h, 1d")
	fs.IntVar(&cfg.Days, "days", cfg.Days, "number of days back to analyze")
	fs.StringVar(&cfg.Source, "source", cfg.Source, "candle source: binance, twelvedata or postgres")
	fs.IntVar(&cfg.BBWindow, "window", cfg.BBWindow, "Bollinger window")
	fs.Float64Var(&cfg.BBDeviation, "deviation", cfg.BBDeviation, "Bollinger standard deviation multiplier")
	fs.Float64Var(&cfg.TakeProfitPct, "threshold", cfg.TakeProfitPct, "take-profit threshold in percent")
	fs.StringVar(&cfg.DisplayTimezone, "tz", cfg.DisplayTimezone, "IANA timezone for printed times")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	var opts options
	fs.BoolVar(&opts.noPrompt, "no-prompt", false, "never ask for missing parameters")
	fs.BoolVar(&opts.telegram, "telegram", cfg.TelegramEnabled(), "send the summary to Telegram")
	fs.BoolVar(&opts.stats, "stats", false, "also print per-direction and monthly statistics")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.given = map[string]bool{}
	fs.Visit(func(f *flag.Flag) { opts.given[f.Name] = true })
	return opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer, interactive bool) error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	opts, err := parseFlags(args, cfg)
	if err != nil {
		return err
	}

	// 2. Configure logging
	setupLogging(cfg.LogLevel)

	if interactive && !opts.noPrompt {
		if err := promptMissing(stdin, os.Stderr, cfg, opts.given); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	logger := log.With().Str("run_id", uuid.NewString()).Logger()
	printConfig(logger, cfg)

	// 3. Fetch candles
	src, release, err := source.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	req := source.RequestFor(cfg, time.Now().UTC())
	logger.Info().Str("source", src.Name()).Time("from", req.From).Time("to", req.To).Msg("Fetching candles")
	candles, err := src.FetchCandles(ctx, req)
	if err != nil {
		if status := httpClient.StatusCode(err); status != 0 {
			logger.Error().Int("status", status).Str("source", src.Name()).Msg("Candle source rejected the request")
		}
		return fmt.Errorf("fetching candles from %s: %w", src.Name(), err)
	}

	// 4. Analyze
	rep, err := analyze(candles, cfg)
	if err != nil {
		return err
	}
	logger.Info().
		Int("candles", rep.Candles).
		Int("breakouts", rep.Summary.TotalBreakouts).
		Int("evaluated", len(rep.Outcomes)).
		Msg("Analysis complete")

	// 5. Report
	if err := report.Write(stdout, rep, loc); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if opts.stats {
		if err := report.WriteMetrics(stdout, breakout.CalculateMetrics(rep, loc)); err != nil {
			return fmt.Errorf("writing statistics: %w", err)
		}
	}

	if opts.telegram {
		if !cfg.TelegramEnabled() {
			logger.Warn().Msg("Telegram requested but TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID is not set")
			return nil
		}
		tg, err := notifier.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			return err
		}
		msg := report.TelegramMessage(rep, report.Meta{
			Symbol:   cfg.Symbol,
			Interval: cfg.Interval,
			Days:     cfg.Days,
			Source:   src.Name(),
			Location: loc,
		})
		if err := tg.Notify(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func analyze(candles []model.Candle, cfg *config.Config) (*breakout.Report, error) {
	return breakout.AnalyzeCandles(candles, breakout.Params{
		Window:        cfg.BBWindow,
		Deviation:     cfg.BBDeviation,
		TakeProfitPct: cfg.TakeProfitPct,
	})
}

// printConfig outputs the current configuration
func printConfig(logger zerolog.Logger, cfg *config.Config) {
	logger.Info().
		Str("Symbol", cfg.Symbol).
		Str("Interval", cfg.Interval).
		Int("Days", cfg.Days).
		Str("Source", cfg.Source).
		Int("BBWindow", cfg.BBWindow).
		Float64("BBDeviation", cfg.BBDeviation).
		Float64("TakeProfitPct", cfg.TakeProfitPct).
		Str("DisplayTimezone", cfg.DisplayTimezone).
		Msg("Configuration loaded")
}
