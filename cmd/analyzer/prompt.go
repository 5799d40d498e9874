package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Alias1177/Breakout/internal/config"
)

// promptMissing asks for symbol, timeframe and days unless they were given as flags.
// An empty answer keeps the configured value.
func promptMissing(in io.Reader, out io.Writer, cfg *config.Config, given map[string]bool) error {
	sc := bufio.NewScanner(in)
	ask := func(question, current string) (string, error) {
		fmt.Fprintf(out, "%s [%s]: ", question, current)
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return current, nil
		}
		if answer := strings.TrimSpace(sc.Text()); answer != "" {
			return answer, nil
		}
		return current, nil
	}

	var err error
	if !given["symbol"] {
		if cfg.Symbol, err = ask("Enter the symbol (e.g., 'BTCUSDT')", cfg.Symbol); err != nil {
			return err
		}
		cfg.Symbol = strings.ToUpper(cfg.Symbol)
	}
	if !given["interval"] {
		if cfg.Interval, err = ask("Enter the timeframe (e.g., '5m', '1h', '1d')", cfg.Interval); err != nil {
			return err
		}
	}
	if !given["days"] {
		answer, err := ask("Enter the number of days back you want to analyze", strconv.Itoa(cfg.Days))
		if err != nil {
			return err
		}
		days, err := strconv.Atoi(answer)
		if err != nil || days < 1 {
			return fmt.Errorf("days must be a positive integer, got %q", answer)
		}
		cfg.Days = days
	}
	return nil
}
