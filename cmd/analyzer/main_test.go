package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/Breakout/internal/config"
	httpClient "github.com/Alias1177/Breakout/internal/platform/http"
)

func klinesBody() string {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	row := func(i int, o, h, l, c string) string {
		return fmt.Sprintf(`[%d,"%s","%s","%s","%s","1"]`, start.Add(time.Duration(i)*time.Hour).UnixMilli(), o, h, l, c)
	}
	rows := make([]string, 0, 22)
	for i := 0; i < 20; i++ {
		rows = append(rows, row(i, "100", "100", "100", "100"))
	}
	rows = append(rows, row(20, "100", "101", "92", "94"), row(21, "91.5", "93", "91", "92"))
	return "[" + strings.Join(rows, ",") + "]"
}

func TestRun_Binance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v1/klines", r.URL.Path)
		_, _ = w.Write([]byte(klinesBody()))
	}))
	defer srv.Close()

	t.Setenv("CONFIG_PATH", "")
	t.Setenv("SOURCE", "binance")
	t.Setenv("BINANCE_BASE_URL", srv.URL)
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	var out bytes.Buffer
	err := run(context.Background(),
		[]string{"-symbol", "BTCUSDT", "-interval", "1h", "-days", "2", "-tz", "UTC", "-log-level", "error"},
		strings.NewReader(""), &out, false)
	require.NoError(t, err)

	s := out.String()
	assert.True(t, strings.HasPrefix(s, "Breakout Time   |   "))
	assert.Contains(t, s, "2024-05-01 20:00:00+00:00   |   ")
	assert.Contains(t, s, "Number of candles that broke the Bollinger Bands: 1\n")
	assert.Contains(t, s, "Signals with take profit above 0.5%: 1\n")
	assert.NotContains(t, s, "Hit Rate")
}

func TestRun_Stats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(klinesBody()))
	}))
	defer srv.Close()

	t.Setenv("CONFIG_PATH", "")
	t.Setenv("SOURCE", "binance")
	t.Setenv("BINANCE_BASE_URL", srv.URL)

	var out bytes.Buffer
	err := run(context.Background(), []string{"-interval", "1h", "-stats", "-telegram=false", "-log-level", "error"},
		strings.NewReader(""), &out, false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "BEARISH   |   1   |   1   |   100.00")
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	err := run(context.Background(), []string{"-window", "1", "-log-level", "error"}, strings.NewReader(""), &bytes.Buffer{}, false)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestRun_Help(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	err := run(context.Background(), []string{"-h"}, strings.NewReader(""), &bytes.Buffer{}, false)
	assert.ErrorIs(t, err, flag.ErrHelp)
}

func TestRun_SourceRejectsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	}))
	defer srv.Close()

	t.Setenv("CONFIG_PATH", "")
	t.Setenv("SOURCE", "binance")
	t.Setenv("BINANCE_BASE_URL", srv.URL)

	var out bytes.Buffer
	err := run(context.Background(), []string{"-symbol", "NOPE", "-telegram=false", "-log-level", "error"},
		strings.NewReader(""), &out, false)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httpClient.StatusCode(err))
	assert.Empty(t, out.String())
}

func TestParseFlags(t *testing.T) {
	cfg := config.Default()
	opts, err := parseFlags([]string{"-symbol", "ETHUSDT", "-threshold", "0.8", "-no-prompt"}, &cfg)
	require.NoError(t, err)

	assert.Equal(t, "ETHUSDT", cfg.Symbol)
	assert.Equal(t, 0.8, cfg.TakeProfitPct)
	assert.True(t, opts.noPrompt)
	assert.False(t, opts.telegram)
	assert.True(t, opts.given["symbol"])
	assert.False(t, opts.given["interval"])

	_, err = parseFlags([]string{"-unknown"}, &cfg)
	assert.Error(t, err)
}
