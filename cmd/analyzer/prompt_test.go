package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/Breakout/internal/config"
)

func TestPromptMissing(t *testing.T) {
	cfg := config.Default()
	var out bytes.Buffer

	err := promptMissing(strings.NewReader("ethusdt\n\n14\n"), &out, &cfg, map[string]bool{})
	require.NoError(t, err)
	assert.Equal(t, "ETHUSDT", cfg.Symbol)
	assert.Equal(t, "5m", cfg.Interval)
	assert.Equal(t, 14, cfg.Days)
	assert.Contains(t, out.String(), "Enter the timeframe (e.g., '5m', '1h', '1d') [5m]: ")
}

func TestPromptMissing_SkipsGivenFlags(t *testing.T) {
	cfg := config.Default()
	cfg.Symbol = "SOLUSDT"
	var out bytes.Buffer

	err := promptMissing(strings.NewReader("30\n"), &out, &cfg, map[string]bool{"symbol": true, "interval": true})
	require.NoError(t, err)
	assert.Equal(t, "SOLUSDT", cfg.Symbol)
	assert.Equal(t, 30, cfg.Days)
	assert.NotContains(t, out.String(), "symbol")
}

func TestPromptMissing_EOFKeepsDefaults(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, promptMissing(strings.NewReader(""), &bytes.Buffer{}, &cfg, map[string]bool{}))
	assert.Equal(t, config.Default(), cfg)
}

func TestPromptMissing_BadDays(t *testing.T) {
	cfg := config.Default()
	err := promptMissing(strings.NewReader("BTCUSDT\n1h\nweek\n"), &bytes.Buffer{}, &cfg, map[string]bool{})
	assert.Error(t, err)

	err = promptMissing(strings.NewReader("0\n"), &bytes.Buffer{}, &cfg, map[string]bool{"symbol": true, "interval": true})
	assert.Error(t, err)
}
