package main

import (
	"context"
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alias1177/Breakout/internal/config"
)

func TestRun_Help(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.ErrorIs(t, run(context.Background(), []string{"-h"}), flag.ErrHelp)
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	err := run(context.Background(), []string{"-days", "0"})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
