package main

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/glutenfree/internal/config"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestParseFlags(t *testing.T) {
	t.Run("Все параметры из флагов", func(t *testing.T) {
		t.Setenv(envConfigPath, "")
		f, err := parseFlags(newFlagSet(), []string{"-config=dev.yaml", "-addr=:9000", "-log-level=debug", "-no-seed"})
		require.NoError(t, err)
		assert.Equal(t, "dev.yaml", f.ConfigPath)
		assert.Equal(t, ":9000", f.Addr)
		assert.Equal(t, "debug", f.LogLevel)
		assert.True(t, f.NoSeed)
	})

	t.Run("Путь к конфигу из окружения", func(t *testing.T) {
		t.Setenv(envConfigPath, "env.yaml")
		f, err := parseFlags(newFlagSet(), nil)
		require.NoError(t, err)
		assert.Equal(t, "env.yaml", f.ConfigPath)
	})

	t.Run("Неизвестный флаг", func(t *testing.T) {
		_, err := parseFlags(newFlagSet(), []string{"-unknown"})
		assert.Error(t, err)
	})
}

func TestApplyFlags(t *testing.T) {
	cfg := &config.Config{}
	cfg.DevServer.Addr = "127.0.0.1:8000"
	cfg.Log.Level = "info"

	applyFlags(cfg, &flags{})
	assert.Equal(t, "127.0.0.1:8000", cfg.DevServer.Addr, "Пустые флаги ничего не меняют")
	assert.False(t, cfg.DevServer.NoSeed)

	applyFlags(cfg, &flags{Addr: ":9000", LogLevel: "debug", NoSeed: true})
	assert.Equal(t, ":9000", cfg.DevServer.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.DevServer.NoSeed)
}
