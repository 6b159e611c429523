package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeFile записывает временный файл конфигурации.
func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0o600))
	return p
}

// chdir меняет рабочий каталог и возвращает его после теста.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

const sampleYAML = `
env: "prod"
api:
  base_url: "https://api.glutensiz.example"
  timeout: "10s"
token_store:
  path: "/tmp/tokens.kdbx"
  passphrase: "secret"
log:
  level: "debug"
  format: "json"
  dir: "/var/log/glutenfree"
location:
  coordinate: "41.0082,28.9784"
devserver:
  addr: "0.0.0.0:9000"
  jwt_secret: "s3cr3t"
  token_ttl: "1h"
  no_seed: true
`

const brokenYAML = `
env: [unclosed
`

func TestLoad_WithExplicitPath_OK(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "https://api.glutensiz.example", cfg.API.BaseURL)
	require.Equal(t, 10*time.Second, cfg.API.Timeout)
	require.Equal(t, "/tmp/tokens.kdbx", cfg.TokenStore.Path)
	require.Equal(t, "secret", cfg.TokenStore.Passphrase)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, "0.0.0.0:9000", cfg.DevServer.Addr)
	require.Equal(t, time.Hour, cfg.DevServer.TokenTTL)
	require.True(t, cfg.DevServer.NoSeed)

	coord, ok, err := cfg.Location.Parse()
	require.NoError(t, err)
	require.True(t, ok)
	require.InDelta(t, 41.0082, coord.Latitude, 1e-9)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)
	t.Setenv("API_BASE_URL", "http://override:8000")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, "http://override:8000", cfg.API.BaseURL)
}

func TestLoad_DevServerSeed(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	t.Run("По умолчанию хранилище наполняется", func(t *testing.T) {
		cfgPath := writeFile(t, t.TempDir(), "config.yaml", "devserver:\n  addr: \"127.0.0.1:9100\"\n")
		cfg, err := Load(cfgPath)
		require.NoError(t, err)
		require.False(t, cfg.DevServer.NoSeed)
	})

	t.Run("Отключение в файле не перезаписывается", func(t *testing.T) {
		cfgPath := writeFile(t, t.TempDir(), "config.yaml", "devserver:\n  no_seed: true\n")
		cfg, err := Load(cfgPath)
		require.NoError(t, err)
		require.True(t, cfg.DevServer.NoSeed)
	})

	t.Run("Отключение через ENV", func(t *testing.T) {
		t.Setenv("DEVSERVER_NO_SEED", "true")
		cfgPath := writeFile(t, t.TempDir(), "config.yaml", `env: "dev"`)
		cfg, err := Load(cfgPath)
		require.NoError(t, err)
		require.True(t, cfg.DevServer.NoSeed)
	})
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "from-env.yaml", `env: "stage"`)
	t.Setenv("CONFIG_PATH", cfgPath)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "stage", cfg.Env)
	require.Equal(t, "http://localhost:8000", cfg.API.BaseURL, "Незаданные поля берутся из значений по умолчанию")
}

func TestLoad_LocalYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "local.yaml", `env: "local-file"`)
	chdir(t, dir)
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "local-file", cfg.Env)
}

func TestLoad_EnvOnlyDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("TOKEN_STORE_PASSPHRASE", "from-env")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "local", cfg.Env)
	require.Equal(t, 30*time.Second, cfg.API.Timeout)
	require.Equal(t, "glutenfree.kdbx", cfg.TokenStore.Path)
	require.Equal(t, "from-env", cfg.TokenStore.Passphrase)
	require.Equal(t, "logs", cfg.Log.Dir)

	_, ok, err := cfg.Location.Parse()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "DEVICE_LOCATION=39.93,32.85\n")
	chdir(t, dir)
	t.Setenv("CONFIG_PATH", "")
	// t.Setenv восстановит исходное значение после теста.
	t.Setenv("DEVICE_LOCATION", "")
	require.NoError(t, os.Unsetenv("DEVICE_LOCATION"))

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "39.93,32.85", cfg.Location.Coordinate)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("Нет файла", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		require.Contains(t, err.Error(), "stat failed")
	})

	t.Run("Битый YAML", func(t *testing.T) {
		cfgPath := writeFile(t, t.TempDir(), "broken.yaml", brokenYAML)
		_, err := Load(cfgPath)
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to read config")
	})

	t.Run("MustLoad паникует", func(t *testing.T) {
		require.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "missing.yaml")) })
	})

	t.Run("Неверная координата", func(t *testing.T) {
		_, _, err := LocationConfig{Coordinate: "north"}.Parse()
		require.Error(t, err)
	})
}
