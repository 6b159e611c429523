package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/glutenfree/internal/logging"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" DEBUG ": slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for raw, want := range tests {
		assert.Equal(t, want, logging.ParseLevel(raw), raw)
	}
}

func TestNew(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New(&buf, logging.Config{Level: "info", Format: "json"})
		logger.Debug("скрыто")
		logger.Info("видно", "key", "value")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "видно", record["msg"])
		assert.Equal(t, "value", record["key"])
	})

	t.Run("Текст", func(t *testing.T) {
		var buf bytes.Buffer
		logging.New(&buf, logging.Config{Level: "debug"}).Debug("отладка")
		assert.Contains(t, buf.String(), "msg=отладка")
	})
}

func TestOpenFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	file, err := logging.OpenFile(dir, "client.log")
	require.NoError(t, err)
	_, err = file.WriteString("запись\n")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	data, err := os.ReadFile(filepath.Join(dir, "client.log"))
	require.NoError(t, err)
	assert.Equal(t, "запись\n", string(data))
}
