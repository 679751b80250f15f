package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/infinite-adventure/internal/config"
)

func TestSetup_ProductionIsJSON(t *testing.T) {
	var buf bytes.Buffer
	l := setup(&config.Config{Environment: "production", LogLevel: slog.LevelInfo}, &buf)

	WithWorldID(l, "w1").Info("Saved world")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Saved world", entry["msg"])
	assert.Equal(t, "w1", entry["world_id"])
}

func TestSetup_DevelopmentIsText(t *testing.T) {
	var buf bytes.Buffer
	l := setup(&config.Config{Environment: "development", LogLevel: slog.LevelWarn}, &buf)

	l.Info("hidden")
	WithRequestID(l, "abc").Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "request_id=abc")
}

func TestSetupFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.log")
	l, closeFn, err := SetupFile(&config.Config{LogFile: path, LogLevel: slog.LevelInfo})
	require.NoError(t, err)

	l.Info("to the file")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "to the file"))
}

func TestSetupFile_NoFileDiscards(t *testing.T) {
	l, closeFn, err := SetupFile(&config.Config{})
	require.NoError(t, err)
	l.Info("nowhere")
	assert.NoError(t, closeFn())
}
