package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airstation/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, "json", nil)).Info("eval.case.done", "agent", "health_agent")
	assert.Contains(t, buf.String(), `"msg":"eval.case.done"`)
	assert.Contains(t, buf.String(), `"agent":"health_agent"`)
}

func TestInitialize_File(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "station.log")
	closeFn, err := Initialize(config.LogConfig{Level: "debug", Format: "text", Output: path})
	require.NoError(t, err)

	slog.Debug("app.init.start", "strategy", "swarm")
	require.NoError(t, closeFn())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "app.init.start")
	assert.Contains(t, string(content), "strategy=swarm")
}

func TestInitialize_BadPath(t *testing.T) {
	_, err := Initialize(config.LogConfig{Output: filepath.Join(t.TempDir(), "missing", "x.log")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open log file")
}
