package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelWarn,
		"off":     levelSilent,
	}
	for in, want := range tests {
		assert.Equal(t, want, LevelFromString(in), in)
	}
}

func TestNew_JSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo, JSONFormat)
	logger.Debug("hidden")
	logger.Info("resolved", "matches", 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "resolved", rec["msg"])
	assert.InDelta(t, 2, rec["matches"], 0)
}

func TestNew_TextFiltersByLevel(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelWarn, ParseFormat("text"))
	logger.Info("quiet")
	logger.Warn("loud", "path", "a/_vars.scss")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "loud")
	assert.Contains(t, out, "path=a/_vars.scss")
}

func TestParseFormat(t *testing.T) {
	t.Parallel()
	assert.Equal(t, JSONFormat, ParseFormat("JSON"))
	assert.Equal(t, TextFormat, ParseFormat("yaml"))
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	assert.False(t, Discard().Enabled(t.Context(), slog.LevelError))
}
