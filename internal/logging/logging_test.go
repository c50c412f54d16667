package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		entries = append(entries, entry)
	}
	return entries
}

func TestNew_WritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, sync, err := New(&buf, "info")
	require.NoError(t, err)

	logger.With(slog.String("component", "lobby-registry")).
		Info("lobby created", slog.String("lobby_id", "ABC123"), slog.Int("num_games", 5))
	require.NoError(t, sync())

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "lobby created", entries[0]["msg"])
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "lobby-registry", entries[0]["component"])
	assert.Equal(t, "ABC123", entries[0]["lobby_id"])
	assert.EqualValues(t, 5, entries[0]["num_games"])
	assert.Contains(t, entries[0], "time")
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, sync, err := New(&buf, "warn")
	require.NoError(t, err)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")
	require.NoError(t, sync())

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "warn message", entries[0]["msg"])
	assert.Equal(t, "error message", entries[1]["msg"])
}

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := New(&bytes.Buffer{}, "chatty")
	assert.Error(t, err)
}
