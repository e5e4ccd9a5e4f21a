package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TerminalAndFile(t *testing.T) {
	var term, file bytes.Buffer
	logger := New(Options{Level: slog.LevelInfo, Terminal: &term, File: &file})

	logger.Info("run halted", "steps", 12)
	logger.Debug("hidden")

	assert.Contains(t, term.String(), "msg=\"run halted\"")
	assert.Contains(t, term.String(), "steps=12")
	assert.NotContains(t, term.String(), "hidden")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &rec))
	assert.Equal(t, "run halted", rec["msg"])
	assert.Equal(t, float64(12), rec["steps"])
}

func TestNew_DebugLevel(t *testing.T) {
	var term bytes.Buffer
	logger := New(Options{Level: slog.LevelDebug, Terminal: &term})

	logger.Debug("visible")

	assert.Contains(t, term.String(), "visible")
}

func TestNew_NoSinks(t *testing.T) {
	logger := New(Options{})

	assert.NotPanics(t, func() { logger.Error("dropped") })
}

func TestToJournalKey(t *testing.T) {
	assert.Equal(t, "ENGINE_ID", toJournalKey("engine_id"))
	assert.Equal(t, "OUTPUT_LEN", toJournalKey("output-len"))
	assert.Equal(t, "A1_B", toJournalKey("a1.b"))
}
