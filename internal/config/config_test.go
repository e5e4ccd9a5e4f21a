package config

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse([]byte(""), "empty.cue")

	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Engine.MaxSteps)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "", cfg.Log.File)
	assert.False(t, cfg.Log.Journal)
	assert.Empty(t, cfg.Input.Lines)
}

func TestParse_Full(t *testing.T) {
	src := `
engine: max_steps: 5000
log: {
	level:   "debug"
	file:    "/tmp/bfi.log"
	journal: true
}
input: lines: ["abc", "d"]
`
	cfg, err := Parse([]byte(src), "full.cue")

	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Engine.MaxSteps)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/bfi.log", cfg.Log.File)
	assert.True(t, cfg.Log.Journal)
	assert.Equal(t, []string{"abc", "d"}, cfg.Input.Lines)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"negative steps", `engine: max_steps: -1`},
		{"unknown level", `log: level: "loud"`},
		{"unknown field", `engine: speed: 3`},
		{"wrong type", `input: lines: "abc"`},
		{"syntax", `engine: {`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.cue")
			require.Error(t, err)
			assert.True(t, IsConfigError(err), "got %T: %v", err, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bfi.cue")
	require.NoError(t, os.WriteFile(path, []byte(`engine: max_steps: 7`), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Engine.MaxSteps)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.cue"))

	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	}

	for name, want := range tests {
		assert.Equal(t, want, LogConfig{Level: name}.SlogLevel(), "level %q", name)
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Message: "bad"}
	assert.Equal(t, "bad", err.Error())
}
