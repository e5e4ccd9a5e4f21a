// Package config loads bfi CLI configuration from CUE files.
//
// A config file is unified with the #Config schema below, so typos and
// out-of-range values are reported with file positions, and omitted fields
// take the schema defaults:
//
//	engine: max_steps: 100000
//	log: {
//	    level:   "debug"
//	    file:    "/tmp/bfi.log"
//	    journal: false
//	}
//	input: lines: ["first line", "second line"]
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// schema is the CUE definition every config file is unified with.
const schema = `
#Config: {
	engine: {
		max_steps: int & >=0 | *0
	}
	log: {
		level:   *"info" | "debug" | "warn" | "error"
		file?:   string
		journal: bool | *false
	}
	input: {
		lines: [...string] | *[]
	}
}
`

// Config holds settings for the bfi CLI.
type Config struct {
	Engine EngineConfig `json:"engine"`
	Log    LogConfig    `json:"log"`
	Input  InputConfig  `json:"input"`
}

// EngineConfig configures the execution engine.
type EngineConfig struct {
	// MaxSteps caps instructions per run. 0 means unlimited.
	MaxSteps int `json:"max_steps"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level   string `json:"level"`
	File    string `json:"file,omitempty"`
	Journal bool   `json:"journal"`
}

// InputConfig supplies scripted input lines for ','.
type InputConfig struct {
	Lines []string `json:"lines"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
	}
}

// SlogLevel maps the configured level name to a slog.Level.
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ConfigError reports an invalid config file, with the CUE position when
// one is available.
type ConfigError struct {
	Message string
	Pos     token.Pos
}

func (e *ConfigError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// Load reads and evaluates the CUE config file at path.
// A missing file yields an error matching fs.ErrNotExist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, path)
}

// Parse evaluates CUE source against the #Config schema.
// filename is used in error positions only.
func Parse(data []byte, filename string) (*Config, error) {
	ctx := cuecontext.New()

	def := ctx.CompileString(schema, cue.Filename("config_schema.cue")).
		LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	cfg := Default()
	if err := unified.Decode(cfg); err != nil {
		return nil, formatCUEError(err)
	}
	return cfg, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &ConfigError{Message: err.Error()}
	}

	first := errs[0]
	ce := &ConfigError{Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}

// IsConfigError reports whether err is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
