package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/bfi/internal/engine"
	"github.com/roach88/bfi/internal/logging"
)

// ProgramOptions holds the flags shared by commands that execute a program.
type ProgramOptions struct {
	*RootOptions
	Eval     string   // program text given with -e
	Input    []string // scripted input lines; stdin is used when empty
	MaxSteps int

	// IDGenerator allows overriding the engine id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator engine.IDGenerator
}

func (o *ProgramOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Eval, "eval", "e", "", "program text to run instead of a file")
	cmd.Flags().StringArrayVar(&o.Input, "input", nil, "input line for ',' (repeatable)")
	cmd.Flags().IntVar(&o.MaxSteps, "max-steps", 0, "maximum instructions per run (0 = unlimited, default from config)")
}

// session is a configured engine plus the resources it holds.
type session struct {
	engine *engine.Engine
	logger *slog.Logger
	close  func()
}

// newSession configures logging, builds an engine from opts and loads the
// program from path or --eval. Errors are ExitErrors with ExitCommandError.
func newSession(opts *ProgramOptions, path string, cmd *cobra.Command, extra ...engine.Option) (*session, error) {
	if (path == "") == (opts.Eval == "") {
		return nil, NewExitError(ExitCommandError, "exactly one of a program file and --eval is required")
	}

	logger, closeLog, err := setupLogger(opts.RootOptions, cmd)
	if err != nil {
		return nil, err
	}

	cfg := opts.config()
	maxSteps := cfg.Engine.MaxSteps
	if cmd.Flags().Changed("max-steps") {
		maxSteps = opts.MaxSteps
	}
	if maxSteps < 0 {
		closeLog()
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid --max-steps %d: must be non-negative", maxSteps))
	}

	var input engine.InputSource
	switch {
	case len(opts.Input) > 0:
		input = engine.NewScriptedInput(opts.Input...)
	case len(cfg.Input.Lines) > 0:
		input = engine.NewScriptedInput(cfg.Input.Lines...)
	default:
		input = engine.NewLineReader(cmd.InOrStdin())
	}

	engOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithMaxSteps(maxSteps),
		engine.WithInput(input),
	}
	if opts.IDGenerator != nil {
		engOpts = append(engOpts, engine.WithIDGenerator(opts.IDGenerator))
	}
	engOpts = append(engOpts, extra...)
	eng := engine.New(engOpts...)

	if path != "" {
		if _, err := eng.Load(path); err != nil {
			closeLog()
			if errors.Is(err, engine.ErrNotFound) {
				return nil, WrapExitError(ExitCommandError, "program file not found", err)
			}
			return nil, WrapExitError(ExitCommandError, "failed to read program", err)
		}
	} else {
		eng.SetProgram(opts.Eval)
	}

	for _, le := range engine.CheckLoops(eng.Program()) {
		logger.Warn("unbalanced bracket", "engine_id", eng.ID(), "position", le.Error())
	}
	logger.Debug("program loaded",
		"engine_id", eng.ID(),
		"path", path,
		"bytes", len(eng.Program()),
		"max_steps", maxSteps,
	)

	return &session{engine: eng, logger: logger, close: closeLog}, nil
}

// run executes the loaded program until it halts, fails or the process
// receives SIGINT/SIGTERM.
func (s *session) run(cmd *cobra.Command) (string, error) {
	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			s.logger.Info("received signal, stopping", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return s.engine.Run(ctx)
}

// setupLogger builds the logger described by the config and --verbose.
// The returned func closes the log file, if any.
func setupLogger(opts *RootOptions, cmd *cobra.Command) (*slog.Logger, func(), error) {
	cfg := opts.config()

	level := cfg.Log.SlogLevel()
	if opts.Verbose {
		level = slog.LevelDebug
	}

	logOpts := logging.Options{
		Level:    level,
		Terminal: cmd.ErrOrStderr(),
		Journal:  cfg.Log.Journal,
	}

	closeFn := func() {}
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "failed to open log file", err)
		}
		logOpts.File = f
		closeFn = func() { _ = f.Close() }
	}

	return logging.New(logOpts), closeFn, nil
}

// runtimeError converts a failed run into the CLI error for the response
// and the ExitError for the process.
func runtimeError(err error) (*CLIError, *ExitError) {
	code := string(engine.CodeOf(err))
	if code == "" {
		code = ErrCodeGeneric
	}
	cliErr := &CLIError{Code: code, Message: err.Error()}
	var re *engine.RuntimeError
	if errors.As(err, &re) {
		cliErr.Details = map[string]int{"pc": re.PC}
	}
	return cliErr, WrapExitError(ExitFailure, "run failed", err)
}

// commandContext returns the command's context if available (for testing),
// otherwise a background context.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
