package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/bfi/internal/engine"
	"github.com/roach88/bfi/internal/testutil"
	"github.com/roach88/bfi/internal/trace"
)

// Harness is the scenario execution state.
// It runs one scenario on a fresh engine with a fixed id.
type Harness struct {
	engine   *engine.Engine
	recorder *trace.Recorder
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Create a fresh engine with scripted input and a fixed id
// 2. Load the program and run it
// 3. Run each segment, applying its reset mode first
// 4. Evaluate assertions against the final state
//
// Run returns an error only when the scenario cannot be executed, for
// example when its program file is missing. Runtime errors are recorded
// in the Result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context for cancellation.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	opts := []engine.Option{
		engine.WithLogger(h.logger),
		engine.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.EngineID)),
		engine.WithMaxSteps(scenario.MaxSteps),
	}
	if scenario.Input != nil {
		opts = append(opts, engine.WithInput(engine.NewScriptedInput(scenario.Input...)))
	}
	if scenario.Trace {
		h.recorder = trace.NewRecorder(0)
		opts = append(opts, engine.WithTracer(h.recorder))
	}
	h.engine = engine.New(opts...)

	if scenario.ProgramFile != "" {
		if _, err := h.engine.Load(scenario.ProgramFile); err != nil {
			return nil, fmt.Errorf("failed to load program: %w", err)
		}
	} else {
		h.engine.SetProgram(scenario.Program)
	}

	_, runErr := h.engine.Run(ctx)
	for i := 0; runErr == nil && i < len(scenario.Segments); i++ {
		runErr = h.runSegment(ctx, scenario.Segments[i])
	}
	if runErr != nil && engine.CodeOf(runErr) == "" {
		return nil, fmt.Errorf("failed to execute scenario: %w", runErr)
	}

	result := h.buildResult(scenario.Name, runErr)

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}
	if runErr != nil && !expectsError(scenario.Assertions) {
		result.AddError(fmt.Sprintf("run failed: %v", runErr))
	}

	return result, nil
}

// runSegment applies the segment's reset mode, installs its program and
// runs it from the start.
func (h *Harness) runSegment(ctx context.Context, seg Segment) error {
	switch seg.Reset {
	case ResetState:
		h.engine.Reset(false)
	case ResetAll:
		h.engine.Reset(true)
	}
	h.engine.SetProgram(seg.Program)
	h.engine.SetPC(0)

	_, err := h.engine.Run(ctx)
	return err
}

func (h *Harness) buildResult(name string, runErr error) *Result {
	result := NewResult()
	result.Output = h.engine.Output()
	result.Cursor = h.engine.Cursor()
	result.TapeLen = h.engine.TapeLen()
	result.Tape = h.engine.Tape()
	result.Steps = h.engine.Steps()
	result.ErrorCode = string(engine.CodeOf(runErr))
	result.Snapshot = trace.Capture(name, h.engine, h.recorder, runErr)
	return result
}

func expectsError(assertions []Assertion) bool {
	for _, a := range assertions {
		if a.Type == AssertErrorCode {
			return true
		}
	}
	return false
}
