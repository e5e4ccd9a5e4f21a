package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bfi/internal/engine"
	"github.com/roach88/bfi/internal/testutil"
)

func TestRun_Output(t *testing.T) {
	scenario := &Scenario{
		Name:        "text",
		Description: "prints fixed text",
		Program:     testutil.TextProgram("ok"),
		Assertions: []Assertion{
			{Type: AssertOutputEquals, Value: "ok"},
			{Type: AssertTapeLen, Value: 1},
		},
	}

	result, err := Run(scenario)

	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "ok", result.Output)
	assert.Empty(t, result.ErrorCode)
}

func TestRun_FailingAssertion(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong",
		Description: "expects the wrong output",
		Program:     testutil.TextProgram("a"),
		Assertions: []Assertion{
			{Type: AssertOutputEquals, Value: "b"},
		},
	}

	result, err := Run(scenario)

	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Assertion failed: output_equals")
}

func TestRun_UnexpectedRuntimeErrorFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "stray",
		Description: "stray bracket without an error_code assertion",
		Program:     "+]",
		Assertions: []Assertion{
			{Type: AssertCell, Index: 0, Value: 1},
		},
	}

	result, err := Run(scenario)

	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, string(engine.ErrCodeUnmatchedLoopEnd), result.ErrorCode)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "run failed")
}

func TestRun_ExpectedNoError(t *testing.T) {
	scenario := &Scenario{
		Name:        "clean",
		Description: "asserts the run succeeds",
		Program:     "+",
		Assertions: []Assertion{
			{Type: AssertErrorCode, Value: ""},
		},
	}

	result, err := Run(scenario)

	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_NoInputSource(t *testing.T) {
	scenario := &Scenario{
		Name:        "no_input",
		Description: "',' without scripted input",
		Program:     ",",
		Assertions: []Assertion{
			{Type: AssertErrorCode, Value: string(engine.ErrCodeNoInput)},
		},
	}

	result, err := Run(scenario)

	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, int64(0), result.Steps)
}

func TestRun_EmptyLinesAndClamping(t *testing.T) {
	scenario := &Scenario{
		Name:        "clamp",
		Description: "empty lines are skipped and wide characters saturate",
		Program:     ",.",
		Input:       []string{"", "☺"},
		Assertions: []Assertion{
			{Type: AssertCell, Index: 0, Value: 255},
			{Type: AssertOutputEquals, Value: "ÿ"},
		},
	}

	result, err := Run(scenario)

	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_SegmentResetModes(t *testing.T) {
	tests := []struct {
		reset      string
		wantOutput string
		wantCell1  int
	}{
		{ResetNone, "AB1", 66},
		{ResetState, "AB1", 0},
		{ResetAll, "1", 0},
	}

	for _, tt := range tests {
		t.Run(tt.reset, func(t *testing.T) {
			scenario := &Scenario{
				Name:        "segments_" + tt.reset,
				Description: "second segment runs after " + tt.reset,
				Program:     "++++++++[>++++++++<-]>+",
				Segments: []Segment{
					{Program: ".+."},
					{Program: "<" + testutil.TextProgram("1"), Reset: tt.reset},
				},
				Assertions: []Assertion{
					{Type: AssertOutputEquals, Value: tt.wantOutput},
					{Type: AssertCell, Index: 1, Value: tt.wantCell1},
				},
			}

			result, err := Run(scenario)

			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_SegmentsStopAfterError(t *testing.T) {
	scenario := &Scenario{
		Name:        "stop",
		Description: "segments after a failing run are skipped",
		Program:     "]",
		Segments:    []Segment{{Program: testutil.TextProgram("x")}},
		Assertions: []Assertion{
			{Type: AssertErrorCode, Value: string(engine.ErrCodeUnmatchedLoopEnd)},
			{Type: AssertOutputEquals, Value: ""},
		},
	}

	result, err := Run(scenario)

	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_TraceRecordsEvents(t *testing.T) {
	scenario := &Scenario{
		Name:        "traced",
		Description: "trace every instruction",
		Program:     "+ comment >",
		Trace:       true,
		Assertions:  []Assertion{{Type: AssertCursor, Value: 1}},
	}

	result, err := Run(scenario)

	require.NoError(t, err)
	require.Len(t, result.Snapshot.Events, 2)
	assert.Equal(t, "+", result.Snapshot.Events[0].Op)
	assert.Equal(t, ">", result.Snapshot.Events[1].Op)
	assert.Equal(t, 10, result.Snapshot.Events[1].PC)
}

func TestRun_MissingProgramFile(t *testing.T) {
	scenario := &Scenario{
		Name:        "missing",
		Description: "program file does not exist",
		ProgramFile: filepath.Join(t.TempDir(), "missing.bf"),
		Assertions:  []Assertion{{Type: AssertCursor, Value: 0}},
	}

	_, err := Run(scenario)

	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrNotFound)
}

func TestRunContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scenario := &Scenario{
		Name:        "cancelled",
		Description: "endless loop under a cancelled context",
		Program:     "+[]",
		Assertions:  []Assertion{{Type: AssertCursor, Value: 0}},
	}

	_, err := RunContext(ctx, scenario)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/echo_input.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := first.Snapshot.MarshalCanonical()
	require.NoError(t, err)
	b, err := second.Snapshot.MarshalCanonical()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
