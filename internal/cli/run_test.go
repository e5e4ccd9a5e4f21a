package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bfi/internal/config"
	"github.com/roach88/bfi/internal/testutil"
)

// runResponse mirrors CLIResponse with a typed payload for decoding.
type runResponse struct {
	Status  string    `json:"status"`
	Data    RunResult `json:"data"`
	Error   *CLIError `json:"error"`
	TraceID string    `json:"trace_id"`
}

func executeRun(t *testing.T, rootOpts *RootOptions, stdin string, args ...string) (string, string, error) {
	t.Helper()
	opts := &ProgramOptions{
		RootOptions: rootOpts,
		IDGenerator: testutil.NewFixedIDGenerator("cli-run-test"),
	}
	cmd := newRunCommand(opts)
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRunEval(t *testing.T) {
	out, _, err := executeRun(t, &RootOptions{Format: "text"}, "", "-e", testutil.HelloWorld)

	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", out)
}

func TestRunFile(t *testing.T) {
	path := testutil.WriteProgram(t, t.TempDir(), "hello.bf", testutil.HelloWorld+"\n")

	out, _, err := executeRun(t, &RootOptions{Format: "text"}, "", path)

	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", out)
}

func TestRunScriptedInput(t *testing.T) {
	out, _, err := executeRun(t, &RootOptions{Format: "text"}, "", "-e", ",.>,.>,.", "--input", "h", "--input", "", "--input", "ey")

	require.NoError(t, err)
	assert.Equal(t, "hey", out)
}

func TestRunStdinInput(t *testing.T) {
	out, _, err := executeRun(t, &RootOptions{Format: "text"}, "hi\nyo\n", "-e", ",.,.,.")

	require.NoError(t, err)
	assert.Equal(t, "hiy", out)
}

func TestRunStdinExhausted(t *testing.T) {
	out, _, err := executeRun(t, &RootOptions{Format: "json"}, "", "-e", ",")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp runResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "INPUT_EXHAUSTED", resp.Error.Code)
}

func TestRunUnmatchedLoopEnd(t *testing.T) {
	out, _, err := executeRun(t, &RootOptions{Format: "text"}, "", "-e", testutil.TextProgram("A")+"]")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "UNMATCHED_LOOP_END")
	assert.Equal(t, "A", out, "output before the failure is kept")
}

func TestRunUnmatchedLoopEndJSON(t *testing.T) {
	out, _, err := executeRun(t, &RootOptions{Format: "json"}, "", "-e", "+]")

	require.Error(t, err)

	var resp runResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "cli-run-test", resp.TraceID)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNMATCHED_LOOP_END", resp.Error.Code)
	assert.Equal(t, map[string]any{"pc": float64(1)}, resp.Error.Details)
	assert.Equal(t, 1, resp.Data.PC)
	assert.Equal(t, int64(1), resp.Data.Steps)
}

func TestRunJSONSuccess(t *testing.T) {
	out, _, err := executeRun(t, &RootOptions{Format: "json"}, "", "-e", testutil.HelloWorld)

	require.NoError(t, err)

	var resp runResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	assert.Equal(t, "cli-run-test", resp.TraceID)
	assert.Equal(t, RunResult{
		Output:  "Hello, World!",
		Steps:   444,
		PC:      len(testutil.HelloWorld),
		Cursor:  2,
		TapeLen: 4,
	}, resp.Data)
}

func TestRunMaxStepsFlag(t *testing.T) {
	_, _, err := executeRun(t, &RootOptions{Format: "text"}, "", "-e", "+[]", "--max-steps", "10")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "STEPS_EXCEEDED")
}

func TestRunMaxStepsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.MaxSteps = 5

	out, _, err := executeRun(t, &RootOptions{Format: "json", Config: cfg}, "", "-e", "+[]")

	require.Error(t, err)
	var resp runResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "STEPS_EXCEEDED", resp.Error.Code)
	assert.Equal(t, int64(5), resp.Data.Steps)
}

func TestRunMaxStepsFlagOverridesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.MaxSteps = 5

	_, _, err := executeRun(t, &RootOptions{Format: "text", Config: cfg}, "", "-e", testutil.HelloWorld, "--max-steps", "0")

	require.NoError(t, err)
}

func TestRunNegativeMaxSteps(t *testing.T) {
	_, _, err := executeRun(t, &RootOptions{Format: "text"}, "", "-e", "+", "--max-steps", "-1")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunMissingFile(t *testing.T) {
	_, _, err := executeRun(t, &RootOptions{Format: "text"}, "", filepath.Join(t.TempDir(), "missing.bf"))

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "program file not found")
}

func TestRunNeedsExactlyOneProgram(t *testing.T) {
	path := testutil.WriteProgram(t, t.TempDir(), "p.bf", "+")

	tests := []struct {
		name string
		args []string
	}{
		{"neither", []string{}},
		{"both", []string{path, "-e", "+"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeRun(t, &RootOptions{Format: "text"}, "", tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), "exactly one of")
		})
	}
}

func TestRunWarnsOnUnclosedLoop(t *testing.T) {
	_, stderr, err := executeRun(t, &RootOptions{Format: "text"}, "", "-e", "+[-")

	require.NoError(t, err)
	assert.Contains(t, stderr, "unbalanced bracket")
	assert.Contains(t, stderr, "is never closed")
}

func TestRunVerbose(t *testing.T) {
	_, stderr, err := executeRun(t, &RootOptions{Format: "text", Verbose: true}, "", "-e", "+")

	require.NoError(t, err)
	assert.Contains(t, stderr, "program loaded")
	assert.Contains(t, stderr, "engine_id=cli-run-test")
	assert.Contains(t, stderr, "engine cli-run-test: 1 steps")
}

func TestRunLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "bfi.log")
	cfg := config.Default()
	cfg.Log.Level = "debug"
	cfg.Log.File = logPath

	_, _, err := executeRun(t, &RootOptions{Format: "text", Config: cfg}, "", "-e", "+")
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"run halted"`)
	assert.Contains(t, string(data), `"engine_id":"cli-run-test"`)
}
