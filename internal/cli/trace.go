package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/bfi/internal/engine"
	"github.com/roach88/bfi/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	ProgramOptions
	Limit int // maximum events kept; 0 keeps all
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Events []trace.Event `json:"events"`
	Stats  TraceStats    `json:"stats"`
	Output string        `json:"output"`
	Error  string        `json:"error,omitempty"` // runtime error code
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Steps    int64 `json:"steps"`
	Recorded int   `json:"recorded"`
	Dropped  int   `json:"dropped"`
	MaxDepth int   `json:"max_depth"`
	TapeLen  int   `json:"tape_len"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	return newTraceCommand(&TraceOptions{ProgramOptions: ProgramOptions{RootOptions: rootOpts}})
}

func newTraceCommand(opts *TraceOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace [file]",
		Short: "Run a program and show every executed instruction",
		Long: `Run a program with a step recorder and print the executed instructions.

Each event shows the sequence number, the instruction and its position,
and the cursor, current cell and loop depth after it ran. Comments are
not traced.

Examples:
  bfi trace hello.bf --limit 50
  bfi trace -e '++[>+<-]' --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runTrace(opts, path, cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().IntVar(&opts.Limit, "limit", 1000, "maximum number of events to keep (0 = all)")

	return cmd
}

func runTrace(opts *TraceOptions, path string, cmd *cobra.Command) error {
	if opts.Limit < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --limit %d: must be non-negative", opts.Limit))
	}

	rec := trace.NewRecorder(opts.Limit)
	sess, err := newSession(&opts.ProgramOptions, path, cmd, engine.WithTracer(rec))
	if err != nil {
		return err
	}
	defer sess.close()

	output, runErr := sess.run(cmd)
	eng := sess.engine

	result := TraceResult{
		Events: rec.Events(),
		Stats: TraceStats{
			Steps:    eng.Steps(),
			Recorded: len(rec.Events()),
			Dropped:  rec.Dropped(),
			MaxDepth: maxDepth(rec.Events()),
			TapeLen:  eng.TapeLen(),
		},
		Output: output,
	}
	if result.Events == nil {
		result.Events = []trace.Event{}
	}

	var (
		cliErr  *CLIError
		exitErr *ExitError
	)
	if runErr != nil {
		cliErr, exitErr = runtimeError(runErr)
		result.Error = cliErr.Code
	}

	if opts.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result, TraceID: eng.ID()}
		if cliErr != nil {
			resp.Status = "error"
			resp.Error = cliErr
		}
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		if err := formatter.Respond(resp); err != nil {
			return err
		}
	} else {
		outputTraceText(cmd, eng.ID(), result)
	}

	if exitErr != nil {
		return exitErr
	}
	return nil
}

func maxDepth(events []trace.Event) int {
	depth := 0
	for _, ev := range events {
		depth = max(depth, ev.Depth)
	}
	return depth
}

// outputTraceText prints one line per event followed by a summary.
func outputTraceText(cmd *cobra.Command, engineID string, result TraceResult) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Trace for engine %s\n\n", engineID)
	fmt.Fprintf(w, "%8s %8s  %s %8s %5s %5s\n", "SEQ", "PC", "OP", "CURSOR", "CELL", "DEPTH")
	for _, ev := range result.Events {
		fmt.Fprintf(w, "%8d %8d  %s  %8d %5d %5d\n", ev.Seq, ev.PC, ev.Op, ev.Cursor, ev.Cell, ev.Depth)
	}
	if result.Stats.Dropped > 0 {
		fmt.Fprintf(w, "... %d more events not shown (raise --limit)\n", result.Stats.Dropped)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Steps: %d, tape length: %d, max loop depth: %d\n",
		result.Stats.Steps, result.Stats.TapeLen, result.Stats.MaxDepth)
	fmt.Fprintf(w, "Output: %s\n", strconv.Quote(result.Output))
	if result.Error != "" {
		fmt.Fprintf(w, "Stopped with %s\n", result.Error)
	}
}
