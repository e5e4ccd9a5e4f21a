package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RunResult is the JSON payload of the run command.
type RunResult struct {
	Output  string `json:"output"`
	Steps   int64  `json:"steps"`
	PC      int    `json:"pc"`
	Cursor  int    `json:"cursor"`
	TapeLen int    `json:"tape_len"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&ProgramOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *ProgramOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Run a program",
		Long: `Load a program from a file or --eval and run it to completion.

Input for ',' comes from --input lines, then from input.lines in the config
file, then from stdin, one line at a time.

Example:
  bfi run hello.bf
  bfi run -e ',.' --input hi
  bfi run loop.bf --max-steps 100000 --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runProgram(opts, path, cmd)
		},
	}

	opts.addFlags(cmd)

	return cmd
}

func runProgram(opts *ProgramOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	sess, err := newSession(opts, path, cmd)
	if err != nil {
		return err
	}
	defer sess.close()

	output, runErr := sess.run(cmd)
	eng := sess.engine

	formatter.VerboseLog("engine %s: %d steps, pc=%d, cursor=%d, tape_len=%d",
		eng.ID(), eng.Steps(), eng.PC(), eng.Cursor(), eng.TapeLen())

	if opts.Format == "json" {
		resp := CLIResponse{
			Status: "ok",
			Data: RunResult{
				Output:  output,
				Steps:   eng.Steps(),
				PC:      eng.PC(),
				Cursor:  eng.Cursor(),
				TapeLen: eng.TapeLen(),
			},
			TraceID: eng.ID(),
		}
		var exitErr *ExitError
		if runErr != nil {
			resp.Status = "error"
			resp.Error, exitErr = runtimeError(runErr)
		}
		if err := formatter.Respond(resp); err != nil {
			return err
		}
		if exitErr != nil {
			return exitErr
		}
		return nil
	}

	// Output so far is printed even when the run failed.
	fmt.Fprint(cmd.OutOrStdout(), output)
	if runErr != nil {
		_, exitErr := runtimeError(runErr)
		return exitErr
	}
	return nil
}
