package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/bfi/internal/engine"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	File   string             `json:"file"`
	Valid  bool               `json:"valid"`
	Errors []engine.LoopError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a program for unbalanced brackets without running it",
		Long: `Check that every '[' in a program has a matching ']'.

A ']' without a matching '[' stops a run with UNMATCHED_LOOP_END once it is
reached. A '[' that is never closed does not fail a run but usually means
the program is wrong. Both are reported with line and column.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		code, msg := ErrCodeReadFailed, fmt.Sprintf("reading %s: %v", path, err)
		if errors.Is(err, fs.ErrNotExist) {
			code, msg = ErrCodeNotFound, fmt.Sprintf("program file not found: %s", path)
		}
		if outErr := formatter.Error(code, msg, nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, msg, err)
	}

	formatter.VerboseLog("Checking %d bytes in %s", len(data), path)

	loopErrs := engine.CheckLoops(string(data))
	result := ValidationResult{
		File:   path,
		Valid:  len(loopErrs) == 0,
		Errors: loopErrs,
	}

	if result.Valid {
		if opts.Format == "json" {
			return formatter.Success(result)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: brackets balanced\n", path)
		return nil
	}

	return outputValidationErrors(formatter, result)
}

// outputValidationErrors reports unbalanced brackets and returns exit code 1.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	msg := fmt.Sprintf("%d unbalanced bracket(s)", len(result.Errors))

	if formatter.Format == "json" {
		if err := formatter.Respond(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeUnbalanced,
				Message: msg,
			},
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✗ %s: %s\n", result.File, msg)
	for _, le := range result.Errors {
		fmt.Fprintf(w, "  %s:%s\n", result.File, le.Error())
	}
	return NewExitError(ExitFailure, msg)
}
