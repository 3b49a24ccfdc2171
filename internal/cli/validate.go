package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/cooksync/internal/cook"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Asset  string   `json:"asset,omitempty"`
	Issues []string `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <cook.yaml>",
		Short: "Validate a cook result without syncing",
		Long: `Check a cook result file against the cook schema.

Reports unknown keys, missing fields and mistyped values without touching
the database.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(rootOpts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", rootOpts.Format, ValidFormats))
			}
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("cook result not found: %s", path), err)
	}

	if err := cook.Validate(data); err != nil {
		var verr *cook.ValidationError
		if errors.As(err, &verr) {
			return outputValidationIssues(f, verr.Issues)
		}
		return outputValidationIssues(f, []string{err.Error()})
	}

	result, err := cook.Parse(data)
	if err != nil {
		return outputValidationIssues(f, []string{err.Error()})
	}

	if f.Format == "json" {
		return f.Success(ValidationResult{Valid: true, Asset: result.Asset})
	}
	fmt.Fprintf(f.Writer, "✓ Cook result valid (asset %s)\n", result.Asset)
	return nil
}

// outputValidationIssues outputs every schema violation.
func outputValidationIssues(f *OutputFormatter, issues []string) error {
	if f.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Issues: issues,
			},
			Error: &CLIError{
				Code:    ErrCodeInvalidCook,
				Message: issues[0],
			},
		}

		encoder := json.NewEncoder(f.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d issue(s)", len(issues)))
	}

	// Text format
	fmt.Fprintln(f.Writer, "✗ Validation failed")
	fmt.Fprintln(f.Writer)

	for _, issue := range issues {
		fmt.Fprintf(f.Writer, "  %s: %s\n", ErrCodeInvalidCook, issue)
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d issue(s)", len(issues)))
}
