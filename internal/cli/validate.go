package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// validatePayload is the JSON shape of a validation run.
type validatePayload struct {
	Valid     bool     `json:"valid"`
	RuleCount int      `json:"rule_count"`
	FileCount int      `json:"file_count"`
	Errors    []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <rules-dir>",
		Short: "Validate CUE rule files without running them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{
				Format:    opts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   opts.Verbose,
			}

			loaded, errs := LoadRules(args[0])
			payload := validatePayload{Valid: len(errs) == 0}
			if loaded != nil {
				payload.RuleCount = len(loaded.Rules)
				payload.FileCount = loaded.FileCount
			}
			for _, e := range errs {
				payload.Errors = append(payload.Errors, e.Error())
			}

			if err := f.SuccessText(payload, func(w io.Writer) {
				if payload.Valid {
					fmt.Fprintf(w, "ok: %d rules in %d files\n", payload.RuleCount, payload.FileCount)
					return
				}
				for _, msg := range payload.Errors {
					fmt.Fprintln(w, msg)
				}
				fmt.Fprintf(w, "%d errors\n", len(payload.Errors))
			}); err != nil {
				return err
			}

			if !payload.Valid {
				return NewExitError(ExitFailure, "validation failed")
			}
			return nil
		},
	}
	return cmd
}
