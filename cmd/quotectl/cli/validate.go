package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/customtruckbeds/site/internal/quote"
)

type validateSummary struct {
	Valid  bool              `json:"valid"`
	Errors quote.FieldErrors `json:"errors,omitempty"`
}

func newValidateCommand(opts Options) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "validate [file|-]",
		Short: "Check a quote request against the form rules",
		Long:  "Reads a quote request as JSON (form field names) and prints any field errors.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(cmd.InOrStdin(), firstArg(args))
			if err != nil {
				return err
			}
			errs := quote.Validate(req)
			out := cmd.OutOrStdout()
			if jsonOutput {
				if err := writeJSON(out, validateSummary{Valid: len(errs) == 0, Errors: errs}); err != nil {
					return err
				}
			} else {
				printFieldErrors(out, errs)
			}
			if len(errs) > 0 {
				return ErrInvalid
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")
	return cmd
}

func printFieldErrors(w io.Writer, errs quote.FieldErrors) {
	if len(errs) == 0 {
		fmt.Fprintln(w, "ok")
		return
	}
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(w, "%s: %s\n", field, errs[field])
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
