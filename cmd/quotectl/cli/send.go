package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/customtruckbeds/site/internal/quote"
)

type sendSummary struct {
	Status     quote.Status   `json:"status"`
	ID         string         `json:"id,omitempty"`
	StatusCode int            `json:"status_code,omitempty"`
	Payload    *quote.Payload `json:"payload,omitempty"`
}

func newSendCommand(opts Options) *cobra.Command {
	var (
		endpoint   string
		timeout    time.Duration
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "send [file|-]",
		Short: "Validate a quote request and post it to a webhook",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(cmd.InOrStdin(), firstArg(args))
			if err != nil {
				return err
			}
			service := quote.NewService(quote.ServiceParams{
				Dispatcher: opts.Dispatcher,
				Mode:       quote.ModeFixed,
				Endpoint:   endpoint,
				Timeout:    timeout,
			})
			_, result, err := service.Submit(cmd.Context(), "quotectl", quote.FormState{Values: req})

			var verr *quote.ValidationError
			if errors.As(err, &verr) {
				printFieldErrors(cmd.OutOrStdout(), verr.Fields)
				return ErrInvalid
			}
			if err != nil {
				return err
			}

			summary := sendSummary{Status: result.Status, ID: result.ID, StatusCode: result.Receipt.StatusCode, Payload: result.Payload}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), summary)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (HTTP %d)\n", summary.Status, summary.ID, summary.StatusCode)
			return nil
		},
	}
	cmd.Flags().StringVar(&endpoint, "url", quote.DefaultWebhookURL, "webhook endpoint")
	cmd.Flags().DurationVar(&timeout, "timeout", quote.DefaultDispatchTimeout, "request timeout")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")
	return cmd
}
