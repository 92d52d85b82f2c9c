// Package cli implements the quotectl operator commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/customtruckbeds/site/internal/quote"
)

// Options injects IO and backends for tests.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Dispatcher overrides the HTTP webhook client used by send.
	Dispatcher quote.Dispatcher
	// Inspector overrides the Redis-backed queue inspector used by queue.
	Inspector QueueInspector
}

// ErrInvalid marks a request that failed validation. The field errors have
// already been printed.
var ErrInvalid = errors.New("quote request is invalid")

// NewRootCommand builds the quotectl command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	root := &cobra.Command{
		Use:           "quotectl",
		Short:         "Operate the Custom Truck Beds quote pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(opts.Stdin)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)

	root.AddCommand(newValidateCommand(opts), newSendCommand(opts), newQueueCommand(opts))
	return root
}

// readRequest decodes a quote request from a file path, or stdin for "-".
func readRequest(in io.Reader, path string) (quote.Request, error) {
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return quote.Request{}, err
		}
		defer f.Close()
		in = f
	}
	dec := json.NewDecoder(in)
	dec.DisallowUnknownFields()
	var req quote.Request
	if err := dec.Decode(&req); err != nil {
		return quote.Request{}, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
