package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"expedientes/internal/auth"
	"expedientes/internal/service"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Backend is what the commands operate on.
type Backend struct {
	Cases service.CaseService
	Gate  auth.Gate
}

// OpenFunc builds the backend for one command run; the returned func releases it.
type OpenFunc func(ctx context.Context) (*Backend, func() error, error)

// NewRootCommand creates the root command of the operator CLI.
func NewRootCommand(open OpenFunc) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "expedientes",
		Short: "Pending case records and DRCM forwarded dates",
		Long: `Operate on the shared case spreadsheet from the command line.

Lists offices, shows an office's pending cases, records the date a case was
forwarded to DRCM and exports an office's pending cases as CSV. Office
commands require the office passphrase.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewOfficesCommand(opts, open))
	cmd.AddCommand(NewPendingCommand(opts, open))
	cmd.AddCommand(NewUpdateCommand(opts, open))
	cmd.AddCommand(NewExportCommand(opts, open))

	return cmd
}

// withBackend opens the backend, runs fn and releases the backend.
func withBackend(cmd *cobra.Command, open OpenFunc, fn func(b *Backend) error) error {
	b, closeFn, err := open(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot open case store", err)
	}
	defer closeFn()
	return fn(b)
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
