package cli

import (
	"bytes"
	"fmt"
	"io"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"expedientes/internal/export"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	Passphrase string
	Out        string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions, open OpenFunc) *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:           "export <office>",
		Short:         "Export an office's pending cases as CSV",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(rootOpts, opts, open, cmd, args[0])
		},
	}
	addPassphraseFlag(cmd, &opts.Passphrase)
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (default expedientes_<office>.csv, - for stdout)")
	return cmd
}

func runExport(rootOpts *RootOptions, opts *ExportOptions, open OpenFunc, cmd *cobra.Command, office string) error {
	out := newFormatter(rootOpts, cmd)
	return withBackend(cmd, open, func(b *Backend) error {
		if err := authorize(out, b, office, passphrase(opts.Passphrase)); err != nil {
			return err
		}
		view, err := b.Cases.Pending(cmd.Context(), office)
		if err != nil {
			return out.fail(err)
		}
		if view.Message != "" {
			_ = out.Error("SOURCE_UNAVAILABLE", view.Message)
			return NewExitError(ExitCommandError, "SOURCE_UNAVAILABLE")
		}

		body, err := export.CSV(view.Records)
		if err != nil {
			return out.fail(err)
		}

		if opts.Out == "-" {
			_, err := cmd.OutOrStdout().Write(body)
			return err
		}
		path := opts.Out
		if path == "" {
			path = export.Filename(office)
		}
		if err := atomic.WriteFile(path, bytes.NewReader(body)); err != nil {
			return out.fail(fmt.Errorf("write %s: %w", path, err))
		}
		out.VerboseLog("wrote %d bytes", len(body))

		result := map[string]any{"path": path, "records": len(view.Records)}
		return out.Success(result, func(w io.Writer) {
			fmt.Fprintf(w, "Exported %d cases to %s\n", len(view.Records), path)
		})
	})
}
