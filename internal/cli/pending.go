package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"expedientes/internal/model"
)

// PendingOptions holds flags for the pending command.
type PendingOptions struct {
	Passphrase string
}

// NewPendingCommand creates the pending command.
func NewPendingCommand(rootOpts *RootOptions, open OpenFunc) *cobra.Command {
	opts := &PendingOptions{}

	cmd := &cobra.Command{
		Use:   "pending <office>",
		Short: "Show an office's pending cases",
		Long: `Show the cases of an office whose status is pending.

When the case store cannot be read the list is empty and a notice is printed
instead.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPending(rootOpts, opts, open, cmd, args[0])
		},
	}
	addPassphraseFlag(cmd, &opts.Passphrase)
	return cmd
}

func runPending(rootOpts *RootOptions, opts *PendingOptions, open OpenFunc, cmd *cobra.Command, office string) error {
	out := newFormatter(rootOpts, cmd)
	return withBackend(cmd, open, func(b *Backend) error {
		if err := authorize(out, b, office, passphrase(opts.Passphrase)); err != nil {
			return err
		}
		view, err := b.Cases.Pending(cmd.Context(), office)
		if err != nil {
			return out.fail(err)
		}
		out.VerboseLog("%d pending cases for %s", len(view.Records), office)
		return out.Success(view, func(w io.Writer) {
			if view.Message != "" {
				fmt.Fprintln(w, view.Message)
				return
			}
			writeTable(w, view.Records)
		})
	})
}

func writeTable(w io.Writer, records []model.CaseRecord) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CASE\tSTATUS\tSTAGE START\tDAYS\tFORWARDED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.CaseID, r.Status, day(r.StageStartDate), days(r.DaysRemaining), day(r.ForwardedDate))
	}
	tw.Flush()
}

func passphrase(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(passphraseEnv)
}
