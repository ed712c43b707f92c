package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"expedientes/internal/schema"
	"expedientes/internal/service"
)

// UpdateOptions holds flags for the update command.
type UpdateOptions struct {
	Office     string
	Passphrase string
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions, open OpenFunc) *cobra.Command {
	opts := &UpdateOptions{}

	cmd := &cobra.Command{
		Use:   "update <case-id> <forwarded-date>",
		Short: "Record the date a case was forwarded to DRCM",
		Long: `Record the date a case was forwarded to DRCM.

The date is read day-first (DD/MM/YYYY) or as YYYY-MM-DD. The case must
belong to --office.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(rootOpts, opts, open, cmd, args[0], args[1])
		},
	}
	cmd.Flags().StringVar(&opts.Office, "office", "", "office submitting the update")
	_ = cmd.MarkFlagRequired("office")
	addPassphraseFlag(cmd, &opts.Passphrase)
	return cmd
}

func runUpdate(rootOpts *RootOptions, opts *UpdateOptions, open OpenFunc, cmd *cobra.Command, caseID, date string) error {
	out := newFormatter(rootOpts, cmd)
	return withBackend(cmd, open, func(b *Backend) error {
		if err := authorize(out, b, opts.Office, passphrase(opts.Passphrase)); err != nil {
			return err
		}
		res, err := b.Cases.SubmitUpdate(cmd.Context(), service.UpdateRequest{
			CaseID:        caseID,
			Office:        opts.Office,
			ForwardedDate: date,
		})
		if err != nil {
			return out.fail(err)
		}
		return out.SuccessWithWarning(res, res.Warning, func(w io.Writer) {
			fmt.Fprintf(w, "Case %s forwarded on %s (%s days)\n",
				res.Record.CaseID, res.Entry.ForwardedDate.Format(schema.DisplayLayout), days(res.Record.DaysRemaining))
		})
	})
}

func day(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(schema.DisplayLayout)
}

func days(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}
