package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewOfficesCommand creates the offices command.
func NewOfficesCommand(rootOpts *RootOptions, open OpenFunc) *cobra.Command {
	return &cobra.Command{
		Use:           "offices",
		Short:         "List the offices that appear in the case store",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOffices(rootOpts, open, cmd)
		},
	}
}

func runOffices(rootOpts *RootOptions, open OpenFunc, cmd *cobra.Command) error {
	out := newFormatter(rootOpts, cmd)
	return withBackend(cmd, open, func(b *Backend) error {
		offices, err := b.Cases.ListOffices(cmd.Context())
		if err != nil {
			return out.fail(err)
		}
		out.VerboseLog("%d offices", len(offices))
		return out.Success(offices, func(w io.Writer) {
			for _, o := range offices {
				fmt.Fprintln(w, o)
			}
		})
	})
}
