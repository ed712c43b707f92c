package cli

import (
	"github.com/spf13/cobra"
)

const passphraseEnv = "EXPEDIENTES_PASSPHRASE"

// addPassphraseFlag registers --passphrase; EXPEDIENTES_PASSPHRASE is used when the flag is absent.
func addPassphraseFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVar(dst, "passphrase", "", "office passphrase (default $"+passphraseEnv+")")
}

// authorize checks the passphrase of office and reports a failure through out.
func authorize(out *OutputFormatter, b *Backend, office, passphrase string) error {
	if b.Gate.Authorize(office, passphrase) {
		return nil
	}
	_ = out.Error("UNAUTHORIZED", "invalid office or passphrase")
	return NewExitError(ExitFailure, "UNAUTHORIZED")
}
