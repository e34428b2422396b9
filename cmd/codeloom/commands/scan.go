package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Audit project defaults for embedded credentials",
	Long: `Scan loads the project defaults artifact and reports every credential
field carrying a value. Defaults files are usually committed to version
control; a credential in one belongs in the secret store instead.

Exits non-zero when credentials are found, so it can gate CI.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		activator, err := newActivator(log)
		if err != nil {
			return err
		}

		res := activator.Run(cmd.Context())
		if len(res.Flagged) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no embedded credentials found")
			return nil
		}

		for _, path := range res.Flagged {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		return fmt.Errorf("%d credential field(s) embedded in project defaults", len(res.Flagged))
	},
}
