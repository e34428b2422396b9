package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codeloom-ai/codeloom/internal/approval"
)

var checkCmd = &cobra.Command{
	Use:   "check -- <command>",
	Short: "Evaluate auto-approval for a shell command",
	Long: `Check resolves the effective settings and evaluates whether the given
shell command would be auto-approved under the current policy
(autoApprovalEnabled and allowedCommands).`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		activator, err := newActivator(log)
		if err != nil {
			return err
		}

		res := activator.Run(cmd.Context())
		decision := approval.FromSettings(res.Settings).Evaluate(strings.Join(args, " "))

		data, err := json.MarshalIndent(decision, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))

		if !decision.Approved {
			return fmt.Errorf("not auto-approved: %s", decision.Reason)
		}
		return nil
	},
}
