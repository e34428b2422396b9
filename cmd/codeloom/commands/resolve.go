package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeloom-ai/codeloom/internal/history"
	"github.com/codeloom-ai/codeloom/internal/settings"
)

var (
	resolveFull bool
	resolveSave bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve and print the effective settings",
	Long: `Resolve runs one activation: it loads the project defaults artifact,
merges it with user configuration and the secret store, and prints the
effective settings as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		activator, err := newActivator(log)
		if err != nil {
			return err
		}

		res := activator.Run(cmd.Context())

		if resolveSave {
			root := res.Root
			if root == "" {
				root, err = getWorkDir()
				if err != nil {
					return err
				}
			}
			store := history.NewStore(root)
			snap := *res
			snap.Settings = settings.Redact(res.Settings)
			if err := store.Record(cmd.Context(), res.RunID, snap); err != nil {
				return err
			}
			if err := store.Prune(cmd.Context(), 0); err != nil {
				return err
			}
			log.Info().Str("run", res.RunID).Msg("snapshot recorded")
		}

		var out any = res.Settings
		if resolveFull {
			out = res
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveFull, "full", false, "Include run metadata (run ID, load status, scan findings)")
	resolveCmd.Flags().BoolVar(&resolveSave, "save", false, "Record a redacted snapshot under .codeloom/history")
}
