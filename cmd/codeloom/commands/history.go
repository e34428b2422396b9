package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeloom-ai/codeloom/internal/activation"
	"github.com/codeloom-ai/codeloom/internal/history"
	"github.com/codeloom-ai/codeloom/internal/project"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List or show recorded resolution snapshots",
	Long: `History lists the run identifiers recorded by 'codeloom resolve --save',
newest last. With a run identifier it prints that snapshot.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := getWorkDir()
		if err != nil {
			return err
		}
		root := dir
		if info, ok := project.FindRoot(dir); ok {
			root = info.Root
		}
		store := history.NewStore(root)

		if len(args) == 1 {
			var snap activation.Result
			if err := store.Get(cmd.Context(), args[0], &snap); err != nil {
				return err
			}
			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		runs, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, runID := range runs {
			fmt.Fprintln(cmd.OutOrStdout(), runID)
		}
		return nil
	},
}
