package commands

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/codeloom-ai/codeloom/internal/project"
	"github.com/codeloom-ai/codeloom/internal/settings"
	"github.com/codeloom-ai/codeloom/pkg/types"
)

// debounce window for editors that write config files in several steps.
const watchSettle = 200 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-resolve settings whenever the defaults artifact changes",
	Long: `Watch resolves the effective settings, then watches the project's
.codeloom directory. On every change to the defaults artifact it resolves
again and prints a diff of the effective settings.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		activator, err := newActivator(log)
		if err != nil {
			return err
		}

		res := activator.Run(cmd.Context())
		prev, err := renderSettings(res.Settings)
		if err != nil {
			return err
		}

		dir, err := getWorkDir()
		if err != nil {
			return err
		}
		watchDir := filepath.Join(dir, project.ConfigDirName)
		if res.Root != "" {
			watchDir = filepath.Join(res.Root, project.ConfigDirName)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer watcher.Close()
		if err := watcher.Add(watchDir); err != nil {
			return fmt.Errorf("watch %s: %w", watchDir, err)
		}
		log.Info().Str("dir", watchDir).Msg("watching for defaults changes")

		var settle *time.Timer
		resolveAgain := make(chan struct{}, 1)
		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !isDefaultsArtifact(ev.Name) {
					continue
				}
				if settle != nil {
					settle.Stop()
				}
				settle = time.AfterFunc(watchSettle, func() {
					select {
					case resolveAgain <- struct{}{}:
					default:
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				log.Warn().Err(err).Msg("watch error")
			case <-resolveAgain:
				res := activator.Run(cmd.Context())
				next, err := renderSettings(res.Settings)
				if err != nil {
					return err
				}
				if next == prev {
					log.Debug().Msg("defaults changed but effective settings did not")
					continue
				}
				dmp := diffmatchpatch.New()
				diffs := dmp.DiffMain(prev, next, false)
				log.Info().Str("run", res.RunID).Msg("effective settings changed")
				fmt.Fprintln(cmd.OutOrStdout(), dmp.DiffPrettyText(dmp.DiffCleanupSemantic(diffs)))
				prev = next
			}
		}
	},
}

func renderSettings(s *types.EffectiveSettings) (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func isDefaultsArtifact(path string) bool {
	name := filepath.Base(path)
	return name == settings.DefaultsFileJSON || name == settings.DefaultsFileYAML
}
