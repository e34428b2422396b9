// Package commands provides the CLI commands for the codeloom settings
// engine.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/codeloom-ai/codeloom/internal/activation"
	"github.com/codeloom-ai/codeloom/internal/hostconf"
	"github.com/codeloom-ai/codeloom/internal/logging"
	"github.com/codeloom-ai/codeloom/internal/secrets"
	"github.com/codeloom-ai/codeloom/internal/settings"
)

// Version information set at build time
var (
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	logLevel      string
	prettyLogs    bool
	workDir       string
	globalConfig  string
	workspaceConf string
	secretsFile   string
)

var rootCmd = &cobra.Command{
	Use:   "codeloom",
	Short: "Codeloom settings engine",
	Long: `Codeloom resolves the effective configuration for the codeloom assistant
from project defaults, user configuration, and the secret store.

Run 'codeloom resolve' to print the effective settings, 'codeloom scan' to
audit project defaults for embedded credentials, or 'codeloom serve' to
expose the settings read model over HTTP.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().BoolVar(&prettyLogs, "pretty-logs", false, "Human-readable log output")
	rootCmd.PersistentFlags().StringVar(&workDir, "dir", "", "Working directory (defaults to the current directory)")
	rootCmd.PersistentFlags().StringVar(&globalConfig, "user-config", "", "Path to the global settings document")
	rootCmd.PersistentFlags().StringVar(&workspaceConf, "workspace-config", "", "Path to the workspace settings document")
	rootCmd.PersistentFlags().StringVar(&secretsFile, "secrets-file", "", "Path to a dotenv secrets file")

	rootCmd.SetVersionTemplate(fmt.Sprintf("codeloom %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newLogger() zerolog.Logger {
	return logging.New(logging.Config{
		Level:  logging.ParseLevel(logLevel),
		Pretty: prettyLogs,
	})
}

func getWorkDir() (string, error) {
	if workDir != "" {
		return workDir, nil
	}
	return os.Getwd()
}

func configHome() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "codeloom")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "codeloom")
}

// newActivator assembles the collaborators an activation needs: the
// two-scope user configuration store and the secret-store chain
// (dotenv file first, process environment second).
func newActivator(log zerolog.Logger) (*activation.Activator, error) {
	dir, err := getWorkDir()
	if err != nil {
		return nil, err
	}

	globalPath := globalConfig
	if globalPath == "" && configHome() != "" {
		globalPath = filepath.Join(configHome(), "settings.json")
	}
	workspacePath := workspaceConf
	if workspacePath == "" {
		workspacePath = filepath.Join(dir, ".codeloom", "settings.json")
	}

	dotenvPath := secretsFile
	if dotenvPath == "" && configHome() != "" {
		dotenvPath = filepath.Join(configHome(), "secrets.env")
	}
	dotenv, err := secrets.LoadDotenv(dotenvPath)
	if err != nil {
		return nil, err
	}

	var secretStore settings.SecretAccessor = secrets.Chain{dotenv, secrets.Env{}}

	return activation.New(activation.Config{
		Dir:        dir,
		UserConfig: hostconf.Load(globalPath, workspacePath, log),
		Secrets:    secretStore,
		Logger:     log,
	}), nil
}
