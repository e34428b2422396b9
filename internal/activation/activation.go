// Package activation wires one settings-resolution run: locate the project
// root, load and audit the defaults artifact, merge it with the user
// configuration and secret stores, and publish the outcome on the event bus.
//
// Everything an activation needs is injected through Config; the package
// keeps no state between runs and each run re-reads the defaults artifact.
package activation

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/codeloom-ai/codeloom/internal/event"
	"github.com/codeloom-ai/codeloom/internal/project"
	"github.com/codeloom-ai/codeloom/internal/settings"
	"github.com/codeloom-ai/codeloom/pkg/types"
)

// Config holds the collaborators for an activation.
type Config struct {
	// Dir is the working directory to resolve the project root from.
	Dir string
	// UserConfig is the host-owned user configuration store.
	UserConfig settings.UserConfigAccessor
	// Secrets is the host-owned secret store.
	Secrets settings.SecretAccessor
	// Bus receives activation events. Optional.
	Bus *event.Bus
	// Logger receives diagnostics from every stage.
	Logger zerolog.Logger
}

// Result is the outcome of one activation.
type Result struct {
	RunID    string                   `json:"runID"`
	Root     string                   `json:"root,omitempty"`
	Status   settings.LoadStatus      `json:"status"`
	Flagged  []string                 `json:"flagged,omitempty"`
	Settings *types.EffectiveSettings `json:"settings"`
}

// Activator runs settings resolutions.
type Activator struct {
	cfg Config
}

// New creates an activator. Nil accessors are replaced with inert ones so a
// partially wired host still resolves to usable settings.
func New(cfg Config) *Activator {
	if cfg.UserConfig == nil {
		cfg.UserConfig = inertUserConfig{}
	}
	if cfg.Secrets == nil {
		cfg.Secrets = inertSecrets{}
	}
	return &Activator{cfg: cfg}
}

// Run performs one activation. It never fails: every anomaly is absorbed
// into logs and events, and the returned settings always satisfy the
// engine's structural guarantees.
func (a *Activator) Run(ctx context.Context) *Result {
	runID := ulid.Make().String()
	log := a.cfg.Logger.With().Str("run", runID).Logger()

	result := &Result{RunID: runID}

	var root string
	if info, ok := project.FindRoot(a.cfg.Dir); ok {
		root = info.Root
		result.Root = root
		log.Debug().Str("root", root).Str("vcs", info.VCS).Msg("project root located")
	} else {
		log.Debug().Str("dir", a.cfg.Dir).Msg("no project root")
	}

	tree, status := settings.NewLoader(root, log).Load()
	result.Status = status
	if status.Outcome == settings.OutcomeMalformed {
		a.publish(event.Event{Type: event.DefaultsRejected, Data: event.DefaultsRejectedData{
			RunID:  runID,
			Path:   status.Path,
			Reason: status.Reason,
		}})
	}

	if flagged := settings.Scan(tree); len(flagged) > 0 {
		result.Flagged = flagged
		for _, path := range flagged {
			log.Warn().Str("key", path).Msg("credential value embedded in project defaults")
		}
		a.publish(event.Event{Type: event.SecurityFlagged, Data: event.SecurityFlaggedData{
			RunID: runID,
			Paths: flagged,
		}})
	}

	result.Settings = settings.Merge(ctx, tree, a.cfg.UserConfig, a.cfg.Secrets, log)

	a.publish(event.Event{Type: event.SettingsResolved, Data: event.SettingsResolvedData{
		RunID:    runID,
		Settings: result.Settings,
	}})
	log.Info().
		Str("profile", result.Settings.ProviderProfiles.CurrentApiConfigName).
		Int("profiles", len(result.Settings.ProviderProfiles.ApiConfigs)).
		Msg("settings resolved")

	return result
}

func (a *Activator) publish(e event.Event) {
	if a.cfg.Bus != nil {
		a.cfg.Bus.Publish(e)
	}
}

type inertUserConfig struct{}

func (inertUserConfig) Inspect(string) settings.Inspection { return settings.Inspection{} }
func (inertUserConfig) Get(string) (any, bool)             { return nil, false }

type inertSecrets struct{}

func (inertSecrets) Get(context.Context, string) (string, bool, error) { return "", false, nil }
