package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeloom-ai/codeloom/pkg/types"
)

// fakeUserConfig is a two-scope user configuration store keyed by settings
// path, mirroring the host's inspect/get contract.
type fakeUserConfig struct {
	workspace map[string]any
	global    map[string]any
	// phantom lists keys Inspect claims are overridden even though Get
	// returns nothing for them.
	phantom []string
}

func (f *fakeUserConfig) Inspect(key string) Inspection {
	var insp Inspection
	if _, ok := f.workspace[key]; ok {
		insp.HasWorkspaceOverride = true
	}
	if _, ok := f.global[key]; ok {
		insp.HasGlobalOverride = true
	}
	for _, k := range f.phantom {
		if k == key {
			insp.HasWorkspaceOverride = true
		}
	}
	return insp
}

func (f *fakeUserConfig) Get(key string) (any, bool) {
	if v, ok := f.workspace[key]; ok {
		return v, true
	}
	if v, ok := f.global[key]; ok {
		return v, true
	}
	return nil, false
}

type fakeSecrets struct {
	values map[string]string
	errs   map[string]error
	calls  []string
}

func (f *fakeSecrets) Get(_ context.Context, key string) (string, bool, error) {
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return "", false, err
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func emptyUserConfig() *fakeUserConfig { return &fakeUserConfig{} }

func noSecrets() *fakeSecrets { return &fakeSecrets{} }

func defaultsWithProfiles(current string, names []string, profiles map[string]map[string]any) *types.DefaultsTree {
	return &types.DefaultsTree{
		ProviderProfiles: &types.ProfilesDocument{
			CurrentApiConfigName: current,
			ApiConfigs:           profiles,
			ConfigOrder:          names,
		},
	}
}

func TestMergeNoSources(t *testing.T) {
	eff := Merge(context.Background(), nil, emptyUserConfig(), noSecrets(), zerolog.Nop())

	require.Len(t, eff.ProviderProfiles.ApiConfigs, 1)
	assert.Equal(t, "default", eff.ProviderProfiles.CurrentApiConfigName)
	assert.Equal(t, "gemini", eff.ProviderProfiles.ApiConfigs["default"].ApiProvider)
	assert.Equal(t, types.DefaultMode, eff.GlobalSettings.Mode)
}

func TestMergeDefaultProfileWithoutSecret(t *testing.T) {
	defaults := defaultsWithProfiles("", []string{"acme"}, map[string]map[string]any{
		"acme": {"apiProvider": "anthropic", "geminiApiKey": "sk-default"},
	})

	eff := Merge(context.Background(), defaults, emptyUserConfig(), noSecrets(), zerolog.Nop())

	acme := eff.ProviderProfiles.ApiConfigs["acme"]
	assert.Equal(t, "anthropic", acme.ApiProvider)
	assert.Equal(t, "sk-default", acme.GeminiApiKey)
	// No current name anywhere, so the first (and only) profile is chosen.
	assert.Equal(t, "acme", eff.ProviderProfiles.CurrentApiConfigName)
}

func TestMergeSecretWinsOverDefaultAndUser(t *testing.T) {
	defaults := defaultsWithProfiles("acme", []string{"acme"}, map[string]map[string]any{
		"acme": {"apiProvider": "anthropic", "geminiApiKey": "sk-default"},
	})
	user := &fakeUserConfig{workspace: map[string]any{
		"providerProfiles.apiConfigs": map[string]any{
			"acme": map[string]any{"geminiApiKey": "sk-user"},
		},
	}}
	secrets := &fakeSecrets{values: map[string]string{
		"codeloom.providerProfiles.apiConfigs.acme.geminiApiKey": "sk-secret",
	}}

	eff := Merge(context.Background(), defaults, user, secrets, zerolog.Nop())

	assert.Equal(t, "sk-secret", eff.ProviderProfiles.ApiConfigs["acme"].GeminiApiKey)
}

func TestMergeSecretBackfillForUntouchedProfile(t *testing.T) {
	// The user configuration never mentions acme; its credential still
	// arrives from the secret store.
	defaults := defaultsWithProfiles("", []string{"acme"}, map[string]map[string]any{
		"acme": {"apiProvider": "anthropic", "geminiApiKey": "sk-default"},
	})
	user := &fakeUserConfig{workspace: map[string]any{
		"providerProfiles.apiConfigs": map[string]any{
			"other": map[string]any{"apiProvider": "openai"},
		},
	}}
	secrets := &fakeSecrets{values: map[string]string{
		"codeloom.providerProfiles.apiConfigs.acme.geminiApiKey": "sk-secret",
	}}

	eff := Merge(context.Background(), defaults, user, secrets, zerolog.Nop())

	assert.Equal(t, "sk-secret", eff.ProviderProfiles.ApiConfigs["acme"].GeminiApiKey)
	assert.Equal(t, "openai", eff.ProviderProfiles.ApiConfigs["other"].ApiProvider)
}

func TestMergeSecretBackfillWithoutAnyVisibleConfig(t *testing.T) {
	// A profile authorized purely via secret storage: the defaults name the
	// profile but carry no credential at all.
	defaults := defaultsWithProfiles("", []string{"acme"}, map[string]map[string]any{
		"acme": {"apiProvider": "openrouter"},
	})
	secrets := &fakeSecrets{values: map[string]string{
		"codeloom.providerProfiles.apiConfigs.acme.openRouterApiKey": "sk-vault",
	}}

	eff := Merge(context.Background(), defaults, emptyUserConfig(), secrets, zerolog.Nop())

	assert.Equal(t, "sk-vault", eff.ProviderProfiles.ApiConfigs["acme"].OpenRouterApiKey)
}

func TestMergeUserOverridesDefaultMode(t *testing.T) {
	defaults := &types.DefaultsTree{GlobalSettings: map[string]any{"mode": "code"}}
	user := &fakeUserConfig{workspace: map[string]any{"globalSettings.mode": "architect"}}

	eff := Merge(context.Background(), defaults, user, noSecrets(), zerolog.Nop())

	assert.Equal(t, "architect", eff.GlobalSettings.Mode)
}

func TestMergeDefaultOnlyGlobalSettings(t *testing.T) {
	defaults := &types.DefaultsTree{GlobalSettings: map[string]any{
		"autoApprovalEnabled": true,
		"allowedCommands":     []any{"git status", "npm test"},
	}}

	eff := Merge(context.Background(), defaults, emptyUserConfig(), noSecrets(), zerolog.Nop())

	require.NotNil(t, eff.GlobalSettings.AutoApprovalEnabled)
	assert.True(t, *eff.GlobalSettings.AutoApprovalEnabled)
	assert.Equal(t, []string{"git status", "npm test"}, eff.GlobalSettings.AllowedCommands)
}

func TestMergeHostOnlyGlobalSettings(t *testing.T) {
	// Settings present only in the host's globalSettings object, with no
	// corresponding default, are copied across.
	user := &fakeUserConfig{global: map[string]any{
		"globalSettings": map[string]any{
			"experiments": map[string]any{"powerSteering": true},
		},
	}}

	eff := Merge(context.Background(), nil, user, noSecrets(), zerolog.Nop())

	assert.Equal(t, map[string]any{"powerSteering": true}, eff.GlobalSettings.Experiments)
}

func TestMergePhantomOverrideFallsBackToDefault(t *testing.T) {
	defaults := &types.DefaultsTree{GlobalSettings: map[string]any{"mode": "ask"}}
	user := &fakeUserConfig{phantom: []string{"globalSettings.mode"}}

	eff := Merge(context.Background(), defaults, user, noSecrets(), zerolog.Nop())

	assert.Equal(t, "ask", eff.GlobalSettings.Mode)
}

func TestMergeInvalidProviderDropped(t *testing.T) {
	defaults := defaultsWithProfiles("", []string{"x"}, map[string]map[string]any{
		"x": {"apiProvider": "not-a-real-provider", "apiModelId": "some-model"},
	})

	eff := Merge(context.Background(), defaults, emptyUserConfig(), noSecrets(), zerolog.Nop())

	x := eff.ProviderProfiles.ApiConfigs["x"]
	assert.Empty(t, x.ApiProvider, "invalid provider must be dropped, not substituted")
	assert.Equal(t, "some-model", x.ApiModelId, "rest of the profile still merges")
}

func TestMergeUserOnlyProfile(t *testing.T) {
	user := &fakeUserConfig{workspace: map[string]any{
		"providerProfiles.apiConfigs": map[string]any{
			"y": map[string]any{"apiProvider": "openrouter", "openRouterModelId": "meta/llama-3"},
		},
	}}

	eff := Merge(context.Background(), nil, user, noSecrets(), zerolog.Nop())

	require.Len(t, eff.ProviderProfiles.ApiConfigs, 1)
	y := eff.ProviderProfiles.ApiConfigs["y"]
	assert.Equal(t, "openrouter", y.ApiProvider)
	assert.Equal(t, "meta/llama-3", y.OpenRouterModelId)
	assert.Equal(t, "y", eff.ProviderProfiles.CurrentApiConfigName)
}

func TestMergeNonStringHostFieldDroppedWithWarning(t *testing.T) {
	defaults := defaultsWithProfiles("acme", []string{"acme"}, map[string]map[string]any{
		"acme": {"apiProvider": "anthropic", "apiModelId": "claude-3"},
	})
	user := &fakeUserConfig{workspace: map[string]any{
		"providerProfiles.apiConfigs": map[string]any{
			"acme": map[string]any{"apiModelId": 42},
		},
	}}

	var logBuf bytes.Buffer
	eff := Merge(context.Background(), defaults, user, noSecrets(), zerolog.New(&logBuf))

	// the bad host value neither applies nor clobbers the default
	assert.Equal(t, "claude-3", eff.ProviderProfiles.ApiConfigs["acme"].ApiModelId)
	assert.Contains(t, logBuf.String(), "non-string profile field in user configuration")
	assert.Contains(t, logBuf.String(), "apiModelId")
}

func TestMergeCurrentNameFromHostWins(t *testing.T) {
	defaults := defaultsWithProfiles("acme", []string{"acme", "beta"}, map[string]map[string]any{
		"acme": {"apiProvider": "anthropic"},
		"beta": {"apiProvider": "openai"},
	})
	user := &fakeUserConfig{global: map[string]any{
		"providerProfiles.currentApiConfigName": "beta",
	}}

	eff := Merge(context.Background(), defaults, user, noSecrets(), zerolog.Nop())

	assert.Equal(t, "beta", eff.ProviderProfiles.CurrentApiConfigName)
}

func TestMergeCurrentNameMissingProfileHealed(t *testing.T) {
	defaults := defaultsWithProfiles("ghost", []string{"acme"}, map[string]map[string]any{
		"acme": {"apiProvider": "anthropic"},
	})

	eff := Merge(context.Background(), defaults, emptyUserConfig(), noSecrets(), zerolog.Nop())

	assert.Equal(t, "acme", eff.ProviderProfiles.CurrentApiConfigName)
	assert.True(t, eff.ProviderProfiles.HasConfig(eff.ProviderProfiles.CurrentApiConfigName))
}

func TestMergeSecretErrorTreatedAsMiss(t *testing.T) {
	user := &fakeUserConfig{workspace: map[string]any{
		"providerProfiles.apiConfigs": map[string]any{
			"acme": map[string]any{"geminiApiKey": "sk-user"},
		},
	}}
	secrets := &fakeSecrets{errs: map[string]error{
		"codeloom.providerProfiles.apiConfigs.acme.geminiApiKey": errors.New("store unavailable"),
	}}

	eff := Merge(context.Background(), nil, user, secrets, zerolog.Nop())

	assert.Equal(t, "sk-user", eff.ProviderProfiles.ApiConfigs["acme"].GeminiApiKey)
}

func TestMergeIdempotent(t *testing.T) {
	defaults := defaultsWithProfiles("acme", []string{"acme", "beta"}, map[string]map[string]any{
		"acme": {"apiProvider": "anthropic", "geminiApiKey": "sk-default"},
		"beta": {"apiProvider": "openai", "apiModelId": "gpt-4o"},
	})
	user := &fakeUserConfig{
		workspace: map[string]any{"globalSettings.mode": "architect"},
		global: map[string]any{
			"providerProfiles.apiConfigs": map[string]any{
				"beta": map[string]any{"openAiApiKey": "sk-user"},
			},
		},
	}
	values := map[string]string{
		"codeloom.providerProfiles.apiConfigs.acme.geminiApiKey": "sk-secret",
	}

	first := Merge(context.Background(), defaults, user, &fakeSecrets{values: values}, zerolog.Nop())
	second := Merge(context.Background(), defaults, user, &fakeSecrets{values: values}, zerolog.Nop())

	assert.Equal(t, first, second)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMergeProfileOrderDeterministic(t *testing.T) {
	defaults := defaultsWithProfiles("", []string{"zeta", "alpha"}, map[string]map[string]any{
		"zeta":  {"apiProvider": "anthropic"},
		"alpha": {"apiProvider": "openai"},
	})

	eff := Merge(context.Background(), defaults, emptyUserConfig(), noSecrets(), zerolog.Nop())

	// Insertion order, not lexical order: zeta came first in the artifact.
	assert.Equal(t, []string{"zeta", "alpha"}, eff.ProviderProfiles.ConfigOrder)
	assert.Equal(t, "zeta", eff.ProviderProfiles.CurrentApiConfigName)
}
