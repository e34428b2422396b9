package settings

import (
	"context"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/rs/zerolog"

	"github.com/codeloom-ai/codeloom/pkg/types"
)

// Merge combines project defaults, the user configuration store, and the
// secret store into effective settings under strict precedence: secret store
// over user configuration over defaults over hard-coded fallback.
//
// Merge never fails. Every anomaly is local: the offending field is skipped
// and logged, and the result always satisfies the structural guarantees
// (apiConfigs non-empty, currentApiConfigName resolvable).
func Merge(ctx context.Context, defaults *types.DefaultsTree, userConfig UserConfigAccessor, secrets SecretAccessor, log zerolog.Logger) *types.EffectiveSettings {
	m := &merger{
		defaults:   defaults,
		user:       userConfig,
		secrets:    secrets,
		log:        log.With().Str("component", "merger").Logger(),
		out:        &types.EffectiveSettings{},
		secretWins: make(map[string]map[string]bool),
	}

	m.mergeGlobalSettings()
	m.mergeCurrentName()
	m.mergeProfiles(ctx)
	m.resolveCurrentProfile()

	return m.out
}

type merger struct {
	defaults *types.DefaultsTree
	user     UserConfigAccessor
	secrets  SecretAccessor
	log      zerolog.Logger
	out      *types.EffectiveSettings

	// secretWins records profile/field pairs whose value came from the
	// secret store during the user overlay, so the backfill pass does not
	// look them up twice.
	secretWins map[string]map[string]bool
}

// mergeGlobalSettings resolves the globalSettings namespace: for every
// recognized setting the defaults carry, a host override wins, otherwise the
// default applies; host-only settings are then copied across; finally the
// baseline mode is enforced.
func (m *merger) mergeGlobalSettings() {
	gs := &m.out.GlobalSettings

	if m.defaults != nil && m.defaults.GlobalSettings != nil {
		for _, f := range types.GlobalSettingsFields {
			dv, present := m.defaults.GlobalSettings[f.Name]
			if !present {
				continue
			}

			key := "globalSettings." + f.Name
			if m.user.Inspect(key).Overridden() {
				if hv, ok := m.user.Get(key); ok && f.Assign(gs, hv) {
					continue
				}
				// The host claims an override but returned nothing
				// usable for it; fall back to the default.
			}
			if f.Assign(gs, dv) {
				m.log.Debug().Str("key", key).Msg("applied project default")
			} else {
				m.log.Warn().Str("key", key).Msg("project default has unexpected shape, dropped")
			}
		}

		for _, key := range unrecognizedKeys(m.defaults.GlobalSettings) {
			m.log.Debug().Str("key", "globalSettings."+key).Msg("unrecognized setting in defaults, ignored")
		}
	}

	// Host-only settings with no corresponding default.
	if raw, ok := m.user.Get("globalSettings"); ok {
		if obj, ok := raw.(map[string]any); ok {
			for _, f := range types.GlobalSettingsFields {
				if f.IsSet(gs) {
					continue
				}
				if hv, present := obj[f.Name]; present {
					f.Assign(gs, hv)
				}
			}
		}
	}

	if gs.Mode == "" {
		gs.Mode = types.DefaultMode
		m.log.Debug().Str("mode", types.DefaultMode).Msg("no mode configured, using baseline")
	}
}

func (m *merger) mergeCurrentName() {
	const key = "providerProfiles.currentApiConfigName"

	if m.user.Inspect(key).Overridden() {
		if raw, ok := m.user.Get(key); ok {
			if name, ok := types.AsString(raw); ok && name != "" {
				m.out.ProviderProfiles.CurrentApiConfigName = name
				return
			}
		}
	}

	if m.defaults != nil && m.defaults.ProviderProfiles != nil {
		if name := m.defaults.ProviderProfiles.CurrentApiConfigName; name != "" {
			m.out.ProviderProfiles.CurrentApiConfigName = name
			m.log.Debug().Str("key", key).Str("profile", name).Msg("applied project default")
		}
	}
	// Otherwise left unset; resolveCurrentProfile picks one.
}

func (m *merger) mergeProfiles(ctx context.Context) {
	pp := &m.out.ProviderProfiles

	// Pass 1: profiles from the defaults artifact, field by field.
	// apiProvider is only accepted from the enumerated provider set.
	if m.defaults != nil && m.defaults.ProviderProfiles != nil {
		for _, name := range m.defaults.ProviderProfiles.ConfigOrder {
			src := m.defaults.ProviderProfiles.ApiConfigs[name]
			var cfg types.ApiConfig
			for _, f := range types.ApiConfigFields {
				raw, present := src[f.Name]
				if !present {
					continue
				}
				val, ok := types.AsString(raw)
				if !ok {
					m.log.Warn().Str("profile", name).Str("field", f.Name).Msg("non-string profile field in defaults, dropped")
					continue
				}
				if f.Name == "apiProvider" && !types.IsValidProvider(val) {
					m.rejectProvider(name, val)
					continue
				}
				f.Set(&cfg, val)
			}
			pp.SetConfig(name, cfg)
		}
	}

	// Pass 2: user overlay, taking precedence over defaults. Credential
	// fields consult the secret store first; a secret wins unconditionally.
	hostProfiles := m.hostProfiles()
	for _, name := range sortedKeys(hostProfiles) {
		obj := hostProfiles[name]
		cfg := pp.ApiConfigs[name]
		for _, f := range types.ApiConfigFields {
			raw, present := obj[f.Name]
			if !present {
				continue
			}
			if f.Credential {
				path := "providerProfiles.apiConfigs." + name + "." + f.Name
				if secret, ok := m.lookupSecret(ctx, path); ok {
					f.Set(&cfg, secret)
					m.markSecretWin(name, f.Name)
					continue
				}
			}
			if val, ok := types.AsString(raw); ok {
				f.Set(&cfg, val)
			} else {
				m.log.Warn().Str("profile", name).Str("field", f.Name).Msg("non-string profile field in user configuration, dropped")
			}
		}
		pp.SetConfig(name, cfg)
	}

	// Pass 3: secret backfill. Any credential field that did not already
	// receive its value from the secret store gets one more lookup, so a
	// profile authorized purely via secret storage still works even when
	// the user configuration never mentions it.
	for _, name := range pp.ConfigOrder {
		cfg := pp.ApiConfigs[name]
		changed := false
		for _, f := range types.ApiConfigFields {
			if !f.Credential || m.secretWon(name, f.Name) {
				continue
			}
			path := "providerProfiles.apiConfigs." + name + "." + f.Name
			if secret, ok := m.lookupSecret(ctx, path); ok {
				f.Set(&cfg, secret)
				changed = true
			}
		}
		if changed {
			pp.ApiConfigs[name] = cfg
		}
	}
}

// resolveCurrentProfile guarantees the structural invariants: apiConfigs is
// never empty, and currentApiConfigName always names one of its keys.
func (m *merger) resolveCurrentProfile() {
	pp := &m.out.ProviderProfiles

	if len(pp.ConfigOrder) == 0 {
		m.log.Info().Msg("no provider profiles after merge, synthesizing default profile")
		pp.SetConfig("default", types.ApiConfig{ApiProvider: "gemini"})
		pp.CurrentApiConfigName = "default"
		return
	}

	if pp.CurrentApiConfigName == "" {
		pp.CurrentApiConfigName = pp.ConfigOrder[0]
		m.log.Info().Str("profile", pp.CurrentApiConfigName).Msg("no current profile selected, using first")
		return
	}

	if !pp.HasConfig(pp.CurrentApiConfigName) {
		m.log.Warn().
			Str("profile", pp.CurrentApiConfigName).
			Str("fallback", pp.ConfigOrder[0]).
			Msg("current profile name does not exist, using first")
		pp.CurrentApiConfigName = pp.ConfigOrder[0]
	}
}

// hostProfiles reads the profile objects the user configuration exposes
// under providerProfiles.apiConfigs.
func (m *merger) hostProfiles() map[string]map[string]any {
	raw, ok := m.user.Get("providerProfiles.apiConfigs")
	if !ok {
		return nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil
	}

	out := make(map[string]map[string]any, len(obj))
	for name, v := range obj {
		if profile, ok := v.(map[string]any); ok {
			out[name] = profile
		}
	}
	return out
}

// lookupSecret queries the secret store for a settings path. Errors and
// misses both mean "no secret available" and never abort the merge.
func (m *merger) lookupSecret(ctx context.Context, path string) (string, bool) {
	value, ok, err := m.secrets.Get(ctx, SecretKey(path))
	if err != nil {
		m.log.Debug().Str("key", path).Err(err).Msg("secret lookup failed, continuing")
		return "", false
	}
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

func (m *merger) markSecretWin(profile, field string) {
	if m.secretWins[profile] == nil {
		m.secretWins[profile] = make(map[string]bool)
	}
	m.secretWins[profile][field] = true
}

func (m *merger) secretWon(profile, field string) bool {
	return m.secretWins[profile][field]
}

// rejectProvider logs a dropped apiProvider value, suggesting the nearest
// valid identifier when one is close. The field stays unset either way.
func (m *merger) rejectProvider(profile, value string) {
	evt := m.log.Warn().Str("profile", profile).Str("apiProvider", value)
	if suggestion := nearestProvider(value); suggestion != "" {
		evt = evt.Str("suggestion", suggestion)
	}
	evt.Msg("unrecognized apiProvider in defaults, dropped")
}

// nearestProvider returns the valid provider id closest to value, or "" when
// nothing is within editing distance 3.
func nearestProvider(value string) string {
	best := ""
	bestDist := 4
	for _, id := range types.ProviderIds {
		if d := levenshtein.ComputeDistance(strings.ToLower(value), id); d < bestDist {
			best, bestDist = id, d
		}
	}
	return best
}

func sortedKeys(m map[string]map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func unrecognizedKeys(doc map[string]any) []string {
	recognized := make(map[string]bool, len(types.GlobalSettingsFields))
	for _, f := range types.GlobalSettingsFields {
		recognized[f.Name] = true
	}

	var out []string
	for key := range doc {
		if !recognized[key] {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}
