package settings

import "github.com/codeloom-ai/codeloom/pkg/types"

// RedactedValue replaces credential values in redacted copies.
const RedactedValue = "[redacted]"

// Redact returns a copy of s safe to write to disk or logs: every
// populated credential field is replaced with RedactedValue.
func Redact(s *types.EffectiveSettings) *types.EffectiveSettings {
	if s == nil {
		return nil
	}

	out := *s
	out.ProviderProfiles.ApiConfigs = make(map[string]types.ApiConfig, len(s.ProviderProfiles.ApiConfigs))
	for name, cfg := range s.ProviderProfiles.ApiConfigs {
		for _, field := range types.ApiConfigFields {
			if field.Credential && field.Get(&cfg) != "" {
				field.Set(&cfg, RedactedValue)
			}
		}
		out.ProviderProfiles.ApiConfigs[name] = cfg
	}
	return &out
}
