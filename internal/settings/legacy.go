package settings

import "github.com/codeloom-ai/codeloom/pkg/types"

// The first revision of the defaults artifact was flat: a "state" object
// mixing tool-wide settings with provider fields, and a "secrets" object of
// credential fields. The engine itself only understands the nested
// globalSettings/providerProfiles shape; this migration converts a legacy
// document once, at load time, and nothing downstream ever sees the flat
// shape again.

// isLegacyShape reports whether a parsed defaults document uses the flat
// state/secrets layout.
func isLegacyShape(doc map[string]any) bool {
	if _, ok := doc["globalSettings"]; ok {
		return false
	}
	if _, ok := doc["providerProfiles"]; ok {
		return false
	}
	_, hasState := doc["state"]
	_, hasSecrets := doc["secrets"]
	return hasState || hasSecrets
}

// MigrateLegacy converts a flat state/secrets document to the nested shape.
// Provider fields found in state or secrets become a single profile named
// "default"; everything else in state becomes a global setting. Returns the
// converted document and the apiConfigs key order.
func MigrateLegacy(doc map[string]any) (map[string]any, []string) {
	state, _ := doc["state"].(map[string]any)
	secrets, _ := doc["secrets"].(map[string]any)

	global := make(map[string]any)
	profile := make(map[string]any)

	for key, value := range state {
		if _, ok := types.ApiConfigFieldByName(key); ok {
			profile[key] = value
			continue
		}
		global[key] = value
	}
	for key, value := range secrets {
		// Legacy secrets held credential fields only; anything else is
		// unrecognized and dropped.
		if f, ok := types.ApiConfigFieldByName(key); ok && f.Credential {
			profile[key] = value
		}
	}

	out := make(map[string]any)
	if len(global) > 0 {
		out["globalSettings"] = global
	}

	var order []string
	if len(profile) > 0 {
		out["providerProfiles"] = map[string]any{
			"currentApiConfigName": "default",
			"apiConfigs": map[string]any{
				"default": profile,
			},
		}
		order = []string{"default"}
	}
	return out, order
}
