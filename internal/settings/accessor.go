package settings

import "context"

// Namespace is the tool's configuration namespace. Secret keys are formed by
// prefixing it to the dot-separated settings path, e.g.
// "codeloom.providerProfiles.apiConfigs.acme.geminiApiKey".
const Namespace = "codeloom"

// Inspection reports which scopes of the user configuration store carry an
// override for a key.
type Inspection struct {
	HasWorkspaceOverride bool
	HasGlobalOverride    bool
}

// Overridden reports whether any scope carries a value for the key.
func (i Inspection) Overridden() bool {
	return i.HasWorkspaceOverride || i.HasGlobalOverride
}

// UserConfigAccessor is the host-owned user configuration store, addressed by
// dot-separated key paths rooted at the tool's configuration namespace
// (the namespace itself is not part of the key). How workspace and global
// scopes are reconciled inside Get is the host's business.
type UserConfigAccessor interface {
	Inspect(key string) Inspection
	Get(key string) (any, bool)
}

// SecretAccessor is the host-owned secret store. A lookup that finds nothing
// returns ok=false with a nil error; errors are treated the same way by the
// merge and never abort it.
type SecretAccessor interface {
	Get(ctx context.Context, secretKey string) (string, bool, error)
}

// SecretKey derives the secret-store key for a settings path.
func SecretKey(settingsPath string) string {
	return Namespace + "." + settingsPath
}
