// Package hostconf provides a file-backed user configuration store.
//
// The host keeps two settings documents, one global and one per workspace,
// in JSON (comments tolerated). Both are rooted at the tool's namespace:
//
//	{
//	  "codeloom": {
//	    "globalSettings": { "mode": "architect" },
//	    "providerProfiles": { "apiConfigs": { ... } }
//	  }
//	}
//
// Keys are addressed by dot-separated paths below the namespace. Inspect
// answers per-scope presence; Get resolves workspace over global, which
// mirrors how the host itself reconciles scopes.
package hostconf

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"

	"github.com/codeloom-ai/codeloom/internal/settings"
)

// Store is a two-scope user configuration store backed by JSON documents.
// It implements settings.UserConfigAccessor.
type Store struct {
	namespace string
	global    []byte
	workspace []byte
}

// Load reads the global and workspace settings documents. A missing file is
// an empty scope; a malformed file is logged and treated as empty rather
// than blocking resolution.
func Load(globalPath, workspacePath string, log zerolog.Logger) *Store {
	log = log.With().Str("component", "hostconf").Logger()
	return &Store{
		namespace: settings.Namespace,
		global:    readDocument(globalPath, log),
		workspace: readDocument(workspacePath, log),
	}
}

// NewFromDocuments builds a store from in-memory documents. Used by tests
// and by hosts that manage the files themselves.
func NewFromDocuments(global, workspace []byte) *Store {
	return &Store{
		namespace: settings.Namespace,
		global:    normalize(global),
		workspace: normalize(workspace),
	}
}

// Inspect reports which scopes carry a value for the key.
func (s *Store) Inspect(key string) settings.Inspection {
	path := s.namespace + "." + key
	return settings.Inspection{
		HasWorkspaceOverride: gjson.GetBytes(s.workspace, path).Exists(),
		HasGlobalOverride:    gjson.GetBytes(s.global, path).Exists(),
	}
}

// Get returns the effective host-level value for the key, workspace scope
// taking precedence over global scope.
func (s *Store) Get(key string) (any, bool) {
	path := s.namespace + "." + key
	if res := gjson.GetBytes(s.workspace, path); res.Exists() {
		return res.Value(), true
	}
	if res := gjson.GetBytes(s.global, path); res.Exists() {
		return res.Value(), true
	}
	return nil, false
}

func readDocument(path string, log zerolog.Logger) []byte {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Debug().Str("path", path).Msg("settings document not found")
		return nil
	}
	plain := jsonc.ToJSON(data)
	if !gjson.ValidBytes(plain) {
		log.Warn().Str("path", path).Msg("settings document is not valid JSON, ignoring")
		return nil
	}
	return plain
}

func normalize(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}
	plain := jsonc.ToJSON(data)
	if !gjson.ValidBytes(plain) {
		return nil
	}
	return plain
}
