package settings

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/codeloom-ai/codeloom/internal/project"
	"github.com/codeloom-ai/codeloom/pkg/types"
)

// Defaults artifact file names, tried in order under <root>/.codeloom/.
const (
	DefaultsFileJSON = "defaults.json"
	DefaultsFileYAML = "defaults.yaml"
)

// LoadOutcome classifies the result of a defaults load.
type LoadOutcome string

const (
	// OutcomeAbsent means no artifact applies: no project root, no file, or
	// an empty file. Expected, logged at debug.
	OutcomeAbsent LoadOutcome = "absent"
	// OutcomeMalformed means the artifact exists but could not be used:
	// bad syntax or wrong top-level shape. Logged at warn, never fatal.
	OutcomeMalformed LoadOutcome = "malformed"
	// OutcomeLoaded means a tree was produced.
	OutcomeLoaded LoadOutcome = "loaded"
)

// LoadStatus notes what the loader found, for operators debugging why a
// project's defaults did or did not apply.
type LoadStatus struct {
	Path                string      `json:"path,omitempty"`
	Outcome             LoadOutcome `json:"outcome"`
	Reason              string      `json:"reason,omitempty"`
	HasGlobalSettings   bool        `json:"hasGlobalSettings"`
	HasProviderProfiles bool        `json:"hasProviderProfiles"`
	// Migrated is set when the artifact carried the legacy flat
	// state/secrets shape and was converted before loading.
	Migrated bool `json:"migrated,omitempty"`
}

// Loader reads and parses the project defaults artifact. It fails soft in
// every case: the only outcomes are a tree or nothing.
type Loader struct {
	root string
	log  zerolog.Logger
}

// NewLoader builds a loader for a project root. An empty root means no
// project is available and Load resolves to absent.
func NewLoader(root string, log zerolog.Logger) *Loader {
	return &Loader{root: root, log: log.With().Str("component", "defaults").Logger()}
}

// Load reads the defaults artifact. Returns (nil, status) when no usable
// defaults exist; it never returns an error.
func (l *Loader) Load() (*types.DefaultsTree, LoadStatus) {
	if l.root == "" {
		l.log.Debug().Msg("no project root, skipping defaults")
		return nil, LoadStatus{Outcome: OutcomeAbsent, Reason: "no project root"}
	}

	for _, name := range []string{DefaultsFileJSON, DefaultsFileYAML} {
		path := filepath.Join(l.root, project.ConfigDirName, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				l.log.Debug().Str("path", path).Msg("defaults artifact not found")
				continue
			}
			// The artifact is there but cannot be read (permissions, or
			// the path is a directory). That is a broken artifact, not a
			// missing one.
			l.log.Warn().Str("path", path).Err(err).Msg("defaults artifact unreadable, ignoring")
			return nil, LoadStatus{Path: path, Outcome: OutcomeMalformed, Reason: err.Error()}
		}
		return l.parse(path, data)
	}

	return nil, LoadStatus{Outcome: OutcomeAbsent, Reason: "no defaults artifact"}
}

func (l *Loader) parse(path string, data []byte) (*types.DefaultsTree, LoadStatus) {
	if len(bytes.TrimSpace(data)) == 0 {
		l.log.Debug().Str("path", path).Msg("defaults artifact is empty")
		return nil, LoadStatus{Path: path, Outcome: OutcomeAbsent, Reason: "empty file"}
	}

	l.log.Debug().Str("path", path).Str("preview", preview(data)).Msg("parsing defaults artifact")

	var (
		doc   map[string]any
		order []string
		err   error
	)
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		doc, order, err = decodeYAML(data)
	} else {
		doc, order, err = decodeJSON(data)
	}
	if err != nil {
		l.log.Warn().Str("path", path).Err(err).Msg("defaults artifact is not valid, ignoring")
		return nil, LoadStatus{Path: path, Outcome: OutcomeMalformed, Reason: err.Error()}
	}

	status := LoadStatus{Path: path, Outcome: OutcomeLoaded}

	if isLegacyShape(doc) {
		l.log.Info().Str("path", path).Msg("defaults artifact uses legacy state/secrets shape, migrating")
		doc, order = MigrateLegacy(doc)
		status.Migrated = true
	}

	gs, hasGS := doc["globalSettings"].(map[string]any)
	pp, hasPP := doc["providerProfiles"].(map[string]any)
	if !hasGS && !hasPP {
		l.log.Warn().Str("path", path).Msg("defaults artifact lacks globalSettings and providerProfiles, ignoring")
		return nil, LoadStatus{Path: path, Outcome: OutcomeMalformed, Reason: "missing recognized top-level sections"}
	}
	status.HasGlobalSettings = hasGS
	status.HasProviderProfiles = hasPP

	tree := &types.DefaultsTree{}
	if hasGS {
		tree.GlobalSettings = gs
	}
	if hasPP {
		tree.ProviderProfiles = decodeProfilesSection(pp, order)
	}

	l.log.Debug().
		Str("path", path).
		Bool("globalSettings", hasGS).
		Bool("providerProfiles", hasPP).
		Msg("defaults artifact loaded")
	return tree, status
}

// decodeJSON parses a JSON (or JSONC) document and records the document
// order of the providerProfiles.apiConfigs keys.
func decodeJSON(data []byte) (map[string]any, []string, error) {
	plain := jsonc.ToJSON(data)

	var doc map[string]any
	if err := json.Unmarshal(plain, &doc); err != nil {
		return nil, nil, err
	}

	var order []string
	gjson.GetBytes(plain, "providerProfiles.apiConfigs").ForEach(func(key, _ gjson.Result) bool {
		order = append(order, key.String())
		return true
	})
	return doc, order, nil
}

// decodeYAML parses a YAML document, walking the node tree for the
// apiConfigs key order since a plain map loses it.
func decodeYAML(data []byte) (map[string]any, []string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, nil, err
	}

	var doc map[string]any
	if err := node.Decode(&doc); err != nil {
		return nil, nil, err
	}

	var order []string
	if configs := findMapping(&node, "providerProfiles", "apiConfigs"); configs != nil {
		for i := 0; i+1 < len(configs.Content); i += 2 {
			order = append(order, configs.Content[i].Value)
		}
	}
	return doc, order, nil
}

// findMapping descends a YAML node tree through mapping keys.
func findMapping(node *yaml.Node, keys ...string) *yaml.Node {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	for _, key := range keys {
		if node == nil || node.Kind != yaml.MappingNode {
			return nil
		}
		var next *yaml.Node
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == key {
				next = node.Content[i+1]
				break
			}
		}
		node = next
	}
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	return node
}

// decodeProfilesSection shapes the raw providerProfiles object. Profile
// entries that are not objects are dropped.
func decodeProfilesSection(pp map[string]any, order []string) *types.ProfilesDocument {
	out := &types.ProfilesDocument{}
	if name, ok := pp["currentApiConfigName"].(string); ok {
		out.CurrentApiConfigName = name
	}

	raw, ok := pp["apiConfigs"].(map[string]any)
	if !ok {
		return out
	}

	out.ApiConfigs = make(map[string]map[string]any, len(raw))
	for _, name := range order {
		obj, ok := raw[name].(map[string]any)
		if !ok {
			continue
		}
		out.ApiConfigs[name] = obj
		out.ConfigOrder = append(out.ConfigOrder, name)
	}
	return out
}

func preview(data []byte) string {
	const max = 200
	s := string(bytes.TrimSpace(data))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
