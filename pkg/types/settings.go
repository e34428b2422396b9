package types

import "strings"

// DefaultMode is the baseline assistant mode applied when neither the
// defaults artifact nor the host configuration specifies one.
const DefaultMode = "code"

// DefaultsTree is the parsed project defaults artifact (.codeloom/defaults.json
// or .codeloom/defaults.yaml). It is returned by the loader exactly as parsed,
// with no normalization applied.
type DefaultsTree struct {
	GlobalSettings   map[string]any    `json:"globalSettings,omitempty"`
	ProviderProfiles *ProfilesDocument `json:"providerProfiles,omitempty"`
}

// ProfilesDocument is the raw providerProfiles section of a defaults artifact.
// ConfigOrder records the document order of the apiConfigs keys so later
// processing stays deterministic; encoding/json alone loses that order.
type ProfilesDocument struct {
	CurrentApiConfigName string                    `json:"currentApiConfigName,omitempty"`
	ApiConfigs           map[string]map[string]any `json:"apiConfigs,omitempty"`
	ConfigOrder          []string                  `json:"-"`
}

// GlobalSettings holds the recognized tool-wide settings, fully resolved.
type GlobalSettings struct {
	AutoApprovalEnabled *bool          `json:"autoApprovalEnabled,omitempty"`
	AllowedCommands     []string       `json:"allowedCommands,omitempty"`
	Experiments         map[string]any `json:"experiments,omitempty"`
	Mode                string         `json:"mode,omitempty"`
	CustomModes         []any          `json:"customModes,omitempty"`
}

// ApiConfig is a named provider profile: provider identifier, model
// identifiers, and per-provider credentials. Empty string means unset.
type ApiConfig struct {
	ApiProvider       string `json:"apiProvider,omitempty"`
	ApiModelId        string `json:"apiModelId,omitempty"`
	AnthropicApiKey   string `json:"anthropicApiKey,omitempty"`
	AnthropicBaseUrl  string `json:"anthropicBaseUrl,omitempty"`
	OpenAiApiKey      string `json:"openAiApiKey,omitempty"`
	OpenAiBaseUrl     string `json:"openAiBaseUrl,omitempty"`
	OpenAiModelId     string `json:"openAiModelId,omitempty"`
	OpenRouterApiKey  string `json:"openRouterApiKey,omitempty"`
	OpenRouterModelId string `json:"openRouterModelId,omitempty"`
	GeminiApiKey      string `json:"geminiApiKey,omitempty"`
	RequestyApiKey    string `json:"requestyApiKey,omitempty"`
	RequestyModelId   string `json:"requestyModelId,omitempty"`
	GlamaApiKey       string `json:"glamaApiKey,omitempty"`
	GlamaModelId      string `json:"glamaModelId,omitempty"`
	UnboundApiKey     string `json:"unboundApiKey,omitempty"`
	UnboundModelId    string `json:"unboundModelId,omitempty"`
	DeepSeekApiKey    string `json:"deepSeekApiKey,omitempty"`
	MistralApiKey     string `json:"mistralApiKey,omitempty"`
	XaiApiKey         string `json:"xaiApiKey,omitempty"`
	GroqApiKey        string `json:"groqApiKey,omitempty"`
	OllamaModelId     string `json:"ollamaModelId,omitempty"`
	OllamaBaseUrl     string `json:"ollamaBaseUrl,omitempty"`
	LmStudioModelId   string `json:"lmStudioModelId,omitempty"`
	LmStudioBaseUrl   string `json:"lmStudioBaseUrl,omitempty"`
	VertexProjectId   string `json:"vertexProjectId,omitempty"`
	VertexRegion      string `json:"vertexRegion,omitempty"`
}

// ProviderProfiles is the resolved profile namespace of EffectiveSettings.
// ApiConfigs is never empty and CurrentApiConfigName always names one of its
// keys once a merge completes.
type ProviderProfiles struct {
	CurrentApiConfigName string               `json:"currentApiConfigName"`
	ApiConfigs           map[string]ApiConfig `json:"apiConfigs"`

	// ConfigOrder preserves insertion order of ApiConfigs for deterministic
	// iteration; JSON output sorts keys, in-process consumers use this.
	ConfigOrder []string `json:"-"`
}

// SetConfig stores a profile under name, appending to ConfigOrder on first
// insertion.
func (p *ProviderProfiles) SetConfig(name string, cfg ApiConfig) {
	if p.ApiConfigs == nil {
		p.ApiConfigs = make(map[string]ApiConfig)
	}
	if _, ok := p.ApiConfigs[name]; !ok {
		p.ConfigOrder = append(p.ConfigOrder, name)
	}
	p.ApiConfigs[name] = cfg
}

// HasConfig reports whether a profile exists under name.
func (p *ProviderProfiles) HasConfig(name string) bool {
	_, ok := p.ApiConfigs[name]
	return ok
}

// EffectiveSettings is the fully merged, precedence-resolved configuration
// handed to the rest of the system. It is immutable once produced.
type EffectiveSettings struct {
	GlobalSettings   GlobalSettings   `json:"globalSettings"`
	ProviderProfiles ProviderProfiles `json:"providerProfiles"`
}

// IsCredentialField reports whether a settings field holds a secret,
// identified by naming convention: any field whose name contains "apikey"
// (case-insensitive).
func IsCredentialField(name string) bool {
	return strings.Contains(strings.ToLower(name), "apikey")
}
