package types

// The merge engine copies settings field-by-field over a static field table
// per record type instead of reflecting over arbitrary keys. Adding a field
// means adding a struct member and one table entry.

// GlobalSettingsField describes one recognized global setting: how to tell
// whether it is already set on a record and how to assign a decoded value
// to it. Assign returns false when the value has the wrong shape.
type GlobalSettingsField struct {
	Name   string
	IsSet  func(*GlobalSettings) bool
	Assign func(*GlobalSettings, any) bool
}

// GlobalSettingsFields enumerates the recognized global settings in a fixed
// order so merge passes iterate deterministically.
var GlobalSettingsFields = []GlobalSettingsField{
	{
		Name:  "autoApprovalEnabled",
		IsSet: func(g *GlobalSettings) bool { return g.AutoApprovalEnabled != nil },
		Assign: func(g *GlobalSettings, v any) bool {
			b, ok := v.(bool)
			if !ok {
				return false
			}
			g.AutoApprovalEnabled = &b
			return true
		},
	},
	{
		Name:  "allowedCommands",
		IsSet: func(g *GlobalSettings) bool { return g.AllowedCommands != nil },
		Assign: func(g *GlobalSettings, v any) bool {
			s, ok := AsStringSlice(v)
			if !ok {
				return false
			}
			g.AllowedCommands = s
			return true
		},
	},
	{
		Name:  "experiments",
		IsSet: func(g *GlobalSettings) bool { return g.Experiments != nil },
		Assign: func(g *GlobalSettings, v any) bool {
			m, ok := v.(map[string]any)
			if !ok {
				return false
			}
			g.Experiments = m
			return true
		},
	},
	{
		Name:  "mode",
		IsSet: func(g *GlobalSettings) bool { return g.Mode != "" },
		Assign: func(g *GlobalSettings, v any) bool {
			s, ok := v.(string)
			if !ok || s == "" {
				return false
			}
			g.Mode = s
			return true
		},
	},
	{
		Name:  "customModes",
		IsSet: func(g *GlobalSettings) bool { return g.CustomModes != nil },
		Assign: func(g *GlobalSettings, v any) bool {
			s, ok := v.([]any)
			if !ok {
				return false
			}
			g.CustomModes = s
			return true
		},
	},
}

// ApiConfigField describes one recognized profile field with typed accessors.
type ApiConfigField struct {
	Name       string
	Credential bool
	Get        func(*ApiConfig) string
	Set        func(*ApiConfig, string)
}

func strField(name string, get func(*ApiConfig) string, set func(*ApiConfig, string)) ApiConfigField {
	return ApiConfigField{Name: name, Credential: IsCredentialField(name), Get: get, Set: set}
}

// ApiConfigFields enumerates the recognized profile fields in a fixed order.
// apiProvider is deliberately first: validation happens before any
// provider-specific field is considered.
var ApiConfigFields = []ApiConfigField{
	strField("apiProvider", func(c *ApiConfig) string { return c.ApiProvider }, func(c *ApiConfig, v string) { c.ApiProvider = v }),
	strField("apiModelId", func(c *ApiConfig) string { return c.ApiModelId }, func(c *ApiConfig, v string) { c.ApiModelId = v }),
	strField("anthropicApiKey", func(c *ApiConfig) string { return c.AnthropicApiKey }, func(c *ApiConfig, v string) { c.AnthropicApiKey = v }),
	strField("anthropicBaseUrl", func(c *ApiConfig) string { return c.AnthropicBaseUrl }, func(c *ApiConfig, v string) { c.AnthropicBaseUrl = v }),
	strField("openAiApiKey", func(c *ApiConfig) string { return c.OpenAiApiKey }, func(c *ApiConfig, v string) { c.OpenAiApiKey = v }),
	strField("openAiBaseUrl", func(c *ApiConfig) string { return c.OpenAiBaseUrl }, func(c *ApiConfig, v string) { c.OpenAiBaseUrl = v }),
	strField("openAiModelId", func(c *ApiConfig) string { return c.OpenAiModelId }, func(c *ApiConfig, v string) { c.OpenAiModelId = v }),
	strField("openRouterApiKey", func(c *ApiConfig) string { return c.OpenRouterApiKey }, func(c *ApiConfig, v string) { c.OpenRouterApiKey = v }),
	strField("openRouterModelId", func(c *ApiConfig) string { return c.OpenRouterModelId }, func(c *ApiConfig, v string) { c.OpenRouterModelId = v }),
	strField("geminiApiKey", func(c *ApiConfig) string { return c.GeminiApiKey }, func(c *ApiConfig, v string) { c.GeminiApiKey = v }),
	strField("requestyApiKey", func(c *ApiConfig) string { return c.RequestyApiKey }, func(c *ApiConfig, v string) { c.RequestyApiKey = v }),
	strField("requestyModelId", func(c *ApiConfig) string { return c.RequestyModelId }, func(c *ApiConfig, v string) { c.RequestyModelId = v }),
	strField("glamaApiKey", func(c *ApiConfig) string { return c.GlamaApiKey }, func(c *ApiConfig, v string) { c.GlamaApiKey = v }),
	strField("glamaModelId", func(c *ApiConfig) string { return c.GlamaModelId }, func(c *ApiConfig, v string) { c.GlamaModelId = v }),
	strField("unboundApiKey", func(c *ApiConfig) string { return c.UnboundApiKey }, func(c *ApiConfig, v string) { c.UnboundApiKey = v }),
	strField("unboundModelId", func(c *ApiConfig) string { return c.UnboundModelId }, func(c *ApiConfig, v string) { c.UnboundModelId = v }),
	strField("deepSeekApiKey", func(c *ApiConfig) string { return c.DeepSeekApiKey }, func(c *ApiConfig, v string) { c.DeepSeekApiKey = v }),
	strField("mistralApiKey", func(c *ApiConfig) string { return c.MistralApiKey }, func(c *ApiConfig, v string) { c.MistralApiKey = v }),
	strField("xaiApiKey", func(c *ApiConfig) string { return c.XaiApiKey }, func(c *ApiConfig, v string) { c.XaiApiKey = v }),
	strField("groqApiKey", func(c *ApiConfig) string { return c.GroqApiKey }, func(c *ApiConfig, v string) { c.GroqApiKey = v }),
	strField("ollamaModelId", func(c *ApiConfig) string { return c.OllamaModelId }, func(c *ApiConfig, v string) { c.OllamaModelId = v }),
	strField("ollamaBaseUrl", func(c *ApiConfig) string { return c.OllamaBaseUrl }, func(c *ApiConfig, v string) { c.OllamaBaseUrl = v }),
	strField("lmStudioModelId", func(c *ApiConfig) string { return c.LmStudioModelId }, func(c *ApiConfig, v string) { c.LmStudioModelId = v }),
	strField("lmStudioBaseUrl", func(c *ApiConfig) string { return c.LmStudioBaseUrl }, func(c *ApiConfig, v string) { c.LmStudioBaseUrl = v }),
	strField("vertexProjectId", func(c *ApiConfig) string { return c.VertexProjectId }, func(c *ApiConfig, v string) { c.VertexProjectId = v }),
	strField("vertexRegion", func(c *ApiConfig) string { return c.VertexRegion }, func(c *ApiConfig, v string) { c.VertexRegion = v }),
}

var apiConfigFieldIndex = func() map[string]ApiConfigField {
	idx := make(map[string]ApiConfigField, len(ApiConfigFields))
	for _, f := range ApiConfigFields {
		idx[f.Name] = f
	}
	return idx
}()

// ApiConfigFieldByName looks up a profile field descriptor.
func ApiConfigFieldByName(name string) (ApiConfigField, bool) {
	f, ok := apiConfigFieldIndex[name]
	return f, ok
}

// AsString coerces a decoded configuration value to a string.
func AsString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// AsStringSlice coerces a decoded configuration value to a string slice.
// JSON and YAML decoders both produce []any for lists.
func AsStringSlice(v any) ([]string, bool) {
	switch vv := v.(type) {
	case []string:
		return vv, true
	case []any:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
