package types

// ProviderIds is the fixed set of valid apiProvider identifiers. A profile
// field carrying any other value is rejected during merge.
var ProviderIds = []string{
	"anthropic",
	"openai",
	"openrouter",
	"gemini",
	"requesty",
	"bedrock",
	"vertex",
	"ollama",
	"lmstudio",
	"deepseek",
	"mistral",
	"xai",
	"groq",
	"unbound",
	"glama",
	"vscode-lm",
	"human-relay",
	"fake-ai",
}

var providerIdSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(ProviderIds))
	for _, id := range ProviderIds {
		set[id] = struct{}{}
	}
	return set
}()

// IsValidProvider reports whether id belongs to the enumerated provider set.
func IsValidProvider(id string) bool {
	_, ok := providerIdSet[id]
	return ok
}
