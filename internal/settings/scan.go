package settings

import (
	"sort"

	"github.com/codeloom-ai/codeloom/pkg/types"
)

// Scan inspects a defaults tree for credential-shaped fields carrying a
// non-empty value and returns their dotted key paths, e.g.
// "providerProfiles.apiConfigs.acme.geminiApiKey".
//
// Defaults artifacts are typically committed to version control, so a
// credential embedded there must be surfaced to the operator. Scan is pure:
// it never mutates the tree and leaves logging to the caller, which keeps it
// unit-testable without capturing log output.
func Scan(tree *types.DefaultsTree) []string {
	if tree == nil || tree.ProviderProfiles == nil {
		return nil
	}

	var flagged []string
	for name, profile := range tree.ProviderProfiles.ApiConfigs {
		for field, value := range profile {
			if !types.IsCredentialField(field) {
				continue
			}
			if s, ok := value.(string); ok && s != "" {
				flagged = append(flagged, "providerProfiles.apiConfigs."+name+"."+field)
			}
		}
	}

	sort.Strings(flagged)
	return flagged
}
