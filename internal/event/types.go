package event

import (
	"github.com/codeloom-ai/codeloom/pkg/types"
)

// Activation event types.
const (
	SettingsResolved Type = "settings.resolved"
	DefaultsRejected Type = "defaults.rejected"
	SecurityFlagged  Type = "security.flagged"
)

// SettingsResolvedData is the payload for settings.resolved events.
type SettingsResolvedData struct {
	RunID    string                   `json:"runID"`
	Settings *types.EffectiveSettings `json:"settings"`
}

// DefaultsRejectedData is the payload for defaults.rejected events,
// published when a defaults artifact exists but could not be used.
type DefaultsRejectedData struct {
	RunID  string `json:"runID"`
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// SecurityFlaggedData is the payload for security.flagged events, published
// when a defaults artifact embeds credential values.
type SecurityFlaggedData struct {
	RunID string   `json:"runID"`
	Paths []string `json:"paths"`
}
