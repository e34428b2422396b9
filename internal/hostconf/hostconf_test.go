package hostconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectReportsScopes(t *testing.T) {
	store := NewFromDocuments(
		[]byte(`{"codeloom": {"globalSettings": {"mode": "code"}}}`),
		[]byte(`{"codeloom": {"globalSettings": {"mode": "architect"}}}`),
	)

	insp := store.Inspect("globalSettings.mode")
	assert.True(t, insp.HasWorkspaceOverride)
	assert.True(t, insp.HasGlobalOverride)

	insp = store.Inspect("globalSettings.autoApprovalEnabled")
	assert.False(t, insp.Overridden())
}

func TestGetWorkspaceWinsOverGlobal(t *testing.T) {
	store := NewFromDocuments(
		[]byte(`{"codeloom": {"globalSettings": {"mode": "code"}}}`),
		[]byte(`{"codeloom": {"globalSettings": {"mode": "architect"}}}`),
	)

	v, ok := store.Get("globalSettings.mode")
	require.True(t, ok)
	assert.Equal(t, "architect", v)
}

func TestGetFallsBackToGlobal(t *testing.T) {
	store := NewFromDocuments(
		[]byte(`{"codeloom": {"providerProfiles": {"currentApiConfigName": "acme"}}}`),
		nil,
	)

	v, ok := store.Get("providerProfiles.currentApiConfigName")
	require.True(t, ok)
	assert.Equal(t, "acme", v)
}

func TestGetObjectValue(t *testing.T) {
	store := NewFromDocuments(
		[]byte(`{"codeloom": {"providerProfiles": {"apiConfigs": {"acme": {"apiProvider": "anthropic"}}}}}`),
		nil,
	)

	v, ok := store.Get("providerProfiles.apiConfigs")
	require.True(t, ok)
	obj, ok := v.(map[string]any)
	require.True(t, ok)
	profile := obj["acme"].(map[string]any)
	assert.Equal(t, "anthropic", profile["apiProvider"])
}

func TestLoadToleratesCommentsAndMissingFiles(t *testing.T) {
	dir := t.TempDir()
	globalPath := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(globalPath, []byte(`{
		// user's own settings
		"codeloom": {"globalSettings": {"mode": "ask"}}
	}`), 0644))

	store := Load(globalPath, filepath.Join(dir, "nope.json"), zerolog.Nop())

	v, ok := store.Get("globalSettings.mode")
	require.True(t, ok)
	assert.Equal(t, "ask", v)
	assert.False(t, store.Inspect("globalSettings.mode").HasWorkspaceOverride)
	assert.True(t, store.Inspect("globalSettings.mode").HasGlobalOverride)
}

func TestLoadMalformedDocumentTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"codeloom": `), 0644))

	store := Load(path, "", zerolog.Nop())

	_, ok := store.Get("globalSettings.mode")
	assert.False(t, ok)
}
