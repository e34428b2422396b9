package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeloom-ai/codeloom/internal/activation"
	"github.com/codeloom-ai/codeloom/internal/approval"
	"github.com/codeloom-ai/codeloom/internal/project"
	"github.com/codeloom-ai/codeloom/internal/secrets"
	"github.com/codeloom-ai/codeloom/internal/settings"
)

func testServer(t *testing.T, defaults string) *Server {
	t.Helper()
	root := t.TempDir()
	if defaults != "" {
		dir := filepath.Join(root, project.ConfigDirName)
		require.NoError(t, os.MkdirAll(dir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, settings.DefaultsFileJSON), []byte(defaults), 0644))
	}
	activator := activation.New(activation.Config{Dir: root, Logger: zerolog.Nop()})
	return New(DefaultConfig(), activator, zerolog.Nop())
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, testServer(t, ""), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestSettingsEndpoint(t *testing.T) {
	s := testServer(t, `{
		"globalSettings": {"mode": "architect"},
		"providerProfiles": {
			"currentApiConfigName": "acme",
			"apiConfigs": {"acme": {"apiProvider": "anthropic"}}
		}
	}`)

	rec := get(t, s, "/settings")
	require.Equal(t, http.StatusOK, rec.Code)

	var res activation.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "architect", res.Settings.GlobalSettings.Mode)
	assert.Equal(t, "acme", res.Settings.ProviderProfiles.CurrentApiConfigName)
}

func TestSettingsEndpointRedactsCredentials(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, project.ConfigDirName)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, settings.DefaultsFileJSON), []byte(`{
		"providerProfiles": {
			"currentApiConfigName": "acme",
			"apiConfigs": {"acme": {"apiProvider": "anthropic"}}
		}
	}`), 0644))

	activator := activation.New(activation.Config{
		Dir: root,
		Secrets: secrets.Static{
			settings.SecretKey("providerProfiles.apiConfigs.acme.anthropicApiKey"): "sk-live-hush",
		},
		Logger: zerolog.Nop(),
	})
	s := New(DefaultConfig(), activator, zerolog.Nop())

	rec := get(t, s, "/settings")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.NotContains(t, body, "sk-live-hush")
	assert.Contains(t, body, settings.RedactedValue)

	var res activation.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, settings.RedactedValue, res.Settings.ProviderProfiles.ApiConfigs["acme"].AnthropicApiKey)
}

func TestScanEndpoint(t *testing.T) {
	s := testServer(t, `{
		"providerProfiles": {
			"apiConfigs": {"acme": {"geminiApiKey": "sk-committed"}}
		}
	}`)

	rec := get(t, s, "/scan")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Flagged []string `json:"flagged"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"providerProfiles.apiConfigs.acme.geminiApiKey"}, body.Flagged)
}

func TestApprovalEndpoint(t *testing.T) {
	s := testServer(t, `{
		"globalSettings": {
			"autoApprovalEnabled": true,
			"allowedCommands": ["git *"]
		}
	}`)

	rec := get(t, s, "/approval?command=git+status")
	require.Equal(t, http.StatusOK, rec.Code)

	var d approval.Decision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.True(t, d.Approved)

	rec = get(t, s, "/approval")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
