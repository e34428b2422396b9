// Package secrets provides secret-store accessors for the settings engine.
//
// Secret keys are fully qualified settings paths prefixed with the tool
// namespace, e.g. "codeloom.providerProfiles.apiConfigs.acme.geminiApiKey".
// File- and environment-backed stores flatten that to an environment-style
// name: CODELOOM_PROVIDERPROFILES_APICONFIGS_ACME_GEMINIAPIKEY.
package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Static is an in-memory secret store keyed by the raw secret key. Used in
// tests and by hosts that inject secrets directly.
type Static map[string]string

// Get implements settings.SecretAccessor.
func (s Static) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s[key]
	return v, ok, nil
}

// Env reads secrets from process environment variables.
type Env struct{}

// Get implements settings.SecretAccessor.
func (Env) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := os.LookupEnv(EnvName(key))
	if !ok || v == "" {
		return "", false, nil
	}
	return v, true, nil
}

// Dotenv reads secrets from a dotenv file once at construction time.
type Dotenv struct {
	values map[string]string
}

// LoadDotenv parses a dotenv file into a secret store. A missing file yields
// an empty store; a malformed file is an error for the caller to report.
func LoadDotenv(path string) (*Dotenv, error) {
	if _, err := os.Stat(path); err != nil {
		return &Dotenv{}, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read secrets file %s: %w", path, err)
	}
	return &Dotenv{values: values}, nil
}

// Get implements settings.SecretAccessor.
func (d *Dotenv) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := d.values[EnvName(key)]
	if !ok || v == "" {
		return "", false, nil
	}
	return v, true, nil
}

// Chain queries stores in order and returns the first hit. A store error is
// swallowed and the next store consulted; the settings engine treats errors
// as misses anyway.
type Chain []interface {
	Get(ctx context.Context, key string) (string, bool, error)
}

// Get implements settings.SecretAccessor.
func (c Chain) Get(ctx context.Context, key string) (string, bool, error) {
	for _, store := range c {
		if v, ok, err := store.Get(ctx, key); err == nil && ok {
			return v, true, nil
		}
	}
	return "", false, nil
}

// EnvName flattens a dotted secret key to an environment-variable name:
// uppercase, with every non-alphanumeric run collapsed to an underscore.
func EnvName(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	underscore := false
	for _, r := range strings.ToUpper(key) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
