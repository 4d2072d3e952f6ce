package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("WAKILI_CONFIG_FILE", "")
	t.Setenv("SERVER_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultPort, cfg.HTTP.Port)
	assert.Equal(t, defaultSessionTTL, cfg.Auth.SessionTTL)
	assert.Equal(t, "ar", cfg.DefaultLanguage)
	assert.Equal(t, defaultBcryptCost, cfg.Auth.BcryptCost)
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wakili.yaml")
	content := []byte(`
http:
  port: 9090
  allowed_origins: "https://wakili.sa"
graph:
  uri: "neo4j://graph:7687"
auth:
  session_ttl: 2h
default_language: en
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("WAKILI_CONFIG_FILE", path)
	t.Setenv("AUTH_SESSION_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "https://wakili.sa", cfg.HTTP.AllowedOriginsCSV)
	assert.Equal(t, "neo4j://graph:7687", cfg.Graph.URI)
	assert.Equal(t, 30*time.Minute, cfg.Auth.SessionTTL)
	assert.Equal(t, "en", cfg.DefaultLanguage)
	// untouched fields keep defaults
	assert.Equal(t, defaultCodeTTL, cfg.Auth.CodeTTL)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"bad port":     {"SERVER_PORT", "70000"},
		"bad duration": {"AUTH_CODE_TTL", "soon"},
		"bad language": {"DEFAULT_LANGUAGE", "fr"},
		"bad cost":     {"AUTH_BCRYPT_COST", "99"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("WAKILI_CONFIG_FILE", "")
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("WAKILI_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	require.Error(t, err)
}
