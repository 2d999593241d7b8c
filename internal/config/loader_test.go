package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: rentapp\n"))
	require.NoError(t, err)

	assert.Equal(t, "https://api.monday.com/v2", cfg.Board.APIURL)
	assert.Equal(t, "color_mkp7xdce", cfg.Board.Columns.PropertyName)
	assert.Equal(t, "text_mksxyax3", cfg.Board.Columns.ApplicantID)
	assert.Equal(t, "Vacant", cfg.Board.VacantLabel)
	assert.Equal(t, 5*time.Minute, cfg.Board.CacheTTL)
	assert.Equal(t, 10, cfg.Encryption.MaxFileSizeMB)
	assert.Equal(t, 4, cfg.Webhooks.MaxConcurrent)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Empty(t, cfg.Board.APIToken)
}

func TestLoadFileValues(t *testing.T) {
	path := writeConfig(t, `
board:
  units_board_id: "9769934634"
  cache_ttl: 90s
webhooks:
  max_concurrent: 2
document:
  organization_name: Example Realty
  address_lines:
    - 1 Main Street
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9769934634", cfg.Board.UnitsBoardID)
	assert.Equal(t, 90*time.Second, cfg.Board.CacheTTL)
	assert.Equal(t, 2, cfg.Webhooks.MaxConcurrent)
	assert.Equal(t, "Example Realty", cfg.Document.OrganizationName)
	assert.Equal(t, []string{"1 Main Street"}, cfg.Document.AddressLines)
}

func TestLoadSecretsFromEnvironment(t *testing.T) {
	t.Setenv("MONDAY_API_TOKEN", "token-from-env")
	t.Setenv("FILE_WEBHOOK_URL", "https://hooks.example.com/file")
	t.Setenv("ENCRYPTION_KEY", "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY=")

	cfg, err := Load(writeConfig(t, "app:\n  name: rentapp\n"))
	require.NoError(t, err)

	assert.Equal(t, "token-from-env", cfg.Board.APIToken)
	assert.Equal(t, "https://hooks.example.com/file", cfg.Webhooks.FileURL)
	assert.NotEmpty(t, cfg.Encryption.Key)
}

func TestLoadRejectsBadKey(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "c2hvcnQ=")

	_, err := Load(writeConfig(t, "app:\n  name: rentapp\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encryption.key")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhooks.max_concurrent")
	assert.Contains(t, err.Error(), "encryption.max_file_size_mb")
}
