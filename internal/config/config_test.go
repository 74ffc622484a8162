package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: limpeza
database:
  path: data/limpeza.db
admin:
  secret: test-secret
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Dashboard.PageSize)
	assert.Equal(t, 30, cfg.Dashboard.CacheTTL)
	assert.Equal(t, 500, cfg.Dashboard.SearchDebounce)
	assert.Equal(t, "x-admin-token", cfg.Admin.TokenHeader)
	assert.Equal(t, 12*60*60, cfg.Admin.SessionTTL)
	assert.Equal(t, "exports", cfg.Exports.Path)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("LIMPEZA_ADMIN_SECRET", "from-env")

	path := writeConfig(t, `
database:
  path: data/limpeza.db
admin:
  secret: ${LIMPEZA_ADMIN_SECRET}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Admin.Secret)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	assert.Error(t, cfg.Validate(), "missing database path")

	cfg.Database.Path = "data/limpeza.db"
	assert.Error(t, cfg.Validate(), "missing admin secret")

	cfg.Admin.Secret = "secret"
	assert.NoError(t, cfg.Validate())

	cfg.Redis.Enabled = true
	assert.Error(t, cfg.Validate(), "redis enabled without address")

	cfg.Redis.Address = "localhost:6379"
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
