package setup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("BAZAAR_SETUP_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("BAZAAR_JWT_SECRET", "unit-test-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8089, cfg.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "agentbazaar.db", cfg.Database.DSN)
	assert.Equal(t, 10, cfg.RegisterRatePerMinute)
	assert.Equal(t, "unit-test-secret", cfg.JWTSecret)
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "setup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9090
base_url: https://bazaar.example.com
database:
  driver: postgres
  dsn: host=localhost user=bazaar dbname=bazaar
jwt_secret: from-yaml
register_rate_per_minute: 3
`), 0o600))
	t.Setenv("BAZAAR_SETUP_PATH", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "https://bazaar.example.com", cfg.BaseURL)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "from-yaml", cfg.JWTSecret)
	assert.Equal(t, 3, cfg.RegisterRatePerMinute)
}

func TestLoadConfigEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "setup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: sqlite
  dsn: from-yaml.db
jwt_secret: from-yaml
`), 0o600))
	t.Setenv("BAZAAR_SETUP_PATH", path)
	t.Setenv("BAZAAR_DB_DSN", "from-env.db")
	t.Setenv("BAZAAR_JWT_SECRET", "from-env")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Database.DSN)
	assert.Equal(t, "from-env", cfg.JWTSecret)
}

func TestLoadConfigRejectsMissingSecret(t *testing.T) {
	t.Setenv("BAZAAR_SETUP_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("BAZAAR_JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt secret")
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("BAZAAR_SETUP_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("BAZAAR_JWT_SECRET", "unit-test-secret")
	t.Setenv("BAZAAR_DB_DRIVER", "oracle")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}
