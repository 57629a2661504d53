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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: openhouse
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "data/openhouse.db", cfg.Database.Path)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, 5.0, cfg.Booking.RateLimitRPS)
	assert.Equal(t, 10, cfg.Booking.RateLimitBurst)
	assert.Equal(t, "exports", cfg.Exports.Path)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_PUBLIC_URL", "https://viewings.example.com")
	path := writeConfig(t, `
server:
  public_url: ${TEST_PUBLIC_URL}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://viewings.example.com", cfg.Server.PublicURL)
}

func TestLoadMemoryDriverNeedsNoPath(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: memory
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Empty(t, cfg.Database.Path)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: cassandra
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsEnabledRedisWithoutAddress(t *testing.T) {
	path := writeConfig(t, `
redis:
  enabled: true
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsEnabledTelegramWithoutToken(t *testing.T) {
	path := writeConfig(t, `
telegram:
  enabled: true
  admin_chat_id: 42
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
