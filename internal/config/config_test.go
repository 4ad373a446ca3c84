package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("WS_ALLOWED_ORIGINS", "")
	t.Setenv("MEMORY_SEED", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	assert.Equal(t, "dev-secret", cfg.JWTSecret)
	assert.Equal(t, int32(25), cfg.DBMaxConns)
	assert.True(t, cfg.RunMigrations)
	assert.Empty(t, cfg.WS.AllowedOrigins)
	assert.Equal(t, 64, cfg.WS.SendBuffer)
	assert.Empty(t, cfg.MemorySeed)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("DB_MAX_CONNS", "not-a-number")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("WS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("WS_SEND_RATE", "2.5")
	t.Setenv("MEMORY_SEED", "dev/employees.yaml")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.Equal(t, int32(25), cfg.DBMaxConns, "invalid ints fall back to the default")
	assert.False(t, cfg.RunMigrations)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.WS.AllowedOrigins)
	assert.InDelta(t, 2.5, cfg.WS.SendRate, 0.0001)
	assert.Equal(t, "dev/employees.yaml", cfg.MemorySeed)
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRequiresSecretInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}
