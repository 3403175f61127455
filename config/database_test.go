package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetDatabaseConfigFromEnv(t *testing.T) {
	t.Setenv("VIDFETCH_DB_TYPE", "mysql")
	t.Setenv("VIDFETCH_DB_HOST", "db.internal")
	t.Setenv("VIDFETCH_DB_USER", "vid")
	t.Setenv("VIDFETCH_DB_PASSWORD", "secret")
	t.Setenv("VIDFETCH_DB_NAME", "videos")

	c := GetDatabaseConfig()
	assert.NoError(t, c.ValidateConfig())
	assert.Equal(t, 3306, c.Server.Port)
	assert.Equal(t, "vid:secret@tcp(db.internal:3306)/videos?charset=utf8mb4&parseTime=True&loc=UTC", c.GetDSN())
}

func TestGetDatabaseConfigPostgresPort(t *testing.T) {
	t.Setenv("VIDFETCH_DB_TYPE", "postgres")
	c := GetDatabaseConfig()
	assert.Equal(t, 5432, c.Server.Port)
	assert.Contains(t, c.GetDSN(), "port=5432")
}

func TestValidateConfig(t *testing.T) {
	c := &DatabaseConfig{Type: "oracle"}
	assert.Error(t, c.ValidateConfig())

	c = &DatabaseConfig{Type: DatabaseTypeSQLite}
	assert.Error(t, c.ValidateConfig())

	c.SQLite.Path = "/tmp/x.db"
	assert.NoError(t, c.ValidateConfig())
	assert.True(t, c.IsSQLite())
}

func TestEnvGetters(t *testing.T) {
	t.Setenv("VIDFETCH_PORT", "8080")
	t.Setenv("VIDFETCH_SCRATCH_TTL", "15m")
	t.Setenv("VIDFETCH_RATE_LIMIT", "nope")

	assert.Equal(t, 8080, GetPort())
	assert.Equal(t, "15m0s", GetScratchTTL().String())
	assert.Equal(t, 30, GetRateLimit())
	assert.Equal(t, "vidfetch", GetName())
}

func TestGetTrustedProxies(t *testing.T) {
	t.Setenv("VIDFETCH_TRUSTED_PROXIES", "")
	assert.Empty(t, GetTrustedProxies())

	t.Setenv("VIDFETCH_TRUSTED_PROXIES", " 10.0.0.1, 172.16.0.0/12 ,")
	assert.Equal(t, []string{"10.0.0.1", "172.16.0.0/12"}, GetTrustedProxies())
}
