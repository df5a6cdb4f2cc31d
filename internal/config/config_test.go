package config

import (
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "property-service", cfg.ServiceName)
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 15*time.Minute, cfg.PhotoURLTTL)
	assert.Equal(t, int64(1000), cfg.LocalCacheSize)
	assert.False(t, cfg.MinIOUseSSL)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://u:p@localhost:5432/rentals?sslmode=disable")
	t.Setenv("POSTGRES_MAX_OPEN_CONNS", "25")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg, err := LoadConfig(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, 25, cfg.PostgresMaxOpenConns)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.MinIOUseSSL)
}

func TestLoadConfig_EmptyEnvDisablesOptionalComponents(t *testing.T) {
	t.Setenv("REDIS_ADDRESS", "")
	t.Setenv("MINIO_ENDPOINT", "")
	t.Setenv("GRPC_PORT", "")
	t.Setenv("PROMETHEUS_METRICS_PORT", "")

	cfg, err := LoadConfig(logger.NewNop())
	require.NoError(t, err)

	assert.Empty(t, cfg.RedisAddress)
	assert.Empty(t, cfg.MinIOEndpoint)
	assert.Empty(t, cfg.GRPCPort)
	assert.Empty(t, cfg.PrometheusMetricsPort)
	assert.Equal(t, "8080", cfg.HTTPPort)
}

func TestLoadConfig_EmptyRequiredEnvFailsValidation(t *testing.T) {
	t.Setenv("HTTP_PORT", "")

	_, err := LoadConfig(logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_PORT is required")
}

func TestLoadConfig_UnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")

	_, err := LoadConfig(logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown STORE_DRIVER "sqlite"`)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{StoreDriver: StoreMongo, MongoURI: "mongodb://x", MongoDatabase: "db", HTTPPort: "8080", CacheTTL: time.Minute, PhotoURLTTL: time.Minute}
	require.NoError(t, valid.Validate())

	noURI := valid
	noURI.MongoURI = ""
	assert.ErrorContains(t, noURI.Validate(), "MONGO_URI")

	pg := valid
	pg.StoreDriver = StorePostgres
	assert.ErrorContains(t, pg.Validate(), "POSTGRES_DSN")

	noTTL := valid
	noTTL.CacheTTL = 0
	assert.ErrorContains(t, noTTL.Validate(), "CACHE_TTL")
}
