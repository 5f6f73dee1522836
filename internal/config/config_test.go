package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_PORT", "STORE_DRIVER", "TODOS_TABLE", "SIGNED_URL_EXPIRATION", "KAFKA_BROKERS", "REDIS_URL", "CORS_ALLOW_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, DriverDynamoDB, cfg.StoreDriver)
	assert.Equal(t, "Todos", cfg.TodosTable)
	assert.Equal(t, 300*time.Second, cfg.SignedURLExpiration)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.EventsEnabled())
	assert.False(t, cfg.CacheEnabled())
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv("CACHE_TTL_SEC", "15")
	t.Setenv("DB_POOL_SIZE", "not-a-number")

	cfg := Load()

	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 15*time.Second, cfg.CacheTTL)
	assert.Equal(t, 20, cfg.DBPoolSize)
}

func TestValidate(t *testing.T) {
	cfg := &Config{StoreDriver: DriverMemory, JWTSecret: "s", SignedURLExpiration: time.Minute}
	require.NoError(t, cfg.Validate())

	cfg = &Config{StoreDriver: DriverPostgres, SignedURLExpiration: time.Minute}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")

	cfg = &Config{StoreDriver: "cassandra", JWTSecret: "s", SignedURLExpiration: time.Minute}
	assert.ErrorContains(t, cfg.Validate(), "unknown STORE_DRIVER")
}
