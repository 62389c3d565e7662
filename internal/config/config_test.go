package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Creates a temporary YAML config file in a temporary directory.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.yaml")

	err := os.WriteFile(configPath, []byte(content), 0o600)
	require.NoError(t, err, "Failed to write temporary config file")

	return configPath
}

func TestLoadConfigFromPath(t *testing.T) {
	validYAML := `
env: "test"
http_server:
  address: ":8081"
storage:
  driver: "mongo"
mongo:
  MONGO_URI: "mongodb://mongo:27017"
  MONGO_DB_NAME: "store-test"
database:
  PG_HOST: "dbhost"
  PG_USER: "testuser"
  PG_DBNAME: "testdb"
  PG_SSLMODE: "disable"
redis:
  REDIS_HOST: "redishost"
  REDIS_PORT: "6380"
  REDIS_PASSWORD: "redispassword"
  REDIS_DB: 1
cache:
  default_ttl: "10m"
cart:
  max_retries: 3
otel:
  SERVICE_NAME: "test-service"
  EXPORTER_ENDPOINT: "http://otel:4318/v1/traces"
  SAMPLER_RATIO: 0.5
`

	t.Run("Success - Values From YAML", func(t *testing.T) {
		configPath := createTempConfigFile(t, validYAML)

		cfg, err := LoadConfigFromPath(configPath)

		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, "test", cfg.Env)
		assert.Equal(t, ":8081", cfg.HTTPServer.Addr)
		assert.Equal(t, StorageMongo, cfg.Storage.Driver)
		assert.Equal(t, "mongodb://mongo:27017", cfg.Mongo.URI)
		assert.Equal(t, "store-test", cfg.Mongo.Name)
		assert.Equal(t, "redishost", cfg.RedisConnect.Host)
		assert.Equal(t, 1, cfg.RedisConnect.DB)
		assert.Equal(t, 10*time.Minute, cfg.Cache.DefaultTTL)
		assert.Equal(t, 3, cfg.Cart.MaxRetries)
		assert.Equal(t, "test-service", cfg.Otel.ServiceName)
		assert.Equal(t, 0.5, cfg.Otel.SamplerRatio)
	})

	t.Run("Success - Defaults Applied", func(t *testing.T) {
		configPath := createTempConfigFile(t, `env: "test"`)

		cfg, err := LoadConfigFromPath(configPath)

		require.NoError(t, err)
		assert.Equal(t, ":3000", cfg.HTTPServer.Addr)
		assert.Equal(t, 5*time.Second, cfg.HTTPServer.ShutdownTimeout)
		assert.Equal(t, StorageMongo, cfg.Storage.Driver)
		assert.Equal(t, "clothing-store", cfg.Mongo.Name)
		assert.Equal(t, "carts", cfg.Mongo.Collection)
		assert.Equal(t, 15*time.Minute, cfg.Cache.DefaultTTL)
		assert.False(t, cfg.Cache.Disabled)
		assert.Equal(t, 5*time.Second, cfg.Mongo.Timeout)
		assert.Equal(t, 5*time.Second, cfg.Database.QueryTimeout)
		assert.Equal(t, 5, cfg.Cart.MaxRetries)
		assert.Empty(t, cfg.Otel.ExporterEndpoint)
	})

	t.Run("Success - Cache Disabled And Store Timeouts", func(t *testing.T) {
		configPath := createTempConfigFile(t, "cache:\n  disabled: true\nmongo:\n  MONGO_TIMEOUT: \"2s\"\ndatabase:\n  QUERY_TIMEOUT: \"750ms\"\n")

		cfg, err := LoadConfigFromPath(configPath)

		require.NoError(t, err)
		assert.True(t, cfg.Cache.Disabled)
		assert.Equal(t, 2*time.Second, cfg.Mongo.Timeout)
		assert.Equal(t, 750*time.Millisecond, cfg.Database.QueryTimeout)
	})

	t.Run("Success - Environment Fills Missing Values", func(t *testing.T) {
		configPath := createTempConfigFile(t, `env: "test"`)
		t.Setenv("CART_MAX_RETRIES", "9")
		t.Setenv("MONGO_DB_NAME", "from-env")

		cfg, err := LoadConfigFromPath(configPath)

		require.NoError(t, err)
		assert.Equal(t, 9, cfg.Cart.MaxRetries)
		assert.Equal(t, "from-env", cfg.Mongo.Name)
	})

	t.Run("Failure - File Does Not Exist", func(t *testing.T) {
		cfg, err := LoadConfigFromPath(filepath.Join(t.TempDir(), "missing.yaml"))

		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "config file does not exist")
	})

	t.Run("Failure - Unknown Storage Driver", func(t *testing.T) {
		configPath := createTempConfigFile(t, "storage:\n  driver: \"cassandra\"\n")

		cfg, err := LoadConfigFromPath(configPath)

		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "unknown storage driver")
	})

	t.Run("Failure - Postgres Without Credentials", func(t *testing.T) {
		configPath := createTempConfigFile(t, "storage:\n  driver: \"postgres\"\n")

		_, err := LoadConfigFromPath(configPath)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "PG_USER")
	})

	t.Run("Failure - Invalid Retry Budget", func(t *testing.T) {
		configPath := createTempConfigFile(t, "cart:\n  max_retries: -1\n")

		_, err := LoadConfigFromPath(configPath)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_retries")
	})
}

func TestGetDSN(t *testing.T) {
	db := Database{User: "u", Password: "p", Host: "h", Port: "5433", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5433/n?sslmode=disable", db.GetDSN())

	redis := RedisConnect{Username: "ru", Password: "rp", Host: "rh", Port: "6380", DB: 2}
	assert.Equal(t, "redis://ru:rp@rh:6380/2", redis.GetDSN())
}
