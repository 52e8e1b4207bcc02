package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rental-catalog-go/internal/config"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func Test_ApplyEnv_ShouldOverrideDefaults(t *testing.T) {
	// setup
	cfg := config.Default()

	// act
	err := config.ApplyEnv(&cfg, envFrom(map[string]string{
		"DB_ADAPTER":    "mysql",
		"CACHE_TTL":     "90s",
		"KAFKA_BROKERS": "k1:9092,k2:9092",
		"DB_MIGRATE":    "true",
		"JWT_SECRET":    "s3cret",
	}))

	// assert
	require.NoError(t, err)
	assert.Equal(t, config.AdapterMySQL, cfg.Database.Adapter)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Database.Migrate)
	assert.Equal(t, "s3cret", cfg.HTTP.JWTSecret)
	assert.Equal(t, config.PostgresDSN(), cfg.Database.DSN)
	assert.NoError(t, cfg.Validate())
}

func Test_ApplyEnv_ShouldRejectMalformedValues(t *testing.T) {
	cfg := config.Default()

	assert.ErrorIs(t, config.ApplyEnv(&cfg, envFrom(map[string]string{"CACHE_TTL": "five minutes"})), config.ErrInvalidSetting)
	assert.ErrorIs(t, config.ApplyEnv(&cfg, envFrom(map[string]string{"DB_MIGRATE": "maybe"})), config.ErrInvalidSetting)
}

func Test_Load_ShouldReadYAMLAndLetEnvironmentWin(t *testing.T) {
	// setup
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	yamlConfig := `
database:
  adapter: sqlx
  dsn: postgres://yaml@db:5432/catalog
cache:
  ttl: 2m
http:
  addr: ":9000"
  jwt_secret: from-yaml
redis:
  addr: redis:6379
`
	require.NoError(t, os.WriteFile(path, []byte(yamlConfig), 0o600))
	t.Setenv("HTTP_ADDR", ":9100")

	// act
	cfg, err := config.Load(path)

	// assert
	require.NoError(t, err)
	assert.Equal(t, config.AdapterSQLX, cfg.Database.Adapter)
	assert.Equal(t, "postgres://yaml@db:5432/catalog", cfg.Database.DSN)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, ":9100", cfg.HTTP.Addr)
	assert.Equal(t, "from-yaml", cfg.HTTP.JWTSecret)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, int32(20), cfg.Pool.MaxConns)
}

func Test_Load_ShouldFailForMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Error(t, err)
}

func Test_Validate(t *testing.T) {
	valid := config.Default()
	valid.HTTP.JWTSecret = "secret"

	testCases := []struct {
		name     string
		mutate   func(*config.Config)
		expected error
	}{
		{name: "unknown adapter", mutate: func(c *config.Config) { c.Database.Adapter = "sqlite3" }, expected: config.ErrUnknownAdapter},
		{name: "zero ttl", mutate: func(c *config.Config) { c.Cache.TTL = 0 }, expected: config.ErrInvalidSetting},
		{name: "missing jwt secret", mutate: func(c *config.Config) { c.HTTP.JWTSecret = "" }, expected: config.ErrInvalidSetting},
		{name: "brokers without topic", mutate: func(c *config.Config) {
			c.Kafka.Brokers = []string{"k1:9092"}
			c.Kafka.Topic = ""
		}, expected: config.ErrInvalidSetting},
	}

	assert.NoError(t, valid.Validate())

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)

			assert.ErrorIs(t, cfg.Validate(), tc.expected)
		})
	}
}

func Test_PGXPoolConfig_ShouldApplyPoolLimits(t *testing.T) {
	// setup
	pool := config.Default().Pool

	// act
	dbConfig, err := config.PGXPoolConfig(config.PostgresDSN(), pool)

	// assert
	require.NoError(t, err)
	assert.Equal(t, pool.MaxConns, dbConfig.MaxConns)
	assert.Equal(t, pool.MinConns, dbConfig.MinConns)
	assert.Equal(t, pool.ConnectTimeout, dbConfig.ConnConfig.ConnectTimeout)
	assert.Equal(t, "catalog", dbConfig.ConnConfig.Database)
}

func Test_PGXPoolConfig_ShouldRejectMalformedDSN(t *testing.T) {
	_, err := config.PGXPoolConfig("postgres://%zz", config.Default().Pool)

	assert.Error(t, err)
}

func Test_NormalizeMySQLDSN_ShouldEnableTimeParsing(t *testing.T) {
	// act
	dsn, err := config.NormalizeMySQLDSN(config.MySQLDSN())

	// assert
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "tcp(localhost:3306)/catalog")
}
