package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported values for Database.Adapter.
const (
	AdapterPGX   = "pgx"
	AdapterSQL   = "sql"
	AdapterSQLX  = "sqlx"
	AdapterMySQL = "mysql"
)

// Log formats.
const (
	LogFormatText    = "text"
	LogFormatJSON    = "json"
	LogFormatZerolog = "zerolog"
)

var (
	// ErrUnknownAdapter is returned when Database.Adapter names no supported adapter.
	ErrUnknownAdapter = errors.New("unknown database adapter")

	// ErrInvalidSetting is returned when a setting has a value the service cannot run with.
	ErrInvalidSetting = errors.New("invalid setting")
)

// Config is the complete service configuration.
type Config struct {
	Database Database `yaml:"database"`
	Pool     Pool     `yaml:"pool"`
	Cache    Cache    `yaml:"cache"`
	HTTP     HTTP     `yaml:"http"`
	Kafka    Kafka    `yaml:"kafka"`
	Redis    Redis    `yaml:"redis"`
	Log      Log      `yaml:"log"`
}

// Database selects the engine adapter and the data sources.
type Database struct {
	Adapter    string `yaml:"adapter"`
	DSN        string `yaml:"dsn"`
	ReplicaDSN string `yaml:"replica_dsn"`
	MySQLDSN   string `yaml:"mysql_dsn"`
	Migrate    bool   `yaml:"migrate"`
}

// Pool holds connection pool limits, shared by all adapters.
type Pool struct {
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
}

// Cache configures the entity caches.
type Cache struct {
	TTL time.Duration `yaml:"ttl"`
}

// HTTP configures the API server and its session tokens.
type HTTP struct {
	Addr      string        `yaml:"addr"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	RateLimit float64       `yaml:"rate_limit"`
	RateBurst int           `yaml:"rate_burst"`
}

// Kafka configures the snapshot notifier. No brokers disables it.
type Kafka struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Redis configures the snapshot mirror. An empty address disables it.
type Redis struct {
	Addr      string        `yaml:"addr"`
	KeyPrefix string        `yaml:"key_prefix"`
	TTL       time.Duration `yaml:"ttl"`
}

// Log configures the service logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used for local development.
func Default() Config {
	return Config{
		Database: Database{
			Adapter:  AdapterPGX,
			DSN:      PostgresDSN(),
			MySQLDSN: MySQLDSN(),
		},
		Pool: Pool{
			MaxConns:        20,
			MinConns:        2,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 5 * time.Minute,
			ConnectTimeout:  5 * time.Second,
		},
		Cache: Cache{TTL: 5 * time.Minute},
		HTTP: HTTP{
			Addr:      ":8080",
			TokenTTL:  24 * time.Hour,
			RateLimit: 10,
			RateBurst: 20,
		},
		Kafka: Kafka{Topic: "catalog-snapshots"},
		Redis: Redis{KeyPrefix: "catalog:", TTL: 10 * time.Minute},
		Log:   Log{Level: "info", Format: LogFormatText},
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped when empty),
// and the process environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err = yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := ApplyEnv(&cfg, os.Getenv); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

// ApplyEnv overrides cfg with every variable getenv returns a non-empty value for.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	setString := func(key string, target *string) {
		if v := getenv(key); v != "" {
			*target = v
		}
	}

	setString("DB_ADAPTER", &cfg.Database.Adapter)
	setString("POSTGRES_DSN", &cfg.Database.DSN)
	setString("POSTGRES_REPLICA_DSN", &cfg.Database.ReplicaDSN)
	setString("MYSQL_DSN", &cfg.Database.MySQLDSN)
	setString("HTTP_ADDR", &cfg.HTTP.Addr)
	setString("JWT_SECRET", &cfg.HTTP.JWTSecret)
	setString("KAFKA_TOPIC", &cfg.Kafka.Topic)
	setString("REDIS_ADDR", &cfg.Redis.Addr)
	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("LOG_FORMAT", &cfg.Log.Format)

	if v := getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}

	if v := getenv("DB_MIGRATE"); v != "" {
		migrate, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Join(ErrInvalidSetting, fmt.Errorf("DB_MIGRATE: %w", err))
		}

		cfg.Database.Migrate = migrate
	}

	durations := map[string]*time.Duration{
		"CACHE_TTL": &cfg.Cache.TTL,
		"TOKEN_TTL": &cfg.HTTP.TokenTTL,
		"REDIS_TTL": &cfg.Redis.TTL,
	}

	for key, target := range durations {
		v := getenv(key)
		if v == "" {
			continue
		}

		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Join(ErrInvalidSetting, fmt.Errorf("%s: %w", key, err))
		}

		*target = d
	}

	return nil
}

// Validate checks the settings the service cannot start without.
func (c Config) Validate() error {
	switch c.Database.Adapter {
	case AdapterPGX, AdapterSQL, AdapterSQLX, AdapterMySQL:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAdapter, c.Database.Adapter)
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("%w: cache ttl must be positive", ErrInvalidSetting)
	}

	if c.HTTP.JWTSecret == "" {
		return fmt.Errorf("%w: jwt secret must be set", ErrInvalidSetting)
	}

	if c.HTTP.TokenTTL <= 0 {
		return fmt.Errorf("%w: token ttl must be positive", ErrInvalidSetting)
	}

	if c.Kafka.Topic == "" && len(c.Kafka.Brokers) > 0 {
		return fmt.Errorf("%w: kafka topic must be set when brokers are configured", ErrInvalidSetting)
	}

	return nil
}
