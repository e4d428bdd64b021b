package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	StoreDriverDatabase = "database"
	StoreDriverMemory   = "memory"
)

// Membership consistency policies for the event/chat two-write sequence
const (
	ConsistencySequential = "sequential"
	ConsistencyCompensate = "compensate"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string `yaml:"port" env:"SERVER_PORT"`
		Mode            string `yaml:"mode" env:"SERVER_MODE"`
		ReadTimeout     string `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout    string `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		ShutdownTimeout string `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	Store struct {
		// Driver selects "database" (Postgres users + Mongo chats/events) or "memory".
		Driver string `yaml:"driver" env:"STORE_DRIVER"`
	} `yaml:"store"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	Mongo struct {
		URI      string `yaml:"uri" env:"MONGO_URI"`
		Database string `yaml:"database" env:"MONGO_DATABASE"`
		Timeout  string `yaml:"timeout" env:"MONGO_TIMEOUT"`
	} `yaml:"mongo"`

	JWT struct {
		Enabled bool   `yaml:"enabled" env:"JWT_ENABLED"`
		Secret  string `yaml:"secret" env:"JWT_SECRET"`
		Issuer  string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Chat struct {
		RequireSenderMembership   bool `yaml:"require_sender_membership" env:"CHAT_REQUIRE_SENDER_MEMBERSHIP"`
		UnreadExcludesOwnMessages bool `yaml:"unread_excludes_own_messages" env:"CHAT_UNREAD_EXCLUDES_OWN_MESSAGES"`
	} `yaml:"chat"`

	Membership struct {
		Consistency        string `yaml:"consistency" env:"MEMBERSHIP_CONSISTENCY"`
		SecondWriteRetries int    `yaml:"second_write_retries" env:"MEMBERSHIP_SECOND_WRITE_RETRIES"`
		RetryBackoff       string `yaml:"retry_backoff" env:"MEMBERSHIP_RETRY_BACKOFF"`
	} `yaml:"membership"`

	Broadcast struct {
		// Driver is "local" (in-process hub only) or "redis" (relay through pub/sub).
		Driver        string `yaml:"driver" env:"BROADCAST_DRIVER"`
		RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
		RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
		RedisDB       int    `yaml:"redis_db" env:"REDIS_DB"`
		Channel       string `yaml:"channel" env:"BROADCAST_CHANNEL"`
	} `yaml:"broadcast"`

	Reconcile struct {
		// Driver is "log" or "kafka".
		Driver       string `yaml:"driver" env:"RECONCILE_DRIVER"`
		KafkaBrokers string `yaml:"kafka_brokers" env:"KAFKA_BROKERS"`
		KafkaTopic   string `yaml:"kafka_topic" env:"KAFKA_RECONCILE_TOPIC"`
	} `yaml:"reconcile"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED"`
		Path    string `yaml:"path" env:"METRICS_PATH"`
	} `yaml:"metrics"`

	Tracing struct {
		Enabled     bool    `yaml:"enabled" env:"OTEL_ENABLED"`
		Endpoint    string  `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
		ServiceName string  `yaml:"service_name" env:"OTEL_SERVICE_NAME"`
		SampleRatio float64 `yaml:"sample_ratio" env:"OTEL_TRACES_SAMPLER_ARG"`
	} `yaml:"tracing"`

	CORS struct {
		AllowedOrigins string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
	} `yaml:"cors"`
}

// LoadConfig loads configuration from a .env file, a YAML file and environment variables,
// in increasing order of precedence.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// A missing .env is normal outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.ReadTimeout = "10s"
	config.Server.WriteTimeout = "10s"
	config.Server.ShutdownTimeout = "10s"

	config.Store.Driver = StoreDriverDatabase

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "geoconnect"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.Mongo.URI = "mongodb://localhost:27017"
	config.Mongo.Database = "geoconnect"
	config.Mongo.Timeout = "5s"

	config.JWT.Issuer = "geoconnect.app"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Membership.Consistency = ConsistencySequential
	config.Membership.SecondWriteRetries = 2
	config.Membership.RetryBackoff = "100ms"

	config.Broadcast.Driver = "local"
	config.Broadcast.RedisAddr = "localhost:6379"
	config.Broadcast.Channel = "geoconnect:messages"

	config.Reconcile.Driver = "log"
	config.Reconcile.KafkaBrokers = "localhost:9092"
	config.Reconcile.KafkaTopic = "membership.reconcile"

	config.Metrics.Enabled = true
	config.Metrics.Path = "/metrics"

	config.Tracing.Endpoint = "localhost:4318"
	config.Tracing.ServiceName = "geoconnect-api"
	config.Tracing.SampleRatio = 1.0

	config.CORS.AllowedOrigins = "http://localhost:3000"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Store.Driver {
	case StoreDriverDatabase:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if config.Mongo.URI == "" {
			return fmt.Errorf("mongo uri is required")
		}
		if config.Mongo.Database == "" {
			return fmt.Errorf("mongo database is required")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", config.Store.Driver)
	}

	if config.JWT.Enabled && config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required when JWT verification is enabled")
	}

	switch config.Membership.Consistency {
	case ConsistencySequential, ConsistencyCompensate:
	default:
		return fmt.Errorf("unknown membership consistency policy %q", config.Membership.Consistency)
	}
	if config.Membership.SecondWriteRetries < 0 {
		return fmt.Errorf("membership second write retries must not be negative")
	}

	switch config.Broadcast.Driver {
	case "local", "redis":
	default:
		return fmt.Errorf("unknown broadcast driver %q", config.Broadcast.Driver)
	}

	switch config.Reconcile.Driver {
	case "log", "kafka":
	default:
		return fmt.Errorf("unknown reconcile driver %q", config.Reconcile.Driver)
	}

	for name, value := range map[string]string{
		"server read timeout":      config.Server.ReadTimeout,
		"server write timeout":     config.Server.WriteTimeout,
		"server shutdown timeout":  config.Server.ShutdownTimeout,
		"mongo timeout":            config.Mongo.Timeout,
		"membership retry backoff": config.Membership.RetryBackoff,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	if config.Tracing.SampleRatio < 0 || config.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing sample ratio must be between 0 and 1")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// CORSOrigins splits the comma separated origin list.
func (c *Config) CORSOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORS.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// KafkaBrokerList splits the comma separated broker list.
func (c *Config) KafkaBrokerList() []string {
	return strings.Split(c.Reconcile.KafkaBrokers, ",")
}
