package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Optionally read from config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/llmtrace")

	// Ignore error if config file not found
	_ = v.ReadInConfig()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Server
	cfg.Server.Host = v.GetString("server_host")
	cfg.Server.Port = v.GetInt("server_port")
	cfg.Server.Env = v.GetString("server_env")

	// PostgreSQL
	cfg.Postgres.Host = v.GetString("postgres_host")
	cfg.Postgres.Port = v.GetInt("postgres_port")
	cfg.Postgres.User = v.GetString("postgres_user")
	cfg.Postgres.Password = v.GetString("postgres_password")
	cfg.Postgres.Database = v.GetString("postgres_db")
	cfg.Postgres.SSLMode = v.GetString("postgres_ssl_mode")
	cfg.Postgres.MaxConns = int32(v.GetInt("postgres_max_conns"))
	cfg.Postgres.MinConns = int32(v.GetInt("postgres_min_conns"))

	// ClickHouse
	cfg.ClickHouse.Host = v.GetString("clickhouse_host")
	cfg.ClickHouse.Port = v.GetInt("clickhouse_port")
	cfg.ClickHouse.User = v.GetString("clickhouse_user")
	cfg.ClickHouse.Password = v.GetString("clickhouse_password")
	cfg.ClickHouse.Database = v.GetString("clickhouse_db")

	// Redis
	cfg.Redis.Host = v.GetString("redis_host")
	cfg.Redis.Port = v.GetInt("redis_port")
	cfg.Redis.Password = v.GetString("redis_password")
	cfg.Redis.DB = v.GetInt("redis_db")

	// Worker
	cfg.Worker.Concurrency = v.GetInt("worker_concurrency")
	cfg.Worker.QueueCritical = v.GetString("worker_queue_critical")
	cfg.Worker.QueueDefault = v.GetString("worker_queue_default")
	cfg.Worker.QueueLow = v.GetString("worker_queue_low")

	// Ingestion
	cfg.Ingestion.Mode = v.GetString("ingestion_mode")
	cfg.Ingestion.MaxBatchSize = v.GetInt("ingestion_max_batch_size")
	cfg.Ingestion.EventTimeoutMs = v.GetInt("ingestion_event_timeout_ms")
	cfg.Ingestion.EventTimeout = time.Duration(cfg.Ingestion.EventTimeoutMs) * time.Millisecond

	// Storage
	cfg.Storage.Backend = v.GetString("storage_backend")

	// Auth
	keys, err := parseAPIKeys(v.GetStringSlice("auth_api_keys"))
	if err != nil {
		return nil, err
	}
	cfg.Auth.APIKeys = keys

	// Logging
	cfg.Log.Level = v.GetString("log_level")
	cfg.Log.Format = v.GetString("log_format")

	// Sentry
	cfg.Sentry.DSN = v.GetString("sentry_dsn")

	// Validate required fields
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", 8080)
	v.SetDefault("server_env", "development")

	// PostgreSQL defaults
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "llmtrace")
	v.SetDefault("postgres_password", "llmtrace")
	v.SetDefault("postgres_db", "llmtrace")
	v.SetDefault("postgres_ssl_mode", "disable")
	v.SetDefault("postgres_max_conns", 25)
	v.SetDefault("postgres_min_conns", 5)

	// ClickHouse defaults
	v.SetDefault("clickhouse_host", "localhost")
	v.SetDefault("clickhouse_port", 9000)
	v.SetDefault("clickhouse_user", "llmtrace")
	v.SetDefault("clickhouse_password", "llmtrace")
	v.SetDefault("clickhouse_db", "llmtrace")

	// Redis defaults
	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", 6379)
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	// Worker defaults
	v.SetDefault("worker_concurrency", 10)
	v.SetDefault("worker_queue_critical", "critical")
	v.SetDefault("worker_queue_default", "default")
	v.SetDefault("worker_queue_low", "low")

	// Ingestion defaults
	v.SetDefault("ingestion_mode", IngestionModeSync)
	v.SetDefault("ingestion_max_batch_size", 1000)
	v.SetDefault("ingestion_event_timeout_ms", 5000)

	// Storage defaults
	v.SetDefault("storage_backend", StorageBackendPostgres)

	// Auth defaults
	v.SetDefault("auth_api_keys", []string{})

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("sentry_dsn", "")
}

// parseAPIKeys reads entries of the form publicKey:secretKey:projectId.
// Entries may also arrive as one comma separated environment value.
func parseAPIKeys(raw []string) ([]APIKey, error) {
	var keys []APIKey
	for _, item := range raw {
		for _, entry := range strings.Split(item, ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}

			parts := strings.Split(entry, ":")
			if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
				return nil, fmt.Errorf("invalid api key entry %q: expected publicKey:secretKey:projectId", entry)
			}
			if _, err := uuid.Parse(parts[2]); err != nil {
				return nil, fmt.Errorf("invalid project id in api key %q: %w", parts[0], err)
			}

			keys = append(keys, APIKey{
				PublicKey: parts[0],
				SecretKey: parts[1],
				ProjectID: parts[2],
			})
		}
	}
	return keys, nil
}

func validate(cfg *Config) error {
	switch cfg.Storage.Backend {
	case StorageBackendPostgres, StorageBackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Backend == StorageBackendMemory && cfg.IsProduction() {
		return fmt.Errorf("memory storage backend is not allowed in production")
	}

	switch cfg.Ingestion.Mode {
	case IngestionModeSync, IngestionModeQueue:
	default:
		return fmt.Errorf("unknown ingestion mode %q", cfg.Ingestion.Mode)
	}
	if cfg.Ingestion.Queued() && cfg.Storage.Backend == StorageBackendMemory {
		return fmt.Errorf("queue ingestion mode requires a shared storage backend")
	}
	if cfg.Ingestion.MaxBatchSize <= 0 {
		return fmt.Errorf("ingestion max batch size must be positive")
	}
	if cfg.Ingestion.EventTimeoutMs <= 0 {
		return fmt.Errorf("ingestion event timeout must be positive")
	}
	return nil
}
