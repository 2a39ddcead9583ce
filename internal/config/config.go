package config

import (
	"fmt"
	"time"
)

// Storage backends
const (
	StorageBackendPostgres = "postgres"
	StorageBackendMemory   = "memory"
)

// Ingestion modes
const (
	IngestionModeSync  = "sync"
	IngestionModeQueue = "queue"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Postgres   PostgresConfig
	ClickHouse ClickHouseConfig
	Redis      RedisConfig
	Worker     WorkerConfig
	Ingestion  IngestionConfig
	Storage    StorageConfig
	Auth       AuthConfig
	Log        LogConfig
	Sentry     SentryConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PostgresConfig holds PostgreSQL configuration
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// DSN returns the PostgreSQL connection string
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// ClickHouseConfig holds ClickHouse configuration
type ClickHouseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// Addr returns the ClickHouse native protocol address
func (c ClickHouseConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WorkerConfig holds background worker configuration
type WorkerConfig struct {
	Concurrency   int    `mapstructure:"concurrency"`
	QueueCritical string `mapstructure:"queue_critical"`
	QueueDefault  string `mapstructure:"queue_default"`
	QueueLow      string `mapstructure:"queue_low"`
}

// IngestionConfig holds batch ingestion configuration
type IngestionConfig struct {
	Mode           string        `mapstructure:"mode"`
	MaxBatchSize   int           `mapstructure:"max_batch_size"`
	EventTimeoutMs int           `mapstructure:"event_timeout_ms"`
	EventTimeout   time.Duration `mapstructure:"-"`
}

// Queued reports whether batches are handed to the worker instead of processed inline
func (c IngestionConfig) Queued() bool {
	return c.Mode == IngestionModeQueue
}

// StorageConfig selects the entity store implementation
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
}

// APIKey maps a public/secret key pair to the project it authenticates
type APIKey struct {
	PublicKey string
	SecretKey string
	ProjectID string
}

// AuthConfig holds API key configuration
type AuthConfig struct {
	APIKeys []APIKey `mapstructure:"-"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SentryConfig holds panic reporting configuration
type SentryConfig struct {
	DSN string `mapstructure:"dsn"`
}

// Enabled reports whether a Sentry DSN is configured
func (c SentryConfig) Enabled() bool {
	return c.DSN != ""
}

// IsDevelopment returns true if running in development mode
func (c Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c Config) IsProduction() bool {
	return c.Server.Env == "production"
}
