// Package config defines the TenderWise configuration model and its loader.
// Configuration is read from a YAML file and overridden by TENDERWISE_*
// environment variables, with sane defaults so a bare binary starts locally.
package config

import (
	"fmt"
	"time"

	"github.com/oclem/tenderwise/internal/infrastructure/monitoring/logging"
)

// Config is the root configuration object shared by all binaries.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      logging.Config `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// AppConfig identifies the running instance.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // development | staging | production
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig configures the PostgreSQL pool holding historical contract
// tables.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}

// RedisConfig configures the report and dataset cache.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// KafkaConfig configures the async analysis queue.
type KafkaConfig struct {
	Brokers        []string `mapstructure:"brokers"`
	RequestTopic   string   `mapstructure:"request_topic"`
	CompletedTopic string   `mapstructure:"completed_topic"`
	ConsumerGroup  string   `mapstructure:"consumer_group"`
}

// StorageConfig configures the MinIO archive for generated reports.
type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
}

// FetchConfig configures outbound retrieval of notice documents.
type FetchConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// AnalysisConfig tunes the analysis pipeline.
type AnalysisConfig struct {
	// MaxCandidates caps the similar-contract list in a report.
	MaxCandidates int `mapstructure:"max_candidates"`

	// MinScore is the relevance threshold below which a scored row is
	// discarded.
	MinScore float64 `mapstructure:"min_score"`

	// RowLimit bounds how many rows are loaded per historical table.
	RowLimit int `mapstructure:"row_limit"`

	// AuthorityBlocklist lists substrings that disqualify short candidate
	// subjects during extraction (they usually name the contracting body, not
	// the works).
	AuthorityBlocklist []string `mapstructure:"authority_blocklist"`

	// ScoreWorkers bounds the goroutines scoring dataset rows concurrently.
	ScoreWorkers int `mapstructure:"score_workers"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Validate checks invariants that defaults cannot guarantee.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("config: database host is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("config: database name is required")
	}
	if c.Analysis.MaxCandidates <= 0 {
		return fmt.Errorf("config: analysis.max_candidates must be positive")
	}
	if c.Analysis.MinScore < 0 {
		return fmt.Errorf("config: analysis.min_score must be non-negative")
	}
	if c.Analysis.ScoreWorkers <= 0 {
		return fmt.Errorf("config: analysis.score_workers must be positive")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("config: fetch.timeout must be positive")
	}
	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("config: unknown environment %q", c.App.Environment)
	}
	return nil
}

// IsProduction reports whether the instance runs with production settings.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
