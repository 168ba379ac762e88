package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "TENDERWISE"

// Load reads configuration from the given YAML file (optional; pass "" to use
// defaults plus environment only) and applies TENDERWISE_* environment
// overrides. Nested keys map with underscores: TENDERWISE_DATABASE_HOST
// overrides database.host.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "tenderwise")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_paths", []string{"stdout"})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "tenderwise")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "tenderwise")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.migrations_path", "migrations")

	// Redis, Kafka, and object storage are opt-in: the pipeline runs
	// synchronous and uncached until an address is configured.
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "24h")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.request_topic", "tenderwise.analysis.request")
	v.SetDefault("kafka.completed_topic", "tenderwise.analysis.completed")
	v.SetDefault("kafka.consumer_group", "tenderwise-worker")

	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.bucket", "tenderwise-reports")

	v.SetDefault("fetch.timeout", "30s")
	v.SetDefault("fetch.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) TenderWise/1.0")

	v.SetDefault("analysis.max_candidates", 20)
	v.SetDefault("analysis.min_score", 30.0)
	v.SetDefault("analysis.row_limit", 5000)
	v.SetDefault("analysis.authority_blocklist",
		[]string{"instituto", "ministerio", "ayuntamiento"})
	v.SetDefault("analysis.score_workers", 8)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
