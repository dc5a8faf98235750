package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads the YAML config at path and applies APP_-prefixed environment
// overrides (APP_POSTGRES_HOST overrides postgres.host, and so on).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	setDefaults(v)

	var config Config
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	// Credentials default empty so APP_POSTGRES_* env vars are visible to
	// Unmarshal even when the YAML omits them.
	v.SetDefault("postgres.user", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", "")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", 3600)
	v.SetDefault("postgres.max_conn_idle_time", 600)
	v.SetDefault("postgres.health_check_period", 60)
	v.SetDefault("postgres.migrations_dir", "migrations/goose_sql")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl_seconds", 120)

	v.SetDefault("game.period_seconds", 600)
	v.SetDefault("game.regulation_periods", 4)
	v.SetDefault("game.max_fouls", 5)
	v.SetDefault("game.timeout_allotment", 7)
	v.SetDefault("game.publish_timeout_seconds", 10)
	v.SetDefault("game.publish_attempts", 3)
	v.SetDefault("game.publish_backoff_millis", 250)
}
