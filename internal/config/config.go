package config

import (
	"github.com/maxviazov/basketball-live-service/internal/logger"
)

// Config is the whole application configuration tree, loaded from config.yaml
// with APP_-prefixed environment overrides.
type Config struct {
	Logger   logger.LoggerConfig `mapstructure:"logger"`
	Server   ServerConfig        `mapstructure:"server"`
	Postgres PostgresConfig      `mapstructure:"postgres"`
	Redis    RedisConfig         `mapstructure:"redis"`
	Game     GameConfig          `mapstructure:"game"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug|release|test
}

// PostgresConfig holds connection and pool tuning parameters.
// Durations are seconds to keep the YAML flat.
type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	DBName            string `mapstructure:"dbname"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod int    `mapstructure:"health_check_period"`
	MigrationsDir     string `mapstructure:"migrations_dir"`
}

// RedisConfig holds the optional live-snapshot cache settings. When disabled
// the publisher simply skips the cache sink.
type RedisConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

// GameConfig holds the scoreboard rules and publisher knobs.
type GameConfig struct {
	PeriodSeconds          int `mapstructure:"period_seconds"`
	RegulationPeriods      int `mapstructure:"regulation_periods"`
	MaxFouls               int `mapstructure:"max_fouls"`
	TimeoutAllotment       int `mapstructure:"timeout_allotment"`
	PublishTimeoutSeconds  int `mapstructure:"publish_timeout_seconds"`
	PublishAttempts        int `mapstructure:"publish_attempts"`
	PublishBackoffMillis   int `mapstructure:"publish_backoff_millis"`
}
