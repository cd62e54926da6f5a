package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	HTTPAddr  string `mapstructure:"http_addr" validate:"required"`
	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=json text"`

	DB     DBConfig     `mapstructure:",squash"`
	Redis  RedisConfig  `mapstructure:",squash"`
	Auth   AuthConfig   `mapstructure:",squash"`
	Worker WorkerConfig `mapstructure:",squash"`

	// RateLimit uses the ulule limiter format, e.g. "60-M".
	RateLimit string `mapstructure:"rate_limit" validate:"required"`
}

type DBConfig struct {
	Driver          string        `mapstructure:"db_driver" validate:"oneof=postgres sqlite"`
	URL             string        `mapstructure:"database_url"`
	Host            string        `mapstructure:"db_host"`
	Port            string        `mapstructure:"db_port"`
	User            string        `mapstructure:"db_user"`
	Password        string        `mapstructure:"db_password"`
	Name            string        `mapstructure:"db_name"`
	SQLitePath      string        `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
	MaxOpenConns    int           `mapstructure:"db_max_open_conns" validate:"min=0"`
	MaxIdleConns    int           `mapstructure:"db_max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `mapstructure:"db_conn_max_lifetime"`
}

type RedisConfig struct {
	Addr string `mapstructure:"redis_addr" validate:"required"`
}

type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret" validate:"required"`
	InternalToken string `mapstructure:"internal_api_token" validate:"required"`
}

type WorkerConfig struct {
	Concurrency   int           `mapstructure:"worker_concurrency" validate:"min=1"`
	PurgeInterval time.Duration `mapstructure:"purge_interval" validate:"gt=0"`

	// MonitoringAddr serves the task dashboard; empty disables it.
	MonitoringAddr string `mapstructure:"monitoring_addr"`
}

var defaults = map[string]any{
	"http_addr":            ":8080",
	"log_level":            "info",
	"log_format":           "json",
	"db_driver":            DriverPostgres,
	"database_url":         "",
	"db_host":              "localhost",
	"db_port":              "5432",
	"db_user":              "postgres",
	"db_password":          "",
	"db_name":              "notifier",
	"sqlite_path":          "notifier.db",
	"db_max_open_conns":    30,
	"db_max_idle_conns":    5,
	"db_conn_max_lifetime": 10 * time.Minute,
	"redis_addr":           "localhost:6379",
	"jwt_secret":           "",
	"internal_api_token":   "",
	"rate_limit":           "60-M",
	"worker_concurrency":   10,
	"purge_interval":       24 * time.Hour,
	"monitoring_addr":      ":8081",
}

// Load reads .env (if present), an optional config.yaml and the process
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("Failed to load .env file", "error", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, ve := range validationErrors {
				fields = append(fields, fmt.Sprintf("%s (%s)", ve.StructNamespace(), ve.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DSN is the connection string handed to sqlx for the configured driver.
func (c DBConfig) DSN() string {
	if c.Driver == DriverSQLite {
		return "file:" + c.SQLitePath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	return c.postgresURL()
}

// MigrationURL is the database URL understood by golang-migrate.
func (c DBConfig) MigrationURL() string {
	if c.Driver == DriverSQLite {
		return "sqlite://" + c.SQLitePath
	}
	return c.postgresURL()
}

func (c DBConfig) postgresURL() string {
	if c.URL != "" {
		return c.URL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
