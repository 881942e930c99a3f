package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. FUTUREVIEW_SERVER_PORT.
const EnvPrefix = "FUTUREVIEW"

// Default values applied before any file or environment lookup.
var defaults = map[string]interface{}{
	"server.port":                     8080,
	"server.log_level":                "info",
	"server.cors_allowed_origins":     []string{"*"},
	"server.shutdown_timeout_seconds": 10,

	"database.url":                       "",
	"database.max_open_conns":            25,
	"database.max_idle_conns":            25,
	"database.conn_max_lifetime_minutes": 5,

	"generation.gemini_api_key":          "",
	"generation.model_name":              "imagen-3.0-generate-002",
	"generation.prompt_template_path":    "",
	"generation.request_timeout_seconds": 120,

	"worker.backoff_seconds":               5,
	"worker.visibility_retries":            3,
	"worker.visibility_retry_delay_ms":     100,
	"worker.failure_write_timeout_seconds": 10,

	"artifacts.backend":               "local",
	"artifacts.static_dir":            "static",
	"artifacts.images_subdir":         "images",
	"artifacts.url_prefix":            "/static/images",
	"artifacts.minio_endpoint":        "",
	"artifacts.minio_bucket":          "",
	"artifacts.minio_access_key":      "",
	"artifacts.minio_secret_key":      "",
	"artifacts.minio_use_ssl":         false,
	"artifacts.minio_public_base_url": "",

	"sweep.enabled":          false,
	"sweep.max_age_days":     14,
	"sweep.interval_minutes": 1440,
}

// Load reads configuration from a .env file (when present) and environment
// variables. Environment variables take precedence over defaults.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an optional config file (yaml, json or toml, chosen by
// extension). Environment variables take precedence over values from the file.
// Returns a populated Config struct or an error if loading/validation fails.
func LoadFile(path string) (*Config, error) {
	// A missing .env is normal outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks a Config against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
