package config

import (
	"path/filepath"
	"time"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Worker     WorkerConfig     `mapstructure:"worker"     validate:"required"`
	Artifacts  ArtifactsConfig  `mapstructure:"artifacts"  validate:"required"`
	Sweep      SweepConfig      `mapstructure:"sweep"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int      `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string   `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	CORSAllowedOrigins     []string `mapstructure:"cors_allowed_origins"     validate:"required,min=1"`
	ShutdownTimeoutSeconds int      `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url"                       validate:"required,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"            validate:"gt=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"            validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gt=0"`
}

// GenerationConfig contains the image generation provider settings.
type GenerationConfig struct {
	GeminiAPIKey          string `mapstructure:"gemini_api_key"          validate:"required"`
	ModelName             string `mapstructure:"model_name"              validate:"required"`
	PromptTemplatePath    string `mapstructure:"prompt_template_path"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" validate:"gt=0"`
}

// RequestTimeout returns the per-call provider timeout.
func (c GenerationConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// WorkerConfig tunes the single background worker.
type WorkerConfig struct {
	BackoffSeconds             int `mapstructure:"backoff_seconds"               validate:"gte=0"`
	VisibilityRetries          int `mapstructure:"visibility_retries"            validate:"gte=1"`
	VisibilityRetryDelayMS     int `mapstructure:"visibility_retry_delay_ms"     validate:"gte=0"`
	FailureWriteTimeoutSeconds int `mapstructure:"failure_write_timeout_seconds" validate:"gt=0"`
}

// ArtifactsConfig selects where generated images are stored.
// The minio fields are only required when Backend is "minio".
type ArtifactsConfig struct {
	Backend      string `mapstructure:"backend"       validate:"required,oneof=local minio"`
	StaticDir    string `mapstructure:"static_dir"    validate:"required"`
	ImagesSubdir string `mapstructure:"images_subdir" validate:"required"`
	URLPrefix    string `mapstructure:"url_prefix"    validate:"required"`

	MinioEndpoint      string `mapstructure:"minio_endpoint"        validate:"required_if=Backend minio"`
	MinioBucket        string `mapstructure:"minio_bucket"          validate:"required_if=Backend minio"`
	MinioAccessKey     string `mapstructure:"minio_access_key"      validate:"required_if=Backend minio"`
	MinioSecretKey     string `mapstructure:"minio_secret_key"      validate:"required_if=Backend minio"`
	MinioUseSSL        bool   `mapstructure:"minio_use_ssl"`
	MinioPublicBaseURL string `mapstructure:"minio_public_base_url" validate:"omitempty,url"`
}

// ImagesDir is the directory local artifacts are written to and swept from.
func (c ArtifactsConfig) ImagesDir() string {
	return filepath.Join(c.StaticDir, c.ImagesSubdir)
}

// SweepConfig controls the periodic deletion of old local artifacts.
type SweepConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	MaxAgeDays      int  `mapstructure:"max_age_days"     validate:"gte=0"`
	IntervalMinutes int  `mapstructure:"interval_minutes" validate:"gt=0"`
}
