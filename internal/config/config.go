// Package config loads application configuration.
//
// Precedence, lowest first: built-in defaults, the YAML file named by
// GRADER_CONFIG_FILE, then GRADER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"fundamental-grader/internal/domain"
)

// EnvPrefix is the environment variable prefix for all settings.
const EnvPrefix = "GRADER"

// FileEnv names the environment variable holding the YAML config path.
const FileEnv = "GRADER_CONFIG_FILE"

// Config represents the complete application configuration.
type Config struct {
	Input     string `yaml:"input" envconfig:"INPUT"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`

	PostgresDSN   string `yaml:"postgres_dsn" envconfig:"POSTGRES_DSN"`
	ClickHouseDSN string `yaml:"clickhouse_dsn" envconfig:"CLICKHOUSE_DSN"`

	// PostgresMaxConns caps the pgx pool.
	PostgresMaxConns int32 `yaml:"postgres_max_conns" envconfig:"POSTGRES_MAX_CONNS" validate:"min=1,max=100"`

	Extended  bool `yaml:"extended" envconfig:"EXTENDED"`
	Normalize bool `yaml:"normalize" envconfig:"NORMALIZE"`
	Workers   int  `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=64"`

	LogLevel  string `yaml:"log_level" envconfig:"LOG_LEVEL" validate:"oneof=trace debug info warn error"`
	LogPretty bool   `yaml:"log_pretty" envconfig:"LOG_PRETTY"`

	HTTPAddr         string `yaml:"http_addr" envconfig:"HTTP_ADDR" validate:"required"`
	MetricsNamespace string `yaml:"metrics_namespace" envconfig:"METRICS_NAMESPACE" validate:"required"`
	MaxUploadBytes   int64  `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" validate:"min=1024"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		OutputDir:        "output",
		PostgresMaxConns: 8,
		Workers:          4,
		LogLevel:         "info",
		HTTPAddr:         ":8080",
		MetricsNamespace: "fundamental_grader",
		MaxUploadBytes:   32 << 20,
	}
}

// Variant returns the grading variant selected by the Extended flag.
func (c Config) Variant() domain.Variant {
	if c.Extended {
		return domain.VariantExtended
	}
	return domain.VariantCore
}

// UsePersistence reports whether both database DSNs are configured.
func (c Config) UsePersistence() bool {
	return c.PostgresDSN != "" && c.ClickHouseDSN != ""
}

// Load builds the configuration from defaults, the optional YAML file and the environment.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(FileEnv); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile overlays keys present in the YAML file onto cfg.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks field constraints.
func (c Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
