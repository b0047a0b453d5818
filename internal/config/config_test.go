package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundamental-grader/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(FileEnv, "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
	assert.Equal(t, domain.VariantCore, cfg.Variant())
	assert.False(t, cfg.UsePersistence())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grader.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
output_dir: reports
workers: 8
extended: true
log_level: debug
`), 0o644))

	t.Setenv(FileEnv, path)
	t.Setenv("GRADER_WORKERS", "12")
	t.Setenv("GRADER_LOG_LEVEL", "WARN")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "reports", cfg.OutputDir)
	assert.Equal(t, 12, cfg.Workers)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.Extended)
	assert.Equal(t, domain.VariantExtended, cfg.Variant())
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv(FileEnv, filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config from file")
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv(FileEnv, "")
	t.Setenv("GRADER_WORKERS", "many")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config from env")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"workers zero", func(c *Config) { c.Workers = 0 }, "Workers"},
		{"workers too many", func(c *Config) { c.Workers = 65 }, "Workers"},
		{"unknown level", func(c *Config) { c.LogLevel = "loud" }, "LogLevel"},
		{"empty output", func(c *Config) { c.OutputDir = "" }, "OutputDir"},
		{"tiny upload", func(c *Config) { c.MaxUploadBytes = 10 }, "MaxUploadBytes"},
		{"no pool connections", func(c *Config) { c.PostgresMaxConns = 0 }, "PostgresMaxConns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestUsePersistence(t *testing.T) {
	cfg := Default()
	cfg.PostgresDSN = "postgres://localhost/grader"
	assert.False(t, cfg.UsePersistence())
	cfg.ClickHouseDSN = "clickhouse://localhost:9000/grader"
	assert.True(t, cfg.UsePersistence())
}
