package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shineum/smtpwire/internal/wire"
)

// clearEnv blanks every variable the loader reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"SMTPWIRE_MAX_LINE_LENGTH", "SMTPWIRE_MAX_DOMAIN_LENGTH", "SMTPWIRE_MAX_ADDRESS_LENGTH",
		"SMTPWIRE_HOSTNAME", "LOG_LEVEL", "LOG_FORMAT",
	}
	for _, env := range envVars {
		t.Setenv(env, "")
	}
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644), "failed to write temp config")
	return configPath
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 512, cfg.Wire.MaxLineLength)
	assert.Equal(t, 255, cfg.Wire.MaxDomainLength)
	assert.Equal(t, 256, cfg.Wire.MaxAddressLength)
	assert.Empty(t, cfg.Wire.Hostname)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SMTPWIRE_MAX_LINE_LENGTH", "1000")
	t.Setenv("SMTPWIRE_MAX_DOMAIN_LENGTH", "64")
	t.Setenv("SMTPWIRE_MAX_ADDRESS_LENGTH", "128")
	t.Setenv("SMTPWIRE_HOSTNAME", "relay.example.net")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "Text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Wire.MaxLineLength)
	assert.Equal(t, 64, cfg.Wire.MaxDomainLength)
	assert.Equal(t, 128, cfg.Wire.MaxAddressLength)
	assert.Equal(t, "relay.example.net", cfg.Wire.Hostname)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadFromFile(t *testing.T) {
	yamlContent := `
wire:
  max_line_length: 1000
  max_domain_length: 100
  max_address_length: 200
  hostname: "yaml.example.com"
logging:
  level: "warn"
  format: "text"
`
	configPath := writeConfig(t, "config.yaml", yamlContent)
	clearEnv(t)

	cfg, err := LoadFromFile(configPath)
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Wire.MaxLineLength)
	assert.Equal(t, 100, cfg.Wire.MaxDomainLength)
	assert.Equal(t, 200, cfg.Wire.MaxAddressLength)
	assert.Equal(t, "yaml.example.com", cfg.Wire.Hostname)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadFromFile_TOML(t *testing.T) {
	tomlContent := `
[wire]
max_line_length = 2048
hostname = "toml.example.com"

[logging]
level = "error"
`
	configPath := writeConfig(t, "config.toml", tomlContent)
	clearEnv(t)

	cfg, err := LoadFromFile(configPath)
	require.NoError(t, err)

	assert.Equal(t, 2048, cfg.Wire.MaxLineLength)
	assert.Equal(t, 255, cfg.Wire.MaxDomainLength, "keys absent from the file keep their defaults")
	assert.Equal(t, "toml.example.com", cfg.Wire.Hostname)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFile_EnvOverridesYAML(t *testing.T) {
	yamlContent := `
wire:
  max_line_length: 1000
  hostname: "yaml.example.com"
logging:
  level: "warn"
`
	configPath := writeConfig(t, "config.yaml", yamlContent)
	clearEnv(t)
	t.Setenv("SMTPWIRE_MAX_LINE_LENGTH", "600")
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadFromFile(configPath)
	require.NoError(t, err)

	assert.Equal(t, 600, cfg.Wire.MaxLineLength, "env should override YAML")
	assert.Equal(t, "yaml.example.com", cfg.Wire.Hostname, "empty env should not override YAML")
	assert.Equal(t, "error", cfg.Logging.Level, "env should override YAML")
}

func TestLoadFromFile_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	t.Parallel()

	configPath := writeConfig(t, "config.yaml", "{{invalid yaml")

	_, err := LoadFromFile(configPath)
	assert.Error(t, err)
}

func TestLoadFromFile_InvalidTOML(t *testing.T) {
	t.Parallel()

	configPath := writeConfig(t, "config.toml", "[wire\nmax_line_length = ")

	_, err := LoadFromFile(configPath)
	assert.Error(t, err)
}

func TestLoad_InvalidMaxLineLength(t *testing.T) {
	clearEnv(t)
	t.Setenv("SMTPWIRE_MAX_LINE_LENGTH", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.Wire.MaxLineLength, "invalid input should keep the default")
}

func TestLoad_RejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "log format",
			env:     map[string]string{"LOG_FORMAT": "xml"},
			wantErr: `invalid log format "xml"`,
		},
		{
			name:    "line too short",
			env:     map[string]string{"SMTPWIRE_MAX_LINE_LENGTH": "4"},
			wantErr: "invalid wire config",
		},
		{
			name:    "domain does not fit",
			env:     map[string]string{"SMTPWIRE_MAX_LINE_LENGTH": "64", "SMTPWIRE_MAX_DOMAIN_LENGTH": "100"},
			wantErr: "invalid wire config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			require.ErrorContains(t, err, tt.wantErr)
			assert.Nil(t, cfg)
		})
	}
}

func TestConfig_Limits(t *testing.T) {
	t.Parallel()

	cfg := &Config{Wire: WireConfig{MaxLineLength: 1000, MaxDomainLength: 64, MaxAddressLength: 128}}
	assert.Equal(t, wire.Limits{LineLen: 1000, DomainLen: 64, AddrLen: 128}, cfg.Limits())
}

func TestConfig_HostnameFunc(t *testing.T) {
	t.Parallel()

	cfg := &Config{Wire: WireConfig{Hostname: "pinned.example.com"}}
	name, err := cfg.HostnameFunc()()
	require.NoError(t, err)
	assert.Equal(t, "pinned.example.com", name)

	want, wantErr := os.Hostname()
	name, err = (&Config{}).HostnameFunc()()
	assert.Equal(t, want, name)
	assert.Equal(t, wantErr == nil, err == nil)
}
