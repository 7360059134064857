// Package config provides environment-variable-first configuration loading
// with an optional YAML or TOML file as the base layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/shineum/smtpwire/internal/wire"
)

// Config holds the complete application configuration.
type Config struct {
	Wire    WireConfig    `yaml:"wire" toml:"wire"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// WireConfig holds the line and field bounds of the codec. Hostname pins
// the name sent in HELO/EHLO and the 220 greeting; empty means the
// operating system's host name.
type WireConfig struct {
	MaxLineLength    int    `yaml:"max_line_length" toml:"max_line_length"`
	MaxDomainLength  int    `yaml:"max_domain_length" toml:"max_domain_length"`
	MaxAddressLength int    `yaml:"max_address_length" toml:"max_address_length"`
	Hostname         string `yaml:"hostname" toml:"hostname"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Load loads configuration from environment variables with sensible defaults.
// Environment variables always take precedence.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvVars()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML or TOML file as the base
// layer, then overrides with environment variables. Files ending in .toml
// are decoded as TOML, anything else as YAML. Returns an error if the
// specified file path does not exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment variables always override file values
	cfg.applyEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Limits returns the codec bounds described by the configuration.
func (c *Config) Limits() wire.Limits {
	return wire.Limits{
		LineLen:   c.Wire.MaxLineLength,
		DomainLen: c.Wire.MaxDomainLength,
		AddrLen:   c.Wire.MaxAddressLength,
	}
}

// HostnameFunc returns the host name lookup for the encoders: the pinned
// name if one is configured, os.Hostname otherwise.
func (c *Config) HostnameFunc() wire.HostnameFunc {
	if c.Wire.Hostname != "" {
		return wire.StaticHostname(c.Wire.Hostname)
	}
	return os.Hostname
}

// Validate reports configurations the codec cannot honour.
func (c *Config) Validate() error {
	if err := c.Limits().Validate(); err != nil {
		return fmt.Errorf("invalid wire config: %w", err)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format %q", c.Logging.Format)
	}
	return nil
}

// applyDefaults sets sensible default values for all configuration fields.
func (c *Config) applyDefaults() {
	c.Wire.MaxLineLength = wire.DefaultLineLen
	c.Wire.MaxDomainLength = wire.DefaultDomainLen
	c.Wire.MaxAddressLength = wire.DefaultAddrLen
	c.Logging.Level = "info"
	c.Logging.Format = "json"
}

// applyEnvVars overrides configuration with environment variable values.
// Only non-empty environment variables override existing values.
func (c *Config) applyEnvVars() {
	if v := os.Getenv("SMTPWIRE_MAX_LINE_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Wire.MaxLineLength = n
		}
	}
	if v := os.Getenv("SMTPWIRE_MAX_DOMAIN_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Wire.MaxDomainLength = n
		}
	}
	if v := os.Getenv("SMTPWIRE_MAX_ADDRESS_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Wire.MaxAddressLength = n
		}
	}
	if v := os.Getenv("SMTPWIRE_HOSTNAME"); v != "" {
		c.Wire.Hostname = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}
}
