package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings of every payroll-engine command.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Client  ClientConfig  `yaml:"client"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the calculation service.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	ParamsDir string `yaml:"params_dir"` // optional override for yearly parameter files
}

// ClientConfig configures how front ends reach the service.
type ClientConfig struct {
	Endpoint string `yaml:"endpoint"`
	Timeout  string `yaml:"timeout"`
}

// UIConfig configures the interactive page.
type UIConfig struct {
	DefaultMode         string `yaml:"default_mode"`
	DefaultEmployeeType string `yaml:"default_employee_type"`
	DefaultYear         int    `yaml:"default_year"`
	// NarrowWidth is the terminal width, in columns, below which results
	// are brought into view after a calculation.
	NarrowWidth int `yaml:"narrow_width"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":5000",
		},
		Client: ClientConfig{
			Endpoint: "http://127.0.0.1:5000",
			Timeout:  "10s",
		},
		UI: UIConfig{
			DefaultMode:         "gross_to_net",
			DefaultEmployeeType: "normal_4a",
			DefaultYear:         2026,
			NarrowWidth:         100,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path, or a path that does not exist, yields defaults plus env.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if v := os.Getenv("PAYROLL_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("PAYROLL_PARAMS_DIR"); v != "" {
		c.Server.ParamsDir = v
	}
	if v := os.Getenv("PAYROLL_ENDPOINT"); v != "" {
		c.Client.Endpoint = v
	}
	if v := os.Getenv("PAYROLL_TIMEOUT"); v != "" {
		c.Client.Timeout = v
	}
	if v := os.Getenv("PAYROLL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PAYROLL_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if _, err := c.RequestTimeout(); err != nil {
		return err
	}
	if !strings.HasPrefix(c.Client.Endpoint, "http://") && !strings.HasPrefix(c.Client.Endpoint, "https://") {
		return fmt.Errorf("client.endpoint must be an http(s) URL, got %q", c.Client.Endpoint)
	}
	switch c.UI.DefaultMode {
	case "gross_to_net", "net_to_gross":
	default:
		return fmt.Errorf("ui.default_mode must be gross_to_net or net_to_gross, got %q", c.UI.DefaultMode)
	}
	if c.UI.NarrowWidth < 0 {
		return errors.New("ui.narrow_width must not be negative")
	}
	return nil
}

// RequestTimeout parses Client.Timeout.
func (c *Config) RequestTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Client.Timeout)
	if err != nil {
		return 0, fmt.Errorf("client.timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("client.timeout must be positive, got %s", d)
	}
	return d, nil
}
