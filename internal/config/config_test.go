package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, "gross_to_net", cfg.UI.DefaultMode)

	d, err := cfg.RequestTimeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Client, cfg.Client)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payroll.yaml")
	body := `
server:
  addr: ":9090"
client:
  endpoint: "http://calc.internal:9090"
  timeout: "3s"
ui:
  default_mode: net_to_gross
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "http://calc.internal:9090", cfg.Client.Endpoint)
	assert.Equal(t, "net_to_gross", cfg.UI.DefaultMode)
	// untouched keys keep their defaults
	assert.Equal(t, 2026, cfg.UI.DefaultYear)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("PORT sets the listen address", func(t *testing.T) {
		t.Setenv("PORT", "8081")
		t.Setenv("PAYROLL_ADDR", "")

		cfg := Default()
		cfg.applyEnvOverrides()
		assert.Equal(t, ":8081", cfg.Server.Addr)
	})

	t.Run("PAYROLL_ADDR wins over PORT", func(t *testing.T) {
		t.Setenv("PORT", "8081")
		t.Setenv("PAYROLL_ADDR", "127.0.0.1:7000")

		cfg := Default()
		cfg.applyEnvOverrides()
		assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
	})

	t.Run("client and logging", func(t *testing.T) {
		t.Setenv("PAYROLL_ENDPOINT", "https://payroll.example")
		t.Setenv("PAYROLL_TIMEOUT", "250ms")
		t.Setenv("PAYROLL_LOG_LEVEL", "debug")
		t.Setenv("PAYROLL_LOG_FILE", "/tmp/payroll.log")
		t.Setenv("PAYROLL_PARAMS_DIR", "/etc/payroll")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "https://payroll.example", cfg.Client.Endpoint)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "/tmp/payroll.log", cfg.Logging.File)
		assert.Equal(t, "/etc/payroll", cfg.Server.ParamsDir)

		d, err := cfg.RequestTimeout()
		require.NoError(t, err)
		assert.Equal(t, 250*time.Millisecond, d)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad timeout", func(c *Config) { c.Client.Timeout = "soon" }},
		{"zero timeout", func(c *Config) { c.Client.Timeout = "0s" }},
		{"bad endpoint", func(c *Config) { c.Client.Endpoint = "calc:5000" }},
		{"bad mode", func(c *Config) { c.UI.DefaultMode = "sideways" }},
		{"negative width", func(c *Config) { c.UI.NarrowWidth = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}
