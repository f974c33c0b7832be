package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default ControlAddress is 127.0.0.1:18080", func(t *testing.T) {
		t.Parallel()
		if cfg.ControlAddress != "127.0.0.1:18080" {
			t.Errorf("expected ControlAddress to be '127.0.0.1:18080', got '%s'", cfg.ControlAddress)
		}
	})

	t.Run("default SocksAddress is 127.0.0.1:9050", func(t *testing.T) {
		t.Parallel()
		if cfg.SocksAddress != "127.0.0.1:9050" {
			t.Errorf("expected SocksAddress to be '127.0.0.1:9050', got '%s'", cfg.SocksAddress)
		}
	})

	t.Run("default BridgeListenAddress is the toggle proxy address", func(t *testing.T) {
		t.Parallel()
		if cfg.BridgeListenAddress != "127.0.0.1:8080" {
			t.Errorf("expected BridgeListenAddress to be '127.0.0.1:8080', got '%s'", cfg.BridgeListenAddress)
		}
	})

	t.Run("default DataDir is the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if cfg.DataDir != XDGDataDir() {
			t.Errorf("expected DataDir %q, got %q", XDGDataDir(), cfg.DataDir)
		}
	})

	t.Run("default timeouts", func(t *testing.T) {
		t.Parallel()
		if cfg.RequestTimeout != 30*time.Second {
			t.Errorf("expected RequestTimeout 30s, got %v", cfg.RequestTimeout)
		}
		if cfg.TorStartupTimeout != 3*time.Minute {
			t.Errorf("expected TorStartupTimeout 3m, got %v", cfg.TorStartupTimeout)
		}
		if cfg.ShutdownTimeout != 5*time.Second {
			t.Errorf("expected ShutdownTimeout 5s, got %v", cfg.ShutdownTimeout)
		}
	})

	t.Run("optional features are off", func(t *testing.T) {
		t.Parallel()
		if cfg.DryRun || cfg.RunBridge || cfg.UseEmbeddedTor || cfg.WaitForSocks {
			t.Errorf("expected optional features off, got %+v", cfg)
		}
	})

	t.Run("defaults validate", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected defaults to validate, got %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid config returns nil", func(*Config) {}, nil},
		{"empty control address", func(c *Config) { c.ControlAddress = "" }, ErrInvalidControlAddress},
		{"control address without port", func(c *Config) { c.ControlAddress = "127.0.0.1" }, ErrInvalidControlAddress},
		{"control address with empty host", func(c *Config) { c.ControlAddress = ":18080" }, ErrInvalidControlAddress},
		{"control address with port out of range", func(c *Config) { c.ControlAddress = "127.0.0.1:70000" }, ErrInvalidControlAddress},
		{"socks address with port zero", func(c *Config) { c.SocksAddress = "127.0.0.1:0" }, ErrInvalidSocksAddress},
		{"socks address with name port", func(c *Config) { c.SocksAddress = "127.0.0.1:tor" }, ErrInvalidSocksAddress},
		{"bridge address invalid", func(c *Config) { c.BridgeListenAddress = "bridge" }, ErrInvalidBridgeAddress},
		{"bridge and control collide", func(c *Config) { c.ControlAddress = c.BridgeListenAddress }, ErrAddressConflict},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, ErrNoDataDir},
		{"zero request timeout", func(c *Config) { c.RequestTimeout = 0 }, ErrInvalidTimeout},
		{"negative tor timeout", func(c *Config) { c.TorStartupTimeout = -time.Second }, ErrInvalidTimeout},
		{"zero shutdown timeout", func(c *Config) { c.ShutdownTimeout = 0 }, ErrInvalidTimeout},
		{"ipv6 loopback is valid", func(c *Config) { c.ControlAddress = "[::1]:18080" }, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			cfg.DataDir = "/tmp/comet"
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()
		cfg, err := LoadConfigFile("/nonexistent/path/.comet")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), ".comet")
		content := `controlAddress: "127.0.0.1:19000"
socksAddress: "127.0.0.1:9150"
dataDir: "/var/lib/comet"
requestTimeout: "10s"
torStartupTimeout: "5m"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		file, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if file.ControlAddress != "127.0.0.1:19000" {
			t.Errorf("unexpected control address %q", file.ControlAddress)
		}
		if file.SocksAddress != "127.0.0.1:9150" {
			t.Errorf("unexpected socks address %q", file.SocksAddress)
		}
		if time.Duration(file.RequestTimeout) != 10*time.Second {
			t.Errorf("unexpected request timeout %v", time.Duration(file.RequestTimeout))
		}
		if time.Duration(file.TorStartupTimeout) != 5*time.Minute {
			t.Errorf("unexpected tor timeout %v", time.Duration(file.TorStartupTimeout))
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), ".comet")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("returns error for invalid duration", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), ".comet")
		if err := os.WriteFile(configPath, []byte("requestTimeout: soon\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid duration")
		}
	})
}

// TestFileApply tests merging file settings into a Config.
func TestFileApply(t *testing.T) {
	t.Parallel()

	t.Run("empty file leaves defaults", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		(&File{}).Apply(cfg)
		want := NewConfig()
		if *cfg != *want {
			t.Errorf("expected defaults, got %+v", cfg)
		}
	})

	t.Run("set fields override", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		file := &File{
			BridgeListenAddress: "127.0.0.1:8118",
			LogFile:             "/var/log/comet.log",
			ShutdownTimeout:     Duration(time.Second),
		}
		file.Apply(cfg)
		if cfg.LogFile != "/var/log/comet.log" {
			t.Errorf("unexpected log file %q", cfg.LogFile)
		}
		if cfg.BridgeListenAddress != "127.0.0.1:8118" {
			t.Errorf("unexpected bridge address %q", cfg.BridgeListenAddress)
		}
		if cfg.ShutdownTimeout != time.Second {
			t.Errorf("unexpected shutdown timeout %v", cfg.ShutdownTimeout)
		}
		if cfg.ControlAddress != DefaultControlAddress {
			t.Errorf("control address should be untouched, got %q", cfg.ControlAddress)
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("{}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if got := FindConfigFile(configPath); got != configPath {
			t.Errorf("expected %q, got %q", configPath, got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()
		if got := FindConfigFile("/nonexistent/path/config.yaml"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

// TestLoad tests the combined defaults + file loader.
func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("explicit missing file is an error", func(t *testing.T) {
		t.Parallel()
		_, err := Load("/nonexistent/path/.comet")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("explicit file is applied", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), "comet.yaml")
		if err := os.WriteFile(configPath, []byte("socksAddress: \"127.0.0.1:9150\"\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		cfg, err := Load(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.SocksAddress != "127.0.0.1:9150" {
			t.Errorf("unexpected socks address %q", cfg.SocksAddress)
		}
		if cfg.ConfigFilePath != configPath {
			t.Errorf("unexpected ConfigFilePath %q", cfg.ConfigFilePath)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if XDGDataDir() == "" {
		t.Error("expected non-empty XDG data dir")
	}
	if XDGConfigDir() == "" {
		t.Error("expected non-empty XDG config dir")
	}
}
