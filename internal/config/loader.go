package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".comet"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .comet configuration file.
// Every field is optional; zero values leave the current setting untouched.
// The proxy host, port and bypass list of the toggle are fixed and cannot be
// changed here.
type File struct {
	ControlAddress      string   `yaml:"controlAddress,omitempty"`
	SocksAddress        string   `yaml:"socksAddress,omitempty"`
	BridgeListenAddress string   `yaml:"bridgeListenAddress,omitempty"`
	DataDir             string   `yaml:"dataDir,omitempty"`
	LogFile             string   `yaml:"logFile,omitempty"`
	RequestTimeout      Duration `yaml:"requestTimeout,omitempty"`
	TorStartupTimeout   Duration `yaml:"torStartupTimeout,omitempty"`
	ShutdownTimeout     Duration `yaml:"shutdownTimeout,omitempty"`
}

// Duration is a time.Duration that unmarshals from strings such as "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Apply overrides the fields of cfg that are set in the file.
func (cf *File) Apply(cfg *Config) {
	if cf.ControlAddress != "" {
		cfg.ControlAddress = cf.ControlAddress
	}
	if cf.SocksAddress != "" {
		cfg.SocksAddress = cf.SocksAddress
	}
	if cf.BridgeListenAddress != "" {
		cfg.BridgeListenAddress = cf.BridgeListenAddress
	}
	if cf.DataDir != "" {
		cfg.DataDir = cf.DataDir
	}
	if cf.LogFile != "" {
		cfg.LogFile = cf.LogFile
	}
	if cf.RequestTimeout != 0 {
		cfg.RequestTimeout = time.Duration(cf.RequestTimeout)
	}
	if cf.TorStartupTimeout != 0 {
		cfg.TorStartupTimeout = time.Duration(cf.TorStartupTimeout)
	}
	if cf.ShutdownTimeout != 0 {
		cfg.ShutdownTimeout = time.Duration(cf.ShutdownTimeout)
	}
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .comet in the current directory
// 3. Look for .comet in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// Load builds a Config from defaults and the configuration file.
// A missing file is only an error when configPath was given explicitly.
func Load(configPath string) (*Config, error) {
	cfg := NewConfig()
	cfg.ConfigFilePath = configPath

	path := FindConfigFile(configPath)
	if path == "" {
		if configPath != "" {
			return nil, ErrConfigNotFound
		}
		return cfg, nil
	}

	file, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	file.Apply(cfg)
	return cfg, nil
}
