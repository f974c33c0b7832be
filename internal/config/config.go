package config

import (
	"net"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/comet/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "comet"

	// DefaultControlAddress is where the background controller accepts messages.
	// It is loopback only; the control endpoint has no authentication.
	DefaultControlAddress = "127.0.0.1:18080"

	// DefaultSocksAddress is the standard Tor SOCKS5 port the bridge forwards to.
	DefaultSocksAddress = "127.0.0.1:9050"

	// DefaultRequestTimeout bounds a single popup request to the controller and
	// a single upstream request made by the bridge.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultTorStartupTimeout is the maximum time to wait for an embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultShutdownTimeout bounds graceful shutdown of the HTTP servers.
	DefaultShutdownTimeout = 5 * time.Second

	// DefaultSocksPollInterval is how often the bridge re-checks an
	// unreachable SOCKS port while waiting for Tor.
	DefaultSocksPollInterval = 1 * time.Second
)

// DefaultBridgeListenAddress is the address the bridge listens on. It is the
// same host:port the toggle points the system proxy at.
var DefaultBridgeListenAddress = net.JoinHostPort(model.ProxyHost, strconv.Itoa(model.ProxyPort))

// Config holds all configuration options for comet.
// It is populated from defaults, the optional config file and CLI flags, in
// that order, and passed explicitly to the components that need it.
type Config struct {
	// ControlAddress is the "host:port" the background controller serves
	// its message endpoint on, and the popup commands connect to.
	ControlAddress string

	// SocksAddress is the upstream Tor SOCKS5 proxy the bridge forwards to.
	SocksAddress string

	// BridgeListenAddress is where the HTTP->SOCKS bridge listens.
	BridgeListenAddress string

	// DataDir is the directory holding the state database.
	// Defaults to the XDG data directory (~/.local/share/comet on Linux).
	DataDir string

	// ConfigFilePath is the explicitly requested configuration file, if any.
	ConfigFilePath string

	// Verbose enables debug level logging.
	Verbose bool

	// LogJSON switches log output from text to JSON.
	LogJSON bool

	// LogFile, when set, receives a copy of every log record. The file is
	// appended to, so errors from earlier runs are kept.
	LogFile string

	// DryRun keeps the proxy configuration in memory instead of touching the
	// operating system settings. The persisted flag is still written.
	DryRun bool

	// RunBridge starts the HTTP->SOCKS bridge alongside the controller.
	RunBridge bool

	// WaitForSocks makes the bridge wait until the SOCKS port is reachable
	// before it starts listening.
	WaitForSocks bool

	// UseEmbeddedTor starts a Tor daemon managed by comet and points the
	// bridge at it instead of SocksAddress.
	UseEmbeddedTor bool

	// RequestTimeout bounds individual requests.
	RequestTimeout time.Duration

	// TorStartupTimeout bounds embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		ControlAddress:      DefaultControlAddress,
		SocksAddress:        DefaultSocksAddress,
		BridgeListenAddress: DefaultBridgeListenAddress,
		DataDir:             XDGDataDir(),
		RequestTimeout:      DefaultRequestTimeout,
		TorStartupTimeout:   DefaultTorStartupTimeout,
		ShutdownTimeout:     DefaultShutdownTimeout,
	}
}

// XDGDataDir returns the XDG data directory for comet.
// On Linux: ~/.local/share/comet
// On macOS: ~/Library/Application Support/comet
// On Windows: %LOCALAPPDATA%\comet
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for comet.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if !isValidAddress(c.ControlAddress) {
		return ErrInvalidControlAddress
	}
	if !isValidAddress(c.SocksAddress) {
		return ErrInvalidSocksAddress
	}
	if !isValidAddress(c.BridgeListenAddress) {
		return ErrInvalidBridgeAddress
	}
	if c.BridgeListenAddress == c.ControlAddress {
		return ErrAddressConflict
	}
	if c.DataDir == "" {
		return ErrNoDataDir
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.TorStartupTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.ShutdownTimeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// isValidAddress checks for a "host:port" address with a non-empty host and
// a port between 1 and 65535.
func isValidAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}
