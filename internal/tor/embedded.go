package tor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nao1215/tornago"
)

// defaultEmbeddedStartupTimeout covers a cold bootstrap on a slow network.
const defaultEmbeddedStartupTimeout = 3 * time.Minute

// EmbeddedTor runs a private Tor daemon whose SOCKS port becomes the bridge
// upstream. Bootstrapping takes one to three minutes.
type EmbeddedTor struct {
	mu             sync.Mutex
	process        *tornago.TorProcess
	startupTimeout time.Duration
}

// EmbeddedOption configures an EmbeddedTor.
type EmbeddedOption func(*EmbeddedTor)

// WithStartupTimeout limits how long Start waits for bootstrap.
func WithStartupTimeout(timeout time.Duration) EmbeddedOption {
	return func(e *EmbeddedTor) {
		e.startupTimeout = timeout
	}
}

// NewEmbeddedTor returns an unstarted daemon manager.
func NewEmbeddedTor(opts ...EmbeddedOption) *EmbeddedTor {
	e := &EmbeddedTor{startupTimeout: defaultEmbeddedStartupTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start launches the daemon on OS-assigned loopback ports and blocks until it
// has bootstrapped. If ctx ends during startup the daemon is stopped again.
func (e *EmbeddedTor) Start(ctx context.Context) error {
	cfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(e.startupTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to build Tor launch config: %w", err)
	}

	process, err := tornago.StartTorDaemon(cfg)
	if err != nil {
		return fmt.Errorf("failed to start embedded Tor: %w", err)
	}
	if err := ctx.Err(); err != nil {
		_ = process.Stop()
		return err
	}

	e.mu.Lock()
	e.process = process
	e.mu.Unlock()
	return nil
}

// Stop shuts the daemon down. Stopping an unstarted daemon is a no-op.
func (e *EmbeddedTor) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.process == nil {
		return nil
	}
	err := e.process.Stop()
	e.process = nil
	return err
}

// IsRunning reports whether Start succeeded and Stop has not been called.
func (e *EmbeddedTor) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.process != nil
}

// SocksAddr returns the daemon's SOCKS5 address, "" when not running.
func (e *EmbeddedTor) SocksAddr() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.process == nil {
		return ""
	}
	return e.process.SocksAddr()
}

// ControlAddr returns the daemon's control port address, "" when not running.
func (e *EmbeddedTor) ControlAddr() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.process == nil {
		return ""
	}
	return e.process.ControlAddr()
}

// NewClient returns a Client dialing through the daemon's SOCKS port.
func (e *EmbeddedTor) NewClient(timeout time.Duration) (*Client, error) {
	addr := e.SocksAddr()
	if addr == "" {
		return nil, ErrEmbeddedNotRunning
	}
	return NewClient(addr, timeout)
}
