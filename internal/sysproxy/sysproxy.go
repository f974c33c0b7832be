package sysproxy

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/nao1215/comet/internal/model"
)

// backend is the per-platform implementation behind System.
type backend interface {
	name() string
	set(ctx context.Context, cfg model.ProxyConfiguration) error
	clear(ctx context.Context) error
}

// System applies proxy configurations to the operating system settings.
type System struct {
	backend backend
}

// NewSystem returns the applier for the current platform.
func NewSystem() *System {
	return &System{backend: newPlatformBackend(execRunner{})}
}

// Name identifies the platform backend, e.g. "gsettings".
func (s *System) Name() string {
	return s.backend.name()
}

// Set replaces the active system proxy configuration with cfg.
func (s *System) Set(ctx context.Context, cfg model.ProxyConfiguration, scope model.Scope) error {
	if err := checkScope(scope); err != nil {
		return err
	}
	if cfg.Mode != model.ProxyModeFixedServers {
		return fmt.Errorf("%w: %q", ErrUnsupportedMode, cfg.Mode)
	}
	return s.backend.set(ctx, cfg)
}

// Clear removes the active system proxy configuration, reverting to direct
// connections.
func (s *System) Clear(ctx context.Context, scope model.Scope) error {
	if err := checkScope(scope); err != nil {
		return err
	}
	return s.backend.clear(ctx)
}

// checkScope rejects every scope except the regular one.
func checkScope(scope model.Scope) error {
	if scope != model.ScopeRegular {
		return fmt.Errorf("%w: %q", ErrUnsupportedScope, scope)
	}
	return nil
}

// Runner executes external commands. It returns the command's stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

// Run implements Runner.
func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "no output"
		}
		return out, fmt.Errorf("%s %s failed: %w (%s)", name, strings.Join(args, " "), err, msg)
	}
	return out, nil
}

// unsupported is the backend for platforms without system proxy support.
type unsupported struct{}

func (unsupported) name() string { return "unsupported" }

func (unsupported) set(context.Context, model.ProxyConfiguration) error {
	return ErrUnsupportedPlatform
}

func (unsupported) clear(context.Context) error {
	return ErrUnsupportedPlatform
}
