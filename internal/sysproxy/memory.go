package sysproxy

import (
	"context"
	"sync"

	"github.com/nao1215/comet/internal/model"
)

// Memory holds the single active proxy configuration slot in memory.
type Memory struct {
	mu     sync.Mutex
	active *model.ProxyConfiguration
}

// NewMemory returns an empty Memory applier (no configuration active).
func NewMemory() *Memory {
	return &Memory{}
}

// Name identifies the backend.
func (m *Memory) Name() string {
	return "memory"
}

// Set replaces the active configuration with a copy of cfg.
func (m *Memory) Set(_ context.Context, cfg model.ProxyConfiguration, scope model.Scope) error {
	if err := checkScope(scope); err != nil {
		return err
	}
	c := cfg.Clone()
	m.mu.Lock()
	m.active = &c
	m.mu.Unlock()
	return nil
}

// Clear removes the active configuration.
func (m *Memory) Clear(_ context.Context, scope model.Scope) error {
	if err := checkScope(scope); err != nil {
		return err
	}
	m.mu.Lock()
	m.active = nil
	m.mu.Unlock()
	return nil
}

// Active returns a copy of the active configuration and whether one is set.
func (m *Memory) Active() (model.ProxyConfiguration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return model.ProxyConfiguration{}, false
	}
	return m.active.Clone(), true
}
