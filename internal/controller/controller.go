package controller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/comet/internal/model"
)

// ProxyApplier submits and clears the active system proxy configuration.
type ProxyApplier interface {
	Set(ctx context.Context, cfg model.ProxyConfiguration, scope model.Scope) error
	Clear(ctx context.Context, scope model.Scope) error
}

// StateStore persists the proxyEnabled flag. A missing flag reads as false.
type StateStore interface {
	ProxyEnabled(ctx context.Context) (bool, error)
	SetProxyEnabled(ctx context.Context, enabled bool) error
}

// EventRecorder stores toggle history.
type EventRecorder interface {
	RecordEvent(ctx context.Context, event model.ToggleEvent) error
}

// Controller is the background controller.
type Controller struct {
	applier  ProxyApplier
	store    StateStore
	recorder EventRecorder
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string

	// mu serialises toggles so concurrent messages never interleave an
	// apply with a persist.
	mu sync.Mutex
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithEventRecorder enables toggle history.
func WithEventRecorder(recorder EventRecorder) Option {
	return func(c *Controller) {
		c.recorder = recorder
	}
}

// WithClock overrides the clock used to timestamp events.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithIDGenerator overrides the event ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) {
		c.newID = newID
	}
}

// New creates a Controller that applies configurations through applier and
// persists the flag in store.
func New(applier ProxyApplier, store StateStore, opts ...Option) *Controller {
	c := &Controller{
		applier: applier,
		store:   store,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// EnableProxy applies the fixed proxy configuration and persists
// proxyEnabled=true. Calling it again reapplies the same configuration.
//
// The flag is persisted even when applying fails, so the returned error may
// join an apply failure and a persist failure.
func (c *Controller) EnableProxy(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enable(ctx)
}

// DisableProxy clears the active proxy configuration and persists
// proxyEnabled=false. Calling it again is harmless.
func (c *Controller) DisableProxy(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disable(ctx)
}

func (c *Controller) enable(ctx context.Context) error {
	cfg := model.NewProxyConfiguration()
	applyErr := model.NewOpError(model.OpApply, c.applier.Set(ctx, cfg, model.ScopeRegular))
	persistErr := model.NewOpError(model.OpPersist, c.store.SetProxyEnabled(ctx, true))
	return errors.Join(applyErr, persistErr)
}

func (c *Controller) disable(ctx context.Context) error {
	clearErr := model.NewOpError(model.OpClear, c.applier.Clear(ctx, model.ScopeRegular))
	persistErr := model.NewOpError(model.OpPersist, c.store.SetProxyEnabled(ctx, false))
	return errors.Join(clearErr, persistErr)
}

// HandleMessage dispatches a message and returns its acknowledgement.
// connect enables the proxy, disconnect disables it, and any other action
// changes nothing. The acknowledgement is always {"status":"ok"}.
func (c *Controller) HandleMessage(ctx context.Context, msg model.Message) model.Response {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	switch msg.Action {
	case model.ActionConnect:
		err = c.enable(ctx)
	case model.ActionDisconnect:
		err = c.disable(ctx)
	default:
		c.logger.Debug("ignoring unknown action", "action", string(msg.Action))
		c.record(ctx, model.SourceMessage, msg.Action, nil)
		return model.Ack()
	}

	if err != nil {
		c.logger.Warn("toggle failed", "action", string(msg.Action), "error", err)
	} else {
		c.logger.Info("toggle handled", "action", string(msg.Action))
	}
	c.record(ctx, model.SourceMessage, msg.Action, err)
	return model.Ack()
}

// Startup restores the proxy after a restart. When the persisted flag is true
// the configuration is applied again; otherwise nothing is applied.
func (c *Controller) Startup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	enabled, err := c.store.ProxyEnabled(ctx)
	if err != nil {
		return model.NewOpError(model.OpLoad, err)
	}
	if !enabled {
		c.logger.Debug("proxy disabled at startup, nothing to restore")
		return nil
	}

	err = c.enable(ctx)
	if err != nil {
		c.logger.Warn("failed to restore proxy at startup", "error", err)
	} else {
		c.logger.Info("restored proxy configuration at startup",
			"proxy", model.NewProxyConfiguration().Rules.SingleProxy.Address())
	}
	c.record(ctx, model.SourceStartup, model.ActionConnect, err)
	return err
}

// ProxyEnabled returns the persisted flag.
func (c *Controller) ProxyEnabled(ctx context.Context) (bool, error) {
	enabled, err := c.store.ProxyEnabled(ctx)
	if err != nil {
		return false, model.NewOpError(model.OpLoad, err)
	}
	return enabled, nil
}

// record writes a history entry. The flag is read back from the store so the
// entry reflects what was actually persisted.
func (c *Controller) record(ctx context.Context, source model.EventSource, action model.Action, toggleErr error) {
	if c.recorder == nil {
		return
	}
	event := model.ToggleEvent{
		ID:        c.newID(),
		Source:    source,
		Action:    action,
		Timestamp: c.now(),
	}
	if toggleErr != nil {
		event.Error = toggleErr.Error()
	}
	enabled, err := c.store.ProxyEnabled(ctx)
	if err != nil {
		c.logger.Debug("failed to read flag for history", "error", err)
	}
	event.ProxyEnabled = enabled

	if err := c.recorder.RecordEvent(ctx, event); err != nil {
		c.logger.Warn("failed to record toggle event", "error", err)
	}
}
