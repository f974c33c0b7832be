package popup

import (
	"context"
	"log/slog"

	"github.com/nao1215/comet/internal/model"
)

// Messenger delivers a message to the background controller and returns its
// acknowledgement.
type Messenger interface {
	Send(ctx context.Context, msg model.Message) (model.Response, error)
}

// StateReader reads the persisted proxyEnabled flag.
type StateReader interface {
	ProxyEnabled(ctx context.Context) (bool, error)
}

// View renders the status label.
type View interface {
	RenderStatus(label string)
}

// Result is the outcome of an asynchronous send.
type Result struct {
	Response model.Response
	Err      error
}

// SendAsync sends msg on its own goroutine. The returned channel receives
// exactly one Result and is then closed.
func SendAsync(ctx context.Context, m Messenger, msg model.Message) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		resp, err := m.Send(ctx, msg)
		ch <- Result{Response: resp, Err: err}
	}()
	return ch
}

// Popup is the UI controller.
type Popup struct {
	messenger Messenger
	state     StateReader
	view      View
	logger    *slog.Logger
}

// Option configures a Popup.
type Option func(*Popup)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Popup) {
		p.logger = logger
	}
}

// New creates a Popup.
func New(messenger Messenger, state StateReader, view View, opts ...Option) *Popup {
	p := &Popup{
		messenger: messenger,
		state:     state,
		view:      view,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Open renders the current state. It always reads the flag instead of
// assuming a default.
func (p *Popup) Open(ctx context.Context) error {
	return p.RefreshStatus(ctx)
}

// OnConnectClick asks the controller to enable the proxy, then refreshes.
func (p *Popup) OnConnectClick(ctx context.Context) error {
	return p.toggle(ctx, model.ActionConnect)
}

// OnDisconnectClick asks the controller to disable the proxy, then refreshes.
func (p *Popup) OnDisconnectClick(ctx context.Context) error {
	return p.toggle(ctx, model.ActionDisconnect)
}

func (p *Popup) toggle(ctx context.Context, action model.Action) error {
	select {
	case res := <-SendAsync(ctx, p.messenger, model.Message{Action: action}):
		if res.Err != nil {
			p.logger.Debug("message not delivered", "action", string(action), "error", res.Err)
			return model.NewOpError(model.OpDeliver, res.Err)
		}
	case <-ctx.Done():
		return model.NewOpError(model.OpDeliver, ctx.Err())
	}
	return p.RefreshStatus(ctx)
}

// RefreshStatus reads the persisted flag and renders its label. When the flag
// cannot be read the view is left untouched.
func (p *Popup) RefreshStatus(ctx context.Context) error {
	enabled, err := p.state.ProxyEnabled(ctx)
	if err != nil {
		p.logger.Debug("failed to read proxy state", "error", err)
		return model.NewOpError(model.OpLoad, err)
	}
	p.view.RenderStatus(model.StatusLabel(enabled))
	return nil
}
