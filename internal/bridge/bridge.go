package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/elazarl/goproxy"

	"github.com/nao1215/comet/internal/tor"
)

// Dialer opens upstream connections, normally through a SOCKS5 port.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Bridge forwards HTTP proxy traffic to a SOCKS5 upstream.
type Bridge struct {
	proxy  *goproxy.ProxyHttpServer
	srv    *http.Server
	logger *slog.Logger
}

// Option configures a Bridge.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	timeout time.Duration
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithResponseHeaderTimeout bounds how long an upstream may take to start
// answering a plain HTTP request.
func WithResponseHeaderTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// New creates a bridge listening on listenAddr and dialing through upstream.
func New(listenAddr string, upstream Dialer, opts ...Option) (*Bridge, error) {
	if upstream == nil {
		return nil, ErrNoUpstream
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	b := &Bridge{logger: o.logger}
	b.proxy = newProxy(upstream, o)
	b.srv = &http.Server{
		Addr:              listenAddr,
		Handler:           b.proxy,
		ReadHeaderTimeout: 30 * time.Second,
	}
	return b, nil
}

func newProxy(upstream Dialer, o *options) *goproxy.ProxyHttpServer {
	p := goproxy.NewProxyHttpServer()
	p.Logger = slog.NewLogLogger(o.logger.Handler(), slog.LevelDebug)

	p.Tr = &http.Transport{
		// Never chain to an environment proxy; the SOCKS dialer is the only
		// way out.
		Proxy:                 nil,
		DialContext:           upstream.DialContext,
		ResponseHeaderTimeout: o.timeout,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		DisableCompression:    true,
	}
	p.ConnectDial = func(network, addr string) (net.Conn, error) {
		return upstream.DialContext(context.Background(), network, addr)
	}

	p.OnRequest().DoFunc(func(r *http.Request, _ *goproxy.ProxyCtx) (*http.Request, *http.Response) {
		if err := tor.CheckOnionHost(r.URL.Hostname()); err != nil {
			o.logger.Debug("refusing request", "host", r.URL.Hostname(), "error", err)
			return r, goproxy.NewResponse(r, goproxy.ContentTypeText, http.StatusBadRequest, err.Error()+"\n")
		}
		return r, nil
	})
	p.OnRequest().HandleConnectFunc(func(host string, _ *goproxy.ProxyCtx) (*goproxy.ConnectAction, string) {
		hostname, _, err := net.SplitHostPort(host)
		if err != nil {
			hostname = host
		}
		if err := tor.CheckOnionHost(hostname); err != nil {
			o.logger.Debug("refusing tunnel", "host", hostname, "error", err)
			return goproxy.RejectConnect, host
		}
		return goproxy.OkConnect, host
	})

	p.NonproxyHandler = originFormHandler(p, o.logger)
	return p
}

// originFormHandler serves requests whose target is a path rather than an
// absolute URL by rebuilding the URL from the Host header.
func originFormHandler(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Host == "" {
			logger.Debug("rejecting origin-form request", "path", r.URL.Path, "error", ErrMissingHost)
			http.Error(w, ErrMissingHost.Error(), http.StatusBadRequest)
			return
		}
		r.URL.Scheme = "http"
		r.URL.Host = r.Host
		next.ServeHTTP(w, r)
	})
}

// Handler returns the proxy handler, for serving on a custom listener.
func (b *Bridge) Handler() http.Handler {
	return b.proxy
}

// Addr returns the configured listen address.
func (b *Bridge) Addr() string {
	return b.srv.Addr
}

// ListenAndServe listens on the configured address and serves until Shutdown.
func (b *Bridge) ListenAndServe() error {
	ln, err := net.Listen("tcp", b.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", b.srv.Addr, err)
	}
	return b.Serve(ln)
}

// Serve serves on an existing listener. It returns nil after Shutdown.
func (b *Bridge) Serve(ln net.Listener) error {
	b.logger.Info("bridge listening", "address", ln.Addr().String())
	if err := b.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for active ones until ctx
// ends. Hijacked CONNECT tunnels are not tracked and are left to finish.
func (b *Bridge) Shutdown(ctx context.Context) error {
	return b.srv.Shutdown(ctx)
}
