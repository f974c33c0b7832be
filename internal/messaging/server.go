package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nao1215/comet/internal/model"
)

// maxMessageSize bounds the body of POST /message.
const maxMessageSize = 4 << 10

// Handler is what the server needs from the background controller.
type Handler interface {
	HandleMessage(ctx context.Context, msg model.Message) model.Response
	ProxyEnabled(ctx context.Context) (bool, error)
}

// StateResponse is the body of GET /state.
type StateResponse struct {
	ProxyEnabled bool `json:"proxyEnabled"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	OK bool `json:"ok"`
}

// errorResponse is the body of a failed GET /state.
type errorResponse struct {
	Message string `json:"message"`
}

// NewRouter returns the control endpoint routes.
func NewRouter(h Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/message", messageHandler(h, logger))
	r.Get("/state", stateHandler(h, logger))
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{OK: true})
	})
	return r
}

func messageHandler(h Handler, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg model.Message
		body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageSize))
		if err == nil {
			err = json.Unmarshal(body, &msg)
		}
		if err != nil {
			logger.Debug("malformed message, treating as unknown action", "error", err)
			msg = model.Message{}
		}
		writeJSON(w, http.StatusOK, h.HandleMessage(r.Context(), msg))
	}
}

func stateHandler(h Handler, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enabled, err := h.ProxyEnabled(r.Context())
		if err != nil {
			logger.Warn("failed to read proxy state", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "failed to read proxy state"})
			return
		}
		writeJSON(w, http.StatusOK, StateResponse{ProxyEnabled: enabled})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// Server serves the control endpoint.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// NewServer creates a server listening on addr.
func NewServer(addr string, h Handler, logger *slog.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(h, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// ListenAndServe listens on the configured address and serves until
// Shutdown is called. It returns nil after a clean shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("control endpoint listening", "address", ln.Addr().String())
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting for in-flight messages until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
