package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/nao1215/comet/internal/model"
)

// Client talks to a running background controller. It implements
// popup.Messenger and popup.StateReader.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the controller listening on addr
// ("host:port").
func NewClient(addr string, timeout time.Duration) *Client {
	return &Client{
		baseURL: "http://" + addr,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				// The controller is on loopback; never send control
				// messages through the proxy this tool enables.
				Proxy: nil,
			},
		},
	}
}

// Send posts msg to /message and decodes the acknowledgement.
func (c *Client) Send(ctx context.Context, msg model.Message) (model.Response, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return model.Response{}, fmt.Errorf("failed to encode message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/message", bytes.NewReader(body))
	if err != nil {
		return model.Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp model.Response
	if err := c.do(req, &resp); err != nil {
		return model.Response{}, err
	}
	return resp, nil
}

// ProxyEnabled reads the persisted flag through /state.
func (c *Client) ProxyEnabled(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/state", nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	var state StateResponse
	if err := c.do(req, &state); err != nil {
		return false, err
	}
	return state.ProxyEnabled, nil
}

// Health reports whether the controller answers /health.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	var health HealthResponse
	if err := c.do(req, &health); err != nil {
		return err
	}
	if !health.OK {
		return fmt.Errorf("%w: health check reported not ok", ErrUnexpectedStatus)
	}
	return nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) && opErr.Op == "dial" {
			return fmt.Errorf("%w at %s: %w", ErrControllerUnavailable, req.URL.Host, err)
		}
		return fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s %s returned %d", ErrUnexpectedStatus, req.Method, req.URL.Path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.URL.Path, err)
	}
	return nil
}
