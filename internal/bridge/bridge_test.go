package bridge

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/comet/internal/log"
	"github.com/nao1215/comet/internal/tor"
)

// directDialer dials without any proxy and counts dials.
type directDialer struct {
	dials atomic.Int32
}

func (d *directDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	d.dials.Add(1)
	var nd net.Dialer
	return nd.DialContext(ctx, network, address)
}

// socksServer is a minimal SOCKS5 server that sends every CONNECT to target
// and records the requested hosts.
type socksServer struct {
	ln     net.Listener
	target string

	mu    sync.Mutex
	hosts []string
}

func newSocksServer(t *testing.T, target string) *socksServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
	if err != nil {
		t.Fatal(err)
	}
	s := &socksServer{ln: ln, target: target}
	t.Cleanup(func() { ln.Close() })
	go s.serve()
	return s
}

func (s *socksServer) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *socksServer) handle(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)

	head := make([]byte, 2)
	if _, err := io.ReadFull(r, head); err != nil {
		return
	}
	methods := make([]byte, head[1])
	if _, err := io.ReadFull(r, methods); err != nil {
		return
	}
	if _, err := conn.Write([]byte{0x05, 0x00}); err != nil {
		return
	}

	req := make([]byte, 4)
	if _, err := io.ReadFull(r, req); err != nil {
		return
	}
	var host string
	switch req[3] {
	case 0x01:
		ip := make([]byte, 4)
		if _, err := io.ReadFull(r, ip); err != nil {
			return
		}
		host = net.IP(ip).String()
	case 0x03:
		n, err := r.ReadByte()
		if err != nil {
			return
		}
		name := make([]byte, n)
		if _, err := io.ReadFull(r, name); err != nil {
			return
		}
		host = string(name)
	default:
		return
	}
	port := make([]byte, 2)
	if _, err := io.ReadFull(r, port); err != nil {
		return
	}
	s.mu.Lock()
	s.hosts = append(s.hosts, fmt.Sprintf("%s:%d", host, binary.BigEndian.Uint16(port)))
	s.mu.Unlock()

	up, err := net.Dial("tcp", s.target) //nolint:noctx // test code
	if err != nil {
		_, _ = conn.Write([]byte{0x05, 0x05, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
		return
	}
	defer up.Close()
	if _, err := conn.Write([]byte{0x05, 0x00, 0x00, 0x01, 127, 0, 0, 1, 0, 0}); err != nil {
		return
	}
	go func() {
		_, _ = io.Copy(up, r)
		if tc, ok := up.(*net.TCPConn); ok {
			_ = tc.CloseWrite()
		}
	}()
	_, _ = io.Copy(conn, up)
}

func (s *socksServer) requested() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.hosts...)
}

// startBridge serves a bridge on a random port and returns its URL.
func startBridge(t *testing.T, upstream Dialer) (*Bridge, *url.URL) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(ln.Addr().String(), upstream, WithLogger(log.Discard()), WithResponseHeaderTimeout(5*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	go func() { _ = b.Serve(ln) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = b.Shutdown(ctx)
	})
	u, _ := url.Parse("http://" + ln.Addr().String())
	return b, u
}

func proxiedClient(proxyURL *url.URL) *http.Client {
	return &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http.Transport{
			Proxy:           http.ProxyURL(proxyURL),
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // test server certificate
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func newTarget(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/redirect":
			http.Redirect(w, r, "/elsewhere", http.StatusFound)
		default:
			fmt.Fprintf(w, "hello %s", r.URL.Path)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestNew(t *testing.T) {
	t.Parallel()

	if _, err := New("127.0.0.1:8080", nil); !errors.Is(err, ErrNoUpstream) {
		t.Errorf("expected ErrNoUpstream, got %v", err)
	}
	b, err := New("127.0.0.1:8080", &directDialer{})
	if err != nil {
		t.Fatal(err)
	}
	if b.Addr() != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q", b.Addr())
	}
}

func TestForwardHTTP(t *testing.T) {
	t.Parallel()

	target := newTarget(t)

	t.Run("absolute form", func(t *testing.T) {
		t.Parallel()
		up := &directDialer{}
		_, proxyURL := startBridge(t, up)

		resp, err := proxiedClient(proxyURL).Get(target.URL + "/page")
		if err != nil {
			t.Fatal(err)
		}
		if body := readBody(t, resp); body != "hello /page" {
			t.Errorf("body = %q", body)
		}
		if up.dials.Load() == 0 {
			t.Error("request must go through the upstream dialer")
		}
	})

	t.Run("redirects are not followed", func(t *testing.T) {
		t.Parallel()
		_, proxyURL := startBridge(t, &directDialer{})

		resp, err := proxiedClient(proxyURL).Get(target.URL + "/redirect")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusFound {
			t.Errorf("status = %d, want 302", resp.StatusCode)
		}
	})

	t.Run("origin form uses host header", func(t *testing.T) {
		t.Parallel()
		_, proxyURL := startBridge(t, &directDialer{})

		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, proxyURL.String()+"/relative", nil)
		if err != nil {
			t.Fatal(err)
		}
		req.Host = strings.TrimPrefix(target.URL, "http://")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		if body := readBody(t, resp); body != "hello /relative" {
			t.Errorf("body = %q", body)
		}
	})
}

func TestMissingHost(t *testing.T) {
	t.Parallel()

	up := &directDialer{}
	b, err := New("127.0.0.1:0", up, WithLogger(log.Discard()))
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/no-host", nil)
	req.Host = ""
	rec := httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if up.dials.Load() != 0 {
		t.Error("nothing must be dialed")
	}
}

func TestRejectInvalidOnion(t *testing.T) {
	t.Parallel()

	up := &directDialer{}
	_, proxyURL := startBridge(t, up)

	resp, err := proxiedClient(proxyURL).Get("http://notreal.onion/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if up.dials.Load() != 0 {
		t.Error("nothing must be dialed for an invalid onion host")
	}
}

func TestThroughSocks(t *testing.T) {
	t.Parallel()

	t.Run("plain http keeps hostname unresolved", func(t *testing.T) {
		t.Parallel()
		target := newTarget(t)
		socks := newSocksServer(t, strings.TrimPrefix(target.URL, "http://"))
		client, err := tor.NewClient(socks.ln.Addr().String(), 5*time.Second)
		if err != nil {
			t.Fatal(err)
		}
		_, proxyURL := startBridge(t, client)

		resp, err := proxiedClient(proxyURL).Get("http://hidden.example.invalid:8000/via-socks")
		if err != nil {
			t.Fatal(err)
		}
		if body := readBody(t, resp); body != "hello /via-socks" {
			t.Errorf("body = %q", body)
		}
		hosts := socks.requested()
		if len(hosts) == 0 || hosts[0] != "hidden.example.invalid:8000" {
			t.Errorf("SOCKS server saw %v", hosts)
		}
	})

	t.Run("connect tunnel", func(t *testing.T) {
		t.Parallel()
		target := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, "secure")
		}))
		defer target.Close()
		socks := newSocksServer(t, strings.TrimPrefix(target.URL, "https://"))
		client, err := tor.NewClient(socks.ln.Addr().String(), 5*time.Second)
		if err != nil {
			t.Fatal(err)
		}
		_, proxyURL := startBridge(t, client)

		resp, err := proxiedClient(proxyURL).Get("https://secure.example.invalid:443/")
		if err != nil {
			t.Fatal(err)
		}
		if body := readBody(t, resp); body != "secure" {
			t.Errorf("body = %q", body)
		}
		hosts := socks.requested()
		if len(hosts) == 0 || hosts[0] != "secure.example.invalid:443" {
			t.Errorf("SOCKS server saw %v", hosts)
		}
	})
}
