package tor

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"
)

// serveOnce accepts one connection and hands it to fn.
func serveOnce(t *testing.T, fn func(conn net.Conn)) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		fn(conn)
	}()
	return ln.Addr().String()
}

// closedAddress returns a loopback address nothing listens on.
func closedAddress(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

// fakeSocks answers the greeting and a CONNECT with the given reply code.
func fakeSocks(reply byte) func(conn net.Conn) {
	return func(conn net.Conn) {
		greeting := make([]byte, 3)
		if _, err := io.ReadFull(conn, greeting); err != nil {
			return
		}
		_, _ = conn.Write([]byte{0x05, 0x00})
		buf := make([]byte, 512)
		_, _ = conn.Read(buf)
		_, _ = conn.Write([]byte{0x05, reply, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
	}
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{name: "ipv4", address: "127.0.0.1:9050"},
		{name: "hostname", address: "localhost:9150"},
		{name: "ipv6", address: "[::1]:9050"},
		{name: "empty", address: "", wantErr: true},
		{name: "no port", address: "127.0.0.1", wantErr: true},
		{name: "no host", address: ":9050", wantErr: true},
		{name: "port zero", address: "127.0.0.1:0", wantErr: true},
		{name: "port too large", address: "127.0.0.1:70000", wantErr: true},
		{name: "non numeric port", address: "127.0.0.1:tor", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := NewClient(tt.address, time.Second)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSocksAddress) {
					t.Errorf("expected ErrInvalidSocksAddress, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.SocksAddress() != tt.address {
				t.Errorf("SocksAddress() = %q", c.SocksAddress())
			}
			if c.Dialer() == nil {
				t.Error("expected a dialer")
			}
		})
	}
}

func TestCheckConnection(t *testing.T) {
	t.Parallel()

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()
		c, err := NewClient(closedAddress(t), time.Second)
		if err != nil {
			t.Fatal(err)
		}
		if got := c.CheckConnection(context.Background()); got != SocksUnreachable {
			t.Errorf("got %v, want %v", got, SocksUnreachable)
		}
	})

	t.Run("http server is not socks5", func(t *testing.T) {
		t.Parallel()
		addr := serveOnce(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte("HTTP/1.1 400 Bad Request\r\n\r\n"))
		})
		c, err := NewClient(addr, time.Second)
		if err != nil {
			t.Fatal(err)
		}
		if got := c.CheckConnection(context.Background()); got != SocksNotSocks5 {
			t.Errorf("got %v, want %v", got, SocksNotSocks5)
		}
	})

	t.Run("auth required is not usable", func(t *testing.T) {
		t.Parallel()
		addr := serveOnce(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte{0x05, 0xFF})
		})
		c, err := NewClient(addr, time.Second)
		if err != nil {
			t.Fatal(err)
		}
		if got := c.CheckConnection(context.Background()); got != SocksNotSocks5 {
			t.Errorf("got %v, want %v", got, SocksNotSocks5)
		}
	})

	t.Run("failure reply still means ready", func(t *testing.T) {
		t.Parallel()
		addr := serveOnce(t, fakeSocks(0x04))
		c, err := NewClient(addr, time.Second)
		if err != nil {
			t.Fatal(err)
		}
		if got := c.CheckConnection(context.Background()); got != SocksReady {
			t.Errorf("got %v, want %v", got, SocksReady)
		}
	})

	t.Run("silent server times out", func(t *testing.T) {
		t.Parallel()
		addr := serveOnce(t, func(conn net.Conn) {
			time.Sleep(probeTimeout + time.Second)
		})
		c, err := NewClient(addr, time.Second)
		if err != nil {
			t.Fatal(err)
		}
		if got := c.CheckConnection(context.Background()); got != SocksTimeout {
			t.Errorf("got %v, want %v", got, SocksTimeout)
		}
	})
}

func TestSocksStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status  SocksStatus
		str     string
		wantErr error
	}{
		{SocksReady, "ready", nil},
		{SocksNotSocks5, "not SOCKS5", ErrNotSocks5},
		{SocksUnreachable, "unreachable", ErrSocksUnreachable},
		{SocksTimeout, "timeout", ErrSocksTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			t.Parallel()
			if tt.status.String() != tt.str {
				t.Errorf("String() = %q, want %q", tt.status.String(), tt.str)
			}
			if !errors.Is(tt.status.Err(), tt.wantErr) || (tt.wantErr == nil && tt.status.Err() != nil) {
				t.Errorf("Err() = %v, want %v", tt.status.Err(), tt.wantErr)
			}
		})
	}
	if SocksStatus(42).String() != "unknown" || SocksStatus(42).Err() == nil {
		t.Error("unknown status must render as unknown with an error")
	}
}

func TestWaitForSocks(t *testing.T) {
	t.Parallel()

	t.Run("ready immediately", func(t *testing.T) {
		t.Parallel()
		addr := serveOnce(t, fakeSocks(0x00))
		c, err := NewClient(addr, time.Second)
		if err != nil {
			t.Fatal(err)
		}
		called := false
		err = WaitForSocks(context.Background(), c, 10*time.Millisecond, func(time.Duration, SocksStatus) { called = true })
		if err != nil {
			t.Fatal(err)
		}
		if called {
			t.Error("progress must not be reported when the port is ready")
		}
	})

	t.Run("gives up when context ends", func(t *testing.T) {
		t.Parallel()
		c, err := NewClient(closedAddress(t), time.Second)
		if err != nil {
			t.Fatal(err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		var reports int
		err = WaitForSocks(ctx, c, 10*time.Millisecond, func(_ time.Duration, s SocksStatus) {
			if s != SocksUnreachable {
				t.Errorf("unexpected status %v", s)
			}
			reports++
		})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
		if reports == 0 {
			t.Error("expected progress reports")
		}
	})

	t.Run("not socks5 fails fast", func(t *testing.T) {
		t.Parallel()
		addr := serveOnce(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte("nope"))
		})
		c, err := NewClient(addr, time.Second)
		if err != nil {
			t.Fatal(err)
		}
		err = WaitForSocks(context.Background(), c, time.Hour, nil)
		if !errors.Is(err, ErrNotSocks5) {
			t.Errorf("expected ErrNotSocks5, got %v", err)
		}
	})
}

func TestDialContextCancelled(t *testing.T) {
	t.Parallel()

	c, err := NewClient(closedAddress(t), time.Second)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.DialContext(ctx, "tcp", "example.com:80"); err == nil {
		t.Error("expected an error")
	}
}
