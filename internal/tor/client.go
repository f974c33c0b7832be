package tor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// probeTimeout bounds a single CheckConnection call.
const probeTimeout = 2 * time.Second

// SOCKS5 wire constants used by the probe (RFC 1928).
const (
	socksVersion5     = 0x05
	socksMethodNone   = 0x00
	socksNoAcceptable = 0xFF
	socksCmdConnect   = 0x01
	socksAtypDomain   = 0x03

	// probeHost never resolves. Tor answers the CONNECT with a failure
	// reply, which is enough to prove it is proxying.
	probeHost = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa.onion"
	probePort = 80
)

// Client dials through a Tor SOCKS5 port.
type Client struct {
	socksAddress string
	dialer       proxy.Dialer
	timeout      time.Duration
}

// NewClient creates a client for the SOCKS5 port at socksAddress. It does not
// connect; call CheckConnection to verify the port.
func NewClient(socksAddress string, timeout time.Duration) (*Client, error) {
	if !isValidSocksAddress(socksAddress) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSocksAddress, socksAddress)
	}

	// Tor's SOCKS port takes no authentication. Hostnames are passed to the
	// proxy unresolved.
	dialer, err := proxy.SOCKS5("tcp", socksAddress, nil, &net.Dialer{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	return &Client{
		socksAddress: socksAddress,
		dialer:       dialer,
		timeout:      timeout,
	}, nil
}

func isValidSocksAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// SocksAddress returns the SOCKS5 address the client dials through.
func (c *Client) SocksAddress() string {
	return c.socksAddress
}

// Dialer returns the underlying SOCKS5 dialer.
func (c *Client) Dialer() proxy.Dialer {
	return c.dialer
}

// DialContext opens a connection to address through the SOCKS port.
func (c *Client) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if cd, ok := c.dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, address)
	}

	type result struct {
		conn net.Conn
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		conn, err := c.dialer.Dial(network, address)
		ch <- result{conn: conn, err: err}
	}()

	select {
	case r := <-ch:
		return r.conn, r.err
	case <-ctx.Done():
		go func() {
			if r := <-ch; r.conn != nil {
				r.conn.Close()
			}
		}()
		return nil, ctx.Err()
	}
}

// CheckConnection performs a SOCKS5 handshake and a CONNECT request against
// the SOCKS port. Any CONNECT reply, including a failure code, counts as
// ready.
func (c *Client) CheckConnection(ctx context.Context) SocksStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.socksAddress)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return SocksTimeout
		}
		return SocksUnreachable
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return SocksUnreachable
	}

	if status := greet(conn); status != SocksReady {
		return status
	}
	return requestConnect(conn)
}

// greet offers the no-authentication method and checks the server choice.
func greet(conn net.Conn) SocksStatus {
	if _, err := conn.Write([]byte{socksVersion5, 1, socksMethodNone}); err != nil {
		return SocksUnreachable
	}
	reply := make([]byte, 2)
	if _, err := io.ReadFull(conn, reply); err != nil {
		return readFailure(err)
	}
	if reply[0] != socksVersion5 || reply[1] == socksNoAcceptable || reply[1] != socksMethodNone {
		return SocksNotSocks5
	}
	return SocksReady
}

// requestConnect sends a CONNECT for probeHost and checks the reply header.
func requestConnect(conn net.Conn) SocksStatus {
	req := make([]byte, 0, 7+len(probeHost))
	req = append(req, socksVersion5, socksCmdConnect, 0x00, socksAtypDomain, byte(len(probeHost)))
	req = append(req, probeHost...)
	req = append(req, byte(probePort>>8), byte(probePort&0xff))
	if _, err := conn.Write(req); err != nil {
		return SocksUnreachable
	}

	header := make([]byte, 4)
	if _, err := io.ReadFull(conn, header); err != nil {
		return readFailure(err)
	}
	if header[0] != socksVersion5 {
		return SocksNotSocks5
	}
	return SocksReady
}

func readFailure(err error) SocksStatus {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return SocksTimeout
	}
	return SocksNotSocks5
}
