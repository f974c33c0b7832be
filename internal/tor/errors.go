package tor

import "errors"

var (
	// ErrNotSocks5 is returned when the address answers but does not speak
	// unauthenticated SOCKS5.
	ErrNotSocks5 = errors.New("address is not an unauthenticated SOCKS5 proxy")

	// ErrSocksUnreachable is returned when no TCP connection can be made to
	// the SOCKS port.
	ErrSocksUnreachable = errors.New("cannot connect to SOCKS port")

	// ErrSocksTimeout is returned when the SOCKS port does not answer in time.
	ErrSocksTimeout = errors.New("timeout talking to SOCKS port")

	// ErrInvalidSocksAddress is returned for addresses that are not host:port.
	ErrInvalidSocksAddress = errors.New("invalid SOCKS address: expected host:port")

	// ErrEmbeddedNotRunning is returned when the embedded daemon is used
	// before Start succeeded.
	ErrEmbeddedNotRunning = errors.New("embedded Tor daemon is not running")

	// ErrInvalidOnionAddress is returned for .onion hostnames that fail
	// v3 validation.
	ErrInvalidOnionAddress = errors.New("invalid onion address")

	// ErrV2OnionAddress is returned for 16-character v2 hostnames, which the
	// Tor network stopped serving in 2021.
	ErrV2OnionAddress = errors.New("v2 onion addresses are no longer reachable")
)

// SocksStatus is the outcome of a SOCKS port probe.
type SocksStatus int

const (
	// SocksReady means the port completed a SOCKS5 handshake and answered a
	// CONNECT request.
	SocksReady SocksStatus = iota

	// SocksNotSocks5 means something answered that is not SOCKS5.
	SocksNotSocks5

	// SocksUnreachable means the TCP connection failed.
	SocksUnreachable

	// SocksTimeout means the port did not answer in time.
	SocksTimeout
)

// String implements fmt.Stringer.
func (s SocksStatus) String() string {
	switch s {
	case SocksReady:
		return "ready"
	case SocksNotSocks5:
		return "not SOCKS5"
	case SocksUnreachable:
		return "unreachable"
	case SocksTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Err maps the status to its sentinel error, nil for SocksReady.
func (s SocksStatus) Err() error {
	switch s {
	case SocksReady:
		return nil
	case SocksNotSocks5:
		return ErrNotSocks5
	case SocksUnreachable:
		return ErrSocksUnreachable
	case SocksTimeout:
		return ErrSocksTimeout
	default:
		return errors.New("unknown SOCKS status")
	}
}
