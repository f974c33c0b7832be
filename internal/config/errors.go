package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidControlAddress is returned when the control address is not host:port.
	ErrInvalidControlAddress = errors.New("invalid control address: expected host:port")

	// ErrInvalidSocksAddress is returned when the SOCKS address is not host:port.
	ErrInvalidSocksAddress = errors.New("invalid socks address: expected host:port")

	// ErrInvalidBridgeAddress is returned when the bridge listen address is not host:port.
	ErrInvalidBridgeAddress = errors.New("invalid bridge listen address: expected host:port")

	// ErrAddressConflict is returned when the bridge and the controller would
	// listen on the same address.
	ErrAddressConflict = errors.New("bridge listen address and control address must differ")

	// ErrNoDataDir is returned when no data directory is configured.
	ErrNoDataDir = errors.New("no data directory configured")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")
)
