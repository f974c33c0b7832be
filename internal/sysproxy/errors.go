package sysproxy

import "errors"

var (
	// ErrUnsupportedPlatform is returned on platforms without a backend.
	ErrUnsupportedPlatform = errors.New("system proxy settings are not supported on this platform")

	// ErrUnsupportedScope is returned for any scope other than model.ScopeRegular.
	ErrUnsupportedScope = errors.New("unsupported proxy settings scope")

	// ErrUnsupportedMode is returned when a configuration is not fixed_servers.
	ErrUnsupportedMode = errors.New("unsupported proxy mode")

	// ErrNoNetworkService is returned on macOS when no enabled network
	// service exists to apply the proxy to.
	ErrNoNetworkService = errors.New("no enabled network service found")
)
