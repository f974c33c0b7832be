package bridge

import "errors"

var (
	// ErrMissingHost is returned for origin-form requests without a Host header.
	ErrMissingHost = errors.New("request has no Host header")

	// ErrNoUpstream is returned when a Bridge is built without a dialer.
	ErrNoUpstream = errors.New("bridge has no upstream dialer")
)
