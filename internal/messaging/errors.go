package messaging

import "errors"

var (
	// ErrUnexpectedStatus is returned when the controller answers with a
	// non-2xx HTTP status.
	ErrUnexpectedStatus = errors.New("unexpected response status")

	// ErrControllerUnavailable is returned when the controller cannot be
	// reached at all.
	ErrControllerUnavailable = errors.New("background controller is not running")
)
