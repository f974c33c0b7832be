package model

import "fmt"

// Op names one of the physical failure points of a toggle.
type Op string

const (
	// OpApply is submitting a configuration to the system proxy settings.
	OpApply Op = "apply"

	// OpClear is clearing the system proxy settings.
	OpClear Op = "clear"

	// OpPersist is writing the enabled flag.
	OpPersist Op = "persist"

	// OpLoad is reading the enabled flag.
	OpLoad Op = "load"

	// OpDeliver is delivering a message to the controller or reading its reply.
	OpDeliver Op = "deliver"
)

// OpError wraps a failure at one of the toggle's failure points.
// All three kinds of failure (configuration apply, persistence, message
// delivery) are reported through this single type so that surfacing them
// later only changes the code that inspects it.
type OpError struct {
	Op  Op
	Err error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *OpError) Unwrap() error {
	return e.Err
}

// NewOpError wraps err for the given operation. It returns nil when err is nil.
func NewOpError(op Op, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}
