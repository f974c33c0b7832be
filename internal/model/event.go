package model

import "time"

// EventSource identifies what triggered a ToggleEvent.
type EventSource string

const (
	// SourceMessage marks an event produced by a popup message.
	SourceMessage EventSource = "message"

	// SourceStartup marks an event produced by the startup recovery step.
	SourceStartup EventSource = "startup"
)

// ToggleEvent records one handled toggle for the history command.
type ToggleEvent struct {
	// ID is a random identifier assigned when the event is created.
	ID string `json:"id"`

	// Source tells whether a message or startup recovery caused the event.
	Source EventSource `json:"source"`

	// Action is the requested action. Unknown actions are recorded verbatim.
	Action Action `json:"action"`

	// ProxyEnabled is the flag value after the event was handled.
	ProxyEnabled bool `json:"proxyEnabled"`

	// Error is the failure text, empty when every call succeeded.
	Error string `json:"error,omitempty"`

	// Timestamp is when the event was handled.
	Timestamp time.Time `json:"timestamp"`
}

// Failed reports whether any failure point reported an error.
func (e ToggleEvent) Failed() bool {
	return e.Error != ""
}
