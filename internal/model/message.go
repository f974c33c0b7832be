package model

// Action is the toggle intent carried by a Message.
type Action string

const (
	// ActionConnect asks the controller to enable the proxy.
	ActionConnect Action = "connect"

	// ActionDisconnect asks the controller to disable the proxy.
	ActionDisconnect Action = "disconnect"
)

// IsKnown reports whether the action is one the controller acts on.
// Unknown actions are still acknowledged, they just change nothing.
func (a Action) IsKnown() bool {
	return a == ActionConnect || a == ActionDisconnect
}

// StatusOK is the only acknowledgement status the controller produces.
const StatusOK = "ok"

// Message is a request from the popup to the background controller.
type Message struct {
	Action Action `json:"action"`
}

// Response is the acknowledgement for a Message.
// It carries no success or failure information: a toggle that failed to
// apply is acknowledged exactly like one that succeeded.
type Response struct {
	Status string `json:"status"`
}

// Ack returns the acknowledgement sent for every message.
func Ack() Response {
	return Response{Status: StatusOK}
}
