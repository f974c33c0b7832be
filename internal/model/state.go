package model

// ProxyStateKey is the key the enabled flag is persisted under.
// A missing record reads as false.
const ProxyStateKey = "proxyEnabled"

// Human-readable labels rendered by the popup.
const (
	LabelConnected    = "Connected"
	LabelDisconnected = "Disconnected"
)

// StatusLabel maps the enabled flag to the label shown to the user.
func StatusLabel(enabled bool) string {
	if enabled {
		return LabelConnected
	}
	return LabelDisconnected
}
