package model

import "time"

// StatusReport is what `comet status` renders.
type StatusReport struct {
	// ProxyEnabled is the persisted flag as read from the controller.
	ProxyEnabled bool `json:"proxyEnabled"`

	// Label is the human-readable form of ProxyEnabled.
	Label string `json:"label"`

	// Configuration is the configuration applied while the proxy is enabled.
	// It is nil when the proxy is disabled.
	Configuration *ProxyConfiguration `json:"configuration,omitempty"`

	// ControlAddress is the address of the background controller that was queried.
	ControlAddress string `json:"controlAddress"`

	// CheckedAt is when the state was read.
	CheckedAt time.Time `json:"checkedAt"`
}

// NewStatusReport builds a report for the given flag.
func NewStatusReport(enabled bool, controlAddress string, checkedAt time.Time) *StatusReport {
	r := &StatusReport{
		ProxyEnabled:   enabled,
		Label:          StatusLabel(enabled),
		ControlAddress: controlAddress,
		CheckedAt:      checkedAt,
	}
	if enabled {
		cfg := NewProxyConfiguration()
		r.Configuration = &cfg
	}
	return r
}
