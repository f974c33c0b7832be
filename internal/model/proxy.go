package model

import (
	"net"
	"strconv"
)

// Fixed parameters of the proxy the toggle routes traffic through.
// The bridge listens on this address; the toggle never proxies anywhere else.
const (
	// ProxyHost is the loopback address of the local HTTP proxy.
	ProxyHost = "127.0.0.1"

	// ProxyPort is the TCP port of the local HTTP proxy.
	ProxyPort = 8080

	// ProxyScheme is the scheme used to talk to the local proxy.
	ProxyScheme = "http"

	// BypassLocal is the bypass rule that exempts local addresses from proxying.
	BypassLocal = "<local>"
)

// ProxyMode describes how the proxy settings route traffic.
type ProxyMode string

const (
	// ProxyModeFixedServers routes all traffic through a single fixed proxy.
	ProxyModeFixedServers ProxyMode = "fixed_servers"

	// ProxyModeDirect connects without any proxy. This is what a cleared
	// configuration falls back to.
	ProxyModeDirect ProxyMode = "direct"
)

// Scope selects which settings slot a configuration is applied to.
type Scope string

const (
	// ScopeRegular is the persistent, session-wide settings slot.
	ScopeRegular Scope = "regular"
)

// ProxyServer is the single proxy every request is sent to.
type ProxyServer struct {
	Scheme string `json:"scheme"`
	Host   string `json:"host"`
	Port   int    `json:"port"`
}

// Address returns the server address in "host:port" form.
func (s ProxyServer) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// ProxyRules holds the routing rules of a fixed-servers configuration.
type ProxyRules struct {
	SingleProxy ProxyServer `json:"singleProxy"`
	BypassList  []string    `json:"bypassList"`
}

// ProxyConfiguration is the value object submitted to the system proxy settings.
// It always replaces the whole active configuration; there are no partial updates.
type ProxyConfiguration struct {
	Mode  ProxyMode  `json:"mode"`
	Rules ProxyRules `json:"rules"`
}

// NewProxyConfiguration builds the configuration used on every enable.
// A fresh value is returned on each call so callers can never mutate a
// shared instance and make the applied rules drift.
func NewProxyConfiguration() ProxyConfiguration {
	return ProxyConfiguration{
		Mode: ProxyModeFixedServers,
		Rules: ProxyRules{
			SingleProxy: ProxyServer{
				Scheme: ProxyScheme,
				Host:   ProxyHost,
				Port:   ProxyPort,
			},
			BypassList: []string{BypassLocal},
		},
	}
}

// Equal reports whether two configurations describe the same routing.
func (c ProxyConfiguration) Equal(other ProxyConfiguration) bool {
	if c.Mode != other.Mode || c.Rules.SingleProxy != other.Rules.SingleProxy {
		return false
	}
	if len(c.Rules.BypassList) != len(other.Rules.BypassList) {
		return false
	}
	for i := range c.Rules.BypassList {
		if c.Rules.BypassList[i] != other.Rules.BypassList[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the configuration.
func (c ProxyConfiguration) Clone() ProxyConfiguration {
	out := c
	if c.Rules.BypassList != nil {
		out.Rules.BypassList = append([]string(nil), c.Rules.BypassList...)
	}
	return out
}
