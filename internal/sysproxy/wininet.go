package sysproxy

import (
	"strings"

	"github.com/nao1215/comet/internal/model"
)

// windowsProxyServer renders the ProxyServer registry value. A single
// "host:port" applies to every protocol.
func windowsProxyServer(cfg model.ProxyConfiguration) string {
	return cfg.Rules.SingleProxy.Address()
}

// windowsProxyOverride renders the ProxyOverride registry value.
// WinINet understands <local> natively.
func windowsProxyOverride(bypass []string) string {
	return strings.Join(bypass, ";")
}
