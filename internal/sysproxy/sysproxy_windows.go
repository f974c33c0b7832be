//go:build windows

package sysproxy

import (
	"context"
	"fmt"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/nao1215/comet/internal/model"
)

const internetSettingsKey = `Software\Microsoft\Windows\CurrentVersion\Internet Settings`

// WinINet option flags, see InternetSetOptionW.
const (
	internetOptionSettingsChanged = 39
	internetOptionRefresh         = 37
)

var (
	modwininet            = windows.NewLazySystemDLL("wininet.dll")
	procInternetSetOption = modwininet.NewProc("InternetSetOptionW")
)

func newPlatformBackend(Runner) backend {
	return &registryBackend{}
}

// registryBackend writes the per-user Internet Settings key.
type registryBackend struct{}

func (registryBackend) name() string { return "registry" }

func (registryBackend) set(_ context.Context, cfg model.ProxyConfiguration) error {
	key, err := registry.OpenKey(registry.CURRENT_USER, internetSettingsKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open internet settings: %w", err)
	}
	defer key.Close()

	if err := key.SetStringValue("ProxyServer", windowsProxyServer(cfg)); err != nil {
		return fmt.Errorf("failed to set ProxyServer: %w", err)
	}
	if err := key.SetStringValue("ProxyOverride", windowsProxyOverride(cfg.Rules.BypassList)); err != nil {
		return fmt.Errorf("failed to set ProxyOverride: %w", err)
	}
	if err := key.SetDWordValue("ProxyEnable", 1); err != nil {
		return fmt.Errorf("failed to set ProxyEnable: %w", err)
	}
	return notifySettingsChanged()
}

func (registryBackend) clear(_ context.Context) error {
	key, err := registry.OpenKey(registry.CURRENT_USER, internetSettingsKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open internet settings: %w", err)
	}
	defer key.Close()

	if err := key.SetDWordValue("ProxyEnable", 0); err != nil {
		return fmt.Errorf("failed to set ProxyEnable: %w", err)
	}
	return notifySettingsChanged()
}

// notifySettingsChanged makes running WinINet clients reread the registry.
func notifySettingsChanged() error {
	for _, opt := range []uintptr{internetOptionSettingsChanged, internetOptionRefresh} {
		ret, _, callErr := procInternetSetOption.Call(0, opt, 0, 0)
		if ret == 0 {
			return fmt.Errorf("InternetSetOptionW(%d) failed: %w", opt, callErr)
		}
	}
	return nil
}
