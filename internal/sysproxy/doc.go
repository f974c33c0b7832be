// Package sysproxy applies and clears the desktop's system-wide proxy
// configuration.
//
// # Platform Support
//
//   - Linux: GNOME settings through gsettings (org.gnome.system.proxy)
//   - macOS: every enabled network service through networksetup
//   - Windows: the per-user Internet Settings registry key, followed by a
//     WinINet settings refresh
//
// Other platforms get a backend that returns ErrUnsupportedPlatform.
//
// A configuration is always applied as a whole: Set switches the mode to
// manual only after host, port and bypass rules have been written, and
// Clear switches the mode back to direct.
//
// Memory is an in-process stand-in holding a single configuration slot. It is
// used by tests and by `comet serve --dry-run`.
package sysproxy
