//go:build linux

package sysproxy

func newPlatformBackend(r Runner) backend {
	return &gnome{run: r}
}
