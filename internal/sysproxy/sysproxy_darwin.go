//go:build darwin

package sysproxy

func newPlatformBackend(r Runner) backend {
	return &networkSetup{run: r}
}
