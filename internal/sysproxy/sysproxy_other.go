//go:build !linux && !darwin && !windows

package sysproxy

func newPlatformBackend(Runner) backend {
	return unsupported{}
}
