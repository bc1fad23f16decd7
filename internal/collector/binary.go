package collector

import (
	"fmt"
	"runtime"
)

const (
	linuxBinary  = "tailscale"
	darwinBinary = "/Applications/Tailscale.app/Contents/MacOS/Tailscale"
)

// BinaryFor returns the tailscale CLI to run on the given GOOS. On Linux the
// bare name is resolved through PATH; macOS uses the app bundle's binary.
func BinaryFor(goos string) (string, error) {
	switch goos {
	case "linux":
		return linuxBinary, nil
	case "darwin":
		return darwinBinary, nil
	default:
		return "", fmt.Errorf("%w: %s not currently supported", ErrUnsupportedPlatform, goos)
	}
}

// DefaultBinary returns the tailscale CLI for the running platform.
func DefaultBinary() (string, error) {
	return BinaryFor(runtime.GOOS)
}
