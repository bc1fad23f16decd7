package collector

import "errors"

// Failures of the status acquisition. All of them are fatal to an inventory
// run; use errors.Is to tell them apart.
var (
	// ErrUnsupportedPlatform is returned when no tailscale binary path is
	// known for the running operating system.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrBinaryNotFound is returned when the tailscale binary cannot be executed
	// because it does not exist.
	ErrBinaryNotFound = errors.New("tailscale command not found")

	// ErrCommandFailed is returned when tailscale exits with a non-zero status.
	ErrCommandFailed = errors.New("tailscale command failed")

	// ErrMalformedStatus is returned when the status output is not the
	// expected JSON document.
	ErrMalformedStatus = errors.New("malformed tailscale status")
)
