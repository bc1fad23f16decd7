package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single tailscale invocation.
const DefaultTimeout = 30 * time.Second

var statusArgs = []string{"status", "--self", "--json"}

// Client queries the local tailscale agent.
type Client struct {
	binary  string
	timeout time.Duration
}

// Options configures a Client. Zero values select the platform binary and
// DefaultTimeout.
type Options struct {
	Binary  string
	Timeout time.Duration
}

// New returns a Client. When opts.Binary is empty the binary is resolved for
// the running platform, failing with ErrUnsupportedPlatform if there is none.
func New(opts Options) (*Client, error) {
	binary := opts.Binary
	if binary == "" {
		b, err := DefaultBinary()
		if err != nil {
			return nil, err
		}
		binary = b
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{binary: binary, timeout: timeout}, nil
}

// Binary returns the tailscale CLI the client runs.
func (c *Client) Binary() string { return c.binary }

// Status runs `tailscale status --self --json` once and decodes its output.
// There is no retry: any failure is returned to the caller.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.binary, statusArgs...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, c.runError(ctx, err, stderr.String())
	}

	return Decode(stdout.Bytes())
}

func (c *Client) runError(ctx context.Context, err error, stderr string) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s: %w", ErrBinaryNotFound, c.binary, err)
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%w: no response within %s: %w", ErrCommandFailed, c.timeout, ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = exitErr.Error()
		}
		return fmt.Errorf("%w (is tailscale running?): exit status %d: %s", ErrCommandFailed, exitErr.ExitCode(), msg)
	}

	return fmt.Errorf("%w: %s: %w", ErrCommandFailed, c.binary, err)
}

// Decode validates and parses raw status output.
func Decode(data []byte) (*Status, error) {
	if err := validateStatus(data); err != nil {
		return nil, err
	}

	var st Status
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedStatus, err)
	}
	return &st, nil
}

// Collect resolves a client from opts and acquires the status in one step.
func Collect(ctx context.Context, opts Options) (*Status, error) {
	c, err := New(opts)
	if err != nil {
		return nil, err
	}
	return c.Status(ctx)
}
