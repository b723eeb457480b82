// Package netinfo reports the name of the wireless network the host is
// connected to by running the platform's network tool and parsing its output.
package netinfo

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"time"
)

// ErrNoSSID is returned when the host is not associated with a wireless network
// or the tool output carries no network name.
var ErrNoSSID = errors.New("no wireless network detected")

// Prober returns the SSID of the current wireless connection.
type Prober interface {
	SSID(ctx context.Context) (string, error)
}

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// CommandProber shells out to the OS network tool.
type CommandProber struct {
	goos    string
	run     Runner
	timeout time.Duration
}

// NewCommandProber creates a prober for the running OS.
func NewCommandProber() *CommandProber {
	return &CommandProber{goos: runtime.GOOS, run: execRunner, timeout: 5 * time.Second}
}

// NewCommandProberFor creates a prober for a specific OS using run to execute tools.
func NewCommandProberFor(goos string, run Runner) *CommandProber {
	return &CommandProber{goos: goos, run: run, timeout: 5 * time.Second}
}

// SSID runs the platform tool and parses the connected network name.
func (p *CommandProber) SSID(ctx context.Context) (string, error) {
	name, args, parse, err := p.tool()
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.run(ctx, name, args...)
	if err != nil {
		return "", fmt.Errorf("run %s: %w", name, err)
	}

	ssid, ok := parse(string(out))
	if !ok {
		return "", ErrNoSSID
	}
	return ssid, nil
}

func (p *CommandProber) tool() (string, []string, func(string) (string, bool), error) {
	switch p.goos {
	case "windows":
		return "netsh", []string{"wlan", "show", "interfaces"}, ParseNetsh, nil
	case "linux":
		return "nmcli", []string{"-t", "-f", "active,ssid", "dev", "wifi"}, ParseNmcli, nil
	case "darwin":
		return "networksetup", []string{"-getairportnetwork", "en0"}, ParseNetworksetup, nil
	default:
		return "", nil, nil, fmt.Errorf("ssid probe unsupported on %s", p.goos)
	}
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Static is a Prober that always reports the same network.
type Static string

// SSID implements Prober.
func (s Static) SSID(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoSSID
	}
	return string(s), nil
}
