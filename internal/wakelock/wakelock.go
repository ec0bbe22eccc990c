// ABOUTME: Best-effort inhibitor keeping the machine awake while recording
// ABOUTME: Holds a systemd-inhibit or caffeinate child process for the lock's lifetime

package wakelock

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"sync"
)

// ErrUnsupported is returned when no inhibitor tool is available.
var ErrUnsupported = errors.New("wake lock not supported on this system")

// Inhibitor holds a child process that blocks idle sleep.
type Inhibitor struct {
	mu      sync.Mutex
	command func() (*exec.Cmd, error)
	cmd     *exec.Cmd
}

// New returns an inhibitor for the current platform.
func New() *Inhibitor {
	return &Inhibitor{command: platformCommand}
}

// NewWithCommand uses a custom command factory.
func NewWithCommand(command func() (*exec.Cmd, error)) *Inhibitor {
	return &Inhibitor{command: command}
}

func platformCommand() (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "linux":
		path, err := exec.LookPath("systemd-inhibit")
		if err != nil {
			return nil, ErrUnsupported
		}
		return exec.Command(path, "--what=idle:sleep", "--who=wander", "--why=Recording a trip", "--mode=block", "sleep", "infinity"), nil //nolint:gosec // fixed arguments
	case "darwin":
		path, err := exec.LookPath("caffeinate")
		if err != nil {
			return nil, ErrUnsupported
		}
		return exec.Command(path, "-i"), nil //nolint:gosec // fixed arguments
	default:
		return nil, ErrUnsupported
	}
}

// Acquire starts the inhibitor. Acquiring twice is a no-op.
func (i *Inhibitor) Acquire() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.cmd != nil {
		return nil
	}
	cmd, err := i.command()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start inhibitor: %w", err)
	}
	i.cmd = cmd
	return nil
}

// Release stops the inhibitor. Releasing when not held is a no-op.
func (i *Inhibitor) Release() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.cmd == nil {
		return nil
	}
	cmd := i.cmd
	i.cmd = nil
	if err := cmd.Process.Kill(); err != nil {
		return fmt.Errorf("stop inhibitor: %w", err)
	}
	_ = cmd.Wait()
	return nil
}

// Held reports whether the inhibitor is running.
func (i *Inhibitor) Held() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.cmd != nil
}
