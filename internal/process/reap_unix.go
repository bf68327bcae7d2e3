//go:build !windows

package process

import (
	"errors"
	"fmt"
	"syscall"
)

// Chrome is launched as a process group leader, so the negative PID reaches
// every child it spawned.
func reapTree(pid int) error {
	err := syscall.Kill(-pid, syscall.SIGKILL)
	if err == nil || errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return fmt.Errorf("killing process group %d: %w", pid, err)
}
