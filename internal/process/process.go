// Package process tears down headless browser process trees.
package process

import (
	"errors"
	"fmt"
)

// ErrInvalidPID rejects PIDs that would signal the caller's own group or init.
var ErrInvalidPID = errors.New("invalid browser pid")

// ReapTree force-kills the browser rooted at pid along with its renderer
// and GPU children. A tree that already exited is not an error.
func ReapTree(pid int) error {
	if pid <= 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	return reapTree(pid)
}
