//go:build windows

package process

import (
	"fmt"
	"os/exec"
	"strconv"
)

// /T walks the child tree, /F skips the close request.
func reapTree(pid int) error {
	out, err := exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).CombinedOutput() // #nosec G204 -- pid is numeric
	if err != nil {
		return fmt.Errorf("taskkill %d: %w: %s", pid, err, out)
	}
	return nil
}
