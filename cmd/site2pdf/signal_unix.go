//go:build !windows

package main

import (
	"os"
	"syscall"
)

// SIGHUP covers a closed terminal during a long crawl.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}
