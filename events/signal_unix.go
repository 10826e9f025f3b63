//go:build !windows

package events

import (
	"os"
	"syscall"
)

// ShutdownSignals returns the signals which request a graceful stop.
func ShutdownSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM}
}
