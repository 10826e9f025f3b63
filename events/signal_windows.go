//go:build windows

package events

import (
	"os"
)

// ShutdownSignals returns the signals which request a graceful stop.
func ShutdownSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}
