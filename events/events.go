package events

import (
	"os"
	"os/signal"

	"github.com/cskr/pubsub"
)

// Event channel names used for event Pubsub

// internal
const (
	OsExit = "osExit" // bool
)

// published by the meter
const (
	Reading   = "reading"   // meter reading (float32)
	Triggered = "triggered" // TriggerEvent
	Stopped   = "stopped"   // meter.Summary
)

// TriggerEvent is published whenever the configured action fires.
type TriggerEvent struct {
	Action  string  `json:"action"`
	Reading float32 `json:"reading"`
}

// WatchSystemEvents publishes an OsExit event each time one of the
// shutdown signals (e.g. CTRL-C) is received. It returns after the
// returned stop function has been called.
func WatchSystemEvents(evPS *pubsub.PubSub) (stop func()) {

	// Channel to handle OS signals
	osSignals := make(chan os.Signal, 1)
	done := make(chan struct{})

	signal.Notify(osSignals, ShutdownSignals()...)

	go func() {
		for {
			select {
			case <-osSignals:
				evPS.Pub(true, OsExit)
			case <-done:
				signal.Stop(osSignals)
				return
			}
		}
	}()

	return func() { close(done) }
}
