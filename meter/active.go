package meter

import "sync/atomic"

// active is the meter currently running in this process. Signal handlers
// and the web API reach the running meter through it. It is set when a
// run starts and cleared when the run has ended.
var active atomic.Pointer[Meter]

// Active returns the running meter or nil.
func Active() *Meter {
	return active.Load()
}

// Interrupt requests a graceful stop of the running meter. It reports
// whether a meter was running.
func Interrupt() bool {
	m := active.Load()
	if m == nil {
		return false
	}
	m.Interrupt()
	return true
}
