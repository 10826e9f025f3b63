package meter

import (
	"fmt"
	"io"
	"log"
	"sync"
)

// reporter writes the live meter and status messages to the display and,
// if configured, to the log file. It is shared between the meter loop and
// the timeout timer.
type reporter struct {
	sync.Mutex
	out     io.Writer
	log     *log.Logger
	verbose bool
	// the live meter line has no line break; the next message needs one
	dirty bool
}

func (r *reporter) reading(v float32) {
	r.Lock()
	defer r.Unlock()
	fmt.Fprintf(r.out, "\r%10d  ", int(v))
	r.dirty = true
	if r.log != nil {
		r.log.Println(int(v))
	}
}

func (r *reporter) info(msg string) {
	r.Lock()
	defer r.Unlock()
	r.println(msg)
	if r.log != nil {
		r.log.Println(msg)
	}
}

// verboseInfo only prints msg in verbose mode.
func (r *reporter) verboseInfo(msg string) {
	if !r.verbose {
		return
	}
	r.info(msg)
}

// newline terminates the live meter line, e.g. after ^C has been pressed.
func (r *reporter) newline() {
	r.Lock()
	defer r.Unlock()
	if r.dirty {
		fmt.Fprintln(r.out)
		r.dirty = false
	}
}

func (r *reporter) summary(s Stats) {
	r.Lock()
	defer r.Unlock()
	r.println("Collected result:")
	r.println(fmt.Sprintf("    min: %10d", int(s.Min)))
	r.println(fmt.Sprintf("    max: %10d", int(s.Max)))
	r.println(fmt.Sprintf("    avg: %10d", int(s.Avg)))
}

func (r *reporter) println(msg string) {
	if r.dirty {
		fmt.Fprintln(r.out)
		r.dirty = false
	}
	fmt.Fprintln(r.out, msg)
}
