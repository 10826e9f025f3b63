// Package meter implements the sound meter: it converts a stream of audio
// segments into RMS readings, keeps statistics about them and executes an
// action once the readings stay beyond a threshold for a number of
// consecutive segments.
package meter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dh1tw/soundmeter/audio"
)

// SegmentSource provides fixed length audio segments. Next blocks until a
// complete segment has been captured and returns io.EOF once the input is
// exhausted. audio.Segmenter implements this interface.
type SegmentSource interface {
	Next() (audio.Msg, error)
	Close() error
}

// StopReason describes why a run has ended.
type StopReason int

const (
	Interrupted StopReason = iota
	TimedOut
	Triggered
	EndOfInput
	Cancelled
	DeviceFailure
)

func (r StopReason) String() string {
	switch r {
	case TimedOut:
		return "timeout"
	case Triggered:
		return "triggered"
	case EndOfInput:
		return "end of input"
	case Cancelled:
		return "cancelled"
	case DeviceFailure:
		return "device failure"
	}
	return "interrupted"
}

// Summary is handed to the Stopped callbacks once a run has ended. Stats
// is only populated when statistics were collected and at least one
// reading has been taken.
type Summary struct {
	Reason    StopReason
	Collected bool
	Stats     Stats
	Err       error
}

// Meter is the sound meter. A Meter executes exactly one run.
type Meter struct {
	options    Options
	report     *reporter
	evaluator  *Evaluator
	dispatcher *Dispatcher
	stats      Stats
	started    atomic.Bool
	running    atomic.Bool
	graceful   atomic.Bool
	timedOut   atomic.Bool

	// stateMu orders Timeout against the end of the run, so that
	// "Timeout" is never reported after "Stopped".
	stateMu sync.Mutex
}

// New validates the options and returns a Meter. The threshold, the
// number of consecutive segments and the script are only checked when an
// action has been configured.
func New(opts ...Option) (*Meter, error) {

	m := &Meter{
		options: Options{
			Action:   None,
			Num:      1,
			Output:   os.Stdout,
			Loudness: audio.RMS,
			Launcher: ExecLauncher{},
		},
	}

	for _, opt := range opts {
		opt(&m.options)
	}

	if m.options.Output == nil {
		m.options.Output = io.Discard
	}
	if m.options.Loudness == nil {
		m.options.Loudness = audio.RMS
	}
	if m.options.Launcher == nil {
		m.options.Launcher = ExecLauncher{}
	}

	action, err := ParseAction(string(m.options.Action))
	if err != nil {
		return nil, err
	}
	m.options.Action = action

	m.report = &reporter{
		out:     m.options.Output,
		log:     m.options.Log,
		verbose: m.options.Verbose,
	}

	if action == None {
		return m, nil
	}

	t, err := ParseThreshold(m.options.Threshold)
	if err != nil {
		return nil, err
	}

	if m.options.Num < 1 {
		return nil, &ConfigError{
			Parm: "num",
			Err:  fmt.Errorf("must be >= 1, got %d", m.options.Num),
		}
	}

	if action.needsScript() && m.options.Script == "" {
		return nil, &ConfigError{
			Parm: "script",
			Err:  fmt.Errorf("required by action %s", action),
		}
	}

	m.evaluator = NewEvaluator(t, m.options.Num)
	m.dispatcher = newDispatcher(action, m.options.Script, m.options.Launcher, m.report)

	return m, nil
}

// Run meters src until the run is interrupted, the run time has elapsed,
// a stop action has been triggered, src is exhausted or ctx is done. Run
// takes ownership of src and closes it exactly once before returning.
//
// Errors of the audio source are returned; all other ways of ending the
// run return nil.
func (m *Meter) Run(ctx context.Context, src SegmentSource) error {

	if !m.started.CompareAndSwap(false, true) {
		src.Close()
		return ErrAlreadyRunning
	}

	if !active.CompareAndSwap(nil, m) {
		src.Close()
		return ErrAlreadyRunning
	}
	defer active.CompareAndSwap(m, nil)

	m.running.Store(true)

	var timer *time.Timer
	if m.options.RunTime > 0 {
		timer = time.AfterFunc(m.options.RunTime, m.Timeout)
	}

	if m.options.Collect {
		m.report.info("Collecting RMS values...")
	}

	reason, err := m.loop(ctx, src)

	if timer != nil {
		timer.Stop()
	}

	m.stop(src, reason, err)

	return err
}

func (m *Meter) loop(ctx context.Context, src SegmentSource) (StopReason, error) {

	for !m.graceful.Load() {

		if ctx.Err() != nil {
			m.Graceful()
			return Cancelled, nil
		}

		seg, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				m.Graceful()
				return EndOfInput, nil
			}
			return DeviceFailure, fmt.Errorf("meter: %w", err)
		}

		reading, err := m.options.Loudness(seg)
		if err != nil {
			return DeviceFailure, fmt.Errorf("meter: %w", err)
		}

		if m.options.Collect {
			m.stats.Update(reading)
		}

		if !m.graceful.Load() {
			m.report.reading(reading)
		}

		if m.evaluator != nil && m.evaluator.Evaluate(reading) {
			for _, f := range m.options.OnTrigger {
				f(m.options.Action, reading)
			}
			if m.dispatcher.Dispatch() == Terminate {
				m.Graceful()
				return Triggered, nil
			}
		}

		for _, f := range m.options.Monitors {
			f(reading)
		}
	}

	if m.timedOut.Load() {
		return TimedOut, nil
	}

	return Interrupted, nil
}

// stop releases the audio source and reports the end of the run.
func (m *Meter) stop(src SegmentSource, reason StopReason, err error) {

	m.stateMu.Lock()
	m.graceful.Store(true)
	m.running.Store(false)
	m.stateMu.Unlock()

	if cerr := src.Close(); cerr != nil {
		log.Println("closing audio source:", cerr)
	}

	m.report.info("Stopped")

	summary := Summary{
		Reason:    reason,
		Collected: m.options.Collect,
		Err:       err,
	}

	if m.options.Collect && !m.stats.Empty() {
		summary.Stats = m.stats.Snapshot()
		m.report.summary(summary.Stats)
	}

	for _, f := range m.options.OnStop {
		f(summary)
	}
}

// Graceful requests the meter to stop after the current cycle. An audio
// capture in progress is not interrupted. Calling Graceful more than once
// has no further effect.
func (m *Meter) Graceful() {
	m.graceful.Store(true)
}

// Interrupt terminates the live meter line and requests a graceful stop.
func (m *Meter) Interrupt() {
	m.report.newline()
	m.Graceful()
}

// Timeout reports that the run time has elapsed and requests a graceful
// stop. It has no effect if the meter is not running.
func (m *Meter) Timeout() {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	if !m.running.Load() || m.timedOut.Load() {
		return
	}
	m.timedOut.Store(true)
	m.report.info("Timeout")
	m.Graceful()
}

// Running reports whether the meter loop is active.
func (m *Meter) Running() bool {
	return m.running.Load()
}

// StopRequested reports whether a graceful stop has been requested.
func (m *Meter) StopRequested() bool {
	return m.graceful.Load()
}

// TimedOut reports whether the run time has elapsed.
func (m *Meter) TimedOut() bool {
	return m.timedOut.Load()
}

// Action returns the configured action.
func (m *Meter) Action() Action {
	return m.options.Action
}

func (m *Meter) String() string {
	if m.options.Action == None {
		return "<Meter: no-action>"
	}
	return fmt.Sprintf("<Meter: %s>", m.options.Action)
}
