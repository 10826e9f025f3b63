package meter

import (
	"io"
	"log"
	"time"

	"github.com/dh1tw/soundmeter/audio"
)

// Option is the type for a function option
type Option func(*Options)

// Options contains the run mode of a Meter. They can not be changed once
// the Meter has been created.
type Options struct {
	Collect   bool
	RunTime   time.Duration
	Action    Action
	Threshold string
	Num       int
	Script    string
	Log       *log.Logger
	Verbose   bool
	Output    io.Writer
	Loudness  audio.LoudnessFunc
	Launcher  Launcher
	Monitors  []func(reading float32)
	OnTrigger []func(a Action, reading float32)
	OnStop    []func(Summary)
}

// Collect is a functional option to collect the minimum, maximum and
// average RMS values of the run. They are reported when the meter stops.
func Collect(enabled bool) Option {
	return func(args *Options) {
		args.Collect = enabled
	}
}

// RunTime is a functional option to limit the duration of the run. A
// value of zero lets the meter run until it is stopped.
func RunTime(d time.Duration) Option {
	return func(args *Options) {
		args.RunTime = d
	}
}

// Trigger is a functional option to execute an action once the RMS value
// has been beyond the threshold (e.g. "+252" or "-144") for num
// consecutive segments.
func Trigger(action Action, threshold string, num int) Option {
	return func(args *Options) {
		args.Action = action
		args.Threshold = threshold
		args.Num = num
	}
}

// Script is a functional option to set the script which is executed by the
// exec and exec-stop actions.
func Script(path string) Option {
	return func(args *Options) {
		args.Script = path
	}
}

// LogTo is a functional option to additionally write every reading and
// status message to a logger.
func LogTo(l *log.Logger) Option {
	return func(args *Options) {
		args.Log = l
	}
}

// Verbose is a functional option to print additional status messages.
func Verbose(enabled bool) Option {
	return func(args *Options) {
		args.Verbose = enabled
	}
}

// Output is a functional option to set where the live meter and the status
// messages are written to. Defaults to os.Stdout.
func Output(w io.Writer) Option {
	return func(args *Options) {
		args.Output = w
	}
}

// Loudness is a functional option to replace the function which computes
// the loudness of a segment. Defaults to audio.RMS.
func Loudness(f audio.LoudnessFunc) Option {
	return func(args *Options) {
		args.Loudness = f
	}
}

// ScriptLauncher is a functional option to replace the way scripts are
// started. Defaults to ExecLauncher.
func ScriptLauncher(l Launcher) Option {
	return func(args *Options) {
		args.Launcher = l
	}
}

// Monitor is a functional option to register a callback which receives
// every reading. The callback is executed by the meter loop and must not
// block.
func Monitor(f func(reading float32)) Option {
	return func(args *Options) {
		args.Monitors = append(args.Monitors, f)
	}
}

// OnTrigger is a functional option to register a callback which is
// executed whenever the action fires. Like Monitor callbacks it runs in
// the meter loop and must not block.
func OnTrigger(f func(a Action, reading float32)) Option {
	return func(args *Options) {
		args.OnTrigger = append(args.OnTrigger, f)
	}
}

// OnStop is a functional option to register a callback which is executed
// once when the meter has stopped.
func OnStop(f func(Summary)) Option {
	return func(args *Options) {
		args.OnStop = append(args.OnStop, f)
	}
}
