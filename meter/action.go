package meter

import (
	"fmt"
	"os/exec"
)

// Action is executed when the threshold has been exceeded for the
// configured number of consecutive segments.
type Action string

const (
	// None disables threshold evaluation.
	None Action = "none"
	// Stop ends the run.
	Stop Action = "stop"
	// ExecStop executes the script and ends the run.
	ExecStop Action = "exec-stop"
	// Exec executes the script and continues metering.
	Exec Action = "exec"
)

// ParseAction converts a string into an Action. An empty string is
// interpreted as None.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case "", None:
		return None, nil
	case Stop, ExecStop, Exec:
		return Action(s), nil
	}
	return None, &ConfigError{
		Parm: "action",
		Err:  fmt.Errorf("unknown action %q, allowed values are [stop, exec-stop, exec]", s),
	}
}

func (a Action) needsScript() bool {
	return a == ExecStop || a == Exec
}

// Outcome tells the meter loop how to continue after an action has been
// dispatched.
type Outcome int

const (
	// Continue metering.
	Continue Outcome = iota
	// Terminate requests the meter loop to stop after the current cycle.
	// It is a regular way of ending a run, not an error.
	Terminate
)

func (o Outcome) String() string {
	if o == Terminate {
		return "terminate"
	}
	return "continue"
}

// Launcher starts an external script without waiting for it.
type Launcher interface {
	Launch(script string) error
}

// ExecLauncher starts the script as a child process. The process is
// reaped in the background; its output is discarded.
type ExecLauncher struct{}

// Launch implements Launcher.
func (ExecLauncher) Launch(script string) error {
	cmd := exec.Command(script)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}

// Dispatcher executes the configured action.
type Dispatcher struct {
	action   Action
	script   string
	launcher Launcher
	report   *reporter
}

func newDispatcher(action Action, script string, l Launcher, r *reporter) *Dispatcher {
	return &Dispatcher{
		action:   action,
		script:   script,
		launcher: l,
		report:   r,
	}
}

// Dispatch executes the action and returns whether the meter should
// continue. A script which can not be launched is reported but never ends
// the run.
func (d *Dispatcher) Dispatch() Outcome {
	switch d.action {
	case Stop:
		d.report.info("Stop Action triggered")
		return Terminate
	case ExecStop:
		d.report.info("Exec-Stop Action triggered")
		d.launch()
		return Terminate
	case Exec:
		d.report.info("Exec Action triggered")
		d.launch()
	}
	return Continue
}

func (d *Dispatcher) launch() {
	if d.script == "" {
		return
	}
	d.report.verboseInfo(fmt.Sprintf("Executing %s", d.script))
	if err := d.launcher.Launch(d.script); err != nil {
		d.report.info(fmt.Sprintf("Cannot execute the shell script: %v", err))
	}
}
