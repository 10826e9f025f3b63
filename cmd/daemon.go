package cmd

import (
	"fmt"

	daemon "github.com/sevlyar/go-daemon"
)

// daemonContext describes the background process started by --daemonize.
// It inherits the arguments and the working directory of the caller, so
// that relative paths to the log file and the script remain valid.
func daemonContext() *daemon.Context {
	return &daemon.Context{
		Umask: 0o022,
	}
}

// daemonize starts the meter again as a detached background process.
// In the calling process isParent is true and the run should end. In the
// background process the returned context must be released when the
// meter stops.
func daemonize() (dctx *daemon.Context, isParent bool, err error) {

	dctx = daemonContext()

	child, err := dctx.Reborn()
	if err != nil {
		return nil, false, fmt.Errorf("daemonize: %w", err)
	}

	if child != nil {
		fmt.Printf("soundmeter running in the background (pid %d)\n", child.Pid)
		return dctx, true, nil
	}

	return dctx, false, nil
}
