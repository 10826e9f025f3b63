package cmd

import (
	"testing"

	daemon "github.com/sevlyar/go-daemon"
	"github.com/stretchr/testify/assert"
)

func TestDaemonContextInheritsCaller(t *testing.T) {
	dctx := daemonContext()

	// nil Args and Env make the daemon reuse os.Args and os.Environ
	assert.Nil(t, dctx.Args)
	assert.Nil(t, dctx.Env)
	assert.Empty(t, dctx.WorkDir)
	assert.Empty(t, dctx.PidFileName)
	assert.Equal(t, 0o022, dctx.Umask)
}

func TestNotRebornOutsideDaemon(t *testing.T) {
	assert.False(t, daemon.WasReborn())
}
