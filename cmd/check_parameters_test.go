package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() config {
	return config{
		Action:          "none",
		Num:             1,
		SegmentLength:   time.Millisecond * 500,
		HostAPI:         "default",
		DeviceName:      "default",
		Channels:        2,
		Samplerate:      44100,
		FramesPerBuffer: 2048,
		Latency:         time.Millisecond * 50,
		BrokerPort:      4222,
		Subject:         "soundmeter",
	}
}

func TestCheckParameterValues(t *testing.T) {

	tmp := filepath.Join(t.TempDir(), "in.wav")
	require.NoError(t, os.WriteFile(tmp, []byte{}, 0o644))

	tests := []struct {
		name   string
		modify func(c *config)
		parm   string
	}{
		{"defaults", func(c *config) {}, ""},
		{"empty action", func(c *config) { c.Action = "" }, ""},
		{"stop with threshold", func(c *config) { c.Action = "stop"; c.Threshold = "+252" }, ""},
		{"exec with script", func(c *config) {
			c.Action = "exec"
			c.Threshold = "-144"
			c.Script = "./alarm.sh"
		}, ""},
		{"existing input file", func(c *config) { c.InputFile = tmp }, ""},
		{"web address port only", func(c *config) { c.WebAddress = ":8080" }, ""},
		{"web address host and port", func(c *config) { c.WebAddress = "localhost:8080" }, ""},
		{"unknown action", func(c *config) { c.Action = "explode" }, "meter.action"},
		{"missing threshold", func(c *config) { c.Action = "stop" }, "meter.threshold"},
		{"threshold without sign", func(c *config) { c.Action = "stop"; c.Threshold = "252" }, ""},
		{"threshold with unit", func(c *config) { c.Action = "stop"; c.Threshold = "+25dB" }, "meter.threshold"},
		{"exec without script", func(c *config) { c.Action = "exec-stop"; c.Threshold = "+1" }, "meter.script"},
		{"num zero", func(c *config) { c.Num = 0 }, "meter.num"},
		{"negative seconds", func(c *config) { c.Seconds = -1 }, "meter.seconds"},
		{"zero segment length", func(c *config) { c.SegmentLength = 0 }, "meter.segment-length"},
		{"three channels", func(c *config) { c.Channels = 3 }, "input-device.channels"},
		{"zero samplerate", func(c *config) { c.Samplerate = 0 }, "input-device.samplerate"},
		{"tiny buffer", func(c *config) { c.FramesPerBuffer = 8 }, "input-device.frames-per-buffer"},
		{"missing input file", func(c *config) { c.InputFile = tmp + ".missing" }, "input-file"},
		{"invalid broker port", func(c *config) { c.BrokerPort = 70000 }, "nats.broker-port"},
		{"wildcard subject", func(c *config) { c.Subject = "sound.>" }, "nats.subject"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.modify(&c)
			err := checkParameterValues(c)
			if tc.parm == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			perr, ok := err.(*parmError)
			require.True(t, ok, "expected *parmError, got %T", err)
			assert.Equal(t, tc.parm, perr.parm)
		})
	}
}

func TestParmErrorMessage(t *testing.T) {
	c := validConfig()
	c.Channels = 0
	err := checkParameterValues(c)
	require.Error(t, err)
	assert.Equal(t, "input-device.channels: value must be >= 1", err.Error())
}
