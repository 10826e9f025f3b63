package cmd

import (
	"testing"
	"time"

	"github.com/cskr/pubsub"
	"github.com/dh1tw/soundmeter/events"
	"github.com/dh1tw/soundmeter/meter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hookOptions(evPS *pubsub.PubSub) meter.Options {
	var o meter.Options
	for _, opt := range eventHooks(evPS) {
		opt(&o)
	}
	return o
}

func TestEventHooksDoNotBlockOnSlowSubscriber(t *testing.T) {
	evPS := pubsub.New(1)
	defer evPS.Shutdown()

	// nobody reads from these channels
	readings := evPS.Sub(events.Reading)
	triggers := evPS.Sub(events.Triggered)

	o := hookOptions(evPS)
	require.Len(t, o.Monitors, 1)
	require.Len(t, o.OnTrigger, 1)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			o.Monitors[0](float32(i))
			o.OnTrigger[0](meter.Exec, float32(i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second * 2):
		t.Fatal("meter hooks blocked on a full subscriber channel")
	}

	// only the first message fits into each buffer
	assert.Equal(t, float32(0), <-readings)
	assert.Equal(t, events.TriggerEvent{Action: "exec", Reading: 0}, <-triggers)
}

func TestEventHooksDeliverSummary(t *testing.T) {
	evPS := pubsub.New(1)
	defer evPS.Shutdown()

	stopped := evPS.Sub(events.Stopped)

	o := hookOptions(evPS)
	require.Len(t, o.OnStop, 1)

	o.OnStop[0](meter.Summary{Reason: meter.TimedOut})

	select {
	case ev := <-stopped:
		assert.Equal(t, meter.Summary{Reason: meter.TimedOut}, ev)
	case <-time.After(time.Second * 2):
		t.Fatal("summary not published")
	}
}
