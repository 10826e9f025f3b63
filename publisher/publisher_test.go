package publisher

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/asim/go-micro/v3/broker"
	"github.com/cskr/pubsub"
	"github.com/dh1tw/soundmeter/events"
	"github.com/dh1tw/soundmeter/meter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type published struct {
	topic string
	body  []byte
}

type fakeSender struct {
	sync.Mutex
	msgs []published
}

func (f *fakeSender) Publish(topic string, m *broker.Message, opts ...broker.PublishOption) error {
	f.Lock()
	defer f.Unlock()
	f.msgs = append(f.msgs, published{topic, m.Body})
	return nil
}

func decode(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()
	var s structpb.Struct
	require.NoError(t, proto.Unmarshal(data, &s))
	return s.AsMap()
}

func TestEncodeReading(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	topic, data, err := encode("lab", float32(252.9), ts)
	require.NoError(t, err)

	assert.Equal(t, "lab.reading", topic)
	fields := decode(t, data)
	assert.Equal(t, 252.0, fields["rms"])
	assert.Equal(t, "2024-03-01T12:00:00Z", fields["time"])
}

func TestEncodeSummary(t *testing.T) {
	topic, data, err := encode("lab", meter.Summary{
		Reason:    meter.DeviceFailure,
		Collected: true,
		Stats:     meter.Stats{Min: 10, Max: 30, Avg: 22.5, Count: 3},
		Err:       errors.New("device unplugged"),
	}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "lab.stopped", topic)
	fields := decode(t, data)
	assert.Equal(t, "device failure", fields["reason"])
	assert.Equal(t, "device unplugged", fields["error"])
	assert.Equal(t, 10.0, fields["min"])
	assert.Equal(t, 30.0, fields["max"])
	assert.Equal(t, 22.0, fields["avg"])
	assert.Equal(t, 3.0, fields["count"])
}

func TestEncodeSummaryWithoutStats(t *testing.T) {
	_, data, err := encode("lab", meter.Summary{Reason: meter.Interrupted}, time.Now())
	require.NoError(t, err)

	fields := decode(t, data)
	assert.Equal(t, "interrupted", fields["reason"])
	assert.NotContains(t, fields, "min")
}

func TestEncodeUnknown(t *testing.T) {
	_, _, err := encode("lab", "hello", time.Now())
	assert.Error(t, err)
}

func TestPublisherForwardsEvents(t *testing.T) {
	evPS := pubsub.New(10)
	defer evPS.Shutdown()

	f := &fakeSender{}
	p := New(Subject("lab"))
	p.sender = f

	p.Start(evPS)

	evPS.Pub(float32(100), events.Reading)
	evPS.Pub(events.TriggerEvent{Action: "stop", Reading: 120}, events.Triggered)
	evPS.Pub(meter.Summary{Reason: meter.Triggered}, events.Stopped)

	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("publisher did not finish")
	}

	f.Lock()
	defer f.Unlock()
	require.Len(t, f.msgs, 3)
	assert.Equal(t, "lab.reading", f.msgs[0].topic)
	assert.Equal(t, "lab.triggered", f.msgs[1].topic)
	assert.Equal(t, "stop", decode(t, f.msgs[1].body)["action"])
	assert.Equal(t, "lab.stopped", f.msgs[2].topic)
}

func TestOptions(t *testing.T) {
	p := New(BrokerURL("nats.example.com"), BrokerPort(4223), Username("meter"), Password("secret"))
	assert.Equal(t, Options{
		BrokerURL:  "nats.example.com",
		BrokerPort: 4223,
		Username:   "meter",
		Password:   "secret",
		Subject:    DefaultSubject,
	}, p.options)
}
