// Package publisher forwards the events of the sound meter to a NATS
// broker. Every event is encoded as a protobuf Struct and published on
// <subject>.reading, <subject>.triggered or <subject>.stopped.
package publisher

import (
	"fmt"
	"log"
	"time"

	natsBroker "github.com/asim/go-micro/plugins/broker/nats/v3"
	"github.com/asim/go-micro/v3/broker"
	"github.com/cskr/pubsub"
	"github.com/dh1tw/soundmeter/events"
	"github.com/dh1tw/soundmeter/meter"
	"github.com/nats-io/nats.go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// sender is the part of broker.Broker used for publishing.
type sender interface {
	Publish(topic string, m *broker.Message, opts ...broker.PublishOption) error
}

// Publisher publishes the meter's events to a broker.
type Publisher struct {
	options Options
	broker  broker.Broker
	sender  sender
	done    chan struct{}
}

// New returns a Publisher connected through NATS. The connection is
// established by Connect.
func New(opts ...Option) *Publisher {

	p := &Publisher{
		options: Options{
			BrokerURL:  "localhost",
			BrokerPort: 4222,
			Subject:    DefaultSubject,
		},
		done: make(chan struct{}),
	}

	for _, o := range opts {
		o(&p.options)
	}

	natsAddr := fmt.Sprintf("nats://%s:%v", p.options.BrokerURL, p.options.BrokerPort)

	// start from default nats config and add the common options
	nopts := nats.GetDefaultOptions()
	nopts.Servers = []string{natsAddr}
	nopts.User = p.options.Username
	nopts.Password = p.options.Password
	// distinguish the connection when monitoring the nats server with nats-top
	nopts.Name = p.options.Subject + ":broker"

	p.broker = natsBroker.NewBroker(natsBroker.Options(nopts))
	p.sender = p.broker

	return p
}

// Connect connects to the broker.
func (p *Publisher) Connect() error {
	if err := p.broker.Connect(); err != nil {
		return fmt.Errorf("broker: %v", err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() error {
	return p.broker.Disconnect()
}

// Start subscribes to the events of evPS and publishes them in the
// background until the Stopped event has been published or evPS has been
// shut down.
func (p *Publisher) Start(evPS *pubsub.PubSub) {
	evCh := evPS.Sub(events.Reading, events.Triggered, events.Stopped)
	go p.run(evPS, evCh)
}

func (p *Publisher) run(evPS *pubsub.PubSub, evCh chan interface{}) {
	defer close(p.done)

	for ev := range evCh {
		if err := p.publish(ev); err != nil {
			log.Println("publisher:", err)
		}
		if _, ok := ev.(meter.Summary); ok {
			go evPS.Unsub(evCh)
			return
		}
	}
}

// Done is closed once the Stopped event has been published.
func (p *Publisher) Done() <-chan struct{} {
	return p.done
}

func (p *Publisher) publish(ev interface{}) error {
	topic, data, err := encode(p.options.Subject, ev, time.Now())
	if err != nil {
		return err
	}
	return p.sender.Publish(topic, &broker.Message{Body: data})
}

// encode converts an event into its topic and the protobuf encoded
// payload.
func encode(subject string, ev interface{}, ts time.Time) (string, []byte, error) {

	var topic string
	fields := map[string]interface{}{
		"time": ts.UTC().Format(time.RFC3339Nano),
	}

	switch e := ev.(type) {
	case float32:
		topic = subject + ".reading"
		fields["rms"] = int64(e)

	case events.TriggerEvent:
		topic = subject + ".triggered"
		fields["action"] = e.Action
		fields["rms"] = int64(e.Reading)

	case meter.Summary:
		topic = subject + ".stopped"
		fields["reason"] = e.Reason.String()
		if e.Err != nil {
			fields["error"] = e.Err.Error()
		}
		if e.Collected && !e.Stats.Empty() {
			fields["min"] = int64(e.Stats.Min)
			fields["max"] = int64(e.Stats.Max)
			fields["avg"] = int64(e.Stats.Avg)
			fields["count"] = e.Stats.Count
		}

	default:
		return "", nil, fmt.Errorf("unknown event type %T", ev)
	}

	s, err := structpb.NewStruct(fields)
	if err != nil {
		return "", nil, err
	}

	data, err := proto.Marshal(s)
	if err != nil {
		return "", nil, err
	}

	return topic, data, nil
}
