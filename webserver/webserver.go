package webserver

import (
	"encoding/json"
	"log"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/cskr/pubsub"
	ring "github.com/dh1tw/golang-ring"
	"github.com/dh1tw/soundmeter/events"
	"github.com/dh1tw/soundmeter/meter"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// DefaultHistorySize is the amount of readings kept for /api/history.
const DefaultHistorySize = 600

// Settings contains the parameters for the web server.
type Settings struct {
	Address     string
	Events      *pubsub.PubSub
	Stop        func() bool // requests a graceful stop; false if no meter runs
	HistorySize int
}

// WebServer serves the live meter through a REST API and a websocket.
// Readings, triggers and the end of the run are received through the
// event bus.
type WebServer struct {
	sync.RWMutex
	router         *mux.Router
	address        string
	apiVersion     string
	apiMatch       *regexp.Regexp
	events         *pubsub.PubSub
	stop           func() bool
	history        ring.Ring
	last           *Reading
	state          State
	wsClients      map[*wsClient]bool
	addWsClient    chan *wsClient
	removeWsClient chan *wsClient
}

// Reading is a single RMS value.
type Reading struct {
	RMS  int       `json:"rms"`
	Time time.Time `json:"time"`
}

// RunStats contains the collected statistics of a finished run.
type RunStats struct {
	Min   int `json:"min"`
	Max   int `json:"max"`
	Avg   int `json:"avg"`
	Count int `json:"count"`
}

// State is the state of the meter as seen by the web server.
type State struct {
	Running     bool                 `json:"running"`
	Readings    int                  `json:"readings"`
	Triggers    int                  `json:"triggers"`
	LastTrigger *events.TriggerEvent `json:"last_trigger,omitempty"`
	Reason      string               `json:"reason,omitempty"`
	Stats       *RunStats            `json:"stats,omitempty"`
}

// wsMsg is sent to the websocket clients.
type wsMsg struct {
	Type    string               `json:"type"`
	Reading *Reading             `json:"reading,omitempty"`
	Trigger *events.TriggerEvent `json:"trigger,omitempty"`
	State   *State               `json:"state,omitempty"`
}

// New returns a WebServer. Call Start to serve it.
func New(s Settings) *WebServer {

	if s.HistorySize <= 0 {
		s.HistorySize = DefaultHistorySize
	}

	web := &WebServer{
		router:         mux.NewRouter(),
		address:        s.Address,
		apiVersion:     "1.0",
		apiMatch:       regexp.MustCompile(`api\/v\d\.\d\/`),
		events:         s.Events,
		stop:           s.Stop,
		wsClients:      make(map[*wsClient]bool),
		addWsClient:    make(chan *wsClient),
		removeWsClient: make(chan *wsClient),
	}

	web.history.SetCapacity(s.HistorySize)
	web.routes()

	return web
}

// Handler returns the http.Handler serving the API. Requests to /api/
// without a version are served by the current API version, without a
// redirect round trip.
func (web *WebServer) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		req.URL.Path = web.versionedPath(req.URL.Path)
		web.router.ServeHTTP(w, req)
	})
}

func (web *WebServer) versionedPath(path string) string {
	rest, ok := strings.CutPrefix(path, "/api/")
	if !ok || web.apiMatch.MatchString(path) {
		return path
	}
	return "/api/v" + web.apiVersion + "/" + rest
}

// Start subscribes to the event bus and serves http on the configured
// address. It blocks until the http server fails.
func (web *WebServer) Start() error {
	go web.start(web.subscribe())
	log.Printf("web server listening on %s\n", web.address)
	return http.ListenAndServe(web.address, web.Handler())
}

func (web *WebServer) subscribe() chan interface{} {
	return web.events.Sub(events.Reading, events.Triggered, events.Stopped)
}

// start is the event loop of the web server.
func (web *WebServer) start(evCh chan interface{}) {
	for {
		select {
		case ev, ok := <-evCh:
			if !ok {
				return
			}
			web.handleEvent(ev)

		case c := <-web.addWsClient:
			web.Lock()
			web.wsClients[c] = true
			web.Unlock()
			web.sendState(c)

		case c := <-web.removeWsClient:
			web.Lock()
			if _, ok := web.wsClients[c]; ok {
				delete(web.wsClients, c)
				close(c.send)
			}
			web.Unlock()
		}
	}
}

func (web *WebServer) handleEvent(ev interface{}) {

	var msg wsMsg

	web.Lock()
	switch e := ev.(type) {
	case float32:
		r := Reading{RMS: int(e), Time: time.Now()}
		web.last = &r
		web.history.Enqueue(r)
		web.state.Running = true
		web.state.Readings++
		msg = wsMsg{Type: "reading", Reading: &r}

	case events.TriggerEvent:
		web.state.Triggers++
		web.state.LastTrigger = &e
		msg = wsMsg{Type: "trigger", Trigger: &e}

	case meter.Summary:
		web.state.Running = false
		web.state.Reason = e.Reason.String()
		if e.Collected && !e.Stats.Empty() {
			web.state.Stats = &RunStats{
				Min:   int(e.Stats.Min),
				Max:   int(e.Stats.Max),
				Avg:   int(e.Stats.Avg),
				Count: e.Stats.Count,
			}
		}
		state := web.state
		msg = wsMsg{Type: "state", State: &state}

	default:
		web.Unlock()
		log.Printf("webserver: unknown event type %T\n", ev)
		return
	}
	web.Unlock()

	web.broadcast(msg)
}

func (web *WebServer) broadcast(msg wsMsg) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Println(err)
		return
	}

	web.RLock()
	defer web.RUnlock()

	for c := range web.wsClients {
		select {
		case c.send <- data:
		default:
			// slow client; drop the message
		}
	}
}

func (web *WebServer) sendState(c *wsClient) {
	web.RLock()
	state := web.state
	web.RUnlock()

	data, err := json.Marshal(wsMsg{Type: "state", State: &state})
	if err != nil {
		log.Println(err)
		return
	}

	select {
	case c.send <- data:
	default:
	}
}

func (web *WebServer) readings() []Reading {
	web.RLock()
	defer web.RUnlock()

	values := web.history.Values()
	res := make([]Reading, 0, len(values))
	for _, v := range values {
		if r, ok := v.(Reading); ok {
			res = append(res, r)
		}
	}
	return res
}
