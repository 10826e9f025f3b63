package webserver

import (
	"encoding/json"
	"log"
	"net/http"
)

func (web *WebServer) webSocketHdlr(w http.ResponseWriter, req *http.Request) {

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("unable to open ws for %v\n", req.RemoteAddr)
		return
	}

	wsClient := &wsClient{
		ws:           conn,
		send:         make(chan []byte, 16),
		removeClient: web.removeWsClient,
	}

	go wsClient.write()
	go wsClient.read()

	web.addWsClient <- wsClient
}

func (web *WebServer) readingHdlr(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")

	web.RLock()
	last := web.last
	web.RUnlock()

	if last == nil {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("404 - no reading available yet"))
		return
	}

	if err := json.NewEncoder(w).Encode(last); err != nil {
		log.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("500 - unable to encode reading"))
	}
}

func (web *WebServer) historyHdlr(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")

	if err := json.NewEncoder(w).Encode(web.readings()); err != nil {
		log.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("500 - unable to encode history"))
	}
}

func (web *WebServer) stateHdlr(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")

	web.RLock()
	state := web.state
	web.RUnlock()

	if err := json.NewEncoder(w).Encode(state); err != nil {
		log.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("500 - unable to encode state"))
	}
}

func (web *WebServer) stopHdlr(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()

	if web.stop == nil || !web.stop() {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte("409 - no meter running"))
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
