package webserver

func (web *WebServer) routes() {
	web.router.HandleFunc("/api/v1.0/reading", web.readingHdlr).Methods("GET")
	web.router.HandleFunc("/api/v1.0/history", web.historyHdlr).Methods("GET")
	web.router.HandleFunc("/api/v1.0/state", web.stateHdlr).Methods("GET")
	web.router.HandleFunc("/api/v1.0/stop", web.stopHdlr).Methods("PUT", "POST")
	web.router.HandleFunc("/ws", web.webSocketHdlr)
}
