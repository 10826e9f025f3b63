package webserver

import (
	"github.com/gorilla/websocket"
)

type wsClient struct {
	ws           *websocket.Conn
	send         chan []byte
	removeClient chan<- *wsClient
}

func (c *wsClient) write() {
	defer c.ws.Close()

	for msg := range c.send {
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.ws.WriteMessage(websocket.CloseMessage, []byte{})
}

// read discards incoming messages; it only detects a closed connection.
func (c *wsClient) read() {
	defer func() {
		c.removeClient <- c
	}()

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}
