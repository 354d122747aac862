// Package main provides the WebSocket change feed for the desktop UI.
package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/notaryapp/backend/internal/logging"
	"github.com/notaryapp/backend/internal/notify"
	"github.com/notaryapp/backend/internal/uuid"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Only the local UI shell connects here.
		return true
	},
}

// WSClient represents a WebSocket client connection.
type WSClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	hub  *WSHub
}

// WSHub maintains active client connections and forwards change
// events from the notify bus.
type WSHub struct {
	clients    map[string]*WSClient
	broadcast  chan []byte
	register   chan *WSClient
	unregister chan *WSClient
	mu         sync.RWMutex
}

// WSEnvelope wraps all WebSocket messages.
type WSEnvelope struct {
	Type      string `json:"type"`
	EntityID  string `json:"entity_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	hub := &WSHub{
		clients:    make(map[string]*WSClient),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
	}
	go hub.run()
	return hub
}

// run manages client connections and broadcasts.
func (h *WSHub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			logging.Debug("ws client connected", logging.Fields{"id": client.id})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
			}
			h.mu.Unlock()
			logging.Debug("ws client disconnected", logging.Fields{"id": client.id})

		case message := <-h.broadcast:
			h.mu.Lock()
			for id, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client send buffer is full, close connection
					close(client.send)
					delete(h.clients, id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Forward pumps notify bus events to all connected clients until the
// channel closes.
func (h *WSHub) Forward(events <-chan notify.Event) {
	for evt := range events {
		envelope := WSEnvelope{
			Type:      evt.Type,
			EntityID:  evt.EntityID,
			Timestamp: evt.Timestamp,
		}
		data, err := json.Marshal(envelope)
		if err != nil {
			logging.Error("ws marshal failed", err)
			continue
		}
		h.broadcast <- data
	}
}

// ServeWS upgrades an HTTP request to a WebSocket subscription.
func (h *WSHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("ws upgrade failed", err)
		return
	}

	client := &WSClient{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, 64),
		hub:  h,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// writePump delivers queued events to the client.
func (c *WSClient) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// readPump discards client messages and detects disconnects.
func (c *WSClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
