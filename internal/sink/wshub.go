package sink

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"calltranslator/internal/core"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventKind labels the business event carried in a Message.
type EventKind string

const (
	KindBDial         EventKind = "b_dial"
	KindUp            EventKind = "up"
	KindAHangup       EventKind = "a_hangup"
	KindWarmTransfer  EventKind = "warm_transfer"
	KindColdTransfer  EventKind = "cold_transfer"
)

// Message is one frame broadcast to every connected WebSocket client.
type Message struct {
	Kind      EventKind   `json:"kind"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// wsClient is one connected WebSocket client.
type wsClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub is a core.Subscriber that fans every high-level call event out
// to connected WebSocket clients, for dashboards that want to watch
// calls as they happen rather than poll the REST API.
type Hub struct {
	clients    map[*wsClient]bool
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *wsClient
	mu         sync.RWMutex
	recent     *Recent
}

// NewHub creates a Hub and starts its broadcast loop.
func NewHub(recent *Recent) *Hub {
	h := &Hub{
		clients:    make(map[*wsClient]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		recent:     recent,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) publish(kind EventKind, data interface{}) {
	if h.recent != nil {
		h.recent.Add(string(kind), data)
	}

	msg := Message{Kind: kind, Data: data, Timestamp: time.Now()}
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[sink] error marshaling message: %v", err)
		return
	}
	h.broadcast <- payload
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the connection and registers a new client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[sink] upgrade error: %v", err)
		return
	}

	client := &wsClient{hub: h, conn: conn, send: make(chan []byte, 256)}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// core.Subscriber implementation: every hook publishes a typed frame.

func (h *Hub) OnBDial(callID string, caller core.CallerId, toNumber string, targets []core.CallerId) {
	h.publish(KindBDial, map[string]interface{}{
		"call_id": callID, "caller": caller.Number, "to": toNumber, "targets": len(targets),
	})
}

func (h *Hub) OnUp(callID string, caller core.CallerId, toNumber string, callee core.CallerId) {
	h.publish(KindUp, map[string]interface{}{
		"call_id": callID, "caller": caller.Number, "to": toNumber, "callee": callee.Number,
	})
}

func (h *Hub) OnAHangup(callID string, caller core.CallerId, toNumber string, reason string) {
	h.publish(KindAHangup, map[string]interface{}{
		"call_id": callID, "caller": caller.Number, "to": toNumber, "reason": reason,
	})
}

func (h *Hub) OnWarmTransfer(callID, mergedID string, redirector, caller, destination core.CallerId) {
	h.publish(KindWarmTransfer, map[string]interface{}{
		"call_id": callID, "merged_id": mergedID, "redirector": redirector.Number,
		"caller": caller.Number, "destination": destination.Number,
	})
}

func (h *Hub) OnColdTransfer(callID, mergedID string, redirector, caller core.CallerId, toNumber string, targets []core.CallerId) {
	h.publish(KindColdTransfer, map[string]interface{}{
		"call_id": callID, "merged_id": mergedID, "redirector": redirector.Number,
		"caller": caller.Number, "to": toNumber, "targets": len(targets),
	})
}

func (h *Hub) OnUserEvent(event core.RawEvent) {
	// Dashboards only care about the translated business events.
}
