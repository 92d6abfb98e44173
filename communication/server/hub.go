package server

import (
	"encoding/json"
	"sync"
	"time"

	"conquest/communication"
	"conquest/game"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = 54 * time.Second // Must be less than pongWait
	maxMsgSize  = 4096
	sendBufSize = 256
)

// wsConn wraps a WebSocket connection with its outgoing queue.
type wsConn struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans engine events out to every connected WebSocket client. It is an
// engine observer and never blocks the engine: slow clients drop events.
type Hub struct {
	mu          sync.RWMutex
	session     string
	connections map[*wsConn]bool
}

func NewHub(session string) *Hub {
	return &Hub{
		session:     session,
		connections: make(map[*wsConn]bool),
	}
}

func (h *Hub) Register(c *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = true
}

// Attach registers c with the welcome event queued first. The welcome is
// built under the hub lock, so every event published after its snapshot
// reaches c.
func (h *Hub) Attach(c *wsConn, welcome func() communication.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	event := welcome()
	event.Session = h.session
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	c.send <- data
	h.connections[c] = true
	return nil
}

// Unregister removes a connection and closes its queue.
func (h *Hub) Unregister(c *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.connections[c] {
		delete(h.connections, c)
		close(c.send)
	}
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

func (h *Hub) StateChanged(state game.GameState) {
	h.Broadcast(communication.Event{Type: communication.EventState, State: &state})
}

func (h *Hub) Message(message string) {
	h.Broadcast(communication.Event{Type: communication.EventMessage, Message: message})
}

// Broadcast sends event to every connection.
func (h *Hub) Broadcast(event communication.Event) {
	event.Session = h.session
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal websocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.connections {
		select {
		case c.send <- data:
		default:
			log.Warn().Str("type", event.Type).Msg("dropping websocket event, buffer full")
		}
	}
}

// readPump discards client messages and keeps the connection alive until
// the client goes away.
func (h *Hub) readPump(c *wsConn) {
	defer func() {
		h.Unregister(c)
		c.conn.Close()
		log.Info().Int("total", h.ConnectionCount()).Msg("websocket client disconnected")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("websocket unexpected close")
			}
			return
		}
	}
}

// writePump writes queued events, one per frame, and pings the client.
func (h *Hub) writePump(c *wsConn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
