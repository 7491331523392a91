package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/capsa/internal/common"
	"github.com/ternarybob/capsa/internal/interfaces"
	"github.com/ternarybob/capsa/internal/models"
)

// writeWait bounds how long one frame may take before the writer gives up
const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local single-user tool, any origin may subscribe
	},
}

// wsClient is one connected event subscriber. Events queue on the send
// channel; a full channel marks the client as too slow to keep.
type wsClient struct {
	conn *websocket.Conn
	send chan models.Event
}

// WebSocketHandler fans pipeline events out to connected browser clients.
// It subscribes to the event bus once at construction; clients come and go
// with their connections. Publishing never blocks: a client whose queue is
// full is dropped.
type WebSocketHandler struct {
	logger  arbor.ILogger
	buffer  int
	mu      sync.Mutex
	clients map[*wsClient]bool
}

// NewWebSocketHandler creates the handler and subscribes it to every
// pipeline event type
func NewWebSocketHandler(events interfaces.EventService, buffer int, logger arbor.ILogger) *WebSocketHandler {
	if buffer <= 0 {
		buffer = 64
	}

	h := &WebSocketHandler{
		logger:  logger,
		buffer:  buffer,
		clients: make(map[*wsClient]bool),
	}

	for _, eventType := range []string{
		models.EventItemIngested,
		models.EventItemDeleted,
		models.EventIndexRebuilt,
		models.EventQueryAnswered,
	} {
		events.Subscribe(eventType, h.broadcast)
	}

	return h
}

// HandleWebSocket upgrades GET /ws/events and streams events until the
// client disconnects
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan models.Event, h.buffer),
	}

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().
		Str("remote", r.RemoteAddr).
		Int("clients", count).
		Msg("WebSocket client connected")

	common.SafeGo(h.logger, "wsWriter", func() {
		h.writeLoop(client)
	})

	// Block on reads to notice the peer going away; inbound payloads are
	// ignored, the stream is one-way
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.drop(client, "disconnected")
}

// ClientCount returns the number of connected clients
func (h *WebSocketHandler) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcast is the event bus handler: queue the event on every client,
// dropping any client whose queue is full
func (h *WebSocketHandler) broadcast(ctx context.Context, event models.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- event:
		default:
			delete(h.clients, client)
			close(client.send)
			h.logger.Warn().
				Str("event_type", event.Type).
				Msg("Dropped slow WebSocket client")
		}
	}

	return nil
}

func (h *WebSocketHandler) writeLoop(client *wsClient) {
	defer client.conn.Close()

	for event := range client.send {
		client.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.conn.WriteJSON(event); err != nil {
			h.drop(client, "write failed")
			return
		}
	}

	// Channel closed: the client was dropped, say goodbye
	client.conn.SetWriteDeadline(time.Now().Add(writeWait))
	client.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
}

// drop removes the client if still registered and closes its queue, which
// ends the write loop
func (h *WebSocketHandler) drop(client *wsClient, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] {
		return
	}

	delete(h.clients, client)
	close(client.send)

	h.logger.Debug().
		Str("reason", reason).
		Int("clients", len(h.clients)).
		Msg("WebSocket client removed")
}
