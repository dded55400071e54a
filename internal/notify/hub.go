package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/launchpad-dev/launchpad/internal/logging"
)

// Hub pushes launcher events to already-connected clients over WebSocket.
// It announces launcher-level changes only; module content updates are the
// build engine's own hot-reload channel.
type Hub struct {
	clients      map[string]*client
	clientsMutex sync.RWMutex

	broadcast chan []byte
	logger    logging.Logger

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
}

type client struct {
	id   string
	conn *websocket.Conn
}

// NewHub creates a hub and starts its broadcast loop.
func NewHub(logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		clients:   make(map[string]*client),
		broadcast: make(chan []byte, 256),
		logger:    logger.WithComponent("notify"),
		ctx:       ctx,
		cancel:    cancel,
	}
	go h.run()
	return h
}

// AttachBus forwards every bus event to connected clients.
func (h *Hub) AttachBus(bus *Bus) {
	forward := func(event Event) { h.Broadcast(event) }
	for _, name := range []EventName{
		EventStatusChange, EventServerReady, EventBuildStart,
		EventBuildEnd, EventConfigChanged, EventError,
	} {
		bus.Subscribe(name, forward)
	}
}

// Broadcast sends an event to all connected clients. Slow clients are skipped
// rather than blocking the launcher.
func (h *Hub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- data:
	default:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.clientsMutex.RLock()
	defer h.clientsMutex.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the request and registers the client until its
// connection drops.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}

	c := &client{id: uuid.NewString(), conn: conn}
	h.clientsMutex.Lock()
	h.clients[c.id] = c
	h.clientsMutex.Unlock()

	h.logger.Debug(r.Context(), "client connected", "client_id", c.id)

	// Drain the read side so pings and close frames are processed.
	ctx := h.ctx
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			break
		}
	}

	h.clientsMutex.Lock()
	delete(h.clients, c.id)
	h.clientsMutex.Unlock()
	_ = conn.Close(websocket.StatusNormalClosure, "")
	h.logger.Debug(r.Context(), "client disconnected", "client_id", c.id)
}

func (h *Hub) run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case data := <-h.broadcast:
			h.clientsMutex.RLock()
			clients := make([]*client, 0, len(h.clients))
			for _, c := range h.clients {
				clients = append(clients, c)
			}
			h.clientsMutex.RUnlock()

			for _, c := range clients {
				writeCtx, cancel := context.WithTimeout(h.ctx, 5*time.Second)
				if err := c.conn.Write(writeCtx, websocket.MessageText, data); err != nil {
					h.logger.Debug(h.ctx, "client write failed", "client_id", c.id)
				}
				cancel()
			}
		}
	}
}

// Shutdown closes all client connections and stops the broadcast loop.
func (h *Hub) Shutdown() {
	h.shutdownOnce.Do(func() {
		h.cancel()
		h.clientsMutex.Lock()
		for id, c := range h.clients {
			_ = c.conn.Close(websocket.StatusGoingAway, "launcher shutting down")
			delete(h.clients, id)
		}
		h.clientsMutex.Unlock()
	})
}
