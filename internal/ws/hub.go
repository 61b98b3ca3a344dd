// internal/ws/hub.go
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"softmarket-service/internal/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans notification events out to the websocket connections of their
// target user.
type Hub struct {
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true
	h.logger.Debug("websocket client connected", zap.Int64("user_id", client.userID))
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			close(client.send)
			if len(clients) == 0 {
				delete(h.clients, client.userID)
			}
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, clients := range h.clients {
		for client := range clients {
			close(client.send)
			client.conn.Close()
		}
		delete(h.clients, userID)
	}
}

// SendToUser pushes a payload to every connection the user currently
// holds. A slow connection is dropped rather than blocking the hub.
func (h *Hub) SendToUser(userID int64, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("failed to marshal websocket payload", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- raw:
		default:
			h.logger.Warn("dropping slow websocket client", zap.Int64("user_id", userID))
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

// HandleConnection upgrades an authenticated request to a websocket and
// starts its pumps. MUST be mounted behind the auth middleware.
func (h *Hub) HandleConnection(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(h, conn, userID)
	h.register <- client

	go client.writePump()
	go client.readPump()
}
