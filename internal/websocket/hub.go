// internal/websocket/hub.go
package websocket

import (
	"context"
	"sync"

	wstypes "fleetmap-service/internal/domain/websocket"

	"go.uber.org/zap"
)

type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex

	// Registration/unregistration
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	// Handler registry for modular message handling
	handlerRegistry *HandlerRegistry

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:         make(map[*Client]bool),
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		done:            make(chan struct{}),
		handlerRegistry: NewHandlerRegistry(),
		logger:          logger,
	}
}

// RegisterHandler registers a message handler
func (h *Hub) RegisterHandler(handler MessageHandler) {
	h.handlerRegistry.Register(handler)
}

// HandleClientMessage dispatches a client message to the handler of its event type
func (h *Hub) HandleClientMessage(ctx context.Context, client *Client, msg *wstypes.WSMessage) error {
	handler, exists := h.handlerRegistry.GetHandler(msg.Type)
	if !exists {
		return ErrUnsupportedEvent
	}

	return handler.HandleMessage(ctx, client, msg)
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

// Register adds a client to the hub. It reports false, closing the client,
// when the hub has already stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		client.Close()
		return false
	}
}

// Unregister removes a client; once the hub has stopped the client is closed directly.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		client.Close()
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("websocket client connected",
		zap.String("view_id", client.view.ID()),
		zap.Int64("identity_id", client.identityID),
		zap.Int("total", total),
	)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	_, exists := h.clients[client]
	delete(h.clients, client)
	total := len(h.clients)
	h.mu.Unlock()

	client.Close()
	if exists {
		h.logger.Info("websocket client disconnected",
			zap.String("view_id", client.view.ID()),
			zap.Int("total", total),
		)
	}
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) shutdown() {
	close(h.done)

	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[*Client]bool)
	h.mu.Unlock()

	for _, client := range clients {
		client.Close()
	}
}
