package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/audit"
	"github.com/saturnino-fabrica-de-software/ki-metadata/internal/domain"
)

// Hub fans analysis events out to every connected dashboard client
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case event := <-h.broadcast:
			h.broadcastAll(event)
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	close(h.done)
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) broadcastAll(event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// slow consumer
			close(client.send)
			delete(h.clients, client)
		}
	}
}

// Broadcast queues an event for all clients; it drops the event when the
// queue is full instead of blocking the request path.
func (h *Hub) Broadcast(eventType EventType, data interface{}) {
	event := Event{
		ID:        uuid.New(),
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	select {
	case h.broadcast <- event:
	default:
	}
}

// PublishAnalysis announces a finished analysis
func (h *Hub) PublishAnalysis(ctx context.Context, record domain.AnalysisRecord) {
	h.Broadcast(EventAnalysisCompleted, AnalysisData{
		RequestID: audit.RequestIDFrom(ctx),
		Caption:   record.Caption,
		FaceInfo:  record.FaceInfo,
	})
}

// Register adds a client; it reports false once the hub has stopped
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client; it is a no-op once the hub has stopped
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) ConnectedClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
