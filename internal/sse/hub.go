package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EventType defines the SSE event name.
type EventType string

const (
	EventQuoteRequested EventType = "quote.requested"
	EventQuoteReceived  EventType = "quote.received"
	EventOrderPlaced    EventType = "order.placed"
)

// QuoteEvent is the payload streamed to clients watching a material request.
type QuoteEvent struct {
	Event             EventType `json:"event"`
	MaterialRequestID string    `json:"materialRequestId"`
	ReferenceNo       string    `json:"referenceNo,omitempty"`
	VendorID          string    `json:"vendorId,omitempty"`
	VendorName        string    `json:"vendorName,omitempty"`
	TotalAmount       *float64  `json:"totalAmount,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

// Client represents a connected SSE client. An empty Topic receives every event.
type Client struct {
	ID     string
	Topic  string
	Events chan []byte
}

// Hub manages SSE client connections and broadcasts.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates a new SSE hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a new client listening on topic and returns it for streaming.
func (h *Hub) Register(clientID, topic string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := &Client{
		ID:     clientID,
		Topic:  topic,
		Events: make(chan []byte, 64),
	}
	h.clients[clientID] = c
	log.Info().Str("client_id", clientID).Str("topic", topic).Int("total_clients", len(h.clients)).Msg("SSE client connected")
	return c
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[clientID]; ok {
		close(c.Events)
		delete(h.clients, clientID)
		log.Info().Str("client_id", clientID).Int("total_clients", len(h.clients)).Msg("SSE client disconnected")
	}
}

// Broadcast sends an event to clients subscribed to its material request.
// Non-blocking: drops message if client buffer is full.
func (h *Hub) Broadcast(event *QuoteEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal SSE event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		if c.Topic != "" && c.Topic != event.MaterialRequestID {
			continue
		}
		select {
		case c.Events <- data:
		default:
			log.Warn().Str("client_id", c.ID).Msg("SSE client buffer full, dropping event")
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
