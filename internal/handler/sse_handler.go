package handler

import (
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/procure_api/internal/service"
	"github.com/GTDGit/procure_api/internal/sse"
)

// SSEHandler streams quote lifecycle events.
type SSEHandler struct {
	hub       *sse.Hub
	mrService *service.MaterialRequestService
}

// NewSSEHandler creates a new SSEHandler.
func NewSSEHandler(hub *sse.Hub, mrService *service.MaterialRequestService) *SSEHandler {
	return &SSEHandler{hub: hub, mrService: mrService}
}

// MaterialRequestStream handles GET /v1/material-requests/:id/events
func (h *SSEHandler) MaterialRequestStream(c *gin.Context) {
	mr, err := h.mrService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve material request")
		return
	}

	clientID := fmt.Sprintf("mr-%s-%d", mr.ID, time.Now().UnixNano())
	h.stream(c, clientID, mr.ID)
}

// AdminStream handles GET /v1/admin/sse?token=<jwt>
// The JWT middleware has already authenticated the caller.
func (h *SSEHandler) AdminStream(c *gin.Context) {
	clientID := fmt.Sprintf("admin-%d-%d", c.GetInt("user_id"), time.Now().UnixNano())
	h.stream(c, clientID, "")
}

func (h *SSEHandler) stream(c *gin.Context, clientID, topic string) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering

	client := h.hub.Register(clientID, topic)
	defer h.hub.Unregister(clientID)

	c.SSEvent("connected", gin.H{
		"clientId":  clientID,
		"message":   "SSE connection established",
		"timestamp": time.Now().Format(time.RFC3339),
	})
	c.Writer.Flush()

	log.Info().Str("client_id", clientID).Str("topic", topic).Msg("SSE stream started")

	c.Stream(func(w io.Writer) bool {
		select {
		case data, ok := <-client.Events:
			if !ok {
				return false
			}
			c.SSEvent("quote", string(data))
			return true
		case <-time.After(30 * time.Second):
			c.SSEvent("ping", gin.H{"timestamp": time.Now().Format(time.RFC3339)})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
