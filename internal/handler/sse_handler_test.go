package handler

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/procure_api/internal/models"
	"github.com/GTDGit/procure_api/internal/service"
	"github.com/GTDGit/procure_api/internal/sse"
)

func newSSERouter(hub *sse.Hub) *gin.Engine {
	mrs := &stubMaterialRequests{mr: &models.MaterialRequest{ID: "mr-1", ReferenceNo: "MR-20260118-4F9A2C"}}
	h := NewSSEHandler(hub, service.NewMaterialRequestService(mrs))
	r := gin.New()
	r.GET("/v1/material-requests/:id/events", h.MaterialRequestStream)
	return r
}

func TestSSEHandler_UnknownMaterialRequest(t *testing.T) {
	hub := sse.NewHub()
	w := do(newSSERouter(hub), http.MethodGet, "/v1/material-requests/missing/events", nil, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "MATERIAL_REQUEST_NOT_FOUND", decode(t, w).Error.Code)
	assert.Zero(t, hub.ClientCount())
}

func TestSSEHandler_StreamsScopedEvents(t *testing.T) {
	hub := sse.NewHub()
	srv := httptest.NewServer(newSSERouter(hub))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/material-requests/mr-1/events", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	// Other orders' events must not reach this stream.
	hub.Broadcast(&sse.QuoteEvent{Event: sse.EventQuoteReceived, MaterialRequestID: "mr-2", VendorID: "v9"})
	hub.Broadcast(&sse.QuoteEvent{Event: sse.EventQuoteReceived, MaterialRequestID: "mr-1", VendorID: "v1"})

	var events []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event:") {
			events = append(events, strings.TrimSpace(strings.TrimPrefix(line, "event:")))
		}
		if strings.HasPrefix(line, "data:") && strings.Contains(line, "quote.received") {
			assert.Contains(t, line, `"vendorId":"v1"`)
			assert.NotContains(t, line, "v9")
			break
		}
	}
	assert.Equal(t, []string{"connected", "quote"}, events)

	cancel()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
