package handler

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/GTDGit/procure_api/internal/models"
	"github.com/GTDGit/procure_api/internal/service"
	"github.com/GTDGit/procure_api/internal/utils"
)

// proxyEvents maps the public proxy path segment to the forwarded event.
var proxyEvents = map[string]models.WebhookEvent{
	"quote-request": models.WebhookQuoteRequested,
	"order":         models.WebhookOrderPlaced,
}

// WebhookHandler forwards browser submissions to the third-party webhook and
// exposes the delivery log to admins.
type WebhookHandler struct {
	webhookService *service.WebhookService
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(webhookService *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// Proxy handles POST /v1/proxy/:event
func (h *WebhookHandler) Proxy(c *gin.Context) {
	event, ok := proxyEvents[c.Param("event")]
	if !ok {
		utils.Error(c, 404, "UNKNOWN_EVENT", "Unknown proxy event")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil || !json.Valid(body) {
		utils.Error(c, 400, "INVALID_REQUEST", "Body must be valid JSON")
		return
	}

	d, err := h.webhookService.Forward(c.Request.Context(), event, referenceID(body), body)
	if err != nil {
		respondError(c, err, "Failed to forward webhook")
		return
	}

	status := 0
	if d.HTTPStatus != nil {
		status = *d.HTTPStatus
	}
	utils.Success(c, 202, "Webhook forwarded", gin.H{
		"deliveryId": d.ID,
		"delivered":  d.IsDelivered,
		"httpStatus": status,
	})
}

// ListDeliveries handles GET /v1/admin/webhooks
func (h *WebhookHandler) ListDeliveries(c *gin.Context) {
	page, limit := pagination(c)

	list, total, err := h.webhookService.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err, "Failed to retrieve webhook deliveries")
		return
	}

	utils.SuccessWithPagination(c, 200, "Webhook deliveries retrieved", list, page, limit, total)
}

// referenceID picks the caller's reference out of the body, or makes one up.
func referenceID(body []byte) string {
	var ref struct {
		ReferenceID string `json:"referenceId"`
		ReferenceNo string `json:"referenceNo"`
	}
	_ = json.Unmarshal(body, &ref)
	switch {
	case ref.ReferenceID != "":
		return ref.ReferenceID
	case ref.ReferenceNo != "":
		return ref.ReferenceNo
	default:
		return uuid.NewString()
	}
}
