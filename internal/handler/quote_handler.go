package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/procure_api/internal/export"
	"github.com/GTDGit/procure_api/internal/quote"
	"github.com/GTDGit/procure_api/internal/service"
	"github.com/GTDGit/procure_api/internal/utils"
	"github.com/GTDGit/procure_api/pkg/webhookproxy"
)

// QuoteHandler handles quote requests, submissions and comparisons.
type QuoteHandler struct {
	quoteService   *service.QuoteService
	mrService      *service.MaterialRequestService
	webhookService *service.WebhookService
}

// NewQuoteHandler constructs a QuoteHandler.
func NewQuoteHandler(quoteService *service.QuoteService, mrService *service.MaterialRequestService, webhookService *service.WebhookService) *QuoteHandler {
	return &QuoteHandler{
		quoteService:   quoteService,
		mrService:      mrService,
		webhookService: webhookService,
	}
}

// RequestQuotes handles POST /v1/material-requests/:id/quote-requests
func (h *QuoteHandler) RequestQuotes(c *gin.Context) {
	var req service.RequestQuotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "vendorIds is required")
		return
	}

	res, err := h.quoteService.RequestQuotes(c.Request.Context(), c.Param("id"), req.VendorIDs)
	if err != nil {
		respondError(c, err, "Failed to request quotes")
		return
	}

	utils.Success(c, 201, "Quotes requested", res)
}

// ListQuotes handles GET /v1/material-requests/:id/quotes
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	quotes, err := h.quoteService.ListQuotes(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve quotes")
		return
	}

	utils.Success(c, 200, "Quotes retrieved", gin.H{
		"quotes": quotes,
		"total":  len(quotes),
	})
}

// SubmitQuote handles POST /v1/material-requests/:id/quotes
func (h *QuoteHandler) SubmitQuote(c *gin.Context) {
	var req service.SubmitQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	q, err := h.quoteService.SubmitQuote(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "Failed to submit quote")
		return
	}

	utils.Success(c, 201, "Quote submitted", q)
}

type integrationQuoteRequest struct {
	MaterialRequestID string `json:"materialRequestId" binding:"required"`
	service.SubmitQuoteRequest
}

// SubmitIntegrationQuote handles POST /v1/integrations/quotes. The body must
// carry the shared-secret HMAC in X-Webhook-Signature.
func (h *QuoteHandler) SubmitIntegrationQuote(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid body")
		return
	}

	if err := h.webhookService.VerifyInbound(body, c.GetHeader(webhookproxy.HeaderSignature)); err != nil {
		log.Warn().Err(err).Str("ip", c.ClientIP()).Msg("Rejected integration quote")
		respondError(c, err, "Failed to verify signature")
		return
	}

	var req integrationQuoteRequest
	if err := binding.JSON.BindBody(body, &req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	q, err := h.quoteService.SubmitQuote(c.Request.Context(), req.MaterialRequestID, &req.SubmitQuoteRequest)
	if err != nil {
		respondError(c, err, "Failed to submit quote")
		return
	}

	utils.Success(c, 201, "Quote submitted", q)
}

// Compare handles GET /v1/material-requests/:id/comparison
func (h *QuoteHandler) Compare(c *gin.Context) {
	opts, ok := compareOptions(c)
	if !ok {
		return
	}

	id := c.Param("id")
	cmp, err := h.quoteService.Compare(c.Request.Context(), id, opts)
	if err != nil {
		respondCompareError(c, h.quoteService, id, err)
		return
	}

	utils.Success(c, 200, "Comparison generated", cmp)
}

// Export handles GET /v1/material-requests/:id/comparison/export. When quotes
// cannot be loaded the last good comparison is exported instead.
func (h *QuoteHandler) Export(c *gin.Context) {
	opts, ok := compareOptions(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	mr, err := h.mrService.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve material request")
		return
	}

	cmp, err := h.quoteService.Compare(ctx, mr.ID, opts)
	if errors.Is(err, utils.ErrQuotesUnavailable) {
		if last, lerr := h.quoteService.LastComparison(ctx, mr.ID); lerr == nil {
			cmp, err = last, nil
		}
	}
	if err != nil {
		respondError(c, err, "Failed to build comparison")
		return
	}

	c.Header("Content-Type", export.ContentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(mr)))
	c.Status(http.StatusOK)
	if err := export.WriteComparison(c.Writer, mr, *cmp); err != nil {
		log.Error().Err(err).Str("material_request_id", mr.ID).Msg("Failed to write comparison workbook")
	}
}

// compareOptions parses sort, direction and demo query parameters. It writes
// a 400 response and returns false on bad input.
func compareOptions(c *gin.Context) (service.CompareOptions, bool) {
	key, err := quote.ParseSortKey(c.Query("sort"))
	if err != nil {
		utils.Error(c, 400, "INVALID_SORT", err.Error())
		return service.CompareOptions{}, false
	}
	dir, err := quote.ParseDirection(c.Query("direction"), key)
	if err != nil {
		utils.Error(c, 400, "INVALID_SORT", err.Error())
		return service.CompareOptions{}, false
	}
	return service.CompareOptions{
		Sort:      key,
		Direction: dir,
		Demo:      c.Query("demo") == "true",
	}, true
}

// respondCompareError answers a failed comparison. Unavailable quotes are a
// retryable 503 carrying the last good comparison, marked stale, if cached.
func respondCompareError(c *gin.Context, quotes *service.QuoteService, materialRequestID string, err error) {
	if !errors.Is(err, utils.ErrQuotesUnavailable) {
		respondError(c, err, "Failed to build comparison")
		return
	}

	log.Warn().Err(err).Str("material_request_id", materialRequestID).Msg("Quotes unavailable")

	var data interface{}
	if last, lerr := quotes.LastComparison(c.Request.Context(), materialRequestID); lerr == nil {
		data = last
	}
	utils.RetryableError(c, http.StatusServiceUnavailable, "QUOTES_UNAVAILABLE",
		"Quotes are temporarily unavailable, please retry", data)
}
