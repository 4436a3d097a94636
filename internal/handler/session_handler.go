package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/procure_api/internal/service"
	"github.com/GTDGit/procure_api/internal/utils"
)

// SessionHandler handles the guided procurement flow. Every route except
// Start runs behind the session token middleware, which sets "session_id".
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Start handles POST /v1/sessions
func (h *SessionHandler) Start(c *gin.Context) {
	var req service.StartSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
			return
		}
	}

	started, err := h.sessionService.Start(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to start session")
		return
	}

	utils.Success(c, 201, "Session started", started)
}

// Get handles GET /v1/sessions/current
func (h *SessionHandler) Get(c *gin.Context) {
	sess, err := h.sessionService.Get(c.Request.Context(), c.GetString("session_id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve session")
		return
	}

	utils.Success(c, 200, "Session retrieved", sess)
}

// SelectVendors handles POST /v1/sessions/current/vendors
func (h *SessionHandler) SelectVendors(c *gin.Context) {
	var req service.SelectVendorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "vendorIds is required")
		return
	}

	sess, err := h.sessionService.SelectVendors(c.Request.Context(), c.GetString("session_id"), &req)
	if err != nil {
		respondError(c, err, "Failed to select vendors")
		return
	}

	utils.Success(c, 200, "Vendors selected", sess)
}

// RequestQuotes handles POST /v1/sessions/current/quote-request
func (h *SessionHandler) RequestQuotes(c *gin.Context) {
	sess, res, err := h.sessionService.RequestQuotes(c.Request.Context(), c.GetString("session_id"))
	if err != nil {
		respondError(c, err, "Failed to request quotes")
		return
	}

	utils.Success(c, 200, "Quotes requested", gin.H{
		"session":      sess,
		"quoteRequest": res,
	})
}

// Compare handles GET /v1/sessions/current/comparison
func (h *SessionHandler) Compare(c *gin.Context) {
	opts, ok := compareOptions(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	sess, cmp, err := h.sessionService.Compare(ctx, c.GetString("session_id"), opts)
	if err != nil {
		if sess != nil && sess.MaterialRequestID != nil {
			respondCompareError(c, h.sessionService.Quotes(), *sess.MaterialRequestID, err)
			return
		}
		respondError(c, err, "Failed to build comparison")
		return
	}

	utils.Success(c, 200, "Comparison generated", gin.H{
		"session":    sess,
		"comparison": cmp,
	})
}

// ChooseVendor handles POST /v1/sessions/current/choice
func (h *SessionHandler) ChooseVendor(c *gin.Context) {
	var req service.ChooseVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "vendorId is required")
		return
	}

	sess, err := h.sessionService.ChooseVendor(c.Request.Context(), c.GetString("session_id"), &req)
	if err != nil {
		respondError(c, err, "Failed to choose vendor")
		return
	}

	utils.Success(c, 200, "Vendor chosen", sess)
}

// PlaceOrder handles POST /v1/sessions/current/order
func (h *SessionHandler) PlaceOrder(c *gin.Context) {
	res, err := h.sessionService.PlaceOrder(c.Request.Context(), c.GetString("session_id"))
	if err != nil {
		respondError(c, err, "Failed to place order")
		return
	}

	utils.Success(c, 200, "Order placed", res)
}

// Cancel handles POST /v1/sessions/current/cancel
func (h *SessionHandler) Cancel(c *gin.Context) {
	sess, err := h.sessionService.Cancel(c.Request.Context(), c.GetString("session_id"))
	if err != nil {
		respondError(c, err, "Failed to cancel session")
		return
	}

	utils.Success(c, 200, "Session cancelled", sess)
}
