package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/procure_api/internal/service"
	"github.com/GTDGit/procure_api/internal/utils"
)

// MaterialRequestHandler handles customer order endpoints.
type MaterialRequestHandler struct {
	mrService *service.MaterialRequestService
}

// NewMaterialRequestHandler constructs a MaterialRequestHandler.
func NewMaterialRequestHandler(mrService *service.MaterialRequestService) *MaterialRequestHandler {
	return &MaterialRequestHandler{mrService: mrService}
}

// Create handles POST /v1/material-requests
func (h *MaterialRequestHandler) Create(c *gin.Context) {
	var req service.CreateMaterialRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	mr, err := h.mrService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create material request")
		return
	}

	utils.Success(c, 201, "Material request created", mr)
}

// Get handles GET /v1/material-requests/:id
func (h *MaterialRequestHandler) Get(c *gin.Context) {
	mr, err := h.mrService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve material request")
		return
	}

	utils.Success(c, 200, "Material request retrieved", mr)
}

// UpdateItems handles PUT /v1/material-requests/:id/items
func (h *MaterialRequestHandler) UpdateItems(c *gin.Context) {
	var req service.UpdateItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	mr, err := h.mrService.UpdateItems(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "Failed to update items")
		return
	}

	utils.Success(c, 200, "Items updated", mr)
}

// List handles GET /v1/admin/material-requests
func (h *MaterialRequestHandler) List(c *gin.Context) {
	page, limit := pagination(c)

	list, total, err := h.mrService.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err, "Failed to retrieve material requests")
		return
	}

	utils.SuccessWithPagination(c, 200, "Material requests retrieved", list, page, limit, total)
}

// Cancel handles POST /v1/admin/material-requests/:id/cancel
func (h *MaterialRequestHandler) Cancel(c *gin.Context) {
	mr, err := h.mrService.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to cancel material request")
		return
	}

	utils.Success(c, 200, "Material request cancelled", mr)
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	return page, limit
}
