package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/procure_api/internal/models"
	"github.com/GTDGit/procure_api/internal/service"
	"github.com/GTDGit/procure_api/internal/utils"
)

// VendorHandler handles vendor directory endpoints.
type VendorHandler struct {
	vendorService *service.VendorService
}

// NewVendorHandler constructs a VendorHandler.
func NewVendorHandler(vendorService *service.VendorService) *VendorHandler {
	return &VendorHandler{vendorService: vendorService}
}

// ListVendors handles GET /v1/vendors and GET /v1/admin/vendors.
// The public listing only ever shows active vendors.
func (h *VendorHandler) ListVendors(c *gin.Context) {
	filter := models.VendorFilter{
		Specialization: c.Query("specialization"),
		Location:       c.Query("location"),
		ActiveOnly:     !isAdmin(c) || c.Query("includeInactive") != "true",
	}

	vendors, err := h.vendorService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to retrieve vendors")
		return
	}

	utils.Success(c, 200, "Vendors retrieved", gin.H{
		"vendors": vendors,
		"total":   len(vendors),
	})
}

// GetVendor handles GET /v1/vendors/:id
func (h *VendorHandler) GetVendor(c *gin.Context) {
	vendor, err := h.vendorService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve vendor")
		return
	}
	if !vendor.IsActive && !isAdmin(c) {
		respondError(c, utils.ErrVendorNotFound, "")
		return
	}

	utils.Success(c, 200, "Vendor retrieved", vendor)
}

// CreateVendor handles POST /v1/admin/vendors
func (h *VendorHandler) CreateVendor(c *gin.Context) {
	var req service.CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	vendor, err := h.vendorService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create vendor")
		return
	}

	utils.Success(c, 201, "Vendor created successfully", vendor)
}

// UpdateVendor handles PUT /v1/admin/vendors/:id
func (h *VendorHandler) UpdateVendor(c *gin.Context) {
	var req service.UpdateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	vendor, err := h.vendorService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "Failed to update vendor")
		return
	}

	utils.Success(c, 200, "Vendor updated successfully", vendor)
}

// DeleteVendor handles DELETE /v1/admin/vendors/:id
func (h *VendorHandler) DeleteVendor(c *gin.Context) {
	if err := h.vendorService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete vendor")
		return
	}

	utils.Success(c, 200, "Vendor deactivated", gin.H{"id": c.Param("id")})
}

// isAdmin reports whether the JWT middleware authenticated this request.
func isAdmin(c *gin.Context) bool {
	_, ok := c.Get("user_id")
	return ok
}
