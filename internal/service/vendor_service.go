package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/procure_api/internal/models"
	"github.com/GTDGit/procure_api/internal/utils"
)

// VendorService handles vendor business logic.
type VendorService struct {
	vendorRepo VendorStore
}

// NewVendorService constructs a VendorService.
func NewVendorService(vendorRepo VendorStore) *VendorService {
	return &VendorService{vendorRepo: vendorRepo}
}

// CreateVendorRequest represents the request to create a vendor.
type CreateVendorRequest struct {
	Name           string  `json:"name" binding:"required"`
	Email          string  `json:"email" binding:"required,email"`
	Phone          string  `json:"phone" binding:"omitempty,phone"`
	Location       string  `json:"location" binding:"required"`
	Specialization string  `json:"specialization" binding:"required"`
	Rating         float64 `json:"rating" binding:"gte=0,lte=5"`
	IsActive       *bool   `json:"isActive"`
}

// UpdateVendorRequest represents a partial vendor update.
type UpdateVendorRequest struct {
	Name           *string  `json:"name"`
	Email          *string  `json:"email" binding:"omitempty,email"`
	Phone          *string  `json:"phone" binding:"omitempty,phone"`
	Location       *string  `json:"location"`
	Specialization *string  `json:"specialization"`
	Rating         *float64 `json:"rating" binding:"omitempty,gte=0,lte=5"`
	IsActive       *bool    `json:"isActive"`
}

// Create registers a new vendor, active unless stated otherwise.
func (s *VendorService) Create(ctx context.Context, req *CreateVendorRequest) (*models.Vendor, error) {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	v := &models.Vendor{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Location:       req.Location,
		Specialization: req.Specialization,
		Rating:         req.Rating,
		IsActive:       active,
	}
	if err := s.vendorRepo.Create(ctx, v); err != nil {
		return nil, err
	}

	log.Info().Str("vendor_id", v.ID).Str("name", v.Name).Msg("Vendor created")
	return v, nil
}

// Get returns a vendor by id.
func (s *VendorService) Get(ctx context.Context, id string) (*models.Vendor, error) {
	v, err := s.vendorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, utils.ErrVendorNotFound)
	}
	return v, nil
}

// List returns vendors matching filter.
func (s *VendorService) List(ctx context.Context, filter models.VendorFilter) ([]models.Vendor, error) {
	return s.vendorRepo.List(ctx, filter)
}

// Update applies the non-nil fields of req.
func (s *VendorService) Update(ctx context.Context, id string, req *UpdateVendorRequest) (*models.Vendor, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		v.Name = *req.Name
	}
	if req.Email != nil {
		v.Email = *req.Email
	}
	if req.Phone != nil {
		v.Phone = *req.Phone
	}
	if req.Location != nil {
		v.Location = *req.Location
	}
	if req.Specialization != nil {
		v.Specialization = *req.Specialization
	}
	if req.Rating != nil {
		v.Rating = *req.Rating
	}
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}

	if err := s.vendorRepo.Update(ctx, v); err != nil {
		return nil, mapNotFound(err, utils.ErrVendorNotFound)
	}
	return v, nil
}

// Delete deactivates a vendor.
func (s *VendorService) Delete(ctx context.Context, id string) error {
	if err := s.vendorRepo.Deactivate(ctx, id); err != nil {
		return mapNotFound(err, utils.ErrVendorNotFound)
	}
	log.Info().Str("vendor_id", id).Msg("Vendor deactivated")
	return nil
}
