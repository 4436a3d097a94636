package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/procure_api/internal/models"
	"github.com/GTDGit/procure_api/internal/utils"
)

// MaterialRequestService handles customer orders and their line items.
type MaterialRequestService struct {
	mrRepo MaterialRequestStore
}

// NewMaterialRequestService constructs a MaterialRequestService.
func NewMaterialRequestService(mrRepo MaterialRequestStore) *MaterialRequestService {
	return &MaterialRequestService{mrRepo: mrRepo}
}

// ItemInput is one order line as posted by clients. Name and Title are
// accepted as aliases for MaterialName.
type ItemInput struct {
	MaterialName string `json:"materialName"`
	Name         string `json:"name"`
	Title        string `json:"title"`
	SubType      string `json:"subType"`
	Dimensions   string `json:"dimensions"`
	Quantity     int    `json:"quantity" binding:"gte=0"`
	Unit         string `json:"unit"`
}

// CreateMaterialRequestRequest represents a new order.
type CreateMaterialRequestRequest struct {
	CustomerName  string      `json:"customerName" binding:"required"`
	CustomerEmail string      `json:"customerEmail" binding:"required,email"`
	CustomerPhone string      `json:"customerPhone" binding:"omitempty,phone"`
	SiteLocation  string      `json:"siteLocation"`
	Notes         *string     `json:"notes"`
	Items         []ItemInput `json:"items" binding:"required,min=1,dive"`
}

// UpdateItemsRequest replaces all order lines.
type UpdateItemsRequest struct {
	Items []ItemInput `json:"items" binding:"required,min=1,dive"`
}

// Create stores a new submitted order with a generated reference number.
func (s *MaterialRequestService) Create(ctx context.Context, req *CreateMaterialRequestRequest) (*models.MaterialRequest, error) {
	ref, err := utils.GenerateMaterialRequestReference()
	if err != nil {
		return nil, fmt.Errorf("generate reference: %w", err)
	}

	mr := &models.MaterialRequest{
		ID:            uuid.NewString(),
		ReferenceNo:   ref,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerPhone: req.CustomerPhone,
		SiteLocation:  req.SiteLocation,
		Status:        models.MaterialRequestSubmitted,
		Notes:         req.Notes,
		Items:         buildItems(req.Items),
	}
	if err := s.mrRepo.Create(ctx, mr); err != nil {
		return nil, err
	}

	log.Info().
		Str("material_request_id", mr.ID).
		Str("reference_no", mr.ReferenceNo).
		Int("items", len(mr.Items)).
		Msg("Material request created")
	return mr, nil
}

// Get returns an order with its items.
func (s *MaterialRequestService) Get(ctx context.Context, id string) (*models.MaterialRequest, error) {
	mr, err := s.mrRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, utils.ErrMaterialRequestNotFound)
	}
	return mr, nil
}

// UpdateItems replaces the order lines of a submitted order.
func (s *MaterialRequestService) UpdateItems(ctx context.Context, id string, req *UpdateItemsRequest) (*models.MaterialRequest, error) {
	if err := s.mrRepo.ReplaceItems(ctx, id, buildItems(req.Items)); err != nil {
		return nil, mapNotFound(err, utils.ErrMaterialRequestNotFound)
	}
	return s.Get(ctx, id)
}

// Finalize locks an order once it has been placed with a vendor.
func (s *MaterialRequestService) Finalize(ctx context.Context, id string) (*models.MaterialRequest, error) {
	return s.setStatus(ctx, id, models.MaterialRequestFinalized)
}

// Cancel withdraws a submitted order.
func (s *MaterialRequestService) Cancel(ctx context.Context, id string) (*models.MaterialRequest, error) {
	return s.setStatus(ctx, id, models.MaterialRequestCancelled)
}

func (s *MaterialRequestService) setStatus(ctx context.Context, id string, status models.MaterialRequestStatus) (*models.MaterialRequest, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.mrRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	log.Info().Str("material_request_id", id).Str("status", string(status)).Msg("Material request status changed")
	return s.Get(ctx, id)
}

// List returns a page of orders and the total count.
func (s *MaterialRequestService) List(ctx context.Context, page, limit int) ([]models.MaterialRequest, int, error) {
	_, limit, offset := pageOffset(page, limit)
	return s.mrRepo.List(ctx, limit, offset)
}

// buildItems assigns ids and resolves the stored material name.
func buildItems(in []ItemInput) []models.MaterialRequestItem {
	items := make([]models.MaterialRequestItem, 0, len(in))
	for _, it := range in {
		name := firstNonEmpty(it.MaterialName, it.Name, it.Title)
		if name == "" {
			name = "Material Item"
		}
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		items = append(items, models.MaterialRequestItem{
			ID:           uuid.NewString(),
			MaterialName: name,
			SubType:      strings.TrimSpace(it.SubType),
			Dimensions:   strings.TrimSpace(it.Dimensions),
			Quantity:     qty,
			Unit:         strings.TrimSpace(it.Unit),
		})
	}
	return items
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
