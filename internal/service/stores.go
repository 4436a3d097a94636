package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/GTDGit/procure_api/internal/models"
	"github.com/GTDGit/procure_api/internal/quote"
	"github.com/GTDGit/procure_api/pkg/webhookproxy"
)

// VendorStore is implemented by repository.VendorRepository.
type VendorStore interface {
	Create(ctx context.Context, v *models.Vendor) error
	GetByID(ctx context.Context, id string) (*models.Vendor, error)
	List(ctx context.Context, filter models.VendorFilter) ([]models.Vendor, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Vendor, error)
	Update(ctx context.Context, v *models.Vendor) error
	Deactivate(ctx context.Context, id string) error
}

// MaterialRequestStore is implemented by repository.MaterialRequestRepository.
type MaterialRequestStore interface {
	Create(ctx context.Context, mr *models.MaterialRequest) error
	GetByID(ctx context.Context, id string) (*models.MaterialRequest, error)
	ReplaceItems(ctx context.Context, materialRequestID string, items []models.MaterialRequestItem) error
	UpdateStatus(ctx context.Context, id string, status models.MaterialRequestStatus) error
	List(ctx context.Context, limit, offset int) ([]models.MaterialRequest, int, error)
}

// QuoteStore is implemented by repository.QuoteRepository.
type QuoteStore interface {
	CreatePending(ctx context.Context, materialRequestID string, vendorIDs []string) error
	Submit(ctx context.Context, q *models.VendorQuote) error
	ListByMaterialRequest(ctx context.Context, materialRequestID string) ([]models.VendorQuote, error)
}

// SessionStore is implemented by repository.SessionRepository.
type SessionStore interface {
	Create(ctx context.Context, s *models.ProcurementSession) error
	GetByID(ctx context.Context, id string) (*models.ProcurementSession, error)
	Update(ctx context.Context, s *models.ProcurementSession) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// WebhookStore is implemented by repository.WebhookRepository.
type WebhookStore interface {
	Create(ctx context.Context, d *models.WebhookDelivery) error
	Update(ctx context.Context, d *models.WebhookDelivery) error
	GetPending(ctx context.Context, maxAttempts, limit int) ([]models.WebhookDelivery, error)
	List(ctx context.Context, limit, offset int) ([]models.WebhookDelivery, int, error)
}

// AdminUserStore is implemented by repository.AdminUserRepository.
type AdminUserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	Create(ctx context.Context, user *models.AdminUser) error
	TouchLastLogin(ctx context.Context, id int) error
}

// ComparisonStore is implemented by cache.ComparisonCache.
type ComparisonStore interface {
	Set(ctx context.Context, cmp quote.Comparison) error
	Get(ctx context.Context, materialRequestID string) (*quote.Comparison, error)
	Invalidate(ctx context.Context, materialRequestID string) error
}

// WebhookSender is implemented by webhookproxy.Client.
type WebhookSender interface {
	Send(ctx context.Context, req webhookproxy.Request) (*webhookproxy.Result, error)
}

// Forwarder hands an event to the third-party webhook.
type Forwarder interface {
	Forward(ctx context.Context, event models.WebhookEvent, referenceID string, data json.RawMessage) (*models.WebhookDelivery, error)
}

// mapNotFound turns sql.ErrNoRows into sentinel.
func mapNotFound(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}

// pageOffset normalizes paging input.
func pageOffset(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	return page, limit, (page - 1) * limit
}
