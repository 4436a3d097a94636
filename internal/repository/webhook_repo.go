package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/procure_api/internal/models"
)

const webhookColumns = `id, event, reference_id, payload, attempt, http_status, response_body,
        is_delivered, created_at, next_retry_at`

// WebhookRepository stores outgoing webhook deliveries.
type WebhookRepository struct {
	db *sqlx.DB
}

// NewWebhookRepository creates a new WebhookRepository.
func NewWebhookRepository(db *sqlx.DB) *WebhookRepository {
	return &WebhookRepository{db: db}
}

// Create inserts a delivery row and fills ID and CreatedAt.
func (r *WebhookRepository) Create(ctx context.Context, d *models.WebhookDelivery) error {
	const q = `
        INSERT INTO webhook_deliveries (
            event, reference_id, payload, attempt, http_status, response_body, is_delivered, next_retry_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at`
	return r.db.QueryRowxContext(ctx, q,
		d.Event, d.ReferenceID, string(d.Payload), d.Attempt, d.HTTPStatus, d.ResponseBody, d.IsDelivered, d.NextRetryAt,
	).Scan(&d.ID, &d.CreatedAt)
}

// Update records the outcome of a delivery attempt.
func (r *WebhookRepository) Update(ctx context.Context, d *models.WebhookDelivery) error {
	const q = `
        UPDATE webhook_deliveries SET
            attempt = $2,
            http_status = $3,
            response_body = $4,
            is_delivered = $5,
            next_retry_at = $6
        WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, d.ID, d.Attempt, d.HTTPStatus, d.ResponseBody, d.IsDelivered, d.NextRetryAt)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// GetPending returns undelivered rows whose retry time has come.
func (r *WebhookRepository) GetPending(ctx context.Context, maxAttempts, limit int) ([]models.WebhookDelivery, error) {
	const q = `SELECT ` + webhookColumns + ` FROM webhook_deliveries
        WHERE is_delivered = false
          AND next_retry_at IS NOT NULL
          AND next_retry_at <= NOW()
          AND attempt < $1
        ORDER BY next_retry_at ASC
        LIMIT $2`
	list := []models.WebhookDelivery{}
	if err := r.db.SelectContext(ctx, &list, q, maxAttempts, limit); err != nil {
		return nil, err
	}
	return list, nil
}

// List returns deliveries newest first and the total count.
func (r *WebhookRepository) List(ctx context.Context, limit, offset int) ([]models.WebhookDelivery, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM webhook_deliveries`); err != nil {
		return nil, 0, err
	}
	list := []models.WebhookDelivery{}
	q := `SELECT ` + webhookColumns + ` FROM webhook_deliveries ORDER BY id DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &list, q, limit, offset); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
