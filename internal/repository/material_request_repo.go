package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/procure_api/internal/models"
	"github.com/GTDGit/procure_api/internal/utils"
)

const materialRequestColumns = `id, reference_no, customer_name, customer_email, customer_phone, site_location,
        status, notes, finalized_at, created_at, updated_at`

const materialRequestItemColumns = `id, material_request_id, material_name, sub_type, dimensions, quantity, unit, created_at`

// MaterialRequestRepository provides access to material requests and their items.
type MaterialRequestRepository struct {
	db *sqlx.DB
}

// NewMaterialRequestRepository creates a new MaterialRequestRepository.
func NewMaterialRequestRepository(db *sqlx.DB) *MaterialRequestRepository {
	return &MaterialRequestRepository{db: db}
}

// Create inserts the request and its items in one transaction. IDs must be set.
func (r *MaterialRequestRepository) Create(ctx context.Context, mr *models.MaterialRequest) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const q = `
        INSERT INTO material_requests (
            id, reference_no, customer_name, customer_email, customer_phone, site_location, status, notes
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at, updated_at`
	err = tx.QueryRowxContext(ctx, q,
		mr.ID, mr.ReferenceNo, mr.CustomerName, mr.CustomerEmail, mr.CustomerPhone, mr.SiteLocation, mr.Status, mr.Notes,
	).Scan(&mr.CreatedAt, &mr.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert material request: %w", err)
	}

	if err := insertItems(ctx, tx, mr.ID, mr.Items); err != nil {
		return err
	}

	return tx.Commit()
}

// GetByID returns the request with its items or sql.ErrNoRows.
func (r *MaterialRequestRepository) GetByID(ctx context.Context, id string) (*models.MaterialRequest, error) {
	var mr models.MaterialRequest
	err := r.db.GetContext(ctx, &mr, `SELECT `+materialRequestColumns+` FROM material_requests WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}

	items, err := r.GetItems(ctx, id)
	if err != nil {
		return nil, err
	}
	mr.Items = items
	return &mr, nil
}

// GetItems returns the order lines of a request in insertion order.
func (r *MaterialRequestRepository) GetItems(ctx context.Context, materialRequestID string) ([]models.MaterialRequestItem, error) {
	items := []models.MaterialRequestItem{}
	const q = `SELECT ` + materialRequestItemColumns + ` FROM material_request_items
        WHERE material_request_id = $1 ORDER BY created_at ASC, id ASC`
	if err := r.db.SelectContext(ctx, &items, q, materialRequestID); err != nil {
		return nil, err
	}
	return items, nil
}

// ReplaceItems swaps all order lines. It fails with ErrMaterialRequestLocked
// unless the request is still submitted.
func (r *MaterialRequestRepository) ReplaceItems(ctx context.Context, materialRequestID string, items []models.MaterialRequestItem) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var status models.MaterialRequestStatus
	err = tx.GetContext(ctx, &status, `SELECT status FROM material_requests WHERE id = $1 FOR UPDATE`, materialRequestID)
	if err != nil {
		return err
	}
	if !status.Editable() {
		return utils.ErrMaterialRequestLocked
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM material_request_items WHERE material_request_id = $1`, materialRequestID); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	if err := insertItems(ctx, tx, materialRequestID, items); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE material_requests SET updated_at = NOW() WHERE id = $1`, materialRequestID); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateStatus moves a submitted request to status. A request that is not
// submitted anymore yields ErrMaterialRequestLocked.
func (r *MaterialRequestRepository) UpdateStatus(ctx context.Context, id string, status models.MaterialRequestStatus) error {
	const q = `
        UPDATE material_requests SET
            status = $2,
            finalized_at = CASE WHEN $3 THEN NOW() ELSE finalized_at END,
            updated_at = NOW()
        WHERE id = $1 AND status = 'submitted'`
	res, err := r.db.ExecContext(ctx, q, id, status, status == models.MaterialRequestFinalized)
	if err != nil {
		return err
	}
	if err := expectAffected(res); err != nil {
		if err == sql.ErrNoRows {
			return utils.ErrMaterialRequestLocked
		}
		return err
	}
	return nil
}

// List returns requests newest first, without items, and the total count.
func (r *MaterialRequestRepository) List(ctx context.Context, limit, offset int) ([]models.MaterialRequest, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM material_requests`); err != nil {
		return nil, 0, err
	}

	list := []models.MaterialRequest{}
	const q = `SELECT ` + materialRequestColumns + ` FROM material_requests
        ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &list, q, limit, offset); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func insertItems(ctx context.Context, tx *sqlx.Tx, materialRequestID string, items []models.MaterialRequestItem) error {
	const q = `
        INSERT INTO material_request_items (
            id, material_request_id, material_name, sub_type, dimensions, quantity, unit
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i := range items {
		it := &items[i]
		it.MaterialRequestID = materialRequestID
		if _, err := tx.ExecContext(ctx, q,
			it.ID, materialRequestID, it.MaterialName, it.SubType, it.Dimensions, it.Quantity, it.Unit,
		); err != nil {
			return fmt.Errorf("insert item %s: %w", it.ID, err)
		}
	}
	return nil
}
