package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/procure_api/internal/models"
)

// SessionRepository persists procurement sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session. ID must be set by the caller.
func (r *SessionRepository) Create(ctx context.Context, s *models.ProcurementSession) error {
	const q = `
        INSERT INTO procurement_sessions (
            id, state, material_request_id, selected_vendor_ids, chosen_vendor_id, expires_at
        ) VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at, updated_at`
	if s.SelectedVendorIDs == nil {
		s.SelectedVendorIDs = []string{}
	}
	return r.db.QueryRowxContext(ctx, q,
		s.ID, s.State, s.MaterialRequestID, s.SelectedVendorIDs, s.ChosenVendorID, s.ExpiresAt,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// GetByID returns a session or sql.ErrNoRows.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.ProcurementSession, error) {
	var s models.ProcurementSession
	const q = `
        SELECT id, state, material_request_id, selected_vendor_ids, chosen_vendor_id,
               expires_at, created_at, updated_at
        FROM procurement_sessions WHERE id = $1`
	if err := r.db.GetContext(ctx, &s, q, id); err != nil {
		return nil, err
	}
	return &s, nil
}

// Update saves the mutable session state.
func (r *SessionRepository) Update(ctx context.Context, s *models.ProcurementSession) error {
	const q = `
        UPDATE procurement_sessions SET
            state = $2,
            material_request_id = $3,
            selected_vendor_ids = $4,
            chosen_vendor_id = $5,
            updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at`
	if s.SelectedVendorIDs == nil {
		s.SelectedVendorIDs = []string{}
	}
	return r.db.QueryRowxContext(ctx, q,
		s.ID, s.State, s.MaterialRequestID, s.SelectedVendorIDs, s.ChosenVendorID,
	).Scan(&s.UpdatedAt)
}

// DeleteExpired removes sessions past expiry that never completed.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM procurement_sessions WHERE expires_at <= $1 AND state <> 'completed'`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
