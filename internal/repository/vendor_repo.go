package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/procure_api/internal/models"
)

const vendorColumns = `id, name, email, phone, location, specialization, rating, is_active, created_at, updated_at`

// VendorRepository provides access to the vendors table.
type VendorRepository struct {
	db *sqlx.DB
}

// NewVendorRepository creates a new VendorRepository.
func NewVendorRepository(db *sqlx.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

// Create inserts a vendor. ID must be set by the caller.
func (r *VendorRepository) Create(ctx context.Context, v *models.Vendor) error {
	const q = `
        INSERT INTO vendors (id, name, email, phone, location, specialization, rating, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q,
		v.ID, v.Name, v.Email, v.Phone, v.Location, v.Specialization, v.Rating, v.IsActive,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
}

// GetByID returns a vendor or sql.ErrNoRows.
func (r *VendorRepository) GetByID(ctx context.Context, id string) (*models.Vendor, error) {
	var v models.Vendor
	err := r.db.GetContext(ctx, &v, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// List returns vendors matching filter ordered by rating then name.
func (r *VendorRepository) List(ctx context.Context, filter models.VendorFilter) ([]models.Vendor, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.ActiveOnly {
		where = append(where, "is_active = true")
	}
	if filter.Specialization != "" {
		args = append(args, filter.Specialization)
		where = append(where, fmt.Sprintf("LOWER(specialization) = LOWER($%d)", len(args)))
	}
	if filter.Location != "" {
		args = append(args, "%"+filter.Location+"%")
		where = append(where, fmt.Sprintf("location ILIKE $%d", len(args)))
	}

	q := `SELECT ` + vendorColumns + ` FROM vendors`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY rating DESC, name ASC`

	vendors := []models.Vendor{}
	if err := r.db.SelectContext(ctx, &vendors, q, args...); err != nil {
		return nil, err
	}
	return vendors, nil
}

// ListByIDs returns the active vendors among ids. Unknown ids are skipped.
func (r *VendorRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Vendor, error) {
	vendors := []models.Vendor{}
	if len(ids) == 0 {
		return vendors, nil
	}
	const q = `SELECT ` + vendorColumns + ` FROM vendors WHERE id = ANY($1) AND is_active = true ORDER BY name ASC`
	if err := r.db.SelectContext(ctx, &vendors, q, pq.Array(ids)); err != nil {
		return nil, err
	}
	return vendors, nil
}

// Update overwrites the mutable vendor fields.
func (r *VendorRepository) Update(ctx context.Context, v *models.Vendor) error {
	const q = `
        UPDATE vendors SET
            name = $2,
            email = $3,
            phone = $4,
            location = $5,
            specialization = $6,
            rating = $7,
            is_active = $8,
            updated_at = NOW()
        WHERE id = $1
        RETURNING created_at, updated_at`
	return r.db.QueryRowxContext(ctx, q,
		v.ID, v.Name, v.Email, v.Phone, v.Location, v.Specialization, v.Rating, v.IsActive,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
}

// Deactivate hides a vendor from listings. Quotes referencing it are kept.
func (r *VendorRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE vendors SET is_active = false, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// expectAffected maps a zero-row write to sql.ErrNoRows.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
