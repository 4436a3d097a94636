package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/procure_api/internal/models"
)

// QuoteRepository provides access to vendor quotes and their items.
type QuoteRepository struct {
	db *sqlx.DB
}

// NewQuoteRepository creates a new QuoteRepository.
func NewQuoteRepository(db *sqlx.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// CreatePending opens an empty quote for each vendor. Vendors that already
// have a quote on the request are left untouched.
func (r *QuoteRepository) CreatePending(ctx context.Context, materialRequestID string, vendorIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const q = `
        INSERT INTO vendor_quotes (id, material_request_id, vendor_id, status)
        VALUES ($1, $2, $3, 'pending')
        ON CONFLICT (material_request_id, vendor_id) DO NOTHING`
	for _, vendorID := range vendorIDs {
		if _, err := tx.ExecContext(ctx, q, uuid.NewString(), materialRequestID, vendorID); err != nil {
			return fmt.Errorf("create pending quote for vendor %s: %w", vendorID, err)
		}
	}
	return tx.Commit()
}

// Submit records a vendor's prices, replacing any earlier submission, and
// marks the quote received. quote.ID, timestamps and item ids are filled in.
func (r *QuoteRepository) Submit(ctx context.Context, quote *models.VendorQuote) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const upsert = `
        INSERT INTO vendor_quotes (id, material_request_id, vendor_id, status, notes, submitted_at)
        VALUES ($1, $2, $3, 'received', $4, NOW())
        ON CONFLICT (material_request_id, vendor_id) DO UPDATE SET
            status = 'received',
            notes = EXCLUDED.notes,
            submitted_at = NOW(),
            updated_at = NOW()
        RETURNING id, status, submitted_at, created_at, updated_at`
	err = tx.QueryRowxContext(ctx, upsert, uuid.NewString(), quote.MaterialRequestID, quote.VendorID, quote.Notes).
		Scan(&quote.ID, &quote.Status, &quote.SubmittedAt, &quote.CreatedAt, &quote.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert quote: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM vendor_quote_items WHERE vendor_quote_id = $1`, quote.ID); err != nil {
		return fmt.Errorf("delete quote items: %w", err)
	}

	const insertItem = `
        INSERT INTO vendor_quote_items (vendor_quote_id, item_id, quoted_price, delivery_days, comments)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id`
	for i := range quote.Items {
		it := &quote.Items[i]
		it.VendorQuoteID = quote.ID
		if err := tx.QueryRowxContext(ctx, insertItem,
			quote.ID, it.ItemID, it.QuotedPrice, it.DeliveryDays, it.Comments,
		).Scan(&it.ID); err != nil {
			return fmt.Errorf("insert quote item %s: %w", it.ItemID, err)
		}
	}

	return tx.Commit()
}

// ListByMaterialRequest returns all quotes on a request with vendor details
// and items, oldest first.
func (r *QuoteRepository) ListByMaterialRequest(ctx context.Context, materialRequestID string) ([]models.VendorQuote, error) {
	const q = `
        SELECT q.id, q.material_request_id, q.vendor_id, q.status, q.notes, q.submitted_at,
               q.created_at, q.updated_at,
               v.name AS vendor_name, v.location AS vendor_location,
               v.specialization AS vendor_specialization, v.rating AS vendor_rating
        FROM vendor_quotes q
        JOIN vendors v ON v.id = q.vendor_id
        WHERE q.material_request_id = $1
        ORDER BY q.created_at ASC, v.name ASC`
	quotes := []models.VendorQuote{}
	if err := r.db.SelectContext(ctx, &quotes, q, materialRequestID); err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return quotes, nil
	}

	ids := make([]string, len(quotes))
	byID := make(map[string]int, len(quotes))
	for i := range quotes {
		ids[i] = quotes[i].ID
		byID[quotes[i].ID] = i
		quotes[i].Items = []models.VendorQuoteItem{}
	}

	var items []models.VendorQuoteItem
	const itemsQ = `
        SELECT id, vendor_quote_id, item_id, quoted_price, delivery_days, comments
        FROM vendor_quote_items
        WHERE vendor_quote_id = ANY($1)
        ORDER BY id ASC`
	if err := r.db.SelectContext(ctx, &items, itemsQ, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("load quote items: %w", err)
	}
	for _, it := range items {
		if i, ok := byID[it.VendorQuoteID]; ok {
			quotes[i].Items = append(quotes[i].Items, it)
		}
	}

	return quotes, nil
}
