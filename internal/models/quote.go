package models

import "time"

// QuoteStatus is the stored state of a vendor quote.
type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "pending"
	QuoteStatusReceived QuoteStatus = "received"
)

// VendorQuote is a vendor's response to a material request.
// A pending quote with no items means the vendor has not answered yet.
type VendorQuote struct {
	ID                string      `db:"id" json:"id"`
	MaterialRequestID string      `db:"material_request_id" json:"materialRequestId"`
	VendorID          string      `db:"vendor_id" json:"vendorId"`
	Status            QuoteStatus `db:"status" json:"status"`
	Notes             *string     `db:"notes" json:"notes,omitempty"`
	SubmittedAt       *time.Time  `db:"submitted_at" json:"submittedAt,omitempty"`
	CreatedAt         time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time   `db:"updated_at" json:"updatedAt"`

	// Joined fields
	VendorName           string  `db:"vendor_name" json:"vendorName"`
	VendorLocation       string  `db:"vendor_location" json:"vendorLocation"`
	VendorSpecialization string  `db:"vendor_specialization" json:"vendorSpecialization"`
	VendorRating         float64 `db:"vendor_rating" json:"vendorRating"`

	Items []VendorQuoteItem `db:"-" json:"items"`
}

// VendorQuoteItem prices one order line. ItemID refers to a MaterialRequestItem
// but is not enforced; unknown ids are tolerated by the aggregator.
type VendorQuoteItem struct {
	ID            int64   `db:"id" json:"id,omitempty"`
	VendorQuoteID string  `db:"vendor_quote_id" json:"-"`
	ItemID        string  `db:"item_id" json:"itemId"`
	QuotedPrice   float64 `db:"quoted_price" json:"quotedPrice"`
	DeliveryDays  *int    `db:"delivery_days" json:"deliveryDays,omitempty"`
	Comments      *string `db:"comments" json:"comments,omitempty"`
}
