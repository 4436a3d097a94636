package models

import "time"

// MaterialRequestStatus tracks whether an order can still be edited.
type MaterialRequestStatus string

const (
	MaterialRequestSubmitted MaterialRequestStatus = "submitted"
	MaterialRequestFinalized MaterialRequestStatus = "finalized"
	MaterialRequestCancelled MaterialRequestStatus = "cancelled"
)

// Editable reports whether line items may still change.
func (s MaterialRequestStatus) Editable() bool {
	return s == MaterialRequestSubmitted
}

// MaterialRequest is a customer's order for construction materials.
type MaterialRequest struct {
	ID            string                `db:"id" json:"id"`
	ReferenceNo   string                `db:"reference_no" json:"referenceNo"`
	CustomerName  string                `db:"customer_name" json:"customerName"`
	CustomerEmail string                `db:"customer_email" json:"customerEmail"`
	CustomerPhone string                `db:"customer_phone" json:"customerPhone,omitempty"`
	SiteLocation  string                `db:"site_location" json:"siteLocation,omitempty"`
	Status        MaterialRequestStatus `db:"status" json:"status"`
	Notes         *string               `db:"notes" json:"notes,omitempty"`
	FinalizedAt   *time.Time            `db:"finalized_at" json:"finalizedAt,omitempty"`
	CreatedAt     time.Time             `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time             `db:"updated_at" json:"updatedAt"`

	Items []MaterialRequestItem `db:"-" json:"items"`
}

// MaterialRequestItem is one order line. Name and Title are accepted from
// clients that send those keys instead of materialName; only MaterialName is stored.
type MaterialRequestItem struct {
	ID                string    `db:"id" json:"id"`
	MaterialRequestID string    `db:"material_request_id" json:"materialRequestId,omitempty"`
	MaterialName      string    `db:"material_name" json:"materialName"`
	Name              string    `db:"-" json:"name,omitempty"`
	Title             string    `db:"-" json:"title,omitempty"`
	SubType           string    `db:"sub_type" json:"subType,omitempty"`
	Dimensions        string    `db:"dimensions" json:"dimensions,omitempty"`
	Quantity          int       `db:"quantity" json:"quantity"`
	Unit              string    `db:"unit" json:"unit,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"-"`
}
