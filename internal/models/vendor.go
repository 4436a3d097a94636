package models

import "time"

// Vendor is a supplier that can be asked to quote on material requests.
type Vendor struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	Phone          string    `db:"phone" json:"phone"`
	Location       string    `db:"location" json:"location"`
	Specialization string    `db:"specialization" json:"specialization"`
	Rating         float64   `db:"rating" json:"rating"`
	IsActive       bool      `db:"is_active" json:"isActive"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// VendorFilter narrows vendor listings. Empty fields are ignored.
type VendorFilter struct {
	Specialization string
	Location       string
	ActiveOnly     bool
}
