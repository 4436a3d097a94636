package models

import (
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/GTDGit/procure_api/internal/utils"
)

// SessionState is a step of the buyer's procurement flow.
type SessionState string

const (
	SessionVendorSelection SessionState = "vendor_selection"
	SessionQuoteRequest    SessionState = "quote_request"
	SessionQuoteComparison SessionState = "quote_comparison"
	SessionOrderPlacement  SessionState = "order_placement"
	SessionCompleted       SessionState = "completed"
	SessionCancelled       SessionState = "cancelled"
)

var sessionTransitions = map[SessionState][]SessionState{
	SessionVendorSelection: {SessionQuoteRequest, SessionCancelled},
	SessionQuoteRequest:    {SessionQuoteComparison, SessionVendorSelection, SessionCancelled},
	SessionQuoteComparison: {SessionOrderPlacement, SessionCancelled},
	SessionOrderPlacement:  {SessionCompleted, SessionQuoteComparison, SessionCancelled},
}

// Terminal reports whether no further transitions are possible.
func (s SessionState) Terminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}

// CanTransition reports whether moving from s to next is allowed.
func (s SessionState) CanTransition(next SessionState) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ProcurementSession is the server-side state of one buyer's
// select → request → compare → order flow.
type ProcurementSession struct {
	ID                string         `db:"id" json:"id"`
	State             SessionState   `db:"state" json:"state"`
	MaterialRequestID *string        `db:"material_request_id" json:"materialRequestId,omitempty"`
	SelectedVendorIDs pq.StringArray `db:"selected_vendor_ids" json:"selectedVendorIds"`
	ChosenVendorID    *string        `db:"chosen_vendor_id" json:"chosenVendorId,omitempty"`
	ExpiresAt         time.Time      `db:"expires_at" json:"expiresAt"`
	CreatedAt         time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updatedAt"`
}

// Transition moves the session to next or returns ErrInvalidTransition.
func (s *ProcurementSession) Transition(next SessionState) error {
	if !s.State.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", utils.ErrInvalidTransition, s.State, next)
	}
	s.State = next
	return nil
}

// Expired reports whether the session is past its expiry.
func (s *ProcurementSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// HasVendor reports whether vendorID was selected in this session.
func (s *ProcurementSession) HasVendor(vendorID string) bool {
	for _, id := range s.SelectedVendorIDs {
		if id == vendorID {
			return true
		}
	}
	return false
}
