package sse

import (
	"time"

	"github.com/GTDGit/procure_api/internal/models"
)

// QuoteNotifier is the interface services use to emit procurement events.
type QuoteNotifier interface {
	NotifyQuoteRequested(mr *models.MaterialRequest, vendorIDs []string)
	NotifyQuoteReceived(quote *models.VendorQuote, totalAmount float64)
	NotifyOrderPlaced(mr *models.MaterialRequest, vendorID string)
}

// HubNotifier implements QuoteNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
	now func() time.Time
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub, now: time.Now}
}

func (n *HubNotifier) NotifyQuoteRequested(mr *models.MaterialRequest, vendorIDs []string) {
	if n.hub.ClientCount() == 0 {
		return
	}
	for _, id := range vendorIDs {
		n.hub.Broadcast(&QuoteEvent{
			Event:             EventQuoteRequested,
			MaterialRequestID: mr.ID,
			ReferenceNo:       mr.ReferenceNo,
			VendorID:          id,
			Timestamp:         n.now(),
		})
	}
}

func (n *HubNotifier) NotifyQuoteReceived(quote *models.VendorQuote, totalAmount float64) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&QuoteEvent{
		Event:             EventQuoteReceived,
		MaterialRequestID: quote.MaterialRequestID,
		VendorID:          quote.VendorID,
		VendorName:        quote.VendorName,
		TotalAmount:       &totalAmount,
		Timestamp:         n.now(),
	})
}

func (n *HubNotifier) NotifyOrderPlaced(mr *models.MaterialRequest, vendorID string) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&QuoteEvent{
		Event:             EventOrderPlaced,
		MaterialRequestID: mr.ID,
		ReferenceNo:       mr.ReferenceNo,
		VendorID:          vendorID,
		Timestamp:         n.now(),
	})
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (n *NopNotifier) NotifyQuoteRequested(mr *models.MaterialRequest, vendorIDs []string) {}
func (n *NopNotifier) NotifyQuoteReceived(quote *models.VendorQuote, totalAmount float64)  {}
func (n *NopNotifier) NotifyOrderPlaced(mr *models.MaterialRequest, vendorID string)       {}
