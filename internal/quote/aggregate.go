// Package quote merges material request lines with vendor quotes into
// comparable per-vendor totals.
package quote

import (
	"fmt"

	"github.com/GTDGit/procure_api/internal/models"
)

const (
	defaultMaterialName = "Material Item"
	notAvailable        = "N/A"
)

// Item is one priced line of an aggregated quote.
type Item struct {
	ItemID       string  `json:"itemId"`
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unitPrice"`
	Total        float64 `json:"total"`
	DeliveryDays *int    `json:"deliveryDays,omitempty"`
	Comments     *string `json:"comments,omitempty"`
}

// AggregatedQuote is a vendor quote resolved against the order it answers.
type AggregatedQuote struct {
	VendorID       string             `json:"vendorId"`
	VendorName     string             `json:"vendorName"`
	Location       string             `json:"location"`
	Specialization string             `json:"specialization,omitempty"`
	Rating         float64            `json:"rating"`
	Status         models.QuoteStatus `json:"status"`
	DeliveryTime   string             `json:"deliveryTime"`
	TotalAmount    float64            `json:"totalAmount"`
	Items          []Item             `json:"items"`
}

// Pending reports whether the vendor has not priced anything yet.
func (q AggregatedQuote) Pending() bool {
	return len(q.Items) == 0
}

type lineRef struct {
	name     string
	quantity int
}

// Aggregate resolves each quote line against items and totals it per vendor.
// The output keeps the order of quotes and is never nil.
func Aggregate(items []models.MaterialRequestItem, quotes []models.VendorQuote) []AggregatedQuote {
	lookup := make(map[string]lineRef, len(items))
	for _, it := range items {
		lookup[it.ID] = lineRef{name: itemName(it), quantity: itemQuantity(it.Quantity)}
	}

	out := make([]AggregatedQuote, 0, len(quotes))
	for _, q := range quotes {
		agg := AggregatedQuote{
			VendorID:       q.VendorID,
			VendorName:     q.VendorName,
			Location:       q.VendorLocation,
			Specialization: q.VendorSpecialization,
			Rating:         q.VendorRating,
			Status:         models.QuoteStatusPending,
			DeliveryTime:   notAvailable,
			Items:          make([]Item, 0, len(q.Items)),
		}

		maxDays := -1
		for _, li := range q.Items {
			ref, ok := lookup[li.ItemID]
			if !ok {
				ref = lineRef{name: fmt.Sprintf("Item #%s", li.ItemID), quantity: 1}
			}

			total := li.QuotedPrice * float64(ref.quantity)
			agg.Items = append(agg.Items, Item{
				ItemID:       li.ItemID,
				Name:         ref.name,
				Quantity:     ref.quantity,
				UnitPrice:    li.QuotedPrice,
				Total:        total,
				DeliveryDays: li.DeliveryDays,
				Comments:     li.Comments,
			})
			agg.TotalAmount += total

			if li.DeliveryDays != nil && *li.DeliveryDays > maxDays {
				maxDays = *li.DeliveryDays
			}
		}

		if len(agg.Items) > 0 {
			agg.Status = models.QuoteStatusReceived
		}
		if maxDays >= 0 {
			agg.DeliveryTime = fmt.Sprintf("%d days", maxDays)
		}

		out = append(out, agg)
	}

	return out
}

func itemName(it models.MaterialRequestItem) string {
	for _, n := range []string{it.MaterialName, it.Name, it.Title} {
		if n != "" {
			return n
		}
	}
	return defaultMaterialName
}

func itemQuantity(q int) int {
	if q <= 0 {
		return 1
	}
	return q
}
