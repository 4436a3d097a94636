package quote

import (
	"math"

	"github.com/GTDGit/procure_api/internal/models"
)

type demoVendor struct {
	id             string
	name           string
	location       string
	specialization string
	rating         float64
	priceFactor    float64
	deliveryDays   int
}

var demoVendors = []demoVendor{
	{"demo-vendor-1", "Shree Ganesh Building Supplies", "Pune", "Cement & Aggregates", 4.6, 1.00, 5},
	{"demo-vendor-2", "Metro Steel & Hardware", "Mumbai", "Steel & TMT Bars", 4.2, 0.94, 9},
	{"demo-vendor-3", "Deccan Construction Mart", "Hyderabad", "General Materials", 3.9, 1.07, 3},
}

// demoBasePrice is the reference unit price for the n-th order line.
func demoBasePrice(n int) float64 {
	return 400 + float64(n%5)*175
}

// DemoQuotes prices items with a fixed set of sample vendors. It is only for
// previews; callers must label the result as demonstration data.
func DemoQuotes(items []models.MaterialRequestItem) []models.VendorQuote {
	if len(items) == 0 {
		items = []models.MaterialRequestItem{
			{ID: "demo-item-1", MaterialName: "OPC 53 Grade Cement", Quantity: 50, Unit: "bags"},
			{ID: "demo-item-2", MaterialName: "TMT Bar 12mm", Quantity: 20, Unit: "pcs"},
		}
	}

	quotes := make([]models.VendorQuote, 0, len(demoVendors))
	for _, v := range demoVendors {
		q := models.VendorQuote{
			ID:                   v.id + "-quote",
			VendorID:             v.id,
			Status:               models.QuoteStatusReceived,
			VendorName:           v.name,
			VendorLocation:       v.location,
			VendorSpecialization: v.specialization,
			VendorRating:         v.rating,
			Items:                make([]models.VendorQuoteItem, 0, len(items)),
		}
		for i, it := range items {
			days := v.deliveryDays + i%3
			q.Items = append(q.Items, models.VendorQuoteItem{
				ItemID:       it.ID,
				QuotedPrice:  math.Round(demoBasePrice(i) * v.priceFactor),
				DeliveryDays: &days,
			})
		}
		quotes = append(quotes, q)
	}
	return quotes
}
