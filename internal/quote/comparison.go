package quote

import (
	"time"

	"github.com/GTDGit/procure_api/internal/models"
)

// Comparison is a ranked, tabulated view of all quotes on a material request.
type Comparison struct {
	MaterialRequestID string            `json:"materialRequestId"`
	Sort              SortKey           `json:"sort"`
	Direction         Direction         `json:"direction"`
	Quotes            []AggregatedQuote `json:"quotes"`
	Table             Table             `json:"table"`
	GeneratedAt       time.Time         `json:"generatedAt"`
	Demo              bool              `json:"demo"`
	Stale             bool              `json:"stale,omitempty"`
}

// Compare aggregates, ranks and tabulates quotes in one step.
func Compare(materialRequestID string, items []models.MaterialRequestItem, quotes []models.VendorQuote, key SortKey, dir Direction, now time.Time) Comparison {
	ranked := Sort(Aggregate(items, quotes), key, dir)
	return Comparison{
		MaterialRequestID: materialRequestID,
		Sort:              key,
		Direction:         dir,
		Quotes:            ranked,
		Table:             BuildTable(ranked),
		GeneratedAt:       now,
	}
}
