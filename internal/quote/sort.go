package quote

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SortKey selects the ranking criterion for a comparison.
type SortKey string

const (
	SortByPrice    SortKey = "price"
	SortByDelivery SortKey = "delivery"
	SortByRating   SortKey = "rating"
)

// Direction orders a ranking.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseSortKey maps a query value to a SortKey. Empty means price.
func ParseSortKey(raw string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(raw))); k {
	case "":
		return SortByPrice, nil
	case SortByPrice, SortByDelivery, SortByRating:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", raw)
	}
}

// ParseDirection maps a query value to a Direction. Empty means the key's
// natural order: cheapest, fastest or best rated first.
func ParseDirection(raw string, key SortKey) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(raw))); d {
	case "":
		return key.DefaultDirection(), nil
	case Ascending, Descending:
		return d, nil
	default:
		return "", fmt.Errorf("unknown sort direction %q", raw)
	}
}

// DefaultDirection is the order in which the best value comes first.
func (k SortKey) DefaultDirection() Direction {
	if k == SortByRating {
		return Descending
	}
	return Ascending
}

// Sort returns a stably sorted copy of quotes. Pending quotes stay last when
// sorting by price, as do quotes without a delivery estimate when sorting by
// delivery, regardless of direction.
func Sort(quotes []AggregatedQuote, key SortKey, dir Direction) []AggregatedQuote {
	out := make([]AggregatedQuote, len(quotes))
	copy(out, quotes)

	desc := dir == Descending
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch key {
		case SortByDelivery:
			da, okA := deliveryDays(a.DeliveryTime)
			db, okB := deliveryDays(b.DeliveryTime)
			if okA != okB {
				return okA
			}
			return less(float64(da), float64(db), desc)
		case SortByRating:
			return less(a.Rating, b.Rating, desc)
		default:
			if a.Pending() != b.Pending() {
				return !a.Pending()
			}
			return less(a.TotalAmount, b.TotalAmount, desc)
		}
	})
	return out
}

func less(a, b float64, desc bool) bool {
	if desc {
		return a > b
	}
	return a < b
}

// deliveryDays parses the leading integer of a delivery time such as "7 days".
func deliveryDays(s string) (int, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
