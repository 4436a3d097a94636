package quote

// BestPrice is the lowest unit price quoted for one material.
type BestPrice struct {
	Price     float64  `json:"price"`
	VendorIDs []string `json:"vendorIds"`
	Unique    bool     `json:"unique"`
}

// BestPrices computes, per material name, the minimum unit price across
// vendors that quote it. A vendor quoting the same material on several lines
// competes with its cheapest line.
func BestPrices(quotes []AggregatedQuote) map[string]BestPrice {
	best := make(map[string]BestPrice)
	for _, q := range quotes {
		for material, price := range vendorPrices(q) {
			cur, ok := best[material]
			switch {
			case !ok || price < cur.Price:
				best[material] = BestPrice{Price: price, VendorIDs: []string{q.VendorID}}
			case price == cur.Price:
				cur.VendorIDs = append(cur.VendorIDs, q.VendorID)
				best[material] = cur
			}
		}
	}

	for material, bp := range best {
		bp.Unique = len(bp.VendorIDs) == 1
		best[material] = bp
	}
	return best
}

// IsBestPrice reports whether vendorID alone holds the lowest price for material.
func IsBestPrice(best map[string]BestPrice, material, vendorID string) bool {
	bp, ok := best[material]
	return ok && bp.Unique && bp.VendorIDs[0] == vendorID
}

func vendorPrices(q AggregatedQuote) map[string]float64 {
	prices := make(map[string]float64, len(q.Items))
	for _, it := range q.Items {
		if p, ok := prices[it.Name]; !ok || it.UnitPrice < p {
			prices[it.Name] = it.UnitPrice
		}
	}
	return prices
}

// Cell is one vendor's price for one material in a comparison table.
type Cell struct {
	VendorID  string   `json:"vendorId"`
	UnitPrice *float64 `json:"unitPrice"`
	Best      bool     `json:"best"`
}

// Row is one material across all vendors.
type Row struct {
	Material string `json:"material"`
	Cells    []Cell `json:"cells"`
}

// TableVendor heads one column of a comparison table.
type TableVendor struct {
	VendorID     string  `json:"vendorId"`
	VendorName   string  `json:"vendorName"`
	TotalAmount  float64 `json:"totalAmount"`
	DeliveryTime string  `json:"deliveryTime"`
	Pending      bool    `json:"pending"`
}

// Table is a material by vendor price matrix.
type Table struct {
	Vendors []TableVendor `json:"vendors"`
	Rows    []Row         `json:"rows"`
}

// BuildTable lays quotes out as a matrix. Columns follow quote order and rows
// follow the order materials are first seen.
func BuildTable(quotes []AggregatedQuote) Table {
	best := BestPrices(quotes)

	var materials []string
	seen := make(map[string]bool)
	prices := make([]map[string]float64, len(quotes))

	t := Table{Vendors: make([]TableVendor, 0, len(quotes)), Rows: []Row{}}
	for i, q := range quotes {
		t.Vendors = append(t.Vendors, TableVendor{
			VendorID:     q.VendorID,
			VendorName:   q.VendorName,
			TotalAmount:  q.TotalAmount,
			DeliveryTime: q.DeliveryTime,
			Pending:      q.Pending(),
		})
		prices[i] = vendorPrices(q)
		for _, it := range q.Items {
			if !seen[it.Name] {
				seen[it.Name] = true
				materials = append(materials, it.Name)
			}
		}
	}

	for _, m := range materials {
		row := Row{Material: m, Cells: make([]Cell, 0, len(quotes))}
		for i, q := range quotes {
			cell := Cell{VendorID: q.VendorID}
			if p, ok := prices[i][m]; ok {
				cell.UnitPrice = &p
				cell.Best = IsBestPrice(best, m, q.VendorID)
			}
			row.Cells = append(row.Cells, cell)
		}
		t.Rows = append(t.Rows, row)
	}

	return t
}
