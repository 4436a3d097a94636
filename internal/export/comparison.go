// Package export renders quote comparisons as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/GTDGit/procure_api/internal/models"
	"github.com/GTDGit/procure_api/internal/quote"
)

const (
	SummarySheet = "Summary"
	PricesSheet  = "Prices"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Filename returns the download name for a material request's comparison.
func Filename(mr *models.MaterialRequest) string {
	return fmt.Sprintf("quote-comparison-%s.xlsx", mr.ReferenceNo)
}

// WriteComparison renders cmp into an XLSX workbook and writes it to w.
func WriteComparison(w io.Writer, mr *models.MaterialRequest, cmp quote.Comparison) error {
	f, err := ComparisonWorkbook(mr, cmp)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// ComparisonWorkbook builds a two-sheet workbook: a vendor ranking and a
// material by vendor price matrix with unique lowest prices highlighted.
func ComparisonWorkbook(mr *models.MaterialRequest, cmp quote.Comparison) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(SummarySheet)
	if err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if _, err := f.NewSheet(PricesSheet); err != nil {
		return nil, fmt.Errorf("create prices sheet: %w", err)
	}
	f.DeleteSheet("Sheet1") // Delete default sheet

	styles, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	if err := writeSummary(f, styles, mr, cmp); err != nil {
		return nil, err
	}
	if err := writePrices(f, styles, cmp.Table); err != nil {
		return nil, err
	}
	return f, nil
}

type sheetStyles struct {
	title  int
	header int
	money  int
	best   int
}

func newStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error

	s.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Family: "Arial"},
	})
	if err != nil {
		return s, fmt.Errorf("title style: %w", err)
	}

	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return s, fmt.Errorf("header style: %w", err)
	}

	s.money, err = f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return s, fmt.Errorf("money style: %w", err)
	}

	s.best, err = f.NewStyle(&excelize.Style{
		NumFmt: 4,
		Font:   &excelize.Font{Bold: true, Color: "#006100"},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
	})
	if err != nil {
		return s, fmt.Errorf("best price style: %w", err)
	}
	return s, nil
}

func writeSummary(f *excelize.File, st sheetStyles, mr *models.MaterialRequest, cmp quote.Comparison) error {
	sh := SummarySheet
	title := fmt.Sprintf("Quote comparison %s", mr.ReferenceNo)
	if cmp.Demo {
		title += " (demo data)"
	}
	f.SetCellValue(sh, "A1", title)
	f.SetCellStyle(sh, "A1", "A1", st.title)
	f.SetCellValue(sh, "A2", "Customer")
	f.SetCellValue(sh, "B2", mr.CustomerName)
	f.SetCellValue(sh, "A3", "Generated")
	f.SetCellValue(sh, "B3", cmp.GeneratedAt.Format("2006-01-02 15:04 MST"))
	f.SetCellValue(sh, "A4", "Ranked by")
	f.SetCellValue(sh, "B4", fmt.Sprintf("%s (%s)", cmp.Sort, cmp.Direction))

	headers := []string{"Rank", "Vendor", "Location", "Rating", "Status", "Delivery", "Total"}
	const headerRow = 6
	if err := f.SetSheetRow(sh, cell(1, headerRow), &headers); err != nil {
		return err
	}
	f.SetCellStyle(sh, cell(1, headerRow), cell(len(headers), headerRow), st.header)

	for i, q := range cmp.Quotes {
		row := headerRow + 1 + i
		values := []interface{}{i + 1, q.VendorName, q.Location, q.Rating, string(q.Status), q.DeliveryTime, q.TotalAmount}
		if err := f.SetSheetRow(sh, cell(1, row), &values); err != nil {
			return err
		}
		f.SetCellStyle(sh, cell(7, row), cell(7, row), st.money)
	}

	f.SetColWidth(sh, "A", "A", 12)
	f.SetColWidth(sh, "B", "C", 28)
	f.SetColWidth(sh, "D", "G", 14)
	return nil
}

func writePrices(f *excelize.File, st sheetStyles, table quote.Table) error {
	sh := PricesSheet

	f.SetCellValue(sh, "A1", "Material")
	for i, v := range table.Vendors {
		f.SetCellValue(sh, cell(i+2, 1), v.VendorName)
	}
	f.SetCellStyle(sh, "A1", cell(len(table.Vendors)+1, 1), st.header)

	for r, row := range table.Rows {
		y := r + 2
		f.SetCellValue(sh, cell(1, y), row.Material)
		for c, p := range row.Cells {
			x := c + 2
			if p.UnitPrice == nil {
				f.SetCellValue(sh, cell(x, y), "-")
				continue
			}
			f.SetCellValue(sh, cell(x, y), *p.UnitPrice)
			style := st.money
			if p.Best {
				style = st.best
			}
			f.SetCellStyle(sh, cell(x, y), cell(x, y), style)
		}
	}

	f.SetColWidth(sh, "A", "A", 32)
	return nil
}

// cell converts 1-based coordinates into an A1 reference.
func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
