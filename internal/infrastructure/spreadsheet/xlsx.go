package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/matchboard/backend/internal/domain"
)

// ContentType is the MIME type of the workbooks written here
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const queueSheet = "Review Queue"

var queueHeaders = []string{
	"product_internal_id",
	"run_id",
	"brand",
	"product_name",
	"needs_review",
	"match_found",
	"match_confidence",
	"product_media_main_image_url",
	"product_supplier_url",
	"product_cost_price",
	"product_compare_to_price",
}

// WriteProducts renders the review queue as an XLSX workbook
func WriteProducts(w io.Writer, products []domain.ProductSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), queueSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, h := range queueHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(queueSheet, cell, h)
	}

	for i, p := range products {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(queueSheet, cell, value)
		}

		set(1, p.ProductInternalID)
		set(2, p.RunID)
		set(3, p.Brand)
		set(4, p.ProductName)
		set(5, p.NeedsReview)
		set(6, p.MatchFound)
		set(7, p.MatchConfidence)
		set(8, p.MainImageURL)
		set(9, p.SupplierURL)
		set(10, p.CostPrice)
		set(11, p.CompareToPrice)
	}

	if err := f.SetPanes(queueSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
