package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// LatestRunID is reported wherever the producing run of an artifact is not tracked
const LatestRunID = "latest"

// Export table column names read by the dashboard
const (
	ColumnProductInternalID = "product_internal_id"
	ColumnBrand             = "brand"
	ColumnProductName       = "product_name"
	ColumnNeedsReview       = "needs_review"
	ColumnMatchFound        = "match_found"
	ColumnMatchConfidence   = "match_confidence"
	ColumnMainImageURL      = "product_media_main_image_url"
	ColumnSupplierURL       = "product_supplier_url"
	ColumnCostPrice         = "product_cost_price"
	ColumnCompareToPrice    = "product_compare_to_price"
)

// ExportRow is one row of the inventory export, keeping every column in file order
type ExportRow struct {
	columns []string
	values  map[string]string
}

// NewExportRow pairs header columns with cell values.
// Missing trailing cells read as empty, surplus cells are dropped.
func NewExportRow(columns, cells []string) ExportRow {
	values := make(map[string]string, len(columns))
	for i, col := range columns {
		if i < len(cells) {
			values[col] = cells[i]
		} else {
			values[col] = ""
		}
	}
	return ExportRow{columns: columns, values: values}
}

// ProductID returns the row's identity as a trimmed string
func (r ExportRow) ProductID() string {
	return strings.TrimSpace(r.values[ColumnProductInternalID])
}

// Get returns the cell for a column, or "" when the column is absent
func (r ExportRow) Get(column string) string {
	return r.values[column]
}

// Columns returns the column names in file order
func (r ExportRow) Columns() []string {
	return append([]string(nil), r.columns...)
}

// MapColumns returns a copy of the row with fn applied to every cell.
// The receiver is not modified.
func (r ExportRow) MapColumns(fn func(column, value string) string) ExportRow {
	values := make(map[string]string, len(r.values))
	for _, col := range r.columns {
		values[col] = fn(col, r.values[col])
	}
	return ExportRow{columns: r.columns, values: values}
}

// jsonNumberPattern matches cells that are valid JSON number literals
var jsonNumberPattern = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// MarshalJSON renders the row as an object in column order.
// Numeric cells become JSON numbers, everything else stays a string.
func (r ExportRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		cell := r.values[col]
		if jsonNumberPattern.MatchString(cell) {
			buf.WriteString(cell)
			continue
		}
		val, err := json.Marshal(cell)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ProductSummary is one line of the review queue
type ProductSummary struct {
	ProductInternalID string  `json:"product_internal_id"`
	RunID             string  `json:"run_id"`
	Brand             string  `json:"brand"`
	ProductName       string  `json:"product_name"`
	NeedsReview       string  `json:"needs_review"`
	MatchFound        bool    `json:"match_found"`
	MatchConfidence   float64 `json:"match_confidence"`
	MainImageURL      string  `json:"product_media_main_image_url"`
	SupplierURL       string  `json:"product_supplier_url"`
	CostPrice         string  `json:"product_cost_price"`
	CompareToPrice    string  `json:"product_compare_to_price"`
}

// ProductDetail is the merged view used by the match inspector
type ProductDetail struct {
	RunID     string     `json:"run_id"`
	Raw       RawProduct `json:"raw"`
	Inference Inference  `json:"inference"`
	Match     Match      `json:"match"`
	ExportRow ExportRow  `json:"export_row"`
}

// ReviewFilter selects products by their needs-review flag
type ReviewFilter string

const (
	ReviewAll ReviewFilter = "ALL"
	ReviewYes ReviewFilter = "YES"
	ReviewNo  ReviewFilter = "NO"
)

// ParseReviewFilter parses a case-insensitive filter value; empty means ALL
func ParseReviewFilter(s string) (ReviewFilter, error) {
	switch ReviewFilter(strings.ToUpper(strings.TrimSpace(s))) {
	case "", ReviewAll:
		return ReviewAll, nil
	case ReviewYes:
		return ReviewYes, nil
	case ReviewNo:
		return ReviewNo, nil
	default:
		return "", fmt.Errorf("%w: needs_review must be YES, NO or ALL, got %q", ErrInvalidRequest, s)
	}
}

// Allows reports whether a needs-review flag passes the filter
func (f ReviewFilter) Allows(needsReview string) bool {
	if f == "" || f == ReviewAll {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(needsReview), string(f))
}

// ProductQuery carries the list-products selectors
type ProductQuery struct {
	RunID       string
	NeedsReview ReviewFilter
}
