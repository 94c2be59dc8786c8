package usecase

import "github.com/matchboard/backend/internal/domain"

// productIndex resolves duplicate export rows last-write-wins.
// Both the queue listing and the detail lookup read from it, so they always agree.
type productIndex struct {
	order []string // ids by first appearance
	rows  map[string]domain.ExportRow
}

// buildProductIndex indexes rows in a single forward pass.
// A later row replaces an earlier one with the same id but keeps the earlier position.
// Rows without an id are skipped.
func buildProductIndex(rows []domain.ExportRow) *productIndex {
	idx := &productIndex{rows: make(map[string]domain.ExportRow, len(rows))}
	for _, row := range rows {
		id := row.ProductID()
		if id == "" {
			continue
		}
		if _, seen := idx.rows[id]; !seen {
			idx.order = append(idx.order, id)
		}
		idx.rows[id] = row
	}
	return idx
}

func (idx *productIndex) lookup(id string) (domain.ExportRow, bool) {
	row, ok := idx.rows[id]
	return row, ok
}

// authoritative returns the winning row per id in index order
func (idx *productIndex) authoritative() []domain.ExportRow {
	out := make([]domain.ExportRow, 0, len(idx.order))
	for _, id := range idx.order {
		out = append(out, idx.rows[id])
	}
	return out
}

func (idx *productIndex) size() int {
	return len(idx.order)
}
