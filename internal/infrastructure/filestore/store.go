package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/matchboard/backend/internal/domain"
)

// Artifact file name prefixes used by the pipeline
const (
	checkpointPrefix = "checkpoint_"
	matchPrefix      = "match_"
)

// timestamp layouts seen in the run log, most specific first
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
}

// Store reads pipeline artifacts from a single data root
type Store struct {
	root       string
	runsLog    string
	exportFile string
}

// NewStore creates a file store rooted at root
func NewStore(root, runsLog, exportFile string) *Store {
	return &Store{
		root:       root,
		runsLog:    runsLog,
		exportFile: exportFile,
	}
}

// Root returns the data root directory
func (s *Store) Root() string {
	return s.root
}

// ReadRuns reads the run log. A missing log yields no runs.
func (s *Store) ReadRuns(ctx context.Context) ([]domain.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, err := readTable(filepath.Join(s.root, s.runsLog))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnavailable, s.runsLog, err)
	}

	records := t.records()
	runs := make([]domain.Run, 0, len(records))
	for _, rec := range records {
		runs = append(runs, decodeRun(rec))
	}
	return runs, nil
}

// ReadExportRows reads the inventory export in file order. A missing file yields no rows.
func (s *Store) ReadExportRows(ctx context.Context) ([]domain.ExportRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, err := readTable(filepath.Join(s.root, s.exportFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnavailable, s.exportFile, err)
	}

	rows := make([]domain.ExportRow, 0, len(t.rows))
	for _, cells := range t.rows {
		rows = append(rows, domain.NewExportRow(t.header, cells))
	}
	return rows, nil
}

// LoadCheckpoint loads checkpoint_<id>.json. A missing file yields nil.
func (s *Store) LoadCheckpoint(ctx context.Context, productID string) (*domain.Checkpoint, error) {
	var cp domain.Checkpoint
	found, err := s.loadJSON(ctx, checkpointPrefix, productID, &cp)
	if err != nil || !found {
		return nil, err
	}
	return &cp, nil
}

// LoadMatch loads match_<id>.json. A missing file yields nil.
func (s *Store) LoadMatch(ctx context.Context, productID string) (*domain.Match, error) {
	var m domain.Match
	found, err := s.loadJSON(ctx, matchPrefix, productID, &m)
	if err != nil || !found {
		return nil, err
	}
	return &m, nil
}

func (s *Store) loadJSON(ctx context.Context, prefix, productID string, dst any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	// Ids that cannot name a file inside the root can never have an artifact
	if !isSafeID(productID) {
		return false, nil
	}

	name := prefix + productID + ".json"
	data, err := os.ReadFile(filepath.Join(s.root, name))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnavailable, name, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("%w: decode %s: %v", domain.ErrSourceUnavailable, name, err)
	}
	return true, nil
}

// isSafeID rejects ids that would escape the data root when embedded in a file name
func isSafeID(id string) bool {
	if id == "" || strings.Contains(id, "..") {
		return false
	}
	return !strings.ContainsAny(id, `/\`+"\x00")
}

// decodeRun maps a run log record, substituting zero values for missing or malformed cells
func decodeRun(rec map[string]string) domain.Run {
	run := domain.Run{
		RunID:              strings.TrimSpace(rec["run_id"]),
		StartedAt:          strings.TrimSpace(rec["started_at"]),
		FinishedAt:         strings.TrimSpace(rec["finished_at"]),
		SupplierName:       rec["supplier_name"],
		TotalProducts:      parseInt(rec["total_products"]),
		MatchedProducts:    parseInt(rec["matched_products"]),
		NeedsReviewYes:     parseInt(rec["needs_review_yes"]),
		NeedsReviewNo:      parseInt(rec["needs_review_no"]),
		AvgMatchConfidence: parseFloat(rec["avg_match_confidence"]),
		MinMatchConfidence: parseFloat(rec["min_match_confidence"]),
		MaxMatchConfidence: parseFloat(rec["max_match_confidence"]),
	}

	run.StartedTime = parseTimestamp(run.StartedAt)
	if raw := strings.TrimSpace(rec["discover_limit"]); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			run.DiscoverLimit = &limit
		}
	}

	return run
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseInt(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	// Counts occasionally arrive as "12.0"
	if f := parseFloat(s); f == math.Trunc(f) {
		return int(f)
	}
	return 0
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
