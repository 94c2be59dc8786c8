package domain

import "time"

// Run summarizes one execution of the matching pipeline as logged in the run log.
// Timestamps are reported as logged; StartedTime is the parsed start used for ordering.
type Run struct {
	RunID              string    `json:"run_id"`
	StartedAt          string    `json:"started_at"`
	FinishedAt         string    `json:"finished_at"`
	SupplierName       string    `json:"supplier_name"`
	TotalProducts      int       `json:"total_products"`
	MatchedProducts    int       `json:"matched_products"`
	NeedsReviewYes     int       `json:"needs_review_yes"`
	NeedsReviewNo      int       `json:"needs_review_no"`
	AvgMatchConfidence float64   `json:"avg_match_confidence"`
	MinMatchConfidence float64   `json:"min_match_confidence"`
	MaxMatchConfidence float64   `json:"max_match_confidence"`
	DiscoverLimit      *int      `json:"discover_limit,omitempty"`
	StartedTime        time.Time `json:"-"`
}
