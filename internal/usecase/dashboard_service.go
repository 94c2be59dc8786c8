package usecase

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matchboard/backend/internal/domain"
)

// DashboardServiceConfig holds configuration for the dashboard service
type DashboardServiceConfig struct {
	DeadImageOrigin   string
	MirrorImageOrigin string
}

// DashboardService assembles dashboard views from pipeline artifacts.
// It holds no mutable state; every call reads the sources afresh.
type DashboardService struct {
	source   domain.ArtifactSource
	rewriter *ImageURLRewriter
	logger   *zap.Logger
}

// NewDashboardService creates a new dashboard service with dependencies
func NewDashboardService(
	source domain.ArtifactSource,
	logger *zap.Logger,
	config DashboardServiceConfig,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DashboardService{
		source:   source,
		rewriter: NewImageURLRewriter(config.DeadImageOrigin, config.MirrorImageOrigin),
		logger:   logger.Named("dashboard"),
	}
}

// ListRuns returns every logged run, most recent first.
// Runs sharing a start time keep their log order.
func (s *DashboardService) ListRuns(ctx context.Context) ([]domain.Run, error) {
	runs, err := s.source.ReadRuns(ctx)
	if err != nil {
		s.logger.Error("failed to read run log", zap.Error(err))
		return nil, fmt.Errorf("list runs: %w", err)
	}

	if runs == nil {
		return []domain.Run{}, nil
	}
	slices.SortStableFunc(runs, func(a, b domain.Run) int {
		return b.StartedTime.Compare(a.StartedTime)
	})
	return runs, nil
}

// ListProducts returns the deduplicated review queue.
// The run id is echoed but does not filter: the export is not partitioned by run.
func (s *DashboardService) ListProducts(ctx context.Context, query domain.ProductQuery) ([]domain.ProductSummary, error) {
	idx, err := s.loadIndex(ctx)
	if err != nil {
		s.logger.Error("failed to read product export", zap.Error(err))
		return nil, fmt.Errorf("list products: %w", err)
	}

	runID := query.RunID
	if runID == "" {
		runID = domain.LatestRunID
	}

	products := make([]domain.ProductSummary, 0, idx.size())
	for _, row := range idx.authoritative() {
		if !query.NeedsReview.Allows(row.Get(domain.ColumnNeedsReview)) {
			continue
		}
		products = append(products, s.summarize(row, runID))
	}

	s.logger.Debug("listed products",
		zap.String("run_id", runID),
		zap.String("needs_review", string(query.NeedsReview)),
		zap.Int("count", len(products)))
	return products, nil
}

// GetProductDetail merges the authoritative export row with the product's checkpoint and match.
// The id must equal a row id exactly. Returns domain.ErrProductNotFound when no export row carries it.
func (s *DashboardService) GetProductDetail(ctx context.Context, productID string) (*domain.ProductDetail, error) {
	if productID == "" {
		return nil, domain.ErrProductNotFound
	}

	idx, err := s.loadIndex(ctx)
	if err != nil {
		s.logger.Error("failed to read product export", zap.String("product_id", productID), zap.Error(err))
		return nil, fmt.Errorf("get product %s: %w", productID, err)
	}

	row, ok := idx.lookup(productID)
	if !ok {
		return nil, domain.ErrProductNotFound
	}

	var (
		checkpoint *domain.Checkpoint
		match      *domain.Match
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		checkpoint, err = s.source.LoadCheckpoint(gctx, productID)
		return err
	})
	g.Go(func() error {
		var err error
		match, err = s.source.LoadMatch(gctx, productID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load product artifacts", zap.String("product_id", productID), zap.Error(err))
		return nil, fmt.Errorf("get product %s: %w", productID, err)
	}

	detail := &domain.ProductDetail{
		RunID:     domain.LatestRunID,
		ExportRow: s.fixExportRowImages(row),
	}
	if checkpoint != nil {
		detail.Raw = checkpoint.Raw.MapImageURLs(s.rewriter.Fix)
		detail.Inference = checkpoint.Inference
	}
	if match != nil {
		detail.Match = *match
	}

	return detail, nil
}

func (s *DashboardService) loadIndex(ctx context.Context) (*productIndex, error) {
	rows, err := s.source.ReadExportRows(ctx)
	if err != nil {
		return nil, err
	}
	return buildProductIndex(rows), nil
}

func (s *DashboardService) summarize(row domain.ExportRow, runID string) domain.ProductSummary {
	return domain.ProductSummary{
		ProductInternalID: row.ProductID(),
		RunID:             runID,
		Brand:             row.Get(domain.ColumnBrand),
		ProductName:       row.Get(domain.ColumnProductName),
		NeedsReview:       row.Get(domain.ColumnNeedsReview),
		MatchFound:        parseMatchFound(row.Get(domain.ColumnMatchFound)),
		MatchConfidence:   parseConfidence(row.Get(domain.ColumnMatchConfidence)),
		MainImageURL:      s.rewriter.Fix(row.Get(domain.ColumnMainImageURL)),
		SupplierURL:       row.Get(domain.ColumnSupplierURL),
		CostPrice:         row.Get(domain.ColumnCostPrice),
		CompareToPrice:    row.Get(domain.ColumnCompareToPrice),
	}
}

// fixExportRowImages rewrites every column whose name contains "image_url"
func (s *DashboardService) fixExportRowImages(row domain.ExportRow) domain.ExportRow {
	return row.MapColumns(func(column, value string) string {
		if strings.Contains(column, "image_url") {
			return s.rewriter.Fix(value)
		}
		return value
	})
}

// parseMatchFound accepts the spreadsheet literal "TRUE" and the boolean literal "true"
func parseMatchFound(v string) bool {
	return v == "TRUE" || v == "true"
}

// parseConfidence parses a confidence cell, yielding 0 for anything non-numeric
func parseConfidence(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
