package http

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/matchboard/backend/internal/domain"
	"github.com/matchboard/backend/internal/infrastructure/spreadsheet"
	"github.com/matchboard/backend/internal/usecase"
)

const (
	serviceName    = "matchboard-backend"
	serviceVersion = "1.0.0"

	exportFilename = "review-queue.xlsx"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	dashboardService *usecase.DashboardService
	logger           *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(dashboardService *usecase.DashboardService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// ListRuns handles GET /api/v1/runs
func (h *Handler) ListRuns(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	runs, err := h.dashboardService.ListRuns(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to fetch runs")
		return
	}

	c.JSON(http.StatusOK, runs)
}

// ListProducts handles GET /api/v1/products?run_id=&needs_review=
func (h *Handler) ListProducts(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	products, err := h.queryProducts(c)
	if err != nil {
		h.respondError(c, err, "Failed to fetch products")
		return
	}

	c.JSON(http.StatusOK, products)
}

// ExportProducts handles GET /api/v1/products/export and streams the queue as XLSX
func (h *Handler) ExportProducts(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	products, err := h.queryProducts(c)
	if err != nil {
		h.respondError(c, err, "Failed to fetch products")
		return
	}

	// Render fully before writing headers so a failure can still become a JSON 500
	var buf bytes.Buffer
	if err := spreadsheet.WriteProducts(&buf, products); err != nil {
		h.logger.Error("failed to render review queue", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export products"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	c.Data(http.StatusOK, spreadsheet.ContentType, buf.Bytes())
}

// GetProduct handles GET /api/v1/product/:id
func (h *Handler) GetProduct(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	detail, err := h.dashboardService.GetProductDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to fetch product details")
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *Handler) queryProducts(c *gin.Context) ([]domain.ProductSummary, error) {
	filter, err := domain.ParseReviewFilter(c.Query("needs_review"))
	if err != nil {
		return nil, err
	}

	return h.dashboardService.ListProducts(c.Request.Context(), domain.ProductQuery{
		RunID:       c.Query("run_id"),
		NeedsReview: filter,
	})
}

// ready rejects the request when no dashboard service is wired
func (h *Handler) ready(c *gin.Context) bool {
	if h.dashboardService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Dashboard service not configured",
		})
		return false
	}
	return true
}

// respondError maps domain errors to status codes. Unexpected failures get the
// generic fallback message; details stay in the log.
func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
	default:
		h.logger.Error(fallback,
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
