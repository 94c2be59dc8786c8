package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/matchboard/backend/config"
	httpDelivery "github.com/matchboard/backend/internal/delivery/http"
	"github.com/matchboard/backend/internal/infrastructure/filestore"
	"github.com/matchboard/backend/internal/infrastructure/logging"
	"github.com/matchboard/backend/internal/infrastructure/ratelimit"
	"github.com/matchboard/backend/internal/usecase"
)

const visitorIdleTTL = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Server.Environment, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("starting matchboard backend",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("data_root", cfg.Data.Root))

	// Initialize infrastructure dependencies
	store := filestore.NewStore(cfg.Data.Root, cfg.Data.RunsLog, cfg.Data.ExportFile)
	if _, err := os.Stat(store.Root()); err != nil {
		logger.Warn("data root not readable yet; endpoints will return empty results until it appears",
			zap.String("root", store.Root()), zap.Error(err))
	}

	var limiter *ratelimit.VisitorLimiter
	if cfg.RateLimit.PerIP > 0 {
		limiter = ratelimit.NewVisitorLimiter(cfg.RateLimit.PerIP, visitorIdleTTL)
		defer limiter.Close()
		logger.Info("rate limiting enabled", zap.Int("per_ip_per_minute", cfg.RateLimit.PerIP))
	}

	// Initialize usecase layer
	dashboardService := usecase.NewDashboardService(
		store,
		logger,
		usecase.DashboardServiceConfig{
			DeadImageOrigin:   cfg.Images.DeadOrigin,
			MirrorImageOrigin: cfg.Images.MirrorOrigin,
		},
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(dashboardService, logger.Named("http"))

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, logger.Named("http"), limiter)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func init() {
	// Bootstrap errors are printed before the structured logger exists
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
