// Command matchctl queries pipeline artifacts from the terminal using the same
// aggregation rules as the dashboard API.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matchboard/backend/config"
	"github.com/matchboard/backend/internal/infrastructure/filestore"
	"github.com/matchboard/backend/internal/infrastructure/logging"
	"github.com/matchboard/backend/internal/usecase"
)

// cli carries state shared by all subcommands
type cli struct {
	// Global flags
	dataRoot string
	verbose  bool
	timeout  time.Duration

	out     io.Writer
	logger  *zap.Logger
	service *usecase.DashboardService
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:   "matchctl",
		Short: "Inspect matching pipeline runs and the review queue",
		Long: `matchctl reads the run log, the inventory export and per-product
checkpoint/match artifacts from the data root and prints them as JSON.

Configuration comes from config.yaml, .env and MATCHBOARD_* variables,
exactly like the dashboard server.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&c.dataRoot, "data-root", "d", "", "Data root directory (overrides config)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 30*time.Second, "Operation timeout")

	root.AddCommand(
		c.runsCmd(),
		c.productsCmd(),
		c.productCmd(),
		c.exportCmd(),
	)

	return root
}

// setup loads configuration and wires the dashboard service
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if c.dataRoot != "" {
		cfg.Data.Root = c.dataRoot
	}

	// Keep stdout clean for JSON; the CLI only logs warnings unless verbose
	level := "warn"
	if c.verbose {
		level = "debug"
	}
	c.logger, err = logging.New("production", level)
	if err != nil {
		return err
	}

	store := filestore.NewStore(cfg.Data.Root, cfg.Data.RunsLog, cfg.Data.ExportFile)
	c.service = usecase.NewDashboardService(store, c.logger, usecase.DashboardServiceConfig{
		DeadImageOrigin:   cfg.Images.DeadOrigin,
		MirrorImageOrigin: cfg.Images.MirrorOrigin,
	})
	return nil
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
