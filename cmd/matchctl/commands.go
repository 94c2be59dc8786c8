package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matchboard/backend/internal/domain"
	"github.com/matchboard/backend/internal/infrastructure/spreadsheet"
)

func (c *cli) runsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List pipeline runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			runs, err := c.service.ListRuns(ctx)
			if err != nil {
				return err
			}
			return c.printJSON(runs)
		},
	}
}

func (c *cli) productsCmd() *cobra.Command {
	var runID, needsReview string

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List the deduplicated review queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			products, err := c.listProducts(ctx, runID, needsReview)
			if err != nil {
				return err
			}
			return c.printJSON(products)
		},
	}

	cmd.Flags().StringVar(&runID, "run-id", "", "Run id to tag summaries with (default: latest)")
	cmd.Flags().StringVar(&needsReview, "needs-review", "ALL", "Filter by review flag: YES, NO or ALL")
	return cmd
}

func (c *cli) productCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "product [product-id]",
		Short: "Show the merged detail view of one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			detail, err := c.service.GetProductDetail(ctx, args[0])
			if err != nil {
				return err
			}
			return c.printJSON(detail)
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	var runID, needsReview string

	cmd := &cobra.Command{
		Use:     "export [file.xlsx]",
		Short:   "Write the review queue to an XLSX workbook",
		Example: `  matchctl export queue.xlsx --needs-review YES`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			products, err := c.listProducts(ctx, runID, needsReview)
			if err != nil {
				return err
			}

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[0], err)
			}
			if err := spreadsheet.WriteProducts(f, products); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[0], err)
			}

			c.logger.Info("exported review queue", zap.String("file", args[0]), zap.Int("products", len(products)))
			_, err = fmt.Fprintf(c.out, "wrote %d products to %s\n", len(products), args[0])
			return err
		},
	}

	cmd.Flags().StringVar(&runID, "run-id", "", "Run id to tag rows with (default: latest)")
	cmd.Flags().StringVar(&needsReview, "needs-review", "ALL", "Filter by review flag: YES, NO or ALL")
	return cmd
}

func (c *cli) listProducts(ctx context.Context, runID, needsReview string) ([]domain.ProductSummary, error) {
	filter, err := domain.ParseReviewFilter(needsReview)
	if err != nil {
		return nil, err
	}
	return c.service.ListProducts(ctx, domain.ProductQuery{RunID: runID, NeedsReview: filter})
}

func (c *cli) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	if c.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.timeout)
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
