package commands

import (
	"context"
	"errors"
	"time"

	"github.com/hairstory/backend/internal/app"
	"github.com/hairstory/backend/internal/domain"
	"github.com/spf13/cobra"
)

type reviewsOptions struct {
	maxPerProduct int
	timeout       time.Duration
}

func newReviewsCommand(root *rootOptions) *cobra.Command {
	opts := &reviewsOptions{}

	cmd := &cobra.Command{
		Use:   "reviews <product>...",
		Short: "Fetch quality-filtered review snippets for products",
		Long: `Reviews loads the server configuration, embeds each product name and
prints the review snippets that pass the quality filter.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			components, err := app.Build(ctx, cfg)
			if err != nil {
				return err
			}
			defer components.Close()

			if components.Reviews == nil {
				return domain.ErrReviewsDisabled
			}

			reviews := components.Reviews.FetchReviews(ctx, args, opts.maxPerProduct)
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ctx.Err()
			}
			return writeJSON(cmd.OutOrStdout(), reviews)
		},
	}

	cmd.Flags().IntVarP(&opts.maxPerProduct, "max", "n", 2, "maximum reviews per product")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", time.Minute, "overall timeout")

	return cmd
}
