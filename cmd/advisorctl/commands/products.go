package commands

import (
	"fmt"

	"github.com/hairstory/backend/internal/catalog"
	"github.com/spf13/cobra"
)

type productSummary struct {
	Name     string   `json:"name"`
	Category string   `json:"category,omitempty"`
	Type     string   `json:"type,omitempty"`
	Aliases  []string `json:"aliases,omitempty"`
}

func newProductsCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the products and aliases the extractor recognizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(root.catalogPath, root.fallbackPath)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}

			products := cat.Products()
			out := make([]productSummary, 0, len(products))
			for _, p := range products {
				out = append(out, productSummary{
					Name:     p.Name,
					Category: p.Category,
					Type:     p.Type,
					Aliases:  cat.Aliases(p.Name),
				})
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}
