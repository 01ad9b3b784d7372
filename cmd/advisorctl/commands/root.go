// Package commands implements advisorctl, an operator CLI for checking
// mention extraction and review matching without running the server, and
// for chatting with the assistant in a terminal.
package commands

import (
	"encoding/json"
	"io"

	"github.com/hairstory/backend/internal/logging"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	catalogPath  string
	fallbackPath string
	verbose      bool
}

// NewRootCommand builds the advisorctl command tree
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "advisorctl",
		Short: "Inspect the Hairstory recommendation pipeline",
		Long: `advisorctl runs the product mention extractor and the review matcher
against the configured catalog and vector indexes, printing JSON results.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			logging.Setup(logging.Config{
				Level:       level,
				Format:      "console",
				Output:      cmd.ErrOrStderr(),
				ServiceName: "advisorctl",
			})
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "data/enhanced_products.json", "product catalog path")
	cmd.PersistentFlags().StringVar(&opts.fallbackPath, "catalog-fallback", "data/all_products.json", "catalog used when --catalog is missing")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newChatCommand(opts),
		newExtractCommand(opts),
		newProductsCommand(opts),
		newReviewsCommand(opts),
	)

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
