package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hairstory/backend/internal/catalog"
	"github.com/hairstory/backend/internal/domain"
	"github.com/hairstory/backend/internal/usecase"
	"github.com/spf13/cobra"
)

type extractOptions struct {
	file          string
	sectionMarker string
}

type extractResult struct {
	Products []domain.ProductMention `json:"products"`
}

func newExtractCommand(root *rootOptions) *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract [text]",
		Short: "List the catalog products a recommendation text names",
		Long: `Extract reads a recommendation from the arguments, from --file, or from
stdin when neither is given, and prints the recognized products.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd.InOrStdin(), opts.file, args)
			if err != nil {
				return err
			}

			cat, err := catalog.Load(root.catalogPath, root.fallbackPath)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}

			extractor := usecase.NewMentionExtractor(cat, usecase.MentionConfig{
				SectionMarker: opts.sectionMarker,
				Verbose:       root.verbose,
			})

			return writeJSON(cmd.OutOrStdout(), extractResult{Products: extractor.Extract(text)})
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read the text from a file")
	cmd.Flags().StringVar(&opts.sectionMarker, "section-marker", "", "heading that starts a trailing reviews section")

	return cmd
}

func readText(stdin io.Reader, file string, args []string) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return string(b), nil
	default:
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
}
