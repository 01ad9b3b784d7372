package usecase

import (
	"strings"

	"github.com/hairstory/backend/internal/catalog"
	"github.com/hairstory/backend/internal/domain"
)

var testProductNames = []string{
	"New Wash Method for All Hair Types",
	"New Wash Original",
	"New Wash Original 8oz Refill",
	"New Wash Rich",
	"New Wash Deep Clean",
	"Pre-Wash",
	"Bond Boost for New Wash",
	"Bond Serum",
	"Hair Balm",
	"Oil",
	"Wax",
	"Powder",
	"Massaging Scalp Brush",
	"New Wash Dispenser with Pump",
}

func newTestCatalog() *catalog.Catalog {
	products := make([]domain.Product, 0, len(testProductNames))
	for _, name := range testProductNames {
		slug := strings.ToLower(strings.ReplaceAll(name, " ", "-"))
		products = append(products, domain.Product{
			Name:     name,
			Subtitle: name + " subtitle",
			URL:      "https://hairstory.com/products/" + slug,
			ImageURL: "https://cdn.hairstory.com/" + slug + ".jpg",
			Category: "cleansing",
		})
	}
	return catalog.New(products)
}

func mentionNames(mentions []domain.ProductMention) []string {
	names := make([]string, len(mentions))
	for i, m := range mentions {
		names[i] = m.Name
	}
	return names
}
