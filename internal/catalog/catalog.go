// Package catalog holds the immutable Hairstory product catalog loaded at startup.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/hairstory/backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// Catalog is the read-only product list shared by all requests.
// It is never mutated after construction, so no locking is needed.
type Catalog struct {
	products []domain.Product
	byName   map[string]int // lower-cased canonical name -> index
	aliases  map[string][]string
}

// New builds a catalog from products. Duplicate names (case-insensitive) keep
// the first entry. Curated aliases are attached to the products present.
func New(products []domain.Product) *Catalog {
	c := &Catalog{
		byName:  make(map[string]int, len(products)),
		aliases: make(map[string][]string),
	}

	for _, p := range products {
		key := normalizeName(p.Name)
		if key == "" {
			continue
		}
		if _, dup := c.byName[key]; dup {
			continue
		}
		c.byName[key] = len(c.products)
		c.products = append(c.products, p)
	}

	for name, variants := range curatedAliases {
		key := normalizeName(name)
		if _, ok := c.byName[key]; !ok {
			continue
		}
		for _, v := range variants {
			v = normalizeName(v)
			// An alias equal to another product's name would attribute that
			// product's mentions here.
			if idx, taken := c.byName[v]; taken && normalizeName(c.products[idx].Name) != key {
				continue
			}
			c.aliases[key] = append(c.aliases[key], v)
		}
	}

	return c
}

// Load reads the catalog from the first path that exists
func Load(paths ...string) (*Catalog, error) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Warn().Str("path", path).Msg("[CATALOG] catalog file not found, trying next")
				continue
			}
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}

		var products []domain.Product
		if err := json.Unmarshal(data, &products); err != nil {
			return nil, fmt.Errorf("decode catalog %s: %w", path, err)
		}
		if len(products) == 0 {
			return nil, fmt.Errorf("%w: %s is empty", domain.ErrCatalogUnavailable, path)
		}

		log.Info().Str("path", path).Int("products", len(products)).Msg("[CATALOG] loaded product catalog")
		return New(products), nil
	}

	return nil, domain.ErrCatalogUnavailable
}

// Products returns the catalog entries in load order
func (c *Catalog) Products() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Len returns the number of products
func (c *Catalog) Len() int {
	return len(c.products)
}

// Lookup finds a product by case-insensitive name
func (c *Catalog) Lookup(name string) (domain.Product, bool) {
	idx, ok := c.byName[normalizeName(name)]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[idx], true
}

// Aliases returns the lower-cased curated variants for a product name
func (c *Catalog) Aliases(name string) []string {
	return c.aliases[normalizeName(name)]
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
