package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Summary renders a concise, category-grouped description of every product
// for use in the assistant's system instructions. Catalogs without enrichment
// data are grouped by product type instead.
func (c *Catalog) Summary() string {
	enhanced := false
	for _, p := range c.products {
		if p.Category != "" {
			enhanced = true
			break
		}
	}

	var b strings.Builder
	if !enhanced {
		groups, order := c.group(func(i int) string { return orDefault(c.products[i].Type, "other") })
		for _, g := range order {
			fmt.Fprintf(&b, "\n%s PRODUCTS:\n", strings.ToUpper(g))
			for _, i := range groups[g] {
				p := c.products[i]
				fmt.Fprintf(&b, "• %s - %s\n", p.Name, p.Subtitle)
				if p.Benefits != "" {
					fmt.Fprintf(&b, "  Benefits: %s\n", strings.SplitN(p.Benefits, "\n", 2)[0])
				}
			}
		}
		return strings.TrimRight(b.String(), "\n")
	}

	groups, order := c.group(func(i int) string { return orDefault(c.products[i].Category, "other") })
	sort.Strings(order)
	for _, g := range order {
		fmt.Fprintf(&b, "\n%s PRODUCTS:\n", strings.ToUpper(strings.ReplaceAll(g, "_", " ")))
		for _, i := range groups[g] {
			p := c.products[i]
			fmt.Fprintf(&b, "\n• %s\n", p.Name)
			fmt.Fprintf(&b, "  Purpose: %s\n", p.Subtitle)
			if p.EnhancedDescription != "" {
				fmt.Fprintf(&b, "  Description: %s\n", p.EnhancedDescription)
			}
			if len(p.HairTypes) > 0 && !(len(p.HairTypes) == 1 && p.HairTypes[0] == "all") {
				fmt.Fprintf(&b, "  Best For: %s hair\n", strings.Join(p.HairTypes, ", "))
			}
			if len(p.UseCases) > 0 {
				fmt.Fprintf(&b, "  Use Cases: %s\n", strings.Join(p.UseCases, ", "))
			}
			if p.Benefits != "" {
				fmt.Fprintf(&b, "  Key Benefits: %s\n", strings.ReplaceAll(p.Benefits, "\n", "; "))
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// group buckets product indexes by key, returning keys in first-seen order
func (c *Catalog) group(key func(i int) string) (map[string][]int, []string) {
	groups := make(map[string][]int)
	var order []string
	for i := range c.products {
		k := key(i)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}
	return groups, order
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
