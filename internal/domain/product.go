package domain

// Product is a sellable item from the static Hairstory catalog
type Product struct {
	Name                string   `json:"name"`
	Subtitle            string   `json:"subtitle,omitempty"`
	URL                 string   `json:"url,omitempty"`
	ImageURL            string   `json:"image_url,omitempty"`
	Type                string   `json:"type,omitempty"` // "singleton" or "bundle"
	Category            string   `json:"category,omitempty"`
	HairTypes           []string `json:"hair_types,omitempty"`
	UseCases            []string `json:"use_cases,omitempty"`
	Details             string   `json:"details,omitempty"`
	Benefits            string   `json:"benefits,omitempty"`
	HowToUse            string   `json:"how_to_use,omitempty"`
	EnhancedDescription string   `json:"enhanced_description,omitempty"`
}

// ProductMention is a catalog product judged to be actively recommended in a
// generated response
type ProductMention struct {
	Name       string `json:"name"`
	ImageURL   string `json:"image_url"`
	ProductURL string `json:"product_url"`
}

// MentionFromProduct builds a mention carrying the product's canonical name
func MentionFromProduct(p Product) ProductMention {
	return ProductMention{
		Name:       p.Name,
		ImageURL:   p.ImageURL,
		ProductURL: p.URL,
	}
}

// RelevantProduct is a catalog entry returned by semantic product search
type RelevantProduct struct {
	Name            string  `json:"name"`
	Subtitle        string  `json:"subtitle,omitempty"`
	URL             string  `json:"url,omitempty"`
	Type            string  `json:"type,omitempty"`
	Details         string  `json:"details,omitempty"`
	Benefits        string  `json:"benefits,omitempty"`
	HowToUse        string  `json:"how_to_use,omitempty"`
	SimilarityScore float64 `json:"similarity_score"`
}
