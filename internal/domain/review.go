package domain

// Review is a customer review record retrieved from the review corpus
type Review struct {
	ID           string `json:"review_id,omitempty"`
	Content      string `json:"review_content"`
	Score        int    `json:"review_score"` // star rating 1-5
	ProductTitle string `json:"product_title"`
	HairType     string `json:"hair_type,omitempty"`
	HairConcerns string `json:"hair_concerns,omitempty"`
}

// ReviewSnippet is a review selected for display next to a recommendation
type ReviewSnippet struct {
	Content      string  `json:"content"`
	ReviewScore  int     `json:"review_score"`
	QualityScore float64 `json:"quality_score"`
	HairType     string  `json:"hair_type,omitempty"`
	HairConcerns string  `json:"hair_concerns,omitempty"`
}

// VectorMatch is a single nearest-neighbour result from a vector index
type VectorMatch struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
