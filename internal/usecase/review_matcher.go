package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hairstory/backend/internal/catalog"
	"github.com/hairstory/backend/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Package-level compiled regex patterns for performance
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// Product identity rules
const (
	// IdentitySubset accepts a corpus title containing every word of the product name
	IdentitySubset = "subset"
	// IdentitySpecific also rejects titles that fully name a longer catalog product
	IdentitySpecific = "specific"
)

// Review matcher defaults
const (
	defaultMaxPerProduct     = 2
	defaultPrimaryThreshold  = 4.5
	defaultRelaxedThreshold  = 4.0
	defaultMinReviewScore    = 4
	defaultSearchMultiplier  = 10
	defaultReviewTimeout     = 10 * time.Second
	defaultReviewConcurrency = 4
	defaultEmbeddingCacheTTL = 24 * time.Hour
)

// ReviewConfig holds configuration for the review matcher
type ReviewConfig struct {
	MaxPerProduct     int
	PrimaryThreshold  float64
	RelaxedThreshold  float64
	MinReviewScore    int // star rating
	SearchMultiplier  int // topK = SearchMultiplier * maxPerProduct
	IdentityMode      string
	Timeout           time.Duration // per product
	Concurrency       int
	EmbeddingCacheTTL time.Duration
}

// ReviewMatcher retrieves positive, on-topic review snippets for products
type ReviewMatcher struct {
	embedder     domain.Embedder
	searcher     domain.VectorSearcher
	cache        domain.CacheRepository
	catalogWords [][]string
	cfg          ReviewConfig
}

// NewReviewMatcher creates a review matcher. cache may be nil.
func NewReviewMatcher(
	embedder domain.Embedder,
	searcher domain.VectorSearcher,
	cache domain.CacheRepository,
	c *catalog.Catalog,
	config ReviewConfig,
) *ReviewMatcher {
	if config.MaxPerProduct <= 0 {
		config.MaxPerProduct = defaultMaxPerProduct
	}
	if config.PrimaryThreshold <= 0 {
		config.PrimaryThreshold = defaultPrimaryThreshold
	}
	if config.RelaxedThreshold <= 0 {
		config.RelaxedThreshold = defaultRelaxedThreshold
	}
	if config.MinReviewScore <= 0 {
		config.MinReviewScore = defaultMinReviewScore
	}
	if config.SearchMultiplier <= 0 {
		config.SearchMultiplier = defaultSearchMultiplier
	}
	if config.IdentityMode != IdentitySpecific {
		config.IdentityMode = IdentitySubset
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultReviewTimeout
	}
	if config.Concurrency <= 0 {
		config.Concurrency = defaultReviewConcurrency
	}
	if config.EmbeddingCacheTTL <= 0 {
		config.EmbeddingCacheTTL = defaultEmbeddingCacheTTL
	}

	m := &ReviewMatcher{
		embedder: embedder,
		searcher: searcher,
		cache:    cache,
		cfg:      config,
	}
	if c != nil {
		for _, p := range c.Products() {
			m.catalogWords = append(m.catalogWords, identityWords(p.Name))
		}
	}
	return m
}

// FetchReviews returns up to maxPerProduct snippets for each product name.
// Products without acceptable reviews are omitted. Collaborator failures
// only drop the affected product; the call itself never fails.
func (m *ReviewMatcher) FetchReviews(ctx context.Context, names []string, maxPerProduct int) map[string][]domain.ReviewSnippet {
	results := make(map[string][]domain.ReviewSnippet)
	if m.embedder == nil || m.searcher == nil || len(names) == 0 {
		return results
	}
	if maxPerProduct <= 0 {
		maxPerProduct = m.cfg.MaxPerProduct
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(m.cfg.Concurrency)

	for _, name := range names {
		g.Go(func() error {
			snippets, err := m.reviewsFor(ctx, name, maxPerProduct)
			if err != nil {
				log.Warn().Err(err).Str("product", name).Msg("[REVIEWS] review lookup failed, skipping product")
				return nil
			}
			if len(snippets) == 0 {
				log.Debug().Str("product", name).Msg("[REVIEWS] no reviews passed filters")
				return nil
			}

			mu.Lock()
			results[name] = snippets
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// reviewsFor runs the lookup for one product under its own timeout
func (m *ReviewMatcher) reviewsFor(ctx context.Context, name string, limit int) ([]domain.ReviewSnippet, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	query := fmt.Sprintf("Product: %s", name)
	vector, err := m.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	matches, err := m.searcher.Search(ctx, vector, m.cfg.SearchMultiplier*limit)
	if err != nil {
		return nil, err
	}

	var candidates []domain.Review
	for _, match := range matches {
		review := reviewFromMatch(match)
		if !m.sameProduct(name, review.ProductTitle) {
			continue
		}
		if review.Score < m.cfg.MinReviewScore {
			continue
		}
		if !IsQualityReview(review.Content) {
			continue
		}
		candidates = append(candidates, review)
	}

	snippets := selectSnippets(candidates, m.cfg.PrimaryThreshold, limit)
	if len(snippets) == 0 {
		snippets = selectSnippets(candidates, m.cfg.RelaxedThreshold, limit)
	}

	log.Debug().
		Str("product", name).
		Int("matches", len(matches)).
		Int("candidates", len(candidates)).
		Int("selected", len(snippets)).
		Msg("[REVIEWS] product lookup complete")

	return snippets, nil
}

// embedQuery returns the query embedding, served from cache when possible
func (m *ReviewMatcher) embedQuery(ctx context.Context, query string) ([]float32, error) {
	key := "embedding:" + normalizeForCacheKey(query)

	if m.cache != nil {
		if data, err := m.cache.Get(ctx, key); err == nil {
			var vector []float32
			if err := json.Unmarshal(data, &vector); err == nil && len(vector) > 0 {
				return vector, nil
			}
		}
	}

	vector, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty vector for %q", domain.ErrEmbedding, query)
	}

	if m.cache != nil {
		if data, err := json.Marshal(vector); err == nil {
			if err := m.cache.Set(ctx, key, data, m.cfg.EmbeddingCacheTTL); err != nil {
				log.Debug().Err(err).Str("key", key).Msg("[REVIEWS] failed to cache embedding")
			}
		}
	}

	return vector, nil
}

// sameProduct applies the product-identity rule to a corpus title
func (m *ReviewMatcher) sameProduct(name, title string) bool {
	target := identityWords(name)
	titleWords := identityWords(title)
	if len(target) == 0 || !containsAllWords(titleWords, target) {
		return false
	}

	if m.cfg.IdentityMode == IdentitySpecific {
		for _, other := range m.catalogWords {
			if len(other) > len(target) && !sameWords(other, target) && containsAllWords(titleWords, other) {
				return false
			}
		}
	}
	return true
}

// selectSnippets collects reviews at or above threshold in search order,
// stopping at twice the limit, then keeps the best limit by quality score
func selectSnippets(reviews []domain.Review, threshold float64, limit int) []domain.ReviewSnippet {
	var snippets []domain.ReviewSnippet
	for _, r := range reviews {
		quality := CalculateQualityScore(r.Content, r.Score)
		if quality < threshold {
			continue
		}
		snippets = append(snippets, domain.ReviewSnippet{
			Content:      strings.TrimSpace(r.Content),
			ReviewScore:  r.Score,
			QualityScore: quality,
			HairType:     r.HairType,
			HairConcerns: r.HairConcerns,
		})
		if len(snippets) >= limit*2 {
			break
		}
	}

	sort.SliceStable(snippets, func(i, j int) bool {
		return snippets[i].QualityScore > snippets[j].QualityScore
	})
	if len(snippets) > limit {
		snippets = snippets[:limit]
	}
	return snippets
}

// reviewFromMatch reads review fields from vector metadata
func reviewFromMatch(match domain.VectorMatch) domain.Review {
	md := match.Metadata
	return domain.Review{
		ID:           match.ID,
		Content:      metadataString(md["review_content"]),
		Score:        metadataInt(md["review_score"]),
		ProductTitle: metadataString(md["product_title"]),
		HairType:     metadataString(md["hair_type"]),
		HairConcerns: metadataString(md["hair_concerns"]),
	}
}

func metadataString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, p := range val {
			if s, ok := p.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(val, ", ")
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

func metadataInt(v interface{}) int {
	switch val := v.(type) {
	case float64:
		return int(val)
	case float32:
		return int(val)
	case int:
		return val
	case int64:
		return int(val)
	case json.Number:
		f, _ := val.Float64()
		return int(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		return int(f)
	default:
		return 0
	}
}

// identityWords lower-cases s, strips punctuation and splits on whitespace
func identityWords(s string) []string {
	return strings.Fields(nonAlphanumericRegex.ReplaceAllString(strings.ToLower(s), ""))
}

func containsAllWords(haystack, needles []string) bool {
	set := make(map[string]bool, len(haystack))
	for _, w := range haystack {
		set[w] = true
	}
	for _, w := range needles {
		if !set[w] {
			return false
		}
	}
	return true
}

func sameWords(a, b []string) bool {
	return containsAllWords(a, b) && containsAllWords(b, a)
}

// normalizeForCacheKey normalizes a string for use as cache key component.
// Converts to lowercase, removes special characters, and trims whitespace.
func normalizeForCacheKey(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(s)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}
