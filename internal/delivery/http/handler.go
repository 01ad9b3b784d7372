package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hairstory/backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// Version is reported by the health check
const Version = "1.0.0"

// maxMentionTextLength bounds the text accepted by the mentions endpoint
const maxMentionTextLength = 20000

// ChatService runs one conversation turn
type ChatService interface {
	Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error)
}

// MentionExtractor finds recommended catalog products in text
type MentionExtractor interface {
	Extract(text string) []domain.ProductMention
}

// ReviewMatcher fetches review snippets for products
type ReviewMatcher interface {
	FetchReviews(ctx context.Context, names []string, maxPerProduct int) map[string][]domain.ReviewSnippet
}

// ProductCatalog lists catalog products
type ProductCatalog interface {
	Products() []domain.Product
}

// Handler holds dependencies for HTTP handlers. Any of them may be nil, in
// which case the matching endpoints report 503.
type Handler struct {
	chat     ChatService
	mentions MentionExtractor
	reviews  ReviewMatcher
	catalog  ProductCatalog
}

// NewHandler creates a new HTTP handler
func NewHandler(chat ChatService, mentions MentionExtractor, reviews ReviewMatcher, catalog ProductCatalog) *Handler {
	return &Handler{
		chat:     chat,
		mentions: mentions,
		reviews:  reviews,
		catalog:  catalog,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	products := 0
	if h.catalog != nil {
		products = len(h.catalog.Products())
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "hairstory-backend",
		"version":  Version,
		"products": products,
		"reviews":  h.reviews != nil,
	})
}

// Chat handles a conversation turn
func (h *Handler) Chat(c *gin.Context) {
	if h.chat == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "chat service not configured"})
		return
	}

	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.ConversationHistory) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversation_history is required"})
		return
	}

	resp, err := h.chat.Chat(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// MentionsRequest is the body of the mentions endpoint
type MentionsRequest struct {
	Text string `json:"text"`
}

// ExtractMentions returns the catalog products recommended in a text
func (h *Handler) ExtractMentions(c *gin.Context) {
	if h.mentions == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "mention extraction not configured"})
		return
	}

	var req MentionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.Text) > maxMentionTextLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is too long"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": h.mentions.Extract(req.Text)})
}

// ReviewsRequest is the body of the reviews endpoint
type ReviewsRequest struct {
	Products      []string `json:"products"`
	MaxPerProduct int      `json:"max_per_product"`
}

// FetchReviews returns review snippets for the requested products
func (h *Handler) FetchReviews(c *gin.Context) {
	if h.reviews == nil {
		h.respondError(c, domain.ErrReviewsDisabled)
		return
	}

	var req ReviewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	names := make([]string, 0, len(req.Products))
	for _, p := range req.Products {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	if len(names) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "products is required"})
		return
	}
	if req.MaxPerProduct < 0 || req.MaxPerProduct > 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_per_product must be between 0 and 10"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": h.reviews.FetchReviews(c.Request.Context(), names, req.MaxPerProduct)})
}

// ListProducts returns the catalog
func (h *Handler) ListProducts(c *gin.Context) {
	if h.catalog == nil {
		h.respondError(c, domain.ErrCatalogUnavailable)
		return
	}

	products := h.catalog.Products()
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// respondError maps domain errors to status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrReviewsDisabled), errors.Is(err, domain.ErrCatalogUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "upstream rate limit exceeded, please retry later"})
	case errors.Is(err, domain.ErrCompletion), errors.Is(err, domain.ErrEmbedding), errors.Is(err, domain.ErrSearch):
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream service failed"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
	default:
		log.Error().Err(err).Str("request_id", RequestID(c)).Msg("[HTTP] unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
