package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrEmbedding is returned when the embedding service fails or returns malformed data
	ErrEmbedding = errors.New("embedding request failed")

	// ErrSearch is returned when the vector search service fails
	ErrSearch = errors.New("vector search request failed")

	// ErrCompletion is returned when the chat completion service fails
	ErrCompletion = errors.New("chat completion request failed")

	// ErrRateLimited is returned when a collaborator rejects a request with 429
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCatalogUnavailable is returned when no product catalog could be loaded
	ErrCatalogUnavailable = errors.New("product catalog unavailable")

	// ErrReviewsDisabled is returned when review matching is not configured
	ErrReviewsDisabled = errors.New("review matching disabled")
)
