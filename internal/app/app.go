// Package app wires configuration into the running components shared by the
// server and the operator CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/hairstory/backend/config"
	"github.com/hairstory/backend/internal/catalog"
	"github.com/hairstory/backend/internal/domain"
	"github.com/hairstory/backend/internal/infrastructure/cache"
	"github.com/hairstory/backend/internal/infrastructure/events"
	"github.com/hairstory/backend/internal/infrastructure/openai"
	"github.com/hairstory/backend/internal/infrastructure/pgvector"
	"github.com/hairstory/backend/internal/infrastructure/pinecone"
	"github.com/hairstory/backend/internal/usecase"
	"github.com/rs/zerolog/log"
)

// App holds the wired components
type App struct {
	Catalog   *catalog.Catalog
	Extractor *usecase.MentionExtractor
	Reviews   *usecase.ReviewMatcher // nil when review matching is disabled
	Chat      *usecase.ChatService

	closers []func()
}

// searchers holds one vector searcher per corpus; either may be nil
type searchers struct {
	reviews  domain.VectorSearcher
	products domain.VectorSearcher
}

// Build creates every component described by cfg
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	cat, err := catalog.Load(cfg.Catalog.Path, cfg.Catalog.FallbackPath)
	if err != nil {
		if !errors.Is(err, domain.ErrCatalogUnavailable) {
			return nil, err
		}
		log.Error().Err(err).Msg("[APP] no product catalog loaded, recommendations will not name products")
		cat = catalog.New(nil)
	}
	a.Catalog = cat

	a.Extractor = usecase.NewMentionExtractor(cat, usecase.MentionConfig{
		RecommendationWindow: cfg.Matching.RecommendationWindow,
		ComprehensiveWindow:  cfg.Matching.ComprehensiveWindow,
		MaxMentions:          cfg.Matching.MaxMentions,
		MinMentions:          cfg.Matching.MinMentions,
		SectionMarker:        cfg.Matching.SectionMarker,
		Verbose:              cfg.Matching.EnableDebugLogging,
	})

	llm := openai.NewClient(openai.Config{
		APIKey:            cfg.OpenAI.APIKey,
		BaseURL:           cfg.OpenAI.BaseURL,
		ChatModel:         cfg.OpenAI.ChatModel,
		EmbeddingModel:    cfg.OpenAI.EmbeddingModel,
		Timeout:           cfg.OpenAI.Timeout,
		RequestsPerSecond: cfg.OpenAI.RequestsPerSecond,
	})
	productEmbedder := llm.WithEmbeddingModel(cfg.OpenAI.ProductEmbeddingModel)

	vs, err := a.buildSearchers(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	embeddingCache, err := a.buildCache(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Reviews.Enabled && vs.reviews != nil {
		a.Reviews = usecase.NewReviewMatcher(llm, vs.reviews, embeddingCache, cat, usecase.ReviewConfig{
			MaxPerProduct:     cfg.Reviews.MaxPerProduct,
			PrimaryThreshold:  cfg.Reviews.PrimaryThreshold,
			RelaxedThreshold:  cfg.Reviews.RelaxedThreshold,
			MinReviewScore:    cfg.Reviews.MinReviewScore,
			SearchMultiplier:  cfg.Reviews.SearchMultiplier,
			IdentityMode:      cfg.Reviews.IdentityMode,
			Timeout:           cfg.Reviews.Timeout,
			Concurrency:       cfg.Reviews.Concurrency,
			EmbeddingCacheTTL: cfg.Cache.TTL,
		})
	} else {
		log.Info().Msg("[APP] review matching disabled")
	}

	publisher, err := a.buildPublisher(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	deps := usecase.ChatDeps{
		Completer: llm,
		Catalog:   cat,
		Extractor: a.Extractor,
		Reviews:   a.Reviews,
		Publisher: publisher,
	}
	if vs.products != nil {
		deps.Embedder = productEmbedder
		deps.ProductSearcher = vs.products
	}
	a.Chat = usecase.NewChatService(deps, usecase.ChatConfig{
		MaxQuestions:      cfg.Chat.MaxQuestions,
		MaxMessages:       cfg.Chat.MaxMessages,
		ProductSearchTopK: cfg.Chat.ProductSearchTopK,
		ReviewsEnabled:    a.Reviews != nil,
		ReviewsPerProduct: cfg.Reviews.MaxPerProduct,
		EventSubject:      cfg.Events.Subject,
	})

	return a, nil
}

func (a *App) buildSearchers(ctx context.Context, cfg *config.Config) (searchers, error) {
	var vs searchers

	switch cfg.Vector.Backend {
	case "pgvector":
		store, err := pgvector.New(ctx, cfg.Vector.PostgresURL)
		if err != nil {
			return vs, fmt.Errorf("pgvector: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		vs.reviews = store.Corpus(cfg.Vector.ReviewsTable)
		vs.products = store.Corpus(cfg.Vector.ProductsTable)
		log.Info().Str("reviews", cfg.Vector.ReviewsTable).Str("products", cfg.Vector.ProductsTable).Msg("[APP] using pgvector search")

	default:
		debug := cfg.Server.Environment == "development"
		if cfg.Vector.ReviewsHost != "" {
			c := pinecone.NewClient(cfg.Vector.PineconeAPIKey, cfg.Vector.ReviewsHost, cfg.Vector.Namespace)
			c.SetDebug(debug)
			vs.reviews = c
		}
		if cfg.Vector.ProductsHost != "" {
			c := pinecone.NewClient(cfg.Vector.PineconeAPIKey, cfg.Vector.ProductsHost, cfg.Vector.Namespace)
			c.SetDebug(debug)
			vs.products = c
		}
		log.Info().Bool("reviews", vs.reviews != nil).Bool("products", vs.products != nil).Msg("[APP] using pinecone search")
	}

	return vs, nil
}

func (a *App) buildCache(cfg *config.Config) (domain.CacheRepository, error) {
	if cfg.Cache.Type == "redis" {
		rc, err := cache.NewRedisCache(cache.RedisConfig{URL: cfg.Cache.RedisURL})
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		a.closers = append(a.closers, func() { _ = rc.Close() })
		log.Info().Dur("ttl", cfg.Cache.TTL).Msg("[APP] using redis embedding cache")
		return rc, nil
	}

	mc := cache.NewMemoryCache(cfg.Cache.MaxEntries)
	a.closers = append(a.closers, func() { _ = mc.Close() })
	log.Info().Dur("ttl", cfg.Cache.TTL).Int("max_entries", cfg.Cache.MaxEntries).Msg("[APP] using memory embedding cache")
	return mc, nil
}

func (a *App) buildPublisher(cfg *config.Config) (domain.EventPublisher, error) {
	if cfg.Events.NATSURL == "" {
		return events.LogPublisher{}, nil
	}

	p, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.Token)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, p.Close)
	log.Info().Str("subject", cfg.Events.Subject).Msg("[APP] publishing recommendation events to nats")
	return p, nil
}

// Close releases connections in reverse order of creation
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
