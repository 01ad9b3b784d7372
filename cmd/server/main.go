package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hairstory/backend/config"
	"github.com/hairstory/backend/internal/app"
	httpDelivery "github.com/hairstory/backend/internal/delivery/http"
	"github.com/hairstory/backend/internal/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Setup(logging.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "hairstory-backend",
	})

	log.Info().
		Str("version", httpDelivery.Version).
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("cache", cfg.Cache.Type).
		Str("vector_backend", cfg.Vector.Backend).
		Msg("Starting Hairstory Backend")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize components")
	}
	defer components.Close()

	log.Info().
		Int("products", components.Catalog.Len()).
		Bool("reviews", components.Reviews != nil).
		Int("recommendation_window", cfg.Matching.RecommendationWindow).
		Int("comprehensive_window", cfg.Matching.ComprehensiveWindow).
		Bool("debug", cfg.Matching.EnableDebugLogging).
		Msg("Recommendation pipeline ready")

	// A nil *ReviewMatcher must not become a non-nil interface
	var reviews httpDelivery.ReviewMatcher
	if components.Reviews != nil {
		reviews = components.Reviews
	}
	handler := httpDelivery.NewHandler(components.Chat, components.Extractor, reviews, components.Catalog)

	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
