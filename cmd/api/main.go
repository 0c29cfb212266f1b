package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/feedback-insights/internal/adapters/cache"
	"github.com/zatekoja/feedback-insights/internal/adapters/database"
	"github.com/zatekoja/feedback-insights/internal/adapters/events"
	"github.com/zatekoja/feedback-insights/internal/adapters/search"
	"github.com/zatekoja/feedback-insights/internal/api/handlers"
	"github.com/zatekoja/feedback-insights/internal/api/middleware"
	"github.com/zatekoja/feedback-insights/internal/api/routes"
	"github.com/zatekoja/feedback-insights/internal/application/services"
	"github.com/zatekoja/feedback-insights/internal/domain/providers"
	"github.com/zatekoja/feedback-insights/internal/infrastructure/clients/openai"
	"github.com/zatekoja/feedback-insights/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/feedback-insights/internal/infrastructure/clients/redis"
	"github.com/zatekoja/feedback-insights/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/feedback-insights/internal/infrastructure/observability"
	"github.com/zatekoja/feedback-insights/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Warn().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	// Redis is optional; the application degrades to uncached, eventless
	// operation without it.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis client initialized")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Msg("event bus initialized")
	} else {
		log.Info().Msg("event bus disabled (Redis not available)")
	}

	// Typesense is optional; search falls back to the database.
	var searchProvider providers.SearchProvider
	if cfg.Typesense.URL != "" {
		typesenseClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize Typesense client")
		} else {
			adapter := search.NewTypesenseAdapter(typesenseClient)
			if err := adapter.InitSchema(context.Background()); err != nil {
				log.Warn().Err(err).Msg("failed to init Typesense schema")
			}
			searchProvider = adapter
			log.Info().Msg("Typesense client initialized")
		}
	}

	// The classifier is optional; records stay unanalyzed without it.
	var classifier providers.ClassifierProvider
	if cfg.OpenAI.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set; feedback classification disabled")
	} else {
		openaiClient, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize OpenAI client")
		} else {
			classifier = openaiClient
		}
	}

	// Initialize adapters and services
	feedbackAdapter := database.NewFeedbackAdapter(pgClient, metrics)

	feedbackService := services.NewFeedbackService(
		feedbackAdapter,
		classifier,
		searchProvider,
		cacheProvider,
		eventBus,
		metrics,
	)
	summaryService := services.NewSummaryService(feedbackAdapter, classifier, cacheProvider, metrics)
	analyticsService := services.NewAnalyticsService(feedbackAdapter)

	var cacheInvalidationService *services.CacheInvalidationService
	if cacheProvider != nil && eventBus != nil {
		cacheInvalidationService = services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := cacheInvalidationService.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to start cache invalidation service")
		} else {
			log.Info().Msg("cache invalidation service started")
		}
	}

	// Initialize handlers
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService, cacheProvider)
	viewHandler := handlers.NewViewHandler(feedbackService, summaryService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
		log.Info().Msg("cache middleware initialized")
	}

	router := routes.NewRouter(
		feedbackHandler,
		viewHandler,
		analyticsHandler,
		cacheMiddleware,
		metrics,
	)

	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing event bus")
		}
	}

	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}

	log.Info().Msg("server stopped")
}
