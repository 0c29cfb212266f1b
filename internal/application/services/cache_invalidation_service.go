package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/feedback-insights/internal/domain/entities"
	"github.com/zatekoja/feedback-insights/internal/domain/providers"
)

// analyticsCachePattern matches every HTTP-cached analytics response.
const analyticsCachePattern = "http:cache:*analytics*"

// CacheInvalidationService drops derived caches whenever a feedback record
// changes. It is the consumer side of the event bus: writes publish, this
// service deletes, the next read rebuilds.
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for events and invalidating cache
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelFeedbackUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to feedback updates: %w", err)
	}

	go s.processEvents(eventChan)
	log.Info().Msg("Cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	log.Info().Msg("Cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.FeedbackEvent) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event := <-eventChan:
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

// handleEvent drops every cache a mutation can stale: the summary report
// and any HTTP-cached analytics response.
func (s *CacheInvalidationService) handleEvent(event *entities.FeedbackEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Debug().
		Str("event_id", event.ID).
		Int64("feedback_id", event.FeedbackID).
		Str("event_type", string(event.EventType)).
		Msg("Processing cache invalidation")

	if err := s.cache.Delete(ctx, SummaryCacheKey); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate summary cache")
	}

	if err := s.cache.DeletePattern(ctx, analyticsCachePattern); err != nil {
		log.Warn().Err(err).Str("pattern", analyticsCachePattern).Msg("Failed to invalidate analytics caches")
	}
}

// InvalidateAll clears every derived cache. Intended for maintenance and
// bulk imports, not the per-write path.
func (s *CacheInvalidationService) InvalidateAll(ctx context.Context) error {
	if err := s.cache.Delete(ctx, SummaryCacheKey); err != nil {
		return fmt.Errorf("failed to invalidate summary cache: %w", err)
	}
	if err := s.cache.DeletePattern(ctx, "http:cache:*"); err != nil {
		return fmt.Errorf("failed to invalidate http caches: %w", err)
	}
	log.Info().Msg("Invalidated all derived caches")
	return nil
}
