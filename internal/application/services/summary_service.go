package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/feedback-insights/internal/domain/entities"
	"github.com/zatekoja/feedback-insights/internal/domain/providers"
	"github.com/zatekoja/feedback-insights/internal/domain/repositories"
	"github.com/zatekoja/feedback-insights/internal/infrastructure/observability"
)

const (
	// SummaryCacheKey is the single cache entry for the dashboard summary.
	// One key means one invalidation target for every mutating write.
	SummaryCacheKey = "summary:latest"

	// SummaryCacheTTLSeconds bounds how stale an uninvalidated summary can get.
	SummaryCacheTTLSeconds = 300

	narrativeSourceLimit = 25
)

// SummaryService builds the cached dashboard summary: tag and sentiment
// aggregates plus an optional model-written narrative.
type SummaryService struct {
	repo       repositories.FeedbackRepository
	classifier providers.ClassifierProvider
	cache      providers.CacheProvider
	metrics    *observability.Metrics
}

// NewSummaryService creates a new summary service. The classifier and cache
// may be nil.
func NewSummaryService(
	repo repositories.FeedbackRepository,
	classifier providers.ClassifierProvider,
	cache providers.CacheProvider,
	metrics *observability.Metrics,
) *SummaryService {
	return &SummaryService{
		repo:       repo,
		classifier: classifier,
		cache:      cache,
		metrics:    metrics,
	}
}

// GetSummary returns the dashboard summary, serving from cache when a fresh
// copy exists. force skips the cache read but still refreshes it.
func (s *SummaryService) GetSummary(ctx context.Context, force bool) (*entities.SummaryReport, error) {
	if s.cache != nil && !force {
		if data, err := s.cache.Get(ctx, SummaryCacheKey); err == nil {
			var cached entities.SummaryReport
			if err := json.Unmarshal(data, &cached); err == nil {
				if s.metrics != nil {
					observability.RecordCacheHit(ctx, s.metrics, SummaryCacheKey)
				}
				return &cached, nil
			}
			log.Warn().Err(err).Msg("Discarding undecodable cached summary")
		}
		if s.metrics != nil {
			observability.RecordCacheMiss(ctx, s.metrics, SummaryCacheKey)
		}
	}

	report, err := s.buildSummary(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(report); err == nil {
			if err := s.cache.Set(ctx, SummaryCacheKey, data, SummaryCacheTTLSeconds); err != nil {
				log.Warn().Err(err).Msg("Failed to cache summary")
			}
		}
	}

	return report, nil
}

// buildSummary assembles the aggregates and, when the model is available,
// the narrative. A failed narrative never fails the summary.
func (s *SummaryService) buildSummary(ctx context.Context) (*entities.SummaryReport, error) {
	tags, err := s.repo.TagCounts(ctx)
	if err != nil {
		return nil, err
	}

	sentiment, err := s.repo.SentimentBucketCounts(ctx)
	if err != nil {
		return nil, err
	}

	report := &entities.SummaryReport{
		Tags:        tags,
		Sentiment:   sentiment,
		GeneratedAt: time.Now().UTC(),
	}

	if s.classifier != nil {
		latest, err := s.repo.LatestAnalyzed(ctx, narrativeSourceLimit)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load analyzed feedback for narrative")
			return report, nil
		}
		if len(latest) == 0 {
			return report, nil
		}

		narrative, err := s.classifier.Narrate(ctx, latest)
		if err != nil {
			log.Warn().Err(err).Msg("Narrative generation failed, summary served without it")
			return report, nil
		}
		report.Narrative = narrative
	}

	return report, nil
}
