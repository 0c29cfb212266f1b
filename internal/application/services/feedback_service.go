package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/feedback-insights/internal/domain/entities"
	"github.com/zatekoja/feedback-insights/internal/domain/providers"
	"github.com/zatekoja/feedback-insights/internal/domain/repositories"
	"github.com/zatekoja/feedback-insights/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/feedback-insights/pkg/errors"
)

const (
	recentFeedbackLimit = 100
	searchResultLimit   = 20
	maxFeedbackChars    = 5000
)

// SubmitFeedbackInput carries the caller-supplied fields of a new submission.
type SubmitFeedbackInput struct {
	Text     string `json:"text"`
	Source   string `json:"source"`
	Channel  string `json:"channel"`
	UserTier string `json:"user_tier"`
}

// FeedbackService owns the write path for feedback records plus the bounded
// list and search reads. The classifier, search index, cache and event bus
// are all optional collaborators: a record is never lost because one of them
// is down.
type FeedbackService struct {
	repo       repositories.FeedbackRepository
	classifier providers.ClassifierProvider
	search     providers.SearchProvider
	cache      providers.CacheProvider
	eventBus   providers.EventBus
	metrics    *observability.Metrics
}

// NewFeedbackService creates a new feedback service. All collaborators
// except the repository may be nil.
func NewFeedbackService(
	repo repositories.FeedbackRepository,
	classifier providers.ClassifierProvider,
	search providers.SearchProvider,
	cache providers.CacheProvider,
	eventBus providers.EventBus,
	metrics *observability.Metrics,
) *FeedbackService {
	return &FeedbackService{
		repo:       repo,
		classifier: classifier,
		search:     search,
		cache:      cache,
		eventBus:   eventBus,
		metrics:    metrics,
	}
}

// Submit stores a new feedback record and enriches it with the classifier's
// analysis. Classification is best-effort: the record survives with empty
// analysis fields when the model call fails.
func (s *FeedbackService) Submit(ctx context.Context, input SubmitFeedbackInput) (*entities.FeedbackRecord, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, apperrors.NewValidationError("feedback text is required")
	}
	if len(text) > maxFeedbackChars {
		return nil, apperrors.NewValidationError("feedback text is too long")
	}

	now := time.Now().UTC()
	record := &entities.FeedbackRecord{
		Text:      text,
		Source:    strings.TrimSpace(input.Source),
		Channel:   strings.TrimSpace(input.Channel),
		Status:    entities.StatusToDo,
		UserTier:  strings.TrimSpace(input.UserTier),
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.repo.Insert(ctx, record)
	if err != nil {
		return nil, err
	}
	record.ID = id

	if s.classifier != nil {
		result, err := s.classifier.Classify(ctx, text)
		if err != nil {
			log.Warn().Err(err).Int64("feedback_id", id).Msg("Classification failed, record kept unanalyzed")
		} else if err := s.repo.UpdateAnalysis(ctx, id, result); err != nil {
			log.Error().Err(err).Int64("feedback_id", id).Msg("Failed to persist classification")
		} else {
			analyzedAt := time.Now().UTC()
			record.Tag = result.Tag
			record.Sentiment = &result.Sentiment
			record.UrgencyScore = &result.Urgency
			record.Summary = result.Summary
			record.AnalyzedAt = &analyzedAt
			record.UpdatedAt = analyzedAt
		}
	}

	s.indexRecord(ctx, record)
	s.invalidateAndPublish(ctx, id, entities.FeedbackEventCreated)

	return record, nil
}

// UpdateStatus moves a record to a new workflow state.
func (s *FeedbackService) UpdateStatus(ctx context.Context, id int64, status entities.Status) error {
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.invalidateAndPublish(ctx, id, entities.FeedbackEventUpdated)
	return nil
}

// OverrideSentiment replaces the model-assigned sentiment with a manual one.
func (s *FeedbackService) OverrideSentiment(ctx context.Context, id int64, sentiment float64) error {
	if sentiment < -1 || sentiment > 1 {
		return apperrors.NewValidationError("sentiment must be between -1 and 1")
	}
	if err := s.repo.UpdateSentiment(ctx, id, sentiment); err != nil {
		return err
	}
	s.invalidateAndPublish(ctx, id, entities.FeedbackEventUpdated)
	return nil
}

// EditText rewrites a record's text. The tag is re-derived immediately from
// keywords so the record never shows a stale tag against new text; a full
// re-classification follows when the model is available.
func (s *FeedbackService) EditText(ctx context.Context, id int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return apperrors.NewValidationError("feedback text is required")
	}
	if len(text) > maxFeedbackChars {
		return apperrors.NewValidationError("feedback text is too long")
	}

	if err := s.repo.UpdateText(ctx, id, text, entities.TagFromKeywords(text)); err != nil {
		return err
	}

	if s.classifier != nil {
		if result, err := s.classifier.Classify(ctx, text); err != nil {
			log.Warn().Err(err).Int64("feedback_id", id).Msg("Re-classification failed after text edit")
		} else if err := s.repo.UpdateAnalysis(ctx, id, result); err != nil {
			log.Error().Err(err).Int64("feedback_id", id).Msg("Failed to persist re-classification")
		}
	}

	s.invalidateAndPublish(ctx, id, entities.FeedbackEventUpdated)
	return nil
}

// Delete removes a record everywhere: store, search index, caches.
func (s *FeedbackService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.search != nil {
		if err := s.search.Delete(ctx, id); err != nil {
			log.Warn().Err(err).Int64("feedback_id", id).Msg("Failed to remove record from search index")
		}
	}

	s.invalidateAndPublish(ctx, id, entities.FeedbackEventDeleted)
	return nil
}

// ListRecent returns the working set of most recently touched records.
func (s *FeedbackService) ListRecent(ctx context.Context) ([]entities.FeedbackRecord, error) {
	return s.repo.ListRecent(ctx, recentFeedbackLimit)
}

// Search matches free text against records. The search index answers first;
// when it is absent or failing, the store's own text search takes over.
func (s *FeedbackService) Search(ctx context.Context, query string) ([]entities.FeedbackRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []entities.FeedbackRecord{}, nil
	}

	if s.search != nil {
		records, err := s.search.Search(ctx, query, searchResultLimit)
		if err == nil {
			return records, nil
		}
		log.Warn().Err(err).Str("query", query).Msg("Search index failed, falling back to store")
		if s.metrics != nil {
			observability.RecordSearchFallback(ctx, s.metrics, "index_error")
		}
	} else if s.metrics != nil {
		observability.RecordSearchFallback(ctx, s.metrics, "index_unavailable")
	}

	return s.repo.Search(ctx, query, searchResultLimit)
}

func (s *FeedbackService) indexRecord(ctx context.Context, record *entities.FeedbackRecord) {
	if s.search == nil {
		return
	}
	if err := s.search.Index(ctx, record); err != nil {
		log.Warn().Err(err).Int64("feedback_id", record.ID).Msg("Failed to index record for search")
	}
}

// invalidateAndPublish drops the summary cache and announces the mutation.
// Every mutating write funnels through here so cached reads can never serve
// a summary older than the last write for longer than one request.
func (s *FeedbackService) invalidateAndPublish(ctx context.Context, id int64, eventType entities.FeedbackEventType) {
	if s.cache != nil {
		if err := s.cache.Delete(ctx, SummaryCacheKey); err != nil {
			log.Warn().Err(err).Msg("Failed to invalidate summary cache")
		}
	}

	if s.eventBus != nil {
		event := &entities.FeedbackEvent{
			ID:         uuid.New().String(),
			FeedbackID: id,
			EventType:  eventType,
			OccurredAt: time.Now().UTC(),
		}
		if err := s.eventBus.Publish(ctx, providers.EventChannelFeedbackUpdates, event); err != nil {
			log.Warn().Err(err).Int64("feedback_id", id).Msg("Failed to publish feedback event")
		}
	}
}
