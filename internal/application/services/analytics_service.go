package services

import (
	"context"

	"github.com/zatekoja/feedback-insights/internal/dataview"
	"github.com/zatekoja/feedback-insights/internal/domain/entities"
	"github.com/zatekoja/feedback-insights/internal/domain/repositories"
)

const urgencyImpactLimit = 50

// AnalyticsService serves the per-chart aggregate reads. Each method maps
// to one chart so a failure in one never blocks the others.
type AnalyticsService struct {
	repo repositories.FeedbackRepository
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(repo repositories.FeedbackRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

// SentimentByDimension returns raw sentiment arrays grouped by one
// categorical dimension, for box-plot rendering.
func (s *AnalyticsService) SentimentByDimension(ctx context.Context, dimension repositories.Dimension) (map[string][]float64, error) {
	return s.repo.SentimentByDimension(ctx, dimension)
}

// StatusTimeline returns per-day per-status record counts.
func (s *AnalyticsService) StatusTimeline(ctx context.Context) ([]entities.StatusTimelinePoint, error) {
	return s.repo.StatusTimeline(ctx)
}

// UrgencyImpact returns the newest scored records for the priority matrix.
func (s *AnalyticsService) UrgencyImpact(ctx context.Context) ([]entities.UrgencyImpactPoint, error) {
	return s.repo.UrgencyImpact(ctx, urgencyImpactLimit)
}

// ResolutionTime returns the average open-to-last-touch hours per tag.
func (s *AnalyticsService) ResolutionTime(ctx context.Context) ([]entities.ResolutionTimeRow, error) {
	return s.repo.ResolutionTimeByTag(ctx)
}

// DailySummary returns per-day volume and average sentiment.
func (s *AnalyticsService) DailySummary(ctx context.Context) ([]entities.DailySummaryRow, error) {
	return s.repo.DailySummary(ctx)
}

// FeedbackDates lists the distinct submission dates.
func (s *AnalyticsService) FeedbackDates(ctx context.Context) ([]string, error) {
	return s.repo.FeedbackDates(ctx)
}

// GanttLayout packs the working set of records into timeline rows grouped
// by the requested dimension.
func (s *AnalyticsService) GanttLayout(ctx context.Context, groupBy repositories.Dimension) (*dataview.GanttLayout, error) {
	records, err := s.repo.ListRecent(ctx, recentFeedbackLimit)
	if err != nil {
		return nil, err
	}
	layout := dataview.LayoutGantt(records, groupBy)
	return &layout, nil
}
