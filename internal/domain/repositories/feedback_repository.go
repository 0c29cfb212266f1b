package repositories

import (
	"context"

	"github.com/zatekoja/feedback-insights/internal/domain/entities"
)

// Dimension is a categorical record field usable for grouping aggregates.
type Dimension string

const (
	DimensionTier    Dimension = "tier"
	DimensionStatus  Dimension = "status"
	DimensionTag     Dimension = "tag"
	DimensionChannel Dimension = "channel"
)

// ParseDimension normalizes a dimension query parameter, defaulting to tier.
func ParseDimension(value string) Dimension {
	switch Dimension(value) {
	case DimensionStatus, DimensionTag, DimensionChannel:
		return Dimension(value)
	}
	return DimensionTier
}

// FeedbackRepository is the persistence boundary for feedback records and the
// aggregate queries backing each dashboard chart.
type FeedbackRepository interface {
	// Insert stores a new record and returns its assigned id.
	Insert(ctx context.Context, record *entities.FeedbackRecord) (int64, error)

	// UpdateAnalysis writes the classifier's result and stamps analyzed_at.
	UpdateAnalysis(ctx context.Context, id int64, result *entities.ClassificationResult) error

	// UpdateStatus, UpdateSentiment and UpdateText are independent partial
	// updates; each touches updated_at.
	UpdateStatus(ctx context.Context, id int64, status entities.Status) error
	UpdateSentiment(ctx context.Context, id int64, sentiment float64) error
	UpdateText(ctx context.Context, id int64, text string, tag entities.Tag) error

	// Delete removes a record.
	Delete(ctx context.Context, id int64) error

	// ListRecent returns the working set: the most recently touched records,
	// bounded to limit. Callers must never assume an unbounded set.
	ListRecent(ctx context.Context, limit int) ([]entities.FeedbackRecord, error)

	// Search matches free text against record bodies, newest first.
	Search(ctx context.Context, query string, limit int) ([]entities.FeedbackRecord, error)

	// Aggregate reads backing the dashboard charts.
	TagCounts(ctx context.Context) ([]entities.TagCount, error)
	SentimentBucketCounts(ctx context.Context) ([]entities.SentimentBucketCount, error)
	LatestAnalyzed(ctx context.Context, limit int) ([]entities.AnalyzedSnippet, error)
	SentimentByDimension(ctx context.Context, dimension Dimension) (map[string][]float64, error)
	StatusTimeline(ctx context.Context) ([]entities.StatusTimelinePoint, error)
	UrgencyImpact(ctx context.Context, limit int) ([]entities.UrgencyImpactPoint, error)
	ResolutionTimeByTag(ctx context.Context) ([]entities.ResolutionTimeRow, error)
	DailySummary(ctx context.Context) ([]entities.DailySummaryRow, error)
	FeedbackDates(ctx context.Context) ([]string, error)
}
