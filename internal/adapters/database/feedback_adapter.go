package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/zatekoja/feedback-insights/internal/domain/entities"
	"github.com/zatekoja/feedback-insights/internal/domain/repositories"
	"github.com/zatekoja/feedback-insights/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/feedback-insights/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/feedback-insights/pkg/errors"
)

const recordColumns = `id, text, source, channel, status, tag, sentiment, urgency_score, summary, user_tier, created_at, updated_at, analyzed_at`

// FeedbackAdapter implements FeedbackRepository on Postgres.
type FeedbackAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

// NewFeedbackAdapter creates a new feedback adapter. Metrics may be nil.
func NewFeedbackAdapter(client *postgres.Client, metrics *observability.Metrics) repositories.FeedbackRepository {
	return &FeedbackAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		metrics: metrics,
	}
}

func (a *FeedbackAdapter) record(ctx context.Context, operation string, start time.Time) {
	if a.metrics != nil {
		observability.RecordDBMetric(ctx, a.metrics, operation, time.Since(start))
	}
}

// Insert stores a new record and returns its assigned id.
func (a *FeedbackAdapter) Insert(ctx context.Context, record *entities.FeedbackRecord) (int64, error) {
	start := time.Now()
	defer a.record(ctx, "feedback.insert", start)

	if record == nil {
		return 0, apperrors.NewValidationError("feedback record is required")
	}

	row := goqu.Record{
		"text":       record.Text,
		"source":     sql.NullString{String: record.Source, Valid: record.Source != ""},
		"channel":    sql.NullString{String: record.Channel, Valid: record.Channel != ""},
		"status":     string(record.Status),
		"user_tier":  sql.NullString{String: record.UserTier, Valid: record.UserTier != ""},
		"created_at": record.CreatedAt,
		"updated_at": record.UpdatedAt,
	}

	query, args, err := a.db.Insert("feedback").Rows(row).Returning("id").ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build feedback insert query", err)
	}

	var id int64
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, apperrors.NewInternalError("failed to insert feedback", err)
	}

	return id, nil
}

// UpdateAnalysis writes the classifier result and stamps analyzed_at.
func (a *FeedbackAdapter) UpdateAnalysis(ctx context.Context, id int64, result *entities.ClassificationResult) error {
	start := time.Now()
	defer a.record(ctx, "feedback.update_analysis", start)

	if result == nil {
		return apperrors.NewValidationError("classification result is required")
	}

	now := time.Now().UTC()
	return a.update(ctx, id, goqu.Record{
		"tag":           string(result.Tag),
		"sentiment":     result.Sentiment,
		"urgency_score": result.Urgency,
		"summary":       sql.NullString{String: result.Summary, Valid: result.Summary != ""},
		"analyzed_at":   now,
		"updated_at":    now,
	})
}

// UpdateStatus moves a record to a new workflow state.
func (a *FeedbackAdapter) UpdateStatus(ctx context.Context, id int64, status entities.Status) error {
	start := time.Now()
	defer a.record(ctx, "feedback.update_status", start)

	return a.update(ctx, id, goqu.Record{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	})
}

// UpdateSentiment overrides the sentiment score of a record.
func (a *FeedbackAdapter) UpdateSentiment(ctx context.Context, id int64, sentiment float64) error {
	start := time.Now()
	defer a.record(ctx, "feedback.update_sentiment", start)

	return a.update(ctx, id, goqu.Record{
		"sentiment":  sentiment,
		"updated_at": time.Now().UTC(),
	})
}

// UpdateText rewrites the feedback text, carrying a re-derived tag with it.
func (a *FeedbackAdapter) UpdateText(ctx context.Context, id int64, text string, tag entities.Tag) error {
	start := time.Now()
	defer a.record(ctx, "feedback.update_text", start)

	return a.update(ctx, id, goqu.Record{
		"text":       text,
		"tag":        string(tag),
		"updated_at": time.Now().UTC(),
	})
}

func (a *FeedbackAdapter) update(ctx context.Context, id int64, row goqu.Record) error {
	query, args, err := a.db.Update("feedback").Set(row).Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build feedback update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update feedback", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to read update result", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("feedback not found")
	}

	return nil
}

// Delete removes a record.
func (a *FeedbackAdapter) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	defer a.record(ctx, "feedback.delete", start)

	query, args, err := a.db.Delete("feedback").Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build feedback delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete feedback", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to read delete result", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("feedback not found")
	}

	return nil
}

// ListRecent returns the most recently touched records, newest first.
func (a *FeedbackAdapter) ListRecent(ctx context.Context, limit int) ([]entities.FeedbackRecord, error) {
	start := time.Now()
	defer a.record(ctx, "feedback.list_recent", start)

	query := `SELECT ` + recordColumns + ` FROM feedback ORDER BY updated_at DESC LIMIT $1`
	return a.queryRecords(ctx, query, limit)
}

// Search matches free text against record bodies, newest first.
func (a *FeedbackAdapter) Search(ctx context.Context, queryText string, limit int) ([]entities.FeedbackRecord, error) {
	start := time.Now()
	defer a.record(ctx, "feedback.search", start)

	query := `SELECT ` + recordColumns + ` FROM feedback WHERE text ILIKE '%' || $1 || '%' ORDER BY created_at DESC LIMIT $2`
	return a.queryRecords(ctx, query, queryText, limit)
}

func (a *FeedbackAdapter) queryRecords(ctx context.Context, query string, args ...interface{}) ([]entities.FeedbackRecord, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query feedback", err)
	}
	defer rows.Close()

	records := []entities.FeedbackRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read feedback rows", err)
	}

	return records, nil
}

func scanRecord(rows *sql.Rows) (entities.FeedbackRecord, error) {
	var record entities.FeedbackRecord
	var source, channel, tag, summary, userTier sql.NullString
	var sentiment, urgency sql.NullFloat64
	var analyzedAt sql.NullTime

	err := rows.Scan(
		&record.ID,
		&record.Text,
		&source,
		&channel,
		&record.Status,
		&tag,
		&sentiment,
		&urgency,
		&summary,
		&userTier,
		&record.CreatedAt,
		&record.UpdatedAt,
		&analyzedAt,
	)
	if err != nil {
		return entities.FeedbackRecord{}, apperrors.NewInternalError("failed to scan feedback row", err)
	}

	record.Source = source.String
	record.Channel = channel.String
	record.Tag = entities.Tag(tag.String)
	record.Summary = summary.String
	record.UserTier = userTier.String
	if sentiment.Valid {
		value := sentiment.Float64
		record.Sentiment = &value
	}
	if urgency.Valid {
		value := urgency.Float64
		record.UrgencyScore = &value
	}
	if analyzedAt.Valid {
		value := analyzedAt.Time
		record.AnalyzedAt = &value
	}

	return record, nil
}

// TagCounts returns the tag distribution over analyzed records.
func (a *FeedbackAdapter) TagCounts(ctx context.Context) ([]entities.TagCount, error) {
	start := time.Now()
	defer a.record(ctx, "feedback.tag_counts", start)

	query := `SELECT tag, COUNT(*) AS count FROM feedback WHERE tag IS NOT NULL GROUP BY tag ORDER BY count DESC`

	rows, err := a.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query tag counts", err)
	}
	defer rows.Close()

	counts := []entities.TagCount{}
	for rows.Next() {
		var row entities.TagCount
		if err := rows.Scan(&row.Tag, &row.Count); err != nil {
			return nil, apperrors.NewInternalError("failed to scan tag count", err)
		}
		counts = append(counts, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read tag counts", err)
	}

	return counts, nil
}

// SentimentBucketCounts partitions analyzed records into the three sentiment
// buckets. Thresholds match the dashboard's bucketing exactly.
func (a *FeedbackAdapter) SentimentBucketCounts(ctx context.Context) ([]entities.SentimentBucketCount, error) {
	start := time.Now()
	defer a.record(ctx, "feedback.sentiment_buckets", start)

	query := `
		SELECT
			CASE
				WHEN sentiment > 0.3 THEN 'positive'
				WHEN sentiment < -0.3 THEN 'negative'
				ELSE 'neutral'
			END AS sentiment_bucket,
			COUNT(*) AS count
		FROM feedback
		WHERE sentiment IS NOT NULL
		GROUP BY sentiment_bucket`

	rows, err := a.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query sentiment buckets", err)
	}
	defer rows.Close()

	counts := []entities.SentimentBucketCount{}
	for rows.Next() {
		var row entities.SentimentBucketCount
		if err := rows.Scan(&row.Bucket, &row.Count); err != nil {
			return nil, apperrors.NewInternalError("failed to scan sentiment bucket", err)
		}
		counts = append(counts, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read sentiment buckets", err)
	}

	return counts, nil
}

// LatestAnalyzed returns snippets of the most recently analyzed records for
// narrative generation.
func (a *FeedbackAdapter) LatestAnalyzed(ctx context.Context, limit int) ([]entities.AnalyzedSnippet, error) {
	start := time.Now()
	defer a.record(ctx, "feedback.latest_analyzed", start)

	query := `
		SELECT text, tag, sentiment
		FROM feedback
		WHERE analyzed_at IS NOT NULL AND tag IS NOT NULL AND sentiment IS NOT NULL
		ORDER BY analyzed_at DESC
		LIMIT $1`

	rows, err := a.client.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query analyzed feedback", err)
	}
	defer rows.Close()

	snippets := []entities.AnalyzedSnippet{}
	for rows.Next() {
		var snippet entities.AnalyzedSnippet
		if err := rows.Scan(&snippet.Text, &snippet.Tag, &snippet.Sentiment); err != nil {
			return nil, apperrors.NewInternalError("failed to scan analyzed feedback", err)
		}
		snippets = append(snippets, snippet)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read analyzed feedback", err)
	}

	return snippets, nil
}

var dimensionColumns = map[repositories.Dimension]string{
	repositories.DimensionTier:    "user_tier",
	repositories.DimensionStatus:  "status",
	repositories.DimensionTag:     "tag",
	repositories.DimensionChannel: "channel",
}

// SentimentByDimension groups sentiment values by one categorical column.
// The dimension is mapped through a fixed column table, never interpolated
// from user input.
func (a *FeedbackAdapter) SentimentByDimension(ctx context.Context, dimension repositories.Dimension) (map[string][]float64, error) {
	start := time.Now()
	defer a.record(ctx, "feedback.sentiment_by_dimension", start)

	column, ok := dimensionColumns[dimension]
	if !ok {
		column = dimensionColumns[repositories.DimensionTier]
	}

	query := `
		SELECT COALESCE(` + column + `, 'unknown') AS dim, sentiment
		FROM feedback
		WHERE sentiment IS NOT NULL`

	rows, err := a.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query sentiment by dimension", err)
	}
	defer rows.Close()

	grouped := map[string][]float64{}
	for rows.Next() {
		var key string
		var sentiment float64
		if err := rows.Scan(&key, &sentiment); err != nil {
			return nil, apperrors.NewInternalError("failed to scan sentiment row", err)
		}
		grouped[key] = append(grouped[key], sentiment)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read sentiment rows", err)
	}

	return grouped, nil
}

// StatusTimeline counts records per day per status, keyed by last touch.
func (a *FeedbackAdapter) StatusTimeline(ctx context.Context) ([]entities.StatusTimelinePoint, error) {
	start := time.Now()
	defer a.record(ctx, "feedback.status_timeline", start)

	query := `
		SELECT TO_CHAR(DATE(updated_at), 'YYYY-MM-DD') AS date, status, COUNT(*) AS count
		FROM feedback
		GROUP BY DATE(updated_at), status
		ORDER BY date`

	rows, err := a.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query status timeline", err)
	}
	defer rows.Close()

	points := []entities.StatusTimelinePoint{}
	for rows.Next() {
		var point entities.StatusTimelinePoint
		if err := rows.Scan(&point.Date, &point.Status, &point.Count); err != nil {
			return nil, apperrors.NewInternalError("failed to scan timeline point", err)
		}
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read timeline points", err)
	}

	return points, nil
}

// UrgencyImpact returns the newest scored records for the priority matrix.
// Impact is the absolute sentiment.
func (a *FeedbackAdapter) UrgencyImpact(ctx context.Context, limit int) ([]entities.UrgencyImpactPoint, error) {
	start := time.Now()
	defer a.record(ctx, "feedback.urgency_impact", start)

	query := `
		SELECT id, tag, urgency_score, ABS(sentiment) AS impact, status, created_at
		FROM feedback
		WHERE urgency_score IS NOT NULL AND sentiment IS NOT NULL AND tag IS NOT NULL
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := a.client.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query urgency impact", err)
	}
	defer rows.Close()

	points := []entities.UrgencyImpactPoint{}
	for rows.Next() {
		var point entities.UrgencyImpactPoint
		if err := rows.Scan(&point.ID, &point.Tag, &point.Urgency, &point.Impact, &point.Status, &point.CreatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan urgency impact point", err)
		}
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read urgency impact points", err)
	}

	return points, nil
}

// ResolutionTimeByTag averages the open-to-last-touch time per tag over
// records that have actually been touched since creation.
func (a *FeedbackAdapter) ResolutionTimeByTag(ctx context.Context) ([]entities.ResolutionTimeRow, error) {
	start := time.Now()
	defer a.record(ctx, "feedback.resolution_time", start)

	query := `
		SELECT tag,
			ROUND(AVG(EXTRACT(EPOCH FROM (updated_at - created_at)) / 3600))::int AS avg_hours,
			COUNT(*) AS count
		FROM feedback
		WHERE tag IS NOT NULL AND updated_at != created_at
		GROUP BY tag
		ORDER BY avg_hours DESC`

	rows, err := a.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query resolution time", err)
	}
	defer rows.Close()

	rowsOut := []entities.ResolutionTimeRow{}
	for rows.Next() {
		var row entities.ResolutionTimeRow
		if err := rows.Scan(&row.Tag, &row.AvgHours, &row.Count); err != nil {
			return nil, apperrors.NewInternalError("failed to scan resolution time row", err)
		}
		rowsOut = append(rowsOut, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read resolution time rows", err)
	}

	return rowsOut, nil
}

// DailySummary counts submissions and averages sentiment per day.
func (a *FeedbackAdapter) DailySummary(ctx context.Context) ([]entities.DailySummaryRow, error) {
	start := time.Now()
	defer a.record(ctx, "feedback.daily_summary", start)

	query := `
		SELECT TO_CHAR(DATE(created_at), 'YYYY-MM-DD') AS date, COUNT(*) AS count, AVG(sentiment) AS avg_sentiment
		FROM feedback
		GROUP BY DATE(created_at)
		ORDER BY date`

	rows, err := a.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query daily summary", err)
	}
	defer rows.Close()

	rowsOut := []entities.DailySummaryRow{}
	for rows.Next() {
		var row entities.DailySummaryRow
		var avg sql.NullFloat64
		if err := rows.Scan(&row.Date, &row.Count, &avg); err != nil {
			return nil, apperrors.NewInternalError("failed to scan daily summary row", err)
		}
		if avg.Valid {
			value := avg.Float64
			row.AvgSentiment = &value
		}
		rowsOut = append(rowsOut, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read daily summary rows", err)
	}

	return rowsOut, nil
}

// FeedbackDates lists the distinct submission dates, oldest first.
func (a *FeedbackAdapter) FeedbackDates(ctx context.Context) ([]string, error) {
	start := time.Now()
	defer a.record(ctx, "feedback.dates", start)

	query := `SELECT DISTINCT TO_CHAR(DATE(created_at), 'YYYY-MM-DD') AS date FROM feedback ORDER BY date`

	rows, err := a.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query feedback dates", err)
	}
	defer rows.Close()

	dates := []string{}
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, apperrors.NewInternalError("failed to scan feedback date", err)
		}
		dates = append(dates, date)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read feedback dates", err)
	}

	return dates, nil
}
