package entities

import "time"

// TagCount is one slice of the tag-distribution aggregate.
type TagCount struct {
	Tag   Tag `json:"tag" db:"tag"`
	Count int `json:"count" db:"count"`
}

// SentimentBucket names a range partition of the sentiment scale.
type SentimentBucket string

const (
	BucketPositive SentimentBucket = "positive"
	BucketNegative SentimentBucket = "negative"
	BucketNeutral  SentimentBucket = "neutral"
)

// ParseSentimentBucket normalizes a bucket label.
func ParseSentimentBucket(value string) (SentimentBucket, bool) {
	switch SentimentBucket(value) {
	case BucketPositive, BucketNegative, BucketNeutral:
		return SentimentBucket(value), true
	}
	return "", false
}

// BucketForSentiment places a sentiment value into exactly one bucket.
// The partition is total and disjoint: > 0.3 positive, < -0.3 negative,
// everything else neutral.
func BucketForSentiment(sentiment float64) SentimentBucket {
	switch {
	case sentiment > 0.3:
		return BucketPositive
	case sentiment < -0.3:
		return BucketNegative
	default:
		return BucketNeutral
	}
}

// SentimentBucketCount is one bar of the sentiment-distribution aggregate.
type SentimentBucketCount struct {
	Bucket SentimentBucket `json:"sentiment_bucket" db:"sentiment_bucket"`
	Count  int             `json:"count" db:"count"`
}

// SummaryReport is the cached dashboard summary: headline aggregates plus an
// optional model-written narrative. Regenerated at most once per cache TTL
// unless a mutating write invalidates it first.
type SummaryReport struct {
	Tags        []TagCount             `json:"tags"`
	Sentiment   []SentimentBucketCount `json:"sentiment"`
	Narrative   string                 `json:"narrative,omitempty"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// StatusTimelinePoint is a per-day per-status count for the workflow
// timeline chart.
type StatusTimelinePoint struct {
	Date   string `json:"date" db:"date"`
	Status Status `json:"status" db:"status"`
	Count  int    `json:"count" db:"count"`
}

// UrgencyImpactPoint backs one bubble of the priority matrix. Impact is the
// absolute sentiment: strong feelings in either direction mean high impact.
type UrgencyImpactPoint struct {
	ID        int64     `json:"id" db:"id"`
	Tag       Tag       `json:"tag" db:"tag"`
	Urgency   float64   `json:"urgency_score" db:"urgency_score"`
	Impact    float64   `json:"impact" db:"impact"`
	Status    Status    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ResolutionTimeRow is the average open-to-last-touch time for one tag.
type ResolutionTimeRow struct {
	Tag      Tag `json:"tag" db:"tag"`
	AvgHours int `json:"avg_hours" db:"avg_hours"`
	Count    int `json:"count" db:"count"`
}

// DailySummaryRow is a per-day volume and average-sentiment roll-up.
type DailySummaryRow struct {
	Date         string   `json:"date" db:"date"`
	Count        int      `json:"count" db:"count"`
	AvgSentiment *float64 `json:"avg_sentiment,omitempty" db:"avg_sentiment"`
}
