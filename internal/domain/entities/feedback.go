package entities

import (
	"strings"
	"time"
)

// Status is the workflow state of a feedback record.
type Status string

const (
	StatusToDo         Status = "To Do"
	StatusInProgress   Status = "in progress"
	StatusToBeReviewed Status = "to be reviewed"
	StatusDone         Status = "done"
)

// ParseStatus normalizes free-form status input into the closed enumeration.
// Unrecognized values are rejected so raw strings never propagate past the
// API boundary.
func ParseStatus(value string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "to do", "todo":
		return StatusToDo, true
	case "in progress":
		return StatusInProgress, true
	case "to be reviewed":
		return StatusToBeReviewed, true
	case "done":
		return StatusDone, true
	}
	return "", false
}

// Tag is the classification category assigned by the model.
type Tag string

const (
	TagBugReport      Tag = "Bug Report"
	TagFeatureRequest Tag = "Feature Request"
	TagUrgent         Tag = "Urgent"
	TagSecurity       Tag = "Security"
	TagPerformance    Tag = "Performance"
	TagPraise         Tag = "Praise"
	TagOther          Tag = "Other"
)

// ParseTag normalizes a tag label into the closed enumeration.
func ParseTag(value string) (Tag, bool) {
	for _, tag := range []Tag{
		TagBugReport, TagFeatureRequest, TagUrgent,
		TagSecurity, TagPerformance, TagPraise, TagOther,
	} {
		if strings.EqualFold(strings.TrimSpace(value), string(tag)) {
			return tag, true
		}
	}
	return "", false
}

// TagFromKeywords maps free-form text onto the closed tag enumeration by
// keyword. It serves two callers: normalizing creative model labels, and
// re-tagging a record when its text is edited without a model round trip.
func TagFromKeywords(text string) Tag {
	normalized := strings.ToLower(text)
	switch {
	case strings.Contains(normalized, "urgent"):
		return TagUrgent
	case strings.Contains(normalized, "feature"):
		return TagFeatureRequest
	case strings.Contains(normalized, "bug"):
		return TagBugReport
	case strings.Contains(normalized, "praise"), strings.Contains(normalized, "love"):
		return TagPraise
	case strings.Contains(normalized, "security"), strings.Contains(normalized, "auth"),
		strings.Contains(normalized, "vulnerability"):
		return TagSecurity
	case strings.Contains(normalized, "performance"), strings.Contains(normalized, "slow"),
		strings.Contains(normalized, "timeout"):
		return TagPerformance
	}
	return TagOther
}

// FeedbackRecord is a single feedback submission with its classification and
// workflow fields. Classification fields stay nil/empty until the model has
// analyzed the text; UpdatedAt is touched on every field-level edit.
type FeedbackRecord struct {
	ID           int64      `json:"id" db:"id"`
	Text         string     `json:"text" db:"text"`
	Source       string     `json:"source" db:"source"`
	Channel      string     `json:"channel" db:"channel"`
	Status       Status     `json:"status" db:"status"`
	Tag          Tag        `json:"tag,omitempty" db:"tag"`
	Sentiment    *float64   `json:"sentiment,omitempty" db:"sentiment"`
	UrgencyScore *float64   `json:"urgency_score,omitempty" db:"urgency_score"`
	Summary      string     `json:"summary,omitempty" db:"summary"`
	UserTier     string     `json:"user_tier,omitempty" db:"user_tier"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	AnalyzedAt   *time.Time `json:"analyzed_at,omitempty" db:"analyzed_at"`
}

// SentimentOrZero returns the record's sentiment, treating a missing value
// as neutral. Filtering and sorting both rely on this convention.
func (r *FeedbackRecord) SentimentOrZero() float64 {
	if r.Sentiment == nil {
		return 0
	}
	return *r.Sentiment
}

// TierOrUnknown returns the user tier, with "unknown" standing in for
// records submitted without one. Grouping dimensions never use the empty
// string as a key.
func (r *FeedbackRecord) TierOrUnknown() string {
	if r.UserTier == "" {
		return "unknown"
	}
	return r.UserTier
}

// ChannelOrUnknown returns the channel, with the same "unknown" placeholder
// the grouping dimensions use for a missing value.
func (r *FeedbackRecord) ChannelOrUnknown() string {
	if r.Channel == "" {
		return "unknown"
	}
	return r.Channel
}
