package entities

import "time"

// FeedbackEventType describes what kind of mutation produced an event.
type FeedbackEventType string

const (
	FeedbackEventCreated FeedbackEventType = "created"
	FeedbackEventUpdated FeedbackEventType = "updated"
	FeedbackEventDeleted FeedbackEventType = "deleted"
)

// FeedbackEvent is published on every mutating write so cache consumers can
// drop the summary and aggregate caches before the next read.
type FeedbackEvent struct {
	ID         string            `json:"id"`
	FeedbackID int64             `json:"feedback_id"`
	EventType  FeedbackEventType `json:"event_type"`
	OccurredAt time.Time         `json:"occurred_at"`
}
