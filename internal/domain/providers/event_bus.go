package providers

import (
	"context"

	"github.com/zatekoja/feedback-insights/internal/domain/entities"
)

// EventChannelFeedbackUpdates carries invalidation events for every mutating
// feedback write.
const EventChannelFeedbackUpdates = "feedback:updates"

// EventBus distributes feedback mutation events to interested consumers,
// primarily cache invalidation.
type EventBus interface {
	// Publish sends an event to all subscribers of a channel.
	Publish(ctx context.Context, channel string, event *entities.FeedbackEvent) error

	// Subscribe returns a channel of events; it is closed when ctx is done.
	Subscribe(ctx context.Context, channel string) (<-chan *entities.FeedbackEvent, error)

	// Unsubscribe tears down a channel subscription.
	Unsubscribe(ctx context.Context, channel string) error

	// Close shuts down the bus and all subscriptions.
	Close() error
}
