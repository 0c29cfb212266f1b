package providers

import (
	"context"

	"github.com/zatekoja/feedback-insights/internal/domain/entities"
)

// SearchProvider is the optional full-text search boundary. When it is
// unavailable or errors, callers fall back to the record store's own search.
type SearchProvider interface {
	// InitSchema ensures the backing collection exists.
	InitSchema(ctx context.Context) error

	// Index upserts a record into the search index.
	Index(ctx context.Context, record *entities.FeedbackRecord) error

	// Delete removes a record from the index.
	Delete(ctx context.Context, id int64) error

	// Search returns matching records, best match first.
	Search(ctx context.Context, query string, limit int) ([]entities.FeedbackRecord, error)
}
