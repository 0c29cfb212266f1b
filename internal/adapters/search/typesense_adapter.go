package search

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/feedback-insights/internal/domain/entities"
	"github.com/zatekoja/feedback-insights/internal/domain/providers"
	tsclient "github.com/zatekoja/feedback-insights/internal/infrastructure/clients/typesense"
)

const collectionName = "feedback"

// TypesenseAdapter implements feedback search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ providers.SearchProvider = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	_, err := a.client.Client().Collection(collectionName).Retrieve(ctx)
	if err == nil {
		return nil // Collection exists
	}

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "text", Type: "string"},
			{Name: "tag", Type: "string", Facet: pointer.True()},
			{Name: "status", Type: "string", Facet: pointer.True()},
			{Name: "user_tier", Type: "string", Facet: pointer.True()},
			{Name: "channel", Type: "string", Facet: pointer.True()},
			{Name: "sentiment", Type: "float"},
			{Name: "created_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	_, err = a.client.Client().Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	return nil
}

// Index upserts a feedback record into the index
func (a *TypesenseAdapter) Index(ctx context.Context, record *entities.FeedbackRecord) error {
	document := buildDocument(record)

	_, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index feedback: %w", err)
	}

	return nil
}

// Delete removes a feedback record from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id int64) error {
	_, err := a.client.Client().Collection(collectionName).Document(strconv.FormatInt(id, 10)).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete feedback from index: %w", err)
	}
	return nil
}

// Search returns matching feedback records, best match first
func (a *TypesenseAdapter) Search(ctx context.Context, query string, limit int) ([]entities.FeedbackRecord, error) {
	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("text"),
		PerPage: pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search feedback: %w", err)
	}

	records := []entities.FeedbackRecord{}
	if result.Hits == nil {
		return records, nil
	}

	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		records = append(records, parseDocument(*hit.Document))
	}

	return records, nil
}

func buildDocument(record *entities.FeedbackRecord) map[string]interface{} {
	return map[string]interface{}{
		"id":         strconv.FormatInt(record.ID, 10),
		"text":       record.Text,
		"tag":        string(record.Tag),
		"status":     string(record.Status),
		"user_tier":  record.TierOrUnknown(),
		"channel":    record.Channel,
		"sentiment":  record.SentimentOrZero(),
		"created_at": record.CreatedAt.Unix(),
	}
}

// parseDocument rebuilds a partial record from a search hit. Typesense
// returns untyped maps, so every cast is checked.
func parseDocument(doc map[string]interface{}) entities.FeedbackRecord {
	var record entities.FeedbackRecord

	if raw, ok := doc["id"].(string); ok {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			record.ID = id
		}
	}
	if text, ok := doc["text"].(string); ok {
		record.Text = text
	}
	if tag, ok := doc["tag"].(string); ok {
		record.Tag = entities.Tag(tag)
	}
	if status, ok := doc["status"].(string); ok {
		record.Status = entities.Status(status)
	}
	if tier, ok := doc["user_tier"].(string); ok && tier != "unknown" {
		record.UserTier = tier
	}
	if channel, ok := doc["channel"].(string); ok {
		record.Channel = channel
	}
	if sentiment, ok := doc["sentiment"].(float64); ok {
		record.Sentiment = &sentiment
	}
	if createdAt, ok := doc["created_at"].(float64); ok {
		record.CreatedAt = time.Unix(int64(createdAt), 0).UTC()
	}

	return record
}
