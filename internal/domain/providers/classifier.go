package providers

import (
	"context"

	"github.com/zatekoja/feedback-insights/internal/domain/entities"
)

// ClassifierProvider wraps the hosted language model. Classification is
// best-effort from the caller's perspective: a failed call never blocks
// record creation.
type ClassifierProvider interface {
	// Classify maps feedback text to a normalized classification result.
	Classify(ctx context.Context, text string) (*entities.ClassificationResult, error)

	// Narrate writes a short prose summary of recently analyzed feedback.
	Narrate(ctx context.Context, latest []entities.AnalyzedSnippet) (string, error)
}
