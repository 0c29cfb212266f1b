package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zatekoja/feedback-insights/internal/application/services"
	"github.com/zatekoja/feedback-insights/internal/domain/entities"
	apperrors "github.com/zatekoja/feedback-insights/pkg/errors"
)

func newFeedbackService(repo *stubRepository, classifier *stubClassifier, search *stubSearch, cache *MockCacheProvider, bus *MockEventBus) *services.FeedbackService {
	return services.NewFeedbackService(repo, nilableClassifier(classifier), nilableSearch(search), nilableCache(cache), nilableBus(bus), nil)
}

func TestFeedbackService_Submit(t *testing.T) {
	repo := newStubRepository()
	classifier := &stubClassifier{
		result: &entities.ClassificationResult{
			Tag:       entities.TagBugReport,
			Sentiment: -0.6,
			Urgency:   0.7,
			Summary:   "Checkout crashes",
		},
	}
	search := &stubSearch{}
	cache := NewMockCacheProvider()
	bus := NewMockEventBus()
	service := newFeedbackService(repo, classifier, search, cache, bus)

	record, err := service.Submit(context.Background(), services.SubmitFeedbackInput{
		Text:    "  Checkout crashes when I apply a coupon  ",
		Channel: "web",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), record.ID)
	assert.Equal(t, "Checkout crashes when I apply a coupon", record.Text)
	assert.Equal(t, entities.StatusToDo, record.Status)
	assert.Equal(t, entities.TagBugReport, record.Tag)
	if assert.NotNil(t, record.Sentiment) {
		assert.Equal(t, -0.6, *record.Sentiment)
	}
	assert.NotNil(t, record.AnalyzedAt)

	assert.Equal(t, []int64{1}, search.indexed)
	assert.Equal(t, 1, bus.PublishedCount())
	assert.Equal(t, entities.FeedbackEventCreated, bus.LastPublished().EventType)
}

func TestFeedbackService_SubmitEmptyTextRejected(t *testing.T) {
	service := newFeedbackService(newStubRepository(), nil, nil, nil, nil)

	_, err := service.Submit(context.Background(), services.SubmitFeedbackInput{Text: "   "})

	var appErr *apperrors.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
}

func TestFeedbackService_SubmitSurvivesClassifierFailure(t *testing.T) {
	repo := newStubRepository()
	classifier := &stubClassifier{fail: true}
	service := newFeedbackService(repo, classifier, nil, nil, nil)

	record, err := service.Submit(context.Background(), services.SubmitFeedbackInput{Text: "hello"})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), record.ID)
	// The record persists with classification fields left unset.
	assert.Empty(t, record.Tag)
	assert.Nil(t, record.Sentiment)
	assert.Nil(t, record.AnalyzedAt)
	assert.Equal(t, 1, classifier.classifyCalls)
}

func TestFeedbackService_SubmitWorksWithoutClassifier(t *testing.T) {
	repo := newStubRepository()
	service := newFeedbackService(repo, nil, nil, nil, nil)

	record, err := service.Submit(context.Background(), services.SubmitFeedbackInput{Text: "hello"})

	assert.NoError(t, err)
	assert.Empty(t, record.Tag)
}

func TestFeedbackService_MutationsInvalidateSummaryCache(t *testing.T) {
	repo := newStubRepository()
	cache := NewMockCacheProvider()
	bus := NewMockEventBus()
	service := newFeedbackService(repo, nil, nil, cache, bus)

	ctx := context.Background()
	record, err := service.Submit(ctx, services.SubmitFeedbackInput{Text: "hello"})
	assert.NoError(t, err)

	seed := func() {
		assert.NoError(t, cache.Set(ctx, services.SummaryCacheKey, []byte("cached"), 300))
	}

	seed()
	assert.NoError(t, service.UpdateStatus(ctx, record.ID, entities.StatusDone))
	_, err = cache.Get(ctx, services.SummaryCacheKey)
	assert.Error(t, err, "status update must drop the summary cache")

	seed()
	assert.NoError(t, service.OverrideSentiment(ctx, record.ID, 0.4))
	_, err = cache.Get(ctx, services.SummaryCacheKey)
	assert.Error(t, err, "sentiment update must drop the summary cache")

	seed()
	assert.NoError(t, service.EditText(ctx, record.ID, "new text"))
	_, err = cache.Get(ctx, services.SummaryCacheKey)
	assert.Error(t, err, "text edit must drop the summary cache")

	seed()
	assert.NoError(t, service.Delete(ctx, record.ID))
	_, err = cache.Get(ctx, services.SummaryCacheKey)
	assert.Error(t, err, "delete must drop the summary cache")

	// submit + 4 mutations
	assert.Equal(t, 5, bus.PublishedCount())
	assert.Equal(t, entities.FeedbackEventDeleted, bus.LastPublished().EventType)
}

func TestFeedbackService_OverrideSentimentValidatesRange(t *testing.T) {
	repo := newStubRepository()
	service := newFeedbackService(repo, nil, nil, nil, nil)

	record, err := service.Submit(context.Background(), services.SubmitFeedbackInput{Text: "hello"})
	assert.NoError(t, err)

	assert.Error(t, service.OverrideSentiment(context.Background(), record.ID, 1.5))
	assert.Error(t, service.OverrideSentiment(context.Background(), record.ID, -2))
	assert.NoError(t, service.OverrideSentiment(context.Background(), record.ID, -1))
}

func TestFeedbackService_EditTextRetagsByKeyword(t *testing.T) {
	repo := newStubRepository()
	service := newFeedbackService(repo, nil, nil, nil, nil)

	record, err := service.Submit(context.Background(), services.SubmitFeedbackInput{Text: "hello"})
	assert.NoError(t, err)

	assert.NoError(t, service.EditText(context.Background(), record.ID, "the app is painfully slow"))

	assert.Equal(t, entities.TagPerformance, repo.records[record.ID].Tag)
	assert.Equal(t, "the app is painfully slow", repo.records[record.ID].Text)
}

func TestFeedbackService_DeleteRemovesFromSearchIndex(t *testing.T) {
	repo := newStubRepository()
	search := &stubSearch{}
	service := newFeedbackService(repo, nil, search, nil, nil)

	record, err := service.Submit(context.Background(), services.SubmitFeedbackInput{Text: "hello"})
	assert.NoError(t, err)

	assert.NoError(t, service.Delete(context.Background(), record.ID))
	assert.Equal(t, []int64{record.ID}, search.deleted)
}

func TestFeedbackService_SearchEmptyQueryShortCircuits(t *testing.T) {
	repo := newStubRepository()
	search := &stubSearch{results: []entities.FeedbackRecord{{ID: 1}}}
	service := newFeedbackService(repo, nil, search, nil, nil)

	records, err := service.Search(context.Background(), "   ")

	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestFeedbackService_SearchPrefersIndex(t *testing.T) {
	repo := newStubRepository()
	search := &stubSearch{results: []entities.FeedbackRecord{{ID: 42, Text: "from index"}}}
	service := newFeedbackService(repo, nil, search, nil, nil)

	records, err := service.Search(context.Background(), "index")

	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, int64(42), records[0].ID)
}

func TestFeedbackService_SearchFallsBackToStore(t *testing.T) {
	repo := newStubRepository()
	search := &stubSearch{failSearch: true}
	service := newFeedbackService(repo, nil, search, nil, nil)

	_, err := service.Submit(context.Background(), services.SubmitFeedbackInput{Text: "login is broken"})
	assert.NoError(t, err)

	records, err := service.Search(context.Background(), "login")

	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "login is broken", records[0].Text)
}
