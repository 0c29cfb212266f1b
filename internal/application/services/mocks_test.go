package services_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/zatekoja/feedback-insights/internal/domain/entities"
	"github.com/zatekoja/feedback-insights/internal/domain/providers"
	"github.com/zatekoja/feedback-insights/internal/domain/repositories"
)

// The nilable helpers keep a nil *stub from becoming a non-nil interface
// value when handed to a service constructor.

func nilableClassifier(c *stubClassifier) providers.ClassifierProvider {
	if c == nil {
		return nil
	}
	return c
}

func nilableSearch(s *stubSearch) providers.SearchProvider {
	if s == nil {
		return nil
	}
	return s
}

func nilableCache(m *MockCacheProvider) providers.CacheProvider {
	if m == nil {
		return nil
	}
	return m
}

func nilableBus(m *MockEventBus) providers.EventBus {
	if m == nil {
		return nil
	}
	return m
}

// stubRepository is an in-memory FeedbackRepository for service tests.
type stubRepository struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64]*entities.FeedbackRecord

	insertErr   error
	analysisErr error

	analysisCalls int
}

func newStubRepository() *stubRepository {
	return &stubRepository{
		nextID:  1,
		records: make(map[int64]*entities.FeedbackRecord),
	}
}

func (s *stubRepository) Insert(ctx context.Context, record *entities.FeedbackRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	id := s.nextID
	s.nextID++
	stored := *record
	stored.ID = id
	s.records[id] = &stored
	return id, nil
}

func (s *stubRepository) UpdateAnalysis(ctx context.Context, id int64, result *entities.ClassificationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analysisCalls++
	if s.analysisErr != nil {
		return s.analysisErr
	}
	record, ok := s.records[id]
	if !ok {
		return fmt.Errorf("record %d not found", id)
	}
	record.Tag = result.Tag
	record.Sentiment = &result.Sentiment
	record.UrgencyScore = &result.Urgency
	record.Summary = result.Summary
	return nil
}

func (s *stubRepository) UpdateStatus(ctx context.Context, id int64, status entities.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return fmt.Errorf("record %d not found", id)
	}
	record.Status = status
	return nil
}

func (s *stubRepository) UpdateSentiment(ctx context.Context, id int64, sentiment float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return fmt.Errorf("record %d not found", id)
	}
	record.Sentiment = &sentiment
	return nil
}

func (s *stubRepository) UpdateText(ctx context.Context, id int64, text string, tag entities.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return fmt.Errorf("record %d not found", id)
	}
	record.Text = text
	record.Tag = tag
	return nil
}

func (s *stubRepository) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("record %d not found", id)
	}
	delete(s.records, id)
	return nil
}

func (s *stubRepository) ListRecent(ctx context.Context, limit int) ([]entities.FeedbackRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []entities.FeedbackRecord{}
	for _, record := range s.records {
		out = append(out, *record)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *stubRepository) Search(ctx context.Context, query string, limit int) ([]entities.FeedbackRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []entities.FeedbackRecord{}
	for _, record := range s.records {
		if strings.Contains(strings.ToLower(record.Text), strings.ToLower(query)) {
			out = append(out, *record)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *stubRepository) TagCounts(ctx context.Context) ([]entities.TagCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[entities.Tag]int{}
	for _, record := range s.records {
		if record.Tag != "" {
			counts[record.Tag]++
		}
	}
	out := []entities.TagCount{}
	for tag, count := range counts {
		out = append(out, entities.TagCount{Tag: tag, Count: count})
	}
	return out, nil
}

func (s *stubRepository) SentimentBucketCounts(ctx context.Context) ([]entities.SentimentBucketCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[entities.SentimentBucket]int{}
	for _, record := range s.records {
		if record.Sentiment != nil {
			counts[entities.BucketForSentiment(*record.Sentiment)]++
		}
	}
	out := []entities.SentimentBucketCount{}
	for bucket, count := range counts {
		out = append(out, entities.SentimentBucketCount{Bucket: bucket, Count: count})
	}
	return out, nil
}

func (s *stubRepository) LatestAnalyzed(ctx context.Context, limit int) ([]entities.AnalyzedSnippet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []entities.AnalyzedSnippet{}
	for _, record := range s.records {
		if record.Tag == "" || record.Sentiment == nil {
			continue
		}
		out = append(out, entities.AnalyzedSnippet{
			Text:      record.Text,
			Tag:       record.Tag,
			Sentiment: *record.Sentiment,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *stubRepository) SentimentByDimension(ctx context.Context, dimension repositories.Dimension) (map[string][]float64, error) {
	return map[string][]float64{}, nil
}

func (s *stubRepository) StatusTimeline(ctx context.Context) ([]entities.StatusTimelinePoint, error) {
	return []entities.StatusTimelinePoint{}, nil
}

func (s *stubRepository) UrgencyImpact(ctx context.Context, limit int) ([]entities.UrgencyImpactPoint, error) {
	return []entities.UrgencyImpactPoint{}, nil
}

func (s *stubRepository) ResolutionTimeByTag(ctx context.Context) ([]entities.ResolutionTimeRow, error) {
	return []entities.ResolutionTimeRow{}, nil
}

func (s *stubRepository) DailySummary(ctx context.Context) ([]entities.DailySummaryRow, error) {
	return []entities.DailySummaryRow{}, nil
}

func (s *stubRepository) FeedbackDates(ctx context.Context) ([]string, error) {
	return []string{}, nil
}

// stubClassifier returns canned results, or errors when told to fail.
type stubClassifier struct {
	result        *entities.ClassificationResult
	narrative     string
	fail          bool
	classifyCalls int
	narrateCalls  int
}

func (s *stubClassifier) Classify(ctx context.Context, text string) (*entities.ClassificationResult, error) {
	s.classifyCalls++
	if s.fail {
		return nil, fmt.Errorf("model unavailable")
	}
	if s.result != nil {
		return s.result, nil
	}
	return &entities.ClassificationResult{
		Tag:       entities.TagOther,
		Sentiment: 0,
		Urgency:   0.2,
		Summary:   "summary",
	}, nil
}

func (s *stubClassifier) Narrate(ctx context.Context, latest []entities.AnalyzedSnippet) (string, error) {
	s.narrateCalls++
	if s.fail {
		return "", fmt.Errorf("model unavailable")
	}
	return s.narrative, nil
}

// stubSearch records index/delete calls and serves canned search results.
type stubSearch struct {
	indexed  []int64
	deleted  []int64
	results  []entities.FeedbackRecord
	failSearch bool
}

func (s *stubSearch) InitSchema(ctx context.Context) error { return nil }

func (s *stubSearch) Index(ctx context.Context, record *entities.FeedbackRecord) error {
	s.indexed = append(s.indexed, record.ID)
	return nil
}

func (s *stubSearch) Delete(ctx context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubSearch) Search(ctx context.Context, query string, limit int) ([]entities.FeedbackRecord, error) {
	if s.failSearch {
		return nil, fmt.Errorf("search index down")
	}
	return s.results, nil
}

// MockCacheProvider is an in-memory CacheProvider for testing.
type MockCacheProvider struct {
	mu      sync.RWMutex
	data    map[string][]byte
	deleted []string
}

func NewMockCacheProvider() *MockCacheProvider {
	return &MockCacheProvider{
		data:    make(map[string][]byte),
		deleted: make([]string, 0),
	}
}

func (m *MockCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if val, ok := m.data[key]; ok {
		return val, nil
	}
	return nil, fmt.Errorf("key not found: %s", key)
}

func (m *MockCacheProvider) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCacheProvider) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *MockCacheProvider) DeletePattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.SplitN(pattern, "*", 2)[0]
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			delete(m.data, key)
			m.deleted = append(m.deleted, key)
		}
	}
	return nil
}

func (m *MockCacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *MockCacheProvider) DeletedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.deleted)
}

// MockEventBus is an in-memory EventBus for testing.
type MockEventBus struct {
	mu          sync.Mutex
	subscribers map[string][]chan *entities.FeedbackEvent
	published   []*entities.FeedbackEvent
}

func NewMockEventBus() *MockEventBus {
	return &MockEventBus{
		subscribers: make(map[string][]chan *entities.FeedbackEvent),
		published:   make([]*entities.FeedbackEvent, 0),
	}
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.FeedbackEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, event)
	for _, ch := range m.subscribers[channel] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.FeedbackEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan *entities.FeedbackEvent, 10)
	m.subscribers[channel] = append(m.subscribers[channel], ch)
	return ch, nil
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subscribers[channel] {
		close(ch)
	}
	delete(m.subscribers, channel)
	return nil
}

func (m *MockEventBus) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, channels := range m.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}
	m.subscribers = make(map[string][]chan *entities.FeedbackEvent)
	return nil
}

func (m *MockEventBus) PublishedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.published)
}

func (m *MockEventBus) LastPublished() *entities.FeedbackEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.published) == 0 {
		return nil
	}
	return m.published[len(m.published)-1]
}
