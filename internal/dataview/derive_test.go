package dataview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/zatekoja/feedback-insights/internal/domain/entities"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	assert.NoError(t, err)
	return parsed
}

func record(id int64, status entities.Status, tag entities.Tag, sentiment float64, created, updated time.Time) entities.FeedbackRecord {
	return entities.FeedbackRecord{
		ID:        id,
		Status:    status,
		Tag:       tag,
		Sentiment: &sentiment,
		CreatedAt: created,
		UpdatedAt: updated,
	}
}

func twoRecords(t *testing.T) []entities.FeedbackRecord {
	return []entities.FeedbackRecord{
		record(1, entities.StatusToDo, entities.TagBugReport, 0.5, day(t, "2024-01-01"), day(t, "2024-01-01")),
		record(2, entities.StatusDone, entities.TagPraise, 0.8, day(t, "2024-01-02"), day(t, "2024-01-05")),
	}
}

func TestDerivePage_PositiveDescOrder(t *testing.T) {
	view := NewViewState()
	view.SortKey = SortPositiveDesc

	page := DerivePage(twoRecords(t), &view)

	assert.Len(t, page.Records, 2)
	assert.Equal(t, int64(2), page.Records[0].ID)
	assert.Equal(t, int64(1), page.Records[1].ID)
}

func TestDerivePage_NegativeDescOrder(t *testing.T) {
	view := NewViewState()
	view.SortKey = SortNegativeDesc

	page := DerivePage(twoRecords(t), &view)

	assert.Equal(t, int64(1), page.Records[0].ID)
	assert.Equal(t, int64(2), page.Records[1].ID)
}

func TestDerivePage_TagFilter(t *testing.T) {
	view := NewViewState()
	view.FilterTag = entities.TagPraise

	page := DerivePage(twoRecords(t), &view)

	assert.Len(t, page.Records, 1)
	assert.Equal(t, int64(2), page.Records[0].ID)
}

func TestDerivePage_SentimentBucketBoundaries(t *testing.T) {
	records := []entities.FeedbackRecord{
		record(1, entities.StatusToDo, entities.TagOther, 0.2, day(t, "2024-01-01"), day(t, "2024-01-01")),
		record(2, entities.StatusToDo, entities.TagOther, 0.35, day(t, "2024-01-01"), day(t, "2024-01-01")),
		record(3, entities.StatusToDo, entities.TagOther, -0.3, day(t, "2024-01-01"), day(t, "2024-01-01")),
	}

	view := NewViewState()
	view.FilterSentiment = entities.BucketNeutral
	page := DerivePage(records, &view)

	// 0.2 and -0.3 are within [-0.3, 0.3]; 0.35 is not.
	ids := []int64{}
	for _, r := range page.Records {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []int64{1, 3}, ids)
}

func TestDerivePage_BucketPartitionIsTotalAndDisjoint(t *testing.T) {
	sentiments := []float64{-1, -0.31, -0.3, -0.1, 0, 0.3, 0.301, 0.9, 1}

	for _, sentiment := range sentiments {
		hits := 0
		for _, bucket := range []entities.SentimentBucket{
			entities.BucketPositive, entities.BucketNegative, entities.BucketNeutral,
		} {
			if entities.BucketForSentiment(sentiment) == bucket {
				hits++
			}
		}
		assert.Equal(t, 1, hits, "sentiment %f must fall into exactly one bucket", sentiment)
	}
}

func TestDerivePage_MissingSentimentTreatedAsNeutral(t *testing.T) {
	noSentiment := entities.FeedbackRecord{
		ID:        9,
		Status:    entities.StatusToDo,
		CreatedAt: day(t, "2024-01-01"),
		UpdatedAt: day(t, "2024-01-01"),
	}

	view := NewViewState()
	view.FilterSentiment = entities.BucketNeutral
	page := DerivePage([]entities.FeedbackRecord{noSentiment}, &view)

	assert.Len(t, page.Records, 1)
}

func TestDerivePage_SelectionOverridesFilters(t *testing.T) {
	view := NewViewState()
	view.FilterTag = entities.TagPraise
	view.SelectedID = 1

	page := DerivePage(twoRecords(t), &view)

	// id 1 is a Bug Report; the selection wins over the Praise filter.
	assert.Len(t, page.Records, 1)
	assert.Equal(t, int64(1), page.Records[0].ID)
}

func TestDerivePage_FiltersAreConjunctive(t *testing.T) {
	records := twoRecords(t)
	view := NewViewState()
	view.FilterTag = entities.TagPraise
	view.FilterStatus = entities.StatusToDo

	page := DerivePage(records, &view)

	assert.Empty(t, page.Records)
	assert.Equal(t, 1, page.TotalPages)
}

func TestDerivePage_PageSizeZeroTreatedAsOne(t *testing.T) {
	view := NewViewState()
	view.PageSize = 0

	page := DerivePage(twoRecords(t), &view)

	assert.Len(t, page.Records, 1)
	assert.Equal(t, 2, page.TotalPages)
}

func TestDerivePage_NeverExceedsPageSize(t *testing.T) {
	records := []entities.FeedbackRecord{}
	base := day(t, "2024-01-01")
	for i := int64(1); i <= 25; i++ {
		records = append(records, record(i, entities.StatusToDo, entities.TagOther, 0, base, base))
	}

	for _, pageSize := range []int{1, 3, 10, 100} {
		view := NewViewState()
		view.PageSize = pageSize
		page := DerivePage(records, &view)
		assert.LessOrEqual(t, len(page.Records), pageSize)
		assert.NotEmpty(t, page.Records)
	}
}

func TestDerivePage_ClampsOutOfRangePage(t *testing.T) {
	view := NewViewState()
	view.PageSize = 1
	view.CurrentPage = 99

	page := DerivePage(twoRecords(t), &view)

	assert.Equal(t, 2, view.CurrentPage)
	assert.Len(t, page.Records, 1)

	view.CurrentPage = -5
	page = DerivePage(twoRecords(t), &view)
	assert.Equal(t, 1, view.CurrentPage)
	assert.Len(t, page.Records, 1)
}

func TestDerivePage_EmptySetYieldsOnePage(t *testing.T) {
	view := NewViewState()

	page := DerivePage(nil, &view)

	assert.Empty(t, page.Records)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, view.CurrentPage)
}

func TestDerivePage_UnknownSortKeyFallsBack(t *testing.T) {
	assert.Equal(t, DefaultSortKey, ParseSortKey("nonsense"))

	view := NewViewState()
	view.SortKey = SortKey("nonsense")
	page := DerivePage(twoRecords(t), &view)

	// Default ordering is updated_desc: id 2 (Jan 5) before id 1 (Jan 1).
	assert.Equal(t, int64(2), page.Records[0].ID)
}

func TestDerivePage_UpdatedSortFallsBackToCreated(t *testing.T) {
	records := []entities.FeedbackRecord{
		{ID: 1, Status: entities.StatusToDo, CreatedAt: day(t, "2024-02-01")},
		{ID: 2, Status: entities.StatusToDo, CreatedAt: day(t, "2024-01-01"), UpdatedAt: day(t, "2024-03-01")},
	}

	view := NewViewState()
	view.SortKey = SortUpdatedAsc
	page := DerivePage(records, &view)

	// id 1 has no updated_at, so its created_at (Feb) orders against
	// id 2's updated_at (Mar).
	assert.Equal(t, int64(1), page.Records[0].ID)
	assert.Equal(t, int64(2), page.Records[1].ID)
}

func TestDerivePage_EqualKeysOrderById(t *testing.T) {
	base := day(t, "2024-01-01")
	records := []entities.FeedbackRecord{
		record(3, entities.StatusToDo, entities.TagOther, 0.5, base, base),
		record(1, entities.StatusToDo, entities.TagOther, 0.5, base, base),
		record(2, entities.StatusToDo, entities.TagOther, 0.5, base, base),
	}

	view := NewViewState()
	view.SortKey = SortPositiveDesc
	page := DerivePage(records, &view)

	assert.Equal(t, int64(1), page.Records[0].ID)
	assert.Equal(t, int64(2), page.Records[1].ID)
	assert.Equal(t, int64(3), page.Records[2].ID)
}

func TestDerivePage_IsPure(t *testing.T) {
	records := twoRecords(t)
	view := NewViewState()
	view.SortKey = SortPositiveDesc

	first := DerivePage(records, &view)
	second := DerivePage(records, &view)

	assert.Equal(t, first, second)
	// Input slice order is untouched.
	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, int64(2), records[1].ID)
}
