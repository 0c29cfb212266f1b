package dataview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zatekoja/feedback-insights/internal/domain/entities"
	"github.com/zatekoja/feedback-insights/internal/domain/repositories"
)

func TestApplyChartClick_TagToggle(t *testing.T) {
	view := NewViewState()
	click := ChartClick{Kind: ChartTagDistribution, Tag: entities.TagBugReport}

	ApplyChartClick(&view, click)
	assert.Equal(t, entities.TagBugReport, view.FilterTag)

	ApplyChartClick(&view, click)
	assert.Empty(t, view.FilterTag)
}

func TestApplyChartClick_SentimentToggle(t *testing.T) {
	view := NewViewState()
	click := ChartClick{Kind: ChartSentimentBuckets, Bucket: entities.BucketNegative}

	ApplyChartClick(&view, click)
	assert.Equal(t, entities.BucketNegative, view.FilterSentiment)

	ApplyChartClick(&view, click)
	assert.Empty(t, view.FilterSentiment)
}

func TestApplyChartClick_ResetsPage(t *testing.T) {
	view := NewViewState()
	view.CurrentPage = 7

	ApplyChartClick(&view, ChartClick{Kind: ChartTagDistribution, Tag: entities.TagUrgent})

	assert.Equal(t, 1, view.CurrentPage)
}

func TestApplyChartClick_BoxPlotTogglesActiveDimension(t *testing.T) {
	cases := []struct {
		dimension repositories.Dimension
		value     string
		check     func(t *testing.T, view *ViewState, set bool)
	}{
		{repositories.DimensionTier, "pro", func(t *testing.T, view *ViewState, set bool) {
			if set {
				assert.Equal(t, "pro", view.FilterTier)
			} else {
				assert.Empty(t, view.FilterTier)
			}
		}},
		{repositories.DimensionStatus, "done", func(t *testing.T, view *ViewState, set bool) {
			if set {
				assert.Equal(t, entities.StatusDone, view.FilterStatus)
			} else {
				assert.Empty(t, view.FilterStatus)
			}
		}},
		{repositories.DimensionTag, "Praise", func(t *testing.T, view *ViewState, set bool) {
			if set {
				assert.Equal(t, entities.TagPraise, view.FilterTag)
			} else {
				assert.Empty(t, view.FilterTag)
			}
		}},
		{repositories.DimensionChannel, "web", func(t *testing.T, view *ViewState, set bool) {
			if set {
				assert.Equal(t, "web", view.FilterSource)
			} else {
				assert.Empty(t, view.FilterSource)
			}
		}},
	}

	for _, tc := range cases {
		view := NewViewState()
		click := ChartClick{Kind: ChartDimensionBoxPlot, Dimension: tc.dimension, Value: tc.value}

		ApplyChartClick(&view, click)
		tc.check(t, &view, true)

		ApplyChartClick(&view, click)
		tc.check(t, &view, false)
	}
}

func TestApplyChartClick_TimelineClearsTagAndSentiment(t *testing.T) {
	view := NewViewState()
	view.FilterTag = entities.TagBugReport
	view.FilterSentiment = entities.BucketPositive

	ApplyChartClick(&view, ChartClick{Kind: ChartStatusTimeline, Status: entities.StatusInProgress})

	assert.Equal(t, entities.StatusInProgress, view.FilterStatus)
	assert.Empty(t, view.FilterTag)
	assert.Empty(t, view.FilterSentiment)
}

func TestApplyChartClick_TimelineToggleOff(t *testing.T) {
	view := NewViewState()
	view.FilterStatus = entities.StatusDone

	ApplyChartClick(&view, ChartClick{Kind: ChartStatusTimeline, Status: entities.StatusDone})

	assert.Empty(t, view.FilterStatus)
}

func TestApplyChartClick_ResolutionTimeClearsSentimentAndStatus(t *testing.T) {
	view := NewViewState()
	view.FilterSentiment = entities.BucketNegative
	view.FilterStatus = entities.StatusToDo

	ApplyChartClick(&view, ChartClick{Kind: ChartResolutionTime, Tag: entities.TagSecurity})

	assert.Equal(t, entities.TagSecurity, view.FilterTag)
	assert.Empty(t, view.FilterSentiment)
	assert.Empty(t, view.FilterStatus)
}

func TestApplyChartClick_BubbleSetsTripleAsUnit(t *testing.T) {
	record := &entities.FeedbackRecord{
		ID:       5,
		Status:   entities.StatusInProgress,
		Tag:      entities.TagPerformance,
		UserTier: "enterprise",
	}

	view := NewViewState()
	click := ChartClick{Kind: ChartUrgencyImpact, Record: record}

	ApplyChartClick(&view, click)
	assert.Equal(t, entities.StatusInProgress, view.FilterStatus)
	assert.Equal(t, entities.TagPerformance, view.FilterTag)
	assert.Equal(t, "enterprise", view.FilterTier)

	// Same triple active: the click clears all three.
	ApplyChartClick(&view, click)
	assert.Empty(t, view.FilterStatus)
	assert.Empty(t, view.FilterTag)
	assert.Empty(t, view.FilterTier)
}

func TestApplyChartClick_BubbleToggleIsConjunctive(t *testing.T) {
	record := &entities.FeedbackRecord{
		ID:       5,
		Status:   entities.StatusInProgress,
		Tag:      entities.TagPerformance,
		UserTier: "enterprise",
	}

	view := NewViewState()
	ApplyChartClick(&view, ChartClick{Kind: ChartUrgencyImpact, Record: record})

	// Disturb one of the three; the next bubble click must set, not clear.
	view.FilterTier = "free"
	ApplyChartClick(&view, ChartClick{Kind: ChartUrgencyImpact, Record: record})

	assert.Equal(t, entities.StatusInProgress, view.FilterStatus)
	assert.Equal(t, entities.TagPerformance, view.FilterTag)
	assert.Equal(t, "enterprise", view.FilterTier)
}

func TestApplyChartClick_BubbleMissingTierUsesUnknown(t *testing.T) {
	record := &entities.FeedbackRecord{ID: 6, Status: entities.StatusToDo, Tag: entities.TagOther}

	view := NewViewState()
	ApplyChartClick(&view, ChartClick{Kind: ChartUrgencyImpact, Record: record})

	assert.Equal(t, "unknown", view.FilterTier)
}

func TestApplyChartClick_UnknownKindIsNoOp(t *testing.T) {
	view := NewViewState()
	view.CurrentPage = 4

	ApplyChartClick(&view, ChartClick{Kind: ChartKind("mystery")})

	assert.Equal(t, 4, view.CurrentPage)
	assert.Equal(t, NewViewState().SortKey, view.SortKey)
}

func TestParseChartKind(t *testing.T) {
	kind, ok := ParseChartKind("urgency_impact")
	assert.True(t, ok)
	assert.Equal(t, ChartUrgencyImpact, kind)

	_, ok = ParseChartKind("pie_of_doom")
	assert.False(t, ok)
}

func TestApplyChartClick_BubbleOnTierlessRecordKeepsItVisible(t *testing.T) {
	clicked := entities.FeedbackRecord{ID: 6, Status: entities.StatusToDo, Tag: entities.TagOther}

	view := NewViewState()
	ApplyChartClick(&view, ChartClick{Kind: ChartUrgencyImpact, Record: &clicked})
	assert.Equal(t, "unknown", view.FilterTier)

	page := DerivePage([]entities.FeedbackRecord{clicked}, &view)
	assert.Len(t, page.Records, 1)
	assert.Equal(t, int64(6), page.Records[0].ID)
}

func TestApplyChartClick_UnknownGroupMatchesMissingValues(t *testing.T) {
	records := []entities.FeedbackRecord{
		{ID: 1, UserTier: "pro", Channel: "web"},
		{ID: 2},
	}

	view := NewViewState()
	ApplyChartClick(&view, ChartClick{Kind: ChartDimensionBoxPlot, Dimension: repositories.DimensionTier, Value: "unknown"})
	page := DerivePage(records, &view)
	assert.Len(t, page.Records, 1)
	assert.Equal(t, int64(2), page.Records[0].ID)

	view = NewViewState()
	ApplyChartClick(&view, ChartClick{Kind: ChartDimensionBoxPlot, Dimension: repositories.DimensionChannel, Value: "unknown"})
	page = DerivePage(records, &view)
	assert.Len(t, page.Records, 1)
	assert.Equal(t, int64(2), page.Records[0].ID)
}
