package dataview

import (
	"github.com/zatekoja/feedback-insights/internal/domain/entities"
	"github.com/zatekoja/feedback-insights/internal/domain/repositories"
)

// ChartKind identifies which dashboard chart produced a click.
type ChartKind string

const (
	ChartTagDistribution  ChartKind = "tag_distribution"
	ChartSentimentBuckets ChartKind = "sentiment_buckets"
	ChartDimensionBoxPlot ChartKind = "dimension_box_plot"
	ChartStatusTimeline   ChartKind = "status_timeline"
	ChartUrgencyImpact    ChartKind = "urgency_impact"
	ChartResolutionTime   ChartKind = "resolution_time"
)

// ParseChartKind validates a chart kind label.
func ParseChartKind(value string) (ChartKind, bool) {
	switch ChartKind(value) {
	case ChartTagDistribution, ChartSentimentBuckets, ChartDimensionBoxPlot,
		ChartStatusTimeline, ChartUrgencyImpact, ChartResolutionTime:
		return ChartKind(value), true
	}
	return "", false
}

// ChartClick carries the identity of a clicked chart element. Only the
// fields relevant to the chart kind are read: Tag for the tag and
// resolution-time charts, Bucket for the sentiment chart, Dimension plus
// Value for the box plot, Status for the timeline, and Record for the
// bubble chart.
type ChartClick struct {
	Kind      ChartKind                  `json:"kind"`
	Tag       entities.Tag               `json:"tag,omitempty"`
	Bucket    entities.SentimentBucket   `json:"bucket,omitempty"`
	Dimension repositories.Dimension     `json:"dimension,omitempty"`
	Value     string                     `json:"value,omitempty"`
	Status    entities.Status            `json:"status,omitempty"`
	Record    *entities.FeedbackRecord   `json:"record,omitempty"`
}

// ApplyChartClick translates a chart click into a view-state mutation. Each
// chart toggles its own filter dimension; clicking an already-active value
// clears it. A few charts additionally clear filters they are exclusive
// with. Every click lands the view back on page 1.
func ApplyChartClick(view *ViewState, click ChartClick) {
	switch click.Kind {
	case ChartTagDistribution:
		toggleTag(view, click.Tag)

	case ChartSentimentBuckets:
		if view.FilterSentiment == click.Bucket {
			view.FilterSentiment = ""
		} else {
			view.FilterSentiment = click.Bucket
		}

	case ChartDimensionBoxPlot:
		applyBoxPlotClick(view, click.Dimension, click.Value)

	case ChartStatusTimeline:
		// Timeline selection is exclusive of tag and sentiment filters.
		if view.FilterStatus == click.Status {
			view.FilterStatus = ""
		} else {
			view.FilterStatus = click.Status
		}
		view.FilterTag = ""
		view.FilterSentiment = ""

	case ChartUrgencyImpact:
		applyBubbleClick(view, click.Record)

	case ChartResolutionTime:
		toggleTag(view, click.Tag)
		view.FilterSentiment = ""
		view.FilterStatus = ""

	default:
		return
	}

	view.CurrentPage = 1
}

func toggleTag(view *ViewState, tag entities.Tag) {
	if view.FilterTag == tag {
		view.FilterTag = ""
	} else {
		view.FilterTag = tag
	}
}

// applyBoxPlotClick toggles the filter matching whichever dimension the box
// plot is currently grouped by.
func applyBoxPlotClick(view *ViewState, dimension repositories.Dimension, value string) {
	switch dimension {
	case repositories.DimensionStatus:
		status := entities.Status(value)
		if view.FilterStatus == status {
			view.FilterStatus = ""
		} else {
			view.FilterStatus = status
		}
	case repositories.DimensionTag:
		toggleTag(view, entities.Tag(value))
	case repositories.DimensionChannel:
		if view.FilterSource == value {
			view.FilterSource = ""
		} else {
			view.FilterSource = value
		}
	default:
		if view.FilterTier == value {
			view.FilterTier = ""
		} else {
			view.FilterTier = value
		}
	}
}

// applyBubbleClick sets status, tag and tier as a unit to the clicked
// record's values. The toggle-off check is conjunctive: only when all three
// current filters equal that record's values does the click clear them.
func applyBubbleClick(view *ViewState, record *entities.FeedbackRecord) {
	if record == nil {
		return
	}

	tier := record.TierOrUnknown()
	active := view.FilterStatus == record.Status &&
		view.FilterTag == record.Tag &&
		view.FilterTier == tier

	if active {
		view.FilterStatus = ""
		view.FilterTag = ""
		view.FilterTier = ""
		return
	}

	view.FilterStatus = record.Status
	view.FilterTag = record.Tag
	view.FilterTier = tier
}
