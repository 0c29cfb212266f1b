// Package dataview implements the dashboard's data view engine: filtering,
// sorting and paginating the in-memory record set, translating chart clicks
// into filter changes, and packing records into Gantt rows. Everything here
// is pure computation over records plus a view state; rendering is the
// caller's concern.
package dataview

import (
	"github.com/zatekoja/feedback-insights/internal/domain/entities"
)

// SortKey names one of the supported orderings of the record table.
type SortKey string

const (
	SortUpdatedDesc  SortKey = "updated_desc"
	SortUpdatedAsc   SortKey = "updated_asc"
	SortCreatedDesc  SortKey = "created_desc"
	SortCreatedAsc   SortKey = "created_asc"
	SortPositiveDesc SortKey = "positive_desc"
	SortNegativeDesc SortKey = "negative_desc"
)

// DefaultSortKey is the ordering a fresh view starts with, and the fallback
// for unrecognized sort keys.
const DefaultSortKey = SortUpdatedDesc

// DefaultPageSize is the page size of a fresh view.
const DefaultPageSize = 10

// ParseSortKey normalizes a sort key, falling back to the default for
// anything unrecognized.
func ParseSortKey(value string) SortKey {
	switch SortKey(value) {
	case SortUpdatedDesc, SortUpdatedAsc, SortCreatedDesc, SortCreatedAsc,
		SortPositiveDesc, SortNegativeDesc:
		return SortKey(value)
	}
	return DefaultSortKey
}

// ViewState is the full set of parameters controlling which records are
// displayed and in what order. A zero filter field means "no filter";
// SelectedID zero means no selection. Mutate it only through the Controller
// or ApplyChartClick so the page-reset rules hold.
type ViewState struct {
	SortKey         SortKey                  `json:"sort_key"`
	PageSize        int                      `json:"page_size"`
	FilterStatus    entities.Status          `json:"filter_status,omitempty"`
	FilterTier      string                   `json:"filter_tier,omitempty"`
	FilterSource    string                   `json:"filter_source,omitempty"`
	FilterTag       entities.Tag             `json:"filter_tag,omitempty"`
	FilterSentiment entities.SentimentBucket `json:"filter_sentiment,omitempty"`
	CurrentPage     int                      `json:"current_page"`
	SelectedID      int64                    `json:"selected_id,omitempty"`
}

// NewViewState returns the default view: most recently updated first, ten
// records per page, nothing filtered or selected.
func NewViewState() ViewState {
	return ViewState{
		SortKey:     DefaultSortKey,
		PageSize:    DefaultPageSize,
		CurrentPage: 1,
	}
}

// HasFilters reports whether any filter besides the selection is active.
func (v *ViewState) HasFilters() bool {
	return v.FilterStatus != "" || v.FilterTier != "" || v.FilterSource != "" ||
		v.FilterTag != "" || v.FilterSentiment != ""
}

// ClearFilters removes every filter and the selection, keeping sort and
// page size.
func (v *ViewState) ClearFilters() {
	v.FilterStatus = ""
	v.FilterTier = ""
	v.FilterSource = ""
	v.FilterTag = ""
	v.FilterSentiment = ""
	v.SelectedID = 0
	v.CurrentPage = 1
}
