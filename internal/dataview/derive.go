package dataview

import (
	"sort"
	"time"

	"github.com/zatekoja/feedback-insights/internal/domain/entities"
)

// Page is the visible slice of the record set under a view state.
type Page struct {
	Records    []entities.FeedbackRecord `json:"records"`
	TotalPages int                       `json:"total_pages"`
}

// DerivePage filters, sorts and paginates records according to view. It is
// deterministic for a given input pair; its only side effect is clamping
// view.CurrentPage into [1, TotalPages] so the caller's state can never
// point past the last page.
func DerivePage(records []entities.FeedbackRecord, view *ViewState) Page {
	filtered := filterRecords(records, view)
	sortRecords(filtered, view.SortKey)

	pageSize := view.PageSize
	if pageSize <= 0 {
		pageSize = 1
	}

	totalPages := (len(filtered) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	if view.CurrentPage < 1 {
		view.CurrentPage = 1
	}
	if view.CurrentPage > totalPages {
		view.CurrentPage = totalPages
	}

	start := (view.CurrentPage - 1) * pageSize
	end := start + pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return Page{
		Records:    filtered[start:end],
		TotalPages: totalPages,
	}
}

// filterRecords applies the view's filters. A selection is exclusive: when
// set, only the selected record survives and every other predicate is
// skipped.
func filterRecords(records []entities.FeedbackRecord, view *ViewState) []entities.FeedbackRecord {
	filtered := make([]entities.FeedbackRecord, 0, len(records))

	if view.SelectedID != 0 {
		for _, record := range records {
			if record.ID == view.SelectedID {
				filtered = append(filtered, record)
			}
		}
		return filtered
	}

	for _, record := range records {
		if view.FilterStatus != "" && record.Status != view.FilterStatus {
			continue
		}
		// Tier and channel filters match through the "unknown" placeholder
		// so a filter set from a grouped chart (or a clicked record without
		// the value) still matches the records behind it.
		if view.FilterTier != "" && record.TierOrUnknown() != view.FilterTier {
			continue
		}
		if view.FilterSource != "" && record.ChannelOrUnknown() != view.FilterSource {
			continue
		}
		if view.FilterTag != "" && record.Tag != view.FilterTag {
			continue
		}
		if view.FilterSentiment != "" &&
			entities.BucketForSentiment(record.SentimentOrZero()) != view.FilterSentiment {
			continue
		}
		filtered = append(filtered, record)
	}

	return filtered
}

func sortRecords(records []entities.FeedbackRecord, key SortKey) {
	less := lessFunc(key)
	sort.SliceStable(records, func(i, j int) bool {
		a, b := &records[i], &records[j]
		switch less(a, b) {
		case -1:
			return true
		case 1:
			return false
		}
		// Equal keys order by id for reproducibility.
		return a.ID < b.ID
	})
}

// lessFunc returns a three-way comparator for the sort key. Unknown keys
// use the default ordering.
func lessFunc(key SortKey) func(a, b *entities.FeedbackRecord) int {
	switch key {
	case SortPositiveDesc:
		return func(a, b *entities.FeedbackRecord) int {
			return compareFloat(b.SentimentOrZero(), a.SentimentOrZero())
		}
	case SortNegativeDesc:
		return func(a, b *entities.FeedbackRecord) int {
			return compareFloat(a.SentimentOrZero(), b.SentimentOrZero())
		}
	case SortCreatedAsc:
		return func(a, b *entities.FeedbackRecord) int {
			return compareTime(a.CreatedAt, b.CreatedAt)
		}
	case SortCreatedDesc:
		return func(a, b *entities.FeedbackRecord) int {
			return compareTime(b.CreatedAt, a.CreatedAt)
		}
	case SortUpdatedAsc:
		return func(a, b *entities.FeedbackRecord) int {
			return compareTime(updatedOrCreated(a), updatedOrCreated(b))
		}
	default:
		return func(a, b *entities.FeedbackRecord) int {
			return compareTime(updatedOrCreated(b), updatedOrCreated(a))
		}
	}
}

// updatedOrCreated falls back to the creation time for records that have
// never been touched.
func updatedOrCreated(r *entities.FeedbackRecord) time.Time {
	if r.UpdatedAt.IsZero() {
		return r.CreatedAt
	}
	return r.UpdatedAt
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}
