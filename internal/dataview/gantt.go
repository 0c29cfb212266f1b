package dataview

import (
	"sort"
	"time"

	"github.com/zatekoja/feedback-insights/internal/domain/entities"
	"github.com/zatekoja/feedback-insights/internal/domain/repositories"
)

// GanttItem is one record placed on the timeline: day offsets are relative
// to the shared axis start, Row is the display row within the record's
// group.
type GanttItem struct {
	Record   entities.FeedbackRecord `json:"record"`
	StartDay int                     `json:"start_day"`
	EndDay   int                     `json:"end_day"`
	Duration int                     `json:"duration"`
	Row      int                     `json:"row"`
}

// GanttAxis is the day-indexed time range shared by every group so bars
// align visually across them.
type GanttAxis struct {
	Start    time.Time `json:"start"`
	DayCount int       `json:"day_count"`
}

// GanttLayout is the complete layout: items per group key plus the shared
// axis.
type GanttLayout struct {
	Groups map[string][]GanttItem `json:"groups"`
	Axis   GanttAxis              `json:"axis"`
}

// LayoutGantt groups records by a dimension and packs each group's records
// into non-overlapping display rows. The packing is first-fit over items
// sorted by (start day, duration, id), so the result is deterministic for a
// given record set. An empty record set yields an empty group map and a
// one-day axis.
func LayoutGantt(records []entities.FeedbackRecord, groupBy repositories.Dimension) GanttLayout {
	layout := GanttLayout{
		Groups: map[string][]GanttItem{},
		Axis:   GanttAxis{DayCount: 1},
	}
	if len(records) == 0 {
		return layout
	}

	axisStart := records[0].CreatedAt
	axisEnd := records[0].CreatedAt
	for _, record := range records {
		if record.CreatedAt.Before(axisStart) {
			axisStart = record.CreatedAt
		}
		if record.CreatedAt.After(axisEnd) {
			axisEnd = record.CreatedAt
		}
		if record.UpdatedAt.After(axisEnd) {
			axisEnd = record.UpdatedAt
		}
	}
	layout.Axis.Start = axisStart
	layout.Axis.DayCount = daysBetween(axisStart, axisEnd) + 1

	grouped := map[string][]entities.FeedbackRecord{}
	for _, record := range records {
		key := groupKey(&record, groupBy)
		grouped[key] = append(grouped[key], record)
	}

	for key, members := range grouped {
		layout.Groups[key] = packGroup(members, axisStart)
	}

	return layout
}

// groupKey picks the grouping value off a record, with "unknown" standing
// in for missing values.
func groupKey(record *entities.FeedbackRecord, groupBy repositories.Dimension) string {
	var key string
	switch groupBy {
	case repositories.DimensionStatus:
		key = string(record.Status)
	case repositories.DimensionTag:
		key = string(record.Tag)
	case repositories.DimensionChannel:
		key = record.Channel
	default:
		key = record.UserTier
	}
	if key == "" {
		return "unknown"
	}
	return key
}

// packGroup assigns rows within one group by first-fit interval packing.
func packGroup(members []entities.FeedbackRecord, axisStart time.Time) []GanttItem {
	items := make([]GanttItem, 0, len(members))
	for _, record := range members {
		startDay := daysBetween(axisStart, record.CreatedAt)
		endDay := daysBetween(axisStart, record.UpdatedAt)
		// Tolerate updated_at preceding created_at: a bar is never shorter
		// than one day.
		duration := endDay - startDay + 1
		if duration < 1 {
			duration = 1
			endDay = startDay
		}
		items = append(items, GanttItem{
			Record:   record,
			StartDay: startDay,
			EndDay:   endDay,
			Duration: duration,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.StartDay != b.StartDay {
			return a.StartDay < b.StartDay
		}
		if a.Duration != b.Duration {
			return a.Duration < b.Duration
		}
		return a.Record.ID < b.Record.ID
	})

	// rows[r] holds the intervals already placed in display row r.
	var rows [][]GanttItem
	for i := range items {
		placed := false
		for r := range rows {
			if fitsRow(rows[r], items[i]) {
				items[i].Row = r
				rows[r] = append(rows[r], items[i])
				placed = true
				break
			}
		}
		if !placed {
			items[i].Row = len(rows)
			rows = append(rows, []GanttItem{items[i]})
		}
	}

	return items
}

func fitsRow(row []GanttItem, item GanttItem) bool {
	for _, existing := range row {
		if !(item.EndDay < existing.StartDay || item.StartDay > existing.EndDay) {
			return false
		}
	}
	return true
}

func daysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}
