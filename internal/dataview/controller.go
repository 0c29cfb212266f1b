package dataview

import (
	"github.com/zatekoja/feedback-insights/internal/domain/entities"
)

// Controller owns the single ViewState instance. Every mutation goes
// through a setter so the page-reset rules are applied uniformly, and every
// mutation notifies subscribers exactly once. It is not safe for concurrent
// use; callers serialize events onto it.
type Controller struct {
	state       ViewState
	subscribers []func(ViewState)
}

// NewController creates a controller holding the default view state.
func NewController() *Controller {
	return &Controller{state: NewViewState()}
}

// State returns a copy of the current view state.
func (c *Controller) State() ViewState {
	return c.state
}

// Subscribe registers a callback invoked after every mutation with the new
// state.
func (c *Controller) Subscribe(fn func(ViewState)) {
	c.subscribers = append(c.subscribers, fn)
}

func (c *Controller) notify() {
	for _, fn := range c.subscribers {
		fn(c.state)
	}
}

// resetAndNotify is the shared tail of every filter, sort and page-size
// change: back to page 1, then tell everyone.
func (c *Controller) resetAndNotify() {
	c.state.CurrentPage = 1
	c.notify()
}

// SetSortKey changes the ordering.
func (c *Controller) SetSortKey(key SortKey) {
	c.state.SortKey = ParseSortKey(string(key))
	c.resetAndNotify()
}

// SetPageSize changes how many records a page holds.
func (c *Controller) SetPageSize(size int) {
	if size <= 0 {
		size = 1
	}
	c.state.PageSize = size
	c.resetAndNotify()
}

// SetFilterStatus sets or clears the status filter.
func (c *Controller) SetFilterStatus(status entities.Status) {
	c.state.FilterStatus = status
	c.resetAndNotify()
}

// SetFilterTier sets or clears the tier filter.
func (c *Controller) SetFilterTier(tier string) {
	c.state.FilterTier = tier
	c.resetAndNotify()
}

// SetFilterSource sets or clears the channel filter.
func (c *Controller) SetFilterSource(source string) {
	c.state.FilterSource = source
	c.resetAndNotify()
}

// SetFilterTag sets or clears the tag filter.
func (c *Controller) SetFilterTag(tag entities.Tag) {
	c.state.FilterTag = tag
	c.resetAndNotify()
}

// SetFilterSentiment sets or clears the sentiment-bucket filter.
func (c *Controller) SetFilterSentiment(bucket entities.SentimentBucket) {
	c.state.FilterSentiment = bucket
	c.resetAndNotify()
}

// Select makes id the exclusive filter; zero clears the selection. Plain
// navigation within a selection is meaningless, so selection also resets
// the page.
func (c *Controller) Select(id int64) {
	c.state.SelectedID = id
	c.resetAndNotify()
}

// ClearFilters drops every filter and the selection.
func (c *Controller) ClearFilters() {
	c.state.ClearFilters()
	c.notify()
}

// SetPage navigates to a page. Navigation alone never resets filters or
// clamps; DerivePage clamps the page against the actual filtered count.
func (c *Controller) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	c.state.CurrentPage = page
	c.notify()
}

// ApplyChartClick routes a chart click through the filter bridge.
func (c *Controller) ApplyChartClick(click ChartClick) {
	ApplyChartClick(&c.state, click)
	c.notify()
}

// Derive computes the visible page for the current state, clamping the
// current page in place.
func (c *Controller) Derive(records []entities.FeedbackRecord) Page {
	return DerivePage(records, &c.state)
}
