package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/zatekoja/feedback-insights/internal/dataview"
	"github.com/zatekoja/feedback-insights/internal/domain/entities"
	"github.com/zatekoja/feedback-insights/internal/domain/repositories"
)

// FeedbackLister supplies the record set backing the data view.
type FeedbackLister interface {
	ListRecent(ctx context.Context) ([]entities.FeedbackRecord, error)
}

// SummaryService produces the cached insights summary.
type SummaryService interface {
	GetSummary(ctx context.Context, force bool) (*entities.SummaryReport, error)
}

// ViewHandler serves the derived data view and the summary report.
type ViewHandler struct {
	lister  FeedbackLister
	summary SummaryService
}

// NewViewHandler creates a new view handler.
func NewViewHandler(lister FeedbackLister, summary SummaryService) *ViewHandler {
	return &ViewHandler{lister: lister, summary: summary}
}

type dataResponse struct {
	Records     []entities.FeedbackRecord `json:"records"`
	TotalPages  int                       `json:"total_pages"`
	CurrentPage int                       `json:"current_page"`
	View        dataview.ViewState        `json:"view"`
}

// GetData handles GET /api/data. Query parameters select a view over the
// recent record set; with no parameters the default view applies.
func (h *ViewHandler) GetData(w http.ResponseWriter, r *http.Request) {
	records, err := h.lister.ListRecent(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	view := viewStateFromQuery(r)
	page := dataview.DerivePage(records, &view)
	if page.Records == nil {
		page.Records = []entities.FeedbackRecord{}
	}

	respondWithJSON(w, http.StatusOK, dataResponse{
		Records:     page.Records,
		TotalPages:  page.TotalPages,
		CurrentPage: view.CurrentPage,
		View:        view,
	})
}

type chartClickRequest struct {
	View  dataview.ViewState `json:"view"`
	Click struct {
		Kind      string                   `json:"kind"`
		Tag       string                   `json:"tag"`
		Bucket    string                   `json:"bucket"`
		Dimension string                   `json:"dimension"`
		Value     string                   `json:"value"`
		Status    string                   `json:"status"`
		Record    *entities.FeedbackRecord `json:"record"`
	} `json:"click"`
}

// ApplyChartClick handles POST /api/view/chart-click. It applies a chart
// interaction to the submitted view state and returns the updated state.
func (h *ViewHandler) ApplyChartClick(w http.ResponseWriter, r *http.Request) {
	var payload chartClickRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	kind, ok := dataview.ParseChartKind(payload.Click.Kind)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "unknown chart kind")
		return
	}

	view := payload.View
	if view.SortKey == "" {
		view = dataview.NewViewState()
	}

	click := dataview.ChartClick{
		Kind:   kind,
		Tag:    entities.Tag(payload.Click.Tag),
		Value:  payload.Click.Value,
		Status: entities.Status(payload.Click.Status),
		Record: payload.Click.Record,
	}
	if bucket, ok := entities.ParseSentimentBucket(payload.Click.Bucket); ok {
		click.Bucket = bucket
	}
	click.Dimension = repositories.ParseDimension(payload.Click.Dimension)

	dataview.ApplyChartClick(&view, click)

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"view": view})
}

// GetSummary handles GET /api/summary. Both ?refresh=1 and ?force=true skip
// the cached copy.
func (h *ViewHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	force := q.Get("force") == "true" || q.Get("refresh") == "1"

	report, err := h.summary.GetSummary(r.Context(), force)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}

func viewStateFromQuery(r *http.Request) dataview.ViewState {
	q := r.URL.Query()
	view := dataview.NewViewState()

	view.SortKey = dataview.ParseSortKey(q.Get("sort"))
	if size, err := strconv.Atoi(q.Get("page_size")); err == nil {
		if size <= 0 {
			size = 1
		}
		view.PageSize = size
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		view.CurrentPage = page
	}

	if status, ok := entities.ParseStatus(q.Get("status")); ok {
		view.FilterStatus = status
	}
	view.FilterTier = strings.TrimSpace(q.Get("tier"))
	view.FilterSource = strings.TrimSpace(q.Get("source"))
	if tag, ok := entities.ParseTag(q.Get("tag")); ok {
		view.FilterTag = tag
	}
	if bucket, ok := entities.ParseSentimentBucket(q.Get("sentiment")); ok {
		view.FilterSentiment = bucket
	}
	if id, err := strconv.ParseInt(q.Get("selected_id"), 10, 64); err == nil && id > 0 {
		view.SelectedID = id
	}

	return view
}
