package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/feedback-insights/internal/dataview"
	"github.com/zatekoja/feedback-insights/internal/domain/entities"
	"github.com/zatekoja/feedback-insights/internal/domain/repositories"
)

// AnalyticsService defines the aggregate queries used by the handler.
type AnalyticsService interface {
	SentimentByDimension(ctx context.Context, dimension repositories.Dimension) (map[string][]float64, error)
	StatusTimeline(ctx context.Context) ([]entities.StatusTimelinePoint, error)
	UrgencyImpact(ctx context.Context) ([]entities.UrgencyImpactPoint, error)
	ResolutionTime(ctx context.Context) ([]entities.ResolutionTimeRow, error)
	DailySummary(ctx context.Context) ([]entities.DailySummaryRow, error)
	FeedbackDates(ctx context.Context) ([]string, error)
	GanttLayout(ctx context.Context, groupBy repositories.Dimension) (*dataview.GanttLayout, error)
}

// AnalyticsHandler serves the dashboard's aggregate chart endpoints. Each
// endpoint fails independently so one broken chart never blanks the rest
// of the dashboard.
type AnalyticsHandler struct {
	service AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(service AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// GetTierSentiment handles GET /api/analytics/tier-sentiment, the box plot's
// original fixed-dimension endpoint.
func (h *AnalyticsHandler) GetTierSentiment(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.SentimentByDimension(r.Context(), repositories.DimensionTier)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"dimension": repositories.DimensionTier,
		"groups":    groups,
	})
}

// GetSentimentByDimension handles GET /api/analytics/sentiment-by-dimension?dimension=
func (h *AnalyticsHandler) GetSentimentByDimension(w http.ResponseWriter, r *http.Request) {
	dimension := repositories.ParseDimension(r.URL.Query().Get("dimension"))

	groups, err := h.service.SentimentByDimension(r.Context(), dimension)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"dimension": dimension,
		"groups":    groups,
	})
}

// GetStatusTimeline handles GET /api/analytics/status-timeline
func (h *AnalyticsHandler) GetStatusTimeline(w http.ResponseWriter, r *http.Request) {
	points, err := h.service.StatusTimeline(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"points": points})
}

// GetUrgencyImpact handles GET /api/analytics/urgency-impact
func (h *AnalyticsHandler) GetUrgencyImpact(w http.ResponseWriter, r *http.Request) {
	points, err := h.service.UrgencyImpact(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"points": points})
}

// GetResolutionTime handles GET /api/analytics/resolution-time
func (h *AnalyticsHandler) GetResolutionTime(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ResolutionTime(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"rows": rows})
}

// GetDailySummary handles GET /api/analytics/daily-summary
func (h *AnalyticsHandler) GetDailySummary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.DailySummary(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"rows": rows})
}

// GetFeedbackDates handles GET /api/analytics/feedback-dates
func (h *AnalyticsHandler) GetFeedbackDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.service.FeedbackDates(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if dates == nil {
		dates = []string{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"dates": dates})
}

// GetGantt handles GET /api/analytics/gantt?group_by=
func (h *AnalyticsHandler) GetGantt(w http.ResponseWriter, r *http.Request) {
	groupBy := repositories.ParseDimension(r.URL.Query().Get("group_by"))

	layout, err := h.service.GanttLayout(r.Context(), groupBy)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, layout)
}
