package routes

import (
	"net/http"

	"github.com/zatekoja/feedback-insights/internal/api/handlers"
	"github.com/zatekoja/feedback-insights/internal/api/middleware"
	"github.com/zatekoja/feedback-insights/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	feedbackHandler  *handlers.FeedbackHandler
	viewHandler      *handlers.ViewHandler
	analyticsHandler *handlers.AnalyticsHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	feedbackHandler *handlers.FeedbackHandler,
	viewHandler *handlers.ViewHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		feedbackHandler:  feedbackHandler,
		viewHandler:      viewHandler,
		analyticsHandler: analyticsHandler,

		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Feedback endpoints
	r.mux.HandleFunc("POST /api/feedback", r.feedbackHandler.SubmitFeedback)
	r.mux.HandleFunc("PATCH /api/feedback/{id}", r.feedbackHandler.UpdateFeedback)
	r.mux.HandleFunc("DELETE /api/feedback/{id}", r.feedbackHandler.DeleteFeedback)

	// Data view endpoints
	r.mux.HandleFunc("GET /api/data", r.viewHandler.GetData)
	r.mux.HandleFunc("POST /api/view/chart-click", r.viewHandler.ApplyChartClick)

	// Search and summary endpoints
	r.mux.HandleFunc("GET /api/search", r.feedbackHandler.SearchFeedback)
	r.mux.HandleFunc("GET /api/summary", r.viewHandler.GetSummary)

	// Analytics endpoints
	r.mux.HandleFunc("GET /api/analytics/tier-sentiment", r.analyticsHandler.GetTierSentiment)
	r.mux.HandleFunc("GET /api/analytics/sentiment-by-dimension", r.analyticsHandler.GetSentimentByDimension)
	r.mux.HandleFunc("GET /api/analytics/status-timeline", r.analyticsHandler.GetStatusTimeline)
	r.mux.HandleFunc("GET /api/analytics/urgency-impact", r.analyticsHandler.GetUrgencyImpact)
	r.mux.HandleFunc("GET /api/analytics/resolution-time", r.analyticsHandler.GetResolutionTime)
	r.mux.HandleFunc("GET /api/analytics/daily-summary", r.analyticsHandler.GetDailySummary)
	r.mux.HandleFunc("GET /api/analytics/feedback-dates", r.analyticsHandler.GetFeedbackDates)
	r.mux.HandleFunc("GET /api/analytics/gantt", r.analyticsHandler.GetGantt)

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}
