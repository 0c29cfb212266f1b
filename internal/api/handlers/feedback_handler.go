package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/zatekoja/feedback-insights/internal/application/services"
	"github.com/zatekoja/feedback-insights/internal/domain/entities"
	"github.com/zatekoja/feedback-insights/internal/domain/providers"
)

const (
	submitRateLimit   = 30
	submitRateWindow  = time.Hour
	submitDedupWindow = 24 * time.Hour
)

// FeedbackService defines the feedback operations used by the handler.
type FeedbackService interface {
	Submit(ctx context.Context, input services.SubmitFeedbackInput) (*entities.FeedbackRecord, error)
	UpdateStatus(ctx context.Context, id int64, status entities.Status) error
	OverrideSentiment(ctx context.Context, id int64, sentiment float64) error
	EditText(ctx context.Context, id int64, text string) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, query string) ([]entities.FeedbackRecord, error)
}

// FeedbackHandler handles feedback submissions and record mutations.
type FeedbackHandler struct {
	service FeedbackService
	cache   providers.CacheProvider
	local   *localRateLimiter
	deduper *localDeduper
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(service FeedbackService, cache providers.CacheProvider) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		cache:   cache,
		local:   newLocalRateLimiter(),
		deduper: newLocalDeduper(),
	}
}

type submitRequest struct {
	Text     string `json:"text"`
	Source   string `json:"source"`
	Channel  string `json:"channel"`
	UserTier string `json:"user_tier"`
}

// SubmitFeedback handles POST /api/feedback
func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var payload submitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	payload.Text = strings.TrimSpace(payload.Text)
	payload.Source = strings.TrimSpace(payload.Source)
	payload.Channel = strings.TrimSpace(payload.Channel)
	payload.UserTier = strings.TrimSpace(payload.UserTier)

	key := "feedback:rate:" + clientIP(r)
	allowed, retryAfter := h.allowRequest(r.Context(), key)
	if !allowed {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
		respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	dupKey := "feedback:dup:" + submitFingerprint(payload, clientIP(r))
	if h.isDuplicate(r.Context(), dupKey) {
		respondWithJSON(w, http.StatusAccepted, map[string]string{
			"status": "duplicate_ignored",
		})
		return
	}

	record, err := h.service.Submit(r.Context(), services.SubmitFeedbackInput{
		Text:     payload.Text,
		Source:   payload.Source,
		Channel:  payload.Channel,
		UserTier: payload.UserTier,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, record)
}

type updateRequest struct {
	Status    *string  `json:"status"`
	Sentiment *float64 `json:"sentiment"`
	Text      *string  `json:"text"`
}

// UpdateFeedback handles PATCH /api/feedback/{id}. Status, sentiment and
// text are each optional and applied independently.
func (h *FeedbackHandler) UpdateFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid feedback id")
		return
	}

	var payload updateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.Status == nil && payload.Sentiment == nil && payload.Text == nil {
		respondWithError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if payload.Status != nil {
		status, ok := entities.ParseStatus(*payload.Status)
		if !ok {
			respondWithError(w, http.StatusBadRequest, "invalid status")
			return
		}
		if err := h.service.UpdateStatus(r.Context(), id, status); err != nil {
			respondWithServiceError(w, err)
			return
		}
	}

	if payload.Sentiment != nil {
		if err := h.service.OverrideSentiment(r.Context(), id, *payload.Sentiment); err != nil {
			respondWithServiceError(w, err)
			return
		}
	}

	if payload.Text != nil {
		if err := h.service.EditText(r.Context(), id, *payload.Text); err != nil {
			respondWithServiceError(w, err)
			return
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteFeedback handles DELETE /api/feedback/{id}
func (h *FeedbackHandler) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid feedback id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SearchFeedback handles GET /api/search?q=
func (h *FeedbackHandler) SearchFeedback(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	records, err := h.service.Search(r.Context(), query)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if records == nil {
		records = []entities.FeedbackRecord{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"results": records,
		"count":   len(records),
	})
}

func (h *FeedbackHandler) allowRequest(ctx context.Context, key string) (bool, time.Duration) {
	if h.cache == nil {
		return h.local.allow(key, submitRateLimit, submitRateWindow)
	}

	state := rateLimitState{}
	if data, err := h.cache.Get(ctx, key); err == nil {
		_ = json.Unmarshal(data, &state)
	}

	if state.Count >= submitRateLimit {
		return false, submitRateWindow
	}

	state.Count++
	data, _ := json.Marshal(state)
	_ = h.cache.Set(ctx, key, data, int(submitRateWindow.Seconds()))
	return true, submitRateWindow
}

type rateLimitState struct {
	Count int `json:"count"`
}

func (h *FeedbackHandler) isDuplicate(ctx context.Context, key string) bool {
	if h.cache == nil {
		return h.deduper.seen(key, submitDedupWindow)
	}

	exists, err := h.cache.Exists(ctx, key)
	if err == nil && exists {
		return true
	}

	_ = h.cache.Set(ctx, key, []byte("1"), int(submitDedupWindow.Seconds()))
	return false
}

type localRateLimiter struct {
	mu     sync.Mutex
	states map[string]*localRateState
}

type localRateState struct {
	count   int
	resetAt time.Time
}

func newLocalRateLimiter() *localRateLimiter {
	return &localRateLimiter{
		states: make(map[string]*localRateState),
	}
}

func (l *localRateLimiter) allow(key string, limit int, window time.Duration) (bool, time.Duration) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.states[key]
	if !ok || now.After(state.resetAt) {
		state = &localRateState{count: 0, resetAt: now.Add(window)}
		l.states[key] = state
	}

	if state.count >= limit {
		retryAfter := time.Until(state.resetAt)
		if retryAfter < 0 {
			retryAfter = window
		}
		return false, retryAfter
	}

	state.count++
	return true, window
}

type localDeduper struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func newLocalDeduper() *localDeduper {
	return &localDeduper{
		entries: make(map[string]time.Time),
	}
}

func (d *localDeduper) seen(key string, window time.Duration) bool {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if expiresAt, ok := d.entries[key]; ok && now.Before(expiresAt) {
		return true
	}

	d.entries[key] = now.Add(window)
	return false
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

func submitFingerprint(payload submitRequest, ip string) string {
	normalized := []string{
		normalizeText(payload.Text),
		strings.ToLower(payload.Source),
		strings.ToLower(payload.Channel),
		strings.ToLower(payload.UserTier),
		ip,
	}

	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}

func normalizeText(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return ""
	}
	return strings.Join(strings.Fields(trimmed), " ")
}
