package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"pollpulse/internal/logger"
	"pollpulse/internal/models"
	"pollpulse/internal/pollAnalysis"

	"github.com/gorilla/mux"
)

// Handler contains the HTTP handlers for the API
type Handler struct {
	analysisService pollAnalysis.AnalysisService
	logger          logger.Service
}

// NewHandler creates a new HTTP handler
func NewHandler(
	analysisService pollAnalysis.AnalysisService,
	logger logger.Service,
) *Handler {
	return &Handler{
		analysisService: analysisService,
		logger:          logger,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// writeJSONResponse writes a JSON response with standard headers including X-Request-ID
func (h *Handler) writeJSONResponse(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) error {
	logEvent := logger.GetLogEvent(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", logEvent.ProcessID)
	w.WriteHeader(statusCode)

	return json.NewEncoder(w).Encode(data)
}

// GetPolls handles GET /api/polls/{category}
func (h *Handler) GetPolls(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	category := mux.Vars(r)["category"]
	query := pollAnalysis.PollsQuery{
		State:     r.URL.Query().Get("state"),
		Candidate: r.URL.Query().Get("candidate"),
		Source:    r.URL.Query().Get("source"),
		Limit:     intQueryParam(r, "limit", 0),
	}

	h.logger.LogInfo(ctx, logger.OpGetPolls, fmt.Sprintf("Retrieving polls for category: %s", category), map[string]interface{}{
		"category": category,
		"state":    query.State,
		"source":   query.Source,
	})

	response, err := h.analysisService.GetPolls(ctx, category, query)
	if err != nil {
		h.logger.LogError(ctx, logger.OpGetPolls, category, "Poll retrieval failed", err, models.LogSeverityMedium, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "poll retrieval failed", err.Error())
		return
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, response); err != nil {
		h.logger.LogError(ctx, logger.OpGetPolls, category, "Failed to encode response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogSuccess(ctx, logger.OpGetPolls, category, "Successfully retrieved polls", map[string]interface{}{
		"total_count":   response.TotalCount,
		"used_fallback": response.UsedFallback,
		"cached":        response.Cached,
	})
}

// GetRunningAverage handles GET /api/polls/{category}/average
func (h *Handler) GetRunningAverage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	category := mux.Vars(r)["category"]
	query := pollAnalysis.AggregateQuery{
		WindowDays: intQueryParam(r, "days", 0),
		State:      r.URL.Query().Get("state"),
		Source:     r.URL.Query().Get("source"),
	}

	results, err := h.analysisService.GetRunningAverage(ctx, category, query)
	if err != nil {
		h.logger.LogError(ctx, logger.OpRunningAverage, category, "Running average failed", err, models.LogSeverityMedium, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "running average failed", err.Error())
		return
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, results); err != nil {
		h.logger.LogError(ctx, logger.OpRunningAverage, category, "Failed to encode response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogSuccess(ctx, logger.OpRunningAverage, category, "Successfully computed running average", map[string]interface{}{
		"candidates": len(results),
	})
}

// GetSeries handles GET /api/polls/{category}/series
func (h *Handler) GetSeries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	category := mux.Vars(r)["category"]
	query := pollAnalysis.AggregateQuery{
		State:     r.URL.Query().Get("state"),
		Source:    r.URL.Query().Get("source"),
		MaxPoints: intQueryParam(r, "points", 0),
	}

	rows, err := h.analysisService.GetSeries(ctx, category, query)
	if err != nil {
		h.logger.LogError(ctx, logger.OpSeries, category, "Series build failed", err, models.LogSeverityMedium, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "series build failed", err.Error())
		return
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, rows); err != nil {
		h.logger.LogError(ctx, logger.OpSeries, category, "Failed to encode response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogSuccess(ctx, logger.OpSeries, category, "Successfully built poll series", map[string]interface{}{
		"points": len(rows),
	})
}

// GetCacheStats handles GET /api/cache/stats
func (h *Handler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.analysisService.CacheStats(ctx)
	if err != nil {
		h.logger.LogError(ctx, logger.OpCacheAdmin, "", "Cache stats failed", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "cache stats failed", err.Error())
		return
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, stats); err != nil {
		h.logger.LogError(ctx, logger.OpCacheAdmin, "", "Failed to encode response", err, models.LogSeverityLow, nil)
	}
}

// InvalidateCacheKey handles DELETE /api/cache/{key}
func (h *Handler) InvalidateCacheKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key := mux.Vars(r)["key"]
	if key == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "key is required", "")
		return
	}

	if err := h.analysisService.InvalidateCacheKey(ctx, key); err != nil {
		h.logger.LogError(ctx, logger.OpCacheAdmin, key, "Cache invalidation failed", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "cache invalidation failed", err.Error())
		return
	}

	_ = h.writeJSONResponse(w, r, http.StatusOK, map[string]string{"invalidated": key})
}

// ClearCache handles DELETE /api/cache
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.analysisService.ClearCache(ctx); err != nil {
		h.logger.LogError(ctx, logger.OpCacheAdmin, "", "Cache clear failed", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "cache clear failed", err.Error())
		return
	}

	_ = h.writeJSONResponse(w, r, http.StatusOK, map[string]string{"status": "cleared"})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, response); err != nil {
		h.logger.LogError(ctx, logger.OpHealthCheck, "", "Failed to encode health response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogInfo(ctx, logger.OpHealthCheck, "Health check performed successfully", nil)
}

// writeErrorResponse writes a standardized error response
func (h *Handler) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, error, message string) {
	response := ErrorResponse{
		Error:     error,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	if err := h.writeJSONResponse(w, r, statusCode, response); err != nil {
		h.logger.LogError(r.Context(), "response_encoding", "", "Failed to encode error response", err, models.LogSeverityLow, nil)
	}
}

// getStatusCodeForError determines the appropriate HTTP status code for an error
func (h *Handler) getStatusCodeForError(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidCategory):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// intQueryParam parses an integer query parameter, falling back on absence
// or garbage
func intQueryParam(r *http.Request, name string, defaultValue int) int {
	if value := r.URL.Query().Get(name); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
