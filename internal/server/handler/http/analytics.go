package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/thef4tdaddy/violet-vault-sub014/internal/service"
)

// AnalyticsService defines the aggregation operation required by the
// AnalyticsHandler.
type AnalyticsService interface {
	// GetChangePatterns returns windowed statistics, or nil when the
	// underlying query failed.
	GetChangePatterns(ctx context.Context, timeRange time.Duration) *service.ChangePatterns
}

// AnalyticsHandler handles analytics requests.
type AnalyticsHandler struct {
	Analytics AnalyticsService
}

// Patterns handles GET /api/analytics/patterns?rangeMs= requests.
// A nil service result maps to 503: the history store is unreachable,
// which is different from an empty-but-healthy window.
func (h *AnalyticsHandler) Patterns(w http.ResponseWriter, r *http.Request) {
	var timeRange time.Duration
	if raw := r.URL.Query().Get("rangeMs"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ms <= 0 {
			http.Error(w, "invalid rangeMs", http.StatusBadRequest)
			return
		}
		timeRange = time.Duration(ms) * time.Millisecond
	}

	patterns := h.Analytics.GetChangePatterns(r.Context(), timeRange)
	if patterns == nil {
		http.Error(w, "analytics unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, patterns)
}
