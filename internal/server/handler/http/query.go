package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/thef4tdaddy/violet-vault-sub014/internal/models"
)

// QueryService defines the read operations required by the QueryHandler.
// The implementations are best-effort: they never fail, only degrade to
// empty results.
type QueryService interface {
	GetRecentChanges(ctx context.Context, entityType string, limit int) []models.Change
	GetEntityHistory(ctx context.Context, entityType, entityID string) []models.Change
	GetRecentActivity(ctx context.Context, limit int) []models.Change
}

// QueryHandler handles read-only history requests.
type QueryHandler struct {
	Queries QueryService
}

// Recent handles GET /api/history/recent?entityType=&limit= requests.
func (h *QueryHandler) Recent(w http.ResponseWriter, r *http.Request) {
	entityType := r.URL.Query().Get("entityType")
	if entityType == "" {
		http.Error(w, "entityType is required", http.StatusBadRequest)
		return
	}

	changes := h.Queries.GetRecentChanges(r.Context(), entityType, limitParam(r))
	writeJSON(w, http.StatusOK, changes)
}

// Entity handles GET /api/history/entity/{entityType}?entityId= requests.
func (h *QueryHandler) Entity(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")
	entityID := r.URL.Query().Get("entityId")

	changes := h.Queries.GetEntityHistory(r.Context(), entityType, entityID)
	writeJSON(w, http.StatusOK, changes)
}

// Activity handles GET /api/history/activity?limit= requests.
func (h *QueryHandler) Activity(w http.ResponseWriter, r *http.Request) {
	changes := h.Queries.GetRecentActivity(r.Context(), limitParam(r))
	writeJSON(w, http.StatusOK, changes)
}

// limitParam parses the limit query parameter, zero when absent or invalid
// so that the services apply their own defaults.
func limitParam(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return limit
}
