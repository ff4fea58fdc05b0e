// Package http provides HTTP routing and handlers for the budget history
// API.
package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/thef4tdaddy/violet-vault-sub014/internal/middleware"
	"github.com/thef4tdaddy/violet-vault-sub014/internal/service"
)

// HistoryService defines the write operations required by the TrackHandler.
type HistoryService interface {
	// CreateHistoryCommit persists a commit built from raw inputs.
	CreateHistoryCommit(ctx context.Context, in service.CommitInput) (*service.CommitResult, error)
	// TrackUnassignedCashChange records a change to the unassigned cash amount.
	TrackUnassignedCashChange(ctx context.Context, previousAmount, newAmount float64, author, source string) (*service.CommitResult, error)
	// TrackActualBalanceChange records a change to the actual balance.
	TrackActualBalanceChange(ctx context.Context, previousBalance, newBalance float64, isManual bool, author string) (*service.CommitResult, error)
	// TrackDebtChange records a create/update/delete of a debt account.
	TrackDebtChange(ctx context.Context, debtID, changeType string, previousData, newData *service.DebtSnapshot, author string) (*service.CommitResult, error)
}

// TrackHandler handles HTTP requests that record budget mutations.
type TrackHandler struct {
	History HistoryService
}

// UnassignedCash handles POST /api/track/unassigned-cash requests.
func (h *TrackHandler) UnassignedCash(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PreviousAmount float64 `json:"previousAmount"`
		NewAmount      float64 `json:"newAmount"`
		Source         string  `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	author := middleware.GetAuthorFromContext(r.Context())
	result, err := h.History.TrackUnassignedCashChange(r.Context(), req.PreviousAmount, req.NewAmount, author, req.Source)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// ActualBalance handles POST /api/track/actual-balance requests.
func (h *TrackHandler) ActualBalance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PreviousBalance float64 `json:"previousBalance"`
		NewBalance      float64 `json:"newBalance"`
		IsManual        bool    `json:"isManual"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	author := middleware.GetAuthorFromContext(r.Context())
	result, err := h.History.TrackActualBalanceChange(r.Context(), req.PreviousBalance, req.NewBalance, req.IsManual, author)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// Debt handles POST /api/track/debt requests.
func (h *TrackHandler) Debt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DebtID       string                `json:"debtId"`
		ChangeType   string                `json:"changeType"`
		PreviousData *service.DebtSnapshot `json:"previousData"`
		NewData      *service.DebtSnapshot `json:"newData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DebtID == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	author := middleware.GetAuthorFromContext(r.Context())
	result, err := h.History.TrackDebtChange(r.Context(), req.DebtID, req.ChangeType, req.PreviousData, req.NewData, author)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// Commit handles POST /api/commits requests for entity types without a
// dedicated tracker. The author always comes from the request identity; a
// device fingerprint from the identity headers is used when the body
// carries none.
func (h *TrackHandler) Commit(w http.ResponseWriter, r *http.Request) {
	var in service.CommitInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.EntityType == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	in.Author = middleware.GetAuthorFromContext(r.Context())
	if in.DeviceFingerprint == "" {
		in.DeviceFingerprint = middleware.GetFingerprintFromContext(r.Context())
	}

	result, err := h.History.CreateHistoryCommit(r.Context(), in)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
