package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/thef4tdaddy/violet-vault-sub014/internal/middleware"
	"github.com/thef4tdaddy/violet-vault-sub014/internal/models"
	"github.com/thef4tdaddy/violet-vault-sub014/internal/service"
)

// DeviceService defines the consistency operations required by the
// DeviceHandler.
type DeviceService interface {
	VerifyDeviceConsistency(ctx context.Context, author, currentFingerprint string) (bool, error)
	SignCommit(ctx context.Context, commitData models.Payload, deviceFingerprint string) (*service.SignedCommit, error)
}

// DeviceHandler handles device-consistency and signing requests.
type DeviceHandler struct {
	Devices DeviceService
}

// Verify handles GET /api/devices/consistency requests. The author and
// fingerprint come from the identity headers.
func (h *DeviceHandler) Verify(w http.ResponseWriter, r *http.Request) {
	author := middleware.GetAuthorFromContext(r.Context())
	fp := middleware.GetFingerprintFromContext(r.Context())

	consistent, err := h.Devices.VerifyDeviceConsistency(r.Context(), author, fp)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isDeviceConsistent": consistent})
}

// Sign handles POST /api/sign requests. The body carries the commit data;
// the fingerprint comes from the body or, when absent, the identity headers.
func (h *DeviceHandler) Sign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CommitData        models.Payload `json:"commitData"`
		DeviceFingerprint string         `json:"deviceFingerprint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CommitData == nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	fp := req.DeviceFingerprint
	if fp == "" {
		fp = middleware.GetFingerprintFromContext(r.Context())
	}

	signed, err := h.Devices.SignCommit(r.Context(), req.CommitData, fp)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, signed)
}
