package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/thef4tdaddy/violet-vault-sub014/internal/middleware"
	"github.com/thef4tdaddy/violet-vault-sub014/internal/models"
	"github.com/thef4tdaddy/violet-vault-sub014/internal/service"
)

// RegistryService defines the branch/tag operations required by the
// RegistryHandler.
type RegistryService interface {
	CreateBranch(ctx context.Context, in service.CreateBranchInput) (*models.Branch, error)
	CreateTag(ctx context.Context, in service.CreateTagInput) (*models.Tag, error)
	SwitchBranch(ctx context.Context, name string) (*models.Branch, error)
	GetBranches(ctx context.Context) ([]models.Branch, error)
	GetTags(ctx context.Context) ([]models.Tag, error)
}

// RegistryHandler handles branch and tag requests.
type RegistryHandler struct {
	Registry RegistryService
}

// CreateBranch handles POST /api/branches requests.
func (h *RegistryHandler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	var in service.CreateBranchInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.BranchName == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if in.Author == "" {
		in.Author = middleware.GetAuthorFromContext(r.Context())
	}

	branch, err := h.Registry.CreateBranch(r.Context(), in)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, branch)
}

// CreateTag handles POST /api/tags requests.
func (h *RegistryHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var in service.CreateTagInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.TagName == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if in.Author == "" {
		in.Author = middleware.GetAuthorFromContext(r.Context())
	}

	tag, err := h.Registry.CreateTag(r.Context(), in)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// SwitchBranch handles POST /api/branches/{name}/switch requests.
func (h *RegistryHandler) SwitchBranch(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	branch, err := h.Registry.SwitchBranch(r.Context(), name)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, branch)
}

// ListBranches handles GET /api/branches requests.
func (h *RegistryHandler) ListBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.Registry.GetBranches(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if branches == nil {
		branches = []models.Branch{}
	}
	writeJSON(w, http.StatusOK, branches)
}

// ListTags handles GET /api/tags requests.
func (h *RegistryHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.Registry.GetTags(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	writeJSON(w, http.StatusOK, tags)
}

func writeRegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrDuplicateName):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrCommitNotFound), errors.Is(err, service.ErrBranchNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
