package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thef4tdaddy/violet-vault-sub014/internal/models"
	"github.com/thef4tdaddy/violet-vault-sub014/internal/service"
)

func TestAPI_IdentityHeaders(t *testing.T) {
	var gotAuthor, gotFingerprint string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuthor = r.Header.Get("X-Author")
		gotFingerprint = r.Header.Get("X-Device-Fingerprint")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]models.Change{})
	}))
	defer srv.Close()

	api := New(srv.URL, "alice", "fp-1")
	_, err := api.RecentActivity(5)

	require.NoError(t, err)
	assert.Equal(t, "alice", gotAuthor)
	assert.Equal(t, "fp-1", gotFingerprint)
}

func TestAPI_TrackDebt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/track/debt", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "debt-1", req["debtId"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(service.CommitResult{
			Commit: models.Commit{Hash: "bafyhash"},
		})
	}))
	defer srv.Close()

	api := New(srv.URL, "alice", "fp-1")
	result, err := api.TrackDebt("debt-1", "add", nil, &service.DebtSnapshot{Name: "Car Loan", CurrentBalance: 9000})

	require.NoError(t, err)
	assert.Equal(t, "bafyhash", result.Commit.Hash)
}

func TestAPI_RecentChanges_Query(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/history/recent", r.URL.Path)
		assert.Equal(t, "debts", r.URL.Query().Get("entityType"))
		assert.Equal(t, "7", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]models.Change{{CommitHash: "h1"}})
	}))
	defer srv.Close()

	api := New(srv.URL, "alice", "fp-1")
	changes, err := api.RecentChanges("debts", 7)

	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "h1", changes[0].CommitHash)
}

func TestAPI_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "name already exists", http.StatusConflict)
	}))
	defer srv.Close()

	api := New(srv.URL, "alice", "fp-1")
	_, err := api.CreateBranch("bafysource", "experiment", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
	assert.Contains(t, err.Error(), "name already exists")
}

func TestAPI_SwitchBranch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/branches/experiment/switch", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.Branch{Name: "experiment", IsActive: true})
	}))
	defer srv.Close()

	api := New(srv.URL, "alice", "fp-1")
	branch, err := api.SwitchBranch("experiment")

	require.NoError(t, err)
	assert.True(t, branch.IsActive)
}
