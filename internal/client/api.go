// Package client provides the HTTP client used by the interactive shell to
// talk to the budget history server.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/thef4tdaddy/violet-vault-sub014/internal/models"
	"github.com/thef4tdaddy/violet-vault-sub014/internal/service"
)

// API talks to the budget history server. Every request carries the author
// and device fingerprint as identity headers.
type API struct {
	http        *http.Client
	baseURL     string
	author      string
	fingerprint string
}

// New constructs an API client for the given base URL and identity.
func New(baseURL, author, fingerprint string) *API {
	return &API{
		http:        &http.Client{Timeout: 10 * time.Second},
		baseURL:     baseURL,
		author:      author,
		fingerprint: fingerprint,
	}
}

func (a *API) do(method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequest(method, a.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Author", a.author)
	req.Header.Set("X-Device-Fingerprint", a.fingerprint)

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var msg bytes.Buffer
		_, _ = msg.ReadFrom(resp.Body)
		return fmt.Errorf("%s %s: server returned %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(msg.Bytes()))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// TrackUnassignedCash records an unassigned cash change.
func (a *API) TrackUnassignedCash(previousAmount, newAmount float64, source string) (*service.CommitResult, error) {
	var result service.CommitResult
	err := a.do(http.MethodPost, "/api/track/unassigned-cash", map[string]any{
		"previousAmount": previousAmount,
		"newAmount":      newAmount,
		"source":         source,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// TrackActualBalance records an actual balance change.
func (a *API) TrackActualBalance(previousBalance, newBalance float64, isManual bool) (*service.CommitResult, error) {
	var result service.CommitResult
	err := a.do(http.MethodPost, "/api/track/actual-balance", map[string]any{
		"previousBalance": previousBalance,
		"newBalance":      newBalance,
		"isManual":        isManual,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// TrackDebt records a debt change.
func (a *API) TrackDebt(debtID, changeType string, previousData, newData *service.DebtSnapshot) (*service.CommitResult, error) {
	var result service.CommitResult
	err := a.do(http.MethodPost, "/api/track/debt", map[string]any{
		"debtId":       debtID,
		"changeType":   changeType,
		"previousData": previousData,
		"newData":      newData,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RecentChanges fetches the most recent changes for an entity type.
func (a *API) RecentChanges(entityType string, limit int) ([]models.Change, error) {
	q := url.Values{"entityType": {entityType}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var changes []models.Change
	if err := a.do(http.MethodGet, "/api/history/recent?"+q.Encode(), nil, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

// EntityHistory fetches the full history of one entity.
func (a *API) EntityHistory(entityType, entityID string) ([]models.Change, error) {
	q := url.Values{}
	if entityID != "" {
		q.Set("entityId", entityID)
	}
	path := "/api/history/entity/" + url.PathEscape(entityType)
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var changes []models.Change
	if err := a.do(http.MethodGet, path, nil, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

// RecentActivity fetches the latest changes across all tracked entity types.
func (a *API) RecentActivity(limit int) ([]models.Change, error) {
	path := "/api/history/activity"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var changes []models.Change
	if err := a.do(http.MethodGet, path, nil, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

// CreateBranch creates a branch from a commit.
func (a *API) CreateBranch(fromCommitHash, branchName, description string) (*models.Branch, error) {
	var branch models.Branch
	err := a.do(http.MethodPost, "/api/branches", service.CreateBranchInput{
		FromCommitHash: fromCommitHash,
		BranchName:     branchName,
		Description:    description,
	}, &branch)
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

// CreateTag tags a commit.
func (a *API) CreateTag(commitHash, tagName, description, tagType string) (*models.Tag, error) {
	var tag models.Tag
	err := a.do(http.MethodPost, "/api/tags", service.CreateTagInput{
		CommitHash:  commitHash,
		TagName:     tagName,
		Description: description,
		TagType:     tagType,
	}, &tag)
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// SwitchBranch makes the named branch the active one.
func (a *API) SwitchBranch(name string) (*models.Branch, error) {
	var branch models.Branch
	if err := a.do(http.MethodPost, "/api/branches/"+url.PathEscape(name)+"/switch", nil, &branch); err != nil {
		return nil, err
	}
	return &branch, nil
}

// Branches lists all branches.
func (a *API) Branches() ([]models.Branch, error) {
	var branches []models.Branch
	if err := a.do(http.MethodGet, "/api/branches", nil, &branches); err != nil {
		return nil, err
	}
	return branches, nil
}

// Tags lists all tags.
func (a *API) Tags() ([]models.Tag, error) {
	var tags []models.Tag
	if err := a.do(http.MethodGet, "/api/tags", nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// ChangePatterns fetches windowed analytics. A zero timeRange lets the
// server apply its default window.
func (a *API) ChangePatterns(timeRange time.Duration) (*service.ChangePatterns, error) {
	path := "/api/analytics/patterns"
	if timeRange > 0 {
		path += "?rangeMs=" + strconv.FormatInt(timeRange.Milliseconds(), 10)
	}
	var patterns service.ChangePatterns
	if err := a.do(http.MethodGet, path, nil, &patterns); err != nil {
		return nil, err
	}
	return &patterns, nil
}
