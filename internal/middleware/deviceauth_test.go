package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDeviceAuth_PropagatesHeaders(t *testing.T) {
	var gotAuthor, gotFingerprint string
	handler := DeviceAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuthor = GetAuthorFromContext(r.Context())
		gotFingerprint = GetFingerprintFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/history/activity", nil)
	req.Header.Set("X-Author", "dana")
	req.Header.Set("X-Device-Fingerprint", "fp-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotAuthor != "dana" {
		t.Errorf("author = %q; want dana", gotAuthor)
	}
	if gotFingerprint != "fp-1" {
		t.Errorf("fingerprint = %q; want fp-1", gotFingerprint)
	}
}

func TestDeviceAuth_DefaultsAuthor(t *testing.T) {
	var gotAuthor string
	handler := DeviceAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuthor = GetAuthorFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if gotAuthor != DefaultAuthor {
		t.Errorf("author = %q; want default %q", gotAuthor, DefaultAuthor)
	}
}

func TestGetAuthorFromContext_MissingValue(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetAuthorFromContext(req.Context()); got != "" {
		t.Errorf("author = %q; want empty without middleware", got)
	}
}
