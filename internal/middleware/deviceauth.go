// Package middleware provides HTTP middlewares for identity propagation and
// request logging.
package middleware

import (
	"context"
	"net/http"
)

type ctxKey string

const (
	authorKey      ctxKey = "author"
	fingerprintKey ctxKey = "fingerprint"
)

// DefaultAuthor is used when a request names no author. The app is a
// single-household tool, so an anonymous request still attributes changes.
const DefaultAuthor = "family"

// DeviceAuth extracts the author and device fingerprint from the X-Author
// and X-Device-Fingerprint headers and stores them in the request context.
// Identity here is attribution, not authentication; the consistency
// verifier downstream treats the fingerprint as an advisory signal only.
func DeviceAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		author := r.Header.Get("X-Author")
		if author == "" {
			author = DefaultAuthor
		}
		ctx := context.WithValue(r.Context(), authorKey, author)
		ctx = context.WithValue(ctx, fingerprintKey, r.Header.Get("X-Device-Fingerprint"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAuthorFromContext extracts the author set by DeviceAuth.
// Returns an empty string if not found.
func GetAuthorFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(authorKey).(string); ok {
		return s
	}
	return ""
}

// GetFingerprintFromContext extracts the device fingerprint set by
// DeviceAuth. Returns an empty string if not found.
func GetFingerprintFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(fingerprintKey).(string); ok {
		return s
	}
	return ""
}
