package http

import (
	"net/http"

	"github.com/thef4tdaddy/violet-vault-sub014/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the budget
// history API. It applies JSON content-type enforcement, request logging,
// and identity-header extraction, and mounts the tracking, query, registry,
// device and analytics endpoints under /api.
//
// Routes:
//
//	POST /api/track/unassigned-cash       → trackHandler.UnassignedCash
//	POST /api/track/actual-balance        → trackHandler.ActualBalance
//	POST /api/track/debt                  → trackHandler.Debt
//	POST /api/commits                     → trackHandler.Commit
//	GET  /api/history/recent              → queryHandler.Recent
//	GET  /api/history/entity/{entityType} → queryHandler.Entity
//	GET  /api/history/activity            → queryHandler.Activity
//	POST /api/branches                    → registryHandler.CreateBranch
//	GET  /api/branches                    → registryHandler.ListBranches
//	POST /api/branches/{name}/switch      → registryHandler.SwitchBranch
//	POST /api/tags                        → registryHandler.CreateTag
//	GET  /api/tags                        → registryHandler.ListTags
//	GET  /api/devices/consistency         → deviceHandler.Verify
//	POST /api/sign                        → deviceHandler.Sign
//	GET  /api/analytics/patterns          → analyticsHandler.Patterns
//
// Middleware chain (applied in order):
//  1. AllowContentType("application/json") — rejects non-JSON requests
//  2. WithRequestLogging(logger)           — logs incoming requests
//  3. DeviceAuth                           — extracts author and fingerprint headers
func NewRouter(
	trackHandler *TrackHandler,
	queryHandler *QueryHandler,
	registryHandler *RegistryHandler,
	deviceHandler *DeviceHandler,
	analyticsHandler *AnalyticsHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))
	// Resolve the author and device fingerprint headers
	r.Use(middleware.DeviceAuth)

	// Mount API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/track", func(r chi.Router) {
			r.Post("/unassigned-cash", trackHandler.UnassignedCash)
			r.Post("/actual-balance", trackHandler.ActualBalance)
			r.Post("/debt", trackHandler.Debt)
		})
		r.Post("/commits", trackHandler.Commit)

		r.Route("/history", func(r chi.Router) {
			r.Get("/recent", queryHandler.Recent)
			r.Get("/entity/{entityType}", queryHandler.Entity)
			r.Get("/activity", queryHandler.Activity)
		})

		r.Route("/branches", func(r chi.Router) {
			r.Get("/", registryHandler.ListBranches)
			r.Post("/", registryHandler.CreateBranch)
			r.Post("/{name}/switch", registryHandler.SwitchBranch)
		})
		r.Route("/tags", func(r chi.Router) {
			r.Get("/", registryHandler.ListTags)
			r.Post("/", registryHandler.CreateTag)
		})

		r.Get("/devices/consistency", deviceHandler.Verify)
		r.Post("/sign", deviceHandler.Sign)

		r.Get("/analytics/patterns", analyticsHandler.Patterns)
	})

	return r
}
