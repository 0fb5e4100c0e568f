package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/ecfs/internal/controlplane/api/handlers"
	apiMiddleware "github.com/marmos91/ecfs/internal/controlplane/api/middleware"
	"github.com/marmos91/ecfs/pkg/controlplane/api/auth"
	"github.com/marmos91/ecfs/pkg/metrics"
	"github.com/marmos91/ecfs/pkg/namespace"
)

// NewRouter creates and configures the chi router with all middleware and routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Request-scoped log context and request logging/metrics
//   - Panic recovery to prevent server crashes
//   - Request timeout to prevent hung requests
//
// Routes:
//   - GET /health - Liveness probe
//   - GET /health/ready - Readiness probe
//   - GET /metrics - Prometheus metrics (only when metrics are enabled)
//   - POST /api/v1/auth/login - User authentication
//   - POST /api/v1/auth/refresh - Token refresh
//   - GET /api/v1/auth/me - Current token identity
//   - GET /api/v1/ec/policies - Policy catalog
//   - GET /api/v1/ec/policy - Effective policy of a path
//   - PUT /api/v1/ec/policy - Set a policy (admin only)
//   - DELETE /api/v1/ec/policy - Unset a policy (admin only)
//   - GET /api/v1/namespace/entries - Stat a path
//   - POST /api/v1/namespace/directories - Create directories (admin only)
//   - POST /api/v1/namespace/files - Create a file (admin only)
func NewRouter(ns *namespace.Namespace, jwtService *auth.JWTService, users *auth.UserStore, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	apiMetrics := metrics.NewAPIMetrics()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.RequestContext)
	r.Use(apiMiddleware.RequestLogger(apiMetrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	healthHandler := handlers.NewHealthHandler(ns)

	// Health routes - unauthenticated
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	if h := metrics.Handler(); h != nil {
		r.Method(http.MethodGet, "/metrics", h)
	}

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	authHandler := handlers.NewAuthHandler(users, jwtService)
	ecHandler := handlers.NewECHandler(ns, apiMetrics)
	nsHandler := handlers.NewNamespaceHandler(ns)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(apiMiddleware.JWTAuth(jwtService))
				r.Get("/me", authHandler.Me)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(apiMiddleware.JWTAuth(jwtService))

			r.Route("/ec", func(r chi.Router) {
				r.Get("/policies", ecHandler.ListPolicies)
				r.Get("/policy", ecHandler.GetPolicy)

				r.Group(func(r chi.Router) {
					r.Use(apiMiddleware.RequireAdmin())
					r.Put("/policy", ecHandler.SetPolicy)
					r.Delete("/policy", ecHandler.UnsetPolicy)
				})
			})

			r.Route("/namespace", func(r chi.Router) {
				r.Get("/entries", nsHandler.GetEntry)

				r.Group(func(r chi.Router) {
					r.Use(apiMiddleware.RequireAdmin())
					r.Post("/directories", nsHandler.CreateDirectory)
					r.Post("/files", nsHandler.CreateFile)
				})
			})
		})
	})

	return r
}
