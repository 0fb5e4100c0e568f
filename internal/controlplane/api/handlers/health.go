package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/marmos91/ecfs/pkg/namespace"
)

// HealthCheckTimeout bounds the store probe of the readiness endpoint.
const HealthCheckTimeout = 5 * time.Second

// HealthHandler handles health check endpoints.
//
// Health endpoints are unauthenticated and provide:
//   - Liveness probe: Is the server process running?
//   - Readiness probe: Can the namespace store serve reads?
type HealthHandler struct {
	ns        *namespace.Namespace
	startTime time.Time
}

// NewHealthHandler creates a new health handler. A nil namespace makes the
// readiness probe report unhealthy.
func NewHealthHandler(ns *namespace.Namespace) *HealthHandler {
	return &HealthHandler{
		ns:        ns,
		startTime: time.Now(),
	}
}

// Liveness handles GET /health.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startTime)
	WriteJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"service":    "ecfs",
		"started_at": h.startTime.UTC().Format(time.RFC3339),
		"uptime":     uptime.Round(time.Second).String(),
		"uptime_sec": int64(uptime.Seconds()),
	}))
}

// Readiness handles GET /health/ready. The server is ready once the root
// directory can be read from the store.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.ns == nil {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthyResponse("namespace not initialized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), HealthCheckTimeout)
	defer cancel()

	start := time.Now()
	if _, err := h.ns.Stat(ctx, namespace.Root); err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, unhealthyResponse(err.Error()))
		return
	}

	WriteJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"policies": len(h.ns.Catalog().List()),
		"latency":  time.Since(start).String(),
	}))
}
