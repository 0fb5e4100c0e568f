package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// HealthResponse is the envelope returned by the health endpoints.
type HealthResponse struct {
	Status    string     `json:"status" yaml:"status"`
	Timestamp time.Time  `json:"timestamp" yaml:"timestamp"`
	Data      HealthData `json:"data" yaml:"data,omitempty"`
	Error     string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// HealthData merges the liveness and readiness payloads. Fields the probe
// does not report stay zero.
type HealthData struct {
	Service   string `json:"service,omitempty" yaml:"service,omitempty"`
	StartedAt string `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Uptime    string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	UptimeSec int64  `json:"uptime_sec,omitempty" yaml:"uptime_sec,omitempty"`
	Policies  int    `json:"policies,omitempty" yaml:"policies,omitempty"`
	Latency   string `json:"latency,omitempty" yaml:"latency,omitempty"`
}

// Healthy reports whether the probe succeeded.
func (h *HealthResponse) Healthy() bool {
	return h.Status == "healthy"
}

// Health calls the liveness probe.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	return getResource[HealthResponse](ctx, c, "/health")
}

// Ready calls the readiness probe. An unready server is reported through
// the returned response rather than as an error.
func (c *Client) Ready(ctx context.Context) (*HealthResponse, error) {
	resp, err := getResource[HealthResponse](ctx, c, "/health/ready")
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable {
		var unready HealthResponse
		if json.Unmarshal([]byte(apiErr.Detail), &unready) == nil && unready.Status != "" {
			return &unready, nil
		}
	}
	return resp, err
}
