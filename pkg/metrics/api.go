package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// APIMetrics records REST API traffic and namespace policy operations.
type APIMetrics interface {
	// ObserveRequest records one HTTP request by route pattern.
	ObserveRequest(method, route string, status int, duration time.Duration)

	// ObservePolicyOperation records a policy operation and whether it
	// succeeded. code is the client-facing error code, empty on success.
	ObservePolicyOperation(operation, code string)
}

type apiMetrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	policyOperations *prometheus.CounterVec
}

// NewAPIMetrics creates the API collectors on the registry.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewAPIMetrics() APIMetrics {
	reg := GetRegistry()
	if reg == nil {
		return nil
	}

	return &apiMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecfs_api_requests_total",
				Help: "Total number of API requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "ecfs_api_request_duration_milliseconds",
				Help: "Duration of API requests in milliseconds",
				Buckets: []float64{
					1,    // in-memory lookups
					5,    // badger
					10,   // sqlite
					50,   // postgres round trip
					100,
					500,
					1000,
					5000, // stuck store
				},
			},
			[]string{"method", "route"},
		),
		policyOperations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecfs_policy_operations_total",
				Help: "Total number of erasure coding policy operations by operation and result code",
			},
			[]string{"operation", "code"},
		),
	}
}

func (m *apiMetrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(float64(duration.Microseconds()) / 1000.0)
}

func (m *apiMetrics) ObservePolicyOperation(operation, code string) {
	if code == "" {
		code = "OK"
	}
	m.policyOperations.WithLabelValues(operation, code).Inc()
}
