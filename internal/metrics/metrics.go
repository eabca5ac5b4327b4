// Package metrics holds the Prometheus collectors for outbound record-store
// requests and inbound API requests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "employee_directory"

// Recorder owns a private registry so tests and multiple servers do not collide
// on the global default registerer. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	storeRequests *prometheus.CounterVec
	storeLatency  *prometheus.HistogramVec
	apiRequests   *prometheus.CounterVec
	apiLatency    *prometheus.HistogramVec
	searches      *prometheus.CounterVec
}

// New creates a Recorder with process and Go runtime collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		storeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "requests_total",
			Help:      "Requests sent to the record store, by operation and status code.",
		}, []string{"op", "code"}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "request_duration_seconds",
			Help:      "Record store request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "API requests served, by route and status code.",
		}, []string{"method", "route", "code"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "queries_total",
			Help:      "Debounced search queries, by outcome (issued, applied, discarded, failed).",
		}, []string{"outcome"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.storeRequests,
		r.storeLatency,
		r.apiRequests,
		r.apiLatency,
		r.searches,
	)
	return r
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveStoreRequest records one record-store round trip. code 0 means the
// request never produced a response.
func (r *Recorder) ObserveStoreRequest(op string, code int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.storeRequests.WithLabelValues(op, codeLabel(code)).Inc()
	r.storeLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveAPIRequest records one served API request.
func (r *Recorder) ObserveAPIRequest(method, route string, code int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.apiRequests.WithLabelValues(method, route, codeLabel(code)).Inc()
	r.apiLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Search outcomes.
const (
	SearchIssued    = "issued"
	SearchApplied   = "applied"
	SearchDiscarded = "discarded"
	SearchFailed    = "failed"
)

// ObserveSearch counts a debounced search outcome.
func (r *Recorder) ObserveSearch(outcome string) {
	if r == nil {
		return
	}
	r.searches.WithLabelValues(outcome).Inc()
}

func codeLabel(code int) string {
	if code == 0 {
		return "error"
	}
	return strconv.Itoa(code)
}
