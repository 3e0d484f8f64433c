// Package metrics exposes animation and HTTP instrumentation to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TFMV/giantgraph/animation"
)

// Registry holds all collectors on a private Prometheus registry
type Registry struct {
	registry *prometheus.Registry

	FramesTotal       prometheus.Counter
	PausedTicksTotal  prometheus.Counter
	TickDuration      prometheus.Histogram
	Edges             prometheus.Gauge
	MaxEdges          prometheus.Gauge
	RevealedVertices  prometheus.Gauge
	GrowthAttempts    prometheus.Histogram
	GrowthFallbacks   prometheus.Counter
	HoverBoostsTotal  prometheus.Counter
	AnimationState    *prometheus.GaugeVec
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

// NewRegistry creates a registry with every collector registered
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initAnimationMetrics()
	r.initHTTPMetrics()
	return r
}

func (r *Registry) initAnimationMetrics() {
	r.FramesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "giantgraph_frames_total",
			Help: "Total number of frames stepped",
		},
	)

	r.PausedTicksTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "giantgraph_paused_ticks_total",
			Help: "Total number of ticks skipped while paused",
		},
	)

	r.TickDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "giantgraph_tick_duration_seconds",
			Help:    "Time spent stepping and painting one frame",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.016, 0.033, 0.1},
		},
	)

	r.Edges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "giantgraph_edges",
			Help: "Number of edges grown so far",
		},
	)

	r.MaxEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "giantgraph_max_edges",
			Help: "Number of edges in the complete graph",
		},
	)

	r.RevealedVertices = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "giantgraph_revealed_vertices",
			Help: "Number of vertices that are an endpoint of some edge",
		},
	)

	r.GrowthAttempts = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "giantgraph_growth_attempts",
			Help:    "Random draws spent choosing each new edge",
			Buckets: prometheus.ExponentialBuckets(2, 2, 10),
		},
	)

	r.GrowthFallbacks = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "giantgraph_growth_fallbacks_total",
			Help: "Edges chosen by a full scan after random draws ran out",
		},
	)

	r.HoverBoostsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "giantgraph_hover_boosts_total",
			Help: "Total number of vertices boosted by the pointer",
		},
	)

	r.AnimationState = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "giantgraph_animation_state",
			Help: "Animation state (1 for current state, 0 otherwise)",
		},
		[]string{"state"}, // stopped, running, paused
	)
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "giantgraph_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	r.HTTPDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "giantgraph_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
}

// TickObserved records one tick
func (r *Registry) TickObserved(s animation.TickStats) {
	if s.Paused {
		r.PausedTicksTotal.Inc()
		return
	}
	r.FramesTotal.Inc()
	r.TickDuration.Observe(s.Duration.Seconds())
	r.Edges.Set(float64(s.EdgeCount))
	r.MaxEdges.Set(float64(s.MaxEdges))
	r.RevealedVertices.Set(float64(s.Revealed))
	if s.EdgeAdded {
		r.GrowthAttempts.Observe(float64(s.Attempts))
		if s.Fallback {
			r.GrowthFallbacks.Inc()
		}
	}
}

// HoverObserved records how many vertices a pointer position boosted
func (r *Registry) HoverObserved(boosted int) {
	r.HoverBoostsTotal.Add(float64(boosted))
}

// StateChanged records the new lifecycle state
func (r *Registry) StateChanged(state animation.State) {
	for _, s := range []animation.State{animation.Stopped, animation.Running, animation.Paused} {
		r.AnimationState.WithLabelValues(s.String()).Set(0)
	}
	r.AnimationState.WithLabelValues(state.String()).Set(1)
	if state == animation.Stopped {
		r.Edges.Set(0)
		r.RevealedVertices.Set(0)
	}
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	r.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Gatherer returns the underlying registry
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the Prometheus text format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
