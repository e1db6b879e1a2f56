package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers and records all Prometheus metrics for the
// service. A nil *Collector is valid and records nothing, so callers
// never need to branch on whether metrics are enabled.
type Collector struct {
	registry *prometheus.Registry

	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	reasonsEmitted     *prometheus.CounterVec
	rulesLoaded        prometheus.Gauge
	reloadsTotal       *prometheus.CounterVec
	httpRequestsTotal  *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry, including the
// standard Go runtime and process collectors.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := &Collector{registry: registry}

	c.evaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ruler",
		Name:      "evaluations_total",
		Help:      "Completed rule evaluations by clause and status.",
	}, []string{"clause_id", "status"})

	c.evaluationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ruler",
		Name:      "evaluation_duration_seconds",
		Help:      "Rule evaluation latency.",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	}, []string{"clause_id"})

	c.reasonsEmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ruler",
		Name:      "reasons_emitted_total",
		Help:      "Reason codes emitted by failing evaluations.",
	}, []string{"code"})

	c.rulesLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ruler",
		Name:      "rules_loaded",
		Help:      "Number of rules in the active rulebook set.",
	})

	c.reloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ruler",
		Name:      "rulebook_reloads_total",
		Help:      "Rulebook reload attempts by outcome.",
	}, []string{"outcome"})

	c.httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ruler",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method, and status code.",
	}, []string{"route", "method", "code"})

	c.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ruler",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
	}, []string{"route"})

	registry.MustRegister(
		c.evaluationsTotal,
		c.evaluationDuration,
		c.reasonsEmitted,
		c.rulesLoaded,
		c.reloadsTotal,
		c.httpRequestsTotal,
		c.httpDuration,
	)

	return c
}

// RecordEvaluation records one completed evaluation.
func (c *Collector) RecordEvaluation(clauseID, status string, duration time.Duration, reasonCodes []string) {
	if c == nil {
		return
	}
	c.evaluationsTotal.WithLabelValues(clauseID, status).Inc()
	c.evaluationDuration.WithLabelValues(clauseID).Observe(duration.Seconds())
	for _, code := range reasonCodes {
		c.reasonsEmitted.WithLabelValues(code).Inc()
	}
}

// SetRulesLoaded records the size of the active rule set.
func (c *Collector) SetRulesLoaded(count int) {
	if c == nil {
		return
	}
	c.rulesLoaded.Set(float64(count))
}

// RecordReload records a rulebook reload attempt.
func (c *Collector) RecordReload(success bool) {
	if c == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	c.reloadsTotal.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(route, method string, code int, duration time.Duration) {
	if c == nil {
		return
	}
	c.httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	c.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// Handler returns the Prometheus exposition handler for this collector's
// registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
