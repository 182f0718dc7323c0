// Package metrics exports search metrics to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/viant/vecsearch/search"
)

// Prometheus implements search.MetricsCollector.
type Prometheus struct {
	latency *prometheus.HistogramVec
	results *prometheus.HistogramVec
	skipped *prometheus.CounterVec
}

// NewPrometheus creates the collectors and registers them with reg. A nil
// reg uses the default registerer.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &Prometheus{
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vecsearch",
			Name:      "search_latency_seconds",
			Help:      "Latency of search calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "status"}),
		results: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vecsearch",
			Name:      "search_results",
			Help:      "Number of ranked results per successful search.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"kind"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vecsearch",
			Name:      "degenerate_vectors_skipped_total",
			Help:      "Stored vectors skipped as degenerate during ranking.",
		}, []string{"kind"}),
	}
	for _, c := range []prometheus.Collector{p.latency, p.results, p.skipped} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// RecordSearch implements search.MetricsCollector.
func (p *Prometheus) RecordSearch(kind string, results, skipped int, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.latency.WithLabelValues(kind, status).Observe(d.Seconds())
	if err != nil {
		return
	}
	p.results.WithLabelValues(kind).Observe(float64(results))
	p.skipped.WithLabelValues(kind).Add(float64(skipped))
}

var _ search.MetricsCollector = (*Prometheus)(nil)
