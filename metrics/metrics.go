// Package metrics exposes Prometheus counters for report generation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eventreport/assembly"
)

// Recorder implements assembly.Observer.
type Recorder struct {
	registry    *prometheus.Registry
	stages      *prometheus.CounterVec
	generations *prometheus.CounterVec
	duration    prometheus.Histogram
	published   *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}
	r.stages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventreport",
		Name:      "stage_outcomes_total",
		Help:      "Pipeline stage outcomes by stage and outcome",
	}, []string{"stage", "outcome"})
	r.generations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventreport",
		Name:      "generations_total",
		Help:      "Report generations by final pipeline state",
	}, []string{"state"})
	r.duration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "eventreport",
		Name:      "generation_duration_seconds",
		Help:      "Time spent assembling one report",
		Buckets:   prometheus.DefBuckets,
	})
	r.published = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventreport",
		Name:      "side_effects_total",
		Help:      "Archive uploads and notifications by target and result",
	}, []string{"target", "result"})

	r.registry.MustRegister(
		r.stages,
		r.generations,
		r.duration,
		r.published,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) StageCompleted(stage string, outcome assembly.Outcome) {
	r.stages.WithLabelValues(stage, string(outcome)).Inc()
}

func (r *Recorder) GenerationCompleted(state assembly.State, elapsed time.Duration) {
	r.generations.WithLabelValues(string(state)).Inc()
	r.duration.Observe(elapsed.Seconds())
}

// SideEffect counts an archive upload or notification attempt.
func (r *Recorder) SideEffect(target string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.published.WithLabelValues(target, result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
