// Package metrics defines the Prometheus metrics of the recommendation
// pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the pipeline collectors so they can be registered on any
// registry.
type Metrics struct {
	StageDuration *prometheus.HistogramVec
	Failures      *prometheus.CounterVec
	Requests      *prometheus.CounterVec
	Songs         prometheus.Histogram
	MissingLinks  prometheus.Counter
}

// New creates the collectors and registers them on reg when it isn't nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "moodtunes_stage_duration_seconds",
			Help:    "Duration of each pipeline stage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "moodtunes_failures_total",
			Help: "Pipeline failures by failing service.",
		}, []string{"service"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "moodtunes_requests_total",
			Help: "Recommendation requests by outcome.",
		}, []string{"outcome"}),
		Songs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "moodtunes_songs_recommended",
			Help:    "Number of songs decoded per recommendation.",
			Buckets: []float64{0, 1, 2, 5, 10, 15, 20, 30},
		}),
		MissingLinks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "moodtunes_missing_links_total",
			Help: "Songs without a catalog match.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.StageDuration, m.Failures, m.Requests, m.Songs, m.MissingLinks)
	}
	return m
}

// Observe records the duration of a stage started at start.
func (m *Metrics) Observe(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Fail counts a failure attributed to the given service key.
func (m *Metrics) Fail(service string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(service).Inc()
	m.Requests.WithLabelValues("error").Inc()
}

// Succeed counts a successful recommendation with n songs, missing of
// which had no catalog link.
func (m *Metrics) Succeed(n, missing int) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues("ok").Inc()
	m.Songs.Observe(float64(n))
	m.MissingLinks.Add(float64(missing))
}
