package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the service metrics on its own registry. A nil Recorder is a
// no-op so tests and one-shot runs can skip it.
type Recorder struct {
	registry *prometheus.Registry

	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Histogram
	recordsIngested *prometheus.CounterVec
	fetchErrors     *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	detections      *prometheus.CounterVec
	signalsEmitted  *prometheus.CounterVec
	signalsExpired  prometheus.Counter
	lastSuccess     *prometheus.GaugeVec
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		runsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orbitwatch_runs_total",
				Help: "Telemetry runs by terminal state",
			},
			[]string{"state"},
		),
		runDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "orbitwatch_run_duration_seconds",
				Help:    "Wall-clock duration of a telemetry run",
				Buckets: prometheus.DefBuckets,
			},
		),
		recordsIngested: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orbitwatch_records_ingested_total",
				Help: "Element sets written to history",
			},
			[]string{"provider"},
		),
		fetchErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orbitwatch_fetch_errors_total",
				Help: "Provider fetch failures",
			},
			[]string{"provider", "transient"},
		),
		fetchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "orbitwatch_fetch_duration_seconds",
				Help:    "Provider fetch latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		detections: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orbitwatch_detections_total",
				Help: "Detector outputs before dedup",
			},
			[]string{"signal_type"},
		),
		signalsEmitted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orbitwatch_signals_emitted_total",
				Help: "Signal inserts by outcome",
			},
			[]string{"signal_type", "outcome"},
		),
		signalsExpired: f.NewCounter(
			prometheus.CounterOpts{
				Name: "orbitwatch_signals_expired_total",
				Help: "Signals moved to expired by the sweep",
			},
		),
		lastSuccess: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "orbitwatch_provider_last_success_timestamp_seconds",
				Help: "Unix time of the last successful fetch per provider",
			},
			[]string{"provider"},
		),
	}
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) RecordRun(state string, took time.Duration) {
	if r == nil {
		return
	}
	r.runsTotal.WithLabelValues(state).Inc()
	r.runDuration.Observe(took.Seconds())
}

func (r *Recorder) RecordFetch(provider string, took time.Duration, err error, transient bool) {
	if r == nil {
		return
	}
	r.fetchDuration.WithLabelValues(provider).Observe(took.Seconds())
	if err != nil {
		label := "false"
		if transient {
			label = "true"
		}
		r.fetchErrors.WithLabelValues(provider, label).Inc()
		return
	}
	r.lastSuccess.WithLabelValues(provider).SetToCurrentTime()
}

func (r *Recorder) RecordIngested(provider string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.recordsIngested.WithLabelValues(provider).Add(float64(n))
}

func (r *Recorder) RecordDetection(signalType string) {
	if r == nil {
		return
	}
	r.detections.WithLabelValues(signalType).Inc()
}

// RecordSignal counts an emit; outcome is created, duplicate or error.
func (r *Recorder) RecordSignal(signalType, outcome string) {
	if r == nil {
		return
	}
	r.signalsEmitted.WithLabelValues(signalType, outcome).Inc()
}

func (r *Recorder) RecordExpired(n int64) {
	if r == nil || n <= 0 {
		return
	}
	r.signalsExpired.Add(float64(n))
}
