package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"soldage-iot-backend/internal/telemetry"
)

// Recorder exports report and source metrics. It satisfies report.Observer.
type Recorder struct {
	fetches        *prometheus.CounterVec
	fetchLatency   *prometheus.HistogramVec
	reports        prometheus.Counter
	reportEntries  *prometheus.CounterVec
	reportDuration prometheus.Histogram
}

func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "soldage_reading_fetches_total",
			Help: "Reading queries issued to a source, by outcome.",
		}, []string{"source", "outcome"}),
		fetchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "soldage_reading_fetch_seconds",
			Help:    "Latency of reading queries per source.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"source"}),
		reports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "soldage_reports_built_total",
			Help: "Multi-variable reports built.",
		}),
		reportEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "soldage_report_entries_total",
			Help: "Variable entries produced in reports, by outcome.",
		}, []string{"outcome"}),
		reportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "soldage_report_build_seconds",
			Help:    "Time spent fetching and building a report.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
	}
	reg.MustRegister(r.fetches, r.fetchLatency, r.reports, r.reportEntries, r.reportDuration)
	return r
}

func (r *Recorder) ObserveFetch(source string, elapsed time.Duration, err error) {
	r.fetchLatency.WithLabelValues(source).Observe(elapsed.Seconds())
	r.fetches.WithLabelValues(source, fetchOutcome(err)).Inc()
}

func (r *Recorder) ObserveReport(entries, failed int, elapsed time.Duration) {
	r.reports.Inc()
	r.reportEntries.WithLabelValues("ok").Add(float64(entries - failed))
	r.reportEntries.WithLabelValues("failed").Add(float64(failed))
	r.reportDuration.Observe(elapsed.Seconds())
}

func fetchOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, telemetry.ErrInvalidRange):
		return "invalid"
	case isTimeout(err):
		return "timeout"
	default:
		return "error"
	}
}
