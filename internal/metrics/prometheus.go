package metrics

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink using the Prometheus client library.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	jobsStarted    prometheus.Counter
	jobsFinished   *prometheus.CounterVec
	jobDuration    prometheus.Histogram
	jobsRunning    prometheus.Gauge
	heartbeats     prometheus.Counter
	linesFlushed   prometheus.Counter
	cancelObserved prometheus.Counter
}

// NewPrometheusSink creates a new Prometheus metrics sink registered on reg.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{
		jobsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "otto_jobs_started_total",
			Help: "Total number of jobs claimed for execution.",
		}),
		jobsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "otto_jobs_finished_total",
			Help: "Total number of jobs reaching a final status.",
		}, []string{"status"}),
		jobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "otto_job_duration_seconds",
			Help:    "Wall-clock duration of finished jobs in seconds.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 3600},
		}),
		jobsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "otto_jobs_running",
			Help: "Number of jobs currently executing on this worker.",
		}),
		heartbeats: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "otto_heartbeats_emitted_total",
			Help: "Total number of synthetic heartbeat log lines emitted.",
		}),
		linesFlushed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "otto_log_lines_flushed_total",
			Help: "Total number of log lines flushed to job records.",
		}),
		cancelObserved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "otto_cancels_observed_total",
			Help: "Total number of cancel requests acted upon.",
		}),
	}
	for _, c := range []prometheus.Collector{
		s.jobsStarted, s.jobsFinished, s.jobDuration, s.jobsRunning,
		s.heartbeats, s.linesFlushed, s.cancelObserved,
	} {
		if err := reg.Register(c); err != nil {
			log.Println("[Metrics] register:", err)
		}
	}
	return s
}

func (s *PrometheusSink) JobStarted() {
	s.jobsStarted.Inc()
	s.jobsRunning.Inc()
}

func (s *PrometheusSink) JobFinished(status string, d time.Duration) {
	s.jobsFinished.WithLabelValues(status).Inc()
	s.jobDuration.Observe(d.Seconds())
	s.jobsRunning.Dec()
}

func (s *PrometheusSink) HeartbeatEmitted() {
	s.heartbeats.Inc()
}

func (s *PrometheusSink) LinesFlushed(n int) {
	s.linesFlushed.Add(float64(n))
}

func (s *PrometheusSink) CancelObserved() {
	s.cancelObserved.Inc()
}
