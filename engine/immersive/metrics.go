package immersive

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "oxyxr"

// Metrics are the Prometheus collectors updated by a Controller. A nil *Metrics records nothing.
type Metrics struct {
	sessionsStarted prometheus.Counter
	requestFailures prometheus.Counter
	sessionsEnded   prometheus.Counter
	sessionsActive  prometheus.Gauge

	sessionDuration prometheus.Histogram
	frameDuration   prometheus.Histogram

	surfaceHits  *prometheus.CounterVec
	inputSources *prometheus.CounterVec
}

// NewMetrics creates unregistered session collectors. Register them with Register.
func NewMetrics() *Metrics {
	return &Metrics{
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Total number of immersive sessions granted by the platform",
		}),
		requestFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_request_failures_total",
			Help:      "Total number of immersive session requests refused by the platform",
		}),
		sessionsEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_ended_total",
			Help:      "Total number of immersive sessions torn down",
		}),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of immersive sessions currently presenting",
		}),
		sessionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Histogram of immersive session length in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Histogram of immersive frame handling time in seconds",
			Buckets:   []float64{.0005, .001, .002, .004, .008, .011, .016, .033, .1},
		}),
		surfaceHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panel_surface_hits_total",
			Help:      "Total number of frames a control panel surface was hit by an input ray",
		}, []string{"surface"}),
		inputSources: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_sources_connected_total",
			Help:      "Total number of input sources connected, by target-ray mode",
		}, []string{"mode"}),
	}
}

// Collectors returns every collector, for registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.sessionsStarted,
		m.requestFailures,
		m.sessionsEnded,
		m.sessionsActive,
		m.sessionDuration,
		m.frameDuration,
		m.surfaceHits,
		m.inputSources,
	}
}

// Register registers every collector with reg.
//
// Parameters:
//   - reg: the registry
//
// Returns:
//   - error: the first registration error
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) sessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
	m.sessionsActive.Inc()
}

func (m *Metrics) requestFailed() {
	if m == nil {
		return
	}
	m.requestFailures.Inc()
}

func (m *Metrics) sessionEnded(d time.Duration) {
	if m == nil {
		return
	}
	m.sessionsEnded.Inc()
	m.sessionsActive.Dec()
	m.sessionDuration.Observe(d.Seconds())
}

func (m *Metrics) frameHandled(d time.Duration) {
	if m == nil {
		return
	}
	m.frameDuration.Observe(d.Seconds())
}

func (m *Metrics) surfaceHit(surface string) {
	if m == nil {
		return
	}
	m.surfaceHits.WithLabelValues(surface).Inc()
}

func (m *Metrics) inputSourceConnected(mode string) {
	if m == nil {
		return
	}
	m.inputSources.WithLabelValues(mode).Inc()
}
