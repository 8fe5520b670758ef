package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the annotator's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	sessionsOpened *prometheus.CounterVec
	saves          *prometheus.CounterVec
	navigations    *prometheus.CounterVec
	progress       *prometheus.GaugeVec
	rows           *prometheus.GaugeVec
	sideEffects    *prometheus.CounterVec
}

// New builds the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessionsOpened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "annotator_sessions_opened_total",
				Help: "Session open attempts by outcome",
			},
			[]string{"status"},
		),
		saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "annotator_saves_total",
				Help: "Row saves by write policy and outcome",
			},
			[]string{"policy", "status"},
		),
		navigations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "annotator_navigations_total",
				Help: "Navigation actions by direction",
			},
			[]string{"direction"},
		),
		progress: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "annotator_session_progress_rows",
				Help: "Resume position of each open session",
			},
			[]string{"session_id"},
		),
		rows: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "annotator_session_rows",
				Help: "Dataset size of each open session",
			},
			[]string{"session_id"},
		),
		sideEffects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "annotator_side_effects_total",
				Help: "Archive and event deliveries by target and outcome",
			},
			[]string{"target", "status"},
		),
	}

	m.registry.MustRegister(
		m.sessionsOpened,
		m.saves,
		m.navigations,
		m.progress,
		m.rows,
		m.sideEffects,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) SessionOpened(err error) {
	if m == nil {
		return
	}
	m.sessionsOpened.WithLabelValues(status(err)).Inc()
}

func (m *Metrics) Saved(policy string, err error) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(policy, status(err)).Inc()
}

func (m *Metrics) Navigated(from, to int) {
	if m == nil {
		return
	}
	direction := "stay"
	switch {
	case to > from:
		direction = "forward"
	case to < from:
		direction = "backward"
	}
	m.navigations.WithLabelValues(direction).Inc()
}

// SetProgress records a session's position and size.
func (m *Metrics) SetProgress(sessionID string, progress, total int) {
	if m == nil {
		return
	}
	m.progress.WithLabelValues(sessionID).Set(float64(progress))
	m.rows.WithLabelValues(sessionID).Set(float64(total))
}

// ForgetSession drops the per-session gauges.
func (m *Metrics) ForgetSession(sessionID string) {
	if m == nil {
		return
	}
	m.progress.DeleteLabelValues(sessionID)
	m.rows.DeleteLabelValues(sessionID)
}

func (m *Metrics) SideEffect(target string, err error) {
	if m == nil {
		return
	}
	m.sideEffects.WithLabelValues(target, status(err)).Inc()
}
