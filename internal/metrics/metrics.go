package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds counters for direct instrumentation in the matching and library layers.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	LinkAttempts     *prometheus.CounterVec
	ApplyBatches     *prometheus.CounterVec
	AutoMatches      *prometheus.CounterVec
	ManualOverrides  *prometheus.CounterVec
	ExistenceChecks  prometheus.Counter
	SessionsStarted  prometheus.Counter
	UpstreamFailures *prometheus.CounterVec
}

// New creates and registers Bonarr metrics with the given registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LinkAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bonarr",
			Name:      "link_attempts_total",
			Help:      "Episode hard-link attempts by outcome.",
		}, []string{"status"}),
		ApplyBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bonarr",
			Name:      "apply_batches_total",
			Help:      "Apply batches by overall result.",
		}, []string{"result"}),
		AutoMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bonarr",
			Name:      "auto_matches_total",
			Help:      "Auto-matched episodes by confidence tier.",
		}, []string{"confidence"}),
		ManualOverrides: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bonarr",
			Name:      "manual_overrides_total",
			Help:      "Manual episode assignments by action.",
		}, []string{"action"}),
		ExistenceChecks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bonarr",
			Name:      "existence_checks_total",
			Help:      "Library existence checks performed.",
		}),
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bonarr",
			Name:      "sessions_started_total",
			Help:      "Matching sessions started.",
		}),
		UpstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bonarr",
			Name:      "upstream_failures_total",
			Help:      "Failed calls to metadata or download-client upstreams.",
		}, []string{"upstream"}),
	}

	reg.MustRegister(
		m.LinkAttempts,
		m.ApplyBatches,
		m.AutoMatches,
		m.ManualOverrides,
		m.ExistenceChecks,
		m.SessionsStarted,
		m.UpstreamFailures,
	)

	return m
}

// ObserveLink counts one link attempt.
func (m *Metrics) ObserveLink(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.LinkAttempts.WithLabelValues("success").Inc()
	} else {
		m.LinkAttempts.WithLabelValues("error").Inc()
	}
}

// ObserveApply counts one apply batch.
func (m *Metrics) ObserveApply(success bool) {
	if m == nil {
		return
	}
	if success {
		m.ApplyBatches.WithLabelValues("success").Inc()
	} else {
		m.ApplyBatches.WithLabelValues("failure").Inc()
	}
}

// ObserveAutoMatch counts one auto-matched episode.
func (m *Metrics) ObserveAutoMatch(confidence string) {
	if m == nil {
		return
	}
	m.AutoMatches.WithLabelValues(confidence).Inc()
}

// ObserveOverride counts a manual assignment; action is "assign" or "clear".
func (m *Metrics) ObserveOverride(action string) {
	if m == nil {
		return
	}
	m.ManualOverrides.WithLabelValues(action).Inc()
}

// ObserveExistenceCheck counts one existence check.
func (m *Metrics) ObserveExistenceCheck() {
	if m == nil {
		return
	}
	m.ExistenceChecks.Inc()
}

// ObserveSessionStarted counts one new matching session.
func (m *Metrics) ObserveSessionStarted() {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
}

// ObserveUpstreamFailure counts a failed upstream call ("tmdb" or "transmission").
func (m *Metrics) ObserveUpstreamFailure(upstream string) {
	if m == nil {
		return
	}
	m.UpstreamFailures.WithLabelValues(upstream).Inc()
}
