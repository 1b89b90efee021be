package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters for the unlock funnel and its outbound calls.
type Metrics struct {
	flowStages    *prometheus.CounterVec
	notifications *prometheus.CounterVec
	submissions   *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		flowStages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "unlockpro",
			Subsystem: "unlock",
			Name:      "flow_stage_total",
			Help:      "Unlock flows entering each stage",
		}, []string{"stage"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "unlockpro",
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Best-effort outbound deliveries by target and outcome",
		}, []string{"target", "outcome"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "unlockpro",
			Subsystem: "forms",
			Name:      "submissions_total",
			Help:      "Form submissions by form and result",
		}, []string{"form", "result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.flowStages, m.notifications, m.submissions)
	return m
}

func (m *Metrics) ObserveFlow(stage string) {
	if m == nil {
		return
	}
	m.flowStages.WithLabelValues(stage).Inc()
}

func (m *Metrics) ObserveDelivery(target string, err error) {
	if m == nil {
		return
	}
	outcome := "delivered"
	if err != nil {
		outcome = "failed"
	}
	m.notifications.WithLabelValues(target, outcome).Inc()
}

func (m *Metrics) ObserveSubmission(form, result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(form, result).Inc()
}
