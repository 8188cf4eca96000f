package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	OutcomeSent    = "sent"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// NotificationMetrics counts email dispatch attempts by kind and outcome.
type NotificationMetrics struct {
	sent *prometheus.CounterVec
}

func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	if reg == nil {
		return &NotificationMetrics{}
	}
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Client order notifications by kind and outcome.",
	}, []string{"kind", "outcome"})
	reg.MustRegister(sent)
	return &NotificationMetrics{sent: sent}
}

func (n *NotificationMetrics) Observe(kind, outcome string) {
	if n == nil || n.sent == nil {
		return
	}
	n.sent.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}
