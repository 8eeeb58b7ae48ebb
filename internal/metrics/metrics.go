package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "derby_shop"

const (
	ResultOK               = "ok"
	ResultError            = "error"
	ResultInsufficient     = "insufficient"
	ResultProcessed        = "processed"
	ResultUnmatched        = "unmatched"
	ResultDuplicate        = "duplicate"
	ResultIgnored          = "ignored"
	ResultInvalidSignature = "invalid_signature"
	ResultUpdateFailed     = "update_failed"
)

type Metrics struct {
	Checkouts       *prometheus.CounterVec
	StockDecrements *prometheus.CounterVec
	WebhookEvents   *prometheus.CounterVec
}

// New registers the service counters on reg. Pass a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Checkout attempts by result.",
		}, []string{"result"}),
		StockDecrements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_decrement_total",
			Help:      "Conditional stock decrements by result.",
		}, []string{"result"}),
		WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Payment webhook deliveries by outcome.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.Checkouts, m.StockDecrements, m.WebhookEvents)
	return m
}
