package libgexp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SearchMetrics counts what a leading-term search does with each term it pops.
// A nil *SearchMetrics is valid and records nothing.
type SearchMetrics struct {
	Expansions     prometheus.Counter
	Accepted       prometheus.Counter
	WrongOrder     prometheus.Counter // deterministic, but not at the target order
	Pruned         prometheus.Counter // random, above the target order
	Frontier       prometheus.Gauge
	SearchDuration prometheus.Histogram
}

// NewSearchMetrics creates the search metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewSearchMetrics(reg prometheus.Registerer) *SearchMetrics {
	factory := promauto.With(reg)
	return &SearchMetrics{
		Expansions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "gexp",
			Subsystem: "search",
			Name:      "expansions_total",
			Help:      "Rewrite steps applied to non-deterministic terms.",
		}),
		Accepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "gexp",
			Subsystem: "search",
			Name:      "leading_terms_total",
			Help:      "Deterministic terms accepted at the target order.",
		}),
		WrongOrder: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "gexp",
			Subsystem: "search",
			Name:      "wrong_order_total",
			Help:      "Deterministic terms discarded for not being at the target order.",
		}),
		Pruned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "gexp",
			Subsystem: "search",
			Name:      "pruned_total",
			Help:      "Non-deterministic terms pruned for being above the target order.",
		}),
		Frontier: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "gexp",
			Subsystem: "search",
			Name:      "frontier_terms",
			Help:      "Terms waiting on the search stack.",
		}),
		SearchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gexp",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Wall time of complete leading-term searches.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
}

func (m *SearchMetrics) expanded() {
	if m != nil {
		m.Expansions.Inc()
	}
}

func (m *SearchMetrics) accepted() {
	if m != nil {
		m.Accepted.Inc()
	}
}

func (m *SearchMetrics) wrongOrder() {
	if m != nil {
		m.WrongOrder.Inc()
	}
}

func (m *SearchMetrics) pruned() {
	if m != nil {
		m.Pruned.Inc()
	}
}

func (m *SearchMetrics) frontier(n int) {
	if m != nil {
		m.Frontier.Set(float64(n))
	}
}

func (m *SearchMetrics) observe(seconds float64) {
	if m != nil {
		m.SearchDuration.Observe(seconds)
	}
}
