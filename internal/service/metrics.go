package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the domain counters exported next to the HTTP metrics.
type Metrics struct {
	updates    *prometheus.CounterVec
	cacheLoads prometheus.Counter
}

// NewMetrics registers the service counters on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		updates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "case_updates_total",
				Help: "Forwarded-date updates by outcome.",
			},
			[]string{"outcome"},
		),
		cacheLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "case_cache_loads_total",
			Help: "Reads of the case store made to fill the session cache.",
		}),
	}
	for _, c := range []prometheus.Collector{m.updates, m.cacheLoads} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeUpdate(err error) {
	if m == nil {
		return
	}
	m.updates.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) observeCacheLoad() {
	if m == nil {
		return
	}
	m.cacheLoads.Inc()
}
