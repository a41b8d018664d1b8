package bridge

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label values are bounded: message types come from knownType, drop reasons
// from the constants below.
const (
	dropRate      = "rate_limit"
	dropMalformed = "malformed"
	dropUnknown   = "unknown_type"
	dropNoHello   = "no_hello"
	dropWrongRole = "wrong_role"
)

type metrics struct {
	registry *prometheus.Registry
	clients  prometheus.Gauge
	messages *prometheus.CounterVec
	dropped  *prometheus.CounterVec
}

// newMetrics builds a registry per server so several servers (and tests) can
// coexist in one process.
func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bridge_clients",
			Help: "Currently connected sensor clients",
		}),
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_messages_total",
			Help: "Accepted messages from sensor clients",
		}, []string{"type"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_dropped_total",
			Help: "Messages dropped before reaching the game",
		}, []string{"reason"}),
	}
	m.registry.MustRegister(m.clients, m.messages, m.dropped)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
