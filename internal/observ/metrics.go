package observ

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the chat collectors. Each instance owns its registry so
// tests can build as many as they like without duplicate registration.
type Metrics struct {
	Registry *prometheus.Registry

	MessagesPersisted  *prometheus.CounterVec
	Deliveries         prometheus.Counter
	DroppedDeliveries  prometheus.Counter
	SendErrors         *prometheus.CounterVec
	RealtimeConnection prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		MessagesPersisted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "staffhub",
			Name:      "messages_persisted_total",
			Help:      "Messages stored, by addressing mode.",
		}, []string{"addressing"}),
		Deliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "staffhub",
			Name:      "realtime_deliveries_total",
			Help:      "Events queued to realtime connections.",
		}),
		DroppedDeliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "staffhub",
			Name:      "realtime_dropped_deliveries_total",
			Help:      "Events dropped because a connection's outbound queue was full.",
		}),
		SendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "staffhub",
			Name:      "realtime_send_errors_total",
			Help:      "Realtime events rejected, by error kind.",
		}, []string{"kind"}),
		RealtimeConnection: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "staffhub",
			Name:      "realtime_connections",
			Help:      "Open realtime connections.",
		}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		m.MessagesPersisted,
		m.Deliveries,
		m.DroppedDeliveries,
		m.SendErrors,
		m.RealtimeConnection,
	)
	return m
}

// The helpers below accept a nil receiver so components can run without
// metrics in tests.

func (m *Metrics) MessagePersisted(addressing string) {
	if m == nil {
		return
	}
	m.MessagesPersisted.WithLabelValues(addressing).Inc()
}

func (m *Metrics) Delivered(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.Deliveries.Inc()
	} else {
		m.DroppedDeliveries.Inc()
	}
}

func (m *Metrics) SendFailed(kind string) {
	if m == nil {
		return
	}
	m.SendErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.RealtimeConnection.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.RealtimeConnection.Dec()
}
