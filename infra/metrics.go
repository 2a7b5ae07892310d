package infra

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Tsinling0525/rivulet-nautobot/plugin"
)

// MetricsBus counts engine events per event name and node type.
type MetricsBus struct {
	reg    *prometheus.Registry
	events *prometheus.CounterVec
}

func NewMetricsBus() *MetricsBus {
	reg := prometheus.NewRegistry()
	events := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rivulet_engine_events_total",
			Help: "Engine events by event name and node type.",
		},
		[]string{"event", "node_type"},
	)
	reg.MustRegister(events)
	return &MetricsBus{reg: reg, events: events}
}

func (m *MetricsBus) Emit(ctx context.Context, event string, fields map[string]any) error {
	nodeType, _ := fields["type"].(string)
	m.events.WithLabelValues(event, nodeType).Inc()
	return nil
}

// Handler serves the collected metrics in the Prometheus text format.
func (m *MetricsBus) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

var _ plugin.EventBus = (*MetricsBus)(nil)
