package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusObserver counts events by type and severity.
type PrometheusObserver struct {
	events *prometheus.CounterVec
}

// NewPrometheusObserver registers lfsr_events_total with reg.
func NewPrometheusObserver(reg prometheus.Registerer) (*PrometheusObserver, error) {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lfsr",
		Name:      "events_total",
		Help:      "Observability events by type and severity",
	}, []string{"type", "level"})

	if err := reg.Register(events); err != nil {
		return nil, err
	}
	return &PrometheusObserver{events: events}, nil
}

func (o *PrometheusObserver) OnEvent(_ context.Context, event Event) {
	o.events.WithLabelValues(string(event.Type), event.Level.String()).Inc()
}
