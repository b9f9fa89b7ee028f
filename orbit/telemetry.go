package orbit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

const namespace = "lfsr"

var tracer = otel.Tracer("lfsr.orbit")

var (
	mapsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orbit",
		Name:      "maps_total",
		Help:      "Orbit mapping runs by execution path and outcome",
	},
		[]string{"path", "outcome"},
	)

	mapDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "orbit",
		Name:      "map_duration_seconds",
		Help:      "Wall time of orbit mapping runs",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	},
		[]string{"path"},
	)

	cycleRecords = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orbit",
		Name:      "cycle_records_total",
		Help:      "Cycle records produced by parallel workers",
	})

	duplicateRecords = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orbit",
		Name:      "duplicate_cycle_records_total",
		Help:      "Cycle records discarded by the merger as duplicates",
	})

	claimSkips = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orbit",
		Name:      "claim_skips_total",
		Help:      "States skipped by workers because another traversal had claimed them",
	})
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
