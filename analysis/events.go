package analysis

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tailored-agentic-units/lfsr/observability"
)

// Analyzer event types.
const (
	EventRunStart    observability.EventType = "analysis.run.start"
	EventRunComplete observability.EventType = "analysis.run.complete"
	EventFallback    observability.EventType = "analysis.fallback"
	EventCacheHit    observability.EventType = "analysis.cache.hit"
	EventError       observability.EventType = "analysis.error"
)

var fallbacks = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "lfsr",
	Subsystem: "analysis",
	Name:      "fallbacks_total",
	Help:      "Parallel orbit maps that failed and were re-run sequentially",
})
