package orbit

import "github.com/tailored-agentic-units/lfsr/observability"

const (
	// Sequential mapping
	EventMapStart    observability.EventType = "orbit.map.start"
	EventMapComplete observability.EventType = "orbit.map.complete"

	// Parallel mapping
	EventParallelStart    observability.EventType = "orbit.parallel.start"
	EventParallelComplete observability.EventType = "orbit.parallel.complete"
	EventWorkerStart      observability.EventType = "orbit.worker.start"
	EventWorkerComplete   observability.EventType = "orbit.worker.complete"

	// Merging
	EventMergeComplete observability.EventType = "orbit.merge.complete"
)
