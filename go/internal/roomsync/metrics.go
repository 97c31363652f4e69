package roomsync

// Metrics defines the interface for collecting controller metrics
type Metrics interface {
	RecordEventApplied(eventType EventType)
	RecordEventDropped(reason string)
	RecordIntent(intent string, sent bool)
}

// NoOpMetrics is a no-op implementation for when metrics aren't needed
type NoOpMetrics struct{}

func (NoOpMetrics) RecordEventApplied(eventType EventType) {}
func (NoOpMetrics) RecordEventDropped(reason string)       {}
func (NoOpMetrics) RecordIntent(intent string, sent bool)  {}

// Drop reasons reported to Metrics.RecordEventDropped
const (
	DropReasonMalformed = "malformed"
	DropReasonStale     = "stale"
)
