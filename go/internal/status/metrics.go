package status

import (
	"sync"

	"github.com/mcdev12/planningpoker/go/internal/roomsync"
)

// Counters is an in-memory roomsync.Metrics exposed on /stats
type Counters struct {
	mu             sync.Mutex
	eventsApplied  map[string]int
	eventsDropped  map[string]int
	intentsSent    map[string]int
	intentsIgnored map[string]int
}

// Stats is a copy of the counters
type Stats struct {
	EventsApplied  map[string]int `json:"events_applied"`
	EventsDropped  map[string]int `json:"events_dropped"`
	IntentsSent    map[string]int `json:"intents_sent"`
	IntentsIgnored map[string]int `json:"intents_ignored"`
}

func NewCounters() *Counters {
	return &Counters{
		eventsApplied:  make(map[string]int),
		eventsDropped:  make(map[string]int),
		intentsSent:    make(map[string]int),
		intentsIgnored: make(map[string]int),
	}
}

func (c *Counters) RecordEventApplied(eventType roomsync.EventType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eventsApplied[string(eventType)]++
}

func (c *Counters) RecordEventDropped(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eventsDropped[reason]++
}

func (c *Counters) RecordIntent(intent string, sent bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sent {
		c.intentsSent[intent]++
	} else {
		c.intentsIgnored[intent]++
	}
}

// Snapshot returns a copy of the current counts
func (c *Counters) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		EventsApplied:  copyCounts(c.eventsApplied),
		EventsDropped:  copyCounts(c.eventsDropped),
		IntentsSent:    copyCounts(c.intentsSent),
		IntentsIgnored: copyCounts(c.intentsIgnored),
	}
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
