package mindpulse

import (
	"sync"
	"time"
)

// ──────────────────────────────────────────────
// Data Collector Adapter boundary
// ──────────────────────────────────────────────

// Collector is the contract a data collector adapter fulfils. The
// orchestrator only ever sees structured EventData records and a terminal
// summary; sensor internals are the adapter's business.
//
// Implementations must be safe for concurrent use: Record is called from
// the event path while Recent/DrainSince are read from both processing
// paths.
type Collector interface {
	Name() string
	Start(sessionID string)
	Stop() *CollectorSummary
	Record(event EventData)
	// Recent returns the newest n events, oldest-first.
	Recent(n int) []EventData
	// DrainWindow returns the events accumulated since the previous drain,
	// oldest-first, without removing them from the recent view.
	DrainWindow() []EventData
}

// maxBufferedEvents caps the rolling buffer; the oldest events are dropped
// once exceeded. 4096 covers several minutes at a few events per second.
const maxBufferedEvents = 4096

// InMemoryCollector is the default Collector used when the surrounding
// application does not supply its own adapter. It buffers events pushed in
// through Record and derives the terminal summary from them.
type InMemoryCollector struct {
	name string

	mu         sync.RWMutex
	sessionID  string
	startedAt  time.Time
	events     []EventData
	drainMark  int
	errorCount int
	signalSums map[string]float64
	signalN    map[string]int
}

// NewInMemoryCollector creates a collector with the given name.
func NewInMemoryCollector(name string) *InMemoryCollector {
	return &InMemoryCollector{
		name:       name,
		signalSums: make(map[string]float64),
		signalN:    make(map[string]int),
	}
}

func (c *InMemoryCollector) Name() string { return c.name }

// Start resets the buffer for a new session.
func (c *InMemoryCollector) Start(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = sessionID
	c.startedAt = time.Now()
	c.events = nil
	c.drainMark = 0
	c.errorCount = 0
	c.signalSums = make(map[string]float64)
	c.signalN = make(map[string]int)
}

// Record buffers one event.
func (c *InMemoryCollector) Record(event EventData) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	if event.Type == EventError {
		c.errorCount++
	}
	for key, v := range event.Signals {
		c.signalSums[key] += v
		c.signalN[key]++
	}
	if len(c.events) > maxBufferedEvents {
		drop := len(c.events) - maxBufferedEvents
		c.events = c.events[drop:]
		c.drainMark -= drop
		if c.drainMark < 0 {
			c.drainMark = 0
		}
	}
}

// Recent returns a copy of the newest n events.
func (c *InMemoryCollector) Recent(n int) []EventData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if n <= 0 || n > len(c.events) {
		n = len(c.events)
	}
	out := make([]EventData, n)
	copy(out, c.events[len(c.events)-n:])
	return out
}

// DrainWindow returns the events accumulated since the previous drain and
// advances the drain mark. The events remain visible to Recent.
func (c *InMemoryCollector) DrainWindow() []EventData {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drainMark >= len(c.events) {
		return nil
	}
	window := make([]EventData, len(c.events)-c.drainMark)
	copy(window, c.events[c.drainMark:])
	c.drainMark = len(c.events)
	return window
}

// Stop finalizes the collector and returns its terminal summary.
func (c *InMemoryCollector) Stop() *CollectorSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	means := make(map[string]float64, len(c.signalSums))
	for key, sum := range c.signalSums {
		if n := c.signalN[key]; n > 0 {
			means[key] = sum / float64(n)
		}
	}
	summary := &CollectorSummary{
		CollectorName:    c.name,
		InteractionCount: len(c.events),
		ErrorCount:       c.errorCount,
		SignalMeans:      means,
	}
	if !c.startedAt.IsZero() {
		summary.TotalDuration = time.Since(c.startedAt)
	}
	return summary
}

// Compile-time interface check.
var _ Collector = (*InMemoryCollector)(nil)
