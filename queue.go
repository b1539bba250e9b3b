package mindpulse

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ──────────────────────────────────────────────
// Intervention & Optimization Queue Manager
// ──────────────────────────────────────────────

// QueueManager owns the two append-only work queues. Items are appended by
// the realtime processor and the periodic aggregator, possibly
// concurrently, and drained by downstream consumers via MarkProcessed.
// No item is ever dropped except through MarkProcessed.
type QueueManager struct {
	mu            sync.RWMutex
	interventions []*QueueItem
	optimizations []*QueueItem
	processed     []*QueueItem // audit trail, emptied by ClearProcessed
}

// NewQueueManager creates empty queues.
func NewQueueManager() *QueueManager {
	return &QueueManager{}
}

// Enqueue creates and appends a new item, returning it.
func (q *QueueManager) Enqueue(kind QueueKind, priority Priority, trigger *IntegratedAnalysis) *QueueItem {
	item := &QueueItem{
		ID:        uuid.NewString(),
		Kind:      kind,
		Priority:  priority,
		Trigger:   trigger,
		CreatedAt: time.Now(),
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	switch kind {
	case KindIntervention:
		q.interventions = append(q.interventions, item)
	default:
		q.optimizations = append(q.optimizations, item)
	}
	log.Printf("[QueueManager] Enqueued | kind=%s priority=%s id=%s", kind, priority, item.ID)
	return item
}

// PeekAll returns a snapshot of the active items of one kind. The snapshot
// holds value copies: mutating it never touches the live queue.
func (q *QueueManager) PeekAll(kind QueueKind) []QueueItem {
	q.mu.RLock()
	defer q.mu.RUnlock()
	src := q.interventions
	if kind == KindOptimization {
		src = q.optimizations
	}
	out := make([]QueueItem, 0, len(src))
	for _, item := range src {
		out = append(out, *item)
	}
	return out
}

// MarkProcessed removes the item with the given id from its active queue.
// Idempotent: marking an unknown or already-processed id is a no-op and
// returns false.
func (q *QueueManager) MarkProcessed(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if item, rest, ok := removeByID(q.interventions, id); ok {
		q.interventions = rest
		item.Processed = true
		q.processed = append(q.processed, item)
		return true
	}
	if item, rest, ok := removeByID(q.optimizations, id); ok {
		q.optimizations = rest
		item.Processed = true
		q.processed = append(q.processed, item)
		return true
	}
	return false
}

// ClearProcessed empties the processed audit trail.
func (q *QueueManager) ClearProcessed() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.processed = nil
}

// ProcessedCount returns the size of the audit trail.
func (q *QueueManager) ProcessedCount() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.processed)
}

// Depths returns the active depth of both queues.
func (q *QueueManager) Depths() (interventions, optimizations int) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.interventions), len(q.optimizations)
}

func removeByID(items []*QueueItem, id string) (*QueueItem, []*QueueItem, bool) {
	for i, item := range items {
		if item.ID == id {
			rest := make([]*QueueItem, 0, len(items)-1)
			rest = append(rest, items[:i]...)
			rest = append(rest, items[i+1:]...)
			return item, rest, true
		}
	}
	return nil, items, false
}
