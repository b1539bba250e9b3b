package mindpulse

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// ──────────────────────────────────────────────
// Pass tracing — in-process span recorder
// ──────────────────────────────────────────────

// PassKind labels the processing path a span belongs to.
type PassKind string

const (
	PassRealtime PassKind = "realtime"
	PassPeriodic PassKind = "periodic"
	PassFinal    PassKind = "final"
)

// PassSpan records one analysis pass.
type PassSpan struct {
	SpanID    string    `json:"span_id"`
	SessionID string    `json:"session_id"`
	Kind      PassKind  `json:"kind"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time,omitempty"`
	Status    string    `json:"status"` // "running", "ok", "error"
	Error     string    `json:"error,omitempty"`

	mu sync.Mutex
}

// DurationMs returns the span duration in milliseconds.
func (s *PassSpan) DurationMs() float64 {
	end := s.EndTime
	if end.IsZero() {
		end = time.Now()
	}
	return float64(end.Sub(s.StartTime).Microseconds()) / 1000.0
}

// End marks the span as finished.
func (s *PassSpan) End(status string, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.EndTime = time.Now()
	s.Status = status
	s.Error = errMsg
}

// PassTracer keeps a bounded ring of recent pass spans.
type PassTracer struct {
	mu       sync.Mutex
	spans    []*PassSpan
	maxSpans int
}

// NewPassTracer creates a tracer retaining up to maxSpans spans.
func NewPassTracer(maxSpans int) *PassTracer {
	if maxSpans <= 0 {
		maxSpans = 256
	}
	return &PassTracer{maxSpans: maxSpans}
}

// StartPass opens a new span.
func (t *PassTracer) StartPass(sessionID string, kind PassKind) *PassSpan {
	span := &PassSpan{
		SpanID:    newSpanID(),
		SessionID: sessionID,
		Kind:      kind,
		StartTime: time.Now(),
		Status:    "running",
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spans = append(t.spans, span)
	if len(t.spans) > t.maxSpans {
		t.spans = t.spans[len(t.spans)-t.maxSpans:]
	}
	return span
}

// Recent returns up to n newest spans, newest last.
func (t *PassTracer) Recent(n int) []*PassSpan {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n <= 0 || n > len(t.spans) {
		n = len(t.spans)
	}
	out := make([]*PassSpan, n)
	copy(out, t.spans[len(t.spans)-n:])
	return out
}

func newSpanID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
