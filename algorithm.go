package mindpulse

import (
	"math"
	"time"
)

// ──────────────────────────────────────────────
// Algorithm Unit contract
// ──────────────────────────────────────────────

// SessionData is the window of collected data an algorithm unit scores.
// Events is ordered oldest-first. Summaries is non-empty only for the final
// full-session pass.
type SessionData struct {
	Events    []EventData        `json:"events,omitempty"`
	Summaries []CollectorSummary `json:"summaries,omitempty"`
	Window    time.Duration      `json:"window"`
}

// MeanSignal averages a named signal over all events carrying it, falling
// back to collector summary means when no event has it. The bool reports
// whether any reading was found.
func (d *SessionData) MeanSignal(key string) (float64, bool) {
	sum, n := 0.0, 0
	for i := range d.Events {
		if v, ok := d.Events[i].Signal(key); ok {
			sum += v
			n++
		}
	}
	if n > 0 {
		return sum / float64(n), true
	}
	for i := range d.Summaries {
		if v, ok := d.Summaries[i].SignalMeans[key]; ok {
			sum += v
			n++
		}
	}
	if n > 0 {
		return sum / float64(n), true
	}
	return 0, false
}

// LatestSignal returns the most recent reading of a named signal.
func (d *SessionData) LatestSignal(key string) (float64, bool) {
	for i := len(d.Events) - 1; i >= 0; i-- {
		if v, ok := d.Events[i].Signal(key); ok {
			return v, true
		}
	}
	return 0, false
}

// SignalSlope returns the per-event slope of a named signal across the
// window (simple first-half vs second-half mean difference, normalized to
// [-1, 1]). Zero when fewer than two readings exist.
func (d *SessionData) SignalSlope(key string) float64 {
	var readings []float64
	for i := range d.Events {
		if v, ok := d.Events[i].Signal(key); ok {
			readings = append(readings, v)
		}
	}
	if len(readings) < 2 {
		return 0
	}
	mid := len(readings) / 2
	older := mean(readings[:mid])
	recent := mean(readings[mid:])
	return clampRange(recent-older, -1, 1)
}

// CountType counts events of the given type.
func (d *SessionData) CountType(eventType string) int {
	n := 0
	for i := range d.Events {
		if d.Events[i].Type == eventType {
			n++
		}
	}
	return n
}

// ErrorRate is the fraction of events that are errors, folding in collector
// summaries when present.
func (d *SessionData) ErrorRate() float64 {
	errs, total := 0, 0
	for i := range d.Events {
		total++
		if d.Events[i].Type == "error" {
			errs++
		}
	}
	for i := range d.Summaries {
		total += d.Summaries[i].InteractionCount
		errs += d.Summaries[i].ErrorCount
	}
	if total == 0 {
		return 0
	}
	return float64(errs) / float64(total)
}

// Empty reports whether the window holds no data at all.
func (d *SessionData) Empty() bool {
	return len(d.Events) == 0 && len(d.Summaries) == 0
}

// Algorithm is a stateless scoring unit. Implementations must be safe for
// concurrent use and must keep Score and Confidence within [0, 1].
type Algorithm interface {
	Name() string
	Family() Family
	Execute(profile *UserProfile, data *SessionData) (*AlgorithmResult, error)
}

// RealtimeAlgorithm is optionally implemented by units that provide a
// cheaper per-event path. The realtime processor prefers ExecuteRealtime
// when available and falls back to Execute otherwise.
type RealtimeAlgorithm interface {
	Algorithm
	ExecuteRealtime(profile *UserProfile, recent *SessionData) (*AlgorithmResult, error)
}

// newResult builds an AlgorithmResult with clamped score/confidence.
func newResult(name string, score, confidence float64) *AlgorithmResult {
	return &AlgorithmResult{
		AlgorithmName: name,
		Score:         clamp01(score),
		Confidence:    clamp01(confidence),
		Timestamp:     time.Now(),
	}
}

func clamp01(v float64) float64 {
	return clampRange(v, 0, 1)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func variance(vs []float64) float64 {
	if len(vs) < 2 {
		return 0
	}
	m := mean(vs)
	sum := 0.0
	for _, v := range vs {
		sum += (v - m) * (v - m)
	}
	return sum / float64(len(vs))
}

func stddev(vs []float64) float64 {
	return math.Sqrt(variance(vs))
}
