package mindpulse

import (
	"sync"
	"testing"
	"time"
)

// ══════════════════════════════════════════════
// PeriodicAggregator tests
// ══════════════════════════════════════════════

func TestClassifyTrend_Improving(t *testing.T) {
	// 10 ticks with steadily increasing scores: 0.1 -> 0.9.
	var history []*IntegratedAnalysis
	for i := 0; i < 10; i++ {
		history = append(history, &IntegratedAnalysis{
			OverallScore: 0.1 + float64(i)*(0.8/9.0),
		})
	}
	if got := ClassifyTrend(history); got != TrendImproving {
		t.Fatalf("expected improving, got %s", got)
	}
}

func TestClassifyTrend_Declining(t *testing.T) {
	var history []*IntegratedAnalysis
	for i := 0; i < 10; i++ {
		history = append(history, &IntegratedAnalysis{
			OverallScore: 0.9 - float64(i)*0.08,
		})
	}
	if got := ClassifyTrend(history); got != TrendDeclining {
		t.Fatalf("expected declining, got %s", got)
	}
}

func TestClassifyTrend_Stable(t *testing.T) {
	var history []*IntegratedAnalysis
	for i := 0; i < 8; i++ {
		history = append(history, &IntegratedAnalysis{OverallScore: 0.5})
	}
	if got := ClassifyTrend(history); got != TrendStable {
		t.Fatalf("expected stable, got %s", got)
	}
}

func TestClassifyTrend_ShortHistory(t *testing.T) {
	if got := ClassifyTrend(nil); got != TrendStable {
		t.Fatalf("empty history should be stable, got %s", got)
	}
	if got := ClassifyTrend([]*IntegratedAnalysis{{OverallScore: 0.9}}); got != TrendStable {
		t.Fatalf("single-entry history should be stable, got %s", got)
	}
}

func TestAggregator_TickRunsFullPass(t *testing.T) {
	collector := NewInMemoryCollector("test")
	collector.Start("s1")
	collector.Record(signalEvent(map[string]float64{SignalFrustration: 0.4, SignalFocus: 0.6}))

	var mu sync.Mutex
	var seen []*IntegratedAnalysis

	g := NewPeriodicAggregator(10*time.Millisecond, defaultRegistry(t), nil, AggregatorHooks{
		Window: func() *SessionData {
			return &SessionData{Events: collector.DrainWindow()}
		},
		OnAnalysis: func(a *IntegratedAnalysis) {
			mu.Lock()
			seen = append(seen, a)
			mu.Unlock()
		},
	})
	g.Start()
	time.Sleep(50 * time.Millisecond)
	g.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 {
		t.Fatalf("one non-empty window should yield one analysis, got %d", len(seen))
	}
	if len(seen[0].Scores) != 13 {
		t.Fatalf("full pass should run all 13 units, got %d", len(seen[0].Scores))
	}
}

func TestAggregator_SkipsEmptyWindows(t *testing.T) {
	var mu sync.Mutex
	ticks := 0
	g := NewPeriodicAggregator(5*time.Millisecond, defaultRegistry(t), nil, AggregatorHooks{
		Window: func() *SessionData { return &SessionData{} },
		OnAnalysis: func(*IntegratedAnalysis) {
			mu.Lock()
			ticks++
			mu.Unlock()
		},
	})
	g.Start()
	time.Sleep(30 * time.Millisecond)
	g.Stop()

	mu.Lock()
	defer mu.Unlock()
	if ticks != 0 {
		t.Fatalf("empty windows must not produce analyses, got %d", ticks)
	}
}

func TestAggregator_NoTickAfterStop(t *testing.T) {
	collector := NewInMemoryCollector("test")
	collector.Start("s1")

	var mu sync.Mutex
	ticks := 0
	g := NewPeriodicAggregator(5*time.Millisecond, defaultRegistry(t), nil, AggregatorHooks{
		Window: func() *SessionData {
			collector.Record(signalEvent(map[string]float64{SignalFocus: 0.5}))
			return &SessionData{Events: collector.DrainWindow()}
		},
		OnAnalysis: func(*IntegratedAnalysis) {
			mu.Lock()
			ticks++
			mu.Unlock()
		},
	})
	g.Start()
	time.Sleep(25 * time.Millisecond)
	g.Stop()

	mu.Lock()
	after := ticks
	mu.Unlock()

	// Stop blocks until the loop exits; nothing may fire afterwards.
	time.Sleep(30 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if ticks != after {
		t.Fatalf("tick fired after Stop: %d -> %d", after, ticks)
	}
	if g.Running() {
		t.Fatal("aggregator should report stopped")
	}
}

func TestAggregator_StopIdempotent(t *testing.T) {
	g := NewPeriodicAggregator(time.Second, defaultRegistry(t), nil, AggregatorHooks{
		Window: func() *SessionData { return &SessionData{} },
	})
	g.Start()
	g.Stop()
	g.Stop() // must not panic or block
}

func TestAggregator_EmitsQueueItemsAtHighPriority(t *testing.T) {
	queues := NewQueueManager()
	registry := defaultRegistry(t)
	rt := NewRealtimeProcessor(registry, queues)

	g := NewPeriodicAggregator(5*time.Millisecond, registry, rt, AggregatorHooks{
		Window: func() *SessionData {
			// Sustained frustration, anxiety, slow responses and errors
			// cross the risk gate.
			var events []EventData
			for i := 0; i < 6; i++ {
				events = append(events, signalEvent(map[string]float64{
					SignalFrustration: 0.95,
					SignalAnxiety:     0.95,
					SignalLatencyMs:   6000,
				}))
				events = append(events, EventData{Type: EventError, Timestamp: time.Now()})
			}
			return &SessionData{Events: events}
		},
	})
	g.Start()
	time.Sleep(20 * time.Millisecond)
	g.Stop()

	interventions := queues.PeekAll(KindIntervention)
	if len(interventions) == 0 {
		t.Fatal("sustained risk should emit interventions from the periodic path")
	}
	for _, item := range interventions {
		if item.Priority != PriorityHigh {
			t.Fatalf("periodic interventions should be high priority, got %s", item.Priority)
		}
	}
}
