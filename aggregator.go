package mindpulse

import (
	"log"
	"sync"
	"time"
)

// ──────────────────────────────────────────────
// Periodic Aggregator — timer-driven slow path
// ──────────────────────────────────────────────

// AggregatorHooks injects the aggregator's collaborators. All hooks are
// called from the tick goroutine.
type AggregatorHooks struct {
	// Window returns the data accumulated since the last tick, or an empty
	// SessionData when nothing arrived.
	Window func() *SessionData
	// Profile returns the user profile for the active session.
	Profile func() *UserProfile
	// OnAnalysis receives each tick's integrated analysis (history append,
	// persistence). May be nil.
	OnAnalysis func(*IntegratedAnalysis)
}

// PeriodicAggregator runs the full algorithm set over accumulated metrics on
// a fixed interval while a session is active. Stop disarms the timer and
// blocks until the loop goroutine exits, so no tick can fire after a
// session has ended.
type PeriodicAggregator struct {
	Interval time.Duration

	registry *AlgorithmRegistry
	realtime *RealtimeProcessor // shared decision rule for queue emission
	hooks    AggregatorHooks

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewPeriodicAggregator creates a stopped aggregator.
func NewPeriodicAggregator(interval time.Duration, registry *AlgorithmRegistry, realtime *RealtimeProcessor, hooks AggregatorHooks) *PeriodicAggregator {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &PeriodicAggregator{
		Interval: interval,
		registry: registry,
		realtime: realtime,
		hooks:    hooks,
	}
}

// Start arms the timer. Non-blocking; idempotent while running.
func (g *PeriodicAggregator) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		return
	}
	g.running = true
	g.stopCh = make(chan struct{})
	g.wg.Add(1)
	go g.loop(g.stopCh)
	log.Printf("[PeriodicAggregator] Started (interval=%s)", g.Interval)
}

// Stop disarms the timer and waits for the loop to exit. After Stop returns
// no further tick fires. Idempotent.
func (g *PeriodicAggregator) Stop() {
	g.mu.Lock()
	if !g.running {
		g.mu.Unlock()
		return
	}
	g.running = false
	close(g.stopCh)
	g.mu.Unlock()

	g.wg.Wait()
	log.Println("[PeriodicAggregator] Stopped")
}

// Running reports whether the timer is armed.
func (g *PeriodicAggregator) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

func (g *PeriodicAggregator) loop(stopCh chan struct{}) {
	defer g.wg.Done()
	ticker := time.NewTicker(g.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			// Re-check under the stop channel so a tick racing Stop is
			// dropped rather than processed after session end.
			select {
			case <-stopCh:
				return
			default:
			}
			g.tick()
		}
	}
}

// tick runs one full pass over the window accumulated since the last tick.
// Empty windows are skipped. A panic in a hook is contained to the tick.
func (g *PeriodicAggregator) tick() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PeriodicAggregator] Tick panic: %v", r)
		}
	}()

	window := g.hooks.Window()
	if window == nil || window.Empty() {
		return
	}

	var profile *UserProfile
	if g.hooks.Profile != nil {
		profile = g.hooks.Profile()
	}

	pass := g.registry.RunAll(profile, window)
	analysis := g.registry.Integrate(pass)
	analysis.RiskScore = compositeScore(analysis.Scores, riskDrivers)
	analysis.OpportunityScore = compositeScore(analysis.Scores, opportunityDrivers)

	// The slow path applies the same decision rule as the fast path, at
	// high rather than immediate priority.
	if g.realtime != nil {
		g.realtime.applyDecisionRule(analysis, PriorityHigh)
	}

	if g.hooks.OnAnalysis != nil {
		g.hooks.OnAnalysis(analysis)
	}
	log.Printf("[PeriodicAggregator] Tick | overall=%.2f risk=%.2f opportunity=%.2f events=%d",
		analysis.OverallScore, analysis.RiskScore, analysis.OpportunityScore, len(window.Events))
}

// ClassifyTrend compares the mean overall score of the recent half of the
// history against the older half. Differences within ±0.05 are stable.
func ClassifyTrend(history []*IntegratedAnalysis) Trend {
	if len(history) < 2 {
		return TrendStable
	}
	mid := len(history) / 2
	var older, recent []float64
	for _, a := range history[:mid] {
		older = append(older, a.OverallScore)
	}
	for _, a := range history[mid:] {
		recent = append(recent, a.OverallScore)
	}
	diff := mean(recent) - mean(older)
	switch {
	case diff > 0.05:
		return TrendImproving
	case diff < -0.05:
		return TrendDeclining
	default:
		return TrendStable
	}
}
