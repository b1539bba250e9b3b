package mindpulse

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// ══════════════════════════════════════════════
// Orchestrator lifecycle tests
// ══════════════════════════════════════════════

// fakeStore records persistence calls.
type fakeStore struct {
	mu       sync.Mutex
	analyses int
	reports  []*SessionReport
}

func (s *fakeStore) SaveAnalysis(sessionID string, analysis *IntegratedAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses++
	return nil
}

func (s *fakeStore) SaveReport(report *SessionReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return nil
}

func newTestOrchestrator(t *testing.T, config ...OrchestratorConfig) *Orchestrator {
	t.Helper()
	o := NewOrchestrator(config...)
	if !o.Initialize(&UserProfile{UserID: "user_001"}) {
		t.Fatal("Initialize should succeed with default configuration")
	}
	return o
}

// quietConfig keeps the periodic timer out of the way for deterministic
// lifecycle tests.
func quietConfig() SessionConfig {
	cfg := DefaultSessionConfig("user_001")
	cfg.AnalysisInterval = time.Hour
	return cfg
}

func TestOrchestrator_StartWhileActive(t *testing.T) {
	o := newTestOrchestrator(t)
	if _, err := o.StartSession(quietConfig()); err != nil {
		t.Fatalf("first start should succeed: %v", err)
	}

	_, err := o.StartSession(quietConfig())
	var ise *InvalidStateError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
}

func TestOrchestrator_EndWhileIdle(t *testing.T) {
	o := newTestOrchestrator(t)
	_, err := o.EndSession()
	var nase *NoActiveSessionError
	if !errors.As(err, &nase) {
		t.Fatalf("expected NoActiveSessionError, got %v", err)
	}
}

func TestOrchestrator_StartBeforeInitialize(t *testing.T) {
	o := NewOrchestrator()
	_, err := o.StartSession(quietConfig())
	var ise *InvalidStateError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
}

func TestOrchestrator_ProcessEventWithoutSession(t *testing.T) {
	o := newTestOrchestrator(t)
	_, err := o.ProcessEvent(signalEvent(map[string]float64{SignalFrustration: 0.5}))
	var nase *NoActiveSessionError
	if !errors.As(err, &nase) {
		t.Fatalf("expected NoActiveSessionError, got %v", err)
	}
}

func TestOrchestrator_FrustrationSpikeScenario(t *testing.T) {
	o := newTestOrchestrator(t)
	cfg := quietConfig()
	cfg.RealtimeEnabled = true
	if _, err := o.StartSession(cfg); err != nil {
		t.Fatalf("start: %v", err)
	}

	analysis, err := o.ProcessEvent(signalEvent(map[string]float64{SignalFrustration: 0.85}))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if analysis == nil {
		t.Fatal("realtime-enabled session should return an analysis")
	}

	interventions, optimizations := o.GetQueues()
	if len(interventions) != 1 {
		t.Fatalf("expected exactly one intervention, got %d", len(interventions))
	}
	if interventions[0].Priority != PriorityImmediate {
		t.Fatalf("expected immediate priority, got %s", interventions[0].Priority)
	}
	if len(optimizations) != 0 {
		t.Fatalf("expected no optimizations, got %d", len(optimizations))
	}
}

func TestOrchestrator_RealtimeDisabledReturnsNil(t *testing.T) {
	o := newTestOrchestrator(t)
	cfg := quietConfig()
	cfg.RealtimeEnabled = false
	if _, err := o.StartSession(cfg); err != nil {
		t.Fatalf("start: %v", err)
	}

	analysis, err := o.ProcessEvent(signalEvent(map[string]float64{SignalFrustration: 0.9}))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if analysis != nil {
		t.Fatal("realtime-disabled session should return nil analysis")
	}
	if interventions, _ := o.GetQueues(); len(interventions) != 0 {
		t.Fatalf("no fast path should run, got %d interventions", len(interventions))
	}
}

func TestOrchestrator_ZeroEventSession(t *testing.T) {
	o := newTestOrchestrator(t)
	if _, err := o.StartSession(quietConfig()); err != nil {
		t.Fatalf("start: %v", err)
	}

	report, err := o.EndSession()
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if report.Final == nil {
		t.Fatal("report must carry a final analysis")
	}
	if report.Final.OverallScore != 0 {
		t.Fatalf("zero-event session should score 0, got %f", report.Final.OverallScore)
	}
	if report.Session.Status != SessionCompleted {
		t.Fatalf("session should be completed, got %s", report.Session.Status)
	}
}

func TestOrchestrator_SuccessiveSessions(t *testing.T) {
	o := newTestOrchestrator(t)
	for i := 0; i < 3; i++ {
		session, err := o.StartSession(quietConfig())
		if err != nil {
			t.Fatalf("start %d: %v", i, err)
		}
		if session.Status != SessionActive {
			t.Fatalf("session %d should be active", i)
		}
		if _, err := o.EndSession(); err != nil {
			t.Fatalf("end %d: %v", i, err)
		}
	}
}

func TestOrchestrator_StatusReflectsLifecycle(t *testing.T) {
	o := newTestOrchestrator(t)
	if status := o.GetStatus(); status.IsActive {
		t.Fatal("fresh orchestrator should be inactive")
	}

	if _, err := o.StartSession(quietConfig()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if status := o.GetStatus(); !status.IsActive {
		t.Fatal("status should be active after start")
	}

	if _, err := o.EndSession(); err != nil {
		t.Fatalf("end: %v", err)
	}
	if status := o.GetStatus(); status.IsActive {
		t.Fatal("status should be inactive after end")
	}
}

func TestOrchestrator_SnapshotIsReadOnly(t *testing.T) {
	o := newTestOrchestrator(t)
	if _, err := o.StartSession(quietConfig()); err != nil {
		t.Fatalf("start: %v", err)
	}
	o.ProcessEvent(signalEvent(map[string]float64{SignalFrustration: 0.95}))

	snapshot := o.Snapshot()
	if snapshot.CurrentSession == nil || !snapshot.IsActive {
		t.Fatal("snapshot should carry the active session")
	}
	if snapshot.RealtimeData == nil {
		t.Fatal("snapshot should carry the last realtime analysis")
	}

	// Mutating the snapshot must not leak into the orchestrator.
	snapshot.CurrentSession.Status = SessionCompleted
	snapshot.InterventionQueue[0].Processed = true

	fresh := o.Snapshot()
	if fresh.CurrentSession.Status != SessionActive {
		t.Fatal("session mutation leaked through snapshot")
	}
	if fresh.InterventionQueue[0].Processed {
		t.Fatal("queue mutation leaked through snapshot")
	}
}

func TestOrchestrator_MarkInterventionDrainsQueue(t *testing.T) {
	o := newTestOrchestrator(t)
	if _, err := o.StartSession(quietConfig()); err != nil {
		t.Fatalf("start: %v", err)
	}
	o.ProcessEvent(signalEvent(map[string]float64{SignalFrustration: 0.95}))

	interventions, _ := o.GetQueues()
	if len(interventions) != 1 {
		t.Fatalf("expected 1 intervention, got %d", len(interventions))
	}
	if !o.MarkIntervention(interventions[0].ID) {
		t.Fatal("mark should succeed")
	}
	if o.MarkIntervention(interventions[0].ID) {
		t.Fatal("second mark should be a no-op")
	}
	interventions, _ = o.GetQueues()
	if len(interventions) != 0 {
		t.Fatalf("queue should be drained, got %d", len(interventions))
	}
}

func TestOrchestrator_PeriodicHistoryAndPersistence(t *testing.T) {
	store := &fakeStore{}
	o := newTestOrchestrator(t, OrchestratorConfig{Store: store})

	cfg := DefaultSessionConfig("user_001")
	cfg.AnalysisInterval = 15 * time.Millisecond
	if _, err := o.StartSession(cfg); err != nil {
		t.Fatalf("start: %v", err)
	}

	for i := 0; i < 5; i++ {
		o.ProcessEvent(signalEvent(map[string]float64{SignalFocus: 0.6, SignalFrustration: 0.2}))
		time.Sleep(20 * time.Millisecond)
	}

	report, err := o.EndSession()
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if len(report.History) == 0 {
		t.Fatal("periodic ticks should have appended to history")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.analyses == 0 {
		t.Fatal("periodic analyses should have been persisted")
	}
	if len(store.reports) != 1 {
		t.Fatalf("expected one persisted report, got %d", len(store.reports))
	}
}

func TestOrchestrator_TracerRecordsPasses(t *testing.T) {
	o := newTestOrchestrator(t)
	if _, err := o.StartSession(quietConfig()); err != nil {
		t.Fatalf("start: %v", err)
	}
	o.ProcessEvent(signalEvent(map[string]float64{SignalFocus: 0.5}))
	if _, err := o.EndSession(); err != nil {
		t.Fatalf("end: %v", err)
	}

	spans := o.Tracer().Recent(0)
	var kinds []PassKind
	for _, s := range spans {
		kinds = append(kinds, s.Kind)
	}
	if len(spans) < 2 {
		t.Fatalf("expected realtime and final spans, got %v", kinds)
	}
	if spans[len(spans)-1].Kind != PassFinal {
		t.Fatalf("last span should be the final pass, got %v", kinds)
	}
}
