package mindpulse

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// ──────────────────────────────────────────────
// Orchestrator — session lifecycle manager
// ──────────────────────────────────────────────

// orchestrator lifecycle states. A session is Active between StartSession
// and EndSession; the orchestrator itself returns to idle after the report
// is emitted, so successive sessions can run on one instance but never two
// at once.
const (
	stateIdle   = "idle"
	stateActive = "active"
)

// OrchestratorConfig wires collaborators into an orchestrator. Every field
// is optional; zero values fall back to built-in defaults.
type OrchestratorConfig struct {
	// Collectors supply event streams. Defaults to one InMemoryCollector.
	Collectors []Collector
	// Store receives each periodic analysis and the final report. Nil skips
	// persistence.
	Store ReportStore
	// Realtime tunes the fast path.
	Realtime RealtimeConfig

	// Family overrides. Units and weights must be set together.
	EmotionalUnits   []Algorithm
	EmotionalWeights *WeightTable
	NeuroUnits       []Algorithm
	NeuroWeights     *WeightTable
}

// Status is the lightweight state snapshot exposed to callers.
type Status struct {
	IsActive      bool `json:"is_active"`
	IsAnalyzing   bool `json:"is_analyzing"`
	Interventions int  `json:"interventions"`
	Optimizations int  `json:"optimizations"`
}

// OrchestratorSnapshot is the read-only view pushed to the presentation
// collaborator. All slices and the session are copies.
type OrchestratorSnapshot struct {
	CurrentSession    *Session            `json:"current_session,omitempty"`
	IsActive          bool                `json:"is_active"`
	RealtimeData      *IntegratedAnalysis `json:"realtime_data,omitempty"`
	InterventionQueue []QueueItem         `json:"intervention_queue"`
	OptimizationQueue []QueueItem         `json:"optimization_queue"`
}

// Orchestrator coordinates collection, the realtime fast path, the periodic
// slow path, and the work queues around one session at a time.
//
// Usage:
//
//	o := mindpulse.NewOrchestrator(mindpulse.OrchestratorConfig{})
//	o.Initialize(&mindpulse.UserProfile{UserID: "user_001"})
//
//	session, _ := o.StartSession(mindpulse.DefaultSessionConfig("user_001"))
//	o.ProcessEvent(mindpulse.EventData{Type: "interaction", Signals: ...})
//	report, _ := o.EndSession()
type Orchestrator struct {
	mu    sync.RWMutex // lifecycle state, session, collaborator refs
	state string

	initialized bool
	profile     *UserProfile
	session     *Session
	collectors  []Collector

	registry   *AlgorithmRegistry
	realtime   *RealtimeProcessor
	aggregator *PeriodicAggregator
	queues     *QueueManager
	store      ReportStore
	tracer     *PassTracer
	config     OrchestratorConfig

	histMu       sync.Mutex
	history      []*IntegratedAnalysis
	lastRealtime *IntegratedAnalysis

	isActive    atomic.Bool
	isAnalyzing atomic.Bool
}

// NewOrchestrator creates an uninitialized orchestrator. Call Initialize
// before starting sessions.
func NewOrchestrator(config ...OrchestratorConfig) *Orchestrator {
	cfg := OrchestratorConfig{}
	if len(config) > 0 {
		cfg = config[0]
	}
	return &Orchestrator{
		state:  stateIdle,
		config: cfg,
		queues: NewQueueManager(),
		tracer: NewPassTracer(256),
		store:  cfg.Store,
	}
}

// Initialize builds the algorithm registry and fast path for the given user
// profile. Returns false (with a logged reason) when the weight
// configuration is invalid. Safe to call again to switch profiles while no
// session is active.
func (o *Orchestrator) Initialize(profile *UserProfile) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == stateActive {
		log.Printf("[Orchestrator] Initialize rejected while a session is active")
		return false
	}

	emotionalUnits := o.config.EmotionalUnits
	emotionalWeights := o.config.EmotionalWeights
	if emotionalUnits == nil {
		emotionalUnits = EmotionalAlgorithms()
		var err error
		emotionalWeights, err = DefaultEmotionalWeights()
		if err != nil {
			log.Printf("[Orchestrator] Initialize failed: %v", err)
			return false
		}
	}
	neuroUnits := o.config.NeuroUnits
	neuroWeights := o.config.NeuroWeights
	if neuroUnits == nil {
		neuroUnits = NeuroAlgorithms()
		var err error
		neuroWeights, err = DefaultNeuroWeights()
		if err != nil {
			log.Printf("[Orchestrator] Initialize failed: %v", err)
			return false
		}
	}

	registry := NewAlgorithmRegistry()
	if err := registry.RegisterFamily(FamilyEmotional, emotionalUnits, emotionalWeights); err != nil {
		log.Printf("[Orchestrator] Initialize failed: %v", err)
		return false
	}
	if err := registry.RegisterFamily(FamilyNeuro, neuroUnits, neuroWeights); err != nil {
		log.Printf("[Orchestrator] Initialize failed: %v", err)
		return false
	}

	collectors := o.config.Collectors
	if len(collectors) == 0 {
		collectors = []Collector{NewInMemoryCollector("interaction")}
	}

	o.profile = profile
	o.registry = registry
	o.collectors = collectors
	o.realtime = NewRealtimeProcessor(registry, o.queues, o.config.Realtime)
	o.initialized = true
	log.Printf("[Orchestrator] Initialized | user=%s units=%d",
		profile.UserID, len(emotionalUnits)+len(neuroUnits))
	return true
}

// StartSession allocates a session, starts the collectors and arms the
// periodic aggregator. Only valid while idle: starting a second session
// while one is active is an InvalidStateError.
func (o *Orchestrator) StartSession(config SessionConfig) (*Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.initialized {
		return nil, &InvalidStateError{Operation: "StartSession", State: "uninitialized"}
	}
	if o.state == stateActive {
		return nil, &InvalidStateError{Operation: "StartSession", State: stateActive}
	}
	if config.AnalysisInterval <= 0 {
		config.AnalysisInterval = 5 * time.Second
	}

	session := &Session{
		ID:        uuid.NewString(),
		UserID:    config.UserID,
		StartTime: time.Now(),
		Status:    SessionActive,
		Config:    config,
	}

	for _, c := range o.collectors {
		c.Start(session.ID)
	}

	o.histMu.Lock()
	o.history = nil
	o.lastRealtime = nil
	o.histMu.Unlock()

	// The hooks capture their collaborators directly: they run on the tick
	// goroutine and must never take the lifecycle lock, or a tick in flight
	// during EndSession's aggregator.Stop() would deadlock.
	collectors := o.collectors
	profile := o.profile
	interval := config.AnalysisInterval
	o.aggregator = NewPeriodicAggregator(interval, o.registry, o.realtime, AggregatorHooks{
		Window: func() *SessionData {
			window := &SessionData{Window: interval}
			for _, c := range collectors {
				window.Events = append(window.Events, c.DrainWindow()...)
			}
			return window
		},
		Profile:    func() *UserProfile { return profile },
		OnAnalysis: func(a *IntegratedAnalysis) { o.recordAnalysis(session.ID, a) },
	})
	o.aggregator.Start()

	o.session = session
	o.state = stateActive
	o.isActive.Store(true)
	log.Printf("[Orchestrator] Session started | id=%s user=%s interval=%s realtime=%v",
		session.ID, session.UserID, config.AnalysisInterval, config.RealtimeEnabled)

	copied := *session
	return &copied, nil
}

// ProcessEvent records one interaction event and, when the session has
// realtime enabled, runs the fast-path pass against the recent window and
// returns its analysis. Returns nil analysis when realtime is disabled.
//
// The lifecycle lock is held only while checking state and grabbing
// references: an in-flight pass completes even if EndSession runs
// concurrently, so a partially computed intervention is never lost.
func (o *Orchestrator) ProcessEvent(event EventData) (*IntegratedAnalysis, error) {
	o.mu.RLock()
	if o.state != stateActive {
		o.mu.RUnlock()
		return nil, &NoActiveSessionError{Operation: "ProcessEvent"}
	}
	session := o.session
	collectors := o.collectors
	rt := o.realtime
	profile := o.profile
	o.mu.RUnlock()

	collectors[0].Record(event)

	if !session.Config.RealtimeEnabled {
		return nil, nil
	}

	o.isAnalyzing.Store(true)
	defer o.isAnalyzing.Store(false)

	span := o.tracer.StartPass(session.ID, PassRealtime)
	recent := &SessionData{}
	for _, c := range collectors {
		recent.Events = append(recent.Events, c.Recent(rt.config.RecentWindow)...)
	}
	analysis := rt.Process(profile, recent)
	span.End("ok", "")

	o.histMu.Lock()
	o.lastRealtime = analysis
	o.histMu.Unlock()
	return analysis, nil
}

// EndSession disarms the periodic timer, stops the collectors, runs one
// final full pass over the terminal summaries, persists and returns the
// session report. Only valid while a session is active.
func (o *Orchestrator) EndSession() (*SessionReport, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != stateActive {
		return nil, &NoActiveSessionError{Operation: "EndSession"}
	}
	session := o.session

	// Disarm first: blocks until any in-flight tick returns, so no tick
	// fires after this point.
	o.aggregator.Stop()
	o.aggregator = nil

	final := &SessionData{}
	for _, c := range o.collectors {
		final.Events = append(final.Events, c.DrainWindow()...)
		summary := c.Stop()
		if summary == nil {
			// The pass proceeds on whatever data exists; the gap shows up
			// as reduced sample confidence in the final analysis.
			err := &CollectorUnavailableError{CollectorName: c.Name()}
			log.Printf("[Orchestrator] %v", err)
			continue
		}
		final.Summaries = append(final.Summaries, *summary)
	}
	// A session with no interactions at all integrates to zero rather than
	// to the units' neutral no-data scores.
	if totalInteractions(final) == 0 {
		final = &SessionData{}
	}

	span := o.tracer.StartPass(session.ID, PassFinal)
	pass := o.registry.RunAll(o.profile, final)
	analysis := o.registry.Integrate(pass)
	analysis.RiskScore = compositeScore(analysis.Scores, riskDrivers)
	analysis.OpportunityScore = compositeScore(analysis.Scores, opportunityDrivers)
	span.End("ok", "")

	session.EndTime = time.Now()
	session.Status = SessionCompleted

	o.histMu.Lock()
	history := append([]*IntegratedAnalysis(nil), o.history...)
	o.histMu.Unlock()

	var recommendations []Recommendation
	for _, res := range pass.Results {
		recommendations = append(recommendations, res.Recommendations...)
	}

	report := &SessionReport{
		Session:         *session,
		Final:           analysis,
		History:         history,
		Trend:           ClassifyTrend(history),
		Recommendations: recommendations,
	}

	if o.store != nil {
		if err := o.store.SaveReport(report); err != nil {
			log.Printf("[Orchestrator] Report persistence failed | session=%s error=%v", session.ID, err)
		}
	}

	o.state = stateIdle
	o.isActive.Store(false)
	log.Printf("[Orchestrator] Session ended | id=%s overall=%.2f trend=%s ticks=%d",
		session.ID, analysis.OverallScore, report.Trend, len(history))
	return report, nil
}

// GetQueues returns snapshots of both queues.
func (o *Orchestrator) GetQueues() (interventions, optimizations []QueueItem) {
	return o.queues.PeekAll(KindIntervention), o.queues.PeekAll(KindOptimization)
}

// MarkIntervention marks an intervention processed. Idempotent.
func (o *Orchestrator) MarkIntervention(id string) bool {
	return o.queues.MarkProcessed(id)
}

// MarkOptimization marks an optimization processed. Idempotent.
func (o *Orchestrator) MarkOptimization(id string) bool {
	return o.queues.MarkProcessed(id)
}

// GetStatus returns the lightweight status snapshot.
func (o *Orchestrator) GetStatus() Status {
	interventions, optimizations := o.queues.Depths()
	return Status{
		IsActive:      o.isActive.Load(),
		IsAnalyzing:   o.isAnalyzing.Load(),
		Interventions: interventions,
		Optimizations: optimizations,
	}
}

// Snapshot returns the read-only view for the presentation collaborator.
func (o *Orchestrator) Snapshot() OrchestratorSnapshot {
	o.mu.RLock()
	var session *Session
	if o.session != nil {
		copied := *o.session
		session = &copied
	}
	o.mu.RUnlock()

	o.histMu.Lock()
	realtimeData := o.lastRealtime
	o.histMu.Unlock()

	return OrchestratorSnapshot{
		CurrentSession:    session,
		IsActive:          o.isActive.Load(),
		RealtimeData:      realtimeData,
		InterventionQueue: o.queues.PeekAll(KindIntervention),
		OptimizationQueue: o.queues.PeekAll(KindOptimization),
	}
}

// History returns a copy of the periodic analysis history of the current
// (or most recent) session.
func (o *Orchestrator) History() []*IntegratedAnalysis {
	o.histMu.Lock()
	defer o.histMu.Unlock()
	return append([]*IntegratedAnalysis(nil), o.history...)
}

// Tracer exposes the pass tracer for diagnostics.
func (o *Orchestrator) Tracer() *PassTracer { return o.tracer }

// Queues exposes the queue manager for downstream consumers.
func (o *Orchestrator) Queues() *QueueManager { return o.queues }

// recordAnalysis appends one periodic analysis to the history and persists
// it when a store is configured.
func (o *Orchestrator) recordAnalysis(sessionID string, analysis *IntegratedAnalysis) {
	o.histMu.Lock()
	o.history = append(o.history, analysis)
	o.histMu.Unlock()

	if o.store != nil {
		if err := o.store.SaveAnalysis(sessionID, analysis); err != nil {
			log.Printf("[Orchestrator] Analysis persistence failed | session=%s error=%v", sessionID, err)
		}
	}
}

func totalInteractions(data *SessionData) int {
	n := len(data.Events)
	for i := range data.Summaries {
		n += data.Summaries[i].InteractionCount
	}
	return n
}
