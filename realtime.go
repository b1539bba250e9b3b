package mindpulse

import (
	"log"
)

// ──────────────────────────────────────────────
// Real-Time Event Processor
// ──────────────────────────────────────────────

// Composite weights used to derive the risk and opportunity gates from
// per-unit scores. Only units present in the pass contribute; the average
// renormalizes over them.
var (
	riskDrivers = map[string]float64{
		AlgoFrustration:   0.4,
		AlgoAnxiety:       0.3,
		AlgoCognitiveLoad: 0.3,
	}
	opportunityDrivers = map[string]float64{
		AlgoEngagement:           0.4,
		AlgoMotivation:           0.3,
		AlgoImprovementPotential: 0.3,
	}
)

// RealtimeConfig tunes the fast path.
type RealtimeConfig struct {
	// Subset is the low-latency priority subset run per event.
	Subset []string
	// RecentWindow is how many buffered events the fast path looks at.
	RecentWindow int
	// RiskThreshold gates intervention emission on the composite risk.
	RiskThreshold float64
	// DriverThreshold gates intervention emission on any single risk driver.
	DriverThreshold float64
	// OpportunityThreshold gates optimization emission.
	OpportunityThreshold float64
}

// DefaultRealtimeConfig returns production defaults: 4 emotional + 2
// neuroplasticity units, thresholds per the decision rule.
func DefaultRealtimeConfig() RealtimeConfig {
	return RealtimeConfig{
		Subset: []string{
			AlgoFrustration, AlgoAnxiety, AlgoEngagement, AlgoMotivation,
			AlgoCognitiveLoad, AlgoImprovementPotential,
		},
		RecentWindow:         20,
		RiskThreshold:        0.7,
		DriverThreshold:      0.8,
		OpportunityThreshold: 0.7,
	}
}

// RealtimeProcessor runs the priority subset against the rolling recent
// window on every incoming event and feeds the queues. It never blocks on
// the periodic aggregator: both paths synchronize only on the collector
// buffer and the queues, never on each other's passes.
type RealtimeProcessor struct {
	registry *AlgorithmRegistry
	queues   *QueueManager
	config   RealtimeConfig
}

// NewRealtimeProcessor wires the fast path to a registry and queue manager.
func NewRealtimeProcessor(registry *AlgorithmRegistry, queues *QueueManager, config ...RealtimeConfig) *RealtimeProcessor {
	cfg := DefaultRealtimeConfig()
	if len(config) > 0 {
		cfg = config[0]
	}
	defaults := DefaultRealtimeConfig()
	if len(cfg.Subset) == 0 {
		cfg.Subset = defaults.Subset
	}
	if cfg.RecentWindow <= 0 {
		cfg.RecentWindow = defaults.RecentWindow
	}
	if cfg.RiskThreshold <= 0 {
		cfg.RiskThreshold = defaults.RiskThreshold
	}
	if cfg.DriverThreshold <= 0 {
		cfg.DriverThreshold = defaults.DriverThreshold
	}
	if cfg.OpportunityThreshold <= 0 {
		cfg.OpportunityThreshold = defaults.OpportunityThreshold
	}
	return &RealtimeProcessor{registry: registry, queues: queues, config: cfg}
}

// Process runs one fast-path pass over the recent window and applies the
// queue decision rule. Both the intervention and the optimization check are
// evaluated independently; both, one, or neither may fire.
func (p *RealtimeProcessor) Process(profile *UserProfile, recent *SessionData) *IntegratedAnalysis {
	pass := p.registry.RunSubset(p.config.Subset, profile, recent, true)
	analysis := p.registry.Integrate(pass)
	analysis.RiskScore = compositeScore(analysis.Scores, riskDrivers)
	analysis.OpportunityScore = compositeScore(analysis.Scores, opportunityDrivers)

	p.applyDecisionRule(analysis, PriorityImmediate)
	return analysis
}

// applyDecisionRule emits queue items when thresholds are crossed. The
// intervention priority differs by caller: immediate on the event path,
// high on the periodic path.
func (p *RealtimeProcessor) applyDecisionRule(analysis *IntegratedAnalysis, interventionPriority Priority) {
	if analysis.RiskScore > p.config.RiskThreshold || p.anyDriverAbove(analysis, p.config.DriverThreshold) {
		p.queues.Enqueue(KindIntervention, interventionPriority, analysis)
		log.Printf("[RealtimeProcessor] Intervention emitted | risk=%.2f priority=%s",
			analysis.RiskScore, interventionPriority)
	}
	if analysis.OpportunityScore > p.config.OpportunityThreshold {
		p.queues.Enqueue(KindOptimization, PriorityMedium, analysis)
		log.Printf("[RealtimeProcessor] Optimization emitted | opportunity=%.2f",
			analysis.OpportunityScore)
	}
}

func (p *RealtimeProcessor) anyDriverAbove(analysis *IntegratedAnalysis, threshold float64) bool {
	for name := range riskDrivers {
		if score, ok := analysis.Scores[name]; ok && score > threshold {
			return true
		}
	}
	return false
}

// compositeScore is a weighted average over whichever drivers are present.
func compositeScore(scores map[string]float64, drivers map[string]float64) float64 {
	var sum, weightSum float64
	for name, w := range drivers {
		if score, ok := scores[name]; ok {
			sum += score * w
			weightSum += w
		}
	}
	if weightSum == 0 {
		return 0
	}
	return clamp01(sum / weightSum)
}
