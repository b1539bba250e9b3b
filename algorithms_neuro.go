package mindpulse

// ──────────────────────────────────────────────
// Neuroplasticity algorithm family
// ──────────────────────────────────────────────

// Neuroplasticity unit names. These double as weight-table keys.
const (
	AlgoCognitiveLoad        = "cognitive_load"
	AlgoImprovementPotential = "improvement_potential"
	AlgoLearningVelocity     = "learning_velocity"
	AlgoAdaptability         = "adaptability"
	AlgoMemoryRetention      = "memory_retention"
	AlgoAttentionFlexibility = "attention_flexibility"
)

// NeuroAlgorithms returns the family's units in declaration order.
func NeuroAlgorithms() []Algorithm {
	return []Algorithm{
		&CognitiveLoadAlgorithm{},
		&ImprovementPotentialAlgorithm{},
		&LearningVelocityAlgorithm{},
		&AdaptabilityAlgorithm{},
		&MemoryRetentionAlgorithm{},
		&AttentionFlexibilityAlgorithm{},
	}
}

// DefaultNeuroWeights is the built-in weight table for the family.
func DefaultNeuroWeights() (*WeightTable, error) {
	return NewWeightTable(map[string]float64{
		AlgoCognitiveLoad:        0.25,
		AlgoImprovementPotential: 0.20,
		AlgoLearningVelocity:     0.20,
		AlgoAdaptability:         0.15,
		AlgoMemoryRetention:      0.10,
		AlgoAttentionFlexibility: 0.10,
	})
}

// ─── cognitive load ───

// CognitiveLoadAlgorithm estimates working-memory pressure from latency
// inflation, error rate and context switching.
type CognitiveLoadAlgorithm struct{}

func (a *CognitiveLoadAlgorithm) Name() string   { return AlgoCognitiveLoad }
func (a *CognitiveLoadAlgorithm) Family() Family { return FamilyNeuro }

func (a *CognitiveLoadAlgorithm) Execute(profile *UserProfile, data *SessionData) (*AlgorithmResult, error) {
	if data.Empty() {
		return newResult(AlgoCognitiveLoad, 0, 0), nil
	}
	latencyLoad := 0.0
	hasLatency := false
	if latency, ok := data.MeanSignal(SignalLatencyMs); ok {
		hasLatency = true
		baseline := 1500.0
		if profile != nil {
			if b, ok := profile.Baselines[SignalLatencyMs]; ok && b > 0 {
				baseline = b
			}
		}
		latencyLoad = clamp01((latency - baseline) / (2 * baseline))
	}

	switching := ratioOfEvents(data, EventContextSwitch)
	score := 0.4*latencyLoad + 0.35*data.ErrorRate() + 0.25*switching
	conf := sampleConfidence(data)
	if !hasLatency {
		conf *= 0.6
	}
	res := newResult(AlgoCognitiveLoad, score, conf)
	if res.Score > 0.7 {
		res.Insights = append(res.Insights, Insight{
			Type:       "cognitive",
			Message:    "cognitive load is high; latency and errors are climbing",
			Confidence: conf,
		})
		res.Recommendations = append(res.Recommendations, Recommendation{
			Type:        "intervention",
			Action:      "reduce_complexity",
			Description: "simplify the current task or suggest a short break",
		})
	}
	return res, nil
}

// ExecuteRealtime weighs the most recent latency reading over the window
// mean so the fast path reacts to sudden overload.
func (a *CognitiveLoadAlgorithm) ExecuteRealtime(profile *UserProfile, recent *SessionData) (*AlgorithmResult, error) {
	if recent.Empty() {
		return newResult(AlgoCognitiveLoad, 0, 0), nil
	}
	latest, ok := recent.LatestSignal(SignalLatencyMs)
	if !ok {
		return a.Execute(profile, recent)
	}
	baseline := 1500.0
	if profile != nil {
		if b, ok := profile.Baselines[SignalLatencyMs]; ok && b > 0 {
			baseline = b
		}
	}
	score := 0.6*clamp01((latest-baseline)/(2*baseline)) + 0.4*recent.ErrorRate()
	return newResult(AlgoCognitiveLoad, score, clamp01(0.5+0.5*sampleConfidence(recent))), nil
}

// ─── improvement potential ───

// ImprovementPotentialAlgorithm scores the gap between current accuracy and
// the user's baseline: a large gap with sustained effort means room to grow.
type ImprovementPotentialAlgorithm struct{}

func (a *ImprovementPotentialAlgorithm) Name() string   { return AlgoImprovementPotential }
func (a *ImprovementPotentialAlgorithm) Family() Family { return FamilyNeuro }

func (a *ImprovementPotentialAlgorithm) Execute(profile *UserProfile, data *SessionData) (*AlgorithmResult, error) {
	if data.Empty() {
		return newResult(AlgoImprovementPotential, 0, 0), nil
	}
	accuracy, hasAccuracy := data.MeanSignal(SignalAccuracy)
	if !hasAccuracy {
		return newResult(AlgoImprovementPotential, 0.3, 0.3*sampleConfidence(data)), nil
	}
	target := 0.95
	if profile != nil {
		if b, ok := profile.Baselines[SignalAccuracy]; ok && b > 0 {
			target = b
		}
	}
	gap := clamp01(target - accuracy)
	effort, _ := data.MeanSignal(SignalEffort)

	// Gap alone is not potential; it needs effort behind it.
	score := gap * (0.5 + 0.5*effort)
	res := newResult(AlgoImprovementPotential, score, sampleConfidence(data))
	if res.Score > 0.7 {
		res.Recommendations = append(res.Recommendations, Recommendation{
			Type:        "optimization",
			Action:      "targeted_practice",
			Description: "large accuracy gap with sustained effort; targeted drills would pay off",
		})
	}
	return res, nil
}

func (a *ImprovementPotentialAlgorithm) ExecuteRealtime(profile *UserProfile, recent *SessionData) (*AlgorithmResult, error) {
	return a.Execute(profile, recent)
}

// ─── learning velocity ───

// LearningVelocityAlgorithm scores the accuracy slope across the window.
type LearningVelocityAlgorithm struct{}

func (a *LearningVelocityAlgorithm) Name() string   { return AlgoLearningVelocity }
func (a *LearningVelocityAlgorithm) Family() Family { return FamilyNeuro }

func (a *LearningVelocityAlgorithm) Execute(profile *UserProfile, data *SessionData) (*AlgorithmResult, error) {
	if data.Empty() {
		return newResult(AlgoLearningVelocity, 0, 0), nil
	}
	// Slope in [-1,1] mapped to [0,1]; flat performance scores 0.5.
	score := 0.5 + data.SignalSlope(SignalAccuracy)/2
	return newResult(AlgoLearningVelocity, score, 0.8*sampleConfidence(data)), nil
}

// ─── adaptability ───

// AdaptabilityAlgorithm scores how well accuracy holds up around context
// switches.
type AdaptabilityAlgorithm struct{}

func (a *AdaptabilityAlgorithm) Name() string   { return AlgoAdaptability }
func (a *AdaptabilityAlgorithm) Family() Family { return FamilyNeuro }

func (a *AdaptabilityAlgorithm) Execute(profile *UserProfile, data *SessionData) (*AlgorithmResult, error) {
	if data.Empty() {
		return newResult(AlgoAdaptability, 0, 0), nil
	}
	switches := data.CountType(EventContextSwitch)
	if switches == 0 {
		// Nothing to adapt to; neutral with low confidence.
		return newResult(AlgoAdaptability, 0.5, 0.2*sampleConfidence(data)), nil
	}
	held, measured := 0, 0
	for i := range data.Events {
		if data.Events[i].Type != EventContextSwitch {
			continue
		}
		var before, after float64
		var hasBefore, hasAfter bool
		for j := i - 1; j >= 0; j-- {
			if v, ok := data.Events[j].Signal(SignalAccuracy); ok {
				before, hasBefore = v, true
				break
			}
		}
		for j := i + 1; j < len(data.Events); j++ {
			if v, ok := data.Events[j].Signal(SignalAccuracy); ok {
				after, hasAfter = v, true
				break
			}
		}
		if hasBefore && hasAfter {
			measured++
			if after >= before-0.1 {
				held++
			}
		}
	}
	if measured == 0 {
		return newResult(AlgoAdaptability, 0.5, 0.2*sampleConfidence(data)), nil
	}
	score := float64(held) / float64(measured)
	return newResult(AlgoAdaptability, score, sampleConfidence(data)), nil
}

// ─── memory retention ───

// MemoryRetentionAlgorithm scores accuracy on repeated task types: seeing a
// task type again and performing at least as well indicates retention.
type MemoryRetentionAlgorithm struct{}

func (a *MemoryRetentionAlgorithm) Name() string   { return AlgoMemoryRetention }
func (a *MemoryRetentionAlgorithm) Family() Family { return FamilyNeuro }

func (a *MemoryRetentionAlgorithm) Execute(profile *UserProfile, data *SessionData) (*AlgorithmResult, error) {
	if data.Empty() {
		return newResult(AlgoMemoryRetention, 0, 0), nil
	}
	firstSeen := make(map[string]float64) // task label -> first accuracy
	retained, repeats := 0, 0
	for i := range data.Events {
		label := data.Events[i].Context["task"]
		if label == "" {
			continue
		}
		acc, ok := data.Events[i].Signal(SignalAccuracy)
		if !ok {
			continue
		}
		if first, seen := firstSeen[label]; seen {
			repeats++
			if acc >= first {
				retained++
			}
		} else {
			firstSeen[label] = acc
		}
	}
	if repeats == 0 {
		return newResult(AlgoMemoryRetention, 0.5, 0.2*sampleConfidence(data)), nil
	}
	score := float64(retained) / float64(repeats)
	return newResult(AlgoMemoryRetention, score, sampleConfidence(data)), nil
}

// ─── attention flexibility ───

// AttentionFlexibilityAlgorithm scores the latency cost of context switches:
// low switch cost means flexible attention.
type AttentionFlexibilityAlgorithm struct{}

func (a *AttentionFlexibilityAlgorithm) Name() string   { return AlgoAttentionFlexibility }
func (a *AttentionFlexibilityAlgorithm) Family() Family { return FamilyNeuro }

func (a *AttentionFlexibilityAlgorithm) Execute(profile *UserProfile, data *SessionData) (*AlgorithmResult, error) {
	if data.Empty() {
		return newResult(AlgoAttentionFlexibility, 0, 0), nil
	}
	baseline, hasBaseline := data.MeanSignal(SignalLatencyMs)
	if !hasBaseline || baseline <= 0 {
		return newResult(AlgoAttentionFlexibility, 0.5, 0.2*sampleConfidence(data)), nil
	}
	var costs []float64
	for i := range data.Events {
		if data.Events[i].Type != EventContextSwitch {
			continue
		}
		for j := i + 1; j < len(data.Events); j++ {
			if v, ok := data.Events[j].Signal(SignalLatencyMs); ok {
				costs = append(costs, clamp01((v-baseline)/baseline))
				break
			}
		}
	}
	if len(costs) == 0 {
		return newResult(AlgoAttentionFlexibility, 0.5, 0.3*sampleConfidence(data)), nil
	}
	score := 1.0 - mean(costs)
	return newResult(AlgoAttentionFlexibility, score, sampleConfidence(data)), nil
}
