package mindpulse

// ──────────────────────────────────────────────
// Emotional-state algorithm family
// ──────────────────────────────────────────────

// Signal keys collectors attach to events. Collectors that cannot produce a
// signal simply omit it; units lower their confidence accordingly.
const (
	SignalFrustration = "frustration_level"
	SignalAnxiety     = "anxiety_level"
	SignalFocus       = "focus_level"
	SignalEffort      = "effort_level"
	SignalValence     = "valence"
	SignalLatencyMs   = "response_latency_ms"
	SignalAccuracy    = "accuracy"
)

// Event types produced by collectors.
const (
	EventInteraction   = "interaction"
	EventError         = "error"
	EventRetry         = "retry"
	EventTaskCompleted = "task_completed"
	EventAbandon       = "abandon"
	EventContextSwitch = "context_switch"
)

// Emotional unit names. These double as weight-table keys.
const (
	AlgoFrustration         = "frustration"
	AlgoAnxiety             = "anxiety"
	AlgoEngagement          = "engagement"
	AlgoMotivation          = "motivation"
	AlgoMoodStability       = "mood_stability"
	AlgoStressResponse      = "stress_response"
	AlgoEmotionalRegulation = "emotional_regulation"
)

// EmotionalAlgorithms returns the family's units in declaration order.
func EmotionalAlgorithms() []Algorithm {
	return []Algorithm{
		&FrustrationAlgorithm{},
		&AnxietyAlgorithm{},
		&EngagementAlgorithm{},
		&MotivationAlgorithm{},
		&MoodStabilityAlgorithm{},
		&StressResponseAlgorithm{},
		&EmotionalRegulationAlgorithm{},
	}
}

// DefaultEmotionalWeights is the built-in weight table for the family.
func DefaultEmotionalWeights() (*WeightTable, error) {
	return NewWeightTable(map[string]float64{
		AlgoFrustration:         0.20,
		AlgoAnxiety:             0.15,
		AlgoEngagement:          0.20,
		AlgoMotivation:          0.15,
		AlgoMoodStability:       0.10,
		AlgoStressResponse:      0.10,
		AlgoEmotionalRegulation: 0.10,
	})
}

// sampleConfidence scales confidence with the number of events in the
// window; ~12 events reach full confidence.
func sampleConfidence(d *SessionData) float64 {
	n := len(d.Events)
	for i := range d.Summaries {
		n += d.Summaries[i].InteractionCount
	}
	return clamp01(float64(n) / 12.0)
}

// ratioOfEvents returns count(eventType)/total, 0 on an empty window.
func ratioOfEvents(d *SessionData, eventType string) float64 {
	if len(d.Events) == 0 {
		return 0
	}
	return float64(d.CountType(eventType)) / float64(len(d.Events))
}

// ─── frustration ───

// FrustrationAlgorithm scores user frustration from the reported
// frustration signal, error rate, and retry churn.
type FrustrationAlgorithm struct{}

func (a *FrustrationAlgorithm) Name() string   { return AlgoFrustration }
func (a *FrustrationAlgorithm) Family() Family { return FamilyEmotional }

func (a *FrustrationAlgorithm) Execute(profile *UserProfile, data *SessionData) (*AlgorithmResult, error) {
	if data.Empty() {
		return newResult(AlgoFrustration, 0, 0), nil
	}
	signal, hasSignal := data.MeanSignal(SignalFrustration)
	score := 0.6*signal + 0.3*data.ErrorRate() + 0.1*ratioOfEvents(data, EventRetry)

	conf := sampleConfidence(data)
	if !hasSignal {
		conf *= 0.5
	}
	res := newResult(AlgoFrustration, score, conf)
	if res.Score > 0.7 {
		res.Insights = append(res.Insights, Insight{
			Type:       "emotional",
			Message:    "frustration is elevated; repeated errors or retries in the current window",
			Confidence: conf,
		})
		res.Recommendations = append(res.Recommendations, Recommendation{
			Type:        "intervention",
			Action:      "offer_support",
			Description: "lower task difficulty or surface a hint",
		})
	}
	return res, nil
}

// ExecuteRealtime shortcuts to the latest frustration reading so the fast
// path reacts to a single spiking event instead of the window mean.
func (a *FrustrationAlgorithm) ExecuteRealtime(profile *UserProfile, recent *SessionData) (*AlgorithmResult, error) {
	if recent.Empty() {
		return newResult(AlgoFrustration, 0, 0), nil
	}
	latest, ok := recent.LatestSignal(SignalFrustration)
	if !ok {
		return a.Execute(profile, recent)
	}
	// The latest reading carries through directly: a single spiking event
	// must be able to cross the per-driver intervention gate on its own.
	score := latest + 0.2*recent.ErrorRate()
	res := newResult(AlgoFrustration, score, clamp01(0.5+0.5*sampleConfidence(recent)))
	if res.Score > 0.8 {
		res.Insights = append(res.Insights, Insight{
			Type:       "emotional",
			Message:    "acute frustration spike detected",
			Confidence: res.Confidence,
		})
	}
	return res, nil
}

// ─── anxiety ───

// AnxietyAlgorithm scores anxiety from the reported signal, hesitation
// (latency above the user's baseline) and abandonment events.
type AnxietyAlgorithm struct{}

func (a *AnxietyAlgorithm) Name() string   { return AlgoAnxiety }
func (a *AnxietyAlgorithm) Family() Family { return FamilyEmotional }

func (a *AnxietyAlgorithm) Execute(profile *UserProfile, data *SessionData) (*AlgorithmResult, error) {
	if data.Empty() {
		return newResult(AlgoAnxiety, 0, 0), nil
	}
	signal, hasSignal := data.MeanSignal(SignalAnxiety)

	hesitation := 0.0
	if latency, ok := data.MeanSignal(SignalLatencyMs); ok {
		baseline := 1500.0
		if profile != nil {
			if b, ok := profile.Baselines[SignalLatencyMs]; ok && b > 0 {
				baseline = b
			}
		}
		// Latency at 2x baseline counts as full hesitation.
		hesitation = clamp01((latency - baseline) / baseline)
	}

	score := 0.6*signal + 0.25*hesitation + 0.15*ratioOfEvents(data, EventAbandon)
	conf := sampleConfidence(data)
	if !hasSignal {
		conf *= 0.5
	}
	res := newResult(AlgoAnxiety, score, conf)
	if res.Score > 0.7 {
		res.Insights = append(res.Insights, Insight{
			Type:       "emotional",
			Message:    "anxiety indicators elevated; responses slowing down",
			Confidence: conf,
		})
	}
	return res, nil
}

func (a *AnxietyAlgorithm) ExecuteRealtime(profile *UserProfile, recent *SessionData) (*AlgorithmResult, error) {
	return a.Execute(profile, recent)
}

// ─── engagement ───

// EngagementAlgorithm scores engagement from focus, interaction density and
// completions.
type EngagementAlgorithm struct{}

func (a *EngagementAlgorithm) Name() string   { return AlgoEngagement }
func (a *EngagementAlgorithm) Family() Family { return FamilyEmotional }

func (a *EngagementAlgorithm) Execute(profile *UserProfile, data *SessionData) (*AlgorithmResult, error) {
	if data.Empty() {
		return newResult(AlgoEngagement, 0, 0), nil
	}
	focus, hasFocus := data.MeanSignal(SignalFocus)

	// Interaction density: ~1 interaction per 5s of window is full marks.
	density := 0.0
	if data.Window > 0 {
		expected := data.Window.Seconds() / 5.0
		if expected > 0 {
			density = clamp01(float64(data.CountType(EventInteraction)) / expected)
		}
	} else if len(data.Events) > 0 {
		density = clamp01(float64(data.CountType(EventInteraction)) / float64(len(data.Events)))
	}

	score := 0.5*focus + 0.3*density + 0.2*ratioOfEvents(data, EventTaskCompleted)
	conf := sampleConfidence(data)
	if !hasFocus {
		conf *= 0.6
	}
	res := newResult(AlgoEngagement, score, conf)
	if res.Score > 0.75 {
		res.Insights = append(res.Insights, Insight{
			Type:       "emotional",
			Message:    "user is highly engaged with the current activity",
			Confidence: conf,
		})
		res.Recommendations = append(res.Recommendations, Recommendation{
			Type:        "optimization",
			Action:      "raise_challenge",
			Description: "engagement headroom available; increase difficulty gradually",
		})
	}
	return res, nil
}

func (a *EngagementAlgorithm) ExecuteRealtime(profile *UserProfile, recent *SessionData) (*AlgorithmResult, error) {
	return a.Execute(profile, recent)
}

// ─── motivation ───

// MotivationAlgorithm scores motivation from completion ratio, effort signal
// and persistence after errors (retry following error).
type MotivationAlgorithm struct{}

func (a *MotivationAlgorithm) Name() string   { return AlgoMotivation }
func (a *MotivationAlgorithm) Family() Family { return FamilyEmotional }

func (a *MotivationAlgorithm) Execute(profile *UserProfile, data *SessionData) (*AlgorithmResult, error) {
	if data.Empty() {
		return newResult(AlgoMotivation, 0, 0), nil
	}
	effort, hasEffort := data.MeanSignal(SignalEffort)

	// Persistence: fraction of errors followed by a retry.
	persistence := 0.0
	errs, retriesAfter := 0, 0
	for i := range data.Events {
		if data.Events[i].Type != EventError {
			continue
		}
		errs++
		if i+1 < len(data.Events) && data.Events[i+1].Type == EventRetry {
			retriesAfter++
		}
	}
	if errs > 0 {
		persistence = float64(retriesAfter) / float64(errs)
	}

	score := 0.4*effort + 0.35*ratioOfEvents(data, EventTaskCompleted) + 0.25*persistence
	conf := sampleConfidence(data)
	if !hasEffort {
		conf *= 0.6
	}
	return newResult(AlgoMotivation, score, conf), nil
}

func (a *MotivationAlgorithm) ExecuteRealtime(profile *UserProfile, recent *SessionData) (*AlgorithmResult, error) {
	return a.Execute(profile, recent)
}

// ─── mood stability ───

// MoodStabilityAlgorithm scores the steadiness of the valence signal:
// low variance means a stable mood.
type MoodStabilityAlgorithm struct{}

func (a *MoodStabilityAlgorithm) Name() string   { return AlgoMoodStability }
func (a *MoodStabilityAlgorithm) Family() Family { return FamilyEmotional }

func (a *MoodStabilityAlgorithm) Execute(profile *UserProfile, data *SessionData) (*AlgorithmResult, error) {
	if data.Empty() {
		return newResult(AlgoMoodStability, 0, 0), nil
	}
	var readings []float64
	for i := range data.Events {
		if v, ok := data.Events[i].Signal(SignalValence); ok {
			readings = append(readings, v)
		}
	}
	if len(readings) < 2 {
		return newResult(AlgoMoodStability, 0.5, 0.2), nil
	}
	// stddev of a [0,1] signal maxes out at 0.5; map to [0,1] stability.
	score := 1.0 - clamp01(stddev(readings)/0.5)
	return newResult(AlgoMoodStability, score, sampleConfidence(data)), nil
}

// ─── stress response ───

// StressResponseAlgorithm scores how quickly the user recovers after error
// bursts: frustration falling back after an error is a healthy response.
type StressResponseAlgorithm struct{}

func (a *StressResponseAlgorithm) Name() string   { return AlgoStressResponse }
func (a *StressResponseAlgorithm) Family() Family { return FamilyEmotional }

func (a *StressResponseAlgorithm) Execute(profile *UserProfile, data *SessionData) (*AlgorithmResult, error) {
	if data.Empty() {
		return newResult(AlgoStressResponse, 0, 0), nil
	}
	recoveries, episodes := 0, 0
	for i := range data.Events {
		if data.Events[i].Type != EventError {
			continue
		}
		at, ok := data.Events[i].Signal(SignalFrustration)
		if !ok {
			continue
		}
		// Look at the next reading after the error.
		for j := i + 1; j < len(data.Events); j++ {
			if after, ok := data.Events[j].Signal(SignalFrustration); ok {
				episodes++
				if after <= at {
					recoveries++
				}
				break
			}
		}
	}
	if episodes == 0 {
		// No stress episodes observed: neutral score, modest confidence.
		return newResult(AlgoStressResponse, 0.5, 0.3*sampleConfidence(data)), nil
	}
	score := float64(recoveries) / float64(episodes)
	return newResult(AlgoStressResponse, score, sampleConfidence(data)), nil
}

// ─── emotional regulation ───

// EmotionalRegulationAlgorithm scores the overall trajectory of negative
// affect: declining frustration/anxiety across the window indicates
// effective self-regulation.
type EmotionalRegulationAlgorithm struct{}

func (a *EmotionalRegulationAlgorithm) Name() string   { return AlgoEmotionalRegulation }
func (a *EmotionalRegulationAlgorithm) Family() Family { return FamilyEmotional }

func (a *EmotionalRegulationAlgorithm) Execute(profile *UserProfile, data *SessionData) (*AlgorithmResult, error) {
	if data.Empty() {
		return newResult(AlgoEmotionalRegulation, 0, 0), nil
	}
	// Slope in [-1,1]; a falling negative-affect slope maps above 0.5.
	slope := 0.5*data.SignalSlope(SignalFrustration) + 0.5*data.SignalSlope(SignalAnxiety)
	score := 0.5 - slope/2
	return newResult(AlgoEmotionalRegulation, score, 0.8*sampleConfidence(data)), nil
}
