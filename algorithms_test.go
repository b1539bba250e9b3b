package mindpulse

import (
	"testing"
	"time"
)

// ══════════════════════════════════════════════
// Algorithm unit tests
// ══════════════════════════════════════════════

func allAlgorithms() []Algorithm {
	return append(EmotionalAlgorithms(), NeuroAlgorithms()...)
}

func TestAlgorithms_EmptyDataScoresZero(t *testing.T) {
	for _, unit := range allAlgorithms() {
		res, err := unit.Execute(nil, &SessionData{})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", unit.Name(), err)
		}
		if res.Score != 0 || res.Confidence != 0 {
			t.Fatalf("%s: empty data should score 0/0, got %f/%f",
				unit.Name(), res.Score, res.Confidence)
		}
	}
}

func TestAlgorithms_OutputsBounded(t *testing.T) {
	// A hostile window: extreme signals, heavy errors and switching.
	events := []EventData{
		signalEvent(map[string]float64{
			SignalFrustration: 1.0, SignalAnxiety: 1.0, SignalLatencyMs: 500000,
			SignalFocus: 1.0, SignalEffort: 1.0, SignalAccuracy: 0.0, SignalValence: 1.0,
		}),
		{Type: EventError, Timestamp: time.Now()},
		{Type: EventRetry, Timestamp: time.Now()},
		{Type: EventContextSwitch, Timestamp: time.Now()},
		{Type: EventAbandon, Timestamp: time.Now()},
		signalEvent(map[string]float64{SignalValence: 0.0, SignalAccuracy: 1.0}),
	}
	data := &SessionData{Events: events, Window: 10 * time.Second}

	for _, unit := range allAlgorithms() {
		res, err := unit.Execute(&UserProfile{UserID: "u"}, data)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", unit.Name(), err)
		}
		if res.Score < 0 || res.Score > 1 {
			t.Fatalf("%s: score out of range: %f", unit.Name(), res.Score)
		}
		if res.Confidence < 0 || res.Confidence > 1 {
			t.Fatalf("%s: confidence out of range: %f", unit.Name(), res.Confidence)
		}
		if res.AlgorithmName != unit.Name() {
			t.Fatalf("result name %q does not match unit %q", res.AlgorithmName, unit.Name())
		}
	}
}

func TestFrustration_MonotoneInSignal(t *testing.T) {
	unit := &FrustrationAlgorithm{}
	prev := -1.0
	for _, level := range []float64{0.1, 0.3, 0.5, 0.7, 0.9} {
		res, err := unit.Execute(nil, &SessionData{Events: []EventData{
			signalEvent(map[string]float64{SignalFrustration: level}),
		}})
		if err != nil {
			t.Fatalf("execute: %v", err)
		}
		if res.Score < prev {
			t.Fatalf("frustration score decreased when signal rose: %f < %f", res.Score, prev)
		}
		prev = res.Score
	}
}

func TestFrustration_RealtimeUsesLatestReading(t *testing.T) {
	unit := &FrustrationAlgorithm{}
	res, err := unit.ExecuteRealtime(nil, &SessionData{Events: []EventData{
		signalEvent(map[string]float64{SignalFrustration: 0.1}),
		signalEvent(map[string]float64{SignalFrustration: 0.85}),
	}})
	if err != nil {
		t.Fatalf("execute realtime: %v", err)
	}
	if res.Score <= 0.8 {
		t.Fatalf("latest spike should dominate the realtime score, got %f", res.Score)
	}
}

func TestAnxiety_HesitationUsesProfileBaseline(t *testing.T) {
	unit := &AnxietyAlgorithm{}
	data := &SessionData{Events: []EventData{
		signalEvent(map[string]float64{SignalAnxiety: 0.2, SignalLatencyMs: 3000}),
	}}

	// With the default 1500ms baseline, 3000ms is full hesitation.
	slow, _ := unit.Execute(nil, data)
	// A user whose baseline is 3000ms shows no hesitation at all.
	calm, _ := unit.Execute(&UserProfile{
		Baselines: map[string]float64{SignalLatencyMs: 3000},
	}, data)

	if slow.Score <= calm.Score {
		t.Fatalf("same latency should score higher against a faster baseline: %f vs %f",
			slow.Score, calm.Score)
	}
}

func TestEngagement_HighFocusRecommendsChallenge(t *testing.T) {
	unit := &EngagementAlgorithm{}
	var events []EventData
	for i := 0; i < 10; i++ {
		events = append(events, signalEvent(map[string]float64{SignalFocus: 0.95}))
		events = append(events, EventData{Type: EventTaskCompleted, Timestamp: time.Now()})
	}
	res, err := unit.Execute(nil, &SessionData{Events: events, Window: 50 * time.Second})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Score <= 0.75 {
		t.Fatalf("expected high engagement, got %f", res.Score)
	}
	if len(res.Recommendations) == 0 {
		t.Fatal("high engagement should carry a recommendation")
	}
}

func TestMotivation_PersistenceAfterErrors(t *testing.T) {
	unit := &MotivationAlgorithm{}
	persistent := &SessionData{Events: []EventData{
		{Type: EventError, Timestamp: time.Now()},
		{Type: EventRetry, Timestamp: time.Now()},
		{Type: EventError, Timestamp: time.Now()},
		{Type: EventRetry, Timestamp: time.Now()},
	}}
	quitter := &SessionData{Events: []EventData{
		{Type: EventError, Timestamp: time.Now()},
		{Type: EventAbandon, Timestamp: time.Now()},
		{Type: EventError, Timestamp: time.Now()},
		{Type: EventAbandon, Timestamp: time.Now()},
	}}

	p, _ := unit.Execute(nil, persistent)
	q, _ := unit.Execute(nil, quitter)
	if p.Score <= q.Score {
		t.Fatalf("retrying after errors should score higher than abandoning: %f vs %f",
			p.Score, q.Score)
	}
}

func TestMoodStability_SteadyBeatsVolatile(t *testing.T) {
	unit := &MoodStabilityAlgorithm{}
	steady := &SessionData{Events: []EventData{
		signalEvent(map[string]float64{SignalValence: 0.6}),
		signalEvent(map[string]float64{SignalValence: 0.6}),
		signalEvent(map[string]float64{SignalValence: 0.6}),
	}}
	volatile := &SessionData{Events: []EventData{
		signalEvent(map[string]float64{SignalValence: 0.1}),
		signalEvent(map[string]float64{SignalValence: 0.9}),
		signalEvent(map[string]float64{SignalValence: 0.1}),
	}}

	s, _ := unit.Execute(nil, steady)
	v, _ := unit.Execute(nil, volatile)
	if s.Score <= v.Score {
		t.Fatalf("steady valence should score higher: %f vs %f", s.Score, v.Score)
	}
}

func TestCognitiveLoad_MonotoneInLatency(t *testing.T) {
	unit := &CognitiveLoadAlgorithm{}
	prev := -1.0
	for _, latency := range []float64{1000, 2000, 4000, 8000} {
		res, _ := unit.Execute(nil, &SessionData{Events: []EventData{
			signalEvent(map[string]float64{SignalLatencyMs: latency}),
		}})
		if res.Score < prev {
			t.Fatalf("cognitive load decreased when latency rose: %f < %f", res.Score, prev)
		}
		prev = res.Score
	}
}

func TestLearningVelocity_RisingAccuracy(t *testing.T) {
	unit := &LearningVelocityAlgorithm{}
	rising := &SessionData{Events: []EventData{
		signalEvent(map[string]float64{SignalAccuracy: 0.2}),
		signalEvent(map[string]float64{SignalAccuracy: 0.3}),
		signalEvent(map[string]float64{SignalAccuracy: 0.7}),
		signalEvent(map[string]float64{SignalAccuracy: 0.8}),
	}}
	falling := &SessionData{Events: []EventData{
		signalEvent(map[string]float64{SignalAccuracy: 0.8}),
		signalEvent(map[string]float64{SignalAccuracy: 0.7}),
		signalEvent(map[string]float64{SignalAccuracy: 0.3}),
		signalEvent(map[string]float64{SignalAccuracy: 0.2}),
	}}

	r, _ := unit.Execute(nil, rising)
	f, _ := unit.Execute(nil, falling)
	if r.Score <= 0.5 {
		t.Fatalf("rising accuracy should score above neutral, got %f", r.Score)
	}
	if f.Score >= 0.5 {
		t.Fatalf("falling accuracy should score below neutral, got %f", f.Score)
	}
}

func TestMemoryRetention_RepeatedTaskAccuracy(t *testing.T) {
	unit := &MemoryRetentionAlgorithm{}
	taskEvent := func(task string, accuracy float64) EventData {
		return EventData{
			Type:      EventInteraction,
			Timestamp: time.Now(),
			Signals:   map[string]float64{SignalAccuracy: accuracy},
			Context:   map[string]string{"task": task},
		}
	}
	retained := &SessionData{Events: []EventData{
		taskEvent("sums", 0.5), taskEvent("sums", 0.8),
		taskEvent("words", 0.6), taskEvent("words", 0.7),
	}}
	forgot := &SessionData{Events: []EventData{
		taskEvent("sums", 0.8), taskEvent("sums", 0.3),
		taskEvent("words", 0.7), taskEvent("words", 0.2),
	}}

	r, _ := unit.Execute(nil, retained)
	f, _ := unit.Execute(nil, forgot)
	if r.Score != 1.0 {
		t.Fatalf("full retention should score 1.0, got %f", r.Score)
	}
	if f.Score != 0.0 {
		t.Fatalf("full regression should score 0.0, got %f", f.Score)
	}
}

func TestImprovementPotential_NeedsEffortBehindGap(t *testing.T) {
	unit := &ImprovementPotentialAlgorithm{}
	trying := &SessionData{Events: []EventData{
		signalEvent(map[string]float64{SignalAccuracy: 0.3, SignalEffort: 0.9}),
	}}
	coasting := &SessionData{Events: []EventData{
		signalEvent(map[string]float64{SignalAccuracy: 0.3, SignalEffort: 0.1}),
	}}

	try, _ := unit.Execute(nil, trying)
	coast, _ := unit.Execute(nil, coasting)
	if try.Score <= coast.Score {
		t.Fatalf("same gap with more effort should score higher: %f vs %f",
			try.Score, coast.Score)
	}
}
