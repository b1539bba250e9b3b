package mindpulse

import (
	"time"
)

// ──────────────────────────────────────────────
// Core data model
// ──────────────────────────────────────────────

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// Family identifies an algorithm family.
type Family string

const (
	FamilyEmotional Family = "emotional"
	FamilyNeuro     Family = "neuroplasticity"
)

// Priority of a queue item.
type Priority string

const (
	PriorityLow       Priority = "low"
	PriorityMedium    Priority = "medium"
	PriorityHigh      Priority = "high"
	PriorityImmediate Priority = "immediate"
)

// QueueKind distinguishes the two work queues.
type QueueKind string

const (
	KindIntervention QueueKind = "intervention"
	KindOptimization QueueKind = "optimization"
)

// SessionConfig configures a single analysis session.
type SessionConfig struct {
	UserID           string        `json:"user_id" yaml:"user_id"`
	ActivityType     string        `json:"activity_type" yaml:"activity_type"`
	Difficulty       string        `json:"difficulty" yaml:"difficulty"` // easy/medium/hard
	AnalysisInterval time.Duration `json:"analysis_interval" yaml:"analysis_interval"`
	RealtimeEnabled  bool          `json:"realtime_enabled" yaml:"realtime_enabled"`
}

// DefaultSessionConfig returns production defaults.
func DefaultSessionConfig(userID string) SessionConfig {
	return SessionConfig{
		UserID:           userID,
		ActivityType:     "general",
		Difficulty:       "medium",
		AnalysisInterval: 5 * time.Second,
		RealtimeEnabled:  true,
	}
}

// Session is the bounded time window over which metrics are collected and
// analyzed for one user activity. Mutated only by the Orchestrator.
type Session struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time,omitempty"`
	Status    SessionStatus `json:"status"`
	Config    SessionConfig `json:"config"`
}

// UserProfile carries per-user baselines that algorithm units may consult.
type UserProfile struct {
	UserID      string             `json:"user_id"`
	Baselines   map[string]float64 `json:"baselines,omitempty"`   // signal -> expected value
	Preferences map[string]string  `json:"preferences,omitempty"` // free-form hints
}

// EventData is one interaction event supplied by a data collector.
// Signals carries numeric readings keyed by signal name (see signal keys in
// algorithms_emotional.go / algorithms_neuro.go); Context carries labels.
type EventData struct {
	Type      string             `json:"type"`
	Timestamp time.Time          `json:"timestamp"`
	Signals   map[string]float64 `json:"signals,omitempty"`
	Context   map[string]string  `json:"context,omitempty"`
}

// Signal returns a named signal reading and whether it was present.
func (e *EventData) Signal(key string) (float64, bool) {
	if e.Signals == nil {
		return 0, false
	}
	v, ok := e.Signals[key]
	return v, ok
}

// CollectorSummary is the terminal summary a collector emits at session end.
type CollectorSummary struct {
	CollectorName    string             `json:"collector_name"`
	InteractionCount int                `json:"interaction_count"`
	ErrorCount       int                `json:"error_count"`
	TotalDuration    time.Duration      `json:"total_duration"`
	SignalMeans      map[string]float64 `json:"signal_means,omitempty"`
}

// Insight is a single human-readable observation from an algorithm unit.
type Insight struct {
	Type       string  `json:"type"`
	Message    string  `json:"message"`
	Confidence float64 `json:"confidence"`
}

// Recommendation suggests an action the surrounding system could take.
type Recommendation struct {
	Type        string `json:"type"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

// AlgorithmResult is the immutable output of one algorithm unit invocation.
type AlgorithmResult struct {
	AlgorithmName   string           `json:"algorithm_name"`
	Score           float64          `json:"score"`      // 0.0-1.0
	Confidence      float64          `json:"confidence"` // 0.0-1.0
	Insights        []Insight        `json:"insights,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	Timestamp       time.Time        `json:"timestamp"`
}

// IntegratedAnalysis is the weighted combination of multiple algorithm
// results. Recomputed on every pass, never patched incrementally.
type IntegratedAnalysis struct {
	OverallScore     float64            `json:"overall_score"`
	ConfidenceScore  float64            `json:"confidence_score"`
	RiskScore        float64            `json:"risk_score"`
	OpportunityScore float64            `json:"opportunity_score"`
	Scores           map[string]float64 `json:"scores,omitempty"` // per-unit scores present in this pass
	Insights         []Insight          `json:"insights,omitempty"`
	Timestamp        time.Time          `json:"timestamp"`
}

// QueueItem is one pending intervention or optimization.
type QueueItem struct {
	ID        string              `json:"id"`
	Kind      QueueKind           `json:"kind"`
	Priority  Priority            `json:"priority"`
	Trigger   *IntegratedAnalysis `json:"trigger,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	Processed bool                `json:"processed"`
}

// Trend classifies the direction of the analysis history.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// SessionReport is the immutable final output of a session.
type SessionReport struct {
	Session         Session               `json:"session"`
	Final           *IntegratedAnalysis   `json:"final_integrated_analysis"`
	History         []*IntegratedAnalysis `json:"history,omitempty"`
	Trend           Trend                 `json:"trend"`
	Recommendations []Recommendation      `json:"recommendations,omitempty"`
}

// ReportStore persists analysis ticks and session reports. Implementations
// live outside this package (see store/); the orchestrator performs no I/O
// of its own beyond calling this interface.
type ReportStore interface {
	SaveAnalysis(sessionID string, analysis *IntegratedAnalysis) error
	SaveReport(report *SessionReport) error
}
