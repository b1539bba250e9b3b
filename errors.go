package mindpulse

import "fmt"

// ──────────────────────────────────────────────
// Error taxonomy
// ──────────────────────────────────────────────

// InvalidStateError is returned when a lifecycle operation is attempted
// from the wrong state (e.g. starting a session while one is active).
type InvalidStateError struct {
	Operation string
	State     string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state for %s: orchestrator is %s", e.Operation, e.State)
}

// NoActiveSessionError is returned when an operation requires an active
// session and none exists.
type NoActiveSessionError struct {
	Operation string
}

func (e *NoActiveSessionError) Error() string {
	return fmt.Sprintf("no active session for %s", e.Operation)
}

// AlgorithmExecutionError wraps a failure inside a single algorithm unit.
// It is caught per-unit and never propagates out of a pass.
type AlgorithmExecutionError struct {
	AlgorithmName string
	Cause         error
}

func (e *AlgorithmExecutionError) Error() string {
	return fmt.Sprintf("algorithm %q failed: %v", e.AlgorithmName, e.Cause)
}

func (e *AlgorithmExecutionError) Unwrap() error { return e.Cause }

// WeightConfigurationError is returned at construction time when a weight
// table cannot be normalized.
type WeightConfigurationError struct {
	Reason string
}

func (e *WeightConfigurationError) Error() string {
	return fmt.Sprintf("weight configuration invalid: %s", e.Reason)
}

// CollectorUnavailableError signals that a data collector failed to supply
// data. The affected pass proceeds with whatever data exists, flagged as
// low-confidence.
type CollectorUnavailableError struct {
	CollectorName string
	Cause         error
}

func (e *CollectorUnavailableError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("collector %q unavailable", e.CollectorName)
	}
	return fmt.Sprintf("collector %q unavailable: %v", e.CollectorName, e.Cause)
}

func (e *CollectorUnavailableError) Unwrap() error { return e.Cause }
