package mindpulse

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// ──────────────────────────────────────────────
// Algorithm Registry & Weighted Integrator
// ──────────────────────────────────────────────

// PassFailure records one algorithm unit excluded from a pass.
type PassFailure struct {
	AlgorithmName string
	Err           error
}

// PassResult holds the outcome of running a set of algorithm units.
// Results preserves algorithm declaration order; failed units appear in
// Failures instead.
type PassResult struct {
	Results  []*AlgorithmResult
	Failures []PassFailure
}

// AlgorithmRegistry holds the algorithm units of both families in
// declaration order, with one validated weight table per family.
// Units are registered at construction time and never change afterwards,
// so reads need no locking; the mutex guards only registration.
type AlgorithmRegistry struct {
	mu      sync.RWMutex
	order   map[Family][]Algorithm
	weights map[Family]*WeightTable
}

// NewAlgorithmRegistry creates an empty registry. Register each family with
// RegisterFamily before running passes.
func NewAlgorithmRegistry() *AlgorithmRegistry {
	return &AlgorithmRegistry{
		order:   make(map[Family][]Algorithm),
		weights: make(map[Family]*WeightTable),
	}
}

// RegisterFamily installs a family's units and weight table. Every unit must
// have a weight and every weight a unit; the table has already been
// normalized by NewWeightTable.
func (r *AlgorithmRegistry) RegisterFamily(family Family, units []Algorithm, weights *WeightTable) error {
	if len(units) == 0 {
		return &WeightConfigurationError{Reason: fmt.Sprintf("family %s has no units", family)}
	}
	for _, u := range units {
		if _, ok := weights.Weight(u.Name()); !ok {
			return &WeightConfigurationError{Reason: fmt.Sprintf("no weight for unit %q in family %s", u.Name(), family)}
		}
	}
	if weights.Len() != len(units) {
		return &WeightConfigurationError{Reason: fmt.Sprintf("family %s: %d weights for %d units", family, weights.Len(), len(units))}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.order[family] = append([]Algorithm(nil), units...)
	r.weights[family] = weights
	log.Printf("[AlgorithmRegistry] Family registered | family=%s units=%d", family, len(units))
	return nil
}

// Units returns the declaration-ordered units of a family.
func (r *AlgorithmRegistry) Units(family Family) []Algorithm {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Algorithm(nil), r.order[family]...)
}

// weightOf resolves a unit's weight across families.
func (r *AlgorithmRegistry) weightOf(name string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, table := range r.weights {
		if w, ok := table.Weight(name); ok {
			return w
		}
	}
	return 0
}

// RunAll invokes every registered unit of both families against the given
// data. The two families run in parallel (units are pure); within a family
// units run sequentially in declaration order, so Results keeps a stable
// order: all emotional units first, then all neuroplasticity units.
//
// A single unit's error or panic excludes that unit from the pass and never
// aborts the others.
func (r *AlgorithmRegistry) RunAll(profile *UserProfile, data *SessionData) *PassResult {
	return r.run([]Family{FamilyEmotional, FamilyNeuro}, nil, profile, data, false)
}

// RunSubset invokes only the named units (the realtime priority subset).
// When realtime is true, units implementing RealtimeAlgorithm are invoked
// through their ExecuteRealtime path.
func (r *AlgorithmRegistry) RunSubset(names []string, profile *UserProfile, data *SessionData, realtime bool) *PassResult {
	subset := make(map[string]bool, len(names))
	for _, n := range names {
		subset[n] = true
	}
	return r.run([]Family{FamilyEmotional, FamilyNeuro}, subset, profile, data, realtime)
}

func (r *AlgorithmRegistry) run(families []Family, subset map[string]bool, profile *UserProfile, data *SessionData, realtime bool) *PassResult {
	type familyOut struct {
		results  []*AlgorithmResult
		failures []PassFailure
	}

	outs := make([]familyOut, len(families))
	var wg sync.WaitGroup
	for i, family := range families {
		units := r.Units(family)
		wg.Add(1)
		go func(i int, units []Algorithm) {
			defer wg.Done()
			for _, unit := range units {
				if subset != nil && !subset[unit.Name()] {
					continue
				}
				result, err := runUnit(unit, profile, data, realtime)
				if err != nil {
					log.Printf("[AlgorithmRegistry] Unit excluded from pass | unit=%s error=%v", unit.Name(), err)
					outs[i].failures = append(outs[i].failures, PassFailure{AlgorithmName: unit.Name(), Err: err})
					continue
				}
				outs[i].results = append(outs[i].results, result)
			}
		}(i, units)
	}
	wg.Wait()

	pass := &PassResult{}
	for _, out := range outs {
		pass.Results = append(pass.Results, out.results...)
		pass.Failures = append(pass.Failures, out.failures...)
	}
	return pass
}

// runUnit executes one unit with panic isolation.
func runUnit(unit Algorithm, profile *UserProfile, data *SessionData, realtime bool) (result *AlgorithmResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = &AlgorithmExecutionError{AlgorithmName: unit.Name(), Cause: fmt.Errorf("panic: %v", rec)}
		}
	}()

	var execErr error
	if realtime {
		if rt, ok := unit.(RealtimeAlgorithm); ok {
			result, execErr = rt.ExecuteRealtime(profile, data)
		} else {
			result, execErr = unit.Execute(profile, data)
		}
	} else {
		result, execErr = unit.Execute(profile, data)
	}
	if execErr != nil {
		return nil, &AlgorithmExecutionError{AlgorithmName: unit.Name(), Cause: execErr}
	}
	if result == nil {
		return nil, &AlgorithmExecutionError{AlgorithmName: unit.Name(), Cause: fmt.Errorf("nil result")}
	}
	return result, nil
}

// Integrate combines a pass into one IntegratedAnalysis. Scores and
// confidences are weighted averages renormalized over the units actually
// present; absent units drop out of numerator and denominator alike.
// Each absorbed failure contributes a low-confidence insight. If no unit
// produced a result the analysis is zeroed with an explicit insight, never
// an error.
func (r *AlgorithmRegistry) Integrate(pass *PassResult) *IntegratedAnalysis {
	analysis := &IntegratedAnalysis{
		Scores:    make(map[string]float64, len(pass.Results)),
		Timestamp: time.Now(),
	}

	if len(pass.Results) == 0 {
		analysis.Insights = append(analysis.Insights, Insight{
			Type:       "system",
			Message:    "all algorithm units failed; analysis unavailable for this pass",
			Confidence: 1.0,
		})
		return analysis
	}

	var scoreSum, confSum, weightSum float64
	for _, res := range pass.Results {
		w := r.weightOf(res.AlgorithmName)
		if w == 0 {
			continue
		}
		scoreSum += res.Score * w
		confSum += res.Confidence * w
		weightSum += w
		analysis.Scores[res.AlgorithmName] = res.Score
		analysis.Insights = append(analysis.Insights, res.Insights...)
	}
	if weightSum > 0 {
		analysis.OverallScore = clamp01(scoreSum / weightSum)
		analysis.ConfidenceScore = clamp01(confSum / weightSum)
	}

	for _, failure := range pass.Failures {
		analysis.Insights = append(analysis.Insights, Insight{
			Type:       "degraded",
			Message:    fmt.Sprintf("unit %s excluded: %v", failure.AlgorithmName, failure.Err),
			Confidence: 0.2,
		})
	}
	return analysis
}
