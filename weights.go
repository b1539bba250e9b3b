package mindpulse

import (
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ──────────────────────────────────────────────
// Weight tables
// ──────────────────────────────────────────────

// weightTolerance is the allowed drift from 1.0 before renormalization.
const weightTolerance = 1e-6

// WeightTable maps algorithm names to their contribution weights within one
// family. Construction guarantees the weights sum to 1.0 within tolerance;
// tables whose sum differs are renormalized automatically.
type WeightTable struct {
	weights map[string]float64
}

// NewWeightTable validates and normalizes a weight mapping.
// Negative weights or an all-zero/empty table are a WeightConfigurationError.
// A table whose sum drifts from 1.0 beyond 1e-6 is silently renormalized.
func NewWeightTable(weights map[string]float64) (*WeightTable, error) {
	if len(weights) == 0 {
		return nil, &WeightConfigurationError{Reason: "empty weight table"}
	}
	sum := 0.0
	for name, w := range weights {
		if w < 0 {
			return nil, &WeightConfigurationError{Reason: fmt.Sprintf("negative weight for %q", name)}
		}
		sum += w
	}
	if sum == 0 {
		return nil, &WeightConfigurationError{Reason: "weights sum to zero"}
	}

	normalized := make(map[string]float64, len(weights))
	if math.Abs(sum-1.0) <= weightTolerance {
		for name, w := range weights {
			normalized[name] = w
		}
	} else {
		for name, w := range weights {
			normalized[name] = w / sum
		}
	}
	return &WeightTable{weights: normalized}, nil
}

// Weight returns the weight for an algorithm name.
func (t *WeightTable) Weight(name string) (float64, bool) {
	w, ok := t.weights[name]
	return w, ok
}

// Sum returns the total weight (1.0 within tolerance after construction).
func (t *WeightTable) Sum() float64 {
	sum := 0.0
	for _, w := range t.weights {
		sum += w
	}
	return sum
}

// Names returns the algorithm names in the table, sorted.
func (t *WeightTable) Names() []string {
	names := make([]string, 0, len(t.weights))
	for name := range t.weights {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of entries.
func (t *WeightTable) Len() int { return len(t.weights) }

// ParseWeightTableYAML builds a WeightTable from YAML of the form:
//
//	frustration: 0.2
//	anxiety: 0.15
func ParseWeightTableYAML(data []byte) (*WeightTable, error) {
	var raw map[string]float64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &WeightConfigurationError{Reason: fmt.Sprintf("yaml parse failed: %v", err)}
	}
	return NewWeightTable(raw)
}

// LoadWeightTableYAML reads a YAML weight table from disk.
func LoadWeightTableYAML(path string) (*WeightTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &WeightConfigurationError{Reason: fmt.Sprintf("read %s: %v", path, err)}
	}
	return ParseWeightTableYAML(data)
}
