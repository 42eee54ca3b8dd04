// Package opinion tracks public approval per (region, issue) pair.
// Values live in [-1, 1], are clamped on every write, and decay toward a
// neutral baseline once per simulated month.
package opinion

import (
	"fmt"
	"sort"

	"github.com/talgya/statehouse/internal/politics"
)

// RegionNational is the region key for nationwide opinion.
const RegionNational = "national"

// Bounds for every opinion value.
const (
	Min = -1.0
	Max = 1.0
)

// DefaultDecayRate is the fraction of the distance to baseline removed
// per decay step (5% per month).
const DefaultDecayRate = 0.05

// Tracker maps (region, issue) to an approval scalar.
type Tracker struct {
	entries   map[string]map[politics.Issue]float64
	baseline  float64
	decayRate float64
}

// NewTracker creates an empty tracker with the given decay rate.
func NewTracker(decayRate float64) *Tracker {
	return &Tracker{
		entries:   make(map[string]map[politics.Issue]float64),
		baseline:  0,
		decayRate: decayRate,
	}
}

// Apply adds a delta to one entry, clamping to bounds.
func (t *Tracker) Apply(region string, issue politics.Issue, delta float64) {
	m, ok := t.entries[region]
	if !ok {
		m = make(map[politics.Issue]float64)
		t.entries[region] = m
	}
	m[issue] = clamp(m[issue] + delta)
}

// Get returns the current approval for one entry; absent entries read as
// the baseline.
func (t *Tracker) Get(region string, issue politics.Issue) float64 {
	if m, ok := t.entries[region]; ok {
		if v, ok := m[issue]; ok {
			return v
		}
	}
	return t.baseline
}

// DecayStep moves every entry a fixed fraction toward the baseline in a
// single completed pass. Called exactly once per turn, after all of that
// turn's effects have been applied.
func (t *Tracker) DecayStep() {
	for _, r := range t.Regions() {
		m := t.entries[r]
		for issue, v := range m {
			m[issue] = clamp(v + t.decayRate*(t.baseline-v))
		}
	}
}

// Regions returns all region keys in sorted order.
func (t *Tracker) Regions() []string {
	keys := make([]string, 0, len(t.entries))
	for r := range t.entries {
		keys = append(keys, r)
	}
	sort.Strings(keys)
	return keys
}

// Export returns a deep copy of the opinion table for snapshots.
func (t *Tracker) Export() map[string]map[politics.Issue]float64 {
	out := make(map[string]map[politics.Issue]float64, len(t.entries))
	for r, m := range t.entries {
		cp := make(map[politics.Issue]float64, len(m))
		for i, v := range m {
			cp[i] = v
		}
		out[r] = cp
	}
	return out
}

// Import replaces the opinion table, rejecting out-of-bounds values.
func (t *Tracker) Import(table map[string]map[politics.Issue]float64) error {
	fresh := make(map[string]map[politics.Issue]float64, len(table))
	for r, m := range table {
		cp := make(map[politics.Issue]float64, len(m))
		for i, v := range m {
			if v < Min || v > Max {
				return fmt.Errorf("opinion %s/%s = %v outside [%v, %v]", r, i, v, Min, Max)
			}
			cp[i] = v
		}
		fresh[r] = cp
	}
	t.entries = fresh
	return nil
}

func clamp(v float64) float64 {
	if v < Min {
		return Min
	}
	if v > Max {
		return Max
	}
	return v
}
