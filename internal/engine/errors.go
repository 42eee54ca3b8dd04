// Error taxonomy for the simulation engine. Every rejected transition or
// fault carries enough context (actor, turn, entity) to reproduce it from
// the same seed.
package engine

import "fmt"

// ConfigurationFault is an invalid initial setup: bad seat counts,
// duplicate states, malformed scenario. Surfaced before any turn runs.
type ConfigurationFault struct {
	Reason string
	Err    error
}

func (e *ConfigurationFault) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration fault: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("configuration fault: %s", e.Reason)
}

func (e *ConfigurationFault) Unwrap() error { return e.Err }

// SimulationFault is an internal invariant violation mid-turn. It aborts
// the current Advance call; the engine restores the last completed turn's
// state before returning it.
type SimulationFault struct {
	Turn   uint64
	Year   int
	Month  int
	Phase  string
	Entity string
	Reason string
}

func (e *SimulationFault) Error() string {
	return fmt.Sprintf("simulation fault at turn %d (%04d-%02d) phase %s entity %q: %s",
		e.Turn, e.Year, e.Month, e.Phase, e.Entity, e.Reason)
}

// LoadError is a malformed or invariant-violating persisted snapshot.
// Recoverable: the engine's in-memory state is unchanged after a failed
// load.
type LoadError struct {
	Field  string
	Reason string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load error in %s: %s", e.Field, e.Reason)
}

// InvalidIntervention is a manual call made at the wrong time or with bad
// arguments. Recoverable; no state is mutated.
type InvalidIntervention struct {
	Op     string
	Actor  string
	Turn   uint64
	Reason string
}

func (e *InvalidIntervention) Error() string {
	return fmt.Sprintf("invalid intervention %s by %q at turn %d: %s", e.Op, e.Actor, e.Turn, e.Reason)
}
