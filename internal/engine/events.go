// Event phase: trigger predicates are pure functions over the frozen
// snapshot; effects apply immediately once a trigger fires. At most one
// random event fires per turn so shocks cannot stack; explicit
// interventions may force an additional one.
package engine

import (
	"github.com/talgya/statehouse/internal/entropy"
	"github.com/talgya/statehouse/internal/opinion"
	"github.com/talgya/statehouse/internal/politics"
	"github.com/talgya/statehouse/internal/scenario"
)

// randomEventChance is the per-turn probability that the weighted pool
// produces an event at all.
const randomEventChance = 0.35

// EventState is one catalog entry plus its runtime bookkeeping.
type EventState struct {
	Config       scenario.EventConfig `json:"config"`
	Retired      bool                 `json:"retired"`
	CooldownLeft int                  `json:"cooldown_left"`
}

// Available reports whether the event can fire this turn.
func (e *EventState) Available() bool {
	return !e.Retired && e.CooldownLeft == 0
}

// EventManager owns the event catalog and its cooldown counters.
type EventManager struct {
	Catalog []*EventState `json:"catalog"`
}

// NewEventManager builds runtime state from catalog configuration.
func NewEventManager(configs []scenario.EventConfig) *EventManager {
	m := &EventManager{Catalog: make([]*EventState, 0, len(configs))}
	for _, c := range configs {
		m.Catalog = append(m.Catalog, &EventState{Config: c})
	}
	return m
}

// find returns the catalog entry with the given key, or nil.
func (m *EventManager) find(key string) *EventState {
	for _, e := range m.Catalog {
		if e.Config.Key == key {
			return e
		}
	}
	return nil
}

// tickCooldowns decrements every cooldown at the start of the phase.
func (m *EventManager) tickCooldowns() {
	for _, e := range m.Catalog {
		if e.CooldownLeft > 0 {
			e.CooldownLeft--
		}
	}
}

// EventRecord describes one fired event for reports and logs.
type EventRecord struct {
	Key         string `json:"key"`
	Description string `json:"description"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	Forced      bool   `json:"forced"` // true when fired by explicit intervention
}

// runEvents executes the event phase for one turn: cooldown bookkeeping,
// condition-triggered events in catalog order, then at most one draw from
// the weighted random pool.
func (s *Simulation) runEvents(turn uint64) []EventRecord {
	s.Events.tickCooldowns()
	snap := s.snapshot(turn)

	var fired []EventRecord
	for _, e := range s.Events.Catalog {
		if !e.Available() || e.Config.Trigger == scenario.TriggerRandom {
			continue
		}
		if triggered(e.Config, snap) {
			s.applyEvent(e, false)
			fired = append(fired, EventRecord{
				Key: e.Config.Key, Description: e.Config.Description,
				Year: s.Year, Month: s.Month,
			})
		}
	}

	stream := s.stream("events", turn)
	if ev := s.drawRandomEvent(stream); ev != nil {
		s.applyEvent(ev, false)
		fired = append(fired, EventRecord{
			Key: ev.Config.Key, Description: ev.Config.Description,
			Year: s.Year, Month: s.Month,
		})
	}
	s.noteDraws(stream)
	return fired
}

// triggered evaluates a non-random trigger predicate against the
// snapshot. Pure: no mutation happens until the effect phase.
func triggered(cfg scenario.EventConfig, snap *Snapshot) bool {
	switch cfg.Trigger {
	case scenario.TriggerDeficit:
		return snap.Deficit > cfg.Threshold
	case scenario.TriggerOpinion:
		return snap.Opinion[opinion.RegionNational][cfg.Issue] < cfg.Threshold
	case scenario.TriggerScheduled:
		if snap.Month != cfg.Month {
			return false
		}
		return cfg.YearMod == 0 || snap.Year%cfg.YearMod == 0
	}
	return false
}

// drawRandomEvent makes the once-per-turn weighted draw from the random
// pool. Returns nil when no event fires.
func (s *Simulation) drawRandomEvent(stream *entropy.Stream) *EventState {
	if stream.Float() >= randomEventChance {
		return nil
	}
	var pool []*EventState
	total := 0.0
	for _, e := range s.Events.Catalog {
		if e.Available() && e.Config.Trigger == scenario.TriggerRandom {
			pool = append(pool, e)
			total += e.Config.Weight
		}
	}
	if len(pool) == 0 || total <= 0 {
		return nil
	}
	pick := stream.Range(0, total)
	acc := 0.0
	for _, e := range pool {
		acc += e.Config.Weight
		if pick <= acc {
			return e
		}
	}
	return pool[len(pool)-1]
}

// applyEvent applies an event's effect vector immediately, then retires
// or re-arms it.
func (s *Simulation) applyEvent(e *EventState, forced bool) {
	ev := e.Config.Effect

	s.Macro.ApplyEffect(ev)
	if ev.BudgetCost >= 0 {
		s.Budget.Spending += ev.BudgetCost
	} else {
		s.Budget.Revenue += -ev.BudgetCost
	}
	for issue, delta := range ev.Opinion {
		s.Opinion.Apply(opinion.RegionNational, issue, delta)
	}
	if ev.PartyBenefit != "" {
		if p, ok := s.Parties[ev.PartyBenefit]; ok {
			p.AdjustApproval(1.0)
		}
	}

	if e.Config.OneShot {
		e.Retired = true
	} else {
		e.CooldownLeft = e.Config.Cooldown
	}

	kind := "event"
	if forced {
		kind = "intervention"
	}
	s.logEvent(kind, "Event: %s", e.Config.Description)
}

// applyEffectVector applies a bare effect vector (no catalog entry), used
// by effect-only interventions.
func (s *Simulation) applyEffectVector(ev politics.EffectVector, desc string) {
	s.Macro.ApplyEffect(ev)
	if ev.BudgetCost >= 0 {
		s.Budget.Spending += ev.BudgetCost
	} else {
		s.Budget.Revenue += -ev.BudgetCost
	}
	for issue, delta := range ev.Opinion {
		s.Opinion.Apply(opinion.RegionNational, issue, delta)
	}
	if ev.PartyBenefit != "" {
		if p, ok := s.Parties[ev.PartyBenefit]; ok {
			p.AdjustApproval(1.0)
		}
	}
	s.logEvent("intervention", "Effect applied: %s", desc)
}
