// External interventions: operations an operator performs between turns.
// Interventions are rejected while an Advance is in flight so a step is
// never observed half-applied.
package engine

import (
	"fmt"

	"github.com/talgya/statehouse/internal/politics"
)

// ProposePolicy injects a policy into the pipeline on behalf of an
// actor, exactly as if the actor had proposed it itself. It enters the
// pipeline as Proposed and starts voting on the next turn.
func (s *Simulation) ProposePolicy(actorID string, p *politics.Policy) error {
	if err := s.interventionAllowed("propose_policy", actorID); err != nil {
		return err
	}
	if p == nil || p.Title == "" {
		return &InvalidIntervention{Op: "propose_policy", Actor: actorID, Turn: s.Turn, Reason: "empty policy"}
	}
	if _, ok := s.Parties[p.Party]; p.Party != "" && !ok {
		return &InvalidIntervention{Op: "propose_policy", Actor: actorID, Turn: s.Turn,
			Reason: fmt.Sprintf("unknown sponsoring party %q", p.Party)}
	}
	if p.Scope == politics.ScopeState && s.StateByName(p.StateName) == nil {
		return &InvalidIntervention{Op: "propose_policy", Actor: actorID, Turn: s.Turn,
			Reason: fmt.Sprintf("unknown state %q", p.StateName)}
	}
	if s.hasActivePolicy(actorID, p.Title) {
		return &InvalidIntervention{Op: "propose_policy", Actor: actorID, Turn: s.Turn,
			Reason: fmt.Sprintf("actor already has %q in the pipeline", p.Title)}
	}

	cp := copyPolicy(p)
	cp.ID = politics.PolicyID(actorID, p.Title, s.Turn)
	cp.Sponsor = actorID
	cp.Status = politics.PolicyProposed
	cp.ProposedTurn = s.Turn
	s.Policies = append(s.Policies, &cp)
	s.logEvent("intervention", "policy %q injected for %s", cp.Title, actorID)
	return nil
}

// TriggerEvent fires a catalog event immediately, bypassing its trigger
// condition but honoring retirement.
func (s *Simulation) TriggerEvent(key string) error {
	if err := s.interventionAllowed("trigger_event", key); err != nil {
		return err
	}
	e := s.Events.find(key)
	if e == nil {
		return &InvalidIntervention{Op: "trigger_event", Actor: key, Turn: s.Turn,
			Reason: fmt.Sprintf("no event %q in catalog", key)}
	}
	if e.Retired {
		return &InvalidIntervention{Op: "trigger_event", Actor: key, Turn: s.Turn,
			Reason: fmt.Sprintf("event %q is retired", key)}
	}
	s.applyEvent(e, true)
	return nil
}

// TriggerEffect applies a bare effect vector immediately, outside the
// event catalog. Useful for scripted shocks.
func (s *Simulation) TriggerEffect(ev politics.EffectVector, description string) error {
	if err := s.interventionAllowed("trigger_effect", description); err != nil {
		return err
	}
	if description == "" {
		description = "external shock"
	}
	s.applyEffectVector(ev, description)
	return nil
}

func (s *Simulation) interventionAllowed(op, actor string) error {
	if s.advancing {
		return &InvalidIntervention{Op: op, Actor: actor, Turn: s.Turn,
			Reason: "simulation is mid-turn"}
	}
	return nil
}
