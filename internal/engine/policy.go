// Legislative pipeline: Proposed → Voting → {Enacted, Rejected}. A
// proposal deliberates for at least one full turn before its vote, and
// exact ties always fall to Rejected: the status quo wins.
package engine

import (
	"github.com/talgya/statehouse/internal/economy"
	"github.com/talgya/statehouse/internal/opinion"
	"github.com/talgya/statehouse/internal/politics"
)

// Majority thresholds. A vote passes only when the weighted yes share
// strictly exceeds the threshold.
const (
	simpleMajority = 0.5
	superMajority  = 2.0 / 3.0
)

// runPolicyPhase advances the pipeline for one turn: resolve every policy
// currently in Voting, promote last turn's proposals into Voting, then
// apply this turn's intents.
func (s *Simulation) runPolicyPhase(turn uint64, intents []Intent) (enacted, rejected []*politics.Policy) {
	for _, p := range s.Policies {
		if p.Status != politics.PolicyVoting {
			continue
		}
		if s.resolveVote(p) {
			p.Status = politics.PolicyEnacted
			p.ResolvedTurn = turn
			s.enact(p)
			enacted = append(enacted, p)
		} else {
			p.Status = politics.PolicyRejected
			p.ResolvedTurn = turn
			s.logEvent("policy", "Policy rejected: %s (sponsor %s)", p.Title, p.Sponsor)
			rejected = append(rejected, p)
		}
	}

	for _, p := range s.Policies {
		if p.Status == politics.PolicyProposed && p.ProposedTurn < turn {
			p.Status = politics.PolicyVoting
		}
	}

	for _, in := range intents {
		s.applyIntent(in, turn)
	}
	return enacted, rejected
}

// applyIntent commits one actor's chosen action.
func (s *Simulation) applyIntent(in Intent, turn uint64) {
	switch in.Kind {
	case IntentProposePolicy:
		if in.Policy == nil || s.hasActivePolicy(in.Policy.Sponsor, in.Policy.Title) {
			return
		}
		s.Policies = append(s.Policies, in.Policy)
		s.logEvent("policy", "Policy proposed: %s (sponsor %s)", in.Policy.Title, in.Policy.Sponsor)

	case IntentCampaign:
		st := s.StateByName(in.CampaignState)
		if st == nil || in.Amount <= 0 {
			return
		}
		st.Spend(in.CampaignParty, in.Amount)
		if p, ok := s.Parties[in.CampaignParty]; ok {
			p.Treasury -= in.Amount
		}

	case IntentAdjustBudget:
		st := s.StateByName(stateNameFromActor(in.Actor))
		if st == nil {
			return
		}
		st.BudgetSpending += in.Amount
	}
}

// hasActivePolicy reports whether the sponsor already has a non-terminal
// policy with the same title, preventing duplicate proposals.
func (s *Simulation) hasActivePolicy(sponsor, title string) bool {
	for _, p := range s.Policies {
		if p.Sponsor == sponsor && p.Title == title && !p.Status.Terminal() {
			return true
		}
	}
	return false
}

// resolveVote simulates the tally for one policy. Party blocs vote
// whole: a party votes yes when it sponsors the policy or its platform
// aligns with the policy direction.
func (s *Simulation) resolveVote(p *politics.Policy) bool {
	if p.Scope == politics.ScopeState {
		return s.resolveStateVote(p)
	}

	threshold := simpleMajority
	if s.presidentOpposes(p) {
		// Veto scenario: Congress needs a supermajority to override.
		threshold = superMajority
	}

	house := s.yesShare(politics.ChamberHouse, p)
	senate := s.yesShare(politics.ChamberSenate, p)
	return house > threshold && senate > threshold
}

// resolveStateVote models a state legislature as two chambers split
// between a majority bloc and an opposition bloc, with a governor veto
// path. A hostile governor forces the override threshold, which only a
// lopsided chamber can clear.
func (s *Simulation) resolveStateVote(p *politics.Policy) bool {
	st := s.StateByName(p.StateName)
	if st == nil {
		return false
	}
	threshold := simpleMajority
	if gov, ok := s.Parties[st.GovernorParty]; ok {
		if st.GovernorParty != p.Party && gov.Alignment(p.Issue, p.Direction) < 0 {
			threshold = superMajority
		}
	}
	house := s.stateChamberYes(st.Legislature.House, st.Legislature.HouseShare, p)
	senate := s.stateChamberYes(st.Legislature.Senate, st.Legislature.SenateShare, p)
	return house > threshold && senate > threshold
}

// stateChamberYes sums the yes share of a state chamber: the controlling
// party's bloc plus, when it also supports, the opposition remainder.
func (s *Simulation) stateChamberYes(control politics.PartyID, share float64, p *politics.Policy) float64 {
	yes := 0.0
	if s.partySupports(control, p) {
		yes += share
	}
	for _, id := range s.PartyIDs() {
		if id != control && s.partySupports(id, p) {
			yes += 1 - share
			break
		}
	}
	return yes
}

// yesShare sums seat shares of parties voting yes in a chamber.
func (s *Simulation) yesShare(chamber politics.Chamber, p *politics.Policy) float64 {
	share := 0.0
	for _, id := range s.PartyIDs() {
		if s.partySupports(id, p) {
			share += s.Congress.SeatShare(chamber, id)
		}
	}
	return share
}

// partySupports is the party-discipline model: sponsors always vote yes,
// everyone else follows platform alignment. Zero alignment abstains,
// which counts against the policy.
func (s *Simulation) partySupports(id politics.PartyID, p *politics.Policy) bool {
	if id == p.Party {
		return true
	}
	party, ok := s.Parties[id]
	if !ok {
		return false
	}
	return party.Alignment(p.Issue, p.Direction) > 0
}

// presidentOpposes reports whether the sitting president's party would
// veto the policy.
func (s *Simulation) presidentOpposes(p *politics.Policy) bool {
	if s.President.Party == p.Party {
		return false
	}
	pres, ok := s.Parties[s.President.Party]
	if !ok {
		return false
	}
	return pres.Alignment(p.Issue, p.Direction) < 0
}

// enact applies an enacted policy's effect vector exactly once, in the
// turn it is enacted and ahead of that turn's opinion decay.
func (s *Simulation) enact(p *politics.Policy) {
	ev := p.Effect

	if p.Scope == politics.ScopeState {
		if st := s.StateByName(p.StateName); st != nil {
			economy.ApplyStateEffect(st, ev)
			st.EnactedPolicies = append(st.EnactedPolicies, p.ID)
			if p.Party == st.GovernorParty {
				st.ApprovalGovernor = clampApproval(st.ApprovalGovernor + 0.8)
			}
			st.ApprovalLegislature = clampApproval(st.ApprovalLegislature + 0.4)
			for issue, delta := range ev.Opinion {
				s.Opinion.Apply(st.Name, issue, delta)
				// State successes echo nationally at reduced strength.
				s.Opinion.Apply(opinion.RegionNational, issue, delta*0.2)
			}
		}
	} else {
		s.Macro.ApplyEffect(ev)
		if ev.BudgetCost >= 0 {
			s.Budget.Spending += ev.BudgetCost
		} else {
			s.Budget.Revenue += -ev.BudgetCost
		}
		for issue, delta := range ev.Opinion {
			s.Opinion.Apply(opinion.RegionNational, issue, delta)
		}
	}

	if party, ok := s.Parties[p.Party]; ok {
		party.AdjustApproval(1.0)
	}
	s.logEvent("policy", "Policy enacted: %s (sponsor %s)", p.Title, p.Sponsor)
}

func clampApproval(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// stateNameFromActor strips the "state/" prefix from an actor id.
func stateNameFromActor(actor string) string {
	const prefix = "state/"
	if len(actor) > len(prefix) && actor[:len(prefix)] == prefix {
		return actor[len(prefix):]
	}
	return ""
}
