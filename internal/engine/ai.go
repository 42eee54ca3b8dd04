// AI decision phase: every controllable actor scores candidate actions
// against the same frozen snapshot and commits to one intent. Intents are
// collected before any is applied, so no actor sees another's same-turn
// effects.
package engine

import (
	"sort"

	"github.com/talgya/statehouse/internal/entropy"
	"github.com/talgya/statehouse/internal/opinion"
	"github.com/talgya/statehouse/internal/politics"
)

// Snapshot is a read-only copy of the decision-relevant state, frozen
// after the event phase and before any intent is applied.
type Snapshot struct {
	Turn    uint64
	Year    int
	Month   int
	Macro   MacroView
	Deficit float64

	PresidentParty politics.PartyID
	Parties        map[politics.PartyID]PartyView
	States         map[string]StateView
	Opinion        map[string]map[politics.Issue]float64
}

// MacroView mirrors the national indicators.
type MacroView struct {
	Growth       float64
	Unemployment float64
	Inflation    float64
}

// PartyView is an actor's view of one party.
type PartyView struct {
	SeatShareHouse  float64
	SeatShareSenate float64
	Treasury        float64
	Approval        float64
	Platform        map[politics.Issue]float64
}

// StateView is an actor's view of one state.
type StateView struct {
	Unemployment  float64
	Inflation     float64
	BudgetBalance float64
	GovernorParty politics.PartyID
	HouseMargin   float64 // seat share margin of the leading party, 0..1
}

// Intent is an actor's chosen action for the turn.
type Intent struct {
	Actor string
	Kind  IntentKind

	Policy        *politics.Policy // IntentProposePolicy
	CampaignState string           // IntentCampaign
	CampaignParty politics.PartyID
	Amount        float64 // campaign spend or budget delta, billions
}

// IntentKind enumerates the action types an actor can take.
type IntentKind uint8

const (
	IntentNone IntentKind = iota
	IntentProposePolicy
	IntentCampaign
	IntentAdjustBudget
)

// Actor is anything that takes a turn action: a state government or a
// national party. Decide must be a pure function of the snapshot and its
// own stream.
type Actor interface {
	ActorID() string
	Decide(snap *Snapshot, stream *entropy.Stream) Intent
}

// snapshot freezes the decision-relevant fields.
func (s *Simulation) snapshot(turn uint64) *Snapshot {
	snap := &Snapshot{
		Turn:  turn,
		Year:  s.Year,
		Month: s.Month,
		Macro: MacroView{
			Growth:       s.Macro.Growth,
			Unemployment: s.Macro.Unemployment,
			Inflation:    s.Macro.Inflation,
		},
		Deficit:        s.Budget.Deficit(),
		PresidentParty: s.President.Party,
		Parties:        make(map[politics.PartyID]PartyView, len(s.Parties)),
		States:         make(map[string]StateView, len(s.States)),
		Opinion:        s.Opinion.Export(),
	}
	for id, p := range s.Parties {
		platform := make(map[politics.Issue]float64, len(p.Platform))
		for k, v := range p.Platform {
			platform[k] = v
		}
		snap.Parties[id] = PartyView{
			SeatShareHouse:  s.Congress.SeatShare(politics.ChamberHouse, id),
			SeatShareSenate: s.Congress.SeatShare(politics.ChamberSenate, id),
			Treasury:        p.Treasury,
			Approval:        p.NationalApproval,
			Platform:        platform,
		}
	}
	for _, st := range s.States {
		counts := make(map[politics.PartyID]int)
		for _, d := range st.Districts {
			counts[d.Incumbent]++
		}
		margin := 0.0
		if len(st.Districts) > 0 {
			best, second := 0, 0
			for _, n := range counts {
				if n > best {
					second = best
					best = n
				} else if n > second {
					second = n
				}
			}
			margin = float64(best-second) / float64(len(st.Districts))
		}
		snap.States[st.Name] = StateView{
			Unemployment:  st.Unemployment,
			Inflation:     st.Inflation,
			BudgetBalance: st.BudgetBalance(),
			GovernorParty: st.GovernorParty,
			HouseMargin:   margin,
		}
	}
	return snap
}

// collectIntents runs every actor's decision against the frozen snapshot.
// Actors are visited in a stable order, but each draws only from its own
// stream, so the visit order cannot change any outcome.
func (s *Simulation) collectIntents(turn uint64) []Intent {
	snap := s.snapshot(turn)

	actors := make([]Actor, 0, len(s.Parties)+len(s.States))
	for _, id := range s.PartyIDs() {
		actors = append(actors, &partyActor{party: s.Parties[id], president: s.President})
	}
	for _, st := range s.States {
		actors = append(actors, &stateActor{state: st})
	}

	intents := make([]Intent, 0, len(actors))
	for _, a := range actors {
		stream := s.stream("actor/"+a.ActorID(), turn)
		intents = append(intents, a.Decide(snap, stream))
		s.noteDraws(stream)
	}
	return intents
}

// candidate is one scored action option.
type candidate struct {
	intent Intent
	score  float64
}

// pickBest returns the highest-scoring candidate, breaking exact ties
// with the actor's own stream.
func pickBest(cands []candidate, stream *entropy.Stream) Intent {
	if len(cands) == 0 {
		return Intent{Kind: IntentNone}
	}
	best := cands[0]
	for _, c := range cands[1:] {
		switch {
		case c.score > best.score:
			best = c
		case c.score == best.score && stream.Intn(2) == 0:
			best = c
		}
	}
	return best.intent
}

// Heuristic weights for action scoring.
const (
	weightOpinionGain = 1.0
	weightCost        = 0.02
	weightAlignment   = 0.5
)

// scoreAction combines expected opinion gain, budget cost, and platform
// alignment into one scalar.
func scoreAction(opinionGain, cost, alignment float64) float64 {
	return weightOpinionGain*opinionGain - weightCost*cost + weightAlignment*alignment
}

// stateActor drives one state government's monthly decision.
type stateActor struct {
	state *politics.State
}

func (a *stateActor) ActorID() string { return "state/" + a.state.Name }

func (a *stateActor) Decide(snap *Snapshot, stream *entropy.Stream) Intent {
	view := snap.States[a.state.Name]
	id := a.ActorID()
	var cands []candidate

	if view.Unemployment > 6.5 {
		pol := statePolicy(id, a.state, "State Jobs Program",
			"Public works hiring and small business grants",
			politics.IssueEconomy, 1, snap.Turn,
			politics.EffectVector{Growth: 0.003, Unemployment: -0.2, BudgetCost: 10,
				Opinion: map[politics.Issue]float64{politics.IssueEconomy: 0.05}})
		cands = append(cands, candidate{
			intent: Intent{Actor: id, Kind: IntentProposePolicy, Policy: pol},
			score:  scoreAction(0.05+0.01*(view.Unemployment-6.5), 10, 0.3),
		})
	}
	if view.Inflation > 5.0 {
		pol := statePolicy(id, a.state, "State Spending Freeze",
			"Temporary restraint on non-essential spending",
			politics.IssueEconomy, -1, snap.Turn,
			politics.EffectVector{Growth: -0.001, Inflation: -0.2, BudgetCost: -5,
				Opinion: map[politics.Issue]float64{politics.IssueEconomy: 0.02}})
		cands = append(cands, candidate{
			intent: Intent{Actor: id, Kind: IntentProposePolicy, Policy: pol},
			score:  scoreAction(0.02+0.005*(view.Inflation-5.0), -5, 0.2),
		})
	}
	if view.BudgetBalance < -5.0 {
		cands = append(cands, candidate{
			intent: Intent{Actor: id, Kind: IntentAdjustBudget, Amount: view.BudgetBalance * 0.25},
			score:  scoreAction(0.01, 0, 0.1),
		})
	}
	// Campaigning is attractive in competitive states.
	if view.HouseMargin < 0.34 {
		spend := 2.0 + stream.Range(0, 2.0)
		cands = append(cands, candidate{
			intent: Intent{Actor: id, Kind: IntentCampaign,
				CampaignState: a.state.Name, CampaignParty: a.state.GovernorParty, Amount: spend},
			score: scoreAction(0.03*(0.34-view.HouseMargin)/0.34, spend, 0.2),
		})
	}
	cands = append(cands, candidate{intent: Intent{Actor: id, Kind: IntentNone}, score: 0.005})

	return pickBest(cands, stream)
}

// partyActor drives one national party's monthly decision.
type partyActor struct {
	party     *politics.Party
	president politics.President
}

func (a *partyActor) ActorID() string { return "party/" + string(a.party.ID) }

func (a *partyActor) Decide(snap *Snapshot, stream *entropy.Stream) Intent {
	id := a.ActorID()
	var cands []candidate

	econOpinion := snap.Opinion[opinion.RegionNational][politics.IssueEconomy]

	if snap.Macro.Growth < 0 {
		pol := federalPolicy(id, a.party.ID, "Stimulus",
			"Counter-cyclical fiscal stimulus",
			politics.IssueEconomy, 1, snap.Turn,
			politics.EffectVector{Growth: 0.01, Unemployment: -0.3, BudgetCost: 300,
				Opinion: map[politics.Issue]float64{politics.IssueEconomy: 0.08}})
		cands = append(cands, candidate{
			intent: Intent{Actor: id, Kind: IntentProposePolicy, Policy: pol},
			score:  scoreAction(0.08-econOpinion*0.1, 300, a.party.Alignment(politics.IssueEconomy, 1)),
		})
	}
	if snap.Macro.Inflation > 4.0 {
		pol := federalPolicy(id, a.party.ID, "Austerity",
			"Spending restraint to curb inflation",
			politics.IssueEconomy, -1, snap.Turn,
			politics.EffectVector{Growth: -0.005, Inflation: -0.8, BudgetCost: -100,
				Opinion: map[politics.Issue]float64{politics.IssueEconomy: 0.03}})
		cands = append(cands, candidate{
			intent: Intent{Actor: id, Kind: IntentProposePolicy, Policy: pol},
			score:  scoreAction(0.03, -100, a.party.Alignment(politics.IssueEconomy, -1)),
		})
	}
	// Infrastructure is the evergreen play.
	pol := federalPolicy(id, a.party.ID, "Infrastructure",
		"Invest in roads, bridges, and broadband",
		politics.IssueEconomy, 1, snap.Turn,
		politics.EffectVector{Growth: 0.005, Unemployment: -0.2, BudgetCost: 200,
			Opinion: map[politics.Issue]float64{politics.IssueEconomy: 0.06}})
	cands = append(cands, candidate{
		intent: Intent{Actor: id, Kind: IntentProposePolicy, Policy: pol},
		score:  scoreAction(0.06-econOpinion*0.05, 200, a.party.Alignment(politics.IssueEconomy, 1)),
	})

	// Campaign in the most competitive state if the war chest allows.
	if a.party.Treasury > 20 {
		if target := mostCompetitiveState(snap); target != "" {
			spend := 5.0 + stream.Range(0, 5.0)
			cands = append(cands, candidate{
				intent: Intent{Actor: id, Kind: IntentCampaign,
					CampaignState: target, CampaignParty: a.party.ID, Amount: spend},
				score: scoreAction(0.04, spend, 0.3),
			})
		}
	}
	cands = append(cands, candidate{intent: Intent{Actor: id, Kind: IntentNone}, score: 0.01})

	return pickBest(cands, stream)
}

// mostCompetitiveState finds the state with the narrowest House margin,
// breaking ties by name for determinism.
func mostCompetitiveState(snap *Snapshot) string {
	names := make([]string, 0, len(snap.States))
	for name := range snap.States {
		names = append(names, name)
	}
	sort.Strings(names)

	best := ""
	bestMargin := 2.0
	for _, name := range names {
		if m := snap.States[name].HouseMargin; m < bestMargin {
			bestMargin = m
			best = name
		}
	}
	return best
}

func statePolicy(sponsor string, st *politics.State, title, desc string, issue politics.Issue, direction float64, turn uint64, effect politics.EffectVector) *politics.Policy {
	return &politics.Policy{
		ID:          politics.PolicyID(sponsor, title, turn),
		Title:       title,
		Description: desc,
		Sponsor:     sponsor,
		Party:       st.GovernorParty,
		Scope:       politics.ScopeState,
		StateName:   st.Name,
		Issue:       issue,
		Direction:   direction,
		Effect:      effect,
		Popularity:  55,
		Status:      politics.PolicyProposed,
		ProposedTurn: turn,
	}
}

func federalPolicy(sponsor string, party politics.PartyID, title, desc string, issue politics.Issue, direction float64, turn uint64, effect politics.EffectVector) *politics.Policy {
	return &politics.Policy{
		ID:          politics.PolicyID(sponsor, title, turn),
		Title:       title,
		Description: desc,
		Sponsor:     sponsor,
		Party:       party,
		Scope:       politics.ScopeFederal,
		Issue:       issue,
		Direction:   direction,
		Effect:      effect,
		Popularity:  60,
		Status:      politics.PolicyProposed,
		ProposedTurn: turn,
	}
}
