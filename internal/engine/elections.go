// Election scheduling and resolution. House seats are contested every
// even-numbered November; Senate seats are staggered into three classes
// on six-year terms with one class per cycle; the presidency is contested
// every fourth year.
package engine

import (
	"fmt"

	"github.com/talgya/statehouse/internal/opinion"
	"github.com/talgya/statehouse/internal/politics"
	"github.com/talgya/statehouse/internal/voter"
)

// ElectionKind says which seats an election contests.
type ElectionKind string

const (
	ElectionHouse        ElectionKind = "house"
	ElectionSenate       ElectionKind = "senate"
	ElectionPresidential ElectionKind = "presidential"
)

// ElectionStatus tracks an election's lifecycle. Elections are created
// Pending when a cadence check fires and are never revived once Resolved.
type ElectionStatus string

const (
	ElectionPending    ElectionStatus = "pending"
	ElectionInProgress ElectionStatus = "in_progress"
	ElectionResolved   ElectionStatus = "resolved"
)

// Election is one resolved (or in-flight) contest over a set of seats.
type Election struct {
	ID      string                   `json:"id"`
	Kind    ElectionKind             `json:"kind"`
	Year    int                      `json:"year"`
	Month   int                      `json:"month"`
	Seats   int                      `json:"seats"`
	Winners map[politics.PartyID]int `json:"winners"`
	Flips   int                      `json:"flips"`
	Status  ElectionStatus           `json:"status"`
}

// electionMonth is when general elections are held.
const electionMonth = 11

// runElections resolves every election due this month and re-tallies the
// chambers. Returns the resolved elections for the turn report.
func (s *Simulation) runElections(turn uint64) ([]*Election, error) {
	if s.Month != electionMonth {
		return nil, nil
	}

	candidates := s.PartyIDs()
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no eligible candidate parties")
	}

	var resolved []*Election

	if s.Year%2 == 0 {
		el := s.newElection(ElectionHouse, s.Congress.HouseSize)
		s.resolveHouse(el, candidates, turn)
		resolved = append(resolved, el)

		class := (s.Year % 6) / 2
		el = s.newElection(ElectionSenate, 0)
		s.resolveSenateClass(el, candidates, class, turn)
		resolved = append(resolved, el)
	}

	if s.Year%4 == 0 {
		el := s.newElection(ElectionPresidential, 1)
		s.resolvePresidential(el, candidates, turn)
		resolved = append(resolved, el)
	}

	if len(resolved) == 0 {
		return nil, nil
	}

	prevHouse := s.Congress.ControlOf(politics.ChamberHouse)
	prevSenate := s.Congress.ControlOf(politics.ChamberSenate)

	if err := s.recountSeats(); err != nil {
		return nil, err
	}
	s.applyControlShifts(prevHouse, prevSenate)

	// Campaign spend is spent: clear it once the cycle resolves.
	for _, st := range s.States {
		st.CampaignSpend = make(map[politics.PartyID]float64)
	}
	return resolved, nil
}

func (s *Simulation) newElection(kind ElectionKind, seats int) *Election {
	return &Election{
		ID:      fmt.Sprintf("%s-%d", kind, s.Year),
		Kind:    kind,
		Year:    s.Year,
		Month:   s.Month,
		Seats:   seats,
		Winners: make(map[politics.PartyID]int),
		Status:  ElectionPending,
	}
}

// resolveHouse contests every district in every state.
func (s *Simulation) resolveHouse(el *Election, candidates []politics.PartyID, turn uint64) {
	el.Status = ElectionInProgress
	for _, st := range s.States {
		signals := s.opinionSignals(st.Name, candidates)
		for i := range st.Districts {
			d := &st.Districts[i]
			stream := s.stream("election/"+d.ID, turn)
			shares := voter.Shares(candidates, voter.Inputs{
				Cohorts:     d.Cohorts,
				Swing:       d.Swing,
				TurnoutBias: d.TurnoutBias,
				Incumbent:   d.Incumbent,
				Opinion:     signals,
				Spend:       st.CampaignSpend,
				Noise:       stream,
			})
			winner := voter.Winner(shares, d.Incumbent)
			if winner != d.Incumbent {
				el.Flips++
			}
			d.Incumbent = winner
			el.Winners[winner]++
			s.noteDraws(stream)
		}
	}
	el.Status = ElectionResolved
	s.logEvent("election", "House elections resolved: %s", winnersString(el.Winners))
}

// resolveSenateClass contests every seat in the class that is up.
func (s *Simulation) resolveSenateClass(el *Election, candidates []politics.PartyID, class int, turn uint64) {
	el.Status = ElectionInProgress
	for _, st := range s.States {
		signals := s.opinionSignals(st.Name, candidates)
		for i := range st.SenateSeats {
			seat := &st.SenateSeats[i]
			if seat.Class != class {
				continue
			}
			stream := s.stream(fmt.Sprintf("election/senate/%s-%d", st.Abbrev, i), turn)
			shares := voter.Shares(candidates, voter.Inputs{
				Cohorts:   st.Cohorts,
				Incumbent: seat.Holder,
				Opinion:   signals,
				Spend:     st.CampaignSpend,
				Noise:     stream,
			})
			winner := voter.Winner(shares, seat.Holder)
			if winner != seat.Holder {
				el.Flips++
			}
			seat.Holder = winner
			el.Winners[winner]++
			el.Seats++
			s.noteDraws(stream)
		}
	}
	el.Status = ElectionResolved
	s.logEvent("election", "Senate class %d elections resolved: %s", class, winnersString(el.Winners))
}

// resolvePresidential runs a population-weighted national contest.
func (s *Simulation) resolvePresidential(el *Election, candidates []politics.PartyID, turn uint64) {
	el.Status = ElectionInProgress

	national := make(map[politics.PartyID]float64, len(candidates))
	var totalPop float64
	for _, st := range s.States {
		totalPop += float64(st.Population)
	}
	for _, st := range s.States {
		signals := s.opinionSignals(st.Name, candidates)
		stream := s.stream("election/president/"+st.Abbrev, turn)
		shares := voter.Shares(candidates, voter.Inputs{
			Cohorts:   st.Cohorts,
			Incumbent: s.President.Party,
			Opinion:   signals,
			Spend:     st.CampaignSpend,
			Noise:     stream,
		})
		weight := float64(st.Population) / totalPop
		for p, share := range shares {
			national[p] += weight * share
		}
		s.noteDraws(stream)
	}

	winner := voter.Winner(national, s.President.Party)
	if winner != s.President.Party {
		el.Flips++
		s.President.Party = winner
	}
	el.Winners[winner] = 1
	el.Status = ElectionResolved
	s.logEvent("election", "Presidential election resolved: %s", winner)
}

// opinionSignals converts tracked opinion and party standing into a
// per-party signal in roughly -1..1. The president's party owns the
// economy: good economic sentiment helps it and hurts the rest.
func (s *Simulation) opinionSignals(region string, candidates []politics.PartyID) map[politics.PartyID]float64 {
	econNational := s.Opinion.Get(opinion.RegionNational, politics.IssueEconomy)
	econLocal := s.Opinion.Get(region, politics.IssueEconomy)
	econ := econNational + 0.5*econLocal

	signals := make(map[politics.PartyID]float64, len(candidates))
	for _, id := range candidates {
		sig := 0.0
		if p, ok := s.Parties[id]; ok {
			sig += (p.NationalApproval - 50) / 100
		}
		if id == s.President.Party {
			sig += econ
		} else {
			sig -= econ
		}
		signals[id] = sig
	}
	return signals
}

// applyControlShifts nudges party approval when chamber control changes
// hands relative to the presidency.
func (s *Simulation) applyControlShifts(prevHouse, prevSenate politics.PartyID) {
	pres, ok := s.Parties[s.President.Party]
	if !ok {
		return
	}
	if house := s.Congress.ControlOf(politics.ChamberHouse); house != prevHouse {
		s.logEvent("election", "%s control shifts to %s", politics.ChamberName(politics.ChamberHouse), house)
		if house == s.President.Party {
			pres.AdjustApproval(1.0)
		} else {
			pres.AdjustApproval(-1.0)
		}
	}
	if senate := s.Congress.ControlOf(politics.ChamberSenate); senate != prevSenate {
		s.logEvent("election", "%s control shifts to %s", politics.ChamberName(politics.ChamberSenate), senate)
		if senate == s.President.Party {
			pres.AdjustApproval(0.5)
		} else {
			pres.AdjustApproval(-0.5)
		}
	}
}

func winnersString(w map[politics.PartyID]int) string {
	out := ""
	first := true
	for _, id := range sortedPartyKeys(w) {
		if !first {
			out += ", "
		}
		out += fmt.Sprintf("%s %d", id, w[id])
		first = false
	}
	return out
}

func sortedPartyKeys(m map[politics.PartyID]int) []politics.PartyID {
	keys := make([]politics.PartyID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}
