package engine

import (
	"fmt"

	"github.com/talgya/statehouse/internal/economy"
	"github.com/talgya/statehouse/internal/opinion"
	"github.com/talgya/statehouse/internal/politics"
)

// approvalReversion is the monthly pull of party approval toward 50.
const approvalReversion = 0.02

// TurnReport summarizes everything that happened across one Advance call.
type TurnReport struct {
	StartTurn uint64 `json:"start_turn"`
	EndTurn   uint64 `json:"end_turn"`
	Steps     int    `json:"steps"`

	Elections []*Election        `json:"elections,omitempty"`
	Enacted   []*politics.Policy `json:"enacted,omitempty"`
	Rejected  []*politics.Policy `json:"rejected,omitempty"`
	Events    []EventRecord      `json:"events,omitempty"`
	Faults    []string           `json:"faults,omitempty"`
}

// Advance runs the simulation forward by the given number of months.
// Each month is atomic: if a step faults, the simulation is rolled back
// to the state before that step, the report covers the completed steps,
// and the error describes the fault. Advance(0) is a no-op that mutates
// nothing.
func (s *Simulation) Advance(months int) (*TurnReport, error) {
	if months < 0 {
		return nil, fmt.Errorf("cannot advance %d months", months)
	}
	if s.advancing {
		return nil, &SimulationFault{
			Turn: s.Turn, Year: s.Year, Month: s.Month,
			Phase: "advance", Reason: "advance already in progress",
		}
	}
	report := &TurnReport{StartTurn: s.Turn, EndTurn: s.Turn}
	if months == 0 {
		return report, nil
	}

	s.advancing = true
	defer func() { s.advancing = false }()

	for i := 0; i < months; i++ {
		backup := s.Export()
		// Each step stages its own report entries; a faulted step is
		// rolled back and contributes nothing but the fault itself.
		staged := &TurnReport{}
		if err := s.step(staged); err != nil {
			report.Faults = append(report.Faults, err.Error())
			if rerr := s.restore(backup); rerr != nil {
				return report, fmt.Errorf("step failed (%w) and rollback failed: %v", err, rerr)
			}
			report.EndTurn = s.Turn
			return report, err
		}
		report.Elections = append(report.Elections, staged.Elections...)
		report.Enacted = append(report.Enacted, staged.Enacted...)
		report.Rejected = append(report.Rejected, staged.Rejected...)
		report.Events = append(report.Events, staged.Events...)
		report.Steps++
		report.EndTurn = s.Turn
	}
	return report, nil
}

// step runs one simulated month through every phase in fixed order:
// economy, events, actor decisions, policy pipeline, opinion decay,
// elections, then the clock.
func (s *Simulation) step(report *TurnReport) error {
	turn := s.Turn + 1

	// Economy drifts first so every later phase sees this month's numbers.
	macroStream := s.stream("macro", turn)
	s.Macro.Tick(macroStream)
	s.noteDraws(macroStream)
	for _, st := range s.States {
		stream := s.stream("econ/"+st.Name, turn)
		economy.TickState(st, s.Macro, stream)
		s.noteDraws(stream)
	}
	s.Budget.Revenue = s.Budget.TaxRate * nationalGDP(s.States)
	s.Budget.Spending += s.Macro.Inflation * 0.8

	// The month's conditions color the national economic mood.
	s.Opinion.Apply(opinion.RegionNational, politics.IssueEconomy, 0.02*s.Macro.Signal())

	report.Events = append(report.Events, s.runEvents(turn)...)

	// Every actor decides against the same frozen view of this moment.
	intents := s.collectIntents(turn)

	enacted, rejected := s.runPolicyPhase(turn, intents)
	report.Enacted = append(report.Enacted, enacted...)
	report.Rejected = append(report.Rejected, rejected...)

	// Opinion and approval relax toward neutral exactly once per month.
	for _, id := range s.PartyIDs() {
		p := s.Parties[id]
		p.AdjustApproval(approvalReversion * (50 - p.NationalApproval))
	}
	s.Opinion.DecayStep()

	elections, err := s.runElections(turn)
	if err != nil {
		return &SimulationFault{
			Turn: turn, Year: s.Year, Month: s.Month,
			Phase: "elections", Reason: err.Error(),
		}
	}
	report.Elections = append(report.Elections, elections...)

	// Clock moves last; a faulted step never reaches this point.
	s.Turn = turn
	s.Month++
	if s.Month > 12 {
		s.Month = 1
		s.Year++
	}
	return nil
}

func nationalGDP(states []*politics.State) float64 {
	var total float64
	for _, st := range states {
		total += st.GDP
	}
	return total
}
