package engine

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/statehouse/internal/opinion"
	"github.com/talgya/statehouse/internal/politics"
	"github.com/talgya/statehouse/internal/scenario"
)

func newTestSim(t *testing.T) *Simulation {
	t.Helper()
	s, err := New(scenario.Default())
	require.NoError(t, err)
	return s
}

func TestNewRejectsInvalidScenario(t *testing.T) {
	cfg := scenario.Default()
	cfg.Parties = cfg.Parties[:1]

	_, err := New(cfg)
	require.Error(t, err)
	var fault *ConfigurationFault
	require.ErrorAs(t, err, &fault)
}

func TestNewRejectsUnknownPresidentParty(t *testing.T) {
	cfg := scenario.Default()
	cfg.PresidentParty = "Whig"

	_, err := New(cfg)
	var fault *ConfigurationFault
	require.ErrorAs(t, err, &fault)
}

func TestAdvanceZeroIsNoOp(t *testing.T) {
	s := newTestSim(t)
	before, err := MarshalSnapshot(s.Export())
	require.NoError(t, err)

	report, err := s.Advance(0)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Steps)

	after, err := MarshalSnapshot(s.Export())
	require.NoError(t, err)
	assert.True(t, bytes.Equal(before, after), "advance(0) must not mutate state")
}

func TestAdvanceRejectsNegative(t *testing.T) {
	s := newTestSim(t)
	_, err := s.Advance(-1)
	require.Error(t, err)
}

func TestReplayDeterminism(t *testing.T) {
	a := newTestSim(t)
	b := newTestSim(t)

	_, err := a.Advance(12)
	require.NoError(t, err)
	_, err = b.Advance(12)
	require.NoError(t, err)

	da, err := MarshalSnapshot(a.Export())
	require.NoError(t, err)
	db, err := MarshalSnapshot(b.Export())
	require.NoError(t, err)
	if !bytes.Equal(da, db) {
		t.Fatalf("same seed diverged:\n%s", cmp.Diff(a.Export(), b.Export()))
	}
}

func TestAdvanceIncrementsClock(t *testing.T) {
	s := newTestSim(t)
	_, err := s.Advance(13)
	require.NoError(t, err)

	assert.Equal(t, uint64(13), s.Turn)
	assert.Equal(t, 2026, s.Year)
	assert.Equal(t, 2, s.Month)
}

func TestStreamCountersRecorded(t *testing.T) {
	s := newTestSim(t)
	_, err := s.Advance(1)
	require.NoError(t, err)

	assert.NotEmpty(t, s.StreamCounters)
	assert.Contains(t, s.StreamCounters, "macro")
}

func TestSeatInvariantAfterElectionCycle(t *testing.T) {
	s := newTestSim(t)
	report, err := s.Advance(24)
	require.NoError(t, err)

	houseTotal := 0
	for _, n := range s.Congress.HouseSeats {
		houseTotal += n
	}
	assert.Equal(t, s.Congress.HouseSize, houseTotal)

	senateTotal := 0
	for _, n := range s.Congress.SenateSeats {
		senateTotal += n
	}
	assert.Equal(t, s.Congress.SenateSize, senateTotal)

	var house, senate, pres int
	for _, el := range report.Elections {
		switch el.Kind {
		case ElectionHouse:
			house++
			won := 0
			for _, n := range el.Winners {
				won += n
			}
			assert.Equal(t, s.Congress.HouseSize, won)
			assert.Equal(t, ElectionResolved, el.Status)
		case ElectionSenate:
			senate++
			assert.LessOrEqual(t, el.Seats, 34)
		case ElectionPresidential:
			pres++
		}
	}
	// Jan 2025 + 24 months passes exactly one November of an even year.
	assert.Equal(t, 1, house)
	assert.Equal(t, 1, senate)
	assert.Equal(t, 0, pres, "2026 is not a presidential year")
}

func TestCampaignSpendClearedAfterElection(t *testing.T) {
	s := newTestSim(t)
	_, err := s.Advance(24)
	require.NoError(t, err)

	// The cycle resolved in Nov 2026; only the two months since could
	// have accumulated fresh spend, so at minimum no state carries
	// spend booked before the election.
	for _, st := range s.States {
		for p, v := range st.CampaignSpend {
			assert.GreaterOrEqual(t, v, 0.0, "state %s party %s", st.Name, p)
		}
	}
}

func TestPolicyProposalEntersVotingNextTurn(t *testing.T) {
	s := newTestSim(t)
	pol := &politics.Policy{
		Title:     "Test Act",
		Party:     politics.Democrat,
		Scope:     politics.ScopeFederal,
		Issue:     politics.IssueEconomy,
		Direction: 1,
	}
	require.NoError(t, s.ProposePolicy("party/Democrat", pol))

	var stored *politics.Policy
	for _, p := range s.Policies {
		if p.Title == "Test Act" {
			stored = p
		}
	}
	require.NotNil(t, stored)
	assert.Equal(t, politics.PolicyProposed, stored.Status)

	enacted, rejected := s.runPolicyPhase(s.Turn+1, nil)
	assert.Empty(t, enacted)
	assert.Empty(t, rejected)
	assert.Equal(t, politics.PolicyVoting, stored.Status)
}

func TestPolicyMajorityEnactsAndAppliesEffectOnce(t *testing.T) {
	s := newTestSim(t)
	s.Congress.HouseSeats = map[politics.PartyID]int{politics.Democrat: 300, politics.Republican: 135}
	s.Congress.SenateSeats = map[politics.PartyID]int{politics.Democrat: 70, politics.Republican: 30}

	pol := &politics.Policy{
		Title:     "Relief Act",
		Party:     politics.Democrat,
		Scope:     politics.ScopeFederal,
		Issue:     politics.IssueEconomy,
		Direction: 1,
		Effect: politics.EffectVector{
			Opinion: map[politics.Issue]float64{politics.IssueEconomy: 0.3},
		},
	}
	require.NoError(t, s.ProposePolicy("party/Democrat", pol))

	s.runPolicyPhase(s.Turn+1, nil) // enters voting
	enacted, rejected := s.runPolicyPhase(s.Turn+2, nil)
	require.Len(t, enacted, 1)
	assert.Empty(t, rejected)
	assert.Equal(t, politics.PolicyEnacted, enacted[0].Status)
	assert.InDelta(t, 0.3, s.Opinion.Get(opinion.RegionNational, politics.IssueEconomy), 1e-9)

	// A terminal policy never resolves again.
	enacted, rejected = s.runPolicyPhase(s.Turn+3, nil)
	assert.Empty(t, enacted)
	assert.Empty(t, rejected)
	assert.InDelta(t, 0.3, s.Opinion.Get(opinion.RegionNational, politics.IssueEconomy), 1e-9)
}

func TestPolicyExactTieRejects(t *testing.T) {
	s := newTestSim(t)
	// House passes comfortably; the Senate splits exactly and the tie
	// preserves the status quo.
	s.Congress.HouseSeats = map[politics.PartyID]int{politics.Democrat: 300, politics.Republican: 135}
	s.Congress.SenateSeats = map[politics.PartyID]int{politics.Democrat: 50, politics.Republican: 50}

	pol := &politics.Policy{
		Title:     "Split Act",
		Party:     politics.Democrat,
		Scope:     politics.ScopeFederal,
		Issue:     politics.IssueEconomy,
		Direction: 1,
	}
	// Make sure the Republicans vote no regardless of platform.
	s.Parties[politics.Republican].Platform[politics.IssueEconomy] = -0.8

	require.NoError(t, s.ProposePolicy("party/Democrat", pol))
	s.runPolicyPhase(s.Turn+1, nil)
	enacted, rejected := s.runPolicyPhase(s.Turn+2, nil)
	assert.Empty(t, enacted)
	require.Len(t, rejected, 1)
	assert.Equal(t, politics.PolicyRejected, rejected[0].Status)
}

func TestPolicyVetoRequiresSupermajority(t *testing.T) {
	s := newTestSim(t)
	// Democratic president opposes; Republicans sponsor with 60% of both
	// chambers, short of the two-thirds override.
	s.Parties[politics.Democrat].Platform[politics.IssueEconomy] = 0.6
	s.Parties[politics.Republican].Platform[politics.IssueEconomy] = -0.6
	s.Congress.HouseSeats = map[politics.PartyID]int{politics.Democrat: 174, politics.Republican: 261}
	s.Congress.SenateSeats = map[politics.PartyID]int{politics.Democrat: 40, politics.Republican: 60}

	pol := &politics.Policy{
		Title:     "Rollback Act",
		Party:     politics.Republican,
		Scope:     politics.ScopeFederal,
		Issue:     politics.IssueEconomy,
		Direction: -1,
	}
	require.NoError(t, s.ProposePolicy("party/Republican", pol))
	s.runPolicyPhase(s.Turn+1, nil)
	_, rejected := s.runPolicyPhase(s.Turn+2, nil)
	require.Len(t, rejected, 1)

	// With a veto-proof margin the same policy passes.
	s.Congress.HouseSeats = map[politics.PartyID]int{politics.Democrat: 90, politics.Republican: 345}
	s.Congress.SenateSeats = map[politics.PartyID]int{politics.Democrat: 20, politics.Republican: 80}
	pol2 := &politics.Policy{
		Title:     "Rollback Act II",
		Party:     politics.Republican,
		Scope:     politics.ScopeFederal,
		Issue:     politics.IssueEconomy,
		Direction: -1,
	}
	require.NoError(t, s.ProposePolicy("party/Republican", pol2))
	s.runPolicyPhase(s.Turn+3, nil)
	enacted, _ := s.runPolicyPhase(s.Turn+4, nil)
	require.Len(t, enacted, 1)
	assert.Equal(t, "Rollback Act II", enacted[0].Title)
}

func TestGovernorVetoBlocksNarrowMajority(t *testing.T) {
	s := newTestSim(t)
	st := s.StateByName("California")
	require.NotNil(t, st)

	// Hostile governor, Democratic chambers at 60%: a simple majority,
	// short of the override.
	st.GovernorParty = politics.Republican
	st.Legislature = politics.LegislatureControl{
		House: politics.Democrat, Senate: politics.Democrat,
		HouseShare: 0.6, SenateShare: 0.6,
	}

	pol := &politics.Policy{
		Title: "Coverage Act", Party: politics.Democrat,
		Scope: politics.ScopeState, StateName: "California",
		Issue: politics.IssueHealthcare, Direction: 1,
	}
	require.NoError(t, s.ProposePolicy("party/Democrat", pol))
	s.runPolicyPhase(s.Turn+1, nil)
	_, rejected := s.runPolicyPhase(s.Turn+2, nil)
	require.Len(t, rejected, 1)

	// Lopsided chambers clear the override and the veto falls.
	st.Legislature.HouseShare = 0.8
	st.Legislature.SenateShare = 0.8
	pol2 := &politics.Policy{
		Title: "Coverage Act II", Party: politics.Democrat,
		Scope: politics.ScopeState, StateName: "California",
		Issue: politics.IssueHealthcare, Direction: 1,
	}
	require.NoError(t, s.ProposePolicy("party/Democrat", pol2))
	s.runPolicyPhase(s.Turn+3, nil)
	enacted, _ := s.runPolicyPhase(s.Turn+4, nil)
	require.Len(t, enacted, 1)
	assert.Equal(t, "Coverage Act II", enacted[0].Title)
}

func TestDuplicateProposalRejected(t *testing.T) {
	s := newTestSim(t)
	pol := &politics.Policy{
		Title: "Same Act", Party: politics.Democrat,
		Scope: politics.ScopeFederal, Issue: politics.IssueEconomy, Direction: 1,
	}
	require.NoError(t, s.ProposePolicy("party/Democrat", pol))

	err := s.ProposePolicy("party/Democrat", pol)
	var inv *InvalidIntervention
	require.ErrorAs(t, err, &inv)
}

func TestProposePolicyValidation(t *testing.T) {
	s := newTestSim(t)

	err := s.ProposePolicy("party/Democrat", nil)
	var inv *InvalidIntervention
	require.ErrorAs(t, err, &inv)

	err = s.ProposePolicy("party/Whig", &politics.Policy{Title: "X", Party: "Whig"})
	require.ErrorAs(t, err, &inv)

	err = s.ProposePolicy("state/Atlantis", &politics.Policy{
		Title: "X", Party: politics.Democrat,
		Scope: politics.ScopeState, StateName: "Atlantis",
	})
	require.ErrorAs(t, err, &inv)
}

func TestInterventionRejectedMidTurn(t *testing.T) {
	s := newTestSim(t)
	s.advancing = true

	var inv *InvalidIntervention
	err := s.ProposePolicy("party/Democrat", &politics.Policy{Title: "X", Party: politics.Democrat})
	require.ErrorAs(t, err, &inv)

	err = s.TriggerEvent("hurricane")
	require.ErrorAs(t, err, &inv)

	err = s.TriggerEffect(politics.EffectVector{}, "shock")
	require.ErrorAs(t, err, &inv)
}

func TestTriggerEventAppliesAndCoolsDown(t *testing.T) {
	s := newTestSim(t)
	require.NoError(t, s.TriggerEvent("hurricane"))

	e := s.Events.find("hurricane")
	require.NotNil(t, e)
	assert.Equal(t, e.Config.Cooldown, e.CooldownLeft)

	err := s.TriggerEvent("no_such_event")
	var inv *InvalidIntervention
	require.ErrorAs(t, err, &inv)
}

func TestTriggerEffectMovesOpinion(t *testing.T) {
	s := newTestSim(t)
	err := s.TriggerEffect(politics.EffectVector{
		Opinion: map[politics.Issue]float64{politics.IssueHealthcare: -0.4},
	}, "coverage crisis")
	require.NoError(t, err)
	assert.InDelta(t, -0.4, s.Opinion.Get(opinion.RegionNational, politics.IssueHealthcare), 1e-9)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestSim(t)
	_, err := s.Advance(5)
	require.NoError(t, err)

	data, err := MarshalSnapshot(s.Export())
	require.NoError(t, err)

	doc, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	restored, err := Load(doc)
	require.NoError(t, err)

	again, err := MarshalSnapshot(restored.Export())
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, again), "round trip must be lossless")
}

func TestLoadedSimulationContinuesIdentically(t *testing.T) {
	a := newTestSim(t)
	_, err := a.Advance(6)
	require.NoError(t, err)

	b, err := Load(a.Export())
	require.NoError(t, err)

	_, err = a.Advance(6)
	require.NoError(t, err)
	_, err = b.Advance(6)
	require.NoError(t, err)

	da, _ := MarshalSnapshot(a.Export())
	db, _ := MarshalSnapshot(b.Export())
	assert.True(t, bytes.Equal(da, db), "loaded replica must continue identically")
}

func TestLoadRejectsMissingStreamCounters(t *testing.T) {
	s := newTestSim(t)
	_, err := s.Advance(2)
	require.NoError(t, err)
	before, _ := MarshalSnapshot(s.Export())

	doc := s.Export()
	doc.StreamCounters = nil
	_, err = Load(doc)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "stream_counters", le.Field)

	after, _ := MarshalSnapshot(s.Export())
	assert.True(t, bytes.Equal(before, after), "failed load must not mutate the live simulation")
}

func TestLoadRejectsCorruptDocuments(t *testing.T) {
	s := newTestSim(t)
	var le *LoadError

	doc := s.Export()
	doc.Version = 99
	_, err := Load(doc)
	require.ErrorAs(t, err, &le)

	doc = s.Export()
	doc.Month = 13
	_, err = Load(doc)
	require.ErrorAs(t, err, &le)

	doc = s.Export()
	doc.States[0].Districts[0].Incumbent = ""
	_, err = Load(doc)
	require.ErrorAs(t, err, &le)

	doc = s.Export()
	doc.Opinion = map[string]map[politics.Issue]float64{
		"national": {politics.IssueEconomy: 3.5},
	}
	_, err = Load(doc)
	require.ErrorAs(t, err, &le)

	doc = s.Export()
	doc.Policies = append(doc.Policies, politics.Policy{ID: "p", Status: "limbo"})
	_, err = Load(doc)
	require.ErrorAs(t, err, &le)

	// Aggregate chamber tallies must agree with the seat holders.
	doc = s.Export()
	doc.Congress.HouseSeats = map[politics.PartyID]int{politics.Democrat: 500}
	_, err = Load(doc)
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "congress.house_seats", le.Field)

	doc = s.Export()
	doc.Congress.SenateSeats[politics.Republican] += 2
	_, err = Load(doc)
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "congress.senate_seats", le.Field)

	_, err = UnmarshalSnapshot([]byte("{not json"))
	require.ErrorAs(t, err, &le)
}

func TestExportSharesNoMemory(t *testing.T) {
	s := newTestSim(t)
	doc := s.Export()

	doc.States[0].Districts[0].Incumbent = "Vandal"
	doc.Parties[politics.Democrat] = politics.Party{ID: politics.Democrat}

	assert.NotEqual(t, politics.PartyID("Vandal"), s.States[0].Districts[0].Incumbent)
	assert.NotZero(t, s.Parties[politics.Democrat].NationalApproval)
}

func TestStepFaultRollsBack(t *testing.T) {
	s := newTestSim(t)
	// Land on October 2026, then park a policy in Voting before the
	// November step so the fault has mid-step work to undo.
	_, err := s.Advance(21)
	require.NoError(t, err)
	pol := &politics.Policy{
		Title: "Doomed Act", Party: politics.Democrat,
		Scope: politics.ScopeFederal, Issue: politics.IssueEconomy, Direction: 1,
	}
	require.NoError(t, s.ProposePolicy("party/Democrat", pol))
	_, err = s.Advance(1)
	require.NoError(t, err)
	require.Equal(t, 11, s.Month)
	require.Equal(t, 2026, s.Year)

	voting := s.Policies[len(s.Policies)-1]
	require.Equal(t, politics.PolicyVoting, voting.Status)

	// Break the chamber-sum invariant so the recount faults mid-step.
	s.Congress.HouseSize = 436

	report, err := s.Advance(1)
	var fault *SimulationFault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "elections", fault.Phase)

	// Clock did not move: the failed step left no partial effects.
	assert.Equal(t, uint64(22), s.Turn)
	assert.Equal(t, 11, s.Month)
	assert.Equal(t, 2026, s.Year)

	// The rolled-back step also left nothing in the report: the policy
	// vote and any events the dead step resolved were undone with it.
	restored := s.Policies[len(s.Policies)-1]
	require.Equal(t, voting.ID, restored.ID)
	assert.Equal(t, politics.PolicyVoting, restored.Status)
	assert.Empty(t, report.Enacted)
	assert.Empty(t, report.Rejected)
	assert.Empty(t, report.Events)
	assert.Empty(t, report.Elections)
	require.Len(t, report.Faults, 1)
}

func TestPresidentialElectionYear(t *testing.T) {
	cfg := scenario.Default()
	cfg.StartYear = 2028
	cfg.StartMonth = 10
	s, err := New(cfg)
	require.NoError(t, err)

	report, err := s.Advance(3)
	require.NoError(t, err)

	var pres *Election
	for _, el := range report.Elections {
		if el.Kind == ElectionPresidential {
			pres = el
		}
	}
	require.NotNil(t, pres, "2028 must hold a presidential election")
	assert.Equal(t, 1, pres.Seats)
	assert.Len(t, pres.Winners, 1)
	winner := s.President.Party
	assert.Equal(t, 1, pres.Winners[winner], "the sitting president's party must match the winner")
}
