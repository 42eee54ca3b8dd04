// Snapshot export and restore. A snapshot is a complete, self-contained
// document: loading it reconstructs a simulation that continues exactly
// as the original would have. Encoding is canonical JSON, so two
// identical simulations always marshal to identical bytes.
package engine

import (
	"encoding/json"
	"fmt"

	"github.com/talgya/statehouse/internal/economy"
	"github.com/talgya/statehouse/internal/opinion"
	"github.com/talgya/statehouse/internal/politics"
)

// SnapshotVersion is bumped whenever the document layout changes.
const SnapshotVersion = 1

// Document is the serialized form of a whole simulation.
type Document struct {
	Version int    `json:"version"`
	Year    int    `json:"year"`
	Month   int    `json:"month"`
	Turn    uint64 `json:"turn"`
	Seed    int64  `json:"seed"`

	President politics.President     `json:"president"`
	Congress  politics.Congress      `json:"congress"`
	Budget    politics.FederalBudget `json:"budget"`
	Macro     economy.Macro          `json:"macro"`

	Parties  map[politics.PartyID]politics.Party `json:"parties"`
	States   []politics.State                    `json:"states"`
	Policies []politics.Policy                   `json:"policies"`

	Opinion   map[string]map[politics.Issue]float64 `json:"opinion"`
	DecayRate float64                               `json:"decay_rate"`

	Events []EventState `json:"events"`

	StreamCounters map[string]uint64 `json:"stream_counters"`
	Log            []LogEvent        `json:"log"`
}

// Export deep-copies the simulation into a document. The document shares
// no memory with the live simulation.
func (s *Simulation) Export() *Document {
	doc := &Document{
		Version:        SnapshotVersion,
		Year:           s.Year,
		Month:          s.Month,
		Turn:           s.Turn,
		Seed:           s.Seed,
		President:      s.President,
		Congress:       copyCongress(s.Congress),
		Budget:         s.Budget,
		Macro:          s.Macro,
		Parties:        make(map[politics.PartyID]politics.Party, len(s.Parties)),
		States:         make([]politics.State, 0, len(s.States)),
		Policies:       make([]politics.Policy, 0, len(s.Policies)),
		Opinion:        s.Opinion.Export(),
		DecayRate:      s.decayRate,
		Events:         make([]EventState, 0, len(s.Events.Catalog)),
		StreamCounters: make(map[string]uint64, len(s.StreamCounters)),
		Log:            append([]LogEvent(nil), s.Log...),
	}
	for id, p := range s.Parties {
		doc.Parties[id] = copyParty(p)
	}
	for _, st := range s.States {
		doc.States = append(doc.States, copyState(st))
	}
	for _, p := range s.Policies {
		doc.Policies = append(doc.Policies, copyPolicy(p))
	}
	for _, e := range s.Events.Catalog {
		doc.Events = append(doc.Events, copyEventState(e))
	}
	for k, v := range s.StreamCounters {
		doc.StreamCounters[k] = v
	}
	return doc
}

// MarshalSnapshot encodes a document as canonical JSON. Map keys are
// sorted by the encoder, so equal documents produce equal bytes.
func MarshalSnapshot(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// UnmarshalSnapshot decodes snapshot bytes without validating them; use
// Load to turn the document into a running simulation.
func UnmarshalSnapshot(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Field: "document", Reason: err.Error()}
	}
	return &doc, nil
}

// Load validates a document and builds a fresh simulation from it. On
// any validation failure it returns a LoadError and no simulation; a
// caller's existing simulation is never touched.
func Load(doc *Document) (*Simulation, error) {
	if err := validateDocument(doc); err != nil {
		return nil, err
	}
	return buildFromDocument(doc)
}

// buildFromDocument materializes a simulation without validating the
// document first.
func buildFromDocument(doc *Document) (*Simulation, error) {
	s := &Simulation{
		Year:           doc.Year,
		Month:          doc.Month,
		Turn:           doc.Turn,
		Seed:           doc.Seed,
		President:      doc.President,
		Budget:         doc.Budget,
		Macro:          doc.Macro,
		Parties:        make(map[politics.PartyID]*politics.Party, len(doc.Parties)),
		States:         make([]*politics.State, 0, len(doc.States)),
		Policies:       make([]*politics.Policy, 0, len(doc.Policies)),
		Opinion:        opinion.NewTracker(doc.DecayRate),
		Events:         &EventManager{},
		StreamCounters: make(map[string]uint64, len(doc.StreamCounters)),
		Log:            append([]LogEvent(nil), doc.Log...),
		decayRate:      doc.DecayRate,
	}
	cg := copyCongress(&doc.Congress)
	s.Congress = &cg
	for id, p := range doc.Parties {
		cp := copyParty(&p)
		s.Parties[id] = &cp
	}
	for i := range doc.States {
		st := copyState(&doc.States[i])
		s.States = append(s.States, &st)
	}
	for i := range doc.Policies {
		p := copyPolicy(&doc.Policies[i])
		s.Policies = append(s.Policies, &p)
	}
	for i := range doc.Events {
		e := copyEventState(&doc.Events[i])
		s.Events.Catalog = append(s.Events.Catalog, &e)
	}
	for k, v := range doc.StreamCounters {
		s.StreamCounters[k] = v
	}
	if err := s.Opinion.Import(doc.Opinion); err != nil {
		return nil, &LoadError{Field: "opinion", Reason: err.Error()}
	}
	s.reindex()
	return s, nil
}

// restore replaces the aggregate's contents with a previously exported
// document. Used to roll a failed step back; the document came from this
// simulation, so it is rebuilt without revalidation.
func (s *Simulation) restore(doc *Document) error {
	fresh, err := buildFromDocument(doc)
	if err != nil {
		return err
	}
	*s = *fresh
	return nil
}

func validateDocument(doc *Document) error {
	if doc == nil {
		return &LoadError{Field: "document", Reason: "nil document"}
	}
	if doc.Version != SnapshotVersion {
		return &LoadError{Field: "version", Reason: fmt.Sprintf("got %d, want %d", doc.Version, SnapshotVersion)}
	}
	if doc.Month < 1 || doc.Month > 12 {
		return &LoadError{Field: "month", Reason: fmt.Sprintf("month %d outside 1..12", doc.Month)}
	}
	if doc.StreamCounters == nil {
		return &LoadError{Field: "stream_counters", Reason: "missing stream counters"}
	}
	if len(doc.Parties) < 2 {
		return &LoadError{Field: "parties", Reason: "fewer than two parties"}
	}
	if _, ok := doc.Parties[doc.President.Party]; !ok {
		return &LoadError{Field: "president", Reason: fmt.Sprintf("president party %q not present", doc.President.Party)}
	}

	houseTotal, senateTotal := 0, 0
	houseTally := make(map[politics.PartyID]int)
	senateTally := make(map[politics.PartyID]int)
	for i := range doc.States {
		st := &doc.States[i]
		for _, d := range st.Districts {
			if d.Incumbent == "" {
				return &LoadError{Field: "states", Reason: fmt.Sprintf("district %s has no seat holder", d.ID)}
			}
			if _, ok := doc.Parties[d.Incumbent]; !ok {
				return &LoadError{Field: "states", Reason: fmt.Sprintf("district %s held by unknown party %q", d.ID, d.Incumbent)}
			}
			houseTally[d.Incumbent]++
			houseTotal++
		}
		for j, seat := range st.SenateSeats {
			if seat.Holder == "" {
				return &LoadError{Field: "states", Reason: fmt.Sprintf("senate seat %s/%d has no holder", st.Name, j)}
			}
			if seat.Class < 0 || seat.Class > 2 {
				return &LoadError{Field: "states", Reason: fmt.Sprintf("senate seat %s/%d has class %d", st.Name, j, seat.Class)}
			}
			senateTally[seat.Holder]++
			senateTotal++
		}
	}
	if houseTotal != doc.Congress.HouseSize {
		return &LoadError{Field: "congress", Reason: fmt.Sprintf("house seats sum to %d, chamber size is %d", houseTotal, doc.Congress.HouseSize)}
	}
	if senateTotal != doc.Congress.SenateSize {
		return &LoadError{Field: "congress", Reason: fmt.Sprintf("senate seats sum to %d, chamber size is %d", senateTotal, doc.Congress.SenateSize)}
	}
	if err := checkSeatMap("congress.house_seats", doc.Congress.HouseSeats, houseTally); err != nil {
		return err
	}
	if err := checkSeatMap("congress.senate_seats", doc.Congress.SenateSeats, senateTally); err != nil {
		return err
	}

	for i := range doc.Policies {
		switch doc.Policies[i].Status {
		case politics.PolicyProposed, politics.PolicyVoting, politics.PolicyEnacted, politics.PolicyRejected:
		default:
			return &LoadError{Field: "policies", Reason: fmt.Sprintf("policy %s has unknown status %q", doc.Policies[i].ID, doc.Policies[i].Status)}
		}
	}

	for region, m := range doc.Opinion {
		for issue, v := range m {
			if v < opinion.Min || v > opinion.Max {
				return &LoadError{Field: "opinion", Reason: fmt.Sprintf("%s/%s = %v outside bounds", region, issue, v)}
			}
		}
	}
	return nil
}

// checkSeatMap verifies an aggregate chamber tally against the per-seat
// holders; the maps must agree party by party.
func checkSeatMap(field string, got map[politics.PartyID]int, want map[politics.PartyID]int) error {
	for p, n := range got {
		if n != want[p] {
			return &LoadError{Field: field, Reason: fmt.Sprintf("%s holds %d seats, seat holders say %d", p, n, want[p])}
		}
	}
	for p, n := range want {
		if got[p] != n {
			return &LoadError{Field: field, Reason: fmt.Sprintf("%s holds %d seats, seat holders say %d", p, got[p], n)}
		}
	}
	return nil
}

func copyCongress(c *politics.Congress) politics.Congress {
	out := politics.Congress{
		HouseSize:   c.HouseSize,
		SenateSize:  c.SenateSize,
		HouseSeats:  make(map[politics.PartyID]int, len(c.HouseSeats)),
		SenateSeats: make(map[politics.PartyID]int, len(c.SenateSeats)),
	}
	for p, n := range c.HouseSeats {
		out.HouseSeats[p] = n
	}
	for p, n := range c.SenateSeats {
		out.SenateSeats[p] = n
	}
	return out
}

func copyParty(p *politics.Party) politics.Party {
	out := *p
	out.Platform = make(map[politics.Issue]float64, len(p.Platform))
	for i, v := range p.Platform {
		out.Platform[i] = v
	}
	return out
}

func copyState(st *politics.State) politics.State {
	out := *st
	out.Cohorts = append([]politics.VoterCohort(nil), st.Cohorts...)
	out.Districts = make([]politics.District, len(st.Districts))
	for i, d := range st.Districts {
		d.Cohorts = append([]politics.VoterCohort(nil), d.Cohorts...)
		out.Districts[i] = d
	}
	out.EnactedPolicies = append([]string(nil), st.EnactedPolicies...)
	out.CampaignSpend = make(map[politics.PartyID]float64, len(st.CampaignSpend))
	for p, v := range st.CampaignSpend {
		out.CampaignSpend[p] = v
	}
	return out
}

func copyPolicy(p *politics.Policy) politics.Policy {
	out := *p
	out.Effect = copyEffect(p.Effect)
	return out
}

func copyEffect(ev politics.EffectVector) politics.EffectVector {
	out := ev
	if ev.Opinion != nil {
		out.Opinion = make(map[politics.Issue]float64, len(ev.Opinion))
		for i, v := range ev.Opinion {
			out.Opinion[i] = v
		}
	}
	return out
}

func copyEventState(e *EventState) EventState {
	out := *e
	out.Config.Effect = copyEffect(e.Config.Effect)
	return out
}
