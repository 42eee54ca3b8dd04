// Package engine ties the political subsystems together and advances the
// simulation one month at a time.
package engine

import (
	"fmt"
	"sort"

	"github.com/talgya/statehouse/internal/economy"
	"github.com/talgya/statehouse/internal/entropy"
	"github.com/talgya/statehouse/internal/opinion"
	"github.com/talgya/statehouse/internal/politics"
	"github.com/talgya/statehouse/internal/scenario"
)

// Simulation is the aggregate root: it owns every entity exclusively and
// is only replaced wholesale by a load operation.
type Simulation struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Turn  uint64 `json:"turn"` // completed steps; monotonic
	Seed  int64  `json:"seed"`

	President politics.President      `json:"president"`
	Congress  *politics.Congress      `json:"congress"`
	Budget    politics.FederalBudget  `json:"budget"`
	Macro     economy.Macro           `json:"macro"`

	Parties map[politics.PartyID]*politics.Party `json:"parties"`
	States  []*politics.State                    `json:"states"`

	Opinion  *opinion.Tracker   `json:"-"`
	Policies []*politics.Policy `json:"policies"`
	Events   *EventManager      `json:"-"`

	// StreamCounters records cumulative draws per stream label, exported
	// in snapshots so replays can be verified draw-for-draw.
	StreamCounters map[string]uint64 `json:"stream_counters"`

	Log []LogEvent `json:"log"`

	decayRate float64
	advancing bool

	stateIndex map[string]*politics.State
}

// LogEvent is a notable occurrence recorded in the simulation log.
type LogEvent struct {
	Turn        uint64 `json:"turn"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	Category    string `json:"category"` // "policy", "election", "event", "intervention"
	Description string `json:"description"`
}

// maxLogEvents bounds the in-memory log.
const maxLogEvents = 1000

// New builds a simulation from a scenario configuration. Any invariant
// violation in the setup is a ConfigurationFault; no turn can run until
// the configuration is clean.
func New(cfg scenario.Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigurationFault{Reason: "invalid scenario", Err: err}
	}

	states := scenario.BuildStates(cfg)
	s := &Simulation{
		Year:           cfg.StartYear,
		Month:          cfg.StartMonth,
		Seed:           cfg.Seed,
		President:      politics.President{Name: cfg.PresidentName, Party: cfg.PresidentParty},
		Congress:       scenario.BuildCongress(cfg, states),
		Budget:         politics.FederalBudget{Revenue: 5200, Spending: 5450, TaxRate: 0.24},
		Macro:          economy.Macro{Growth: 0.02, Unemployment: 5.5, Inflation: 2.5},
		Parties:        scenario.BuildParties(cfg),
		States:         states,
		Opinion:        opinion.NewTracker(cfg.OpinionDecay),
		Events:         NewEventManager(cfg.Events),
		StreamCounters: make(map[string]uint64),
		decayRate:      cfg.OpinionDecay,
	}
	if _, ok := s.Parties[cfg.PresidentParty]; !ok {
		return nil, &ConfigurationFault{Reason: fmt.Sprintf("president party %q not in scenario", cfg.PresidentParty)}
	}
	s.reindex()
	return s, nil
}

// reindex rebuilds the by-name state lookup.
func (s *Simulation) reindex() {
	s.stateIndex = make(map[string]*politics.State, len(s.States))
	for _, st := range s.States {
		s.stateIndex[st.Name] = st
	}
}

// StateByName returns a state or nil.
func (s *Simulation) StateByName(name string) *politics.State {
	return s.stateIndex[name]
}

// PartyIDs returns all party identifiers in lexicographic order.
func (s *Simulation) PartyIDs() []politics.PartyID {
	ids := make([]politics.PartyID, 0, len(s.Parties))
	for id := range s.Parties {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// stream derives a deterministic random stream for the in-flight turn.
func (s *Simulation) stream(label string, turn uint64) *entropy.Stream {
	return entropy.NewStream(s.Seed, label, turn)
}

// noteDraws folds a consumed stream's draw count into the counters.
func (s *Simulation) noteDraws(st *entropy.Stream) {
	if st.Draws() > 0 {
		s.StreamCounters[st.Label()] += st.Draws()
	}
}

// logEvent appends to the bounded simulation log.
func (s *Simulation) logEvent(category, format string, args ...any) {
	s.Log = append(s.Log, LogEvent{
		Turn:        s.Turn,
		Year:        s.Year,
		Month:       s.Month,
		Category:    category,
		Description: fmt.Sprintf(format, args...),
	})
	if len(s.Log) > maxLogEvents {
		s.Log = s.Log[len(s.Log)-maxLogEvents:]
	}
}

// recountSeats retallies chamber seat counts from the seat holders and
// verifies the chamber-sum invariant.
func (s *Simulation) recountSeats() error {
	house := make(map[politics.PartyID]int)
	senate := make(map[politics.PartyID]int)
	houseTotal, senateTotal := 0, 0
	for _, st := range s.States {
		for _, d := range st.Districts {
			if d.Incumbent == "" {
				return fmt.Errorf("district %s has no seat holder", d.ID)
			}
			house[d.Incumbent]++
			houseTotal++
		}
		for i, seat := range st.SenateSeats {
			if seat.Holder == "" {
				return fmt.Errorf("senate seat %s/%d has no holder", st.Name, i)
			}
			senate[seat.Holder]++
			senateTotal++
		}
	}
	if houseTotal != s.Congress.HouseSize {
		return fmt.Errorf("house seats sum to %d, chamber size is %d", houseTotal, s.Congress.HouseSize)
	}
	if senateTotal != s.Congress.SenateSize {
		return fmt.Errorf("senate seats sum to %d, chamber size is %d", senateTotal, s.Congress.SenateSize)
	}
	s.Congress.HouseSeats = house
	s.Congress.SenateSeats = senate
	return nil
}
