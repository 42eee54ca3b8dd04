// Default USA scenario: 50 states with 2020 House apportionment, two
// major parties, and per-district electorates derived from state lean
// plus layered simplex noise.
package scenario

import (
	"fmt"
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/statehouse/internal/politics"
)

// stateSeed is one row of the built-in USA table. Population in millions,
// GDP in billions, lean -1..1 where positive favors Democrat.
type stateSeed struct {
	name      string
	abbrev    string
	popM      float64
	gdp       float64
	districts int
	lean      float64
}

// usaTable is the 2020 apportionment: districts sum to 435.
var usaTable = []stateSeed{
	{"Alabama", "AL", 5.03, 250, 7, -0.50},
	{"Alaska", "AK", 0.73, 55, 1, -0.35},
	{"Arizona", "AZ", 7.15, 420, 9, -0.05},
	{"Arkansas", "AR", 3.01, 140, 4, -0.55},
	{"California", "CA", 39.54, 3200, 52, 0.55},
	{"Colorado", "CO", 5.77, 420, 8, 0.25},
	{"Connecticut", "CT", 3.61, 290, 5, 0.40},
	{"Delaware", "DE", 0.99, 80, 1, 0.40},
	{"Florida", "FL", 21.54, 1100, 28, -0.15},
	{"Georgia", "GA", 10.71, 640, 14, -0.05},
	{"Hawaii", "HI", 1.46, 95, 2, 0.60},
	{"Idaho", "ID", 1.84, 90, 2, -0.65},
	{"Illinois", "IL", 12.81, 880, 17, 0.35},
	{"Indiana", "IN", 6.79, 400, 9, -0.40},
	{"Iowa", "IA", 3.19, 200, 4, -0.25},
	{"Kansas", "KS", 2.94, 180, 4, -0.45},
	{"Kentucky", "KY", 4.51, 220, 6, -0.55},
	{"Louisiana", "LA", 4.66, 250, 6, -0.45},
	{"Maine", "ME", 1.36, 75, 2, 0.20},
	{"Maryland", "MD", 6.18, 430, 8, 0.55},
	{"Massachusetts", "MA", 7.03, 600, 9, 0.60},
	{"Michigan", "MI", 10.08, 540, 13, 0.10},
	{"Minnesota", "MN", 5.71, 380, 8, 0.15},
	{"Mississippi", "MS", 2.96, 120, 4, -0.50},
	{"Missouri", "MO", 6.15, 330, 8, -0.35},
	{"Montana", "MT", 1.08, 55, 2, -0.45},
	{"Nebraska", "NE", 1.96, 130, 3, -0.50},
	{"Nevada", "NV", 3.10, 180, 4, 0.05},
	{"New Hampshire", "NH", 1.38, 90, 2, 0.10},
	{"New Jersey", "NJ", 9.29, 650, 12, 0.35},
	{"New Mexico", "NM", 2.12, 110, 3, 0.25},
	{"New York", "NY", 20.20, 1800, 26, 0.45},
	{"North Carolina", "NC", 10.44, 600, 14, -0.10},
	{"North Dakota", "ND", 0.78, 55, 1, -0.65},
	{"Ohio", "OH", 11.80, 690, 15, -0.20},
	{"Oklahoma", "OK", 3.96, 210, 5, -0.65},
	{"Oregon", "OR", 4.24, 250, 6, 0.30},
	{"Pennsylvania", "PA", 13.00, 800, 17, 0.05},
	{"Rhode Island", "RI", 1.10, 65, 2, 0.45},
	{"South Carolina", "SC", 5.12, 260, 7, -0.40},
	{"South Dakota", "SD", 0.89, 55, 1, -0.60},
	{"Tennessee", "TN", 6.91, 400, 9, -0.50},
	{"Texas", "TX", 29.15, 2000, 38, -0.20},
	{"Utah", "UT", 3.27, 200, 4, -0.55},
	{"Vermont", "VT", 0.64, 35, 1, 0.60},
	{"Virginia", "VA", 8.63, 560, 11, 0.20},
	{"Washington", "WA", 7.71, 640, 10, 0.35},
	{"West Virginia", "WV", 1.79, 80, 2, -0.70},
	{"Wisconsin", "WI", 5.89, 350, 8, 0.05},
	{"Wyoming", "WY", 0.58, 40, 1, -0.75},
}

// Default returns the built-in USA scenario configuration.
func Default() Config {
	states := make([]StateConfig, len(usaTable))
	for i, row := range usaTable {
		states[i] = StateConfig{
			Name:       row.name,
			Abbrev:     row.abbrev,
			Population: int64(row.popM * 1e6),
			GDP:        row.gdp,
			Districts:  row.districts,
			Lean:       row.lean,
		}
	}

	return Config{
		Seed:           1775,
		StartYear:      2025,
		StartMonth:     1,
		HouseSize:      435,
		SenateSize:     100,
		OpinionDecay:   0.05,
		PresidentName:  "Incumbent",
		PresidentParty: politics.Democrat,
		States:         states,
		Parties: []PartyConfig{
			{
				ID:       politics.Democrat,
				Approval: 52,
				Treasury: 120,
				Platform: map[politics.Issue]float64{
					politics.IssueEconomy:     0.2,
					politics.IssueHealthcare:  0.8,
					politics.IssueSecurity:    -0.2,
					politics.IssueEnvironment: 0.7,
					politics.IssueEducation:   0.6,
				},
			},
			{
				ID:       politics.Republican,
				Approval: 48,
				Treasury: 120,
				Platform: map[politics.Issue]float64{
					politics.IssueEconomy:     0.6,
					politics.IssueHealthcare:  -0.4,
					politics.IssueSecurity:    0.8,
					politics.IssueEnvironment: -0.5,
					politics.IssueEducation:   0.1,
				},
			},
		},
		Events: defaultEvents(),
	}
}

// BuildStates materializes the configured states: cohorts from lean,
// district swing and turnout-bias fields from layered simplex noise, and
// initial seat holders from the noisy local lean.
func BuildStates(cfg Config) []*politics.State {
	swingNoise := opensimplex.NewNormalized(cfg.Seed)
	biasNoise := opensimplex.NewNormalized(cfg.Seed + 1)

	states := make([]*politics.State, 0, len(cfg.States))
	for si, sc := range cfg.States {
		st := &politics.State{
			Name:                sc.Name,
			Abbrev:              sc.Abbrev,
			Population:          sc.Population,
			GDP:                 sc.GDP,
			Unemployment:        4.5,
			Inflation:           2.5,
			TaxRate:             0.06,
			GovernorParty:       leanParty(sc.Lean),
			Legislature: politics.LegislatureControl{
				House:       leanParty(sc.Lean),
				Senate:      leanParty(sc.Lean),
				HouseShare:  legislatureShare(sc.Lean),
				SenateShare: legislatureShare(sc.Lean),
			},
			ApprovalGovernor:    50,
			ApprovalLegislature: 40,
			Cohorts:             cohortsForLean(sc.Lean),
			CampaignSpend:       make(map[politics.PartyID]float64),
		}
		st.BudgetRevenue = st.TaxRate * st.GDP
		st.BudgetSpending = st.BudgetRevenue

		for d := 0; d < sc.Districts; d++ {
			x := float64(d) * 0.37
			y := float64(si) * 0.61
			swing := (swingNoise.Eval2(x, y) - 0.5) * 0.08
			bias := (biasNoise.Eval2(x, y) - 0.5) * 0.06
			st.Districts = append(st.Districts, politics.District{
				ID:          fmt.Sprintf("%s-%02d", sc.Abbrev, d+1),
				Cohorts:     cohortsForLean(sc.Lean + swing*2),
				Incumbent:   leanParty(sc.Lean + swing*4),
				Swing:       swing,
				TurnoutBias: bias,
			})
		}

		st.SenateSeats = senateSeatsForLean(sc.Lean, si)
		states = append(states, st)
	}
	return states
}

// BuildParties materializes the configured parties.
func BuildParties(cfg Config) map[politics.PartyID]*politics.Party {
	parties := make(map[politics.PartyID]*politics.Party, len(cfg.Parties))
	for _, pc := range cfg.Parties {
		platform := make(map[politics.Issue]float64, len(pc.Platform))
		for k, v := range pc.Platform {
			platform[k] = v
		}
		parties[pc.ID] = &politics.Party{
			ID:               pc.ID,
			Platform:         platform,
			Treasury:         pc.Treasury,
			NationalApproval: pc.Approval,
		}
	}
	return parties
}

// BuildCongress tallies the initial seat holders into chamber counts.
func BuildCongress(cfg Config, states []*politics.State) *politics.Congress {
	c := &politics.Congress{
		HouseSeats:  make(map[politics.PartyID]int),
		SenateSeats: make(map[politics.PartyID]int),
		HouseSize:   cfg.HouseSize,
		SenateSize:  cfg.SenateSize,
	}
	for _, st := range states {
		for _, d := range st.Districts {
			c.HouseSeats[d.Incumbent]++
		}
		for _, seat := range st.SenateSeats {
			c.SenateSeats[seat.Holder]++
		}
	}
	return c
}

// leanParty maps a lean value to the favored major party. Zero lean goes
// to the lexicographically-first party for determinism.
// legislatureShare maps partisan lean onto the controlling party's seat
// share: a swing state sits barely above half, a landslide state tops out
// shy of nine in ten. Only strongly leaning states clear the two-thirds
// a veto override needs.
func legislatureShare(lean float64) float64 {
	share := 0.52 + math.Abs(lean)*0.45
	if share > 0.88 {
		share = 0.88
	}
	return share
}

func leanParty(lean float64) politics.PartyID {
	if lean >= 0 {
		return politics.Democrat
	}
	return politics.Republican
}

// cohortsForLean builds a three-cohort electorate whose partisan balance
// reflects the lean.
func cohortsForLean(lean float64) []politics.VoterCohort {
	if lean > 1 {
		lean = 1
	}
	if lean < -1 {
		lean = -1
	}
	dem := 0.41 + 0.12*lean
	rep := 0.41 - 0.12*lean
	ind := 1.0 - dem - rep
	return []politics.VoterCohort{
		{Name: "Urban", Share: dem, Lean: politics.Democrat, Turnout: 0.62},
		{Name: "Suburban", Share: rep, Lean: politics.Republican, Turnout: 0.61},
		{Name: "Unaffiliated", Share: ind, Lean: politics.Independent, Turnout: 0.48},
	}
}

// senateSeatsForLean assigns the two seats to staggered classes and
// initial holders. Narrow states split their delegation.
func senateSeatsForLean(lean float64, stateIdx int) [2]politics.SenateSeat {
	var seats [2]politics.SenateSeat
	seats[0].Class = stateIdx % 3
	seats[1].Class = (stateIdx + 1) % 3
	switch {
	case lean > 0.1:
		seats[0].Holder = politics.Democrat
		seats[1].Holder = politics.Democrat
	case lean < -0.1:
		seats[0].Holder = politics.Republican
		seats[1].Holder = politics.Republican
	default:
		seats[0].Holder = politics.Democrat
		seats[1].Holder = politics.Republican
	}
	return seats
}
