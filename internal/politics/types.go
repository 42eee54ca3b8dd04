// Package politics holds the core domain types for the USA simulation:
// parties, states, districts, chambers, and seats.
package politics

// PartyID identifies a political party. Identifiers are plain strings so
// that scenario files can introduce third parties; tie-breaks elsewhere
// rely on their lexicographic order being stable.
type PartyID string

// The two major parties plus the unaffiliated placeholder.
const (
	Democrat    PartyID = "Democrat"
	Republican  PartyID = "Republican"
	Independent PartyID = "Independent"
)

// Chamber identifies a legislative chamber.
type Chamber uint8

const (
	ChamberHouse Chamber = iota
	ChamberSenate
)

// ChamberName returns a human-readable chamber name.
func ChamberName(c Chamber) string {
	switch c {
	case ChamberHouse:
		return "House"
	case ChamberSenate:
		return "Senate"
	default:
		return "Unknown"
	}
}

// Issue is a policy issue area tracked by public opinion.
type Issue string

// Issue areas. Fixed set; scenario event catalogs and party platforms
// reference these keys.
const (
	IssueEconomy     Issue = "economy"
	IssueHealthcare  Issue = "healthcare"
	IssueSecurity    Issue = "security"
	IssueEnvironment Issue = "environment"
	IssueEducation   Issue = "education"
)

// AllIssues lists every issue area in stable order.
func AllIssues() []Issue {
	return []Issue{IssueEconomy, IssueHealthcare, IssueSecurity, IssueEnvironment, IssueEducation}
}

// EffectVector is the structured set of deltas a policy or event applies
// atomically: macro-economic shifts plus opinion shifts by issue.
type EffectVector struct {
	Growth       float64           `json:"growth"`        // GDP growth, percentage points
	Unemployment float64           `json:"unemployment"`  // percentage points
	Inflation    float64           `json:"inflation"`     // percentage points
	BudgetCost   float64           `json:"budget_cost"`   // billions; negative = savings
	Opinion      map[Issue]float64 `json:"opinion"`       // approval delta by issue, -1..1 scale
	PartyBenefit PartyID           `json:"party_benefit"` // empty = none
}

// VoterCohort is a slice of an electorate with a partisan lean.
type VoterCohort struct {
	Name    string  `json:"name"`
	Share   float64 `json:"share"`   // 0..1 of electorate
	Lean    PartyID `json:"lean"`    // party this cohort breaks toward
	Turnout float64 `json:"turnout"` // 0..1
}

// District is one House seat within a state.
type District struct {
	ID          string        `json:"id"`
	Cohorts     []VoterCohort `json:"cohorts"`
	Incumbent   PartyID       `json:"incumbent"` // empty = vacant seat
	Swing       float64       `json:"swing"`     // -0.2..0.2, positive favors the lexicographically-first major party
	TurnoutBias float64       `json:"turnout_bias"`
}

// SenateSeat is one of a state's two Senate seats.
type SenateSeat struct {
	Holder PartyID `json:"holder"` // empty = vacant
	Class  int     `json:"class"`  // 0..2; contested when the cycle offset matches
}

// LegislatureControl records which party controls each chamber of a
// state legislature.
type LegislatureControl struct {
	House       PartyID `json:"house"`
	Senate      PartyID `json:"senate"`
	HouseShare  float64 `json:"house_share"`  // controlling party's seat share, 0.5..1
	SenateShare float64 `json:"senate_share"` // controlling party's seat share, 0.5..1
}

// Congress holds national seat counts per chamber per party.
type Congress struct {
	HouseSeats  map[PartyID]int `json:"house_seats"`
	SenateSeats map[PartyID]int `json:"senate_seats"`
	HouseSize   int             `json:"house_size"`
	SenateSize  int             `json:"senate_size"`
}

// ControlOf returns the plurality party for the given chamber.
// Ties resolve to the lexicographically smallest party identifier so
// that control never depends on map iteration order.
func (c *Congress) ControlOf(chamber Chamber) PartyID {
	seats := c.HouseSeats
	if chamber == ChamberSenate {
		seats = c.SenateSeats
	}
	var best PartyID
	bestCount := -1
	for p, n := range seats {
		if n > bestCount || (n == bestCount && p < best) {
			best = p
			bestCount = n
		}
	}
	return best
}

// SeatShare returns the given party's share of the chamber, 0..1.
func (c *Congress) SeatShare(chamber Chamber, p PartyID) float64 {
	switch chamber {
	case ChamberHouse:
		if c.HouseSize == 0 {
			return 0
		}
		return float64(c.HouseSeats[p]) / float64(c.HouseSize)
	case ChamberSenate:
		if c.SenateSize == 0 {
			return 0
		}
		return float64(c.SenateSeats[p]) / float64(c.SenateSize)
	}
	return 0
}

// President is the sitting executive.
type President struct {
	Name  string  `json:"name"`
	Party PartyID `json:"party"`
}

// FederalBudget tracks national public finance.
type FederalBudget struct {
	Revenue  float64 `json:"revenue"`  // billions
	Spending float64 `json:"spending"` // billions
	TaxRate  float64 `json:"tax_rate"` // effective rate over national GDP
}

// Deficit returns spending minus revenue.
func (b FederalBudget) Deficit() float64 {
	return b.Spending - b.Revenue
}
