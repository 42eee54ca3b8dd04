package politics

// State is one US state: demographics, economy, government, and its
// House districts and Senate seats.
type State struct {
	Name       string `json:"name"`
	Abbrev     string `json:"abbrev"`
	Population int64  `json:"population"`

	// Economy.
	GDP          float64 `json:"gdp"` // billions
	Unemployment float64 `json:"unemployment"`
	Inflation    float64 `json:"inflation"`

	// Public finance.
	BudgetRevenue  float64 `json:"budget_revenue"`
	BudgetSpending float64 `json:"budget_spending"`
	TaxRate        float64 `json:"tax_rate"`

	// Government.
	GovernorParty       PartyID            `json:"governor_party"`
	Legislature         LegislatureControl `json:"legislature"`
	ApprovalGovernor    float64            `json:"approval_governor"`    // 0..100
	ApprovalLegislature float64            `json:"approval_legislature"` // 0..100

	// Electorate.
	Cohorts     []VoterCohort `json:"cohorts"`
	Districts   []District    `json:"districts"`
	SenateSeats [2]SenateSeat `json:"senate_seats"`

	// Enacted state-level policy keys, in enactment order.
	EnactedPolicies []string `json:"enacted_policies"`

	// Pending campaign spend by party, cleared when the next election in
	// this state resolves.
	CampaignSpend map[PartyID]float64 `json:"campaign_spend"`
}

// BudgetBalance returns revenue minus spending.
func (s *State) BudgetBalance() float64 {
	return s.BudgetRevenue - s.BudgetSpending
}

// Spend records campaign spend for a party in this state; the money
// itself comes out of the party treasury. Spend is cumulative until the
// next election clears it.
func (s *State) Spend(p PartyID, amount float64) {
	if s.CampaignSpend == nil {
		s.CampaignSpend = make(map[PartyID]float64)
	}
	s.CampaignSpend[p] += amount
}
