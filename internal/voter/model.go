// Package voter computes vote shares for contested seats from cohort
// composition, public opinion, incumbency, and campaign spending.
package voter

import (
	"math"
	"sort"

	"github.com/talgya/statehouse/internal/entropy"
	"github.com/talgya/statehouse/internal/politics"
)

// Model weights. Treated as tunable constants rather than scenario data.
const (
	IncumbencyBonus = 0.02  // added to the incumbent party's score; vacant seats get nothing
	CohortWeight    = 0.15  // weight of cohort partisan tendency
	OpinionWeight   = 0.10  // weight of the opinion-derived signal
	SpendWeight     = 0.015 // per log-unit of campaign spend
	NoiseSpan       = 0.03  // uniform noise half-width per candidate
	floorShare      = 0.01  // minimum raw share before normalization
)

// Inputs collects everything that influences one contest.
type Inputs struct {
	Cohorts     []politics.VoterCohort
	Swing       float64 // positive favors the lexicographically-first party
	TurnoutBias float64
	Incumbent   politics.PartyID               // empty = vacant seat
	Opinion     map[politics.PartyID]float64   // per-party opinion signal, -1..1
	Spend       map[politics.PartyID]float64   // campaign spend per party
	Noise       *entropy.Stream                // nil = noiseless contest
}

// Shares returns normalized vote shares per party. Parties are always
// scored in lexicographic order so draws from the noise stream never
// depend on caller ordering.
func Shares(parties []politics.PartyID, in Inputs) map[politics.PartyID]float64 {
	ordered := make([]politics.PartyID, len(parties))
	copy(ordered, parties)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	scores := make(map[politics.PartyID]float64, len(ordered))
	for idx, p := range ordered {
		score := cohortScore(in.Cohorts, p) * CohortWeight
		score += in.Opinion[p] * OpinionWeight
		if spend := in.Spend[p]; spend > 0 {
			score += SpendWeight * math.Log1p(spend)
		}
		if in.Incumbent != "" && p == in.Incumbent {
			score += IncumbencyBonus
		}
		// Swing and turnout bias favor the first party and penalize the
		// rest evenly, keeping the total shift zero-sum.
		shift := in.Swing + in.TurnoutBias
		if idx == 0 {
			score += shift
		} else if len(ordered) > 1 {
			score -= shift / float64(len(ordered)-1)
		}
		if in.Noise != nil {
			score += in.Noise.Range(-NoiseSpan, NoiseSpan)
		}
		scores[p] = score
	}

	// Normalize into positive shares summing to 1.
	total := 0.0
	for p, s := range scores {
		if s < floorShare {
			s = floorShare
			scores[p] = s
		}
		total += s
	}
	for p := range scores {
		scores[p] /= total
	}
	return scores
}

// Winner picks the plurality party. An exact tie resolves to the
// incumbent party when it is among the leaders, otherwise to the
// lexicographically smallest party identifier.
func Winner(shares map[politics.PartyID]float64, incumbent politics.PartyID) politics.PartyID {
	var leaders []politics.PartyID
	best := math.Inf(-1)
	for p, s := range shares {
		switch {
		case s > best:
			best = s
			leaders = leaders[:0]
			leaders = append(leaders, p)
		case s == best:
			leaders = append(leaders, p)
		}
	}
	if len(leaders) == 1 {
		return leaders[0]
	}
	sort.Slice(leaders, func(i, j int) bool { return leaders[i] < leaders[j] })
	if incumbent != "" {
		for _, p := range leaders {
			if p == incumbent {
				return p
			}
		}
	}
	return leaders[0]
}

// cohortScore is the partisan tendency of an electorate toward one party:
// cohorts leaning toward it add turnout-weighted share, cohorts leaning
// elsewhere subtract, unaffiliated cohorts are neutral.
func cohortScore(cohorts []politics.VoterCohort, p politics.PartyID) float64 {
	score := 0.0
	for _, c := range cohorts {
		switch c.Lean {
		case p:
			score += c.Share * c.Turnout
		case politics.Independent, "":
			// neutral
		default:
			score -= c.Share * c.Turnout
		}
	}
	return score
}
