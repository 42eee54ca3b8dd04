package politics

import "github.com/google/uuid"

// PolicyStatus tracks a policy through the legislative pipeline.
type PolicyStatus string

const (
	PolicyProposed PolicyStatus = "proposed"
	PolicyVoting   PolicyStatus = "voting"
	PolicyEnacted  PolicyStatus = "enacted"
	PolicyRejected PolicyStatus = "rejected"
)

// Terminal reports whether the status admits no further transitions.
func (s PolicyStatus) Terminal() bool {
	return s == PolicyEnacted || s == PolicyRejected
}

// PolicyScope says which legislature votes on a policy.
type PolicyScope string

const (
	ScopeFederal PolicyScope = "federal"
	ScopeState   PolicyScope = "state"
)

// Policy is a piece of legislation moving through the pipeline.
type Policy struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Sponsor     string       `json:"sponsor"` // actor id
	Party       PartyID      `json:"party"`   // sponsoring party
	Scope       PolicyScope  `json:"scope"`
	StateName   string       `json:"state_name,omitempty"` // for state-scoped policies
	Issue       Issue        `json:"issue"`
	Direction   float64      `json:"direction"` // -1..1, which way the policy moves the issue
	Effect      EffectVector `json:"effect"`
	Popularity  float64      `json:"popularity"` // baseline public support 0..100

	Status       PolicyStatus `json:"status"`
	ProposedTurn uint64       `json:"proposed_turn"`
	ResolvedTurn uint64       `json:"resolved_turn,omitempty"`
}

// policyNamespace scopes deterministic policy IDs.
var policyNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// PolicyID derives a stable identifier from the sponsor, title, and the
// turn the policy was proposed. Two runs with the same seed produce the
// same IDs, which the snapshot determinism contract depends on.
func PolicyID(sponsor, title string, turn uint64) string {
	name := make([]byte, 0, len(sponsor)+len(title)+24)
	name = append(name, sponsor...)
	name = append(name, '/')
	name = append(name, title...)
	name = append(name, '/')
	name = appendUint(name, turn)
	return uuid.NewSHA1(policyNamespace, name).String()
}

func appendUint(b []byte, v uint64) []byte {
	if v == 0 {
		return append(b, '0')
	}
	var tmp [20]byte
	i := len(tmp)
	for v > 0 {
		i--
		tmp[i] = byte('0' + v%10)
		v /= 10
	}
	return append(b, tmp[i:]...)
}
