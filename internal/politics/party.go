package politics

// Party is a national political party: platform, money, and approval.
type Party struct {
	ID               PartyID           `json:"id"`
	Platform         map[Issue]float64 `json:"platform"` // stance per issue, -1..1
	Treasury         float64           `json:"treasury"` // millions
	NationalApproval float64           `json:"national_approval"` // 0..100
}

// AdjustApproval shifts national approval, clamped to 0..100.
func (p *Party) AdjustApproval(delta float64) {
	p.NationalApproval += delta
	if p.NationalApproval < 0 {
		p.NationalApproval = 0
	}
	if p.NationalApproval > 100 {
		p.NationalApproval = 100
	}
}

// Alignment returns how strongly the party supports a policy touching the
// given issue with the given direction. Positive means support.
func (p *Party) Alignment(issue Issue, direction float64) float64 {
	stance := p.Platform[issue]
	return stance * direction
}
