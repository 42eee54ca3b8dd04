// Package economy implements the rudimentary macro and state-level
// economic ticks: bounded drift, mean reversion, and policy effects.
package economy

import (
	"github.com/talgya/statehouse/internal/entropy"
	"github.com/talgya/statehouse/internal/politics"
)

// Macro bounds. Rates are annualized percentages except Growth, which is
// a monthly fraction.
const (
	GrowthMin       = -0.05
	GrowthMax       = 0.06
	InflationMin    = 0.0
	InflationMax    = 10.0
	UnemploymentMin = 2.5
	UnemploymentMax = 20.0
)

// Macro holds the national economic indicators.
type Macro struct {
	Growth       float64 `json:"growth"`
	Unemployment float64 `json:"unemployment"`
	Inflation    float64 `json:"inflation"`
}

// Tick applies one month of bounded random drift to the indicators.
func (m *Macro) Tick(stream *entropy.Stream) {
	m.Growth = clamp(m.Growth+stream.Range(-0.002, 0.002), GrowthMin, GrowthMax)
	m.Inflation = clamp(m.Inflation+stream.Range(-0.05, 0.05), InflationMin, InflationMax)
	m.Unemployment = clamp(m.Unemployment+stream.Range(-0.05, 0.05), UnemploymentMin, UnemploymentMax)
}

// ApplyEffect folds a policy or event effect vector into the indicators.
func (m *Macro) ApplyEffect(ev politics.EffectVector) {
	m.Growth = clamp(m.Growth+ev.Growth, GrowthMin, GrowthMax)
	m.Unemployment = clamp(m.Unemployment+ev.Unemployment, UnemploymentMin, UnemploymentMax)
	m.Inflation = clamp(m.Inflation+ev.Inflation, InflationMin, InflationMax)
}

// Signal condenses the indicators into a single mood scalar, roughly
// -1..1: positive when the economy runs hot relative to trend (2%
// annual inflation, 5% unemployment, flat growth).
func (m Macro) Signal() float64 {
	sig := 10*m.Growth - 0.1*(m.Inflation-2.0) - 0.15*(m.Unemployment-5.0)
	return clamp(sig, -1, 1)
}

// TickState advances one state's economy for a month. State GDP tracks
// national growth with local noise, unemployment mean-reverts with growth
// sensitivity, and inflation partially follows the national rate.
func TickState(st *politics.State, m Macro, stream *entropy.Stream) {
	gdpGrowth := clamp(m.Growth+stream.Range(-0.01, 0.01), -0.1, 0.1)
	st.GDP *= 1.0 + gdpGrowth

	targetU := 5.5 - 0.5*m.Growth
	st.Unemployment += 0.2*(targetU-st.Unemployment) + stream.Range(-0.1, 0.1)
	st.Unemployment = clamp(st.Unemployment, UnemploymentMin, UnemploymentMax)

	st.Inflation = clamp(0.6*m.Inflation+stream.Range(-0.2, 0.2), InflationMin, InflationMax)

	// Public finance: revenue tracks GDP, spending reverts toward revenue.
	st.BudgetRevenue = st.TaxRate * st.GDP
	st.BudgetSpending += 0.2*(st.BudgetRevenue-st.BudgetSpending) + stream.Range(-1.0, 1.0)
}

// ApplyStateEffect folds a state-scoped policy effect into one state.
func ApplyStateEffect(st *politics.State, ev politics.EffectVector) {
	st.GDP *= 1.0 + ev.Growth
	st.Unemployment = clamp(st.Unemployment+ev.Unemployment, UnemploymentMin, UnemploymentMax)
	st.Inflation = clamp(st.Inflation+ev.Inflation, InflationMin, InflationMax)
	if ev.BudgetCost >= 0 {
		st.BudgetSpending += ev.BudgetCost
	} else {
		st.BudgetRevenue += -ev.BudgetCost
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
