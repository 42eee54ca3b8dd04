package opinion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/statehouse/internal/politics"
)

func TestApplyClampsAtBounds(t *testing.T) {
	tr := NewTracker(DefaultDecayRate)

	tr.Apply(RegionNational, politics.IssueEconomy, 0.8)
	tr.Apply(RegionNational, politics.IssueEconomy, 0.8)
	assert.Equal(t, Max, tr.Get(RegionNational, politics.IssueEconomy))

	tr.Apply("Texas", politics.IssueSecurity, -3.0)
	assert.Equal(t, Min, tr.Get("Texas", politics.IssueSecurity))
}

func TestValuesStayBoundedUnderRandomSequences(t *testing.T) {
	tr := NewTracker(DefaultDecayRate)
	deltas := []float64{0.4, -1.7, 0.05, 2.2, -0.3, 0.9, -0.9}
	for round := 0; round < 50; round++ {
		for i, d := range deltas {
			issue := politics.AllIssues()[i%len(politics.AllIssues())]
			tr.Apply(RegionNational, issue, d)
		}
		tr.DecayStep()
		for _, issue := range politics.AllIssues() {
			v := tr.Get(RegionNational, issue)
			require.GreaterOrEqual(t, v, Min)
			require.LessOrEqual(t, v, Max)
		}
	}
}

func TestDecayMovesTowardBaseline(t *testing.T) {
	tr := NewTracker(DefaultDecayRate)
	tr.Apply(RegionNational, politics.IssueHealthcare, 0.6)
	tr.DecayStep()
	assert.InDelta(t, 0.57, tr.Get(RegionNational, politics.IssueHealthcare), 1e-9)

	tr.Apply("Ohio", politics.IssueEconomy, -0.4)
	tr.DecayStep()
	assert.InDelta(t, -0.38, tr.Get("Ohio", politics.IssueEconomy), 1e-9)
}

func TestDecayIsASingleCompletedPass(t *testing.T) {
	// Every entry decays by the same fraction regardless of map order.
	tr := NewTracker(0.5)
	regions := []string{"a", "b", "c", "d"}
	for _, r := range regions {
		tr.Apply(r, politics.IssueEducation, 0.8)
	}
	tr.DecayStep()
	for _, r := range regions {
		require.InDelta(t, 0.4, tr.Get(r, politics.IssueEducation), 1e-9)
	}
}

func TestImportRejectsOutOfBounds(t *testing.T) {
	tr := NewTracker(DefaultDecayRate)
	tr.Apply(RegionNational, politics.IssueEconomy, 0.2)

	err := tr.Import(map[string]map[politics.Issue]float64{
		"Nevada": {politics.IssueEconomy: 1.5},
	})
	require.Error(t, err)
	// Failed import leaves the tracker unchanged.
	assert.InDelta(t, 0.2, tr.Get(RegionNational, politics.IssueEconomy), 1e-9)
}

func TestExportImportRoundTrip(t *testing.T) {
	tr := NewTracker(DefaultDecayRate)
	tr.Apply(RegionNational, politics.IssueEconomy, 0.25)
	tr.Apply("Vermont", politics.IssueEnvironment, -0.1)

	other := NewTracker(DefaultDecayRate)
	require.NoError(t, other.Import(tr.Export()))
	assert.Equal(t, tr.Export(), other.Export())
}
