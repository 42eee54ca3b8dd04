package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/statehouse/internal/politics"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	require.Len(t, cfg.States, 50)
	require.NoError(t, cfg.Validate())
}

func TestDefaultApportionment(t *testing.T) {
	cfg := Default()
	states := BuildStates(cfg)
	require.Len(t, states, 50)

	districts := 0
	senators := 0
	for _, st := range states {
		districts += len(st.Districts)
		senators += len(st.SenateSeats)
	}
	assert.Equal(t, 435, districts)
	assert.Equal(t, 100, senators)
}

func TestBuildCongressSeatSums(t *testing.T) {
	cfg := Default()
	states := BuildStates(cfg)
	congress := BuildCongress(cfg, states)

	houseTotal := 0
	for _, n := range congress.HouseSeats {
		houseTotal += n
	}
	senateTotal := 0
	for _, n := range congress.SenateSeats {
		senateTotal += n
	}
	assert.Equal(t, cfg.HouseSize, houseTotal)
	assert.Equal(t, cfg.SenateSize, senateTotal)
}

func TestBuildStatesIsDeterministic(t *testing.T) {
	cfg := Default()
	a := BuildStates(cfg)
	b := BuildStates(cfg)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Districts, b[i].Districts, "state %s", a[i].Name)
		assert.Equal(t, a[i].SenateSeats, b[i].SenateSeats, "state %s", a[i].Name)
	}
}

func TestSenateClassesAreStaggered(t *testing.T) {
	states := BuildStates(Default())
	counts := map[int]int{}
	for _, st := range states {
		// A state's two seats never share a class.
		assert.NotEqual(t, st.SenateSeats[0].Class, st.SenateSeats[1].Class, "state %s", st.Name)
		counts[st.SenateSeats[0].Class]++
		counts[st.SenateSeats[1].Class]++
	}
	for class := 0; class < 3; class++ {
		assert.Greater(t, counts[class], 20, "class %d underpopulated", class)
	}
}

func TestCohortSharesSumToOne(t *testing.T) {
	for _, lean := range []float64{-1, -0.5, 0, 0.3, 1} {
		cohorts := cohortsForLean(lean)
		sum := 0.0
		for _, c := range cohorts {
			sum += c.Share
			require.GreaterOrEqual(t, c.Share, 0.0)
		}
		require.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cfg := Default()
	cfg.HouseSize = 400 // districts no longer sum to house size
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.States = append(cfg.States, cfg.States[0]) // duplicate state
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Parties = cfg.Parties[:1] // single party
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.StartMonth = 13
	require.Error(t, cfg.Validate())
}

func TestLoadAppliesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 99\nstart_year: 2031\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, 2031, cfg.StartYear)
	// Untouched fields keep defaults.
	assert.Equal(t, 435, cfg.HouseSize)
	assert.Equal(t, politics.Democrat, cfg.PresidentParty)
}
