package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/statehouse/internal/engine"
	"github.com/talgya/statehouse/internal/scenario"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "sim.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	db := openTestDB(t)

	sim, err := engine.New(scenario.Default())
	require.NoError(t, err)
	_, err = sim.Advance(3)
	require.NoError(t, err)

	require.NoError(t, db.SaveSnapshot(sim.Export()))

	doc, err := db.LoadLatest()
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, uint64(3), doc.Turn)

	restored, err := engine.Load(doc)
	require.NoError(t, err)
	assert.Equal(t, sim.Year, restored.Year)
	assert.Equal(t, sim.Month, restored.Month)
	assert.Len(t, restored.States, len(sim.States))
}

func TestLoadLatestEmptyDatabase(t *testing.T) {
	db := openTestDB(t)
	doc, err := db.LoadLatest()
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestSnapshotHistoryAndPrune(t *testing.T) {
	db := openTestDB(t)

	sim, err := engine.New(scenario.Default())
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, db.SaveSnapshot(sim.Export()))
		_, err = sim.Advance(1)
		require.NoError(t, err)
	}

	turns, err := db.Turns()
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 1, 2, 3}, turns)

	doc, err := db.LoadTurn(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), doc.Turn)

	require.NoError(t, db.Prune(2))
	turns, err = db.Turns()
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 3}, turns)
}

func TestAppendLogAndRecent(t *testing.T) {
	db := openTestDB(t)

	events := []engine.LogEvent{
		{Turn: 1, Year: 2025, Month: 2, Category: "policy", Description: "first"},
		{Turn: 2, Year: 2025, Month: 3, Category: "event", Description: "second"},
	}
	require.NoError(t, db.AppendLog(events))
	require.NoError(t, db.AppendLog(nil))

	recent, err := db.RecentLog(10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "second", recent[0].Description)
	assert.Equal(t, "first", recent[1].Description)
}

func TestMetaRoundTrip(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveMeta("seed", "1775"))
	v, err := db.GetMeta("seed")
	require.NoError(t, err)
	assert.Equal(t, "1775", v)

	require.NoError(t, db.SaveMeta("seed", "42"))
	v, err = db.GetMeta("seed")
	require.NoError(t, err)
	assert.Equal(t, "42", v)
}

func TestSaveStateTracksLogCursor(t *testing.T) {
	db := openTestDB(t)

	sim, err := engine.New(scenario.Default())
	require.NoError(t, err)
	_, err = sim.Advance(2)
	require.NoError(t, err)

	cursor, err := db.SaveState(sim, 0)
	require.NoError(t, err)

	// Saving again with the cursor appends nothing new.
	cursor2, err := db.SaveState(sim, cursor)
	require.NoError(t, err)
	assert.Equal(t, cursor, cursor2)

	recent, err := db.RecentLog(1000)
	require.NoError(t, err)
	assert.Len(t, recent, cursor)
}
