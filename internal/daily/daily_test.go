package daily

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/memory/apps/go-server/internal/database"
)

func TestDateKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	ts := time.Date(2026, 3, 2, 5, 0, 0, 0, loc)
	assert.Equal(t, "2026-03-01", DateKey(ts))
}

func TestSeed(t *testing.T) {
	day := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	later := day.Add(10 * time.Hour)

	assert.Equal(t, Seed(day, "salt"), Seed(later, "salt"), "same day")
	assert.NotEqual(t, Seed(day, "salt"), Seed(day.AddDate(0, 0, 1), "salt"), "next day")
	assert.NotEqual(t, Seed(day, "salt"), Seed(day, "pepper"), "other salt")
}

func TestGameID(t *testing.T) {
	assert.Equal(t, "daily-2026-10-17-u1", GameID("u1", "2026-10-17"))
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))

	for _, u := range []struct{ id, name string }{{"u1", "ann"}, {"u2", "bob"}, {"u3", "cyd"}} {
		_, err := db.Exec(`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
			u.id, u.name, "x", "2026-01-01T00:00:00Z")
		require.NoError(t, err)
	}
	return NewStore(db)
}

func TestStoreResults(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	date := "2026-10-17"

	played, err := s.AlreadyPlayed(ctx, "u1", date)
	require.NoError(t, err)
	assert.False(t, played)

	ok, err := s.InsertResult(ctx, Result{UserID: "u1", Date: date, Pairs: 10, Moves: 18})
	require.NoError(t, err)
	assert.True(t, ok)

	// second insert for the same day is ignored
	ok, err = s.InsertResult(ctx, Result{UserID: "u1", Date: date, Pairs: 10, Moves: 11})
	require.NoError(t, err)
	assert.False(t, ok)

	played, err = s.AlreadyPlayed(ctx, "u1", date)
	require.NoError(t, err)
	assert.True(t, played)

	_, err = s.InsertResult(ctx, Result{UserID: "u2", Date: date, Pairs: 10, Moves: 12})
	require.NoError(t, err)
	_, err = s.InsertResult(ctx, Result{UserID: "u3", Date: "2026-10-16", Pairs: 10, Moves: 10})
	require.NoError(t, err)

	lb, err := s.Leaderboard(ctx, date, 0)
	require.NoError(t, err)
	assert.Equal(t, []LBRow{{Username: "bob", Moves: 12}, {Username: "ann", Moves: 18}}, lb)

	lb, err = s.Leaderboard(ctx, date, 1)
	require.NoError(t, err)
	assert.Len(t, lb, 1)
}
