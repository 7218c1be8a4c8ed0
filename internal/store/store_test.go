package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/lox/raincheck/internal/models"
)

func setupTestStore(t *testing.T) (*Store, *clockwork.FakeClock) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC))
	store := New(db, clock, zap.NewNop())
	require.NoError(t, store.Migrate())
	return store, clock
}

func record(location string, probs [2]float64) models.PredictionRecord {
	obs := models.DefaultObservation(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC))
	obs.Location = location
	return models.PredictionRecord{
		Observation: obs,
		Prediction:  models.NewPrediction(probs),
		Source:      "api",
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	store, _ := setupTestStore(t)
	require.NoError(t, store.Migrate())

	v, err := store.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)
}

func TestInsertAndRecent(t *testing.T) {
	store, clock := setupTestStore(t)
	ctx := context.Background()

	id1, err := store.InsertPrediction(ctx, record("Sydney", [2]float64{0.3, 0.7}))
	require.NoError(t, err)
	clock.Advance(time.Minute)
	id2, err := store.InsertPrediction(ctx, record("Perth", [2]float64{0.9, 0.1}))
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	recs, err := store.RecentPredictions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, id2, recs[0].ID)
	assert.Equal(t, "Perth", recs[0].Observation.Location)
	assert.False(t, recs[0].Prediction.WillRain)
	assert.True(t, clock.Now().Equal(recs[0].CreatedAt))

	assert.Equal(t, "Sydney", recs[1].Observation.Location)
	assert.True(t, recs[1].Prediction.WillRain)
	assert.Equal(t, "70.00", recs[1].Prediction.Percent())
	assert.Equal(t, 6, recs[1].Observation.Weekday)
	assert.Equal(t, "api", recs[1].Source)
}

func TestRecentLimit(t *testing.T) {
	store, clock := setupTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := store.InsertPrediction(ctx, record("Hobart", [2]float64{0.6, 0.4}))
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	recs, err := store.RecentPredictions(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, recs, 3)

	recs, err = store.RecentPredictions(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recs, 5)
}

func TestStatsByLocation(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	for _, r := range []models.PredictionRecord{
		record("Sydney", [2]float64{0.3, 0.7}),
		record("Sydney", [2]float64{0.8, 0.2}),
		record("Albany", [2]float64{0.1, 0.9}),
	} {
		_, err := store.InsertPrediction(ctx, r)
		require.NoError(t, err)
	}

	stats, err := store.StatsByLocation(ctx)
	require.NoError(t, err)
	assert.Equal(t, []LocationStats{
		{Location: "Albany", Predictions: 1, RainShare: 1},
		{Location: "Sydney", Predictions: 2, RainShare: 0.5},
	}, stats)
}

func TestOpenFile(t *testing.T) {
	path := t.TempDir() + "/history.db"
	s, err := Open(path, clockwork.NewRealClock(), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Ping(context.Background()))
	require.NoError(t, s.Close())

	s, err = Open(path, clockwork.NewRealClock(), zap.NewNop())
	require.NoError(t, err)
	defer s.Close()
	v, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}
