package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claudiup423/dominator"
	"github.com/claudiup423/dominator/elo"
	"github.com/claudiup423/dominator/eval"
)

func newTestRedis(t *testing.T) *Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	st, err := NewRedis(RedisOptions{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleEvaluation(lineage string, step int64, rating float64) *eval.CheckpointEvaluation {
	return &eval.CheckpointEvaluation{
		ID:             "eval-" + lineage,
		Lineage:        lineage,
		CheckpointStep: step,
		CheckpointPath: "cp.zip",
		Suite:          "standard",
		Timestamp:      time.Now().UTC().Truncate(time.Second),
		RatingBefore:   1000,
		RatingAfter:    rating,
		Results: map[string]eval.TierResult{
			"tier_anchor": {Games: 50, Wins: 30, Losses: 15, Draws: 5, Winrate: 0.6},
		},
		Reasons:      []string{},
		GateFailures: []string{},
		GatesPassed:  true,
	}
}

func sampleState(rating float64, step int64) *elo.State {
	state := elo.NewState(1000, 32)
	state.Apply(step, rating, time.Now().UTC())
	return state
}

// runStoreTests exercises the eval.Store contract against any
// implementation.
func runStoreTests(t *testing.T, st eval.Store) {
	ctx := context.Background()

	t.Run("empty lineage", func(t *testing.T) {
		_, err := st.Latest(ctx, "missing")
		assert.ErrorIs(t, err, dominator.ErrEvaluationNotFound)

		state, err := st.State(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, state)

		evals, err := st.Evaluations(ctx, "missing", 0)
		require.NoError(t, err)
		assert.Empty(t, evals)
	})

	t.Run("commit and read back", func(t *testing.T) {
		e := sampleEvaluation("main", 1000, 1004.8)
		require.NoError(t, st.Commit(ctx, e, sampleState(1004.8, 1000)))

		latest, err := st.Latest(ctx, "main")
		require.NoError(t, err)
		assert.Equal(t, e.ID, latest.ID)
		assert.Equal(t, 1004.8, latest.RatingAfter)
		assert.Equal(t, 0.6, latest.Results["tier_anchor"].Winrate)

		state, err := st.State(ctx, "main")
		require.NoError(t, err)
		require.NotNil(t, state)
		assert.Equal(t, 1004.8, state.DominanceRating)
		require.Len(t, state.History, 1)
		assert.Equal(t, int64(1000), state.History[0].Step)
	})

	t.Run("newest first with limit", func(t *testing.T) {
		for i := int64(2); i <= 4; i++ {
			e := sampleEvaluation("main", i*1000, 1000+float64(i))
			require.NoError(t, st.Commit(ctx, e, sampleState(1000+float64(i), i*1000)))
		}

		evals, err := st.Evaluations(ctx, "main", 0)
		require.NoError(t, err)
		require.Len(t, evals, 4)
		assert.Equal(t, int64(4000), evals[0].CheckpointStep)
		assert.Equal(t, int64(1000), evals[3].CheckpointStep)

		limited, err := st.Evaluations(ctx, "main", 2)
		require.NoError(t, err)
		require.Len(t, limited, 2)
		assert.Equal(t, int64(4000), limited[0].CheckpointStep)
	})

	t.Run("lineages isolated and listed", func(t *testing.T) {
		e := sampleEvaluation("experiment", 500, 998)
		require.NoError(t, st.Commit(ctx, e, sampleState(998, 500)))

		latest, err := st.Latest(ctx, "experiment")
		require.NoError(t, err)
		assert.Equal(t, 998.0, latest.RatingAfter)

		mainLatest, err := st.Latest(ctx, "main")
		require.NoError(t, err)
		assert.NotEqual(t, latest.RatingAfter, mainLatest.RatingAfter)

		lineages, err := st.Lineages(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"experiment", "main"}, lineages)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, NewMemory())
}

func TestRedisStore(t *testing.T) {
	runStoreTests(t, newTestRedis(t))
}

func TestRedisHistoryTrim(t *testing.T) {
	mr := miniredis.RunT(t)
	st, err := NewRedis(RedisOptions{URL: "redis://" + mr.Addr(), History: 2})
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	for i := int64(1); i <= 5; i++ {
		e := sampleEvaluation("main", i, 1000)
		require.NoError(t, st.Commit(ctx, e, sampleState(1000, i)))
	}

	evals, err := st.Evaluations(ctx, "main", 0)
	require.NoError(t, err)
	require.Len(t, evals, 2)
	assert.Equal(t, int64(5), evals[0].CheckpointStep)
	assert.Equal(t, int64(4), evals[1].CheckpointStep)
}

func TestNewRedisBadURL(t *testing.T) {
	_, err := NewRedis(RedisOptions{URL: "not-a-url"})
	require.Error(t, err)
}

func TestRedisPing(t *testing.T) {
	mr := miniredis.RunT(t)
	st, err := NewRedis(RedisOptions{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Ping(context.Background()))

	mr.Close()
	assert.Error(t, st.Ping(context.Background()))
}
