package elo

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dominator "github.com/claudiup423/dominator"
)

func TestExpected(t *testing.T) {
	assert.Equal(t, 0.5, Expected(1000, 1000), "equal ratings expect an even score")

	// 400 points of advantage means a 10x favourite
	assert.InDelta(t, 10.0/11.0, Expected(1400, 1000), 1e-9)
	assert.InDelta(t, 1.0/11.0, Expected(1000, 1400), 1e-9)

	// Symmetry
	assert.InDelta(t, 1.0, Expected(1200, 1000)+Expected(1000, 1200), 1e-9)
}

func TestMatchupScore(t *testing.T) {
	m := Matchup{Wins: 30, Draws: 5, Games: 50}
	assert.InDelta(t, 0.65, m.Score(), 1e-9)

	assert.Zero(t, Matchup{}.Score(), "zero games scores zero")
}

// The worked scenario from the suite defaults: 30/15/5 over 50 games
// against a pinned 1000 anchor from a 1000 start with k=32 lands on 1004.8.
func TestUpdateWorkedScenario(t *testing.T) {
	after, deltas, err := Update(1000, 32, []Matchup{
		{Opponent: "baseline", Wins: 30, Draws: 5, Games: 50, OpponentRating: 1000},
	})
	require.NoError(t, err)

	assert.Equal(t, 1004.8, after)
	assert.InDelta(t, 4.8, deltas["baseline"], 1e-9)
}

func TestUpdateSingleTierBoundedByK(t *testing.T) {
	cases := []Matchup{
		{Opponent: "baseline", Wins: 50, Games: 50, OpponentRating: 1600},
		{Opponent: "baseline", Wins: 0, Games: 50, OpponentRating: 400},
		{Opponent: "baseline", Wins: 25, Draws: 25, Games: 50, OpponentRating: 1000},
	}

	for _, m := range cases {
		after, _, err := Update(1000, 32, []Matchup{m})
		require.NoError(t, err)
		assert.LessOrEqual(t, math.Abs(after-1000), 32.0,
			"single-tier delta is bounded by the k factor")
	}
}

func TestUpdateIdempotent(t *testing.T) {
	matchups := []Matchup{
		{Opponent: "baseline", Wins: 30, Draws: 5, Games: 50, OpponentRating: 1000},
		{Opponent: "nexto", Wins: 10, Draws: 2, Games: 50, OpponentRating: 1400},
	}

	first, _, err := Update(1187.3, 32, matchups)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, _, err := Update(1187.3, 32, matchups)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestUpdateZeroGamesExcluded(t *testing.T) {
	withEmpty, _, err := Update(1000, 32, []Matchup{
		{Opponent: "baseline", Wins: 30, Draws: 5, Games: 50, OpponentRating: 1000},
		{Opponent: "seer", Games: 0, OpponentRating: 1800},
	})
	require.NoError(t, err)

	without, _, err := Update(1000, 32, []Matchup{
		{Opponent: "baseline", Wins: 30, Draws: 5, Games: 50, OpponentRating: 1000},
	})
	require.NoError(t, err)

	assert.Equal(t, without, withEmpty, "a zero-game tier never contributes to the rating")
}

func TestUpdateAllExcluded(t *testing.T) {
	after, deltas, err := Update(1000, 32, []Matchup{
		{Opponent: "baseline", Games: 0, OpponentRating: 1000},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dominator.ErrAllTiersExcluded))
	assert.Equal(t, 1000.0, after, "rating is unchanged on configuration error")
	assert.Nil(t, deltas)

	_, _, err = Update(1000, 32, nil)
	require.Error(t, err)
}

func TestUpdateEqualTierWeighting(t *testing.T) {
	// One tier of 10 games and one of 1000 games, both with the same
	// winrate against the same anchor, must pull with identical force.
	after, deltas, err := Update(1000, 32, []Matchup{
		{Opponent: "small", Wins: 6, Games: 10, OpponentRating: 1000},
		{Opponent: "big", Wins: 600, Games: 1000, OpponentRating: 1000},
	})
	require.NoError(t, err)

	assert.InDelta(t, deltas["small"], deltas["big"], 1e-9)
	assert.Equal(t, 1003.2, after)
}

func TestStateApply(t *testing.T) {
	s := NewState(1000, 32)
	now := time.Now().UTC()

	s.Apply(4000, 1004.8, now)
	s.Apply(5000, 1011.2, now.Add(time.Hour))

	assert.Equal(t, 1011.2, s.DominanceRating)
	require.Len(t, s.History, 2)
	assert.Equal(t, int64(4000), s.History[0].Step)
	assert.Equal(t, 1004.8, s.History[0].Rating)
	assert.Equal(t, int64(5000), s.History[1].Step)
}

func TestStateClone(t *testing.T) {
	s := NewState(1000, 32)
	s.TierRatings["nexto"] = 1400
	s.Apply(4000, 1004.8, time.Now().UTC())

	c := s.Clone()
	c.TierRatings["nexto"] = 9999
	c.Apply(5000, 1, time.Now().UTC())

	assert.Equal(t, 1400.0, s.TierRatings["nexto"], "clone mutations must not leak back")
	assert.Len(t, s.History, 1)
	assert.Equal(t, 1004.8, s.DominanceRating)
}
