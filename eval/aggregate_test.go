package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/claudiup423/dominator/sim"
)

func TestAggregateTier(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		r := AggregateTier(nil)
		assert.Equal(t, 0, r.Games)
		assert.Equal(t, 0.0, r.Winrate)
		assert.Equal(t, 0.0, r.KickoffConcedeRate())
	})

	t.Run("counts sum to games", func(t *testing.T) {
		outcomes := []sim.Outcome{
			{GoalsFor: 3, GoalsAgainst: 1, LengthSeconds: 300},
			{GoalsFor: 0, GoalsAgainst: 2, LengthSeconds: 310, KickoffConceded: true},
			{GoalsFor: 1, GoalsAgainst: 1, LengthSeconds: 290},
			{GoalsFor: 2, GoalsAgainst: 0, LengthSeconds: 300, OwnGoals: 1},
		}
		r := AggregateTier(outcomes)

		assert.Equal(t, 4, r.Games)
		assert.Equal(t, 2, r.Wins)
		assert.Equal(t, 1, r.Losses)
		assert.Equal(t, 1, r.Draws)
		assert.Equal(t, r.Games, r.Wins+r.Losses+r.Draws)
		assert.Equal(t, 0.5, r.Winrate)
		assert.Equal(t, 6, r.GoalsFor)
		assert.Equal(t, 4, r.GoalsAgainst)
		assert.Equal(t, 2, r.GoalDiff)
		assert.Equal(t, 300.0, r.AvgGameLengthSeconds)
		assert.Equal(t, 1, r.KickoffGoalsConceded)
		assert.Equal(t, 1, r.OwnGoals)
		assert.Equal(t, 0.25, r.KickoffConcedeRate())
		assert.Equal(t, 0.25, r.OwnGoalRate())
	})

	t.Run("draws count toward games not wins", func(t *testing.T) {
		outcomes := []sim.Outcome{
			{GoalsFor: 1, GoalsAgainst: 0},
			{GoalsFor: 2, GoalsAgainst: 2},
			{GoalsFor: 0, GoalsAgainst: 0},
			{GoalsFor: 3, GoalsAgainst: 3},
		}
		r := AggregateTier(outcomes)
		assert.Equal(t, 1, r.Wins)
		assert.Equal(t, 3, r.Draws)
		assert.Equal(t, 0.25, r.Winrate)
	})

	t.Run("tie score is a draw regardless of reported winner", func(t *testing.T) {
		outcomes := []sim.Outcome{
			{Winner: sim.WinnerCandidate, GoalsFor: 2, GoalsAgainst: 2},
		}
		r := AggregateTier(outcomes)
		assert.Equal(t, 0, r.Wins)
		assert.Equal(t, 1, r.Draws)
	})

	t.Run("shot quality averaged", func(t *testing.T) {
		outcomes := []sim.Outcome{
			{GoalsFor: 1, ShotQuality: 0.4},
			{GoalsFor: 1, ShotQuality: 0.6},
		}
		r := AggregateTier(outcomes)
		assert.Equal(t, 0.5, r.AvgShotQuality)
	})
}
