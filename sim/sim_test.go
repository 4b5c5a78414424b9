package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claudiup423/dominator/ladder"
)

func TestSideForGame(t *testing.T) {
	assert.Equal(t, SideBlue, SideForGame(0))
	assert.Equal(t, SideOrange, SideForGame(1))
	assert.Equal(t, SideBlue, SideForGame(48))
	assert.Equal(t, SideOrange, SideForGame(49))
}

func TestOutcomeResult(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		want    Winner
	}{
		{"candidate win", Outcome{GoalsFor: 3, GoalsAgainst: 1}, WinnerCandidate},
		{"opponent win", Outcome{GoalsFor: 0, GoalsAgainst: 2}, WinnerOpponent},
		{"tie is a draw", Outcome{GoalsFor: 2, GoalsAgainst: 2}, WinnerDraw},
		{"scoreless draw", Outcome{}, WinnerDraw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.outcome.Result())
		})
	}
}

func TestDevDeterminism(t *testing.T) {
	pinned := 1000.0
	game := Game{
		Checkpoint:     "/checkpoints/step-4000.pt",
		CheckpointStep: 4000,
		Opponent:       ladder.Tier{Name: "baseline", Type: ladder.Scripted, FixedElo: &pinned, Ready: true},
		Index:          3,
		Side:           SideForGame(3),
	}

	dev := &Dev{CandidateElo: 1100, Seed: 42}

	first, err := dev.PlayGame(context.Background(), game)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := dev.PlayGame(context.Background(), game)
		require.NoError(t, err)
		assert.Equal(t, first, again, "same game must produce the same outcome")
	}

	// A different game index draws a different seed.
	other := game
	other.Index = 4
	otherOut, err := dev.PlayGame(context.Background(), other)
	require.NoError(t, err)
	assert.NotEqual(t, first.LengthSeconds, otherOut.LengthSeconds)
}

func TestDevWinnerMatchesScore(t *testing.T) {
	pinned := 800.0
	dev := &Dev{CandidateElo: 1400}

	for i := 0; i < 50; i++ {
		out, err := dev.PlayGame(context.Background(), Game{
			Checkpoint: "/checkpoints/step-100.pt",
			Opponent:   ladder.Tier{Name: "baseline", FixedElo: &pinned},
			Index:      i,
			Side:       SideForGame(i),
		})
		require.NoError(t, err)
		assert.Equal(t, out.Result(), out.Winner)
	}
}

func TestFuncAdapter(t *testing.T) {
	called := false
	s := Func(func(_ context.Context, _ Game) (Outcome, error) {
		called = true
		return Outcome{GoalsFor: 1}, nil
	})

	out, err := s.PlayGame(context.Background(), Game{})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, 1, out.GoalsFor)
}
