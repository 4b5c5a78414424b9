package sim

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
)

// Dev is a deterministic in-process simulator for development and tests.
// No real game is launched: outcomes are sampled from an Elo-shaped win
// probability against the opponent's pinned rating, seeded per game so
// repeated runs of the same evaluation produce identical results.
type Dev struct {
	// CandidateElo is the assumed strength of the candidate. Default: 1000.
	CandidateElo float64

	// Seed perturbs the per-game seed so different suites can produce
	// different but still deterministic histories.
	Seed int64
}

// PlayGame implements Simulator.
func (d *Dev) PlayGame(_ context.Context, game Game) (Outcome, error) {
	candidate := d.CandidateElo
	if candidate == 0 {
		candidate = 1000
	}
	opponent := game.Opponent.AnchorRating(nil, 1000)

	rng := rand.New(rand.NewSource(d.gameSeed(game)))

	// Expected score for the candidate on the standard Elo curve.
	p := 1.0 / (1.0 + math.Pow(10, (opponent-candidate)/400.0))

	// Five scoring chances per game, split by expected score.
	var goalsFor, goalsAgainst int
	for i := 0; i < 5; i++ {
		roll := rng.Float64()
		switch {
		case roll < p*0.6:
			goalsFor++
		case roll > 1.0-(1.0-p)*0.6:
			goalsAgainst++
		}
	}

	out := Outcome{
		GoalsFor:      goalsFor,
		GoalsAgainst:  goalsAgainst,
		LengthSeconds: 300 + rng.Float64()*60,
		ShotQuality:   0.3 + 0.6*rng.Float64(),
	}
	out.Winner = out.Result()

	if goalsAgainst > 0 && rng.Float64() < 0.15 {
		out.KickoffConceded = true
	}
	if goalsAgainst > 0 && rng.Float64() < 0.05 {
		out.OwnGoals = 1
	}
	if goalsAgainst > 0 && rng.Float64() < 0.08 {
		out.OpenNetConcedes = 1
	}

	return out, nil
}

// gameSeed derives a stable per-game seed from the checkpoint, opponent
// and game index.
func (d *Dev) gameSeed(game Game) int64 {
	h := fnv.New64a()
	h.Write([]byte(game.Checkpoint))
	h.Write([]byte(game.Opponent.Name))
	h.Write([]byte{byte(game.Index), byte(game.Index >> 8)})
	h.Write([]byte{byte(game.CheckpointStep), byte(game.CheckpointStep >> 8), byte(game.CheckpointStep >> 16)})
	return int64(h.Sum64()) ^ d.Seed
}
