// Package elo implements the batched multi-opponent Elo update used to
// track the dominance rating of a candidate lineage.
//
// Games against each frozen tier are aggregated into one batched Elo
// "match" per tier: the tier's winrate (draws counted as half) is the
// actual score, compared against the expected score derived from the
// rating gap. Per-tier deltas are averaged with equal weight so a tier
// with more games does not dominate the update.
//
// Update is a pure function: recomputing from the same inputs always
// yields the same rating.
package elo

import (
	"math"

	dominator "github.com/claudiup423/dominator"
)

// Matchup is the aggregated outcome of games against one rating anchor.
type Matchup struct {
	// Opponent is the tier name.
	Opponent string

	// Wins, Draws and Games are the aggregated counts against this tier.
	// Losses are implied. A matchup with zero games is excluded from the
	// rating computation.
	Wins  int
	Draws int
	Games int

	// OpponentRating is the tier's effective rating (pinned or learned).
	OpponentRating float64
}

// Score returns the matchup's actual score in [0, 1]: wins plus half a
// point per draw, over games played. Zero when no games were played.
func (m Matchup) Score() float64 {
	if m.Games == 0 {
		return 0
	}
	return (float64(m.Wins) + 0.5*float64(m.Draws)) / float64(m.Games)
}

// Expected returns the candidate's expected score against an opponent on
// the standard 400-point Elo curve.
func Expected(candidate, opponent float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (opponent-candidate)/400.0))
}

// Update computes the candidate's new rating from the aggregated matchups.
//
// Each matchup contributes kFactor * (score - expected); the total delta
// is the mean of per-matchup deltas, so each tier carries equal weight.
// The result is rounded to one decimal place, the precision stored and
// displayed by the platform.
//
// Matchups with zero games are excluded. If every matchup is excluded the
// update is a configuration error and the rating is returned unchanged.
//
// The returned map holds the raw per-tier deltas (before averaging) keyed
// by opponent name, for diagnostics and dashboard display.
func Update(before, kFactor float64, matchups []Matchup) (float64, map[string]float64, error) {
	const op = "elo.Update"

	deltas := make(map[string]float64, len(matchups))
	var total float64
	counted := 0

	for _, m := range matchups {
		if m.Games == 0 {
			continue
		}
		e := Expected(before, m.OpponentRating)
		d := kFactor * (m.Score() - e)
		deltas[m.Opponent] = d
		total += d
		counted++
	}

	if counted == 0 {
		return before, nil, dominator.NewConfigurationError(op, dominator.ErrAllTiersExcluded)
	}

	after := round1(before + total/float64(counted))
	return after, deltas, nil
}

// round1 rounds to one decimal place.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
