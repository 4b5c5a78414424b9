// Package sim defines the match simulator boundary: the contract between
// the evaluation engine and whatever actually plays a game of Rocket League.
//
// A Simulator plays exactly one game between the candidate checkpoint and a
// frozen opponent and reports the outcome. Implementations range from the
// deterministic Dev simulator used in development and tests to Remote,
// which dispatches games to simulation hosts over the Redis queue.
package sim

import (
	"context"

	"github.com/claudiup423/dominator/ladder"
)

// Side identifies which side of the pitch the candidate starts on.
// The evaluator alternates sides deterministically by game index so that
// kickoff statistics are not skewed by side bias.
type Side string

const (
	// SideBlue is the blue side (even game indices).
	SideBlue Side = "blue"

	// SideOrange is the orange side (odd game indices).
	SideOrange Side = "orange"
)

// SideForGame returns the candidate's side for the given game index.
// Even indices are blue, odd indices are orange.
func SideForGame(index int) Side {
	if index%2 == 0 {
		return SideBlue
	}
	return SideOrange
}

// Winner identifies the outcome of one game.
type Winner string

const (
	// WinnerCandidate means the candidate checkpoint won.
	WinnerCandidate Winner = "candidate"

	// WinnerOpponent means the frozen opponent won.
	WinnerOpponent Winner = "opponent"

	// WinnerDraw means the game ended with a tied score.
	WinnerDraw Winner = "draw"
)

// Game describes one game to be played.
type Game struct {
	// Checkpoint is the path of the candidate checkpoint artifact.
	Checkpoint string `json:"checkpoint"`

	// CheckpointStep is the training step identifying the checkpoint.
	CheckpointStep int64 `json:"checkpoint_step"`

	// Opponent is the frozen tier to play against.
	Opponent ladder.Tier `json:"opponent"`

	// Index is the 0-based position of this game in the tier's batch.
	Index int `json:"index"`

	// Side is the candidate's starting side.
	Side Side `json:"side"`

	// KickoffWindowSeconds is the window after a kickoff within which a
	// conceded goal counts as a kickoff concede.
	KickoffWindowSeconds float64 `json:"kickoff_window_seconds"`
}

// Outcome is the result of one completed game.
type Outcome struct {
	// Winner as reported by the simulator. Aggregation classifies games
	// by final score; Result() is the authoritative classification.
	Winner Winner `json:"winner"`

	// GoalsFor is the number of goals scored by the candidate.
	GoalsFor int `json:"goals_for"`

	// GoalsAgainst is the number of goals scored by the opponent.
	GoalsAgainst int `json:"goals_against"`

	// LengthSeconds is the wall-clock game length.
	LengthSeconds float64 `json:"length_seconds"`

	// KickoffConceded reports whether a goal was conceded directly off a
	// kickoff.
	KickoffConceded bool `json:"kickoff_conceded"`

	// OwnGoals is the number of own goals scored by the candidate.
	OwnGoals int `json:"own_goals"`

	// OpenNetConcedes is the number of goals conceded into an open net.
	OpenNetConcedes int `json:"open_net_concedes"`

	// ShotQuality is the mean xG-style quality of the candidate's shots,
	// 0 when the simulator does not report it.
	ShotQuality float64 `json:"shot_quality,omitempty"`
}

// Result classifies the game by final score. A tied score is always a
// draw, regardless of what the simulator reported in Winner.
func (o Outcome) Result() Winner {
	switch {
	case o.GoalsFor > o.GoalsAgainst:
		return WinnerCandidate
	case o.GoalsFor < o.GoalsAgainst:
		return WinnerOpponent
	default:
		return WinnerDraw
	}
}

// Simulator plays single games between the candidate and a frozen opponent.
//
// Implementations must be safe for concurrent use: the evaluator schedules
// games across tiers in parallel, bounded by the suite's concurrency.
type Simulator interface {
	// PlayGame plays one game and returns its outcome. An error means the
	// game could not be played; the evaluator treats any game error as
	// fatal for the whole evaluation.
	PlayGame(ctx context.Context, game Game) (Outcome, error)
}

// Func adapts a plain function to the Simulator interface.
type Func func(ctx context.Context, game Game) (Outcome, error)

// PlayGame calls f(ctx, game).
func (f Func) PlayGame(ctx context.Context, game Game) (Outcome, error) {
	return f(ctx, game)
}
