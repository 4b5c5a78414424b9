package eval

import (
	"time"
)

// Checkpoint identifies a candidate model to evaluate.
type Checkpoint struct {
	// Lineage groups checkpoints that belong to the same training run.
	// Empty defaults to "main".
	Lineage string `json:"lineage"`

	// Step is the training step the checkpoint was taken at.
	Step int64 `json:"step"`

	// Path locates the checkpoint artifact for the simulator.
	Path string `json:"path"`
}

// TierResult aggregates the outcomes of all games played against a
// single opponent tier.
type TierResult struct {
	Games  int `json:"games"`
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`

	// Winrate is wins divided by games. Draws count toward games but
	// not toward wins.
	Winrate float64 `json:"winrate"`

	GoalsFor     int `json:"goals_for"`
	GoalsAgainst int `json:"goals_against"`
	GoalDiff     int `json:"goal_diff"`

	AvgGameLengthSeconds float64 `json:"avg_game_length_seconds"`

	// KickoffGoalsConceded counts games in which the candidate
	// conceded a goal directly off a kickoff.
	KickoffGoalsConceded int `json:"kickoff_goals_conceded"`

	OwnGoals        int     `json:"own_goals"`
	OpenNetConcedes int     `json:"open_net_concedes"`
	AvgShotQuality  float64 `json:"avg_shot_quality"`

	// RatingDelta is the raw per-tier rating adjustment computed
	// during the batched update, before averaging across tiers.
	RatingDelta float64 `json:"rating_delta"`
}

// KickoffConcedeRate returns the fraction of games with a kickoff
// goal conceded. Zero when no games were played.
func (r TierResult) KickoffConcedeRate() float64 {
	if r.Games == 0 {
		return 0
	}
	return float64(r.KickoffGoalsConceded) / float64(r.Games)
}

// OwnGoalRate returns own goals per game. Zero when no games were
// played.
func (r TierResult) OwnGoalRate() float64 {
	if r.Games == 0 {
		return 0
	}
	return float64(r.OwnGoals) / float64(r.Games)
}

// OpenNetConcedeRate returns open net concessions per game. Zero when
// no games were played.
func (r TierResult) OpenNetConcedeRate() float64 {
	if r.Games == 0 {
		return 0
	}
	return float64(r.OpenNetConcedes) / float64(r.Games)
}

// CheckpointEvaluation is the persisted record of one evaluation run.
type CheckpointEvaluation struct {
	ID             string    `json:"id"`
	Lineage        string    `json:"lineage"`
	CheckpointStep int64     `json:"checkpoint_step"`
	CheckpointPath string    `json:"checkpoint_path"`
	Suite          string    `json:"suite"`
	Timestamp      time.Time `json:"timestamp"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`

	GamesPerOpponent int `json:"games_per_opponent"`

	RatingBefore float64 `json:"rating_before"`
	RatingAfter  float64 `json:"rating_after"`

	// Results maps tier name to the aggregated outcomes against that
	// tier. Only ready tiers appear.
	Results map[string]TierResult `json:"results"`

	Regression bool     `json:"regression"`
	Reasons    []string `json:"reasons"`

	GatesPassed  bool     `json:"gates_passed"`
	GateFailures []string `json:"gate_failures"`
}

// OverallWinrate returns wins over games summed across all tiers.
func (e *CheckpointEvaluation) OverallWinrate() float64 {
	var wins, games int
	for _, r := range e.Results {
		wins += r.Wins
		games += r.Games
	}
	if games == 0 {
		return 0
	}
	return float64(wins) / float64(games)
}

// TotalGames returns the number of games played across all tiers.
func (e *CheckpointEvaluation) TotalGames() int {
	var games int
	for _, r := range e.Results {
		games += r.Games
	}
	return games
}

// Event types emitted while an evaluation runs.
const (
	EventStarted       = "started"
	EventTierCompleted = "tier_completed"
	EventCompleted     = "completed"
	EventFailed        = "failed"
)

// Event is a progress notification emitted by the engine. Events are
// advisory; the persisted CheckpointEvaluation is the source of truth.
type Event struct {
	Type           string                `json:"type"`
	Lineage        string                `json:"lineage"`
	CheckpointStep int64                 `json:"checkpoint_step"`
	Tier           string                `json:"tier,omitempty"`
	TierResult     *TierResult           `json:"tier_result,omitempty"`
	Evaluation     *CheckpointEvaluation `json:"evaluation,omitempty"`
	Error          string                `json:"error,omitempty"`
	Timestamp      time.Time             `json:"timestamp"`
}
