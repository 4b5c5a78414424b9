package queue

import (
	"fmt"
	"time"
)

// GameRequest represents a single game submitted to a simulator's queue.
// It contains everything a simulation host needs to launch one game between
// the candidate checkpoint and a frozen opponent and report the outcome.
type GameRequest struct {
	// JobID is a UUID that correlates all games in one evaluation run
	JobID string `json:"job_id"`

	// GameID uniquely identifies this game within the job
	GameID string `json:"game_id"`

	// Index is the position of this game in the tier's batch (0-based).
	// Even indices put the candidate on the blue side, odd on orange, so
	// kickoff statistics are not skewed by side bias.
	Index int `json:"index"`

	// Total is the total number of games in the tier's batch
	Total int `json:"total"`

	// Checkpoint is the path of the candidate checkpoint artifact
	Checkpoint string `json:"checkpoint"`

	// CheckpointStep is the training step identifying the checkpoint
	CheckpointStep int64 `json:"checkpoint_step"`

	// Opponent is the frozen tier name
	Opponent string `json:"opponent"`

	// OpponentType is "scripted" or "checkpoint"
	OpponentType string `json:"opponent_type"`

	// OpponentPath locates the frozen weights for checkpoint opponents
	OpponentPath string `json:"opponent_path,omitempty"`

	// CandidateSide is "blue" or "orange"
	CandidateSide string `json:"candidate_side"`

	// KickoffWindowSeconds is the window after a kickoff within which a
	// conceded goal counts as a kickoff concede
	KickoffWindowSeconds float64 `json:"kickoff_window_seconds"`

	// TraceID is the distributed tracing trace ID for observability
	TraceID string `json:"trace_id,omitempty"`

	// SpanID is the distributed tracing span ID for observability
	SpanID string `json:"span_id,omitempty"`

	// SubmittedAt is the Unix timestamp in milliseconds when the game was submitted
	SubmittedAt int64 `json:"submitted_at"`
}

// GameResult represents the outcome of executing a GameRequest.
// It is published to a job-specific pub/sub channel for the evaluator to collect.
type GameResult struct {
	// JobID correlates this result with the original evaluation run
	JobID string `json:"job_id"`

	// GameID correlates this result with the original game request
	GameID string `json:"game_id"`

	// Index is the position of this game in the tier's batch
	Index int `json:"index"`

	// Winner is "candidate", "opponent", or "draw". Empty if Error is set.
	Winner string `json:"winner,omitempty"`

	// GoalsFor is the number of goals scored by the candidate
	GoalsFor int `json:"goals_for"`

	// GoalsAgainst is the number of goals scored by the opponent
	GoalsAgainst int `json:"goals_against"`

	// LengthSeconds is the wall-clock game length
	LengthSeconds float64 `json:"length_seconds"`

	// KickoffConceded reports whether a goal was conceded directly off a kickoff
	KickoffConceded bool `json:"kickoff_conceded"`

	// OwnGoals is the number of own goals scored by the candidate
	OwnGoals int `json:"own_goals"`

	// OpenNetConcedes is the number of goals conceded into an open net
	OpenNetConcedes int `json:"open_net_concedes"`

	// ShotQuality is the mean xG-style quality of the candidate's shots
	ShotQuality float64 `json:"shot_quality"`

	// Error is the error message if the game could not be played.
	// Empty if the game completed.
	Error string `json:"error,omitempty"`

	// WorkerID is the unique identifier of the simulation host that played this game
	WorkerID string `json:"worker_id"`

	// StartedAt is the Unix timestamp in milliseconds when the game started
	StartedAt int64 `json:"started_at"`

	// CompletedAt is the Unix timestamp in milliseconds when the game completed
	CompletedAt int64 `json:"completed_at"`
}

// SimulatorMeta contains metadata about a registered simulator.
// It is stored as a Redis hash and used for simulator discovery.
type SimulatorMeta struct {
	// Name is the unique simulator identifier (e.g. "rlgym")
	Name string `json:"name"`

	// Version is the semantic version of the simulator implementation
	Version string `json:"version"`

	// Description is a human-readable description of the simulator
	Description string `json:"description"`

	// Engine identifies the underlying game binding (e.g. "rocketsim", "bakkesmod")
	Engine string `json:"engine,omitempty"`

	// Tags are labels for capability filtering (e.g. "1v1", "headless")
	Tags []string `json:"tags,omitempty"`

	// WorkerCount is the number of active worker goroutines across hosts
	WorkerCount int `json:"worker_count"`
}

// QueueName returns the Redis list key for a simulator's game queue.
func QueueName(simulator string) string {
	return fmt.Sprintf("sim:%s:queue", simulator)
}

// ResultChannel returns the pub/sub channel for a job's game results.
func ResultChannel(jobID string) string {
	return fmt.Sprintf("results:%s", jobID)
}

// Age returns how long a request has been waiting since submission.
func (r GameRequest) Age() time.Duration {
	if r.SubmittedAt == 0 {
		return 0
	}
	return time.Since(time.UnixMilli(r.SubmittedAt))
}

// Failed reports whether the game errored instead of completing.
func (r GameResult) Failed() bool {
	return r.Error != ""
}
