package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	dominator "github.com/claudiup423/dominator"
	"github.com/claudiup423/dominator/ladder"
	"github.com/claudiup423/dominator/queue"
)

// RemoteOptions configures a Remote simulator.
type RemoteOptions struct {
	// Simulator is the name of the registered simulator whose queue games
	// are dispatched to (e.g. "rlgym").
	Simulator string

	// GameTimeout is the maximum time to wait for a single game result.
	// Default: 2m.
	GameTimeout time.Duration

	// Logger is the structured logger for dispatch operations.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Remote implements Simulator by dispatching games to remote simulation
// hosts over the Redis queue and awaiting the published result.
type Remote struct {
	client  queue.Client
	name    string
	timeout time.Duration
	logger  *slog.Logger
}

// NewRemote creates a Remote simulator dispatching to the given queue client.
func NewRemote(client queue.Client, opts RemoteOptions) (*Remote, error) {
	if opts.Simulator == "" {
		return nil, fmt.Errorf("simulator name is required")
	}
	if opts.GameTimeout == 0 {
		opts.GameTimeout = 2 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Remote{
		client:  client,
		name:    opts.Simulator,
		timeout: opts.GameTimeout,
		logger:  opts.Logger.With("simulator", opts.Simulator),
	}, nil
}

// PlayGame pushes one GameRequest onto the simulator's queue and blocks
// until the matching GameResult is published or the game times out.
func (r *Remote) PlayGame(ctx context.Context, game Game) (Outcome, error) {
	const op = "Remote.PlayGame"

	jobID := uuid.NewString()
	gameID := fmt.Sprintf("%s-%d-%d", game.Opponent.Name, game.CheckpointStep, game.Index)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// Subscribe before pushing so the result cannot be missed.
	results, err := r.client.Subscribe(ctx, queue.ResultChannel(jobID))
	if err != nil {
		return Outcome{}, dominator.NewSimulationError(op, err)
	}

	req := queue.GameRequest{
		JobID:                jobID,
		GameID:               gameID,
		Index:                game.Index,
		Total:                1,
		Checkpoint:           game.Checkpoint,
		CheckpointStep:       game.CheckpointStep,
		Opponent:             game.Opponent.Name,
		OpponentType:         string(game.Opponent.Type),
		OpponentPath:         game.Opponent.CheckpointPath,
		CandidateSide:        string(game.Side),
		KickoffWindowSeconds: game.KickoffWindowSeconds,
		SubmittedAt:          time.Now().UnixMilli(),
	}

	if err := r.client.Push(ctx, queue.QueueName(r.name), req); err != nil {
		return Outcome{}, dominator.NewSimulationError(op, err)
	}

	r.logger.Debug("game dispatched",
		"job_id", jobID,
		"game_id", gameID,
		"opponent", game.Opponent.Name,
		"index", game.Index,
	)

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return Outcome{}, dominator.NewTimeoutError(op, dominator.ErrSimulatorFailure).
					WithContext(map[string]any{"game_id": gameID, "timeout": r.timeout.String()})
			}
			return Outcome{}, ctx.Err()
		case result, ok := <-results:
			if !ok {
				return Outcome{}, dominator.NewSimulationError(op, dominator.ErrSimulatorFailure)
			}
			if result.GameID != gameID {
				// Stale or cross-talk message on the channel
				continue
			}
			if result.Failed() {
				return Outcome{}, dominator.NewSimulationError(op,
					fmt.Errorf("%w: %s", dominator.ErrSimulatorFailure, result.Error)).
					WithContext(map[string]any{"game_id": gameID, "worker_id": result.WorkerID})
			}
			return outcomeFromResult(result), nil
		}
	}
}

// outcomeFromResult maps a wire GameResult to a sim Outcome.
func outcomeFromResult(result queue.GameResult) Outcome {
	out := Outcome{
		Winner:          Winner(result.Winner),
		GoalsFor:        result.GoalsFor,
		GoalsAgainst:    result.GoalsAgainst,
		LengthSeconds:   result.LengthSeconds,
		KickoffConceded: result.KickoffConceded,
		OwnGoals:        result.OwnGoals,
		OpenNetConcedes: result.OpenNetConcedes,
		ShotQuality:     result.ShotQuality,
	}
	if out.Winner == "" {
		out.Winner = out.Result()
	}
	return out
}

// GameFromRequest reconstructs a sim Game from a wire GameRequest.
// Simulation hosts use this to hand popped requests to their local engine.
func GameFromRequest(req queue.GameRequest) Game {
	return Game{
		Checkpoint:     req.Checkpoint,
		CheckpointStep: req.CheckpointStep,
		Opponent: ladder.Tier{
			Name:           req.Opponent,
			Type:           ladder.Type(req.OpponentType),
			CheckpointPath: req.OpponentPath,
			Ready:          true,
		},
		Index:                req.Index,
		Side:                 Side(req.CandidateSide),
		KickoffWindowSeconds: req.KickoffWindowSeconds,
	}
}
