package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claudiup423/dominator/queue"
	"github.com/claudiup423/dominator/sim"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRequest() queue.GameRequest {
	return queue.GameRequest{
		JobID:          "job-1",
		GameID:         "baseline-4000-0",
		Index:          0,
		Checkpoint:     "/checkpoints/step-4000.pt",
		CheckpointStep: 4000,
		Opponent:       "baseline",
		OpponentType:   "scripted",
		CandidateSide:  "blue",
	}
}

func TestPlayGame(t *testing.T) {
	engine := sim.Func(func(_ context.Context, game sim.Game) (sim.Outcome, error) {
		assert.Equal(t, "baseline", game.Opponent.Name)
		assert.Equal(t, sim.SideBlue, game.Side)
		return sim.Outcome{GoalsFor: 2, GoalsAgainst: 2, LengthSeconds: 300}, nil
	})

	result := playGame(context.Background(), engine, testRequest(), "w-1", discardLogger())

	assert.Equal(t, "job-1", result.JobID)
	assert.Equal(t, "baseline-4000-0", result.GameID)
	assert.Equal(t, "draw", result.Winner, "tied score is reported as a draw")
	assert.Equal(t, "w-1", result.WorkerID)
	assert.False(t, result.Failed())
	assert.GreaterOrEqual(t, result.CompletedAt, result.StartedAt)
}

func TestPlayGameEngineError(t *testing.T) {
	engine := sim.Func(func(_ context.Context, _ sim.Game) (sim.Outcome, error) {
		return sim.Outcome{}, errors.New("rocketsim crashed")
	})

	result := playGame(context.Background(), engine, testRequest(), "w-1", discardLogger())

	assert.True(t, result.Failed())
	assert.Equal(t, "rocketsim crashed", result.Error)
	assert.Empty(t, result.Winner)
}

func TestRunRequiresSimulatorName(t *testing.T) {
	err := Run(sim.Func(func(_ context.Context, _ sim.Game) (sim.Outcome, error) {
		return sim.Outcome{}, nil
	}), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulator name is required")
}

func TestGenerateWorkerID(t *testing.T) {
	a := generateWorkerID()
	b := generateWorkerID()
	assert.NotEqual(t, a, b, "worker ids must be unique per process start")
	assert.NotEmpty(t, a)
}
