package sim

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dominator "github.com/claudiup423/dominator"
	"github.com/claudiup423/dominator/ladder"
	"github.com/claudiup423/dominator/queue"
)

func setupRemote(t *testing.T, opts RemoteOptions) (*Remote, queue.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := queue.NewRedisClient(queue.RedisOptions{
		URL: fmt.Sprintf("redis://%s", mr.Addr()),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	if opts.Simulator == "" {
		opts.Simulator = "rlgym"
	}
	remote, err := NewRemote(client, opts)
	require.NoError(t, err)
	return remote, client
}

// echoWorker pops one request from the simulator queue and publishes the
// given result for it.
func echoWorker(t *testing.T, client queue.Client, simulator string, respond func(queue.GameRequest) queue.GameResult) {
	t.Helper()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		req, err := client.Pop(ctx, queue.QueueName(simulator))
		if err != nil || req == nil {
			return
		}

		result := respond(*req)
		result.JobID = req.JobID
		result.GameID = req.GameID
		_ = client.Publish(ctx, queue.ResultChannel(req.JobID), result)
	}()
}

func testGame() Game {
	return Game{
		Checkpoint:           "/checkpoints/step-4000.pt",
		CheckpointStep:       4000,
		Opponent:             ladder.Tier{Name: "baseline", Type: ladder.Scripted, Ready: true},
		Index:                0,
		Side:                 SideBlue,
		KickoffWindowSeconds: 3.0,
	}
}

func TestRemotePlayGame(t *testing.T) {
	remote, client := setupRemote(t, RemoteOptions{})

	echoWorker(t, client, "rlgym", func(req queue.GameRequest) queue.GameResult {
		return queue.GameResult{
			Winner:        "candidate",
			GoalsFor:      2,
			GoalsAgainst:  1,
			LengthSeconds: 305.0,
			WorkerID:      "sim-host-1",
		}
	})

	out, err := remote.PlayGame(context.Background(), testGame())
	require.NoError(t, err)
	assert.Equal(t, WinnerCandidate, out.Winner)
	assert.Equal(t, 2, out.GoalsFor)
	assert.Equal(t, 1, out.GoalsAgainst)
}

func TestRemotePlayGameFailure(t *testing.T) {
	remote, client := setupRemote(t, RemoteOptions{})

	echoWorker(t, client, "rlgym", func(req queue.GameRequest) queue.GameResult {
		return queue.GameResult{Error: "game crashed on kickoff"}
	})

	_, err := remote.PlayGame(context.Background(), testGame())
	require.Error(t, err)
	assert.True(t, errors.Is(err, dominator.ErrSimulatorFailure))

	var de *dominator.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, dominator.KindSimulation, de.Kind)
}

func TestRemotePlayGameTimeout(t *testing.T) {
	remote, _ := setupRemote(t, RemoteOptions{GameTimeout: 200 * time.Millisecond})

	// No worker: the dispatch times out.
	_, err := remote.PlayGame(context.Background(), testGame())
	require.Error(t, err)

	var de *dominator.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, dominator.KindTimeout, de.Kind)
}

func TestNewRemoteRequiresName(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()
	client, err := queue.NewRedisClient(queue.RedisOptions{URL: fmt.Sprintf("redis://%s", mr.Addr())})
	require.NoError(t, err)
	defer client.Close()

	_, err = NewRemote(client, RemoteOptions{})
	require.Error(t, err)
}

func TestGameFromRequest(t *testing.T) {
	req := queue.GameRequest{
		Checkpoint:           "/checkpoints/step-4000.pt",
		CheckpointStep:       4000,
		Opponent:             "nexto",
		OpponentType:         "checkpoint",
		OpponentPath:         "/models/frozen/nexto.pt",
		Index:                7,
		CandidateSide:        "orange",
		KickoffWindowSeconds: 3.0,
	}

	game := GameFromRequest(req)
	assert.Equal(t, "nexto", game.Opponent.Name)
	assert.Equal(t, ladder.Checkpoint, game.Opponent.Type)
	assert.Equal(t, "/models/frozen/nexto.pt", game.Opponent.CheckpointPath)
	assert.Equal(t, SideOrange, game.Side)
	assert.Equal(t, 7, game.Index)
}
