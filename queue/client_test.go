package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestClient creates a miniredis instance and returns a connected RedisClient.
func setupTestClient(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := NewRedisClient(RedisOptions{
		URL:            fmt.Sprintf("redis://%s", mr.Addr()),
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return client, mr
}

func sampleRequest() GameRequest {
	return GameRequest{
		JobID:                "job-123",
		GameID:               "game-0",
		Index:                0,
		Total:                50,
		Checkpoint:           "/checkpoints/step-4000.pt",
		CheckpointStep:       4000,
		Opponent:             "baseline",
		OpponentType:         "scripted",
		CandidateSide:        "blue",
		KickoffWindowSeconds: 3.0,
		SubmittedAt:          time.Now().UnixMilli(),
	}
}

func TestNewRedisClient(t *testing.T) {
	t.Run("successful connection", func(t *testing.T) {
		mr := miniredis.RunT(t)
		defer mr.Close()

		client, err := NewRedisClient(RedisOptions{
			URL: fmt.Sprintf("redis://%s", mr.Addr()),
		})
		require.NoError(t, err)
		require.NotNil(t, client)
		defer client.Close()
	})

	t.Run("connection failure", func(t *testing.T) {
		_, err := NewRedisClient(RedisOptions{
			URL:            "redis://localhost:1",
			ConnectTimeout: 100 * time.Millisecond,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect to Redis")
	})

	t.Run("invalid URL", func(t *testing.T) {
		_, err := NewRedisClient(RedisOptions{
			URL: "invalid://url",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse Redis URL")
	})
}

func TestPushPop(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	req := sampleRequest()
	require.NoError(t, client.Push(ctx, QueueName("rlgym"), req))

	popped, err := client.Pop(ctx, QueueName("rlgym"))
	require.NoError(t, err)
	require.NotNil(t, popped)

	assert.Equal(t, req.JobID, popped.JobID)
	assert.Equal(t, req.GameID, popped.GameID)
	assert.Equal(t, req.Opponent, popped.Opponent)
	assert.Equal(t, req.CandidateSide, popped.CandidateSide)
	assert.Equal(t, req.CheckpointStep, popped.CheckpointStep)
	assert.Equal(t, req.KickoffWindowSeconds, popped.KickoffWindowSeconds)
}

func TestPushPopOrdering(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		req := sampleRequest()
		req.GameID = fmt.Sprintf("game-%d", i)
		req.Index = i
		require.NoError(t, client.Push(ctx, QueueName("rlgym"), req))
	}

	// FIFO: LPUSH + BRPOP
	for i := 0; i < 3; i++ {
		popped, err := client.Pop(ctx, QueueName("rlgym"))
		require.NoError(t, err)
		assert.Equal(t, i, popped.Index)
	}
}

func TestPublishSubscribe(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results, err := client.Subscribe(ctx, ResultChannel("job-123"))
	require.NoError(t, err)

	want := GameResult{
		JobID:         "job-123",
		GameID:        "game-0",
		Winner:        "candidate",
		GoalsFor:      3,
		GoalsAgainst:  1,
		LengthSeconds: 312.4,
		WorkerID:      "sim-host-1",
	}
	require.NoError(t, client.Publish(ctx, ResultChannel("job-123"), want))

	select {
	case got := <-results:
		assert.Equal(t, want.GameID, got.GameID)
		assert.Equal(t, want.Winner, got.Winner)
		assert.Equal(t, want.GoalsFor, got.GoalsFor)
		assert.False(t, got.Failed())
	case <-ctx.Done():
		t.Fatal("timed out waiting for published result")
	}
}

func TestRegisterAndListSimulators(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	meta := SimulatorMeta{
		Name:        "rlgym",
		Version:     "1.2.0",
		Description: "Headless RocketSim batch runner",
		Engine:      "rocketsim",
		Tags:        []string{"1v1", "headless"},
	}
	require.NoError(t, client.RegisterSimulator(ctx, meta))

	sims, err := client.ListSimulators(ctx)
	require.NoError(t, err)
	require.Len(t, sims, 1)
	assert.Equal(t, "rlgym", sims[0].Name)
	assert.Equal(t, "rocketsim", sims[0].Engine)
	assert.Equal(t, []string{"1v1", "headless"}, sims[0].Tags)
}

func TestHeartbeat(t *testing.T) {
	client, mr := setupTestClient(t)
	ctx := context.Background()

	alive, err := client.Alive(ctx, "rlgym")
	require.NoError(t, err)
	assert.False(t, alive)

	require.NoError(t, client.Heartbeat(ctx, "rlgym"))

	alive, err = client.Alive(ctx, "rlgym")
	require.NoError(t, err)
	assert.True(t, alive)

	// Expire the heartbeat TTL
	mr.FastForward(31 * time.Second)

	alive, err = client.Alive(ctx, "rlgym")
	require.NoError(t, err)
	assert.False(t, alive)
}

func TestWorkerCount(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	count, err := client.GetWorkerCount(ctx, "rlgym")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, client.IncrementWorkerCount(ctx, "rlgym"))
	require.NoError(t, client.IncrementWorkerCount(ctx, "rlgym"))

	count, err = client.GetWorkerCount(ctx, "rlgym")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, client.DecrementWorkerCount(ctx, "rlgym"))

	count, err = client.GetWorkerCount(ctx, "rlgym")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
