package health

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claudiup423/dominator/queue"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestStoreCheck(t *testing.T) {
	ctx := context.Background()

	assert.True(t, StoreCheck(ctx, nil).IsUnhealthy())
	assert.True(t, StoreCheck(ctx, fakePinger{}).IsHealthy())

	status := StoreCheck(ctx, fakePinger{err: errors.New("connection refused")})
	assert.True(t, status.IsUnhealthy())
	assert.Contains(t, status.Details["error"], "connection refused")
}

func TestSimulatorCheck(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	qc, err := queue.NewRedisClient(queue.RedisOptions{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	defer qc.Close()

	t.Run("no heartbeat", func(t *testing.T) {
		status := SimulatorCheck(ctx, qc, "rocketsim")
		assert.True(t, status.IsUnhealthy())
	})

	t.Run("alive without workers", func(t *testing.T) {
		require.NoError(t, qc.Heartbeat(ctx, "rocketsim"))
		status := SimulatorCheck(ctx, qc, "rocketsim")
		assert.True(t, status.IsDegraded())
	})

	t.Run("alive with workers", func(t *testing.T) {
		require.NoError(t, qc.Heartbeat(ctx, "rocketsim"))
		require.NoError(t, qc.IncrementWorkerCount(ctx, "rocketsim"))
		status := SimulatorCheck(ctx, qc, "rocketsim")
		assert.True(t, status.IsHealthy())
	})

	t.Run("empty name", func(t *testing.T) {
		assert.True(t, SimulatorCheck(ctx, qc, "").IsUnhealthy())
	})

	t.Run("nil queue", func(t *testing.T) {
		assert.True(t, SimulatorCheck(ctx, nil, "rocketsim").IsUnhealthy())
	})
}

func TestRegistryCheckNil(t *testing.T) {
	status := RegistryCheck(context.Background(), nil, "rocketsim")
	assert.True(t, status.IsDegraded())
}

func TestTCPCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("reachable", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()

		status := TCPCheck(ctx, ln.Addr().String())
		assert.True(t, status.IsHealthy())
	})

	t.Run("unreachable", func(t *testing.T) {
		status := TCPCheck(ctx, "127.0.0.1:1")
		assert.True(t, status.IsUnhealthy())
	})

	t.Run("empty address", func(t *testing.T) {
		assert.True(t, TCPCheck(ctx, "").IsUnhealthy())
	})
}

func TestCheckpointCheck(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing", func(t *testing.T) {
		status := CheckpointCheck(filepath.Join(dir, "missing.zip"))
		assert.True(t, status.IsUnhealthy())
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.zip")
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		status := CheckpointCheck(path)
		assert.True(t, status.IsDegraded())
	})

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "cp.zip")
		require.NoError(t, os.WriteFile(path, []byte("weights"), 0o644))
		status := CheckpointCheck(path)
		assert.True(t, status.IsHealthy())
	})

	t.Run("directory", func(t *testing.T) {
		assert.True(t, CheckpointCheck(dir).IsUnhealthy())
	})

	t.Run("empty path", func(t *testing.T) {
		assert.True(t, CheckpointCheck("").IsUnhealthy())
	})
}

func TestCombine(t *testing.T) {
	t.Run("all healthy", func(t *testing.T) {
		status := Combine(Healthy("a"), Healthy("b"))
		assert.True(t, status.IsHealthy())
	})

	t.Run("degraded wins over healthy", func(t *testing.T) {
		status := Combine(Healthy("a"), Degraded("b", nil))
		assert.True(t, status.IsDegraded())
	})

	t.Run("unhealthy wins over degraded", func(t *testing.T) {
		status := Combine(Degraded("a", nil), Unhealthy("b", nil))
		assert.True(t, status.IsUnhealthy())
		assert.Equal(t, []string{"b"}, status.Details["failed_checks"])
	})

	t.Run("no checks", func(t *testing.T) {
		assert.True(t, Combine().IsHealthy())
	})
}
