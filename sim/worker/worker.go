package worker

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	healthgrpc "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/claudiup423/dominator/queue"
	"github.com/claudiup423/dominator/registry"
	"github.com/claudiup423/dominator/sim"
)

// HealthService is the gRPC health service name reported by simulation hosts.
const HealthService = "dominator.sim"

// Options configures the worker behavior.
type Options struct {
	// RedisURL is the Redis connection string (e.g., "redis://localhost:6379")
	RedisURL string

	// Meta describes the simulator this host runs. Meta.Name is required;
	// it selects the queue games are popped from.
	Meta queue.SimulatorMeta

	// Concurrency is the number of games played in parallel on this host.
	// Default: 2 (game engines are usually the bottleneck, not I/O).
	Concurrency int

	// ShutdownTimeout is the time to wait for in-flight games to finish
	// on graceful shutdown. Default: 30s.
	ShutdownTimeout time.Duration

	// HealthAddr is the listen address for the gRPC health endpoint
	// (e.g., ":50070"). Empty disables the health server.
	HealthAddr string

	// Logger is the structured logger for worker operations.
	// If nil, a default JSON logger is created.
	Logger *slog.Logger
}

// Run starts the worker loop for the given simulation engine.
// It connects to Redis, registers the simulator, starts N worker
// goroutines, maintains a heartbeat, serves the gRPC health endpoint, and
// handles graceful shutdown on SIGTERM/SIGINT.
//
// Each worker goroutine:
//  1. Pops a game request from the simulator's queue
//  2. Plays the game on the local engine
//  3. Publishes the result to the job's result channel
//
// The function blocks until a shutdown signal is received or an error
// occurs. On shutdown, it waits for in-flight games up to ShutdownTimeout.
func Run(engine sim.Simulator, opts Options) error {
	if opts.Meta.Name == "" {
		return fmt.Errorf("simulator name is required")
	}
	if opts.RedisURL == "" {
		opts.RedisURL = "redis://localhost:6379"
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 2
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	workerID := generateWorkerID()

	logger := opts.Logger.With(
		"simulator", opts.Meta.Name,
		"version", opts.Meta.Version,
		"worker_id", workerID,
	)

	logger.Info("simulation worker starting",
		"concurrency", opts.Concurrency,
		"redis_url", opts.RedisURL,
	)

	redisClient, err := queue.NewRedisClient(queue.RedisOptions{
		URL: opts.RedisURL,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := redisClient.RegisterSimulator(ctx, opts.Meta); err != nil {
		logger.Error("failed to register simulator", "error", err)
		return fmt.Errorf("failed to register simulator: %w", err)
	}
	logger.Info("simulator registered")

	if err := redisClient.IncrementWorkerCount(ctx, opts.Meta.Name); err != nil {
		logger.Error("failed to increment worker count", "error", err)
	}

	// Decrement the worker count on exit, even when ctx is already gone
	defer func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cleanupCancel()
		if err := redisClient.DecrementWorkerCount(cleanupCtx, opts.Meta.Name); err != nil {
			logger.Error("failed to decrement worker count", "error", err)
		}
	}()

	// Heartbeat
	heartbeatCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go runHeartbeat(heartbeatCtx, redisClient, opts.Meta.Name, logger)

	// gRPC health endpoint for registry probes
	if opts.HealthAddr != "" {
		stopHealth, err := serveHealth(opts.HealthAddr, logger)
		if err != nil {
			return fmt.Errorf("failed to start health server: %w", err)
		}
		defer stopHealth()
	}

	// Optional etcd registry presence
	if reg, err := registry.NewClientFromEnv(); err != nil {
		logger.Warn("registry unavailable, continuing without discovery", "error", err)
	} else if reg != nil {
		info := registry.SimulatorInfo{
			Name:       opts.Meta.Name,
			Version:    opts.Meta.Version,
			InstanceID: workerID,
			Endpoint:   opts.HealthAddr,
			Capacity:   opts.Concurrency,
			StartedAt:  time.Now().UTC(),
		}
		if err := reg.Register(ctx, info); err != nil {
			logger.Warn("failed to register with etcd", "error", err)
		} else {
			defer func() {
				deregCtx, deregCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer deregCancel()
				_ = reg.Deregister(deregCtx, info)
				_ = reg.Close()
			}()
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	var wg sync.WaitGroup
	queueName := queue.QueueName(opts.Meta.Name)

	for i := 0; i < opts.Concurrency; i++ {
		wg.Add(1)
		go func(workerNum int) {
			defer wg.Done()
			workerLoop(ctx, workerNum, engine, redisClient, queueName, workerID, logger)
		}(i)
	}

	logger.Info("simulation worker started",
		"workers", opts.Concurrency,
		"queue", queueName,
	)

	sig := <-sigChan
	logger.Info("received signal, initiating graceful shutdown", "signal", sig)

	cancel()

	doneChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		logger.Info("worker shutdown complete")
	case <-time.After(opts.ShutdownTimeout):
		logger.Warn("worker shutdown timeout exceeded", "timeout", opts.ShutdownTimeout)
	}

	return nil
}

// serveHealth starts the stock gRPC health service on addr and returns a
// stop function.
func serveHealth(addr string, logger *slog.Logger) (func(), error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := grpc.NewServer()
	hs := healthgrpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus(HealthService, healthpb.HealthCheckResponse_SERVING)

	go func() {
		if err := srv.Serve(lis); err != nil {
			logger.Error("health server stopped", "error", err)
		}
	}()

	logger.Info("health endpoint listening", "addr", addr)

	return func() {
		hs.SetServingStatus(HealthService, healthpb.HealthCheckResponse_NOT_SERVING)
		srv.GracefulStop()
	}, nil
}

// runHeartbeat sends periodic heartbeats to keep the simulator visible.
// It runs in a goroutine and stops when the context is cancelled.
func runHeartbeat(ctx context.Context, client queue.Client, simulator string, logger *slog.Logger) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	logger.Debug("heartbeat goroutine started")

	for {
		select {
		case <-ctx.Done():
			logger.Debug("heartbeat goroutine stopped")
			return
		case <-ticker.C:
			if err := client.Heartbeat(ctx, simulator); err != nil {
				// Heartbeat failures are transient, keep quiet
				logger.Debug("heartbeat failed", "error", err)
			}
		}
	}
}

// workerLoop is the main loop for a single worker goroutine.
// It continuously pops game requests, plays them, and publishes results
// until the context is cancelled.
func workerLoop(ctx context.Context, workerNum int, engine sim.Simulator, client queue.Client, queueName, workerID string, logger *slog.Logger) {
	logger = logger.With("worker_num", workerNum)
	logger.Debug("worker loop started", "queue", queueName)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("worker loop stopped", "reason", "context_cancelled")
			return
		default:
		}

		req, err := client.Pop(ctx, queueName)
		if err != nil {
			if ctx.Err() != nil {
				logger.Debug("worker loop stopped", "reason", "context_error")
				return
			}
			logger.Error("failed to pop game request", "error", err)
			continue
		}

		if req == nil {
			continue
		}

		logger.Info("received game request",
			"job_id", req.JobID,
			"game_id", req.GameID,
			"opponent", req.Opponent,
			"index", req.Index,
		)

		result := playGame(ctx, engine, *req, workerID, logger)

		if err := client.Publish(ctx, queue.ResultChannel(req.JobID), result); err != nil {
			logger.Error("failed to publish game result", "error", err)
		}
	}
}

// playGame plays a single game request and returns a result.
// Engine errors are reported in the result rather than returned, so the
// evaluator always hears back about every dispatched game.
func playGame(ctx context.Context, engine sim.Simulator, req queue.GameRequest, workerID string, logger *slog.Logger) queue.GameResult {
	startedAt := time.Now().UnixMilli()

	result := queue.GameResult{
		JobID:     req.JobID,
		GameID:    req.GameID,
		Index:     req.Index,
		WorkerID:  workerID,
		StartedAt: startedAt,
	}

	outcome, err := engine.PlayGame(ctx, sim.GameFromRequest(req))
	result.CompletedAt = time.Now().UnixMilli()

	if err != nil {
		result.Error = err.Error()
		logger.Error("game failed", "game_id", req.GameID, "error", err)
		return result
	}

	result.Winner = string(outcome.Result())
	result.GoalsFor = outcome.GoalsFor
	result.GoalsAgainst = outcome.GoalsAgainst
	result.LengthSeconds = outcome.LengthSeconds
	result.KickoffConceded = outcome.KickoffConceded
	result.OwnGoals = outcome.OwnGoals
	result.OpenNetConcedes = outcome.OpenNetConcedes
	result.ShotQuality = outcome.ShotQuality

	return result
}

// generateWorkerID builds a unique worker identifier from hostname, PID
// and a random suffix.
func generateWorkerID() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s-%d-%s", hostname, os.Getpid(), uuid.NewString()[:8])
}
