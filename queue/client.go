package queue

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client defines the interface for interacting with Redis-based game queues.
type Client interface {
	// Push adds a game request to the end of a queue (LPUSH).
	Push(ctx context.Context, queue string, req GameRequest) error

	// Pop removes and returns a game request from the front of a queue (BRPOP).
	// Blocks until a request is available or context is cancelled.
	Pop(ctx context.Context, queue string) (*GameRequest, error)

	// Publish sends a game result to a pub/sub channel.
	Publish(ctx context.Context, channel string, result GameResult) error

	// Subscribe creates a subscription to a pub/sub channel.
	// Returns a channel that receives results until the subscription is closed.
	Subscribe(ctx context.Context, channel string) (<-chan GameResult, error)

	// RegisterSimulator writes simulator metadata to Redis and adds to the available set.
	RegisterSimulator(ctx context.Context, meta SimulatorMeta) error

	// ListSimulators returns metadata for all registered simulators.
	ListSimulators(ctx context.Context) ([]SimulatorMeta, error)

	// Heartbeat updates the health key for a simulator with a 30s TTL.
	Heartbeat(ctx context.Context, simulator string) error

	// Alive reports whether a simulator has a live heartbeat.
	Alive(ctx context.Context, simulator string) (bool, error)

	// GetWorkerCount returns the current worker count for a simulator.
	GetWorkerCount(ctx context.Context, simulator string) (int, error)

	// IncrementWorkerCount increments the worker count for a simulator.
	IncrementWorkerCount(ctx context.Context, simulator string) error

	// DecrementWorkerCount decrements the worker count for a simulator.
	DecrementWorkerCount(ctx context.Context, simulator string) error

	// Close closes the Redis connection.
	Close() error
}

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379")
	URL string

	// TLS configuration for secure connections
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection establishment
	ConnectTimeout time.Duration

	// ReadTimeout is the maximum time to wait for read operations
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait for write operations
	WriteTimeout time.Duration
}

// RedisClient implements the Client interface using go-redis/v9.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient creates a new Redis queue client with the given options.
func NewRedisClient(opts RedisOptions) (*RedisClient, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}

	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 30 * time.Second
	}

	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisOpts.TLSConfig = opts.TLS
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.ReadTimeout = opts.ReadTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// Push adds a game request to the end of a queue.
func (c *RedisClient) Push(ctx context.Context, queue string, req GameRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal game request: %w", err)
	}

	if err := c.client.LPush(ctx, queue, data).Err(); err != nil {
		return fmt.Errorf("failed to push to queue %s: %w", queue, err)
	}

	return nil
}

// Pop removes and returns a game request from the front of a queue.
// Blocks until a request is available or context is cancelled.
func (c *RedisClient) Pop(ctx context.Context, queue string) (*GameRequest, error) {
	// BRPOP returns [queue_name, value] or empty if timeout
	result, err := c.client.BRPop(ctx, 0, queue).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop from queue %s: %w", queue, err)
	}

	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP result length: %d", len(result))
	}

	var req GameRequest
	if err := json.Unmarshal([]byte(result[1]), &req); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game request: %w", err)
	}

	return &req, nil
}

// Publish sends a game result to a pub/sub channel.
func (c *RedisClient) Publish(ctx context.Context, channel string, result GameResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal game result: %w", err)
	}

	if err := c.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to channel %s: %w", channel, err)
	}

	return nil
}

// Subscribe creates a subscription to a pub/sub channel.
func (c *RedisClient) Subscribe(ctx context.Context, channel string) (<-chan GameResult, error) {
	pubsub := c.client.Subscribe(ctx, channel)

	// Wait for subscription confirmation
	if _, err := pubsub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("failed to subscribe to channel %s: %w", channel, err)
	}

	resultChan := make(chan GameResult)

	go func() {
		defer close(resultChan)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var result GameResult
				if err := json.Unmarshal([]byte(msg.Payload), &result); err != nil {
					// Skip malformed payloads
					continue
				}

				select {
				case resultChan <- result:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return resultChan, nil
}

// RegisterSimulator writes simulator metadata to Redis and adds to the available set.
func (c *RedisClient) RegisterSimulator(ctx context.Context, meta SimulatorMeta) error {
	tagsJSON, err := json.Marshal(meta.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	// Build a flat map for HSET - all values must be strings for go-redis
	metaMap := map[string]string{
		"name":         meta.Name,
		"version":      meta.Version,
		"description":  meta.Description,
		"engine":       meta.Engine,
		"tags":         string(tagsJSON),
		"worker_count": strconv.Itoa(meta.WorkerCount),
	}

	metaKey := fmt.Sprintf("sim:%s:meta", meta.Name)
	args := make([]interface{}, 0, len(metaMap)*2)
	for k, v := range metaMap {
		args = append(args, k, v)
	}
	if err := c.client.HSet(ctx, metaKey, args...).Err(); err != nil {
		return fmt.Errorf("failed to set simulator metadata: %w", err)
	}

	if err := c.client.SAdd(ctx, "sims:available", meta.Name).Err(); err != nil {
		return fmt.Errorf("failed to add simulator to available set: %w", err)
	}

	return nil
}

// ListSimulators returns metadata for all registered simulators.
func (c *RedisClient) ListSimulators(ctx context.Context) ([]SimulatorMeta, error) {
	names, err := c.client.SMembers(ctx, "sims:available").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get available simulators: %w", err)
	}

	sims := make([]SimulatorMeta, 0, len(names))

	for _, name := range names {
		metaKey := fmt.Sprintf("sim:%s:meta", name)
		metaMap, err := c.client.HGetAll(ctx, metaKey).Result()
		if err != nil || len(metaMap) == 0 {
			// Skip simulators with missing metadata
			continue
		}

		meta := SimulatorMeta{
			Name:        metaMap["name"],
			Version:     metaMap["version"],
			Description: metaMap["description"],
			Engine:      metaMap["engine"],
		}

		if tagsStr, ok := metaMap["tags"]; ok {
			var tags []string
			if err := json.Unmarshal([]byte(tagsStr), &tags); err == nil {
				meta.Tags = tags
			}
		}

		if countStr, ok := metaMap["worker_count"]; ok {
			if count, err := strconv.Atoi(countStr); err == nil {
				meta.WorkerCount = count
			}
		}

		sims = append(sims, meta)
	}

	return sims, nil
}

// Heartbeat updates the health key for a simulator with a 30s TTL.
func (c *RedisClient) Heartbeat(ctx context.Context, simulator string) error {
	healthKey := fmt.Sprintf("sim:%s:health", simulator)
	if err := c.client.Set(ctx, healthKey, "ok", 30*time.Second).Err(); err != nil {
		return fmt.Errorf("failed to set heartbeat for simulator %s: %w", simulator, err)
	}
	return nil
}

// Alive reports whether a simulator has a live heartbeat.
func (c *RedisClient) Alive(ctx context.Context, simulator string) (bool, error) {
	healthKey := fmt.Sprintf("sim:%s:health", simulator)
	_, err := c.client.Get(ctx, healthKey).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check heartbeat for simulator %s: %w", simulator, err)
	}
	return true, nil
}

// GetWorkerCount returns the current worker count for a simulator.
func (c *RedisClient) GetWorkerCount(ctx context.Context, simulator string) (int, error) {
	workerKey := fmt.Sprintf("sim:%s:workers", simulator)
	countStr, err := c.client.Get(ctx, workerKey).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get worker count for simulator %s: %w", simulator, err)
	}

	count, err := strconv.Atoi(countStr)
	if err != nil {
		return 0, fmt.Errorf("invalid worker count value: %w", err)
	}

	return count, nil
}

// IncrementWorkerCount increments the worker count for a simulator.
func (c *RedisClient) IncrementWorkerCount(ctx context.Context, simulator string) error {
	workerKey := fmt.Sprintf("sim:%s:workers", simulator)
	if err := c.client.Incr(ctx, workerKey).Err(); err != nil {
		return fmt.Errorf("failed to increment worker count for simulator %s: %w", simulator, err)
	}
	return nil
}

// DecrementWorkerCount decrements the worker count for a simulator.
func (c *RedisClient) DecrementWorkerCount(ctx context.Context, simulator string) error {
	workerKey := fmt.Sprintf("sim:%s:workers", simulator)
	if err := c.client.Decr(ctx, workerKey).Err(); err != nil {
		return fmt.Errorf("failed to decrement worker count for simulator %s: %w", simulator, err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisClient) Close() error {
	return c.client.Close()
}
