package store

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/claudiup423/dominator"
	"github.com/claudiup423/dominator/elo"
	"github.com/claudiup423/dominator/eval"
)

// Redis key layout:
//
//	evals:<lineage>   list of evaluation JSON, newest first
//	elo:<lineage>     rating state JSON
//	lineages          set of lineage names
func evalsKey(lineage string) string { return fmt.Sprintf("evals:%s", lineage) }
func stateKey(lineage string) string { return fmt.Sprintf("elo:%s", lineage) }

const lineagesKey = "lineages"

// RedisOptions configures the Redis store connection.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379")
	URL string

	// TLS configuration for secure connections
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection establishment
	ConnectTimeout time.Duration

	// History caps the number of evaluations retained per lineage.
	// Zero means unlimited.
	History int
}

// Redis implements eval.Store on a Redis instance shared with the game
// queue.
type Redis struct {
	client  *redis.Client
	history int
}

// NewRedis creates a Redis-backed store and verifies the connection.
func NewRedis(opts RedisOptions) (*Redis, error) {
	const op = "store.NewRedis"

	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, dominator.NewConfigurationError(op, fmt.Errorf("parse Redis URL: %w", err))
	}
	redisOpts.TLSConfig = opts.TLS
	redisOpts.DialTimeout = opts.ConnectTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, dominator.NewStorageError(op, fmt.Errorf("connect to Redis: %w", err))
	}

	return &Redis{client: client, history: opts.History}, nil
}

// Commit writes the evaluation and rating state in one transaction, so
// a failure leaves both unwritten.
func (r *Redis) Commit(ctx context.Context, e *eval.CheckpointEvaluation, state *elo.State) error {
	const op = "Redis.Commit"

	evalJSON, err := json.Marshal(e)
	if err != nil {
		return dominator.NewInternalError(op, fmt.Errorf("marshal evaluation: %w", err))
	}
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return dominator.NewInternalError(op, fmt.Errorf("marshal state: %w", err))
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, evalsKey(e.Lineage), evalJSON)
	if r.history > 0 {
		pipe.LTrim(ctx, evalsKey(e.Lineage), 0, int64(r.history-1))
	}
	pipe.Set(ctx, stateKey(e.Lineage), stateJSON, 0)
	pipe.SAdd(ctx, lineagesKey, e.Lineage)

	if _, err := pipe.Exec(ctx); err != nil {
		return dominator.NewStorageError(op, err)
	}
	return nil
}

// Evaluations returns up to limit evaluations for a lineage, newest
// first.
func (r *Redis) Evaluations(ctx context.Context, lineage string, limit int) ([]*eval.CheckpointEvaluation, error) {
	const op = "Redis.Evaluations"

	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	items, err := r.client.LRange(ctx, evalsKey(lineage), 0, stop).Result()
	if err != nil {
		return nil, dominator.NewStorageError(op, err)
	}

	evals := make([]*eval.CheckpointEvaluation, 0, len(items))
	for _, item := range items {
		var e eval.CheckpointEvaluation
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, dominator.NewInternalError(op, fmt.Errorf("unmarshal evaluation: %w", err))
		}
		evals = append(evals, &e)
	}
	return evals, nil
}

// Latest returns the most recent evaluation for a lineage.
func (r *Redis) Latest(ctx context.Context, lineage string) (*eval.CheckpointEvaluation, error) {
	const op = "Redis.Latest"

	item, err := r.client.LIndex(ctx, evalsKey(lineage), 0).Result()
	if err == redis.Nil {
		return nil, dominator.NewNotFoundError(op, dominator.ErrEvaluationNotFound)
	}
	if err != nil {
		return nil, dominator.NewStorageError(op, err)
	}

	var e eval.CheckpointEvaluation
	if err := json.Unmarshal([]byte(item), &e); err != nil {
		return nil, dominator.NewInternalError(op, fmt.Errorf("unmarshal evaluation: %w", err))
	}
	return &e, nil
}

// State returns the lineage's rating state, or (nil, nil) when absent.
func (r *Redis) State(ctx context.Context, lineage string) (*elo.State, error) {
	const op = "Redis.State"

	item, err := r.client.Get(ctx, stateKey(lineage)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, dominator.NewStorageError(op, err)
	}

	var state elo.State
	if err := json.Unmarshal([]byte(item), &state); err != nil {
		return nil, dominator.NewInternalError(op, fmt.Errorf("unmarshal state: %w", err))
	}
	if state.TierRatings == nil {
		state.TierRatings = make(map[string]float64)
	}
	return &state, nil
}

// Lineages returns all lineages with at least one evaluation, sorted.
func (r *Redis) Lineages(ctx context.Context) ([]string, error) {
	const op = "Redis.Lineages"

	names, err := r.client.SMembers(ctx, lineagesKey).Result()
	if err != nil {
		return nil, dominator.NewStorageError(op, err)
	}
	sort.Strings(names)
	return names, nil
}

// Ping verifies the Redis connection, for health checks.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return dominator.NewStorageError("Redis.Ping", err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
