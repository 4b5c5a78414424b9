package eval

import (
	"context"

	"github.com/claudiup423/dominator/elo"
)

// Store persists evaluations and per-lineage rating state. The store
// package provides Redis and in-memory implementations.
type Store interface {
	// Commit atomically persists an evaluation together with the
	// updated rating state of its lineage. On error neither is
	// written.
	Commit(ctx context.Context, e *CheckpointEvaluation, state *elo.State) error

	// Evaluations returns up to limit evaluations for a lineage,
	// newest first. A limit of zero or less means no limit.
	Evaluations(ctx context.Context, lineage string, limit int) ([]*CheckpointEvaluation, error)

	// Latest returns the most recent evaluation for a lineage, or an
	// error wrapping ErrEvaluationNotFound when none exists.
	Latest(ctx context.Context, lineage string) (*CheckpointEvaluation, error)

	// State returns the rating state for a lineage, or (nil, nil)
	// when the lineage has never been evaluated.
	State(ctx context.Context, lineage string) (*elo.State, error)

	// Lineages returns the lineages that have at least one committed
	// evaluation, in lexical order.
	Lineages(ctx context.Context) ([]string, error)
}
