package store

import (
	"context"
	"sort"
	"sync"

	"github.com/claudiup423/dominator"
	"github.com/claudiup423/dominator/elo"
	"github.com/claudiup423/dominator/eval"
)

// Memory is an in-memory eval.Store. Safe for concurrent use. Data is
// lost when the process exits.
type Memory struct {
	mu     sync.RWMutex
	evals  map[string][]*eval.CheckpointEvaluation // newest first
	states map[string]*elo.State
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		evals:  make(map[string][]*eval.CheckpointEvaluation),
		states: make(map[string]*elo.State),
	}
}

// Commit stores the evaluation and rating state under the evaluation's
// lineage.
func (m *Memory) Commit(_ context.Context, e *eval.CheckpointEvaluation, state *elo.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evals[e.Lineage] = append([]*eval.CheckpointEvaluation{e}, m.evals[e.Lineage]...)
	m.states[e.Lineage] = state.Clone()
	return nil
}

// Evaluations returns up to limit evaluations for a lineage, newest
// first.
func (m *Memory) Evaluations(_ context.Context, lineage string, limit int) ([]*eval.CheckpointEvaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	evals := m.evals[lineage]
	if limit > 0 && limit < len(evals) {
		evals = evals[:limit]
	}
	return append([]*eval.CheckpointEvaluation(nil), evals...), nil
}

// Latest returns the most recent evaluation for a lineage.
func (m *Memory) Latest(_ context.Context, lineage string) (*eval.CheckpointEvaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	evals := m.evals[lineage]
	if len(evals) == 0 {
		return nil, dominator.NewNotFoundError("Memory.Latest", dominator.ErrEvaluationNotFound)
	}
	return evals[0], nil
}

// State returns a copy of the lineage's rating state, or (nil, nil)
// when the lineage has never been evaluated.
func (m *Memory) State(_ context.Context, lineage string) (*elo.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[lineage]
	if !ok {
		return nil, nil
	}
	return state.Clone(), nil
}

// Lineages returns all lineages with at least one evaluation, sorted.
func (m *Memory) Lineages(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.evals))
	for name := range m.evals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
