package elo

import "time"

// Sample is one point in a lineage's rating history.
type Sample struct {
	// Step is the checkpoint training step the rating was computed for.
	Step int64 `json:"step"`

	// Rating is the dominance rating after that evaluation.
	Rating float64 `json:"rating"`

	// Timestamp is when the evaluation completed.
	Timestamp time.Time `json:"timestamp"`
}

// State is the running rating of a candidate lineage.
//
// It is the only mutable entity in the evaluation data model. The engine
// holds a per-lineage lock for the whole read-update-commit cycle, so
// State itself carries no synchronization: callers must guarantee
// single-writer access.
type State struct {
	// DominanceRating is the current rating of the lineage, not of any
	// single checkpoint: it is the running rating of "the bot" as it
	// improves over time.
	DominanceRating float64 `json:"dominance_rating"`

	// KFactor is the Elo update sensitivity constant.
	KFactor float64 `json:"k_factor"`

	// TierRatings holds last-known learned ratings for tiers without a
	// pinned fixed_elo.
	TierRatings map[string]float64 `json:"tier_ratings,omitempty"`

	// History is the append-only rating trajectory, one sample per
	// evaluation, oldest first.
	History []Sample `json:"history"`
}

// NewState creates a lineage rating state at the initial rating.
func NewState(initialRating, kFactor float64) *State {
	return &State{
		DominanceRating: initialRating,
		KFactor:         kFactor,
		TierRatings:     make(map[string]float64),
	}
}

// Apply commits one evaluation's rating to the state: the dominance
// rating is replaced and a history sample is appended. Called exactly
// once per evaluation, under the engine's lineage lock.
func (s *State) Apply(step int64, rating float64, at time.Time) {
	s.DominanceRating = rating
	s.History = append(s.History, Sample{
		Step:      step,
		Rating:    rating,
		Timestamp: at,
	})
}

// Clone returns a deep copy, safe to hand to readers while the engine
// keeps mutating the original.
func (s *State) Clone() *State {
	out := &State{
		DominanceRating: s.DominanceRating,
		KFactor:         s.KFactor,
		TierRatings:     make(map[string]float64, len(s.TierRatings)),
		History:         make([]Sample, len(s.History)),
	}
	for k, v := range s.TierRatings {
		out.TierRatings[k] = v
	}
	copy(out.History, s.History)
	return out
}
