// Package ladder models the frozen opponent ladder used as the evaluation
// yardstick. Tiers are fixed, versioned opponents: either scripted bots
// whose strength is pinned by convention, or frozen checkpoints whose
// rating is learned over time. The ladder is built once from suite
// configuration and never mutated during an evaluation.
package ladder

import (
	"fmt"

	"github.com/claudiup423/dominator/suite"
)

// Type identifies the kind of frozen opponent.
type Type string

const (
	// Scripted is a rule-based opponent with no learned weights.
	Scripted Type = "scripted"

	// Checkpoint is a frozen learned policy pinned at a fixed step.
	Checkpoint Type = "checkpoint"
)

// Tier is one frozen opponent in the ladder.
//
// A tier is an evaluation anchor only: it is never trained further, and
// its identity is stable across evaluations so that per-tier trends are
// comparable over time.
type Tier struct {
	// Name is the stable tier identifier.
	Name string `json:"name"`

	// Type is Scripted or Checkpoint.
	Type Type `json:"type"`

	// Description is shown on the dashboard tier list.
	Description string `json:"description,omitempty"`

	// FixedElo pins the tier's rating by convention. Nil for tiers whose
	// rating is learned from evaluation history.
	FixedElo *float64 `json:"fixed_elo,omitempty"`

	// CheckpointPath locates the frozen weights for checkpoint tiers.
	CheckpointPath string `json:"checkpoint_path,omitempty"`

	// Ready reports whether the tier has a usable checkpoint or script.
	Ready bool `json:"ready"`
}

// AnchorRating resolves the tier's effective rating for the Elo update.
// A pinned rating always wins; otherwise the tier's last-known learned
// rating is used, falling back to initialRating for tiers with no history.
func (t Tier) AnchorRating(learned map[string]float64, initialRating float64) float64 {
	if t.FixedElo != nil {
		return *t.FixedElo
	}
	if r, ok := learned[t.Name]; ok {
		return r
	}
	return initialRating
}

// Ladder is the ordered set of frozen tiers for one suite.
type Ladder struct {
	tiers []Tier
}

// FromSuite builds a ladder from suite tier configuration, preserving
// order. The suite is assumed to be validated; an unknown tier type here
// indicates a programming error and is rejected.
func FromSuite(cfg *suite.Config) (*Ladder, error) {
	tiers := make([]Tier, 0, len(cfg.Tiers))
	for _, tc := range cfg.Tiers {
		var typ Type
		switch tc.Type {
		case suite.TierScripted:
			typ = Scripted
		case suite.TierCheckpoint:
			typ = Checkpoint
		default:
			return nil, fmt.Errorf("tier %q: unknown type %q", tc.Name, tc.Type)
		}

		tiers = append(tiers, Tier{
			Name:           tc.Name,
			Type:           typ,
			Description:    tc.Description,
			FixedElo:       tc.FixedElo,
			CheckpointPath: tc.CheckpointPath,
			Ready:          tc.Ready,
		})
	}

	return &Ladder{tiers: tiers}, nil
}

// Tiers returns all tiers in ladder order.
func (l *Ladder) Tiers() []Tier {
	out := make([]Tier, len(l.tiers))
	copy(out, l.tiers)
	return out
}

// Ready returns the ordered subset of tiers that are ready to play.
func (l *Ladder) Ready() []Tier {
	out := make([]Tier, 0, len(l.tiers))
	for _, t := range l.tiers {
		if t.Ready {
			out = append(out, t)
		}
	}
	return out
}

// Lookup returns the tier with the given name.
func (l *Ladder) Lookup(name string) (Tier, bool) {
	for _, t := range l.tiers {
		if t.Name == name {
			return t, true
		}
	}
	return Tier{}, false
}

// Len returns the total number of tiers, ready or not.
func (l *Ladder) Len() int {
	return len(l.tiers)
}
