package eval

// TierDelta holds candidate-minus-base differences for one tier.
type TierDelta struct {
	Winrate            float64 `json:"winrate"`
	GoalDiff           int     `json:"goal_diff"`
	KickoffConcedeRate float64 `json:"kickoff_concede_rate"`
	AvgShotQuality     float64 `json:"avg_shot_quality"`
}

// Comparison is the diff between two evaluations, typically two
// checkpoints of the same lineage.
type Comparison struct {
	Base      *CheckpointEvaluation `json:"base"`
	Candidate *CheckpointEvaluation `json:"candidate"`

	// RatingDelta is candidate rating minus base rating.
	RatingDelta float64 `json:"rating_delta"`

	// Tiers holds per-tier deltas for tiers present in both
	// evaluations.
	Tiers map[string]TierDelta `json:"tiers"`
}

// Compare diffs candidate against base. Tiers missing from either
// evaluation are skipped rather than treated as zero.
func Compare(base, candidate *CheckpointEvaluation) Comparison {
	cmp := Comparison{
		Base:        base,
		Candidate:   candidate,
		RatingDelta: round4(candidate.RatingAfter - base.RatingAfter),
		Tiers:       make(map[string]TierDelta),
	}
	for name, cr := range candidate.Results {
		br, ok := base.Results[name]
		if !ok {
			continue
		}
		cmp.Tiers[name] = TierDelta{
			Winrate:            round4(cr.Winrate - br.Winrate),
			GoalDiff:           cr.GoalDiff - br.GoalDiff,
			KickoffConcedeRate: round4(cr.KickoffConcedeRate() - br.KickoffConcedeRate()),
			AvgShotQuality:     round4(cr.AvgShotQuality - br.AvgShotQuality),
		}
	}
	return cmp
}
