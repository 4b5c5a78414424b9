package eval

import (
	"math"

	"github.com/claudiup423/dominator/sim"
)

// AggregateTier folds per-game outcomes into a TierResult. Winner
// classification follows Outcome.Result: the outcome with the higher
// score wins, equal scores are a draw.
func AggregateTier(outcomes []sim.Outcome) TierResult {
	r := TierResult{Games: len(outcomes)}
	if r.Games == 0 {
		return r
	}

	var totalLength, totalQuality float64
	for _, o := range outcomes {
		switch o.Result() {
		case sim.WinnerCandidate:
			r.Wins++
		case sim.WinnerOpponent:
			r.Losses++
		default:
			r.Draws++
		}
		r.GoalsFor += o.GoalsFor
		r.GoalsAgainst += o.GoalsAgainst
		if o.KickoffConceded {
			r.KickoffGoalsConceded++
		}
		r.OwnGoals += o.OwnGoals
		r.OpenNetConcedes += o.OpenNetConcedes
		totalLength += o.LengthSeconds
		totalQuality += o.ShotQuality
	}

	r.Winrate = round4(float64(r.Wins) / float64(r.Games))
	r.GoalDiff = r.GoalsFor - r.GoalsAgainst
	r.AvgGameLengthSeconds = round2(totalLength / float64(r.Games))
	r.AvgShotQuality = round4(totalQuality / float64(r.Games))
	return r
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
