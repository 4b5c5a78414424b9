package eval

import (
	"fmt"

	"github.com/claudiup423/dominator/suite"
)

// Gates are promotion criteria checked on every evaluation. Unlike
// regression rules they look only at the current evaluation, so a
// first evaluation can fail its gates.
type Gates struct {
	// MinWinRate is the minimum overall winrate across all tiers.
	MinWinRate float64 `json:"min_win_rate"`

	// MaxOwnGoalRate caps own goals per game across all tiers.
	MaxOwnGoalRate float64 `json:"max_own_goal_rate"`

	// MaxOpenNetConcedeRate caps open net concessions per game across
	// all tiers.
	MaxOpenNetConcedeRate float64 `json:"max_open_net_concede_rate"`
}

// GatesFromSuite reads gate thresholds out of a suite configuration,
// applying defaults for unset values.
func GatesFromSuite(cfg *suite.Config) Gates {
	return Gates{
		MinWinRate:            cfg.GetMinWinRate(),
		MaxOwnGoalRate:        cfg.GetMaxOwnGoalRate(),
		MaxOpenNetConcedeRate: cfg.GetMaxOpenNetConcedeRate(),
	}
}

// Check returns the list of gate failures for an evaluation, empty
// when every gate passes.
func (g Gates) Check(e *CheckpointEvaluation) []string {
	failures := []string{}

	games := e.TotalGames()
	if games == 0 {
		return failures
	}

	if wr := e.OverallWinrate(); wr < g.MinWinRate {
		failures = append(failures, fmt.Sprintf(
			"win rate %.2f below required %.2f", wr, g.MinWinRate))
	}

	var ownGoals, openNet int
	for _, r := range e.Results {
		ownGoals += r.OwnGoals
		openNet += r.OpenNetConcedes
	}
	if rate := float64(ownGoals) / float64(games); rate > g.MaxOwnGoalRate {
		failures = append(failures, fmt.Sprintf(
			"own goal rate %.3f above limit %.3f", rate, g.MaxOwnGoalRate))
	}
	if rate := float64(openNet) / float64(games); rate > g.MaxOpenNetConcedeRate {
		failures = append(failures, fmt.Sprintf(
			"open net concede rate %.3f above limit %.3f", rate, g.MaxOpenNetConcedeRate))
	}
	return failures
}
