package eval

import (
	"fmt"
	"sort"

	"github.com/claudiup423/dominator/suite"
)

// Thresholds hold the built-in regression rule parameters.
type Thresholds struct {
	// RatingDrop flags when the updated rating fell by more than this
	// many points compared to the previous evaluation.
	RatingDrop float64 `json:"rating_drop"`

	// WinrateDrop flags when a tier's winrate fell by more than this
	// fraction compared to the previous evaluation of the same tier.
	WinrateDrop float64 `json:"winrate_drop"`

	// KickoffRateRise flags when a tier's kickoff concede rate rose
	// by more than this fraction over the previous evaluation.
	KickoffRateRise float64 `json:"kickoff_rate_rise"`

	// WinrateFloor flags any tier whose winrate sits below this
	// fraction, regardless of trend.
	WinrateFloor float64 `json:"winrate_floor"`
}

// ThresholdsFromSuite reads the regression thresholds out of a suite
// configuration, applying defaults for unset values.
func ThresholdsFromSuite(cfg *suite.Config) Thresholds {
	return Thresholds{
		RatingDrop:      cfg.GetRatingDrop(),
		WinrateDrop:     cfg.GetWinrateDrop(),
		KickoffRateRise: cfg.GetKickoffRateRise(),
		WinrateFloor:    cfg.GetWinrateFloor(),
	}
}

// Detector applies the built-in regression rules followed by any
// compiled custom rules. Detection is pure: it reads the two
// evaluations and produces reasons without touching storage.
type Detector struct {
	thresholds Thresholds
	rules      *ruleSet
}

// NewDetector compiles the custom rule expressions and returns a
// detector. An expression that fails to compile is a configuration
// error.
func NewDetector(thresholds Thresholds, customRules []string) (*Detector, error) {
	rules, err := compileRules(customRules)
	if err != nil {
		return nil, err
	}
	return &Detector{thresholds: thresholds, rules: rules}, nil
}

// Detect compares curr against prev and returns the list of triggered
// regression reasons in rule order. A nil prev means curr is the first
// evaluation of its lineage and no rule fires. The returned slice is
// non-nil and empty when nothing triggered.
func (d *Detector) Detect(prev, curr *CheckpointEvaluation) ([]string, error) {
	reasons := []string{}
	if prev == nil {
		return reasons, nil
	}

	if drop := prev.RatingAfter - curr.RatingAfter; drop > d.thresholds.RatingDrop {
		reasons = append(reasons, fmt.Sprintf("Elo rating dropped by %.1f", drop))
	}

	for _, tier := range sortedTiers(curr.Results) {
		cr := curr.Results[tier]
		pr, ok := prev.Results[tier]
		if !ok {
			continue
		}
		if drop := pr.Winrate - cr.Winrate; drop > d.thresholds.WinrateDrop {
			reasons = append(reasons, fmt.Sprintf(
				"%s win rate dropped from %.0f%% to %.0f%%",
				tier, pr.Winrate*100, cr.Winrate*100))
		}
	}

	for _, tier := range sortedTiers(curr.Results) {
		cr := curr.Results[tier]
		pr, ok := prev.Results[tier]
		if !ok {
			continue
		}
		if rise := cr.KickoffConcedeRate() - pr.KickoffConcedeRate(); rise > d.thresholds.KickoffRateRise {
			reasons = append(reasons, fmt.Sprintf(
				"%s kickoff concede rate increased from %.2f to %.2f",
				tier, pr.KickoffConcedeRate(), cr.KickoffConcedeRate()))
		}
	}

	for _, tier := range sortedTiers(curr.Results) {
		cr := curr.Results[tier]
		if cr.Winrate < d.thresholds.WinrateFloor {
			reasons = append(reasons, fmt.Sprintf(
				"%s win rate below floor (%.0f%% < %.0f%%)",
				tier, cr.Winrate*100, d.thresholds.WinrateFloor*100))
		}
	}

	custom, err := d.rules.evaluate(curr, prev)
	if err != nil {
		return nil, err
	}
	return append(reasons, custom...), nil
}

// sortedTiers returns tier names in lexical order so reason lists are
// deterministic across runs.
func sortedTiers(results map[string]TierResult) []string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
