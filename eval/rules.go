package eval

import (
	"encoding/json"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/claudiup423/dominator"
)

// ruleSet holds compiled custom regression rules. Each rule is a CEL
// expression evaluated against two variables:
//
//	current   the evaluation being judged
//	previous  the prior evaluation of the same lineage
//
// Both are the JSON shape of CheckpointEvaluation. A rule that
// evaluates to true adds a regression reason. Example:
//
//	current.results["tier_hoarder"].winrate < 0.5
type ruleSet struct {
	exprs    []string
	programs []cel.Program
}

func compileRules(exprs []string) (*ruleSet, error) {
	rs := &ruleSet{exprs: exprs}
	if len(exprs) == 0 {
		return rs, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("current", cel.DynType),
		cel.Variable("previous", cel.DynType),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, dominator.NewInternalError("compileRules", err)
	}

	for _, expr := range exprs {
		ast, iss := env.Compile(expr)
		if iss.Err() != nil {
			return nil, dominator.NewConfigurationError("compileRules",
				fmt.Errorf("rule %q: %w", expr, iss.Err()))
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, dominator.NewConfigurationError("compileRules",
				fmt.Errorf("rule %q: %w", expr, err))
		}
		rs.programs = append(rs.programs, prg)
	}
	return rs, nil
}

// evaluate runs every rule against the pair of evaluations and returns
// the reasons for rules that triggered, in configuration order.
func (rs *ruleSet) evaluate(curr, prev *CheckpointEvaluation) ([]string, error) {
	if len(rs.programs) == 0 {
		return nil, nil
	}

	currMap, err := evaluationMap(curr)
	if err != nil {
		return nil, err
	}
	prevMap, err := evaluationMap(prev)
	if err != nil {
		return nil, err
	}

	var reasons []string
	for i, prg := range rs.programs {
		out, _, err := prg.Eval(map[string]any{
			"current":  currMap,
			"previous": prevMap,
		})
		if err != nil {
			return nil, dominator.NewInternalError("ruleSet.evaluate",
				fmt.Errorf("rule %q: %w", rs.exprs[i], err))
		}
		if triggered, ok := out.Value().(bool); ok && triggered {
			reasons = append(reasons, fmt.Sprintf("custom rule triggered: %s", rs.exprs[i]))
		}
	}
	return reasons, nil
}

// evaluationMap converts an evaluation to the generic map shape CEL
// rules index into, matching the JSON field names.
func evaluationMap(e *CheckpointEvaluation) (map[string]any, error) {
	if e == nil {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, dominator.NewInternalError("evaluationMap", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, dominator.NewInternalError("evaluationMap", err)
	}
	return m, nil
}
