package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func graphRules(edges map[string][]string) map[string]*GrammarRule {
	rules := make(map[string]*GrammarRule, len(edges))
	for id, prereqs := range edges {
		rules[id] = &GrammarRule{ID: id, Prerequisites: prereqs}
	}
	return rules
}

func TestCheckRuleGraphAcyclic(t *testing.T) {
	rules := graphRules(map[string][]string{
		"G-A": {"G-B"},
		"G-B": {"G-C"},
		"G-C": nil,
		"G-D": {"G-B", "G-C"},
	})
	assert.NoError(t, checkRuleGraph(rules))
}

func TestCheckRuleGraphSelfCycle(t *testing.T) {
	rules := graphRules(map[string][]string{
		"G-A": {"G-A"},
	})
	err := checkRuleGraph(rules)
	var gerr *GraphError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "cycle", gerr.Kind)
	assert.Equal(t, "G-A", gerr.RuleID)
}

func TestCheckRuleGraphLongCycle(t *testing.T) {
	rules := graphRules(map[string][]string{
		"G-A": {"G-B"},
		"G-B": {"G-C"},
		"G-C": {"G-A"},
	})
	err := checkRuleGraph(rules)
	var gerr *GraphError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "cycle", gerr.Kind)
}

func TestCheckRuleGraphOverrideCycle(t *testing.T) {
	rules := map[string]*GrammarRule{
		"G-A": {ID: "G-A", Overrides: []string{"G-B"}},
		"G-B": {ID: "G-B", Prerequisites: []string{"G-A"}},
	}
	err := checkRuleGraph(rules)
	var gerr *GraphError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "cycle", gerr.Kind)
}

func TestCheckRuleGraphConflictsDoNotFormEdges(t *testing.T) {
	// Mutual conflicts are legal; only prerequisites and overrides are
	// ordering edges.
	rules := map[string]*GrammarRule{
		"G-A": {ID: "G-A", Conflicts: []string{"G-B"}},
		"G-B": {ID: "G-B", Conflicts: []string{"G-A"}},
	}
	assert.NoError(t, checkRuleGraph(rules))
}

func TestCheckRuleGraphDanglingConflict(t *testing.T) {
	rules := map[string]*GrammarRule{
		"G-A": {ID: "G-A", Conflicts: []string{"G-GONE"}},
	}
	err := checkRuleGraph(rules)
	var gerr *GraphError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "dangling", gerr.Kind)
	assert.Equal(t, "G-GONE", gerr.Ref)
}
