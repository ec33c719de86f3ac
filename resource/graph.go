package resource

import "sort"

// checkRuleGraph validates the prerequisite/conflict/override relations of
// the grammar rules: every referenced rule id must exist, and the directed
// graph formed by prerequisites and overrides must be acyclic. Running the
// check once at load turns a potential apply-time hazard into a load-time
// guarantee.
func checkRuleGraph(rules map[string]*GrammarRule) error {
	ids := make([]string, 0, len(rules))
	for id := range rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		r := rules[id]
		for _, refs := range [][]string{r.Prerequisites, r.Conflicts, r.Overrides} {
			for _, ref := range refs {
				if _, ok := rules[ref]; !ok {
					return &GraphError{RuleID: id, Kind: "dangling", Ref: ref}
				}
			}
		}
	}

	// Three-color DFS over prerequisite and override edges.
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(rules))
	var visit func(id string) *GraphError
	visit = func(id string) *GraphError {
		color[id] = gray
		r := rules[id]
		for _, edges := range [][]string{r.Prerequisites, r.Overrides} {
			for _, next := range edges {
				switch color[next] {
				case gray:
					return &GraphError{RuleID: next, Kind: "cycle"}
				case white:
					if err := visit(next); err != nil {
						return err
					}
				}
			}
		}
		color[id] = black
		return nil
	}
	for _, id := range ids {
		if color[id] == white {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}
