package resource

import "fmt"

// LoadError reports a malformed or incomplete resource document. Load-time
// errors are fatal: the store is never partially constructed.
type LoadError struct {
	Doc string // "phonology", "morphology", "grammar", or "lexicon"
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("resource: loading %s document: %v", e.Doc, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// GraphError reports a dangling or cyclic reference in the grammar rule
// graph (prerequisites, conflicts, overrides).
type GraphError struct {
	RuleID string // rule holding the bad reference, or a cycle member
	Kind   string // "dangling" or "cycle"
	Ref    string // the referenced rule id (dangling only)
}

func (e *GraphError) Error() string {
	if e.Kind == "cycle" {
		return fmt.Sprintf("resource: rule graph cycle through %q", e.RuleID)
	}
	return fmt.Sprintf("resource: rule %q references undefined rule %q", e.RuleID, e.Ref)
}
