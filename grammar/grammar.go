// Package grammar applies ordered, conditionally-triggered syntactic
// transformation rules over a sentence of analyzed tokens.
//
// Rule application is a single deterministic pass: candidate rules are the
// bidirectional rules plus those matching the requested translation
// direction, sorted by priority descending then rule id ascending. Each
// candidate is matched at most once; an applied rule owns its span, and
// lower-priority rules targeting an overlapping span are skipped. A rule
// is also skipped when a prerequisite has not applied in this pass, when a
// conflicting rule already applied to an overlapping span, or when an
// already-applied rule lists it in overrides. Transformations never fail:
// a rule either matches and applies or is skipped, so Apply is total over
// well-formed input.
//
// Apply never reconsiders a rule after a transformation (fixpoint-free),
// which guarantees termination. All methods are safe for concurrent use.
package grammar

import (
	"fmt"
	"strings"

	"github.com/manju-nlp/manchu-nlp/morph"
	"github.com/manju-nlp/manchu-nlp/resource"
)

// Direction selects which translation direction rules apply in.
type Direction int

const (
	SourceToTarget Direction = iota
	TargetToSource
)

// String returns the document-level name of the direction.
func (d Direction) String() string {
	switch d {
	case SourceToTarget:
		return "source_to_target"
	case TargetToSource:
		return "target_to_source"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// matchesDoc reports whether a rule's raw direction string selects this
// direction. An empty document value means source_to_target.
func (d Direction) matchesDoc(raw string) bool {
	if raw == "" {
		raw = "source_to_target"
	}
	return raw == d.String()
}

// Application records one applied rule: the span it transformed, in the
// coordinates of the final token arrangement, and the operations
// performed.
type Application struct {
	RuleID          string   `json:"rule_id"`
	Priority        int      `json:"priority"`
	Span            [2]int   `json:"span"` // [start, end)
	Transformations []string `json:"transformations"`
}

// ParseResult is the engine's externally visible output: the final token
// arrangement, the application log, and any non-fatal warnings. Consumers
// only read it.
type ParseResult struct {
	Tokens       []morph.Token   `json:"tokens"`
	Applications []Application   `json:"applications"`
	Warnings     []morph.Warning `json:"warnings,omitempty"`
	Confidence   float64         `json:"confidence"`
}

// Engine applies grammar rules from an immutable resource store.
type Engine struct {
	store           *resource.Store
	maxApplications int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxApplications bounds the number of rule applications per sentence.
// Zero means no bound beyond the rule set itself.
func WithMaxApplications(n int) Option {
	return func(e *Engine) { e.maxApplications = n }
}

// NewEngine builds a rule engine over an immutable store.
func NewEngine(store *resource.Store, opts ...Option) *Engine {
	e := &Engine{store: store}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply runs one rule pass over a sentence. The input slice is not
// modified; sentence boundaries are hard span limits, so callers must pass
// one sentence at a time. An empty token sequence yields an empty result.
func (e *Engine) Apply(tokens []morph.Token, dir Direction) ParseResult {
	result := ParseResult{
		Tokens:     cloneTokens(tokens),
		Confidence: 1.0,
	}
	if len(tokens) == 0 {
		return result
	}

	var apps []*Application
	applied := make(map[string]*Application)
	overridden := make(map[string]bool)

	for _, rule := range e.store.GrammarRules() {
		if e.maxApplications > 0 && len(apps) >= e.maxApplications {
			break
		}
		if !rule.Bidirectional && !dir.matchesDoc(rule.Direction) {
			continue
		}
		if overridden[rule.ID] {
			continue
		}
		if !e.conditionsHold(rule, result.Tokens) {
			continue
		}
		if !prerequisitesMet(rule, applied) {
			continue
		}

		span, pattern := matchRule(rule, result.Tokens)
		if pattern == nil {
			continue
		}

		// A declared conflict on an overlapping span is an expected
		// resolution, skipped without a warning.
		if conflictsWithApplied(rule, applied, span) {
			continue
		}

		// First-applied-wins span ownership: a span transformed by a
		// higher-priority rule is not re-matched.
		if owner := overlappingApplication(applied, span); owner != nil {
			result.Warnings = append(result.Warnings, morph.Warning{
				Code:    morph.WarnRuleConflict,
				Message: fmt.Sprintf("rule %s skipped: span overlaps %s", rule.ID, owner.RuleID),
			})
			continue
		}

		app := &Application{
			RuleID:   rule.ID,
			Priority: rule.Priority,
		}
		for _, t := range rule.Transformations {
			var insertedAt int
			result.Tokens, span, insertedAt = applyTransformation(t, result.Tokens, span)
			if insertedAt >= 0 {
				shiftSpans(apps, insertedAt)
			}
			app.Transformations = append(app.Transformations, t.Op)
		}
		app.Span = span

		apps = append(apps, app)
		applied[rule.ID] = app
		for _, o := range rule.Overrides {
			overridden[o] = true
		}
	}

	result.Applications = make([]Application, len(apps))
	for i, app := range apps {
		result.Applications[i] = *app
	}
	return result
}

// conditionsHold evaluates rule-level predicates against the sentence.
func (e *Engine) conditionsHold(rule *resource.GrammarRule, tokens []morph.Token) bool {
	for _, cond := range rule.Conditions {
		switch cond.Name {
		case "min_tokens":
			if len(tokens) < cond.Arg {
				return false
			}
		}
	}
	return true
}

func prerequisitesMet(rule *resource.GrammarRule, applied map[string]*Application) bool {
	for _, p := range rule.Prerequisites {
		if _, ok := applied[p]; !ok {
			return false
		}
	}
	return true
}

// conflictsWithApplied reports whether any of the rule's declared
// conflicts has already applied to an overlapping span. Conflicting rules
// may still co-apply on disjoint spans; processing order (priority desc,
// id asc) guarantees the earlier rule is the winner on a shared span.
func conflictsWithApplied(rule *resource.GrammarRule, applied map[string]*Application, span [2]int) bool {
	for _, c := range rule.Conflicts {
		if app, ok := applied[c]; ok && spansOverlap(app.Span, span) {
			return true
		}
	}
	return false
}

func overlappingApplication(applied map[string]*Application, span [2]int) *Application {
	var owner *Application
	for _, app := range applied {
		if spansOverlap(app.Span, span) {
			// Deterministic pick when several own overlapping spans.
			if owner == nil || app.RuleID < owner.RuleID {
				owner = app
			}
		}
	}
	return owner
}

func spansOverlap(a, b [2]int) bool {
	return a[0] < b[1] && b[0] < a[1]
}

// shiftSpans keeps previously recorded application spans aligned with the
// current token sequence after an insertion at the given absolute index.
func shiftSpans(apps []*Application, insertedAt int) {
	for _, app := range apps {
		if app.Span[0] >= insertedAt {
			app.Span[0]++
			app.Span[1]++
		} else if app.Span[1] > insertedAt {
			app.Span[1]++
		}
	}
}

// surfaceMatches does a case-insensitive comparison against the slot's
// literal surface alternatives.
func surfaceMatches(alternatives []string, surface string) bool {
	for _, alt := range alternatives {
		if strings.EqualFold(alt, surface) {
			return true
		}
	}
	return false
}

func cloneTokens(tokens []morph.Token) []morph.Token {
	out := make([]morph.Token, len(tokens))
	copy(out, tokens)
	return out
}
