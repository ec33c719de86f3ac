// Package morph performs morphological analysis on romanized Manchu words,
// decomposing inflected forms into stem + suffix chain.
//
// The analyzer strips suffixes right to left, trying the store's rules for
// the token's word class in priority order and validating each candidate
// suffix's vowel harmony allomorph against the word's harmony class. The
// first rule whose pattern, allomorph, and conditions all hold is applied
// and the captured stem becomes the new input; the loop stops when no rule
// applies, the stem is exhausted, the remaining form is a known lexicon
// stem, or the iteration cap is reached. Morphemes are returned in surface
// (left-to-right) order.
//
// Analysis is a pure function over the immutable resource store. All
// methods are safe for concurrent use by multiple goroutines.
//
// Known limitations (v1.0):
//
//   - Homographic suffixes (-ci ablative vs. -ci conditional) are resolved
//     by word class alone.
//   - Irregular imperative stems (ju-, gaju-) need explicit lexicon entries.
//   - Möllendorff romanization only. Use normalize.Word for common variant
//     spellings (v for ū, x for š) before analysis.
package morph

import (
	"fmt"
	"strings"

	"github.com/manju-nlp/manchu-nlp/resource"
)

// Warning codes attached to tokens and parse results.
const (
	WarnRuleConflict     = "rule_conflict"
	WarnAnalysisDegraded = "analysis_degraded"
)

// Warning is a non-fatal analysis condition. Warnings never abort
// processing; they are carried on the result for observability.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Morpheme is one stripped suffix with the feature set and rule that
// produced it.
type Morpheme struct {
	Surface  string   `json:"surface"`
	Features []string `json:"features"`
	RuleID   string   `json:"rule_id"`
}

// Token is the analysis of one surface word. It is immutable after
// construction and owned by the parse that produced it.
type Token struct {
	Surface   string                `json:"surface"`
	Stem      string                `json:"stem"`
	Morphemes []Morpheme            `json:"morphemes"`
	WordClass resource.WordClass    `json:"word_class"`
	Harmony   resource.HarmonyClass `json:"harmony"`
	Features  []string              `json:"features,omitempty"` // lexicon-carried features
	Gloss     string                `json:"gloss,omitempty"`
	Degraded  bool                  `json:"degraded,omitempty"`
	Warnings  []Warning             `json:"warnings,omitempty"`
}

// HasFeature reports whether the token carries a feature, either from its
// lexicon entry or from any stripped morpheme.
func (t Token) HasFeature(f string) bool {
	for _, have := range t.Features {
		if have == f {
			return true
		}
	}
	for _, m := range t.Morphemes {
		for _, have := range m.Features {
			if have == f {
				return true
			}
		}
	}
	return false
}

// String returns a debug representation, e.g. boo[N-CASE-DE:de].
func (t Token) String() string {
	if len(t.Morphemes) == 0 {
		return t.Stem
	}
	var sb strings.Builder
	sb.WriteString(t.Stem)
	sb.WriteByte('[')
	for i, m := range t.Morphemes {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(m.RuleID)
		sb.WriteByte(':')
		sb.WriteString(m.Surface)
	}
	sb.WriteByte(']')
	return sb.String()
}

// AmbiguousHarmonyError is returned in strict mode when a word contains no
// non-neutral vowel and a harmony decision is required.
type AmbiguousHarmonyError struct {
	Word string
}

func (e *AmbiguousHarmonyError) Error() string {
	return fmt.Sprintf("morph: no harmony class decidable for %q", e.Word)
}

// DefaultMaxIterations bounds the suffix-stripping loop so malformed input
// cannot loop indefinitely.
const DefaultMaxIterations = 8

const maxWordBytes = 256

// Analyzer performs morphological analysis over a resource store.
type Analyzer struct {
	store         *resource.Store
	strictHarmony bool
	maxIterations int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithStrictHarmony makes Analyze fail with AmbiguousHarmonyError when a
// word has no non-neutral vowel. The default policy falls back to neutral
// harmony, since many loanwords are harmony-invariant.
func WithStrictHarmony() Option {
	return func(a *Analyzer) { a.strictHarmony = true }
}

// WithMaxIterations overrides the suffix-stripping iteration cap.
func WithMaxIterations(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

// NewAnalyzer builds an analyzer over an immutable store.
func NewAnalyzer(store *resource.Store, opts ...Option) *Analyzer {
	a := &Analyzer{
		store:         store,
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze decomposes a surface word into stem and suffix chain. hint names
// the word class to analyze under; pass resource.Unknown (or "") to let
// the analyzer resolve the class from the lexicon and word-shape
// heuristics. The returned error is non-nil only for empty input and, in
// strict harmony mode, for harmony-invariant words.
func (a *Analyzer) Analyze(surface string, hint resource.WordClass) (Token, error) {
	if surface == "" {
		return Token{}, fmt.Errorf("morph: empty surface form")
	}
	if len(surface) > maxWordBytes {
		return Token{Surface: surface, Stem: surface, WordClass: resource.Unknown}, nil
	}
	word := strings.ToLower(surface)

	harmony, found := a.store.HarmonyOf(word)
	if !found && a.strictHarmony {
		return Token{}, &AmbiguousHarmonyError{Word: surface}
	}

	// A whole-word lexicon entry is trusted as-is: no stripping, entry
	// features attach to the token.
	if entry, ok := a.store.Lookup(word); ok && (hint == "" || hint == resource.Unknown || hint == entry.WordClass) {
		return Token{
			Surface:   surface,
			Stem:      word,
			WordClass: entry.WordClass,
			Harmony:   harmony,
			Features:  entry.Features,
			Gloss:     entry.Gloss,
		}, nil
	}

	class := hint
	if class == "" || class == resource.Unknown {
		class = a.guessWordClass(word)
	}

	tok := Token{
		Surface:   surface,
		WordClass: class,
		Harmony:   harmony,
	}

	// Iterative stripping: rightmost suffix first, captured stem becomes
	// the new input. Morphemes accumulate in strip order and are reversed
	// before returning.
	remaining := word
	stoppedOnLexicon := false
	iterations := 0
	for iterations < a.maxIterations && remaining != "" {
		if entry, known := a.store.Lookup(remaining); known && len(tok.Morphemes) > 0 {
			stoppedOnLexicon = true
			tok.Gloss = entry.Gloss
			tok.Features = entry.Features
			break
		}
		rule, stem := a.matchRule(remaining, class, harmony)
		if rule == nil {
			break
		}
		tok.Morphemes = append(tok.Morphemes, Morpheme{
			Surface:  remaining[len(stem):],
			Features: rule.Features,
			RuleID:   rule.ID,
		})
		remaining = stem
		iterations++
	}
	tok.Stem = remaining

	if iterations == a.maxIterations && remaining != "" {
		if rule, _ := a.matchRule(remaining, class, harmony); rule != nil {
			tok.Degraded = true
			tok.Warnings = append(tok.Warnings, Warning{
				Code:    WarnAnalysisDegraded,
				Message: fmt.Sprintf("iteration cap reached with residual stem %q", remaining),
			})
		}
	}

	// Idempotence check: the final stem must not strip again under the
	// same rule set. A violation indicates overlapping patterns (typically
	// a stem-restoring replacement) and degrades to a warning.
	if !stoppedOnLexicon && !tok.Degraded && len(tok.Morphemes) > 0 {
		if rule, _ := a.matchRule(tok.Stem, class, harmony); rule != nil {
			tok.Warnings = append(tok.Warnings, Warning{
				Code:    WarnRuleConflict,
				Message: fmt.Sprintf("stem %q still matches rule %s", tok.Stem, rule.ID),
			})
		}
	}

	reverseMorphemes(tok.Morphemes)
	return tok, nil
}

// matchRule returns the highest-priority applicable rule for the remaining
// form and the stem its replacement produces, or nil if no rule applies.
func (a *Analyzer) matchRule(remaining string, class resource.WordClass, harmony resource.HarmonyClass) (*resource.MorphRule, string) {
	for _, rule := range a.store.MorphRulesFor(class) {
		if !strings.HasSuffix(remaining, rule.Suffix) {
			continue
		}
		m := rule.Pattern.FindStringSubmatch(remaining)
		if m == nil {
			continue
		}
		// Harmony-sensitive allomorphs must agree with the word's class.
		// Neutral words accept any allomorph (permissive policy).
		if rule.Harmony != resource.HarmonyNeutral &&
			harmony != resource.HarmonyNeutral &&
			rule.Harmony != harmony {
			continue
		}
		stem := rule.Pattern.ReplaceAllString(remaining, rule.Replacement)
		if stem == "" {
			continue
		}
		if !a.conditionsHold(rule, stem) {
			continue
		}
		return rule, stem
	}
	return nil, ""
}

// conditionsHold evaluates a rule's predicates against the candidate stem.
func (a *Analyzer) conditionsHold(rule *resource.MorphRule, stem string) bool {
	for _, cond := range rule.Conditions {
		switch cond.Name {
		case resource.CondMinStemLength:
			if len([]rune(stem)) < cond.Arg {
				return false
			}
		case resource.CondStemEndsVowel:
			if !a.store.IsVowel(lastRune(stem)) {
				return false
			}
		case resource.CondStemEndsConsonant:
			if !a.store.IsConsonant(lastRune(stem)) {
				return false
			}
		case resource.CondStemInLexicon:
			if _, ok := a.store.Lookup(stem); !ok {
				return false
			}
		}
	}
	return true
}

// guessWordClass predicts the word class of an unknown surface form from
// its shape. The lexicon is consulted by Analyze before this runs.
func (a *Analyzer) guessWordClass(word string) resource.WordClass {
	switch {
	case strings.HasSuffix(word, "mbi") || strings.HasSuffix(word, "mbihe") ||
		strings.HasSuffix(word, "rakū") || strings.HasSuffix(word, "habi") ||
		strings.HasSuffix(word, "hebi"):
		return resource.Verb
	case strings.HasSuffix(word, "ngge"):
		return resource.Adjective
	default:
		return resource.Noun
	}
}

func lastRune(s string) rune {
	var r rune
	for _, c := range s {
		r = c
	}
	return r
}

func reverseMorphemes(ms []Morpheme) {
	for i, j := 0, len(ms)-1; i < j; i, j = i+1, j-1 {
		ms[i], ms[j] = ms[j], ms[i]
	}
}
