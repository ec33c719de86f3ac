package morph

import (
	"strings"

	"github.com/manju-nlp/manchu-nlp/resource"
)

// Generate builds a surface form from a stem, a word class, and a wanted
// feature set. Rules are consulted in priority order; a rule whose feature
// set is fully covered by the request and whose harmony allomorph agrees
// with the stem contributes its suffix once. Features already produced by
// an earlier (higher-priority) suffix are not produced again, so at most
// one allomorph of each suffix attaches.
func (a *Analyzer) Generate(stem string, class resource.WordClass, features []string) string {
	if stem == "" || len(features) == 0 {
		return stem
	}
	harmony, _ := a.store.HarmonyOf(stem)

	want := make(map[string]bool, len(features))
	for _, f := range features {
		want[f] = true
	}
	covered := make(map[string]bool)

	out := stem
	for _, rule := range a.store.MorphRulesFor(class) {
		if len(rule.Features) == 0 {
			continue
		}
		applicable := true
		overlap := false
		for _, f := range rule.Features {
			if !want[f] {
				applicable = false
				break
			}
			if covered[f] {
				overlap = true
			}
		}
		if !applicable || overlap {
			continue
		}
		if rule.Harmony != resource.HarmonyNeutral &&
			harmony != resource.HarmonyNeutral &&
			rule.Harmony != harmony {
			continue
		}
		out += rule.Suffix
		for _, f := range rule.Features {
			covered[f] = true
		}
	}
	return out
}

// Gloss renders a token as a stem-FEATURE chain, e.g. "boo-DATIVE.LOCATIVE".
// Lexicon glosses take precedence over the bare stem.
func Gloss(tok Token) string {
	var sb strings.Builder
	if tok.Gloss != "" {
		sb.WriteString(tok.Gloss)
	} else {
		sb.WriteString(tok.Stem)
	}
	for _, m := range tok.Morphemes {
		sb.WriteByte('-')
		for i, f := range m.Features {
			if i > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(strings.ToUpper(f))
		}
	}
	return sb.String()
}

// SentenceGloss glosses a token sequence, space-separated.
func SentenceGloss(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = Gloss(t)
	}
	return strings.Join(parts, " ")
}
