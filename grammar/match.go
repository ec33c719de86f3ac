package grammar

import (
	"strings"

	"github.com/manju-nlp/manchu-nlp/morph"
	"github.com/manju-nlp/manchu-nlp/resource"
)

// matchRule tries the rule's pattern alternatives in document order and
// returns the first matching contiguous span, scanning left to right.
// Final-anchored patterns are only tried at the end of the sentence.
// Returns a nil pattern when nothing matches.
func matchRule(rule *resource.GrammarRule, tokens []morph.Token) ([2]int, *resource.Pattern) {
	for pi := range rule.Patterns {
		p := &rule.Patterns[pi]
		n := len(p.Slots)
		if n > len(tokens) {
			continue
		}
		if p.Anchor == "final" {
			start := len(tokens) - n
			if matchAt(p, tokens, start) {
				return [2]int{start, len(tokens)}, p
			}
			continue
		}
		for start := 0; start+n <= len(tokens); start++ {
			if matchAt(p, tokens, start) {
				return [2]int{start, start + n}, p
			}
		}
	}
	return [2]int{}, nil
}

func matchAt(p *resource.Pattern, tokens []morph.Token, start int) bool {
	for i, slot := range p.Slots {
		if !slotMatches(slot, tokens[start+i]) {
			return false
		}
	}
	return true
}

// slotMatches checks one token against one slot's constraints. Empty
// constraint fields accept any token.
func slotMatches(slot resource.Slot, tok morph.Token) bool {
	if len(slot.Classes) > 0 {
		found := false
		for _, c := range slot.Classes {
			if tok.WordClass == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(slot.Surface) > 0 && !surfaceMatches(slot.Surface, strings.ToLower(tok.Surface)) {
		return false
	}
	for _, f := range slot.AllFeatures {
		if !tok.HasFeature(f) {
			return false
		}
	}
	if len(slot.AnyFeatures) > 0 {
		found := false
		for _, f := range slot.AnyFeatures {
			if tok.HasFeature(f) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
