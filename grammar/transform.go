package grammar

import (
	"github.com/manju-nlp/manchu-nlp/morph"
	"github.com/manju-nlp/manchu-nlp/resource"
)

// applyTransformation performs one operation on the matched span and
// returns the updated sequence, the updated span, and the absolute index
// of an inserted token (-1 when nothing was inserted). Reorders and case
// marks preserve sequence length; inserts grow it by one.
func applyTransformation(t resource.Transformation, tokens []morph.Token, span [2]int) ([]morph.Token, [2]int, int) {
	switch t.Op {
	case resource.OpReorder:
		return reorderSpan(tokens, span, t.Order), span, -1
	case resource.OpInsertParticle:
		pos := span[0] + t.At
		if pos > span[1] {
			pos = span[1]
		}
		out := make([]morph.Token, 0, len(tokens)+1)
		out = append(out, tokens[:pos]...)
		out = append(out, particleToken(t.Particle))
		out = append(out, tokens[pos:]...)
		return out, [2]int{span[0], span[1] + 1}, pos
	case resource.OpCaseMark:
		pos := span[0] + t.Slot
		if pos >= span[1] {
			return tokens, span, -1
		}
		out := cloneTokens(tokens)
		out[pos] = withFeature(out[pos], t.Feature)
		return out, span, -1
	default:
		// Unknown ops are rejected at load; unreachable for a valid store.
		return tokens, span, -1
	}
}

// reorderSpan rearranges the span's tokens so position i holds the token
// that sat at span offset order[i].
func reorderSpan(tokens []morph.Token, span [2]int, order []int) []morph.Token {
	if span[1]-span[0] != len(order) {
		return tokens
	}
	out := cloneTokens(tokens)
	for i, from := range order {
		out[span[0]+i] = tokens[span[0]+from]
	}
	return out
}

// particleToken builds the token for an inserted target-language particle.
func particleToken(surface string) morph.Token {
	return morph.Token{
		Surface:   surface,
		Stem:      surface,
		WordClass: resource.Particle,
		Features:  []string{"inserted"},
	}
}

// withFeature returns a copy of the token carrying one more feature.
// Tokens are immutable by contract, so the feature slice is never shared.
func withFeature(tok morph.Token, feature string) morph.Token {
	for _, f := range tok.Features {
		if f == feature {
			return tok
		}
	}
	features := make([]string, 0, len(tok.Features)+1)
	features = append(features, tok.Features...)
	features = append(features, feature)
	tok.Features = features
	return tok
}
