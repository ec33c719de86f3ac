package morph

import "github.com/manju-nlp/manchu-nlp/resource"

// IsValidWord reports whether a word obeys the loaded phonotactics: every
// character is in the phoneme inventory, consonant clusters are on the
// allowed list, and all non-neutral vowels share one harmony class.
func (a *Analyzer) IsValidWord(word string) bool {
	if word == "" {
		return false
	}
	var prev rune
	harmony := resource.HarmonyNeutral
	for _, r := range word {
		isVowel := a.store.IsVowel(r)
		if !isVowel && !a.store.IsConsonant(r) {
			return false
		}
		if prev != 0 && !isVowel && a.store.IsConsonant(prev) {
			if !a.store.ClusterAllowed(prev, r) {
				return false
			}
		}
		if isVowel {
			if class, _ := a.store.PhonemeClassOf(r); class != resource.HarmonyNeutral {
				if harmony != resource.HarmonyNeutral && class != harmony {
					return false
				}
				harmony = class
			}
		}
		prev = r
	}
	return true
}

// SuggestCorrections proposes repaired spellings for a phonotactically
// invalid word: harmony-violating vowels are swapped for a vowel of the
// word's class, and disallowed consonant clusters are split by inserting a
// vowel. Suggestions are best-effort and deduplicated; a valid word
// suggests itself.
func (a *Analyzer) SuggestCorrections(word string) []string {
	if a.IsValidWord(word) {
		return []string{word}
	}

	harmony, _ := a.store.HarmonyOf(word)
	seen := make(map[string]bool)
	var out []string
	add := func(candidate string) {
		if !seen[candidate] && a.IsValidWord(candidate) {
			seen[candidate] = true
			out = append(out, candidate)
		}
	}

	runes := []rune(word)

	// Swap each harmony-violating vowel for each vowel of the word's class.
	if harmony != resource.HarmonyNeutral {
		for i, r := range runes {
			class, isVowel := a.store.PhonemeClassOf(r)
			if !isVowel || class == resource.HarmonyNeutral || class == harmony {
				continue
			}
			for _, v := range a.vowelsOfClass(harmony) {
				candidate := make([]rune, len(runes))
				copy(candidate, runes)
				candidate[i] = v
				add(string(candidate))
			}
		}
	}

	// Split each disallowed cluster by inserting a harmony-compatible vowel.
	for i := 1; i < len(runes); i++ {
		if !a.store.IsConsonant(runes[i-1]) || !a.store.IsConsonant(runes[i]) {
			continue
		}
		if a.store.ClusterAllowed(runes[i-1], runes[i]) {
			continue
		}
		for _, v := range a.vowelsOfClass(harmony) {
			candidate := make([]rune, 0, len(runes)+1)
			candidate = append(candidate, runes[:i]...)
			candidate = append(candidate, v)
			candidate = append(candidate, runes[i:]...)
			add(string(candidate))
		}
	}
	return out
}

// vowelsOfClass returns the inventory vowels compatible with a harmony
// class: the class's own vowels plus the neutral ones, in document order
// so suggestion output is deterministic.
func (a *Analyzer) vowelsOfClass(class resource.HarmonyClass) []rune {
	var out []rune
	for _, r := range a.store.Vowels() {
		c, _ := a.store.PhonemeClassOf(r)
		if c == resource.HarmonyNeutral || class == resource.HarmonyNeutral || c == class {
			out = append(out, r)
		}
	}
	return out
}
