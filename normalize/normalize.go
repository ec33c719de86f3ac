// Package normalize canonicalizes romanized Manchu text before analysis.
//
// Corpus text mixes several transliteration conventions: v or û for ū,
// x or sh for š, and long-vowel macrons (ā ē ī ō) carried over from
// related transcription schemes. Word maps these onto the Möllendorff
// inventory the resource documents use, after NFC normalization and
// lowercasing.
//
// All functions are safe for concurrent use by multiple goroutines.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// runeVariants maps single-rune variant spellings to their canonical form.
var runeVariants = map[rune]rune{
	'v': 'ū',
	'û': 'ū',
	'x': 'š',
	'ā': 'a',
	'ē': 'e',
	'ī': 'i',
	'ō': 'o',
}

// sequenceVariants maps multi-rune variant spellings, applied after the
// single-rune pass. Order matters: "sh" must not clobber canonical š.
var sequenceVariants = [][2]string{
	{"sh", "š"},
}

// Word canonicalizes one word: NFC, lowercase, variant graphemes mapped
// to the Möllendorff inventory.
func Word(w string) string {
	if w == "" {
		return ""
	}
	w = strings.ToLower(norm.NFC.String(w))
	var sb strings.Builder
	sb.Grow(len(w))
	for _, r := range w {
		if repl, ok := runeVariants[r]; ok {
			sb.WriteRune(repl)
		} else {
			sb.WriteRune(r)
		}
	}
	out := sb.String()
	for _, sv := range sequenceVariants {
		out = strings.ReplaceAll(out, sv[0], sv[1])
	}
	return out
}

// Text canonicalizes whole text word by word, preserving whitespace
// layout for everything the word pass does not touch.
func Text(s string) string {
	if s == "" {
		return ""
	}
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = Word(f)
	}
	return strings.Join(fields, " ")
}
