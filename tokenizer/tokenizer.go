// Package tokenizer splits romanized Manchu text into words, sentences,
// and structured tokens with byte offsets.
//
// The package provides two API layers:
//
//   - Structured: Tokens returns []Token with byte offsets and type
//     metadata. The invariant s[t.Start:t.End] == t.Text holds for every
//     token, and concatenating all token texts reconstructs the original
//     string.
//
//   - Convenience: Words and Sentences return []string for the common
//     cases where offsets and types are not needed.
//
// All functions are safe for concurrent use by multiple goroutines.
package tokenizer

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenType classifies a token.
type TokenType int

const (
	Word        TokenType = iota // Alphabetic word, including the ū and š graphemes
	Number                       // Digit sequences
	Punctuation                  // Punctuation marks, including Manchu ᠈ and ᠉
	Space                        // Contiguous whitespace
	Symbol                       // Everything else
)

// String returns the name of the token type.
func (t TokenType) String() string {
	switch t {
	case Word:
		return "Word"
	case Number:
		return "Number"
	case Punctuation:
		return "Punctuation"
	case Space:
		return "Space"
	case Symbol:
		return "Symbol"
	default:
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
}

// Token represents a unit of text with its position and classification.
type Token struct {
	Text  string    // The token text
	Start int       // Byte offset in the original string (inclusive)
	End   int       // Byte offset in the original string (exclusive)
	Type  TokenType // Classification of the token
}

// String returns a debug representation, e.g. Word("boode")[0:5].
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)[%d:%d]", t.Type, t.Text, t.Start, t.End)
}

// sentenceTerminators end a sentence. The Manchu full stop ᠉ (U+1809)
// and comma-like ᠈ (U+1808) survive transliterated corpus text.
var sentenceTerminators = map[rune]bool{
	'.': true, '!': true, '?': true,
	'᠉': true,
}

func classify(r rune) TokenType {
	switch {
	case unicode.IsLetter(r) || r == '\'' || r == '-':
		return Word
	case unicode.IsDigit(r):
		return Number
	case unicode.IsSpace(r):
		return Space
	case unicode.IsPunct(r) || r == '᠈' || r == '᠉':
		return Punctuation
	default:
		return Symbol
	}
}

// Tokens splits s into typed tokens covering the whole input. Adjacent
// runes of the same class form one token; a punctuation rune is always a
// token of its own.
func Tokens(s string) []Token {
	if s == "" {
		return nil
	}
	var out []Token
	start := 0
	var cur TokenType
	started := false
	for i, r := range s {
		t := classify(r)
		if !started {
			cur, start, started = t, i, true
			continue
		}
		if t != cur || cur == Punctuation {
			out = append(out, Token{Text: s[start:i], Start: start, End: i, Type: cur})
			cur, start = t, i
		}
	}
	out = append(out, Token{Text: s[start:], Start: start, End: len(s), Type: cur})
	return out
}

// Words returns the word tokens of s as strings.
func Words(s string) []string {
	tokens := Tokens(s)
	var out []string
	for _, t := range tokens {
		if t.Type == Word {
			out = append(out, t.Text)
		}
	}
	return out
}

// Sentences splits s into sentences on terminal punctuation. Terminators
// are dropped; surrounding whitespace is trimmed. Text without a trailing
// terminator forms a final sentence.
func Sentences(s string) []string {
	var out []string
	start := 0
	flush := func(end int) {
		sent := strings.TrimSpace(s[start:end])
		if sent != "" {
			out = append(out, sent)
		}
	}
	for i, r := range s {
		if sentenceTerminators[r] {
			flush(i)
			start = i + len(string(r))
		}
	}
	flush(len(s))
	return out
}
