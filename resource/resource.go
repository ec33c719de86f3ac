// Package resource loads and indexes the engine's lexical resources: the
// phonology document (vowel/consonant inventories and harmony groups), the
// morphology rule document, the grammar rule document, and the lexicon.
//
// All resources are parsed, validated, and indexed once by Load. The
// resulting Store is immutable and safe for concurrent use by multiple
// goroutines without locking. Load fails closed: a malformed document, a
// dangling rule-id reference, or a cyclic prerequisite/override graph
// rejects the whole load — there is no partial store.
package resource

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// HarmonyClass is the vowel harmony group of a vowel or of a whole word.
// A word's class is the class of its first non-neutral vowel; words with
// only neutral vowels are HarmonyNeutral.
type HarmonyClass int

const (
	HarmonyNeutral HarmonyClass = iota
	HarmonyA
	HarmonyE
)

// String returns the document-level name of the harmony class.
func (c HarmonyClass) String() string {
	switch c {
	case HarmonyA:
		return "a_harmony"
	case HarmonyE:
		return "e_harmony"
	case HarmonyNeutral:
		return "neutral"
	default:
		return fmt.Sprintf("HarmonyClass(%d)", int(c))
	}
}

// MarshalJSON encodes the harmony class as its document name.
func (c HarmonyClass) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a document harmony name ("a_harmony" etc.).
func (c *HarmonyClass) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	class, ok := harmonyFromName[s]
	if !ok {
		return fmt.Errorf("unknown harmony class: %q", s)
	}
	*c = class
	return nil
}

// harmonyFromName maps document harmony names to HarmonyClass values.
var harmonyFromName = map[string]HarmonyClass{
	"a_harmony": HarmonyA,
	"e_harmony": HarmonyE,
	"neutral":   HarmonyNeutral,
}

// WordClass identifies the grammatical class a rule or lexicon entry
// applies to. Values mirror the word_class strings of the documents.
type WordClass string

const (
	Noun         WordClass = "noun"
	Verb         WordClass = "verb"
	Adjective    WordClass = "adjective"
	Adverb       WordClass = "adverb"
	Pronoun      WordClass = "pronoun"
	Particle     WordClass = "particle"
	Postposition WordClass = "postposition"
	Conjunction  WordClass = "conjunction"
	Interjection WordClass = "interjection"
	Unknown      WordClass = "unknown"
)

// validWordClasses is the closed set accepted in documents.
var validWordClasses = map[WordClass]bool{
	Noun: true, Verb: true, Adjective: true, Adverb: true,
	Pronoun: true, Particle: true, Postposition: true,
	Conjunction: true, Interjection: true,
}

// Condition is a parsed rule predicate such as "min_stem_length:2".
// Unknown predicate names are rejected at load.
type Condition struct {
	Name string
	Arg  int
}

// Known morphology rule predicates.
const (
	CondMinStemLength     = "min_stem_length"
	CondStemEndsVowel     = "stem_ends_vowel"
	CondStemEndsConsonant = "stem_ends_consonant"
	CondStemInLexicon     = "stem_in_lexicon"
)

// MorphRule describes one suffix-stripping rule. Pattern is an anchored
// regular expression with exactly one capturing group (the stem); Suffix is
// the literal suffix text derived from the pattern at load time. Harmony
// names the allomorph class of the suffix; HarmonyNeutral means the suffix
// does not alternate.
type MorphRule struct {
	ID          string
	WordClass   WordClass
	Pattern     *regexp.Regexp
	RawPattern  string
	Replacement string
	Suffix      string
	Harmony     HarmonyClass
	Conditions  []Condition
	Features    []string
	Priority    int
}

// RuleType classifies a grammar rule.
type RuleType string

const (
	WordOrder     RuleType = "word_order"
	Morphological RuleType = "morphological"
	Syntactic     RuleType = "syntactic"
)

var validRuleTypes = map[RuleType]bool{
	WordOrder: true, Morphological: true, Syntactic: true,
}

// Slot constrains one position of a grammar pattern. Empty constraint
// fields accept any token.
type Slot struct {
	Name        string
	Classes     []WordClass
	AnyFeatures []string // token must carry at least one, if non-empty
	AllFeatures []string // token must carry all
	Surface     []string // literal surface alternatives
}

// Pattern is one alternative of a grammar rule: an ordered slot sequence.
// Anchor "final" requires the match to end at the last token of the
// sentence; patterns never match across sentence boundaries.
type Pattern struct {
	Slots  []Slot
	Anchor string
}

// Transformation op names.
const (
	OpReorder        = "reorder"
	OpInsertParticle = "insert_particle"
	OpCaseMark       = "case_mark"
)

// Transformation is one named operation of a grammar rule, applied to the
// matched span in list order.
type Transformation struct {
	Op       string
	Order    []int  // reorder: permutation of the span's slots
	Particle string // insert_particle: surface form to insert
	At       int    // insert_particle: slot offset within the span
	Feature  string // case_mark: feature to add
	Slot     int    // case_mark: slot offset within the span
}

// GrammarRule is one syntactic transformation rule. Direction is the raw
// document value ("source_to_target" or "target_to_source"; empty means
// source_to_target); Bidirectional rules apply in both directions.
type GrammarRule struct {
	ID              string
	Type            RuleType
	Category        string
	Features        []string
	Patterns        []Pattern
	Conditions      []Condition
	Transformations []Transformation
	Priority        int
	Bidirectional   bool
	Direction       string
	Prerequisites   []string
	Conflicts       []string
	Overrides       []string
}

// LexiconEntry is one dictionary record. Features carried by the entry are
// attached to tokens analyzed as this word.
type LexiconEntry struct {
	Word      string
	WordClass WordClass
	Gloss     string
	Features  []string
}

// Store is the immutable, indexed view over all loaded resources.
type Store struct {
	vowels          map[rune]HarmonyClass
	vowelList       []rune // inventory order for deterministic iteration
	consonants      map[rune]bool
	allowedClusters map[string]bool

	morphByClass map[WordClass][]*MorphRule // priority desc, rule-id asc
	morphByID    map[string]*MorphRule

	grammarRules  []*GrammarRule // priority desc, rule-id asc
	grammarByType map[RuleType][]*GrammarRule
	grammarByID   map[string]*GrammarRule

	lexicon map[string]*LexiconEntry
}

// PhonemeClassOf returns the harmony class of a vowel rune. The second
// return is false for consonants and unknown runes.
func (s *Store) PhonemeClassOf(r rune) (HarmonyClass, bool) {
	c, ok := s.vowels[r]
	return c, ok
}

// Vowels returns the vowel inventory in document order. The returned
// slice is shared and must not be modified.
func (s *Store) Vowels() []rune {
	return s.vowelList
}

// IsVowel reports whether r is in the vowel inventory.
func (s *Store) IsVowel(r rune) bool {
	_, ok := s.vowels[r]
	return ok
}

// IsConsonant reports whether r is in the consonant inventory.
func (s *Store) IsConsonant(r rune) bool {
	return s.consonants[r]
}

// ClusterAllowed reports whether the two-consonant sequence ab is
// phonotactically permitted.
func (s *Store) ClusterAllowed(a, b rune) bool {
	return s.allowedClusters[string([]rune{a, b})]
}

// HarmonyOf returns the harmony class of a word: the class of its first
// non-neutral vowel scanning left to right, or HarmonyNeutral if the word
// has no non-neutral vowel. The second return reports whether any
// non-neutral vowel was found.
func (s *Store) HarmonyOf(word string) (HarmonyClass, bool) {
	for _, r := range word {
		if c, ok := s.vowels[r]; ok && c != HarmonyNeutral {
			return c, true
		}
	}
	return HarmonyNeutral, false
}

// MorphRulesFor returns the morphology rules for a word class, sorted by
// priority descending then rule-id ascending. The returned slice is shared
// and must not be modified.
func (s *Store) MorphRulesFor(class WordClass) []*MorphRule {
	return s.morphByClass[class]
}

// MorphRule returns a morphology rule by id.
func (s *Store) MorphRule(id string) (*MorphRule, bool) {
	r, ok := s.morphByID[id]
	return r, ok
}

// GrammarRules returns all grammar rules sorted by priority descending
// then rule-id ascending. The returned slice is shared and must not be
// modified.
func (s *Store) GrammarRules() []*GrammarRule {
	return s.grammarRules
}

// GrammarRulesByType returns the grammar rules of one type in application
// order.
func (s *Store) GrammarRulesByType(t RuleType) []*GrammarRule {
	return s.grammarByType[t]
}

// GrammarRule returns a grammar rule by id.
func (s *Store) GrammarRule(id string) (*GrammarRule, bool) {
	r, ok := s.grammarByID[id]
	return r, ok
}

// Lookup returns the lexicon entry for a word, if any.
func (s *Store) Lookup(word string) (*LexiconEntry, bool) {
	e, ok := s.lexicon[word]
	return e, ok
}

// LexiconSize returns the number of lexicon entries.
func (s *Store) LexiconSize() int {
	return len(s.lexicon)
}
