package resource

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/manju-nlp/manchu-nlp/data"
)

// Documents holds the raw JSON resource documents to load.
type Documents struct {
	Phonology  []byte
	Morphology []byte
	Grammar    []byte
	Lexicon    []byte
}

// Option configures Load.
type Option func(*loader)

// WithLogger attaches a logger for load-time diagnostics. The store itself
// never logs after construction.
func WithLogger(log *zap.Logger) Option {
	return func(l *loader) { l.log = log }
}

type loader struct {
	log *zap.Logger
}

// phonologyDoc mirrors the phonology JSON document.
type phonologyDoc struct {
	Version         string              `json:"version"`
	Vowels          []string            `json:"vowels"`
	Consonants      []string            `json:"consonants"`
	HarmonyGroups   map[string][]string `json:"harmony_groups"`
	AllowedClusters []string            `json:"allowed_clusters"`
}

// morphRuleDoc mirrors one record of the morphology rule document.
type morphRuleDoc struct {
	RuleID      string              `json:"rule_id"`
	WordClass   string              `json:"word_class"`
	Pattern     string              `json:"pattern"`
	Replacement string              `json:"replacement"`
	Harmony     string              `json:"harmony"`
	Conditions  []string            `json:"conditions"`
	Features    []string            `json:"features"`
	Priority    int                 `json:"priority"`
	Examples    []map[string]string `json:"examples"`
}

type morphologyDoc struct {
	Version string         `json:"version"`
	Rules   []morphRuleDoc `json:"rules"`
}

type slotDoc struct {
	Name        string   `json:"name"`
	Classes     []string `json:"classes"`
	AnyFeatures []string `json:"any_features"`
	AllFeatures []string `json:"all_features"`
	Surface     []string `json:"surface"`
}

type patternDoc struct {
	Slots  []slotDoc `json:"slots"`
	Anchor string    `json:"anchor"`
}

type transformationDoc struct {
	Op       string `json:"op"`
	Order    []int  `json:"order"`
	Particle string `json:"particle"`
	At       int    `json:"at"`
	Feature  string `json:"feature"`
	Slot     int    `json:"slot"`
}

type grammarRuleDoc struct {
	RuleID          string              `json:"rule_id"`
	Type            string              `json:"type"`
	Category        string              `json:"category"`
	Features        []string            `json:"features"`
	Patterns        []patternDoc        `json:"patterns"`
	Conditions      []string            `json:"conditions"`
	Transformations []transformationDoc `json:"transformations"`
	Priority        int                 `json:"priority"`
	Bidirectional   bool                `json:"bidirectional"`
	Direction       string              `json:"direction"`
	Prerequisites   []string            `json:"prerequisites"`
	Conflicts       []string            `json:"conflicts"`
	Overrides       []string            `json:"overrides"`
	Examples        []map[string]string `json:"examples"`
}

type grammarDoc struct {
	Version string           `json:"version"`
	Rules   []grammarRuleDoc `json:"rules"`
}

type lexiconEntryDoc struct {
	Word      string   `json:"word"`
	WordClass string   `json:"word_class"`
	Gloss     string   `json:"gloss"`
	Features  []string `json:"features"`
}

type lexiconDoc struct {
	Version string            `json:"version"`
	Entries []lexiconEntryDoc `json:"entries"`
}

// stripPatternForm enforces the canonical stripping pattern shape: an
// anchored expression with one leading capturing stem group followed by a
// literal suffix.
var stripPatternForm = regexp.MustCompile(`^\^\(\.\+\)(\p{L}+)\$$`)

// Load parses and validates all resource documents and builds the indexed
// store. Any structural defect fails the whole load.
func Load(docs Documents, opts ...Option) (*Store, error) {
	l := &loader{log: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}

	s := &Store{
		vowels:          make(map[rune]HarmonyClass),
		consonants:      make(map[rune]bool),
		allowedClusters: make(map[string]bool),
		morphByClass:    make(map[WordClass][]*MorphRule),
		morphByID:       make(map[string]*MorphRule),
		grammarByType:   make(map[RuleType][]*GrammarRule),
		grammarByID:     make(map[string]*GrammarRule),
		lexicon:         make(map[string]*LexiconEntry),
	}

	if err := l.loadPhonology(s, docs.Phonology); err != nil {
		return nil, err
	}
	if err := l.loadMorphology(s, docs.Morphology); err != nil {
		return nil, err
	}
	if err := l.loadGrammar(s, docs.Grammar); err != nil {
		return nil, err
	}
	if err := l.loadLexicon(s, docs.Lexicon); err != nil {
		return nil, err
	}
	if err := checkRuleGraph(s.grammarByID); err != nil {
		return nil, err
	}

	l.log.Debug("resource store loaded",
		zap.Int("morph_rules", len(s.morphByID)),
		zap.Int("grammar_rules", len(s.grammarRules)),
		zap.Int("lexicon_entries", len(s.lexicon)))
	return s, nil
}

// LoadEmbedded builds the store from the documents compiled into the data
// package.
func LoadEmbedded(opts ...Option) (*Store, error) {
	return Load(Documents{
		Phonology:  data.Phonology,
		Morphology: data.Morphology,
		Grammar:    data.Grammar,
		Lexicon:    data.Lexicon,
	}, opts...)
}

func (l *loader) loadPhonology(s *Store, raw []byte) error {
	fail := func(err error) error { return &LoadError{Doc: "phonology", Err: err} }
	if len(raw) == 0 {
		return fail(fmt.Errorf("document missing"))
	}
	var doc phonologyDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fail(err)
	}
	if len(doc.Vowels) == 0 || len(doc.Consonants) == 0 {
		return fail(fmt.Errorf("vowel and consonant inventories are required"))
	}

	vowelSet := make(map[rune]bool)
	for _, v := range doc.Vowels {
		r, ok := singleRune(v)
		if !ok {
			return fail(fmt.Errorf("vowel %q is not a single character", v))
		}
		if !vowelSet[r] {
			s.vowelList = append(s.vowelList, r)
		}
		vowelSet[r] = true
	}
	for _, c := range doc.Consonants {
		r, ok := singleRune(c)
		if !ok {
			return fail(fmt.Errorf("consonant %q is not a single character", c))
		}
		if vowelSet[r] {
			return fail(fmt.Errorf("%q is listed as both vowel and consonant", c))
		}
		s.consonants[r] = true
	}

	// Every vowel must belong to exactly one harmony group.
	for name, vowels := range doc.HarmonyGroups {
		class, ok := harmonyFromName[name]
		if !ok {
			return fail(fmt.Errorf("unknown harmony group %q", name))
		}
		for _, v := range vowels {
			r, ok := singleRune(v)
			if !ok {
				return fail(fmt.Errorf("harmony group %s: %q is not a single character", name, v))
			}
			if !vowelSet[r] {
				return fail(fmt.Errorf("harmony group %s lists %q which is not in the vowel inventory", name, v))
			}
			if _, dup := s.vowels[r]; dup {
				return fail(fmt.Errorf("vowel %q belongs to more than one harmony group", v))
			}
			s.vowels[r] = class
		}
	}
	for r := range vowelSet {
		if _, ok := s.vowels[r]; !ok {
			return fail(fmt.Errorf("vowel %q belongs to no harmony group", string(r)))
		}
	}

	for _, cl := range doc.AllowedClusters {
		runes := []rune(cl)
		if len(runes) != 2 {
			return fail(fmt.Errorf("cluster %q is not two characters", cl))
		}
		s.allowedClusters[cl] = true
	}
	return nil
}

func (l *loader) loadMorphology(s *Store, raw []byte) error {
	fail := func(err error) error { return &LoadError{Doc: "morphology", Err: err} }
	if len(raw) == 0 {
		return fail(fmt.Errorf("document missing"))
	}
	var doc morphologyDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fail(err)
	}
	if len(doc.Rules) == 0 {
		return fail(fmt.Errorf("rule table is empty"))
	}

	for _, rd := range doc.Rules {
		if rd.RuleID == "" {
			return fail(fmt.Errorf("rule with empty rule_id"))
		}
		if _, dup := s.morphByID[rd.RuleID]; dup {
			return fail(fmt.Errorf("duplicate rule_id %q", rd.RuleID))
		}
		class := WordClass(rd.WordClass)
		if !validWordClasses[class] {
			return fail(fmt.Errorf("rule %s: unknown word_class %q", rd.RuleID, rd.WordClass))
		}
		harmony, ok := harmonyFromName[rd.Harmony]
		if !ok {
			return fail(fmt.Errorf("rule %s: undefined harmony class %q", rd.RuleID, rd.Harmony))
		}

		m := stripPatternForm.FindStringSubmatch(rd.Pattern)
		if m == nil {
			return fail(fmt.Errorf("rule %s: pattern %q is not of the form ^(.+)suffix$", rd.RuleID, rd.Pattern))
		}
		suffix := m[1]
		for _, r := range suffix {
			if !s.IsVowel(r) && !s.IsConsonant(r) {
				return fail(fmt.Errorf("rule %s: suffix character %q is not in the phoneme inventory", rd.RuleID, string(r)))
			}
		}
		re, err := regexp.Compile(rd.Pattern)
		if err != nil {
			return fail(fmt.Errorf("rule %s: %w", rd.RuleID, err))
		}
		// The analyzer treats the replacement result as a prefix of the
		// matched form, so anything other than the bare stem group would
		// lengthen or corrupt the stem. Go's regexp would also read a
		// trailing name ("$1ngga") as one group reference.
		if rd.Replacement != "$1" {
			return fail(fmt.Errorf("rule %s: replacement %q must be exactly the stem group $1", rd.RuleID, rd.Replacement))
		}
		conds, err := parseConditions(rd.Conditions, morphPredicates)
		if err != nil {
			return fail(fmt.Errorf("rule %s: %w", rd.RuleID, err))
		}

		rule := &MorphRule{
			ID:          rd.RuleID,
			WordClass:   class,
			Pattern:     re,
			RawPattern:  rd.Pattern,
			Replacement: rd.Replacement,
			Suffix:      suffix,
			Harmony:     harmony,
			Conditions:  conds,
			Features:    rd.Features,
			Priority:    rd.Priority,
		}
		s.morphByID[rule.ID] = rule
		s.morphByClass[class] = append(s.morphByClass[class], rule)
	}

	for class := range s.morphByClass {
		rules := s.morphByClass[class]
		sort.Slice(rules, func(i, j int) bool {
			if rules[i].Priority != rules[j].Priority {
				return rules[i].Priority > rules[j].Priority
			}
			return rules[i].ID < rules[j].ID
		})
	}
	return nil
}

func (l *loader) loadGrammar(s *Store, raw []byte) error {
	fail := func(err error) error { return &LoadError{Doc: "grammar", Err: err} }
	if len(raw) == 0 {
		return fail(fmt.Errorf("document missing"))
	}
	var doc grammarDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fail(err)
	}
	if len(doc.Rules) == 0 {
		return fail(fmt.Errorf("rule table is empty"))
	}

	for _, rd := range doc.Rules {
		if rd.RuleID == "" {
			return fail(fmt.Errorf("rule with empty rule_id"))
		}
		if _, dup := s.grammarByID[rd.RuleID]; dup {
			return fail(fmt.Errorf("duplicate rule_id %q", rd.RuleID))
		}
		rtype := RuleType(rd.Type)
		if !validRuleTypes[rtype] {
			return fail(fmt.Errorf("rule %s: unknown type %q", rd.RuleID, rd.Type))
		}
		if rd.Direction != "" && rd.Direction != "source_to_target" && rd.Direction != "target_to_source" {
			return fail(fmt.Errorf("rule %s: unknown direction %q", rd.RuleID, rd.Direction))
		}
		if len(rd.Patterns) == 0 {
			return fail(fmt.Errorf("rule %s: no patterns", rd.RuleID))
		}

		patterns := make([]Pattern, 0, len(rd.Patterns))
		for pi, pd := range rd.Patterns {
			if len(pd.Slots) == 0 {
				return fail(fmt.Errorf("rule %s: pattern %d has no slots", rd.RuleID, pi))
			}
			if pd.Anchor != "" && pd.Anchor != "final" {
				return fail(fmt.Errorf("rule %s: unknown anchor %q", rd.RuleID, pd.Anchor))
			}
			slots := make([]Slot, 0, len(pd.Slots))
			for _, sd := range pd.Slots {
				classes := make([]WordClass, 0, len(sd.Classes))
				for _, c := range sd.Classes {
					wc := WordClass(c)
					if !validWordClasses[wc] {
						return fail(fmt.Errorf("rule %s: slot %s: unknown word class %q", rd.RuleID, sd.Name, c))
					}
					classes = append(classes, wc)
				}
				slots = append(slots, Slot{
					Name:        sd.Name,
					Classes:     classes,
					AnyFeatures: sd.AnyFeatures,
					AllFeatures: sd.AllFeatures,
					Surface:     sd.Surface,
				})
			}
			patterns = append(patterns, Pattern{Slots: slots, Anchor: pd.Anchor})
		}

		transforms := make([]Transformation, 0, len(rd.Transformations))
		for _, td := range rd.Transformations {
			t := Transformation{
				Op: td.Op, Order: td.Order, Particle: td.Particle,
				At: td.At, Feature: td.Feature, Slot: td.Slot,
			}
			if err := validateTransform(t, patterns); err != nil {
				return fail(fmt.Errorf("rule %s: %w", rd.RuleID, err))
			}
			transforms = append(transforms, t)
		}
		if len(transforms) == 0 {
			return fail(fmt.Errorf("rule %s: no transformations", rd.RuleID))
		}

		conds, err := parseConditions(rd.Conditions, grammarPredicates)
		if err != nil {
			return fail(fmt.Errorf("rule %s: %w", rd.RuleID, err))
		}

		rule := &GrammarRule{
			ID:              rd.RuleID,
			Type:            rtype,
			Category:        rd.Category,
			Features:        rd.Features,
			Patterns:        patterns,
			Conditions:      conds,
			Transformations: transforms,
			Priority:        rd.Priority,
			Bidirectional:   rd.Bidirectional,
			Direction:       rd.Direction,
			Prerequisites:   rd.Prerequisites,
			Conflicts:       rd.Conflicts,
			Overrides:       rd.Overrides,
		}
		s.grammarByID[rule.ID] = rule
		s.grammarRules = append(s.grammarRules, rule)
		s.grammarByType[rtype] = append(s.grammarByType[rtype], rule)
	}

	byPriority := func(rules []*GrammarRule) {
		sort.Slice(rules, func(i, j int) bool {
			if rules[i].Priority != rules[j].Priority {
				return rules[i].Priority > rules[j].Priority
			}
			return rules[i].ID < rules[j].ID
		})
	}
	byPriority(s.grammarRules)
	for t := range s.grammarByType {
		byPriority(s.grammarByType[t])
	}
	return nil
}

func (l *loader) loadLexicon(s *Store, raw []byte) error {
	fail := func(err error) error { return &LoadError{Doc: "lexicon", Err: err} }
	if len(raw) == 0 {
		return fail(fmt.Errorf("document missing"))
	}
	var doc lexiconDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fail(err)
	}
	for _, ed := range doc.Entries {
		if ed.Word == "" {
			return fail(fmt.Errorf("entry with empty word"))
		}
		if _, dup := s.lexicon[ed.Word]; dup {
			return fail(fmt.Errorf("duplicate lexicon entry %q", ed.Word))
		}
		class := WordClass(ed.WordClass)
		if !validWordClasses[class] {
			return fail(fmt.Errorf("entry %q: unknown word_class %q", ed.Word, ed.WordClass))
		}
		s.lexicon[ed.Word] = &LexiconEntry{
			Word:      ed.Word,
			WordClass: class,
			Gloss:     ed.Gloss,
			Features:  ed.Features,
		}
	}
	return nil
}

// validateTransform checks a transformation against every pattern
// alternative of its rule, since any alternative may produce the span it
// operates on.
func validateTransform(t Transformation, patterns []Pattern) error {
	switch t.Op {
	case OpReorder:
		for pi, p := range patterns {
			if len(t.Order) != len(p.Slots) {
				return fmt.Errorf("reorder order has %d entries but pattern %d has %d slots", len(t.Order), pi, len(p.Slots))
			}
			seen := make([]bool, len(t.Order))
			for _, idx := range t.Order {
				if idx < 0 || idx >= len(t.Order) || seen[idx] {
					return fmt.Errorf("reorder order %v is not a permutation", t.Order)
				}
				seen[idx] = true
			}
		}
	case OpInsertParticle:
		if t.Particle == "" {
			return fmt.Errorf("insert_particle with empty particle")
		}
		for pi, p := range patterns {
			if t.At < 0 || t.At > len(p.Slots) {
				return fmt.Errorf("insert_particle offset %d out of range for pattern %d", t.At, pi)
			}
		}
	case OpCaseMark:
		if t.Feature == "" {
			return fmt.Errorf("case_mark with empty feature")
		}
		for pi, p := range patterns {
			if t.Slot < 0 || t.Slot >= len(p.Slots) {
				return fmt.Errorf("case_mark slot %d out of range for pattern %d", t.Slot, pi)
			}
		}
	default:
		return fmt.Errorf("unknown transformation op %q", t.Op)
	}
	return nil
}

// Predicate tables: name -> whether an integer argument is required.
var morphPredicates = map[string]bool{
	CondMinStemLength:     true,
	CondStemEndsVowel:     false,
	CondStemEndsConsonant: false,
	CondStemInLexicon:     false,
}

var grammarPredicates = map[string]bool{
	"min_tokens": true,
}

func parseConditions(raw []string, known map[string]bool) ([]Condition, error) {
	conds := make([]Condition, 0, len(raw))
	for _, c := range raw {
		name, argStr, hasArg := strings.Cut(c, ":")
		needsArg, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("unknown condition %q", c)
		}
		if needsArg != hasArg {
			return nil, fmt.Errorf("condition %q: argument mismatch", c)
		}
		cond := Condition{Name: name}
		if hasArg {
			n, err := strconv.Atoi(argStr)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("condition %q: bad argument", c)
			}
			cond.Arg = n
		}
		conds = append(conds, cond)
	}
	return conds, nil
}

func singleRune(s string) (rune, bool) {
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, false
	}
	return runes[0], true
}
