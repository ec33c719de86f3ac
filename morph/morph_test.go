package morph

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/manju-nlp/manchu-nlp/resource"
)

var (
	storeOnce sync.Once
	testStore *resource.Store
	storeErr  error
)

func newTestAnalyzer(t *testing.T, opts ...Option) *Analyzer {
	t.Helper()
	storeOnce.Do(func() {
		testStore, storeErr = resource.LoadEmbedded()
	})
	if storeErr != nil {
		t.Fatalf("LoadEmbedded: %v", storeErr)
	}
	return NewAnalyzer(testStore, opts...)
}

func morphemeSurfaces(tok Token) []string {
	out := make([]string, len(tok.Morphemes))
	for i, m := range tok.Morphemes {
		out[i] = m.Surface
	}
	return out
}

func TestAnalyzeSuffixChains(t *testing.T) {
	a := newTestAnalyzer(t)

	tests := []struct {
		word      string
		hint      resource.WordClass
		stem      string
		morphemes []string
		class     resource.WordClass
		feature   string // one feature the token must carry
	}{
		{"arambihe", resource.Unknown, "ara", []string{"mbihe"}, resource.Verb, "past"},
		{"arambi", resource.Unknown, "ara", []string{"mbi"}, resource.Verb, "present"},
		{"boode", resource.Unknown, "boo", []string{"de"}, resource.Noun, "dative"},
		{"bithebe", resource.Unknown, "bithe", []string{"be"}, resource.Noun, "accusative"},
		{"morinci", resource.Unknown, "morin", []string{"ci"}, resource.Noun, "ablative"},
		{"tacimbi", resource.Unknown, "taci", []string{"mbi"}, resource.Verb, "finite"},
		{"genehe", resource.Verb, "gene", []string{"he"}, resource.Verb, "participle"},
		{"araha", resource.Verb, "ara", []string{"ha"}, resource.Verb, "past"},
		{"araki", resource.Verb, "ara", []string{"ki"}, resource.Verb, "optative"},
		{"generakū", resource.Unknown, "gene", []string{"rakū"}, resource.Verb, "negative"},
		{"boodeci", resource.Unknown, "boo", []string{"de", "ci"}, resource.Noun, "ablative"},
		{"gisunsa", resource.Noun, "gisun", []string{"sa"}, resource.Noun, "plural"},
		{"moringge", resource.Unknown, "morin", []string{"ngge"}, resource.Adjective, "attributive"},
	}
	for _, tt := range tests {
		tok, err := a.Analyze(tt.word, tt.hint)
		if err != nil {
			t.Errorf("Analyze(%q): %v", tt.word, err)
			continue
		}
		if tok.Stem != tt.stem {
			t.Errorf("Analyze(%q): stem = %q, want %q", tt.word, tok.Stem, tt.stem)
		}
		got := morphemeSurfaces(tok)
		if len(got) != len(tt.morphemes) {
			t.Errorf("Analyze(%q): morphemes = %v, want %v", tt.word, got, tt.morphemes)
			continue
		}
		for i := range got {
			if got[i] != tt.morphemes[i] {
				t.Errorf("Analyze(%q): morpheme %d = %q, want %q", tt.word, i, got[i], tt.morphemes[i])
			}
		}
		if tok.WordClass != tt.class {
			t.Errorf("Analyze(%q): class = %q, want %q", tt.word, tok.WordClass, tt.class)
		}
		if !tok.HasFeature(tt.feature) {
			t.Errorf("Analyze(%q): missing feature %q", tt.word, tt.feature)
		}
	}
}

func TestAnalyzeLexiconWord(t *testing.T) {
	a := newTestAnalyzer(t)

	// Whole-word lexicon entries are trusted without stripping, even when a
	// rule pattern would match the surface form.
	tests := []struct {
		word  string
		class resource.WordClass
		gloss string
	}{
		{"bithe", resource.Noun, "book"},
		{"bi", resource.Pronoun, "I"},
		{"be", resource.Particle, "ACC"},
		{"dade", resource.Postposition, "besides"},
		{"sikse", resource.Adverb, "yesterday"},
	}
	for _, tt := range tests {
		tok, err := a.Analyze(tt.word, resource.Unknown)
		if err != nil {
			t.Fatalf("Analyze(%q): %v", tt.word, err)
		}
		if tok.WordClass != tt.class {
			t.Errorf("Analyze(%q): class = %q, want %q", tt.word, tok.WordClass, tt.class)
		}
		if tok.Gloss != tt.gloss {
			t.Errorf("Analyze(%q): gloss = %q, want %q", tt.word, tok.Gloss, tt.gloss)
		}
		if len(tok.Morphemes) != 0 {
			t.Errorf("Analyze(%q): stripped %v from a lexicon word", tt.word, morphemeSurfaces(tok))
		}
	}
}

func TestAnalyzeHarmonyAllomorphs(t *testing.T) {
	a := newTestAnalyzer(t)

	// A back-harmony allomorph must not strip from a front-harmony word and
	// vice versa.
	tests := []struct {
		word    string
		hint    resource.WordClass
		strips  bool
		harmony resource.HarmonyClass
	}{
		{"araha", resource.Verb, true, resource.HarmonyA},
		{"genehe", resource.Verb, true, resource.HarmonyE},
		{"geneha", resource.Verb, false, resource.HarmonyE},
		{"arahe", resource.Verb, false, resource.HarmonyA},
		{"arara", resource.Verb, true, resource.HarmonyA},
		{"genere", resource.Verb, true, resource.HarmonyE},
	}
	for _, tt := range tests {
		tok, err := a.Analyze(tt.word, tt.hint)
		if err != nil {
			t.Fatalf("Analyze(%q): %v", tt.word, err)
		}
		if got := len(tok.Morphemes) > 0; got != tt.strips {
			t.Errorf("Analyze(%q): stripped = %v, want %v (stem %q)", tt.word, got, tt.strips, tok.Stem)
		}
		if tok.Harmony != tt.harmony {
			t.Errorf("Analyze(%q): harmony = %v, want %v", tt.word, tok.Harmony, tt.harmony)
		}
	}
}

func TestAnalyzeNeutralStemTakesSuffixHarmony(t *testing.T) {
	a := newTestAnalyzer(t)

	// "ili" carries only neutral vowels; the first non-neutral vowel of
	// "iliha" is the suffix's own a, which both decides the word's harmony
	// class and licenses the -ha allomorph.
	tok, err := a.Analyze("iliha", resource.Verb)
	if err != nil {
		t.Fatal(err)
	}
	if tok.Stem != "ili" || len(tok.Morphemes) != 1 {
		t.Fatalf("Analyze(iliha) = %v, want ili[ha]", tok)
	}
	if tok.Harmony != resource.HarmonyA {
		t.Errorf("harmony = %v, want HarmonyA", tok.Harmony)
	}
}

func TestAnalyzeEmptyWord(t *testing.T) {
	a := newTestAnalyzer(t)
	if _, err := a.Analyze("", resource.Unknown); err == nil {
		t.Fatal("Analyze(\"\"): expected error")
	}
}

func TestAnalyzeOversizeWord(t *testing.T) {
	a := newTestAnalyzer(t)
	long := strings.Repeat("a", maxWordBytes+1)
	tok, err := a.Analyze(long, resource.Unknown)
	if err != nil {
		t.Fatal(err)
	}
	if tok.Stem != long || len(tok.Morphemes) != 0 {
		t.Fatal("oversize word must pass through unanalyzed")
	}
	if tok.WordClass != resource.Unknown {
		t.Errorf("oversize word class = %q, want unknown", tok.WordClass)
	}
}

func TestAnalyzeCaseFolding(t *testing.T) {
	a := newTestAnalyzer(t)
	tok, err := a.Analyze("Arambi", resource.Unknown)
	if err != nil {
		t.Fatal(err)
	}
	if tok.Stem != "ara" {
		t.Errorf("Analyze(Arambi): stem = %q, want ara", tok.Stem)
	}
	if tok.Surface != "Arambi" {
		t.Errorf("Analyze(Arambi): surface = %q, original casing must survive", tok.Surface)
	}
}

func TestStrictHarmony(t *testing.T) {
	permissive := newTestAnalyzer(t)
	strict := newTestAnalyzer(t, WithStrictHarmony())

	// "ilimbi" has only neutral vowels: permissive analysis falls back to
	// neutral harmony, strict mode refuses to decide.
	if _, err := permissive.Analyze("ilimbi", resource.Verb); err != nil {
		t.Fatalf("permissive: %v", err)
	}
	_, err := strict.Analyze("ilimbi", resource.Verb)
	var ambErr *AmbiguousHarmonyError
	if !errors.As(err, &ambErr) {
		t.Fatalf("strict: err = %v, want AmbiguousHarmonyError", err)
	}
	if ambErr.Word != "ilimbi" {
		t.Errorf("strict: error word = %q", ambErr.Word)
	}

	// Words with a decidable harmony class analyze the same in both modes.
	if _, err := strict.Analyze("arambi", resource.Verb); err != nil {
		t.Fatalf("strict on harmonic word: %v", err)
	}
}

func TestAnalyzeDegraded(t *testing.T) {
	a := newTestAnalyzer(t, WithMaxIterations(1))

	// One iteration strips -ci and leaves "boode", which still matches the
	// dative rule: the analysis is flagged degraded, not failed.
	tok, err := a.Analyze("boodeci", resource.Unknown)
	if err != nil {
		t.Fatal(err)
	}
	if !tok.Degraded {
		t.Fatal("expected degraded analysis at iteration cap")
	}
	found := false
	for _, w := range tok.Warnings {
		if w.Code == WarnAnalysisDegraded {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want %s", tok.Warnings, WarnAnalysisDegraded)
	}
	if tok.Stem != "boode" {
		t.Errorf("stem = %q, want boode", tok.Stem)
	}
}

func TestAnalyzeMinStemLength(t *testing.T) {
	a := newTestAnalyzer(t)

	// "asa" ends in the plural suffix but the residual stem "a" is below the
	// rule's minimum stem length, so no strip happens.
	tok, err := a.Analyze("asa", resource.Noun)
	if err != nil {
		t.Fatal(err)
	}
	if len(tok.Morphemes) != 0 {
		t.Errorf("Analyze(asa) stripped %v from a short stem", morphemeSurfaces(tok))
	}
}

func TestWordClassGuess(t *testing.T) {
	a := newTestAnalyzer(t)

	// Unknown words get a shape-based class before stripping.
	tests := []struct {
		word  string
		class resource.WordClass
	}{
		{"hūlambi", resource.Verb},
		{"hūlambihe", resource.Verb},
		{"wesimburakū", resource.Verb},
		{"ambangge", resource.Adjective},
		{"hoton", resource.Noun},
	}
	for _, tt := range tests {
		tok, err := a.Analyze(tt.word, resource.Unknown)
		if err != nil {
			t.Fatalf("Analyze(%q): %v", tt.word, err)
		}
		if tok.WordClass != tt.class {
			t.Errorf("Analyze(%q): class = %q, want %q", tt.word, tok.WordClass, tt.class)
		}
	}
}

func TestTokenString(t *testing.T) {
	a := newTestAnalyzer(t)
	tok, err := a.Analyze("boode", resource.Unknown)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := tok.String(), "boo[N-CASE-DE:de]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestAnalyzeConcurrent(t *testing.T) {
	a := newTestAnalyzer(t)
	words := []string{"arambihe", "boode", "tacimbi", "genehe", "bithe", "morinci"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, w := range words {
				if _, err := a.Analyze(w, resource.Unknown); err != nil {
					t.Errorf("Analyze(%q): %v", w, err)
				}
			}
		}()
	}
	wg.Wait()
}
