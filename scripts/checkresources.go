//go:build ignore

// checkresources validates the shipped resource documents beyond what the
// loader enforces: every morphology rule example must analyze back to its
// documented stem, and every grammar rule example sentence must trigger
// its own rule. Run from the project root:
//
//	go run scripts/checkresources.go
//
// Exits non-zero when any example disagrees with the engine.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/manju-nlp/manchu-nlp/grammar"
	"github.com/manju-nlp/manchu-nlp/morph"
	"github.com/manju-nlp/manchu-nlp/resource"
)

const (
	morphologyPath = "data/morphology.json"
	grammarPath    = "data/grammar.json"
)

type morphExample struct {
	Word string `json:"word"`
	Stem string `json:"stem"`
}

type morphRule struct {
	RuleID    string         `json:"rule_id"`
	WordClass string         `json:"word_class"`
	Examples  []morphExample `json:"examples"`
}

type grammarExample struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type grammarRule struct {
	RuleID   string           `json:"rule_id"`
	Examples []grammarExample `json:"examples"`
}

func main() {
	log.SetFlags(0)

	store, err := resource.LoadEmbedded()
	if err != nil {
		log.Fatalf("checkresources: %v", err)
	}
	fmt.Printf("lexicon entries: %d\n", store.LexiconSize())

	analyzer := morph.NewAnalyzer(store)
	engine := grammar.NewEngine(store)

	mismatches := 0
	mismatches += checkMorphExamples(analyzer)
	mismatches += checkGrammarExamples(analyzer, engine)

	if mismatches > 0 {
		log.Fatalf("checkresources: %d example(s) disagree with the engine", mismatches)
	}
	fmt.Println("all rule examples verified")
}

func checkMorphExamples(analyzer *morph.Analyzer) int {
	raw, err := os.ReadFile(morphologyPath)
	if err != nil {
		log.Fatalf("checkresources: %v", err)
	}
	var doc struct {
		Rules []morphRule `json:"rules"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Fatalf("checkresources: %s: %v", morphologyPath, err)
	}

	mismatches := 0
	checked := 0
	for _, rule := range doc.Rules {
		for _, ex := range rule.Examples {
			checked++
			tok, err := analyzer.Analyze(ex.Word, resource.WordClass(rule.WordClass))
			if err != nil {
				log.Printf("%s: analyze %q: %v", rule.RuleID, ex.Word, err)
				mismatches++
				continue
			}
			if tok.Stem != ex.Stem {
				log.Printf("%s: %q analyzed to stem %q, document says %q",
					rule.RuleID, ex.Word, tok.Stem, ex.Stem)
				mismatches++
			}
		}
	}
	fmt.Printf("morphology examples checked: %d\n", checked)
	return mismatches
}

func checkGrammarExamples(analyzer *morph.Analyzer, engine *grammar.Engine) int {
	raw, err := os.ReadFile(grammarPath)
	if err != nil {
		log.Fatalf("checkresources: %v", err)
	}
	var doc struct {
		Rules []grammarRule `json:"rules"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Fatalf("checkresources: %s: %v", grammarPath, err)
	}

	mismatches := 0
	checked := 0
	for _, rule := range doc.Rules {
		for _, ex := range rule.Examples {
			checked++
			words := strings.Fields(ex.Source)
			tokens := make([]morph.Token, 0, len(words))
			failed := false
			for _, w := range words {
				tok, err := analyzer.Analyze(w, resource.Unknown)
				if err != nil {
					log.Printf("%s: analyze %q: %v", rule.RuleID, w, err)
					mismatches++
					failed = true
					break
				}
				tokens = append(tokens, tok)
			}
			if failed {
				continue
			}
			result := engine.Apply(tokens, grammar.SourceToTarget)
			if !ruleApplied(result, rule.RuleID) {
				log.Printf("%s: example %q did not trigger the rule (applied: %v)",
					rule.RuleID, ex.Source, appliedIDs(result))
				mismatches++
			}
		}
	}
	fmt.Printf("grammar examples checked: %d\n", checked)
	return mismatches
}

func ruleApplied(result grammar.ParseResult, id string) bool {
	for _, app := range result.Applications {
		if app.RuleID == id {
			return true
		}
	}
	return false
}

func appliedIDs(result grammar.ParseResult) []string {
	out := make([]string, len(result.Applications))
	for i, app := range result.Applications {
		out[i] = app.RuleID
	}
	return out
}
