// Package pipeline composes the morphological analyzer and the grammar
// rule engine into a sentence-level parse.
//
// Per-token analyses have no data dependency on each other and run
// concurrently up to the configured parallelism; grammar rule application
// is strictly sequential because application order is part of the
// correctness contract. The pipeline performs no I/O and holds no mutable
// state, so one Pipeline may serve any number of concurrent callers.
package pipeline

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/manju-nlp/manchu-nlp/grammar"
	"github.com/manju-nlp/manchu-nlp/morph"
	"github.com/manju-nlp/manchu-nlp/resource"
)

// ErrEmptySentence is returned when Parse is called with no tokens.
var ErrEmptySentence = errors.New("pipeline: empty sentence")

// Confidence penalties. Malformed input never fails a parse; it lowers
// the result's confidence instead.
const (
	degradedPenalty = 0.2
	warningPenalty  = 0.05
	minConfidence   = 0.1
)

// Pipeline runs tokenized sentences through morphological analysis and
// grammar transformation.
type Pipeline struct {
	analyzer *morph.Analyzer
	engine   *grammar.Engine
	parallel int
}

// New builds a pipeline over an immutable store with the given policy.
func New(store *resource.Store, cfg Config) *Pipeline {
	var morphOpts []morph.Option
	if cfg.StrictHarmony {
		morphOpts = append(morphOpts, morph.WithStrictHarmony())
	}
	if cfg.MaxIterations > 0 {
		morphOpts = append(morphOpts, morph.WithMaxIterations(cfg.MaxIterations))
	}
	return &Pipeline{
		analyzer: morph.NewAnalyzer(store, morphOpts...),
		engine:   grammar.NewEngine(store, grammar.WithMaxApplications(cfg.MaxApplications)),
		parallel: cfg.Parallelism,
	}
}

// Analyzer returns the pipeline's morphological analyzer.
func (p *Pipeline) Analyzer() *morph.Analyzer { return p.analyzer }

// Parse analyzes one tokenized sentence and applies grammar rules in the
// requested direction. Word-class hints are resolved per token from the
// lexicon and shape heuristics. The error is non-nil only for an empty
// sentence, a cancelled context, or (in strict harmony mode) an
// undecidable harmony class.
func (p *Pipeline) Parse(ctx context.Context, words []string, dir grammar.Direction) (grammar.ParseResult, error) {
	if len(words) == 0 {
		return grammar.ParseResult{}, ErrEmptySentence
	}

	tokens := make([]morph.Token, len(words))
	if p.parallel > 1 && len(words) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.parallel)
		for i, w := range words {
			i, w := i, w
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				tok, err := p.analyzer.Analyze(w, resource.Unknown)
				if err != nil {
					return err
				}
				tokens[i] = tok
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return grammar.ParseResult{}, err
		}
	} else {
		for i, w := range words {
			if err := ctx.Err(); err != nil {
				return grammar.ParseResult{}, err
			}
			tok, err := p.analyzer.Analyze(w, resource.Unknown)
			if err != nil {
				return grammar.ParseResult{}, err
			}
			tokens[i] = tok
		}
	}

	result := p.engine.Apply(tokens, dir)
	result.Confidence = confidence(result)
	return result, nil
}

// confidence scores a parse: degraded token analyses and conflict
// warnings lower it, floored so downstream ranking still works.
func confidence(r grammar.ParseResult) float64 {
	score := 1.0
	for _, t := range r.Tokens {
		if t.Degraded {
			score -= degradedPenalty
		}
		score -= warningPenalty * float64(len(t.Warnings))
	}
	score -= warningPenalty * float64(len(r.Warnings))
	if score < minConfidence {
		return minConfidence
	}
	return score
}
