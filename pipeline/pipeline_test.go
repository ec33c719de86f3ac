package pipeline

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manju-nlp/manchu-nlp/grammar"
	"github.com/manju-nlp/manchu-nlp/resource"
)

var update = flag.Bool("update", false, "rewrite golden files with current output")

var (
	storeOnce sync.Once
	testStore *resource.Store
	storeErr  error
)

func newTestPipeline(t *testing.T, cfg Config) *Pipeline {
	t.Helper()
	storeOnce.Do(func() {
		testStore, storeErr = resource.LoadEmbedded()
	})
	require.NoError(t, storeErr)
	return New(testStore, cfg)
}

func TestParseGolden(t *testing.T) {
	p := newTestPipeline(t, DefaultConfig())

	sentences := [][]string{
		{"bi", "bithe", "be", "arambi"},
		{"sikse", "bi", "bithe", "be", "arambi"},
		{"bi", "generakū"},
	}
	var got []grammar.ParseResult
	for _, words := range sentences {
		result, err := p.Parse(context.Background(), words, grammar.SourceToTarget)
		require.NoError(t, err, "Parse(%v)", words)
		got = append(got, result)
	}

	golden := filepath.Join("testdata", "parse.json")
	if *update {
		raw, err := json.MarshalIndent(got, "", "  ")
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(golden, append(raw, '\n'), 0o644))
	}

	raw, err := os.ReadFile(golden)
	require.NoError(t, err)
	var want []grammar.ParseResult
	require.NoError(t, json.Unmarshal(raw, &want))

	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("parse output mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEmptySentence(t *testing.T) {
	p := newTestPipeline(t, DefaultConfig())
	_, err := p.Parse(context.Background(), nil, grammar.SourceToTarget)
	assert.ErrorIs(t, err, ErrEmptySentence)
}

func TestParseCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, parallelism := range []int{0, 4} {
		cfg := DefaultConfig()
		cfg.Parallelism = parallelism
		p := newTestPipeline(t, cfg)
		_, err := p.Parse(ctx, []string{"bi", "bithe", "be", "arambi"}, grammar.SourceToTarget)
		assert.ErrorIs(t, err, context.Canceled, "parallelism %d", parallelism)
	}
}

func TestParseParallelMatchesSequential(t *testing.T) {
	seqCfg := DefaultConfig()
	seqCfg.Parallelism = 0
	parCfg := DefaultConfig()
	parCfg.Parallelism = 8

	seq := newTestPipeline(t, seqCfg)
	par := newTestPipeline(t, parCfg)

	words := []string{"sikse", "bi", "boode", "bithe", "be", "arambihe"}
	want, err := seq.Parse(context.Background(), words, grammar.SourceToTarget)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		got, err := par.Parse(context.Background(), words, grammar.SourceToTarget)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("parallel parse diverged (-sequential +parallel):\n%s", diff)
		}
	}
}

func TestParseStrictHarmony(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrictHarmony = true
	p := newTestPipeline(t, cfg)

	_, err := p.Parse(context.Background(), []string{"ilimbi"}, grammar.SourceToTarget)
	require.Error(t, err)

	// Harmonically decidable sentences still parse.
	_, err = p.Parse(context.Background(), []string{"boode"}, grammar.SourceToTarget)
	assert.NoError(t, err)
}

func TestParseConfidencePenalties(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 1
	p := newTestPipeline(t, cfg)

	// One iteration cannot finish "boodeci": the token comes back degraded
	// with a warning, and the parse is penalized but not failed.
	result, err := p.Parse(context.Background(), []string{"boodeci"}, grammar.SourceToTarget)
	require.NoError(t, err)
	require.Len(t, result.Tokens, 1)
	assert.True(t, result.Tokens[0].Degraded)
	assert.InDelta(t, 1.0-degradedPenalty-warningPenalty, result.Confidence, 1e-9)
}

func TestParseBidirectional(t *testing.T) {
	p := newTestPipeline(t, DefaultConfig())

	words := []string{"bi", "bithe", "be", "arambi"}
	s2t, err := p.Parse(context.Background(), words, grammar.SourceToTarget)
	require.NoError(t, err)
	t2s, err := p.Parse(context.Background(), words, grammar.TargetToSource)
	require.NoError(t, err)

	// The clause reorder rule is bidirectional; both directions apply it.
	assert.Equal(t, appliedRules(s2t), appliedRules(t2s))
}

func appliedRules(r grammar.ParseResult) []string {
	out := make([]string, len(r.Applications))
	for i, app := range r.Applications {
		out[i] = app.RuleID
	}
	return out
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.StrictHarmony)
	assert.Equal(t, 8, cfg.MaxIterations)
	assert.Zero(t, cfg.MaxApplications)
	assert.Equal(t, 4, cfg.Parallelism)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strict_harmony: true\nparallelism: 2\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.StrictHarmony)
	assert.Equal(t, 2, cfg.Parallelism)
	// Omitted fields keep their defaults.
	assert.Equal(t, 8, cfg.MaxIterations)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strict_harmony: [oops\n"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
