// Command manjuc exercises the analysis pipeline from the command line:
// morphological analysis, glossing, tokenization, and full sentence
// parsing over the embedded resource documents.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/manju-nlp/manchu-nlp/grammar"
	"github.com/manju-nlp/manchu-nlp/morph"
	"github.com/manju-nlp/manchu-nlp/normalize"
	"github.com/manju-nlp/manchu-nlp/pipeline"
	"github.com/manju-nlp/manchu-nlp/resource"
	"github.com/manju-nlp/manchu-nlp/tokenizer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "manjuc: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		logLevel   string
		configPath string
		direction  string
	)

	root := &cobra.Command{
		Use:           "manjuc",
		Short:         "Manchu morphological analysis and grammar transformation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML engine config path")

	newEnv := func() (*zap.Logger, *pipeline.Pipeline, error) {
		logCfg := zap.NewProductionConfig()
		if lvl, err := zapcore.ParseLevel(logLevel); err == nil {
			logCfg.Level = zap.NewAtomicLevelAt(lvl)
		}
		log, err := logCfg.Build()
		if err != nil {
			return nil, nil, err
		}

		cfg := pipeline.DefaultConfig()
		if configPath != "" {
			cfg, err = pipeline.LoadConfig(configPath)
			if err != nil {
				return nil, nil, err
			}
		}
		store, err := resource.LoadEmbedded(resource.WithLogger(log))
		if err != nil {
			return nil, nil, err
		}
		return log, pipeline.New(store, cfg), nil
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze <word>...",
		Short: "Analyze words into stem and suffix chain",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, p, err := newEnv()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			tokens := make([]morph.Token, 0, len(args))
			for _, w := range args {
				tok, err := p.Analyzer().Analyze(normalize.Word(w), resource.Unknown)
				if err != nil {
					return err
				}
				tokens = append(tokens, tok)
			}
			return printJSON(cmd, tokens)
		},
	}

	glossCmd := &cobra.Command{
		Use:   "gloss <word>...",
		Short: "Print stem-FEATURE glosses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, p, err := newEnv()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			tokens := make([]morph.Token, 0, len(args))
			for _, w := range args {
				tok, err := p.Analyzer().Analyze(normalize.Word(w), resource.Unknown)
				if err != nil {
					return err
				}
				tokens = append(tokens, tok)
			}
			cmd.Println(morph.SentenceGloss(tokens))
			return nil
		},
	}

	tokenizeCmd := &cobra.Command{
		Use:   "tokenize <text>",
		Short: "Split text into typed tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, tokenizer.Tokens(args[0]))
		},
	}

	parseCmd := &cobra.Command{
		Use:   "parse <text>",
		Short: "Run the full pipeline over a sentence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, p, err := newEnv()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			dir := grammar.SourceToTarget
			if strings.EqualFold(direction, "target_to_source") {
				dir = grammar.TargetToSource
			}

			var results []grammar.ParseResult
			for _, sent := range tokenizer.Sentences(normalize.Text(args[0])) {
				words := tokenizer.Words(sent)
				if len(words) == 0 {
					continue
				}
				res, err := p.Parse(context.Background(), words, dir)
				if err != nil {
					return err
				}
				log.Debug("sentence parsed",
					zap.Int("tokens", len(res.Tokens)),
					zap.Int("applications", len(res.Applications)),
					zap.Float64("confidence", res.Confidence))
				results = append(results, res)
			}
			return printJSON(cmd, results)
		},
	}
	parseCmd.Flags().StringVar(&direction, "direction", "source_to_target", "translation direction")

	root.AddCommand(analyzeCmd, glossCmd, tokenizeCmd, parseCmd)
	return root.Execute()
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))
	return nil
}
