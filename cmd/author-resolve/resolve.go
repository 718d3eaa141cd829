// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/author-resolve/internal/classifier"
	"github.com/pdiddy/author-resolve/internal/compare"
	"github.com/pdiddy/author-resolve/internal/disambig"
	"github.com/pdiddy/author-resolve/internal/store"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [target-ids...]",
	Short: "Decide which existing author each target id belongs to",
	Long: `Resolve runs the disambiguation engine for each target id: candidate
authors are discovered by name similarity (or supplied via --candidates),
every target mention is compared against every candidate mention, and the
classifier's votes decide the match. Decisions are recorded in the store
and printed as JSON.`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("model-dir", "", "model directory (default from config)")
	resolveCmd.Flags().String("model", "", "model name (default from config)")
	resolveCmd.Flags().String("candidates", "", "YAML file mapping target id to explicit candidate ids")
	resolveCmd.Flags().String("output", "", "write decisions JSON to a file instead of stdout")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more target author ids")
	}

	cfg, err := pipelineConfig(cmd)
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("model-dir"); dir != "" {
		cfg.Disambiguation.ModelDir = dir
	}
	if name, _ := cmd.Flags().GetString("model"); name != "" {
		cfg.Disambiguation.ModelName = name
	}

	var overrides map[string][]string
	if path, _ := cmd.Flags().GetString("candidates"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading candidates file: %w", err)
		}
		if err := yaml.Unmarshal(data, &overrides); err != nil {
			return fmt.Errorf("parsing candidates file: %w", err)
		}
	}

	s, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	papers, authorPapers, idToName, err := s.Corpus(ctx)
	if err != nil {
		return err
	}

	orgCorpus, deptCorpus := compare.Corpora(papers)
	cmp, err := compare.NewComparator(cfg.Compare, orgCorpus, deptCorpus)
	if err != nil {
		return err
	}

	cfg.Disambiguation = cfg.Disambiguation.Defaults()
	model, err := classifier.Load(cfg.Disambiguation.ModelDir, cfg.Disambiguation.ModelName, compare.Terms())
	if err != nil {
		return err
	}

	engine, err := disambig.NewEngine(cfg.Disambiguation, papers, authorPapers, idToName, cmp, model)
	if err != nil {
		return err
	}
	decisions, err := engine.Resolve(ctx, args, overrides, os.Stderr)
	if err != nil {
		return err
	}

	if err := s.PutDecisions(ctx, decisions); err != nil {
		return err
	}

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(decisions)
}
