// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/author-resolve/internal/compare"
	"github.com/pdiddy/author-resolve/internal/pairs"
	"github.com/pdiddy/author-resolve/internal/store"
)

var pairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "Generate labeled training pairs from the corpus",
	Long: `Pairs enumerates author mentions across the stored corpus, blocks them
into candidate buckets, vets every in-block pair, balances the classes and
writes labeled feature vectors for classifier training.`,
	RunE: runPairs,
}

func init() {
	pairsCmd.Flags().Int64("seed", 0, "random seed for balancing (0 = draw from the clock)")
	pairsCmd.Flags().Int("cutoff", 0, "minimum paper count per author (0 = config default)")
	pairsCmd.Flags().StringSlice("special", nil, "author ids that must be covered regardless of cutoffs")
	pairsCmd.Flags().StringSlice("exclude", nil, "author ids to skip entirely")
	pairsCmd.Flags().String("incomplete", "", "YAML file listing paper ids to exclude from enumeration")
	pairsCmd.Flags().String("output", "", "output file (default <data-dir>/pairs.json)")

	rootCmd.AddCommand(pairsCmd)
}

func runPairs(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig(cmd)
	if err != nil {
		return err
	}
	if seed, _ := cmd.Flags().GetInt64("seed"); seed != 0 {
		cfg.Pairs.Seed = seed
	}
	if cutoff, _ := cmd.Flags().GetInt("cutoff"); cutoff != 0 {
		cfg.Pairs.AuthorCutoff = cutoff
	}
	if special, _ := cmd.Flags().GetStringSlice("special"); len(special) > 0 {
		cfg.Pairs.SpecialKeys = special
	}
	if exclude, _ := cmd.Flags().GetStringSlice("exclude"); len(exclude) > 0 {
		cfg.Pairs.Exclude = exclude
	}

	var incomplete []string
	if path, _ := cmd.Flags().GetString("incomplete"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading incomplete-papers list: %w", err)
		}
		if err := yaml.Unmarshal(data, &incomplete); err != nil {
			return fmt.Errorf("parsing incomplete-papers list: %w", err)
		}
	}

	s, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	papers, err := s.Papers(ctx)
	if err != nil {
		return err
	}

	gen, err := pairs.NewGenerator(cfg.Pairs)
	if err != nil {
		return err
	}
	ds, err := gen.Generate(ctx, papers, incomplete, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "pairs: %d same, %d different, %d special same, %d special different\n",
		ds.Same, ds.Different, ds.SpecialSame, ds.SpecialDifferent)

	orgCorpus, deptCorpus := compare.Corpora(papers)
	cmp, err := compare.NewComparator(cfg.Compare, orgCorpus, deptCorpus)
	if err != nil {
		return err
	}
	samples, err := gen.Vectors(ctx, cmp, ds, os.Stdout)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = filepath.Join(cfg.Store.DataDir, "pairs.json")
	}
	data, err := json.MarshalIndent(samples, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding samples: %w", err)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("writing samples: %w", err)
	}
	fmt.Fprintf(os.Stdout, "wrote %d samples to %s\n", len(samples), output)
	return nil
}
