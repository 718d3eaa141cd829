// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/author-resolve/internal/split"
	"github.com/pdiddy/author-resolve/internal/store"
)

var splitCmd = &cobra.Command{
	Use:   "split <target-id> [paper-ids...]",
	Short: "Split an author id into fresh suffixed identifiers",
	Long: `Split mints new suffixed identifiers for an author id that covers more
than one person and migrates the listed papers onto them. Without paper
ids every paper of the target migrates. The rewritten corpus replaces the
stored one.`,
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().Bool("different-people", false, "treat every paper under the id as a different person")
	splitCmd.Flags().Bool("one-per-paper", false, "allow at most one migrated id per paper")
	splitCmd.Flags().Bool("skip-error-papers", false, "skip papers that failed a previous migration")

	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide the author id to split")
	}
	target := args[0]
	var papers []string
	if len(args) > 1 {
		papers = args[1:]
	}

	cfg, err := pipelineConfig(cmd)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetBool("different-people"); v {
		cfg.Split.TreatIDDifferentPeople = true
	}
	if v, _ := cmd.Flags().GetBool("one-per-paper"); v {
		cfg.Split.OneTargetPerPaper = true
	}
	if v, _ := cmd.Flags().GetBool("skip-error-papers"); v {
		cfg.Split.SkipErrorPapers = true
	}

	s, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	corpus, authorPapers, idToName, err := s.Corpus(ctx)
	if err != nil {
		return err
	}

	splitter := split.NewSplitter(cfg.Split, corpus, authorPapers, idToName)
	ids, err := splitter.CreateTarget(target, papers, os.Stdout)
	if err != nil {
		return err
	}
	newPapers, newAuthorPapers, newIDToName := splitter.FillData(os.Stdout)

	if err := s.ReplaceCorpus(ctx, newPapers, newAuthorPapers, newIDToName); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "split %s into %v\n", target, ids)
	return nil
}
