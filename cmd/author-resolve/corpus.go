// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/author-resolve/internal/store"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Ingest parsed-paper JSON dumps into the corpus store",
	Long: `Corpus reads papers.json, id_to_name.json and author_papers.json from
the data directory and loads them into corpus.db. Re-running replaces
existing records, so refreshed dumps can be ingested in place.`,
	RunE: runCorpus,
}

func init() {
	rootCmd.AddCommand(corpusCmd)
}

func runCorpus(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig(cmd)
	if err != nil {
		return err
	}

	s, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	_, err = s.Ingest(context.Background(), os.Stdout)
	return err
}
