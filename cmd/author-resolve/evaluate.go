// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/author-resolve/internal/disambig"
	"github.com/pdiddy/author-resolve/internal/store"
	"github.com/pdiddy/author-resolve/pkg/types"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score recorded decisions against ground truth",
	Long: `Evaluate compares the decisions recorded by resolve against a ground
truth mapping and reports precision, recall and F1. Targets missing from
the truth file are expected to match their own id with the numeric suffix
stripped, which covers synthetic split targets.`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().String("truth", "", "YAML file mapping target id to expected author id")
	evaluateCmd.Flags().String("decisions", "", "decisions JSON file (default: the store's recorded decisions)")

	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig(cmd)
	if err != nil {
		return err
	}

	var decisions map[string]types.Decision
	if path, _ := cmd.Flags().GetString("decisions"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading decisions file: %w", err)
		}
		if err := json.Unmarshal(data, &decisions); err != nil {
			return fmt.Errorf("parsing decisions file: %w", err)
		}
	} else {
		s, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer s.Close()
		decisions, err = s.Decisions(context.Background())
		if err != nil {
			return err
		}
	}
	if len(decisions) == 0 {
		return fmt.Errorf("no decisions to evaluate: run resolve first or pass --decisions")
	}

	truth := make(map[string]string)
	if path, _ := cmd.Flags().GetString("truth"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading truth file: %w", err)
		}
		if err := yaml.Unmarshal(data, &truth); err != nil {
			return fmt.Errorf("parsing truth file: %w", err)
		}
	}

	metrics := disambig.Evaluate(decisions, truth)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(metrics)
}
