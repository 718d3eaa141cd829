// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the author-resolve CLI: training
// pair generation, author disambiguation, target splitting and
// evaluation over a SQLite-backed paper corpus.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/author-resolve/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the author-resolve CLI.
var rootCmd = &cobra.Command{
	Use:   "author-resolve",
	Short: "Author identity disambiguation for parsed paper corpora",
	Long: `author-resolve decides which author identifiers in a parsed paper corpus
refer to the same person. A trained classifier votes over pairwise feature
vectors built from names, affiliations, co-authors and citations.

Each pipeline stage is a subcommand: corpus ingests parsed papers into the
local store, pairs builds labeled training data, resolve runs the
disambiguation engine, split migrates conflicting identifiers, and evaluate
scores decisions against ground truth.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./author-resolve.yaml or ~/.config/author-resolve/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "data", "directory holding corpus.db and JSON corpus dumps")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("author-resolve")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "author-resolve"))
		}
	}

	viper.SetEnvPrefix("AUTHOR_RESOLVE")
	viper.AutomaticEnv()

	// The zero value of a bool flag cannot express "default true".
	viper.SetDefault("pairs.drop_null_authors", true)
	viper.SetDefault("disambiguation.same_paper_diff_people", true)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig decodes the loaded config file into the typed stage
// configurations. Flags that override individual fields are applied by
// each subcommand after this call.
func pipelineConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	err := viper.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	})
	if err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}

	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.Store.DataDir = dataDir
	}
	if cfg.Store.DataDir == "" {
		cfg.Store.DataDir = "data"
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
