// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import "testing"

// Defaults that are true cannot live in the config structs (the bool
// zero value is false), so they are pinned at the viper layer. Losing
// one silently changes pipeline behavior for out-of-the-box configs.
func TestPipelineConfigDefaults(t *testing.T) {
	initConfig()

	cfg, err := pipelineConfig(corpusCmd)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Pairs.DropNullAuthors {
		t.Error("pairs.drop_null_authors must default to true")
	}
	if !cfg.Disambiguation.SamePaperDiffPeople {
		t.Error("disambiguation.same_paper_diff_people must default to true")
	}
	if cfg.Store.DataDir != "data" {
		t.Errorf("store data dir = %q, want data", cfg.Store.DataDir)
	}
}
