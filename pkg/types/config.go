// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CompareConfig holds settings for pairwise feature-vector construction.
type CompareConfig struct {
	// Algorithm names the string-similarity primitive, "<algorithm>-<measure>"
	// (default "jaro-similarity").
	Algorithm string `json:"algorithm" yaml:"algorithm"`

	// SoftTFIDFThreshold is the per-token similarity floor for the
	// soft-TF-IDF organization and department scores (default 0.4).
	SoftTFIDFThreshold float64 `json:"soft_tfidf_threshold" yaml:"soft_tfidf_threshold"`

	// SharedScorePenalty is emitted by the shared-affiliation consistency
	// scores when exactly one side has co-authors (default 10). The value
	// is an empirical classifier-training concern, so it is configuration
	// rather than a constant.
	SharedScorePenalty float64 `json:"shared_score_penalty" yaml:"shared_score_penalty"`

	// TypeScorePenalty is the analogous penalty for the affiliation-type
	// consistency scores (default 5).
	TypeScorePenalty float64 `json:"type_score_penalty" yaml:"type_score_penalty"`
}

// Defaults fills zero-valued fields with the trained-model defaults.
func (c CompareConfig) Defaults() CompareConfig {
	if c.Algorithm == "" {
		c.Algorithm = "jaro-similarity"
	}
	if c.SoftTFIDFThreshold == 0 {
		c.SoftTFIDFThreshold = 0.4
	}
	if c.SharedScorePenalty == 0 {
		c.SharedScorePenalty = 10
	}
	if c.TypeScorePenalty == 0 {
		c.TypeScorePenalty = 5
	}
	return c
}

// PairsConfig holds settings for training-pair generation.
type PairsConfig struct {
	// DiffSameRatio caps the majority class at ratio x the minority class
	// when balancing (default 2).
	DiffSameRatio float64 `json:"diff_same_ratio" yaml:"diff_same_ratio"`

	// AuthorCutoff is the minimum paper count for an author's mentions to
	// enter pair generation (default 10). Special keys bypass it.
	AuthorCutoff int `json:"author_cutoff" yaml:"author_cutoff"`

	// NameSimilarityCutoff excludes pairs whose ids score below it
	// (default 0.6). Compared at integer-percent precision.
	NameSimilarityCutoff float64 `json:"name_similarity_cutoff" yaml:"name_similarity_cutoff"`

	// SeparateChars and SeparateWords shape the blocking key: the first
	// SeparateChars characters of the first SeparateWords hyphen-separated
	// id words (defaults 1 and 1).
	SeparateChars int `json:"separate_chars" yaml:"separate_chars"`
	SeparateWords int `json:"separate_words" yaml:"separate_words"`

	// Algorithm names the string-similarity primitive for the id prefilter.
	Algorithm string `json:"algorithm" yaml:"algorithm"`

	// Exclude lists author ids to skip entirely.
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`

	// SpecialKeys lists ids that must be covered regardless of cutoffs.
	SpecialKeys []string `json:"special_keys,omitempty" yaml:"special_keys,omitempty"`

	// AllowExactSpecial admits mentions whose id exactly equals a special
	// key; by default only ids containing a special key as a substring are
	// treated as special.
	AllowExactSpecial bool `json:"allow_exact_special" yaml:"allow_exact_special"`

	// RequireExactMatch restricts special-case buckets to exact id matches.
	RequireExactMatch bool `json:"require_exact_match" yaml:"require_exact_match"`

	// DropNullAuthors drops mentions missing an email or a typed
	// affiliation, unless the mention is special (default true).
	DropNullAuthors bool `json:"drop_null_authors" yaml:"drop_null_authors"`

	// Seed fixes the random sample used for balancing; the same seed
	// reproduces the same training set.
	Seed int64 `json:"seed" yaml:"seed"`

	// Cores is the worker-pool size for batch jobs.
	Cores int `json:"cores" yaml:"cores"`

	// BatchSize is the pair-vetting batch size (default 25000).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// MinBatchLen is the combination count above which vetting fans out to
	// the worker pool (default 100000).
	MinBatchLen int `json:"min_batch_len" yaml:"min_batch_len"`

	// CompareBatchSize is the feature-extraction batch size (default 2000).
	CompareBatchSize int `json:"compare_batch_size" yaml:"compare_batch_size"`
}

// Defaults fills zero-valued fields with the documented defaults.
func (c PairsConfig) Defaults() PairsConfig {
	if c.DiffSameRatio == 0 {
		c.DiffSameRatio = 2
	}
	if c.AuthorCutoff == 0 {
		c.AuthorCutoff = 10
	}
	if c.NameSimilarityCutoff == 0 {
		c.NameSimilarityCutoff = 0.6
	}
	if c.SeparateChars == 0 {
		c.SeparateChars = 1
	}
	if c.SeparateWords == 0 {
		c.SeparateWords = 1
	}
	if c.Algorithm == "" {
		c.Algorithm = "jaro-similarity"
	}
	if c.Cores == 0 {
		c.Cores = 4
	}
	if c.BatchSize == 0 {
		c.BatchSize = 25000
	}
	if c.MinBatchLen == 0 {
		c.MinBatchLen = 100000
	}
	if c.CompareBatchSize == 0 {
		c.CompareBatchSize = 2000
	}
	return c
}

// TieBreaker selects how the engine resolves multiple candidates above
// the vote threshold.
type TieBreaker string

const (
	// TieBreakMax picks the candidate with the highest summed raw votes.
	TieBreakMax TieBreaker = "max"
	// TieBreakMaxPercent picks the candidate with the highest same-vote
	// fraction.
	TieBreakMaxPercent TieBreaker = "max_percent"
)

// DisambiguationConfig holds settings for the disambiguation engine.
type DisambiguationConfig struct {
	// Threshold is the same-vote fraction a candidate must strictly exceed
	// (integer-percent comparison) to count as a match (default 0.75).
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// NameSimilarityCutoff governs candidate discovery (default 0.9).
	NameSimilarityCutoff float64 `json:"name_similarity_cutoff" yaml:"name_similarity_cutoff"`

	// Algorithm names the string-similarity primitive.
	Algorithm string `json:"algorithm" yaml:"algorithm"`

	// ModelDir and ModelName locate the classifier artifact at
	// <model-dir>/<model-name>/model.json.
	ModelDir  string `json:"model_dir" yaml:"model_dir"`
	ModelName string `json:"model_name" yaml:"model_name"`

	// TieBreaker selects the above-threshold tie resolution strategy.
	TieBreaker TieBreaker `json:"tie_breaker" yaml:"tie_breaker"`

	// SimOverrides lets a sufficiently similar whole identifier bypass the
	// initials filter during candidate discovery. It never bypasses a
	// first-name mismatch.
	SimOverrides bool `json:"sim_overrides" yaml:"sim_overrides"`

	// SamePaperDiffPeople records candidates co-occurring on a paper with
	// the target as known different and prunes their pairs everywhere.
	// Defaults to true at the config layer (the bool zero value cannot
	// express that); callers constructing the struct directly must set it.
	SamePaperDiffPeople bool `json:"same_paper_diff_people" yaml:"same_paper_diff_people"`

	// UseProbabilities votes with predict_proba when the model supports
	// it; hard-voting models reject this and fall back to predictions.
	UseProbabilities bool `json:"use_probabilities" yaml:"use_probabilities"`

	// Cores is the worker-pool size for batch comparison.
	Cores int `json:"cores" yaml:"cores"`

	// MinBatchLen is the pair count above which comparison fans out to the
	// worker pool.
	MinBatchLen int `json:"min_batch_len" yaml:"min_batch_len"`
}

// Defaults fills zero-valued fields with the documented defaults.
func (c DisambiguationConfig) Defaults() DisambiguationConfig {
	if c.Threshold == 0 {
		c.Threshold = 0.75
	}
	if c.NameSimilarityCutoff == 0 {
		c.NameSimilarityCutoff = 0.9
	}
	if c.Algorithm == "" {
		c.Algorithm = "jaro-similarity"
	}
	if c.ModelName == "" {
		c.ModelName = "VC1"
	}
	if c.TieBreaker == "" {
		c.TieBreaker = TieBreakMax
	}
	if c.Cores == 0 {
		c.Cores = 4
	}
	if c.MinBatchLen == 0 {
		c.MinBatchLen = 20000
	}
	return c
}

// SplitConfig holds settings for target creation and id migration.
type SplitConfig struct {
	// TreatIDDifferentPeople makes every paper under an id its own target.
	TreatIDDifferentPeople bool `json:"treat_id_different_people" yaml:"treat_id_different_people"`

	// OneTargetPerPaper allows at most one migrated id per paper.
	OneTargetPerPaper bool `json:"one_target_per_paper" yaml:"one_target_per_paper"`

	// SkipErrorPapers skips papers that failed a previous migration even
	// for unrelated ids.
	SkipErrorPapers bool `json:"skip_error_papers" yaml:"skip_error_papers"`
}

// StoreConfig holds settings for the corpus store.
type StoreConfig struct {
	// DataDir is the directory holding corpus.db and JSON corpus dumps.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Compare        CompareConfig        `json:"compare" yaml:"compare"`
	Pairs          PairsConfig          `json:"pairs" yaml:"pairs"`
	Disambiguation DisambiguationConfig `json:"disambiguation" yaml:"disambiguation"`
	Split          SplitConfig          `json:"split" yaml:"split"`
	Store          StoreConfig          `json:"store" yaml:"store"`
}
