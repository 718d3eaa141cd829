// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CandidateShare is one candidate's fraction of same votes.
type CandidateShare struct {
	ID       string  `json:"id"`
	Fraction float64 `json:"fraction"`
}

// Decision is the engine's verdict for one target id. Targets that were
// evaluated but found no confident match carry Same == nil rather than
// being omitted from the result map.
type Decision struct {
	// Same is the candidate id judged to be the same person, or nil.
	Same *string `json:"same"`

	// Different lists candidates that were compared and rejected.
	Different []string `json:"different"`

	// PapersAffected lists the target's paper ids.
	PapersAffected []string `json:"papers_affected"`

	// PercentSame carries every candidate's same-vote fraction when the
	// engine runs in evaluation mode.
	PercentSame []CandidateShare `json:"percent_same,omitempty"`
}
