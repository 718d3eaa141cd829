// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package strsim

import (
	"errors"
	"math"
)

// ErrEmptyCorpus is returned when a SoftTFIDF score cannot be computed
// because the corpus or an input weight vector is empty. Callers treat
// it as an expected sparse-data condition and fall back to a plain
// string similarity.
var ErrEmptyCorpus = errors.New("soft tf-idf: empty corpus or zero weight vector")

// SoftTFIDF scores token-list similarity with corpus IDF weights and a
// soft (similarity-thresholded) token match. It is pretrained on a
// corpus of token lists — organization names or department names — and
// is read-only after construction, so one instance may be shared across
// workers.
type SoftTFIDF struct {
	sim       Func
	threshold float64
	idf       map[string]float64
	docs      int
}

// NewSoftTFIDF trains a SoftTFIDF scorer on corpus. threshold is the
// minimum per-token similarity for two tokens to count as a match; sim
// scores token pairs.
func NewSoftTFIDF(corpus [][]string, threshold float64, sim Func) *SoftTFIDF {
	df := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]bool, len(doc))
		for _, tok := range doc {
			if !seen[tok] {
				seen[tok] = true
				df[tok]++
			}
		}
	}

	idf := make(map[string]float64, len(df))
	for tok, n := range df {
		idf[tok] = math.Log(float64(len(corpus)) / float64(n))
	}

	return &SoftTFIDF{
		sim:       sim,
		threshold: threshold,
		idf:       idf,
		docs:      len(corpus),
	}
}

// tokenIDF returns the IDF weight for a token, treating unseen tokens as
// occurring in a single corpus document.
func (s *SoftTFIDF) tokenIDF(tok string) float64 {
	if w, ok := s.idf[tok]; ok {
		return w
	}
	return math.Log(float64(s.docs))
}

// Score returns the soft TF-IDF similarity of two token lists. It
// returns ErrEmptyCorpus when the corpus is empty or either input
// reduces to a zero-weight vector — the division-by-zero edge case the
// caller degrades on.
func (s *SoftTFIDF) Score(a, b []string) (float64, error) {
	if s.docs == 0 || len(a) == 0 || len(b) == 0 {
		return 0, ErrEmptyCorpus
	}

	wa := s.weights(a)
	wb := s.weights(b)
	na := vecNorm(wa)
	nb := vecNorm(wb)
	if na == 0 || nb == 0 {
		return 0, ErrEmptyCorpus
	}

	score := 0.0
	for tok, w := range wa {
		bestSim := 0.0
		bestTok := ""
		for other := range wb {
			sim := s.sim(tok, other)
			// Deterministic under map iteration: break score ties on the token.
			if sim > bestSim || (sim == bestSim && bestTok != "" && other < bestTok) {
				bestSim = sim
				bestTok = other
			}
		}
		if bestSim < s.threshold {
			continue
		}
		score += (w / na) * (wb[bestTok] / nb) * bestSim
	}
	return score, nil
}

func (s *SoftTFIDF) weights(doc []string) map[string]float64 {
	tf := make(map[string]int, len(doc))
	for _, tok := range doc {
		tf[tok]++
	}
	w := make(map[string]float64, len(tf))
	for tok, n := range tf {
		w[tok] = float64(n) * s.tokenIDF(tok)
	}
	return w
}

func vecNorm(w map[string]float64) float64 {
	sum := 0.0
	for _, v := range w {
		sum += v * v
	}
	return math.Sqrt(sum)
}
