// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classifier loads and applies the pairwise same-person model.
// Models are trained externally; this package only evaluates saved
// artifacts, so the interface is deliberately small.
package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Model is a binary classifier over feature vectors. Predict returns
// one {0,1} label per row.
type Model interface {
	Predict(features [][]float64) ([]int, error)
}

// ProbabilityModel is a Model that can also report P(label=1) per row.
type ProbabilityModel interface {
	Model
	PredictProba(features [][]float64) ([]float64, error)
}

// ErrHardVoting is returned when probabilities are requested from a
// hard-voting ensemble; callers fall back to plain predictions.
var ErrHardVoting = errors.New("classifier: hard-voting model has no probabilities")

// Logistic is a single logistic-regression unit.
type Logistic struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// PredictProba returns P(label=1) for each row.
func (m *Logistic) PredictProba(features [][]float64) ([]float64, error) {
	out := make([]float64, len(features))
	for i, row := range features {
		if len(row) != len(m.Coef) {
			return nil, fmt.Errorf("classifier: row %d has %d features, model expects %d", i, len(row), len(m.Coef))
		}
		z := m.Intercept
		for j, w := range m.Coef {
			z += w * row[j]
		}
		out[i] = 1 / (1 + math.Exp(-z))
	}
	return out, nil
}

// Predict thresholds PredictProba at 0.5.
func (m *Logistic) Predict(features [][]float64) ([]int, error) {
	probs, err := m.PredictProba(features)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(probs))
	for i, p := range probs {
		if p >= 0.5 {
			out[i] = 1
		}
	}
	return out, nil
}

// Estimator is one weighted member of a voting ensemble.
type Estimator struct {
	Name   string
	Weight float64
	Model  Model
}

// Voting combines estimators by weighted vote. Hard voting counts
// predicted labels; soft voting averages probabilities and requires
// every estimator to support them.
type Voting struct {
	Mode       string // "hard" or "soft"
	Estimators []Estimator
}

// Predict returns the ensemble's majority label per row.
func (v *Voting) Predict(features [][]float64) ([]int, error) {
	if len(v.Estimators) == 0 {
		return nil, errors.New("classifier: voting model has no estimators")
	}
	if v.Mode == "soft" {
		probs, err := v.PredictProba(features)
		if err != nil {
			return nil, err
		}
		out := make([]int, len(probs))
		for i, p := range probs {
			if p >= 0.5 {
				out[i] = 1
			}
		}
		return out, nil
	}

	votes := make([]float64, len(features))
	total := 0.0
	for _, est := range v.Estimators {
		labels, err := est.Model.Predict(features)
		if err != nil {
			return nil, fmt.Errorf("classifier: estimator %s: %w", est.Name, err)
		}
		for i, label := range labels {
			votes[i] += float64(label) * est.Weight
		}
		total += est.Weight
	}
	out := make([]int, len(features))
	for i, v := range votes {
		if v*2 >= total {
			out[i] = 1
		}
	}
	return out, nil
}

// PredictProba returns the weighted mean probability per row. Hard
// ensembles reject the call with ErrHardVoting.
func (v *Voting) PredictProba(features [][]float64) ([]float64, error) {
	if v.Mode != "soft" {
		return nil, ErrHardVoting
	}
	if len(v.Estimators) == 0 {
		return nil, errors.New("classifier: voting model has no estimators")
	}
	sums := make([]float64, len(features))
	total := 0.0
	for _, est := range v.Estimators {
		pm, ok := est.Model.(ProbabilityModel)
		if !ok {
			return nil, fmt.Errorf("classifier: estimator %s cannot produce probabilities", est.Name)
		}
		probs, err := pm.PredictProba(features)
		if err != nil {
			return nil, fmt.Errorf("classifier: estimator %s: %w", est.Name, err)
		}
		for i, p := range probs {
			sums[i] += p * est.Weight
		}
		total += est.Weight
	}
	if total == 0 {
		return nil, errors.New("classifier: voting model has zero total weight")
	}
	for i := range sums {
		sums[i] /= total
	}
	return sums, nil
}

// Artifact is the on-disk model format at <model-dir>/<name>/model.json.
type Artifact struct {
	Name       string              `json:"name"`
	Terms      []string            `json:"terms"`
	Voting     string              `json:"voting,omitempty"`
	Estimators []ArtifactEstimator `json:"estimators"`
}

// ArtifactEstimator is one serialized estimator.
type ArtifactEstimator struct {
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Weight    float64   `json:"weight,omitempty"`
	Coef      []float64 `json:"coef,omitempty"`
	Intercept float64   `json:"intercept,omitempty"`
}

// Load reads the model artifact for name under dir and validates it
// against terms, the caller's feature ordering. A single-estimator
// artifact unwraps to the bare estimator; multiple estimators load as a
// Voting ensemble.
func Load(dir, name string, terms []string) (Model, error) {
	path := filepath.Join(dir, name, "model.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("classifier: load %s: %w", path, err)
	}
	var art Artifact
	if err := json.Unmarshal(raw, &art); err != nil {
		return nil, fmt.Errorf("classifier: parse %s: %w", path, err)
	}

	// The term list is the model contract; a reordered or resized vector
	// silently invalidates trained weights, so fail loudly instead.
	if len(art.Terms) != len(terms) {
		return nil, fmt.Errorf("classifier: model %s trained on %d terms, comparator produces %d", name, len(art.Terms), len(terms))
	}
	for i, term := range art.Terms {
		if term != terms[i] {
			return nil, fmt.Errorf("classifier: model %s term %d is %q, comparator produces %q", name, i, term, terms[i])
		}
	}
	if len(art.Estimators) == 0 {
		return nil, fmt.Errorf("classifier: model %s has no estimators", name)
	}

	estimators := make([]Estimator, 0, len(art.Estimators))
	for _, ae := range art.Estimators {
		var m Model
		switch ae.Type {
		case "logistic":
			if len(ae.Coef) != len(terms) {
				return nil, fmt.Errorf("classifier: estimator %s has %d coefficients, want %d", ae.Name, len(ae.Coef), len(terms))
			}
			m = &Logistic{Coef: ae.Coef, Intercept: ae.Intercept}
		default:
			return nil, fmt.Errorf("classifier: estimator %s has unknown type %q", ae.Name, ae.Type)
		}
		weight := ae.Weight
		if weight == 0 {
			weight = 1
		}
		estimators = append(estimators, Estimator{Name: ae.Name, Weight: weight, Model: m})
	}

	if len(estimators) == 1 && art.Voting == "" {
		return estimators[0].Model, nil
	}
	mode := art.Voting
	if mode == "" {
		mode = "hard"
	}
	if mode != "hard" && mode != "soft" {
		return nil, fmt.Errorf("classifier: model %s has unknown voting mode %q", name, mode)
	}
	return &Voting{Mode: mode, Estimators: estimators}, nil
}

// Save writes a model artifact under dir at <dir>/<name>/model.json.
func Save(dir string, art Artifact) error {
	if art.Name == "" {
		return errors.New("classifier: artifact has no name")
	}
	modelDir := filepath.Join(dir, art.Name)
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		return fmt.Errorf("classifier: save %s: %w", art.Name, err)
	}
	raw, err := json.MarshalIndent(art, "", "  ")
	if err != nil {
		return fmt.Errorf("classifier: save %s: %w", art.Name, err)
	}
	if err := os.WriteFile(filepath.Join(modelDir, "model.json"), raw, 0o644); err != nil {
		return fmt.Errorf("classifier: save %s: %w", art.Name, err)
	}
	return nil
}
