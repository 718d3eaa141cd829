// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package disambig resolves ambiguous author identifiers: it discovers
// candidate ids for each target, classifies every cross-paper mention
// pair and turns the votes into a per-target decision.
package disambig

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/author-resolve/internal/authorctx"
	"github.com/pdiddy/author-resolve/internal/classifier"
	"github.com/pdiddy/author-resolve/internal/compare"
	"github.com/pdiddy/author-resolve/internal/identity"
	"github.com/pdiddy/author-resolve/internal/strsim"
	"github.com/pdiddy/author-resolve/internal/worker"
	"github.com/pdiddy/author-resolve/pkg/types"
)

// Caller-misuse conditions surface as these sentinels; sparse-data
// conditions never do.
var (
	ErrUnknownAuthor  = errors.New("unknown author id")
	ErrSelfComparison = errors.New("candidate cannot be compared to itself")
	ErrNotTarget      = errors.New("override id is not a target")
	ErrBadTieBreaker  = errors.New("unknown tie breaker")
)

// Engine runs stateless disambiguation batches over a fixed corpus. The
// corpus maps are read-only lookup tables supplied by the caller.
type Engine struct {
	cfg          types.DisambiguationConfig
	papers       map[string]*types.Paper
	authorPapers map[string][]string
	idToName     map[string]string

	sim       strsim.Func
	extractor *authorctx.Extractor
	cmp       *compare.Comparator
	model     classifier.Model
}

// NewEngine builds an engine over the given corpus, comparator and
// classifier model.
func NewEngine(cfg types.DisambiguationConfig, papers map[string]*types.Paper, authorPapers map[string][]string,
	idToName map[string]string, cmp *compare.Comparator, model classifier.Model) (*Engine, error) {
	cfg = cfg.Defaults()
	if cfg.TieBreaker != types.TieBreakMax && cfg.TieBreaker != types.TieBreakMaxPercent {
		return nil, fmt.Errorf("%w: %q", ErrBadTieBreaker, cfg.TieBreaker)
	}
	sim, err := strsim.ForName(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:          cfg,
		papers:       papers,
		authorPapers: authorPapers,
		idToName:     idToName,
		sim:          sim,
		extractor:    authorctx.NewExtractor(),
		cmp:          cmp,
		model:        model,
	}, nil
}

// Resolve disambiguates every target id. overrides supplies manual
// candidate lists keyed by target; targets without an entry go through
// candidate discovery. Every target appears in the result: targets with
// no candidates or no confident match come back with Same == nil rather
// than being omitted.
func (e *Engine) Resolve(ctx context.Context, targets []string, overrides map[string][]string, w io.Writer) (map[string]types.Decision, error) {
	if err := e.validate(targets, overrides); err != nil {
		return nil, err
	}
	targetSet := make(map[string]bool, len(targets))
	for _, t := range targets {
		targetSet[t] = true
	}

	out := make(map[string]types.Decision, len(targets))
	for _, target := range targets {
		decision, err := e.resolveTarget(ctx, target, targetSet, overrides[target], w)
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", target, err)
		}
		out[target] = decision
	}
	return out, nil
}

// validate checks the batch arguments. Unknown ids and self-comparison
// requests are caller bugs and fail the whole batch up front.
func (e *Engine) validate(targets []string, overrides map[string][]string) error {
	targetSet := make(map[string]bool, len(targets))
	for _, t := range targets {
		if _, ok := e.authorPapers[t]; !ok {
			return fmt.Errorf("%w: target %s", ErrUnknownAuthor, t)
		}
		targetSet[t] = true
	}
	for t, candidates := range overrides {
		if !targetSet[t] {
			return fmt.Errorf("%w: %s", ErrNotTarget, t)
		}
		for _, c := range candidates {
			if targetSet[c] {
				return fmt.Errorf("%w: %s", ErrSelfComparison, c)
			}
			if _, ok := e.authorPapers[c]; !ok {
				return fmt.Errorf("%w: candidate %s", ErrUnknownAuthor, c)
			}
		}
	}
	return nil
}

func (e *Engine) resolveTarget(ctx context.Context, target string, targetSet map[string]bool, candidates []string, w io.Writer) (types.Decision, error) {
	decision := types.Decision{PapersAffected: e.authorPapers[target]}

	if len(candidates) == 0 {
		name, ok := e.idToName[target]
		if !ok {
			fmt.Fprintf(w, "%s has no recorded name, skipping\n", target)
			return decision, nil
		}
		candidates = e.similarAuthors(target, name, targetSet, w)
		if len(candidates) == 0 {
			fmt.Fprintf(w, "%s has no similar authors\n", target)
			return decision, nil
		}
	}
	fmt.Fprintf(w, "%s has %d candidates\n", target, len(candidates))

	pairs, knownDifferent, err := e.buildPairs(target, candidates, w)
	if err != nil {
		return types.Decision{}, err
	}

	votes, err := e.classify(ctx, pairs, w)
	if err != nil {
		return types.Decision{}, err
	}

	same, shares, err := e.determineCorrectAuthor(votes)
	if err != nil {
		return types.Decision{}, err
	}

	decision.Same = same
	decision.PercentSame = shares
	for id := range votes {
		if same == nil || id != *same {
			decision.Different = append(decision.Different, id)
		}
	}
	decision.Different = append(decision.Different, knownDifferent...)
	sort.Strings(decision.Different)
	return decision, nil
}

// similarAuthors searches the id corpus for candidates that could denote
// the same person as the target. The first-name check is never bypassed:
// an otherwise-similar id with a different first name (yang-liu vs
// luyang-liu) is a strong bad-match signal. The initials check CAN be
// bypassed by a high whole-id similarity when SimOverrides is on, which
// admits ids whose display names carry extra tokens (nicknames,
// annotations) that break the initials sequence.
func (e *Engine) similarAuthors(targetID, targetName string, targetSet map[string]bool, w io.Writer) []string {
	cleaned := strings.ToLower(identity.CleanName(targetName, true))
	targetTokens := strings.Fields(cleaned)
	if len(targetTokens) == 0 {
		return nil
	}
	targetInitials := tokenInitials(targetTokens)

	var out []string
	for id, name := range e.idToName {
		if targetSet[id] || name == "" {
			continue
		}
		if !strings.EqualFold(name[:1], cleaned[:1]) {
			continue
		}
		candName := strings.ToLower(identity.CleanName(name, true))
		candTokens := strings.Fields(candName)
		if len(candTokens) == 0 {
			continue
		}

		// Whole-id similarity against the same number of id words as the
		// target has initials.
		words := strings.Split(id, "-")
		if len(words) > len(targetInitials) {
			words = words[:len(targetInitials)]
		}
		passSim := percent(e.sim(targetID, strings.Join(words, "-"))) >= percent(e.cfg.NameSimilarityCutoff)
		override := e.cfg.SimOverrides && passSim

		if percent(e.sim(candTokens[0], targetTokens[0])) < percent(e.cfg.NameSimilarityCutoff) {
			if passSim {
				fmt.Fprintf(w, "%s passed the similarity test but has a different first name\n", id)
			}
			continue
		}

		candInitials := tokenInitials(candTokens)
		sameInitials := len(candInitials) == len(targetInitials)
		if sameInitials {
			for i := range targetInitials {
				if targetInitials[i] != candInitials[i] {
					sameInitials = false
					break
				}
			}
		}
		if !sameInitials && !override {
			continue
		}

		if passSim {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// pair is one classifier input: a target mention against a candidate
// mention on a different paper.
type pair struct {
	target      string // target mention key
	candidateID string
	a, b        types.AuthorContext
}

// buildPairs crosses every target-paper mention with every
// candidate-paper mention, dropping same-paper pairs. When
// SamePaperDiffPeople is set, a candidate co-occurring with the target
// on any paper is known different and all of its pairs are pruned
// across every target paper.
func (e *Engine) buildPairs(target string, candidates []string, w io.Writer) ([]pair, []string, error) {
	knownDifferent := make(map[string]bool)
	if e.cfg.SamePaperDiffPeople {
		for _, pid := range e.authorPapers[target] {
			for _, cand := range candidates {
				for _, cpid := range e.authorPapers[cand] {
					if cpid == pid {
						knownDifferent[cand] = true
					}
				}
			}
		}
	}

	var out []pair
	for _, pid := range e.authorPapers[target] {
		paper, ok := e.papers[pid]
		if !ok {
			return nil, nil, fmt.Errorf("author index references unknown paper %s", pid)
		}
		targetCtx, err := e.extractor.Extract(paper, target)
		if err != nil {
			fmt.Fprintf(w, "skipping %s %s: %v\n", pid, target, err)
			continue
		}
		for _, cand := range candidates {
			if knownDifferent[cand] {
				continue
			}
			for _, cpid := range e.authorPapers[cand] {
				if cpid == pid {
					// Same paper, guaranteed different people.
					continue
				}
				candPaper, ok := e.papers[cpid]
				if !ok {
					return nil, nil, fmt.Errorf("author index references unknown paper %s", cpid)
				}
				candCtx, err := e.extractor.Extract(candPaper, cand)
				if err != nil {
					fmt.Fprintf(w, "skipping %s %s: %v\n", cpid, cand, err)
					continue
				}
				out = append(out, pair{
					target:      types.MentionKey(pid, target),
					candidateID: cand,
					a:           targetCtx,
					b:           candCtx,
				})
			}
		}
	}

	different := make([]string, 0, len(knownDifferent))
	for id := range knownDifferent {
		different = append(different, id)
	}
	sort.Strings(different)
	return out, different, nil
}

// classify compares and scores all pairs, returning per-candidate vote
// lists. Votes are predicted labels, or probabilities when configured
// and the model supports them.
func (e *Engine) classify(ctx context.Context, pairs []pair, w io.Writer) (map[string][]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	var features [][]float64
	if e.cfg.Cores > 1 && len(pairs) >= e.cfg.MinBatchLen {
		batches := worker.Batches(pairs, e.cfg.MinBatchLen/e.cfg.Cores+1)
		results, err := worker.Map(ctx, e.cfg.Cores, batches, func(_ context.Context, batch []pair) ([][]float64, error) {
			rows := make([][]float64, len(batch))
			for i, p := range batch {
				rows[i] = e.cmp.Compare(p.a, p.b)
			}
			return rows, nil
		})
		if err != nil {
			return nil, err
		}
		for _, rows := range results {
			features = append(features, rows...)
		}
	} else {
		features = make([][]float64, len(pairs))
		for i, p := range pairs {
			features[i] = e.cmp.Compare(p.a, p.b)
		}
	}

	votes := make(map[string][]float64)
	if e.cfg.UseProbabilities {
		if pm, ok := e.model.(classifier.ProbabilityModel); ok {
			probs, err := pm.PredictProba(features)
			if err == nil {
				for i, p := range pairs {
					votes[p.candidateID] = append(votes[p.candidateID], probs[i])
				}
				return votes, nil
			}
			if !errors.Is(err, classifier.ErrHardVoting) {
				return nil, err
			}
		}
		fmt.Fprintf(w, "model has no probabilities, falling back to predictions\n")
	}

	labels, err := e.model.Predict(features)
	if err != nil {
		return nil, err
	}
	for i, p := range pairs {
		votes[p.candidateID] = append(votes[p.candidateID], float64(labels[i]))
	}
	return votes, nil
}

// determineCorrectAuthor resolves vote lists into at most one match.
// Candidates must strictly exceed the threshold at integer-percent
// precision; with several above it the configured tie breaker picks the
// winner, with the candidate id as the deterministic secondary key.
func (e *Engine) determineCorrectAuthor(votes map[string][]float64) (*string, []types.CandidateShare, error) {
	shares := make([]types.CandidateShare, 0, len(votes))
	for id, vs := range votes {
		sum := 0.0
		for _, v := range vs {
			sum += v
		}
		shares = append(shares, types.CandidateShare{ID: id, Fraction: sum / float64(len(vs))})
	}
	sort.Slice(shares, func(i, j int) bool { return shares[i].ID < shares[j].ID })

	var above []types.CandidateShare
	for _, s := range shares {
		if percent(s.Fraction) > percent(e.cfg.Threshold) {
			above = append(above, s)
		}
	}

	switch len(above) {
	case 0:
		return nil, shares, nil
	case 1:
		return &above[0].ID, shares, nil
	}

	switch e.cfg.TieBreaker {
	case types.TieBreakMax:
		best := above[0]
		bestSum := voteSum(votes[best.ID])
		for _, s := range above[1:] {
			if sum := voteSum(votes[s.ID]); sum > bestSum {
				best, bestSum = s, sum
			}
		}
		return &best.ID, shares, nil
	case types.TieBreakMaxPercent:
		best := above[0]
		for _, s := range above[1:] {
			if s.Fraction > best.Fraction {
				best = s
			}
		}
		return &best.ID, shares, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrBadTieBreaker, e.cfg.TieBreaker)
	}
}

func voteSum(vs []float64) float64 {
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum
}

func tokenInitials(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok[:1]
	}
	return out
}

// percent rounds a score to integer percent, the comparison precision
// used for every similarity threshold.
func percent(f float64) float64 {
	return math.Round(f * 100)
}
