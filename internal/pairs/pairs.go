// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pairs builds the labeled training pairs the classifier learns
// from: author mentions are blocked into cheap buckets, vetted pairwise,
// balanced to a configured same:different ratio and turned into feature
// vectors.
package pairs

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/author-resolve/internal/authorctx"
	"github.com/pdiddy/author-resolve/internal/compare"
	"github.com/pdiddy/author-resolve/internal/identity"
	"github.com/pdiddy/author-resolve/internal/strsim"
	"github.com/pdiddy/author-resolve/internal/worker"
	"github.com/pdiddy/author-resolve/pkg/types"
)

// Pair is one vetted comparison pair. A and B are mention keys
// ("<pid> <author-id>") with the chronologically earlier paper first;
// Key is their concatenation.
type Pair struct {
	Key   string
	Label int // 1 = same author id, 0 = different
	A, B  string
}

// Sample is a labeled feature vector ready for training.
type Sample struct {
	Key      string    `json:"key"`
	Label    int       `json:"label"`
	Features []float64 `json:"features"`
}

// Dataset holds the generated pairs plus the author contexts they
// reference, and the class counts before merging.
type Dataset struct {
	Pairs    []Pair
	Contexts map[string]types.AuthorContext

	Same             int
	Different        int
	SpecialSame      int
	SpecialDifferent int
}

// Generator drives training-pair creation.
type Generator struct {
	cfg       types.PairsConfig
	sim       strsim.Func
	extractor *authorctx.Extractor
	rng       *rand.Rand
}

// NewGenerator builds a Generator from cfg. A zero Seed draws one from
// the clock; set it for reproducible training sets.
func NewGenerator(cfg types.PairsConfig) (*Generator, error) {
	cfg = cfg.Defaults()
	sim, err := strsim.ForName(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		cfg:       cfg,
		sim:       sim,
		extractor: authorctx.NewExtractor(),
		rng:       rand.New(rand.NewSource(seed)),
	}, nil
}

// Generate enumerates author mentions, blocks them, vets every in-block
// pair and balances the classes. incomplete lists paper ids excluded
// from enumeration; progress goes to w.
func (g *Generator) Generate(ctx context.Context, papers map[string]*types.Paper, incomplete []string, w io.Writer) (*Dataset, error) {
	skip := make(map[string]bool, len(incomplete))
	for _, pid := range incomplete {
		skip[pid] = true
	}
	exclude := make(map[string]bool, len(g.cfg.Exclude))
	for _, id := range g.cfg.Exclude {
		exclude[id] = true
	}
	specialExact := make(map[string]bool, len(g.cfg.SpecialKeys))
	for _, k := range g.cfg.SpecialKeys {
		specialExact[k] = true
	}

	tasks, authorPapers := g.enumerate(papers, skip, exclude, specialExact, w)

	fmt.Fprintf(w, "extracting author info for %d mentions\n", len(tasks))
	contexts := make(map[string]types.AuthorContext)
	belowCutoff := 0
	for _, t := range tasks {
		if len(authorPapers[t.id]) < g.cfg.AuthorCutoff && !g.isSpecial(t.id) {
			belowCutoff++
			continue
		}
		rec, err := g.extractor.Extract(papers[t.pid], t.id)
		if err != nil {
			fmt.Fprintf(w, "skipping %s %s: %v\n", t.pid, t.id, err)
			continue
		}
		contexts[types.MentionKey(t.pid, t.id)] = rec
	}
	fmt.Fprintf(w, "%d mentions below the %d-paper cutoff\n", belowCutoff, g.cfg.AuthorCutoff)

	buckets := g.blockMentions(contexts)
	specialBuckets := g.specialCases(buckets)

	ds := &Dataset{Contexts: contexts}

	bucketKeys := make([]string, 0, len(buckets))
	for k := range buckets {
		bucketKeys = append(bucketKeys, k)
	}
	sort.Strings(bucketKeys)

	var same, diff []Pair
	for _, k := range bucketKeys {
		fmt.Fprintf(w, "creating pairs for ids starting with %q\n", k)
		specialSet := make(map[string]bool, len(specialBuckets[k]))
		for _, m := range specialBuckets[k] {
			specialSet[m] = true
		}
		s, d, err := g.vetBucket(ctx, buckets[k], specialSet, g.cfg.NameSimilarityCutoff, w)
		if err != nil {
			return nil, err
		}
		same = append(same, s...)
		diff = append(diff, d...)
	}

	var specialSame, specialDiff []Pair
	for _, k := range bucketKeys {
		if len(specialBuckets[k]) == 0 {
			continue
		}
		fmt.Fprintf(w, "creating special-case pairs for ids starting with %q\n", k)
		s, d, err := g.vetBucket(ctx, specialBuckets[k], nil, 0, w)
		if err != nil {
			return nil, err
		}
		specialSame = append(specialSame, s...)
		specialDiff = append(specialDiff, d...)
	}

	ds.Same, ds.Different = len(same), len(diff)
	ds.SpecialSame, ds.SpecialDifferent = len(specialSame), len(specialDiff)

	// Special-case pairs skip balancing: coverage of the marked ids is
	// guaranteed even when one of their classes is empty.
	same, diff = g.balance(same, diff)

	ds.Pairs = make([]Pair, 0, len(same)+len(diff)+len(specialSame)+len(specialDiff))
	ds.Pairs = append(ds.Pairs, same...)
	ds.Pairs = append(ds.Pairs, diff...)
	ds.Pairs = append(ds.Pairs, specialSame...)
	ds.Pairs = append(ds.Pairs, specialDiff...)

	fmt.Fprintf(w, "%d pairs selected (%d same, %d different, %d special same, %d special different)\n",
		len(ds.Pairs), len(same), len(diff), len(specialSame), len(specialDiff))
	return ds, nil
}

// Vectors turns a dataset into shuffled labeled feature vectors, fanning
// comparison out across the worker pool in CompareBatchSize batches.
func (g *Generator) Vectors(ctx context.Context, cmp *compare.Comparator, ds *Dataset, w io.Writer) ([]Sample, error) {
	pairs := make([]Pair, len(ds.Pairs))
	copy(pairs, ds.Pairs)
	g.rng.Shuffle(len(pairs), func(i, j int) { pairs[i], pairs[j] = pairs[j], pairs[i] })

	fmt.Fprintf(w, "comparing %d pairs\n", len(pairs))
	batches := worker.Batches(pairs, g.cfg.CompareBatchSize)
	results, err := worker.Map(ctx, g.cfg.Cores, batches, func(_ context.Context, batch []Pair) ([]Sample, error) {
		out := make([]Sample, 0, len(batch))
		for _, p := range batch {
			a, okA := ds.Contexts[p.A]
			b, okB := ds.Contexts[p.B]
			if !okA || !okB {
				return nil, fmt.Errorf("pair %q references an unknown mention", p.Key)
			}
			out = append(out, Sample{Key: p.Key, Label: p.Label, Features: cmp.Compare(a, b)})
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	samples := make([]Sample, 0, len(pairs))
	for _, batch := range results {
		samples = append(samples, batch...)
	}
	return samples, nil
}

type task struct {
	pid string
	id  string
}

// enumerate walks the corpus and emits one task per usable author
// mention, recording each author's paper list along the way.
func (g *Generator) enumerate(papers map[string]*types.Paper, skip, exclude, specialExact map[string]bool, w io.Writer) ([]task, map[string][]string) {
	pids := make([]string, 0, len(papers))
	for pid := range papers {
		pids = append(pids, pid)
	}
	sort.Strings(pids)

	var tasks []task
	authorPapers := make(map[string][]string)
	dropped, excluded := 0, 0
	for _, pid := range pids {
		paper := papers[pid]
		if skip[pid] {
			continue
		}
		ids := make([]string, 0, len(paper.Affiliations))
		for id := range paper.Affiliations {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if _, onByline := paper.Authors[id]; !onByline {
				fmt.Fprintf(w, "skipping %s %s: affiliation without byline entry\n", pid, id)
				continue
			}
			if exclude[id] || (!g.cfg.AllowExactSpecial && specialExact[id]) {
				excluded++
				continue
			}
			if g.cfg.DropNullAuthors && !g.isSpecial(id) {
				aff := paper.Affiliations[id]
				if aff.Email == "" || aff.Affiliation.PrimaryType() == "" {
					dropped++
					continue
				}
			}
			tasks = append(tasks, task{pid: pid, id: id})
			authorPapers[id] = append(authorPapers[id], pid)
		}
	}
	fmt.Fprintf(w, "%d mentions enumerated, %d excluded, %d dropped for missing email or affiliation type\n",
		len(tasks), excluded, dropped)
	return tasks, authorPapers
}

// isSpecial reports whether id contains any special key as a substring.
func (g *Generator) isSpecial(id string) bool {
	for _, k := range g.cfg.SpecialKeys {
		if strings.Contains(id, k) {
			return true
		}
	}
	return false
}

// blockKey is the cheap blocking key: the first SeparateChars characters
// of the first SeparateWords hyphen-separated id words.
func (g *Generator) blockKey(id string) string {
	words := strings.Split(id, "-")
	if len(words) > g.cfg.SeparateWords {
		words = words[:g.cfg.SeparateWords]
	}
	joined := strings.Join(words, " ")
	if len(joined) > g.cfg.SeparateChars {
		joined = joined[:g.cfg.SeparateChars]
	}
	return joined
}

func (g *Generator) blockMentions(contexts map[string]types.AuthorContext) map[string][]string {
	out := make(map[string][]string)
	for key := range contexts {
		_, id := splitMention(key)
		bk := g.blockKey(id)
		out[bk] = append(out[bk], key)
	}
	for _, keys := range out {
		sort.Strings(keys)
	}
	return out
}

// specialCases collects, per block, the mention keys covered by a
// special key. These bypass the similarity prefilter and get their own
// uncut pass so coverage is guaranteed even for dissimilar-looking ids.
func (g *Generator) specialCases(buckets map[string][]string) map[string][]string {
	out := make(map[string][]string)
	for _, k := range g.cfg.SpecialKeys {
		bk := g.blockKey(k)
		seen := make(map[string]bool)
		for _, m := range out[bk] {
			seen[m] = true
		}
		for _, mention := range buckets[bk] {
			_, id := splitMention(mention)
			match := strings.Contains(id, k)
			if g.cfg.RequireExactMatch {
				match = id == k
			}
			if match && !seen[mention] {
				seen[mention] = true
				out[bk] = append(out[bk], mention)
			}
		}
	}
	for _, keys := range out {
		sort.Strings(keys)
	}
	return out
}

type combo [2]string

// vetBucket enumerates all unordered in-bucket pairs and keeps the valid
// ones, fanning out to the worker pool when the combination count is
// large enough to justify the overhead. Pairs where both mentions are
// special are left to the dedicated special pass.
func (g *Generator) vetBucket(ctx context.Context, mentions []string, specialSet map[string]bool, cutoff float64, w io.Writer) (same, diff []Pair, err error) {
	var combos []combo
	for i, a := range mentions {
		for _, b := range mentions[i+1:] {
			if specialSet[a] && specialSet[b] {
				continue
			}
			combos = append(combos, combo{a, b})
		}
	}

	sameByKey := make(map[string]Pair)
	diffByKey := make(map[string]Pair)
	duplicates := 0
	merge := func(pairs []Pair) {
		for _, p := range pairs {
			dst := diffByKey
			if p.Label == 1 {
				dst = sameByKey
			}
			if _, ok := dst[p.Key]; ok {
				duplicates++
			}
			dst[p.Key] = p
		}
	}

	if g.cfg.Cores == 1 || len(combos) < g.cfg.MinBatchLen {
		for _, c := range combos {
			if p, ok := g.checkPair(c[0], c[1], cutoff); ok {
				merge([]Pair{p})
			}
		}
	} else {
		batches := worker.Batches(combos, g.cfg.BatchSize)
		fmt.Fprintf(w, "vetting %d combinations in %d batches\n", len(combos), len(batches))
		results, mapErr := worker.Map(ctx, g.cfg.Cores, batches, func(_ context.Context, batch []combo) ([]Pair, error) {
			out := make([]Pair, 0, len(batch))
			for _, c := range batch {
				if p, ok := g.checkPair(c[0], c[1], cutoff); ok {
					out = append(out, p)
				}
			}
			return out, nil
		})
		if mapErr != nil {
			return nil, nil, mapErr
		}
		for _, batch := range results {
			merge(batch)
		}
	}
	if duplicates > 0 {
		// Duplicate keys across batches are advisory only; the maps already
		// collapsed them.
		fmt.Fprintf(w, "%d overlapping pair keys\n", duplicates)
	}

	return pairSlice(sameByKey), pairSlice(diffByKey), nil
}

// checkPair vets a single candidate pair: no self-pairs, no same-paper
// pairs, and the two ids must clear the similarity cutoff at
// integer-percent precision. The surviving pair is ordered earlier paper
// first.
func (g *Generator) checkPair(a, b string, cutoff float64) (Pair, bool) {
	if a == b {
		return Pair{}, false
	}
	pidA, idA := splitMention(a)
	pidB, idB := splitMention(b)
	if pidA == pidB {
		return Pair{}, false
	}
	if math.Round(g.sim(idA, idB)*100) < math.Round(cutoff*100) {
		return Pair{}, false
	}

	label := 0
	if idA == idB {
		label = 1
	}
	if !firstPaperEarlier(pidA, pidB) {
		a, b = b, a
	}
	return Pair{Key: a + " " + b, Label: label, A: a, B: b}, true
}

// firstPaperEarlier orders pids chronologically, falling back to string
// order for malformed ids so vetting stays total.
func firstPaperEarlier(pidA, pidB string) bool {
	ka, errA := identity.PaperSortKey(pidA)
	kb, errB := identity.PaperSortKey(pidB)
	if errA != nil || errB != nil {
		return pidA < pidB
	}
	return ka < kb
}

// balance samples the majority class down so that
// minority x ratio >= majority. The minority class is kept whole.
func (g *Generator) balance(same, diff []Pair) ([]Pair, []Pair) {
	if len(same) == 0 && len(diff) == 0 {
		return same, diff
	}
	pairCount := int(float64(min(len(same), len(diff))) * g.cfg.DiffSameRatio)
	return g.sample(same, pairCount), g.sample(diff, pairCount)
}

func (g *Generator) sample(pairs []Pair, n int) []Pair {
	if n >= len(pairs) {
		return pairs
	}
	out := make([]Pair, len(pairs))
	copy(out, pairs)
	g.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out[:n]
}

func pairSlice(m map[string]Pair) []Pair {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Pair, 0, len(m))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func splitMention(key string) (pid, id string) {
	pid, id, _ = strings.Cut(key, " ")
	return pid, id
}
