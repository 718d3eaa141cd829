// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pairs

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/pdiddy/author-resolve/internal/compare"
	"github.com/pdiddy/author-resolve/pkg/types"
)

func paperWith(pid string, ids ...string) *types.Paper {
	p := &types.Paper{
		PID:          pid,
		Title:        "Some Paper",
		Authors:      map[string]string{},
		Affiliations: map[string]types.AuthorAffiliation{},
	}
	for _, id := range ids {
		p.Authors[id] = strings.ReplaceAll(id, "-", " ")
		p.Affiliations[id] = types.AuthorAffiliation{
			Email: id + "@example.edu",
			Affiliation: types.AffiliationRecord{
				ID:   "example-university",
				Type: []string{"institution"},
				Info: map[string][]string{"institution": {"Example University"}},
			},
		}
	}
	return p
}

func corpus(papers ...*types.Paper) map[string]*types.Paper {
	out := make(map[string]*types.Paper, len(papers))
	for _, p := range papers {
		out[p.PID] = p
	}
	return out
}

func newGenerator(t *testing.T, cfg types.PairsConfig) *Generator {
	t.Helper()
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	g, err := NewGenerator(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestCheckPair(t *testing.T) {
	g := newGenerator(t, types.PairsConfig{})

	t.Run("self pair rejected", func(t *testing.T) {
		if _, ok := g.checkPair("P19-0001 jane-doe", "P19-0001 jane-doe", 0); ok {
			t.Error("identical mentions must not pair")
		}
	})

	t.Run("same paper rejected", func(t *testing.T) {
		if _, ok := g.checkPair("P19-0001 jane-doe", "P19-0001 john-smith", 0); ok {
			t.Error("two mentions on one paper must not pair")
		}
	})

	t.Run("dissimilar ids rejected by cutoff", func(t *testing.T) {
		if _, ok := g.checkPair("P19-0001 jane-doe", "C16-0001 quentin-zhu", 0.6); ok {
			t.Error("cutoff should reject dissimilar ids")
		}
	})

	t.Run("earlier paper comes first", func(t *testing.T) {
		p, ok := g.checkPair("P19-0001 jane-doe", "W17-0001 jane-doe", 0)
		if !ok {
			t.Fatal("pair unexpectedly rejected")
		}
		if p.A != "W17-0001 jane-doe" || p.B != "P19-0001 jane-doe" {
			t.Errorf("pair order = (%q, %q), want 2017 paper first", p.A, p.B)
		}
		if p.Key != p.A+" "+p.B {
			t.Errorf("key = %q", p.Key)
		}
	})

	t.Run("labels", func(t *testing.T) {
		same, ok := g.checkPair("P19-0001 jane-doe", "W17-0001 jane-doe", 0)
		if !ok || same.Label != 1 {
			t.Errorf("identical ids: label = %d, want 1", same.Label)
		}
		diff, ok := g.checkPair("P19-0001 jane-doe", "W17-0001 jane-dow", 0)
		if !ok || diff.Label != 0 {
			t.Errorf("distinct ids: label = %d, want 0", diff.Label)
		}
	})
}

func TestGenerate(t *testing.T) {
	papers := corpus(
		paperWith("P19-0001", "jane-doe"),
		paperWith("W17-0001", "jane-doe"),
		paperWith("C16-0001", "jane-doe"),
		paperWith("P18-0001", "jane-dow"),
		paperWith("W16-0001", "jane-dow"),
	)
	g := newGenerator(t, types.PairsConfig{AuthorCutoff: 2, Cores: 1})

	ds, err := g.Generate(context.Background(), papers, nil, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	if ds.Same != 4 {
		t.Errorf("same count = %d, want 4", ds.Same)
	}
	if ds.Different != 6 {
		t.Errorf("different count = %d, want 6", ds.Different)
	}

	for _, p := range ds.Pairs {
		pidA, idA := splitMention(p.A)
		pidB, idB := splitMention(p.B)
		if pidA == pidB {
			t.Errorf("pair %q compares mentions on the same paper", p.Key)
		}
		if p.A == p.B {
			t.Errorf("pair %q is a self pair", p.Key)
		}
		wantLabel := 0
		if idA == idB {
			wantLabel = 1
		}
		if p.Label != wantLabel {
			t.Errorf("pair %q label = %d, want %d", p.Key, p.Label, wantLabel)
		}
		if _, ok := ds.Contexts[p.A]; !ok {
			t.Errorf("pair %q references missing context %q", p.Key, p.A)
		}
		if _, ok := ds.Contexts[p.B]; !ok {
			t.Errorf("pair %q references missing context %q", p.Key, p.B)
		}
	}
}

func TestGenerateBalancesClasses(t *testing.T) {
	// Three two-paper authors: 3 same pairs, 12 different pairs. With
	// ratio 2 the majority must be sampled down to 6.
	papers := corpus(
		paperWith("P19-0001", "jane-doe"),
		paperWith("W17-0001", "jane-doe"),
		paperWith("P18-0001", "jane-dow"),
		paperWith("W16-0001", "jane-dow"),
		paperWith("P17-0001", "jane-day"),
		paperWith("W15-0001", "jane-day"),
	)
	g := newGenerator(t, types.PairsConfig{AuthorCutoff: 2, DiffSameRatio: 2, Cores: 1})

	ds, err := g.Generate(context.Background(), papers, nil, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	same, diff := 0, 0
	for _, p := range ds.Pairs {
		if p.Label == 1 {
			same++
		} else {
			diff++
		}
	}
	if same != 3 {
		t.Errorf("same pairs = %d, want all 3 kept", same)
	}
	if diff != 6 {
		t.Errorf("different pairs = %d, want 6 after balancing", diff)
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	papers := corpus(
		paperWith("P19-0001", "jane-doe"),
		paperWith("W17-0001", "jane-doe"),
		paperWith("P18-0001", "jane-dow"),
		paperWith("W16-0001", "jane-dow"),
		paperWith("P17-0001", "jane-day"),
		paperWith("W15-0001", "jane-day"),
	)
	cfg := types.PairsConfig{AuthorCutoff: 2, Seed: 7, Cores: 1}

	first, err := newGenerator(t, cfg).Generate(context.Background(), papers, nil, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	second, err := newGenerator(t, cfg).Generate(context.Background(), papers, nil, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	if len(first.Pairs) != len(second.Pairs) {
		t.Fatalf("pair counts differ: %d vs %d", len(first.Pairs), len(second.Pairs))
	}
	for i := range first.Pairs {
		if first.Pairs[i] != second.Pairs[i] {
			t.Errorf("pair %d differs: %v vs %v", i, first.Pairs[i], second.Pairs[i])
		}
	}
}

func TestGenerateIncompleteAndExcluded(t *testing.T) {
	papers := corpus(
		paperWith("P19-0001", "jane-doe"),
		paperWith("W17-0001", "jane-doe"),
		paperWith("C16-0001", "jane-doe", "zoe-banned"),
	)
	g := newGenerator(t, types.PairsConfig{AuthorCutoff: 1, Cores: 1, Exclude: []string{"zoe-banned"}})

	ds, err := g.Generate(context.Background(), papers, []string{"W17-0001"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	for key := range ds.Contexts {
		if strings.Contains(key, "W17-0001") {
			t.Errorf("incomplete paper leaked into contexts: %q", key)
		}
		if strings.Contains(key, "zoe-banned") {
			t.Errorf("excluded author leaked into contexts: %q", key)
		}
	}
}

func TestGenerateSpecialKeysBypassCutoffs(t *testing.T) {
	// Both mentions are below the paper cutoff and their ids miss the
	// 0.99 similarity bar, but a covering special key guarantees the pair.
	papers := corpus(
		paperWith("P19-0001", "jane-doe1"),
		paperWith("C16-0001", "jane-doe2"),
	)
	g := newGenerator(t, types.PairsConfig{
		AuthorCutoff:         5,
		NameSimilarityCutoff: 0.99,
		Cores:                1,
		SpecialKeys:          []string{"jane-doe"},
	})

	ds, err := g.Generate(context.Background(), papers, nil, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if ds.SpecialDifferent != 1 {
		t.Fatalf("special different count = %d, want 1", ds.SpecialDifferent)
	}
	if len(ds.Pairs) != 1 {
		t.Fatalf("len(Pairs) = %d, want only the special pair", len(ds.Pairs))
	}
	if ds.Pairs[0].Label != 0 {
		t.Errorf("special pair label = %d, want 0", ds.Pairs[0].Label)
	}
}

func TestVectors(t *testing.T) {
	papers := corpus(
		paperWith("P19-0001", "jane-doe"),
		paperWith("W17-0001", "jane-doe"),
		paperWith("P18-0001", "jane-dow"),
	)
	g := newGenerator(t, types.PairsConfig{AuthorCutoff: 1, Cores: 2})

	ds, err := g.Generate(context.Background(), papers, nil, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	cmp, err := compare.NewComparator(types.CompareConfig{}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	samples, err := g.Vectors(context.Background(), cmp, ds, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != len(ds.Pairs) {
		t.Fatalf("len(samples) = %d, want %d", len(samples), len(ds.Pairs))
	}
	for _, s := range samples {
		if len(s.Features) != len(compare.Terms()) {
			t.Errorf("sample %q has %d features, want %d", s.Key, len(s.Features), len(compare.Terms()))
		}
		if s.Label != 0 && s.Label != 1 {
			t.Errorf("sample %q label = %d", s.Key, s.Label)
		}
	}
}
