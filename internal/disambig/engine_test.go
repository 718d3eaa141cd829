// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package disambig

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/pdiddy/author-resolve/internal/classifier"
	"github.com/pdiddy/author-resolve/internal/compare"
	"github.com/pdiddy/author-resolve/pkg/types"
)

// stubModel votes the same label for every pair.
type stubModel struct{ label int }

func (m stubModel) Predict(rows [][]float64) ([]int, error) {
	out := make([]int, len(rows))
	for i := range out {
		out[i] = m.label
	}
	return out, nil
}

func fixturePaper(pid string, ids ...string) *types.Paper {
	p := &types.Paper{
		PID:          pid,
		Title:        "Some Paper",
		Authors:      map[string]string{},
		Affiliations: map[string]types.AuthorAffiliation{},
	}
	for _, id := range ids {
		p.Authors[id] = id
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

type fixture struct {
	papers       map[string]*types.Paper
	authorPapers map[string][]string
	idToName     map[string]string
}

// splitFixture models a freshly split id: jane-doe1 holds one paper,
// jane-doe the rest, quentin-zhu is noise.
func splitFixture() fixture {
	papers := map[string]*types.Paper{
		"P19-0001": fixturePaper("P19-0001", "jane-doe1", "wei-zhang"),
		"W17-0001": fixturePaper("W17-0001", "jane-doe", "wei-zhang"),
		"C16-0001": fixturePaper("C16-0001", "jane-doe"),
		"P18-0001": fixturePaper("P18-0001", "quentin-zhu"),
	}
	return fixture{
		papers: papers,
		authorPapers: map[string][]string{
			"jane-doe1":   {"P19-0001"},
			"jane-doe":    {"W17-0001", "C16-0001"},
			"wei-zhang":   {"P19-0001", "W17-0001"},
			"quentin-zhu": {"P18-0001"},
		},
		idToName: map[string]string{
			"jane-doe1":   "Jane Doe",
			"jane-doe":    "Jane Doe",
			"wei-zhang":   "Wei Zhang",
			"quentin-zhu": "Quentin Zhu",
		},
	}
}

func newEngine(t *testing.T, cfg types.DisambiguationConfig, f fixture, model classifier.Model) *Engine {
	t.Helper()
	cmp, err := compare.NewComparator(types.CompareConfig{}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewEngine(cfg, f.papers, f.authorPapers, f.idToName, cmp, model)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestValidate(t *testing.T) {
	e := newEngine(t, types.DisambiguationConfig{}, splitFixture(), stubModel{label: 1})

	tests := []struct {
		name      string
		targets   []string
		overrides map[string][]string
		wantErr   error
	}{
		{"unknown target", []string{"nobody"}, nil, ErrUnknownAuthor},
		{"override for non-target", []string{"jane-doe1"}, map[string][]string{"wei-zhang": {"jane-doe"}}, ErrNotTarget},
		{"candidate is a target", []string{"jane-doe1"}, map[string][]string{"jane-doe1": {"jane-doe1"}}, ErrSelfComparison},
		{"unknown candidate", []string{"jane-doe1"}, map[string][]string{"jane-doe1": {"nobody"}}, ErrUnknownAuthor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Resolve(context.Background(), tt.targets, tt.overrides, io.Discard)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewEngineRejectsBadTieBreaker(t *testing.T) {
	f := splitFixture()
	cmp, err := compare.NewComparator(types.CompareConfig{}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewEngine(types.DisambiguationConfig{TieBreaker: "median"}, f.papers, f.authorPapers, f.idToName, cmp, stubModel{})
	if !errors.Is(err, ErrBadTieBreaker) {
		t.Fatalf("err = %v, want ErrBadTieBreaker", err)
	}
}

func TestResolveMatch(t *testing.T) {
	e := newEngine(t, types.DisambiguationConfig{}, splitFixture(), stubModel{label: 1})

	out, err := e.Resolve(context.Background(), []string{"jane-doe1"}, nil, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	d, ok := out["jane-doe1"]
	if !ok {
		t.Fatal("target missing from result map")
	}
	if d.Same == nil || *d.Same != "jane-doe" {
		t.Fatalf("Same = %v, want jane-doe", d.Same)
	}
	if len(d.PapersAffected) != 1 || d.PapersAffected[0] != "P19-0001" {
		t.Errorf("PapersAffected = %v", d.PapersAffected)
	}
}

func TestResolveNoMatch(t *testing.T) {
	e := newEngine(t, types.DisambiguationConfig{}, splitFixture(), stubModel{label: 0})

	out, err := e.Resolve(context.Background(), []string{"jane-doe1"}, nil, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	d := out["jane-doe1"]
	if d.Same != nil {
		t.Fatalf("Same = %q, want nil", *d.Same)
	}
	// One share per evaluated candidate, even with no winner.
	if len(d.PercentSame) != 1 {
		t.Errorf("len(PercentSame) = %d, want 1", len(d.PercentSame))
	}
}

func TestResolveNoCandidates(t *testing.T) {
	f := splitFixture()
	e := newEngine(t, types.DisambiguationConfig{}, f, stubModel{label: 1})

	// quentin-zhu shares a first letter with nobody else.
	out, err := e.Resolve(context.Background(), []string{"quentin-zhu"}, nil, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	d, ok := out["quentin-zhu"]
	if !ok {
		t.Fatal("unresolvable target must still appear in the result map")
	}
	if d.Same != nil {
		t.Errorf("Same = %v, want nil", d.Same)
	}
}

func TestResolveOverrideCandidates(t *testing.T) {
	e := newEngine(t, types.DisambiguationConfig{SamePaperDiffPeople: true}, splitFixture(), stubModel{label: 1})

	out, err := e.Resolve(context.Background(), []string{"jane-doe1"},
		map[string][]string{"jane-doe1": {"jane-doe"}}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	d := out["jane-doe1"]
	// jane-doe never shares a paper with the target, so the override list
	// feeds its mentions straight to classification.
	if d.Same == nil || *d.Same != "jane-doe" {
		t.Fatalf("Same = %v, want jane-doe via override list", d.Same)
	}
}

func TestResolveSamePaperDiffPeople(t *testing.T) {
	e := newEngine(t, types.DisambiguationConfig{SamePaperDiffPeople: true}, splitFixture(), stubModel{label: 1})

	out, err := e.Resolve(context.Background(), []string{"jane-doe1"},
		map[string][]string{"jane-doe1": {"wei-zhang"}}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	d := out["jane-doe1"]
	// wei-zhang co-occurs with the target on P19-0001, so it is known
	// different everywhere: its W17-0001 mention never reaches the
	// classifier and it can never win, however the model votes.
	if d.Same != nil {
		t.Fatalf("Same = %q, want nil for a known-different candidate", *d.Same)
	}
	if len(d.Different) != 1 || d.Different[0] != "wei-zhang" {
		t.Errorf("Different = %v, want [wei-zhang]", d.Different)
	}
	if len(d.PercentSame) != 0 {
		t.Errorf("PercentSame = %v, want no classified candidates", d.PercentSame)
	}
}

func TestSimilarAuthors(t *testing.T) {
	f := fixture{
		idToName: map[string]string{
			"yang-liu":            "Yang Liu",
			"yang-liu-georgetown": "Yang (Janet) Liu",
			"yumeng-liu":          "Yumeng Liu",
			"joan-smith":          "Joan Smith",
		},
		authorPapers: map[string][]string{},
		papers:       map[string]*types.Paper{},
	}

	t.Run("initials filter without override", func(t *testing.T) {
		e := newEngine(t, types.DisambiguationConfig{}, f, stubModel{})
		got := e.similarAuthors("yang-liu", "Yang Liu", map[string]bool{"yang-liu": true}, io.Discard)
		// yang-liu-georgetown's cleaned name has three initials (y j l)
		// and is rejected without the override.
		if len(got) != 0 {
			t.Errorf("similarAuthors = %v, want none", got)
		}
	})

	t.Run("sim override admits extra initials", func(t *testing.T) {
		e := newEngine(t, types.DisambiguationConfig{SimOverrides: true}, f, stubModel{})
		got := e.similarAuthors("yang-liu", "Yang Liu", map[string]bool{"yang-liu": true}, io.Discard)
		if len(got) != 1 || got[0] != "yang-liu-georgetown" {
			t.Errorf("similarAuthors = %v, want [yang-liu-georgetown]", got)
		}
	})

	t.Run("first name mismatch is never overridden", func(t *testing.T) {
		e := newEngine(t, types.DisambiguationConfig{SimOverrides: true}, f, stubModel{})
		got := e.similarAuthors("yang-liu", "Yang Liu", map[string]bool{"yang-liu": true}, io.Discard)
		for _, id := range got {
			if id == "yumeng-liu" {
				t.Error("yumeng-liu has a different first name and must stay excluded")
			}
		}
	})
}

func TestDetermineCorrectAuthorTieBreakers(t *testing.T) {
	votes := map[string][]float64{
		"alice": {1, 1, 1, 1},
		"bob":   {1, 1, 1, 1, 1},
	}

	t.Run("max picks highest raw vote sum", func(t *testing.T) {
		e := newEngine(t, types.DisambiguationConfig{TieBreaker: types.TieBreakMax}, splitFixture(), stubModel{})
		same, shares, err := e.determineCorrectAuthor(votes)
		if err != nil {
			t.Fatal(err)
		}
		if same == nil || *same != "bob" {
			t.Errorf("same = %v, want bob", same)
		}
		if len(shares) != 2 {
			t.Errorf("len(shares) = %d, want 2", len(shares))
		}
	})

	t.Run("max_percent breaks full tie on id", func(t *testing.T) {
		e := newEngine(t, types.DisambiguationConfig{TieBreaker: types.TieBreakMaxPercent}, splitFixture(), stubModel{})
		same, _, err := e.determineCorrectAuthor(votes)
		if err != nil {
			t.Fatal(err)
		}
		// Both fractions are 1.0; the smaller id wins deterministically.
		if same == nil || *same != "alice" {
			t.Errorf("same = %v, want alice", same)
		}
	})

	t.Run("threshold is strict", func(t *testing.T) {
		e := newEngine(t, types.DisambiguationConfig{Threshold: 0.75}, splitFixture(), stubModel{})
		same, shares, err := e.determineCorrectAuthor(map[string][]float64{
			"carol": {1, 1, 1, 0}, // exactly 0.75, not strictly above
		})
		if err != nil {
			t.Fatal(err)
		}
		if same != nil {
			t.Errorf("same = %q, want nil at exactly the threshold", *same)
		}
		if len(shares) != 1 {
			t.Errorf("len(shares) = %d, want 1", len(shares))
		}
	})
}

func TestClassifyProbabilityFallback(t *testing.T) {
	// A hard-voting ensemble rejects PredictProba; the engine must fall
	// back to plain predictions instead of failing.
	hard := &classifier.Voting{Mode: "hard", Estimators: []classifier.Estimator{
		{Name: "lr", Weight: 1, Model: &classifier.Logistic{Coef: make([]float64, len(compare.Terms())), Intercept: 10}},
	}}
	e := newEngine(t, types.DisambiguationConfig{UseProbabilities: true}, splitFixture(), hard)

	out, err := e.Resolve(context.Background(), []string{"jane-doe1"}, nil, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if d := out["jane-doe1"]; d.Same == nil || *d.Same != "jane-doe" {
		t.Fatalf("Same = %v, want jane-doe via prediction fallback", d.Same)
	}
}
