// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package strsim

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestJaro(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "martha", "martha", 1},
		{"both empty", "", "", 1},
		{"one empty", "martha", "", 0},
		{"no overlap", "abc", "xyz", 0},
		// Classic textbook pair: MARTHA/MARHTA = 0.944...
		{"martha marhta", "martha", "marhta", 17.0 / 18.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Jaro(tt.a, tt.b); !almostEqual(got, tt.want) {
				t.Errorf("Jaro(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestJaroSymmetric(t *testing.T) {
	pairs := [][2]string{{"dwayne", "duane"}, {"yang", "yong"}, {"liu", "lu"}}
	for _, p := range pairs {
		if a, b := Jaro(p[0], p[1]), Jaro(p[1], p[0]); !almostEqual(a, b) {
			t.Errorf("Jaro(%q, %q) != Jaro(%q, %q): %v vs %v", p[0], p[1], p[1], p[0], a, b)
		}
	}
}

func TestJaroWinkler(t *testing.T) {
	// Winkler boost: shared prefix lifts the score above plain Jaro.
	j := Jaro("martha", "marhta")
	jw := JaroWinkler("martha", "marhta")
	if jw <= j {
		t.Errorf("JaroWinkler (%v) should exceed Jaro (%v) on shared prefix", jw, j)
	}
	want := j + 3*winklerPrefixScale*(1-j)
	if !almostEqual(jw, want) {
		t.Errorf("JaroWinkler = %v, want %v", jw, want)
	}

	if got := JaroWinkler("same", "same"); got != 1 {
		t.Errorf("JaroWinkler identical = %v, want 1", got)
	}
}

func TestLevenshteinSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"kitten", "sitting", 1 - 3.0/7.0},
		{"", "", 1},
		{"abc", "abc", 1},
		{"abc", "", 0},
	}
	for _, tt := range tests {
		if got := LevenshteinSimilarity(tt.a, tt.b); !almostEqual(got, tt.want) {
			t.Errorf("LevenshteinSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestForName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"jaro-similarity", false},
		{"jaro_plain-similarity", false},
		{"levenshtein-similarity", false},
		{"jaro-distance", false},
		{"jaro", true},
		{"soundex-similarity", true},
		{"jaro-closeness", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := ForName(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ForName(%q) should fail", tt.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("ForName(%q) error: %v", tt.name, err)
			}
			if got := fn("abc", "abc"); tt.name == "jaro-distance" {
				if got != 0 {
					t.Errorf("distance of identical strings = %v, want 0", got)
				}
			} else if got != 1 {
				t.Errorf("similarity of identical strings = %v, want 1", got)
			}
		})
	}
}

func TestSoftTFIDF(t *testing.T) {
	corpus := [][]string{
		{"university", "of", "amsterdam"},
		{"university", "of", "new", "south", "wales"},
		{"institute", "of", "computing", "technology"},
	}
	s := NewSoftTFIDF(corpus, 0.4, JaroWinkler)

	t.Run("identical lists score above differing lists", func(t *testing.T) {
		same, err := s.Score([]string{"university", "amsterdam"}, []string{"university", "amsterdam"})
		if err != nil {
			t.Fatal(err)
		}
		diff, err := s.Score([]string{"university", "amsterdam"}, []string{"institute", "computing"})
		if err != nil {
			t.Fatal(err)
		}
		if same <= diff {
			t.Errorf("identical score %v should exceed differing score %v", same, diff)
		}
	})

	t.Run("empty input yields ErrEmptyCorpus", func(t *testing.T) {
		if _, err := s.Score(nil, []string{"university"}); err != ErrEmptyCorpus {
			t.Errorf("err = %v, want ErrEmptyCorpus", err)
		}
	})

	t.Run("empty corpus yields ErrEmptyCorpus", func(t *testing.T) {
		empty := NewSoftTFIDF(nil, 0.4, JaroWinkler)
		if _, err := empty.Score([]string{"a"}, []string{"a"}); err != ErrEmptyCorpus {
			t.Errorf("err = %v, want ErrEmptyCorpus", err)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		a := []string{"university", "of", "amsterdam"}
		b := []string{"university", "of", "new", "south", "wales"}
		first, err := s.Score(a, b)
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 10; i++ {
			again, err := s.Score(a, b)
			if err != nil {
				t.Fatal(err)
			}
			if !almostEqual(first, again) {
				t.Fatalf("score varies across calls: %v vs %v", first, again)
			}
		}
	})
}
