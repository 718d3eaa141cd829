// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package strsim provides the string-similarity primitives used for name
// and organization matching. All similarity functions return a score in
// [0, 1] where 1 means identical.
package strsim

import (
	"fmt"
	"strings"
)

// Func scores the similarity of two strings in [0, 1].
type Func func(a, b string) float64

// ForName resolves a similarity primitive from its configured
// "<algorithm>-<measure>" name (e.g. "jaro-similarity"). The algorithm
// is pluggable so a trained model records which primitive it was trained
// against.
func ForName(name string) (Func, error) {
	algo, measure, ok := strings.Cut(name, "-")
	if !ok {
		return nil, fmt.Errorf("similarity name %q is not <algorithm>-<measure>", name)
	}

	var sim Func
	switch algo {
	case "jaro":
		// "jaro" selects the Winkler prefix-boosted variant, which is what
		// the models shipped with the corpus were trained on.
		sim = JaroWinkler
	case "jaro_plain":
		sim = Jaro
	case "levenshtein":
		sim = LevenshteinSimilarity
	default:
		return nil, fmt.Errorf("unknown similarity algorithm %q", algo)
	}

	switch measure {
	case "similarity", "normalized_similarity":
		return sim, nil
	case "distance":
		return func(a, b string) float64 { return 1 - sim(a, b) }, nil
	default:
		return nil, fmt.Errorf("unknown similarity measure %q", measure)
	}
}

// Jaro returns the Jaro similarity of a and b.
func Jaro(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 && lb == 0 {
		return 1
	}
	if la == 0 || lb == 0 {
		return 0
	}

	window := max(la, lb)/2 - 1
	if window < 0 {
		window = 0
	}

	matchA := make([]bool, la)
	matchB := make([]bool, lb)
	matches := 0
	for i := range ra {
		lo := max(0, i-window)
		hi := min(lb-1, i+window)
		for j := lo; j <= hi; j++ {
			if matchB[j] || ra[i] != rb[j] {
				continue
			}
			matchA[i] = true
			matchB[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	// Count transpositions among matched characters.
	transpositions := 0
	j := 0
	for i := range ra {
		if !matchA[i] {
			continue
		}
		for !matchB[j] {
			j++
		}
		if ra[i] != rb[j] {
			transpositions++
		}
		j++
	}

	m := float64(matches)
	t := float64(transpositions) / 2
	return (m/float64(la) + m/float64(lb) + (m-t)/m) / 3
}

// winklerPrefixScale is the standard Winkler scaling factor for shared
// prefixes of up to four characters.
const winklerPrefixScale = 0.1

// JaroWinkler returns the Jaro-Winkler similarity of a and b.
func JaroWinkler(a, b string) float64 {
	j := Jaro(a, b)

	ra, rb := []rune(a), []rune(b)
	prefix := 0
	for prefix < len(ra) && prefix < len(rb) && prefix < 4 && ra[prefix] == rb[prefix] {
		prefix++
	}
	return j + float64(prefix)*winklerPrefixScale*(1-j)
}

// LevenshteinSimilarity returns 1 - d/maxLen where d is the edit
// distance of a and b.
func LevenshteinSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 && lb == 0 {
		return 1
	}

	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, min(cur[j-1]+1, prev[j-1]+cost))
		}
		prev, cur = cur, prev
	}
	return 1 - float64(prev[lb])/float64(max(la, lb))
}
