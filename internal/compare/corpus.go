// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compare

import (
	"sort"
	"strings"

	"github.com/pdiddy/author-resolve/internal/identity"
	"github.com/pdiddy/author-resolve/pkg/types"
)

// Corpora tokenizes every organization and department name in the
// corpus for soft-TF-IDF training. Each distinct name contributes one
// document; papers reusing an organization do not inflate its weight.
func Corpora(papers map[string]*types.Paper) (orgCorpus, deptCorpus [][]string) {
	orgs := make(map[string]bool)
	depts := make(map[string]bool)
	for _, paper := range papers {
		for _, aff := range paper.Affiliations {
			if name := aff.Affiliation.PrimaryName(); name != "" {
				orgs[identity.CleanName(name, true)] = true
			}
			for _, dept := range aff.Affiliation.Info["department"] {
				if dept != "" {
					depts[identity.CleanName(dept, true)] = true
				}
			}
		}
	}
	return tokenize(orgs), tokenize(depts)
}

func tokenize(names map[string]bool) [][]string {
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	corpus := make([][]string, 0, len(sorted))
	for _, name := range sorted {
		if toks := strings.Fields(name); len(toks) > 0 {
			corpus = append(corpus, toks)
		}
	}
	return corpus
}
