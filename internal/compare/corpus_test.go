// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compare

import (
	"testing"

	"github.com/pdiddy/author-resolve/pkg/types"
)

func TestCorpora(t *testing.T) {
	aff := func(org, dept string) types.AuthorAffiliation {
		return types.AuthorAffiliation{
			Affiliation: types.AffiliationRecord{
				Type: []string{"institution"},
				Info: map[string][]string{
					"institution": {org},
					"department":  {dept},
				},
			},
		}
	}
	papers := map[string]*types.Paper{
		"P19-0001": {Affiliations: map[string]types.AuthorAffiliation{
			"jane-doe": aff("Georgetown University", "Computer Science"),
		}},
		"W17-0001": {Affiliations: map[string]types.AuthorAffiliation{
			// Same organization on a second paper must not add a document.
			"jane-doe":  aff("Georgetown University", "Linguistics"),
			"un-titled": {Affiliation: types.AffiliationRecord{}},
		}},
	}

	orgs, depts := Corpora(papers)
	if len(orgs) != 1 {
		t.Fatalf("org corpus = %v, want one document", orgs)
	}
	if len(orgs[0]) != 2 || orgs[0][0] != "georgetown" {
		t.Errorf("org tokens = %v", orgs[0])
	}
	if len(depts) != 2 {
		t.Errorf("dept corpus = %v, want two documents", depts)
	}
}
