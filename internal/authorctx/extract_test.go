// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package authorctx

import (
	"testing"

	"github.com/pdiddy/author-resolve/pkg/types"
)

func testPaper() *types.Paper {
	return &types.Paper{
		PID:      "P19-1642",
		Title:    "Neural Machine Translation",
		Abstract: "We study...",
		Authors: map[string]string{
			"jane-doe":   "Jane Doe",
			"john-smith": "John Smith",
			"wei-zhang":  "Wei Zhang",
		},
		Affiliations: map[string]types.AuthorAffiliation{
			"jane-doe": {
				Email: "jdoe@uva.nl",
				Affiliation: types.AffiliationRecord{
					ID:   "university-of-amsterdam",
					Type: []string{"institution"},
					Info: map[string][]string{
						"institution": {"University of Amsterdam"},
						"department":  {"Institute for Logic"},
					},
					Address: types.Address{Settlement: "Amsterdam", Country: "Netherlands", PostCode: "1012"},
				},
			},
			"john-smith": {
				Email: "jsmith@ed.ac.uk",
				Affiliation: types.AffiliationRecord{
					ID:   "university-of-edinburgh",
					Type: []string{"institution"},
					Info: map[string][]string{"institution": {"University of Edinburgh"}},
				},
			},
		},
		TitleTokens:    []string{"Neural", "Machine", "Translation"},
		Citations:      []types.Citation{{Title: "Attention", Authors: []string{"A Vaswani"}}},
		CitationTokens: []string{"Attention"},
		SectionTokens:  []string{"introduction", "results"},
	}
}

func TestExtract(t *testing.T) {
	e := NewExtractor()
	ctx, err := e.Extract(testPaper(), "jane-doe")
	if err != nil {
		t.Fatal(err)
	}

	if ctx.PID != "P19-1642" {
		t.Errorf("PID = %q", ctx.PID)
	}
	if ctx.Name != "Jane Doe" {
		t.Errorf("Name = %q", ctx.Name)
	}
	if ctx.EmailUser != "jdoe" || ctx.EmailDomain != "uva.nl" {
		t.Errorf("email = %q @ %q", ctx.EmailUser, ctx.EmailDomain)
	}
	if ctx.AffName != "University of Amsterdam" || ctx.AffType != "institution" {
		t.Errorf("affiliation = %q (%q)", ctx.AffName, ctx.AffType)
	}
	if len(ctx.Department) != 1 || ctx.Department[0] != "Institute for Logic" {
		t.Errorf("department = %v", ctx.Department)
	}
	if ctx.Address.Settlement != "Amsterdam" || ctx.Address.PostCode != "1012" {
		t.Errorf("address = %+v", ctx.Address)
	}
}

func TestExtractCoAuthors(t *testing.T) {
	e := NewExtractor()
	ctx, err := e.Extract(testPaper(), "jane-doe")
	if err != nil {
		t.Fatal(err)
	}

	if len(ctx.CoAuthors) != 2 {
		t.Fatalf("len(CoAuthors) = %d, want 2", len(ctx.CoAuthors))
	}
	// Sorted by id, subject excluded.
	if ctx.CoAuthors[0].ID != "john-smith" || ctx.CoAuthors[1].ID != "wei-zhang" {
		t.Errorf("co-author ids = %q, %q", ctx.CoAuthors[0].ID, ctx.CoAuthors[1].ID)
	}
	for _, co := range ctx.CoAuthors {
		if co.ID == "jane-doe" {
			t.Error("subject author leaked into co-author list")
		}
	}

	// Co-author with affiliation keeps name, email and organization together.
	js := ctx.CoAuthors[0]
	if js.Name != "John Smith" || js.EmailDomain != "ed.ac.uk" || js.AffName != "University of Edinburgh" {
		t.Errorf("co-author record = %+v", js)
	}

	// Co-author without affiliation data gets empty fields, not an error.
	wz := ctx.CoAuthors[1]
	if wz.Name != "Wei Zhang" {
		t.Errorf("co-author name = %q", wz.Name)
	}
	if wz.EmailUser != "" || wz.AffName != "" || wz.AffType != "" {
		t.Errorf("unaffiliated co-author should have empty fields: %+v", wz)
	}
}

func TestExtractMissingAffiliation(t *testing.T) {
	p := testPaper()
	delete(p.Affiliations, "jane-doe")

	e := NewExtractor()
	ctx, err := e.Extract(p, "jane-doe")
	if err != nil {
		t.Fatalf("missing affiliation must not fail: %v", err)
	}
	if ctx.AffName != "" || ctx.AffType != "" || ctx.EmailUser != "" {
		t.Errorf("affiliation fields should be empty: %+v", ctx)
	}
}

func TestExtractUnknownAuthor(t *testing.T) {
	e := NewExtractor()
	if _, err := e.Extract(testPaper(), "nobody"); err == nil {
		t.Fatal("unknown author id should fail")
	}
}

func TestExtractMemoized(t *testing.T) {
	p := testPaper()
	e := NewExtractor()
	first, err := e.Extract(p, "jane-doe")
	if err != nil {
		t.Fatal(err)
	}

	// Mutate the paper; the memo should still serve the original record.
	p.Authors["jane-doe"] = "Someone Else"
	again, err := e.Extract(p, "jane-doe")
	if err != nil {
		t.Fatal(err)
	}
	if again.Name != first.Name {
		t.Errorf("memoized name = %q, want %q", again.Name, first.Name)
	}
}

func TestExtractUntypedAffiliation(t *testing.T) {
	p := testPaper()
	aff := p.Affiliations["jane-doe"]
	aff.Affiliation.Type = nil
	p.Affiliations["jane-doe"] = aff

	e := NewExtractor()
	ctx, err := e.Extract(p, "jane-doe")
	if err != nil {
		t.Fatal(err)
	}
	if ctx.AffType != "" || ctx.AffName != "" {
		t.Errorf("untyped affiliation should yield empty org fields: %+v", ctx)
	}
	if len(ctx.Department) != 0 {
		t.Errorf("untyped affiliation should not expose departments: %v", ctx.Department)
	}
	// Email is independent of the organization record.
	if ctx.EmailUser != "jdoe" {
		t.Errorf("email user = %q", ctx.EmailUser)
	}
}
