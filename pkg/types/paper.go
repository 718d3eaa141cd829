// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Paper is the canonical parsed-paper record. Producers (the XML/PDF
// parsing pipeline, test fixtures) adapt their raw output into this shape
// once, at the ingestion boundary; nothing downstream branches on raw
// mappings.
type Paper struct {
	// PID is the paper identifier, "<venue-letter><2-digit-year>-<4-digit-number>".
	PID string `json:"pid" yaml:"pid"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Authors maps author id to the display name printed in the byline.
	Authors map[string]string `json:"authors" yaml:"authors"`

	// Affiliations maps author id to that author's email and organization.
	// An id present in Authors but absent here is tolerated: the extractor
	// fills affiliation-derived fields with empty values.
	Affiliations map[string]AuthorAffiliation `json:"affiliations" yaml:"affiliations"`

	// Unknown lists byline mentions that could not be resolved to an id.
	Unknown []string `json:"unknown,omitempty" yaml:"unknown,omitempty"`

	// Citations lists the paper's parsed references.
	Citations []Citation `json:"citations,omitempty" yaml:"citations,omitempty"`

	// Sections maps section number to section metadata.
	Sections map[string]Section `json:"sections,omitempty" yaml:"sections,omitempty"`

	// TitleTokens, CitationTokens and SectionTokens are the stop-word
	// filtered token lists produced during parsing.
	TitleTokens    []string `json:"title_tokenized,omitempty" yaml:"title_tokenized,omitempty"`
	CitationTokens []string `json:"citations_tokenized,omitempty" yaml:"citations_tokenized,omitempty"`
	SectionTokens  []string `json:"sections_tokenized,omitempty" yaml:"sections_tokenized,omitempty"`
}

// IsAuthor reports whether id appears in the paper's byline.
func (p *Paper) IsAuthor(id string) bool {
	_, ok := p.Authors[id]
	return ok
}

// AuthorAffiliation holds one author's contact and organization data on a
// single paper.
type AuthorAffiliation struct {
	Email       string            `json:"email" yaml:"email"`
	Affiliation AffiliationRecord `json:"affiliation" yaml:"affiliation"`
}

// AffiliationRecord describes an organization as it appears on a paper.
// Organizations recur across papers and are canonicalized by majority
// vote before comparison.
type AffiliationRecord struct {
	// ID is a deterministic slug of the organization's canonical name.
	ID string `json:"id" yaml:"id"`

	// Type lists the organization kinds (e.g. "institution", "laboratory").
	// The first entry is the primary type.
	Type []string `json:"type" yaml:"type"`

	// Info maps an organization type to the names recorded for it.
	// Department names live under the "department" key.
	Info map[string][]string `json:"info" yaml:"info"`

	// Address is the organization's parsed postal address.
	Address Address `json:"address" yaml:"address"`
}

// PrimaryType returns the first organization type, or "" when untyped.
func (a AffiliationRecord) PrimaryType() string {
	if len(a.Type) == 0 {
		return ""
	}
	return a.Type[0]
}

// PrimaryName returns the organization name recorded under the primary
// type, or "" when the record is untyped or has no name for it.
func (a AffiliationRecord) PrimaryName() string {
	t := a.PrimaryType()
	if t == "" {
		return ""
	}
	names := a.Info[t]
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// Address is a parsed postal address.
type Address struct {
	PostCode   string `json:"postCode,omitempty" yaml:"postCode,omitempty"`
	Settlement string `json:"settlement,omitempty" yaml:"settlement,omitempty"`
	Country    string `json:"country,omitempty" yaml:"country,omitempty"`
	Region     string `json:"region,omitempty" yaml:"region,omitempty"`
}

// Citation is one parsed reference from a paper's bibliography.
type Citation struct {
	Title   string   `json:"title" yaml:"title"`
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Venue   string   `json:"venue,omitempty" yaml:"venue,omitempty"`
	Date    string   `json:"date,omitempty" yaml:"date,omitempty"`
}

// Section is one section heading from a paper body.
type Section struct {
	Title string `json:"title" yaml:"title"`
}

// Name holds the structured form of an author name from the name index.
type Name struct {
	First string `json:"first" yaml:"first"`
	Last  string `json:"last" yaml:"last"`
}
