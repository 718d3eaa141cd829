// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CoAuthor groups one co-author's name, email and organization. Keeping
// these together per co-author (rather than in parallel lists aligned by
// index) is what the comparator's pairwise scoring relies on.
type CoAuthor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	EmailUser   string `json:"email_user,omitempty"`
	EmailDomain string `json:"email_domain,omitempty"`
	AffName     string `json:"aff_name,omitempty"`
	AffType     string `json:"aff_type,omitempty"`
}

// AuthorContext is the flat per-mention record the comparator consumes.
// It is a pure function of (Paper, author id) with no lifecycle of its
// own; the extractor rebuilds it per query.
type AuthorContext struct {
	PID  string `json:"pid"`
	Name string `json:"name"`

	CoAuthors []CoAuthor `json:"co_authors"`

	EmailUser   string `json:"email_user,omitempty"`
	EmailDomain string `json:"email_domain,omitempty"`

	AffName    string   `json:"aff_name,omitempty"`
	AffType    string   `json:"aff_type,omitempty"`
	Department []string `json:"department,omitempty"`
	Address    Address  `json:"address"`

	Title          string     `json:"title"`
	TitleTokens    []string   `json:"title_tokenized,omitempty"`
	Citations      []Citation `json:"citations,omitempty"`
	CitationTokens []string   `json:"citations_tokenized,omitempty"`
	SectionTokens  []string   `json:"sections_tokenized,omitempty"`
}

// MentionKey returns the "<pid> <author-id>" key used throughout pair
// bookkeeping.
func MentionKey(pid, authorID string) string {
	return pid + " " + authorID
}
