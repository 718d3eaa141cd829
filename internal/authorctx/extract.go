// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package authorctx builds the flat author-context record the comparator
// consumes from a paper and one of its author ids.
package authorctx

import (
	"fmt"
	"sort"
	"strings"

	"github.com/patrickmn/go-cache"

	"github.com/pdiddy/author-resolve/internal/identity"
	"github.com/pdiddy/author-resolve/pkg/types"
)

// Extractor derives AuthorContext records. Extraction is a pure read of
// the paper, so results are memoized per mention: disambiguation asks
// for the same (paper, author) context once per candidate pairing.
type Extractor struct {
	memo *cache.Cache
}

// NewExtractor returns an Extractor with an unbounded memo. Contexts are
// small and the corpus is fixed for the life of a run, so entries never
// expire.
func NewExtractor() *Extractor {
	return &Extractor{memo: cache.New(cache.NoExpiration, 0)}
}

// Extract returns the author context for authorID on paper. The id must
// appear in the paper's byline; a missing affiliation entry is an
// expected sparse-data condition and yields empty affiliation fields.
func (e *Extractor) Extract(paper *types.Paper, authorID string) (types.AuthorContext, error) {
	key := types.MentionKey(paper.PID, authorID)
	if e != nil && e.memo != nil {
		if hit, ok := e.memo.Get(key); ok {
			return hit.(types.AuthorContext), nil
		}
	}

	display, ok := paper.Authors[authorID]
	if !ok {
		return types.AuthorContext{}, fmt.Errorf("author %q is not on paper %q", authorID, paper.PID)
	}

	out := types.AuthorContext{
		PID:            paper.PID,
		Name:           identity.CleanName(display, true),
		Title:          identity.CleanName(paper.Title, true),
		TitleTokens:    paper.TitleTokens,
		Citations:      paper.Citations,
		CitationTokens: paper.CitationTokens,
		SectionTokens:  paper.SectionTokens,
	}

	out.CoAuthors = coAuthors(paper, authorID)

	if aff, ok := paper.Affiliations[authorID]; ok {
		out.EmailUser, out.EmailDomain = splitEmail(aff.Email)
		out.AffType = aff.Affiliation.PrimaryType()
		if out.AffType != "" {
			out.AffName = identity.CleanName(aff.Affiliation.PrimaryName(), true)
			out.Department = aff.Affiliation.Info["department"]
		}
		out.Address = cleanAddress(aff.Affiliation.Address)
	}

	if e != nil && e.memo != nil {
		e.memo.SetDefault(key, out)
	}
	return out, nil
}

// coAuthors collects every byline author except the subject, in sorted
// id order so the output is stable across runs.
func coAuthors(paper *types.Paper, subject string) []types.CoAuthor {
	ids := make([]string, 0, len(paper.Authors))
	for id := range paper.Authors {
		if id != subject {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	out := make([]types.CoAuthor, 0, len(ids))
	for _, id := range ids {
		co := types.CoAuthor{
			ID:   id,
			Name: identity.CleanName(paper.Authors[id], true),
		}
		if aff, ok := paper.Affiliations[id]; ok {
			co.EmailUser, co.EmailDomain = splitEmail(aff.Email)
			co.AffType = aff.Affiliation.PrimaryType()
			if co.AffType != "" {
				co.AffName = identity.CleanName(aff.Affiliation.PrimaryName(), true)
			}
		}
		out = append(out, co)
	}
	return out
}

func splitEmail(email string) (user, domain string) {
	if email == "" {
		return "", ""
	}
	user, domain, ok := strings.Cut(email, "@")
	if !ok {
		return email, ""
	}
	return user, domain
}

func cleanAddress(a types.Address) types.Address {
	if a.Settlement != "" {
		a.Settlement = identity.CleanName(a.Settlement, true)
	}
	if a.Country != "" {
		a.Country = identity.CleanName(a.Country, true)
	}
	return a
}
