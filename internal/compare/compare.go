// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compare turns a pair of author contexts into the ordered
// feature vector the classifier consumes. The term order is part of the
// model contract: a saved model is only valid against the exact ordering
// reported by Terms.
package compare

import (
	"strings"

	"github.com/pdiddy/author-resolve/internal/identity"
	"github.com/pdiddy/author-resolve/internal/strsim"
	"github.com/pdiddy/author-resolve/pkg/types"
)

// terms is the feature-vector layout, in classifier order.
var terms = []string{
	"first_name_score",
	"initials_score",
	"org_name_score",
	"org_type_score",
	"email_domain_score",
	"co_auth_score",
	"co_auth_name1",
	"co_auth_email_avg",
	"co_auth_aff_avg",
	"co_auth_aff_type_score",
	"shared_aff_score",
	"shared_aff_type_score",
	"shared_aff_email",
	"department_score",
	"year_dif",
	"same_title_words",
	"venue",
	"citation_count_dif",
	"citation_authors",
	"citation_title_tokens",
	"section_title_tokens",
	"post_code",
	"settlement",
	"country",
}

// Terms returns the feature names in vector order.
func Terms() []string {
	out := make([]string, len(terms))
	copy(out, terms)
	return out
}

// Comparator scores author-context pairs. It is read-only after
// construction and safe for concurrent use by the batch workers.
type Comparator struct {
	cfg  types.CompareConfig
	sim  strsim.Func
	orgs *strsim.SoftTFIDF
	dept *strsim.SoftTFIDF
}

// NewComparator builds a comparator from cfg and the two training
// corpora: orgCorpus holds the token lists of every known organization
// name, deptCorpus every known department name.
func NewComparator(cfg types.CompareConfig, orgCorpus, deptCorpus [][]string) (*Comparator, error) {
	cfg = cfg.Defaults()
	sim, err := strsim.ForName(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	return &Comparator{
		cfg:  cfg,
		sim:  sim,
		orgs: strsim.NewSoftTFIDF(orgCorpus, cfg.SoftTFIDFThreshold, sim),
		dept: strsim.NewSoftTFIDF(deptCorpus, cfg.SoftTFIDFThreshold, sim),
	}, nil
}

// Compare returns the feature vector for a pair of author contexts, in
// Terms order. Individual sub-scores degrade to zero on malformed
// fields; one sparse mention must never abort a batch job.
func (c *Comparator) Compare(a, b types.AuthorContext) []float64 {
	v := make([]float64, 0, len(terms))
	v = append(v, c.firstNameScore(a.Name, b.Name))
	v = append(v, c.initialsScore(a.Name, b.Name))
	v = append(v, c.orgNameScore(a.AffName, b.AffName))
	v = append(v, equalScore(a.AffType, b.AffType))
	v = append(v, c.simOrZero(a.EmailDomain, b.EmailDomain))
	v = append(v, sharedInLists(coNames(a), coNames(b), true))
	v = append(v, c.maxCrossSim(coNames(a), coNames(b)))
	v = append(v, c.avgCrossSim(coEmails(a), coEmails(b)))
	v = append(v, c.avgCrossSim(coAffs(a), coAffs(b)))
	v = append(v, sharedScore(a, b, hasAffType, c.cfg.TypeScorePenalty))
	v = append(v, sharedScore(a, b, matchesAffName, c.cfg.SharedScorePenalty))
	v = append(v, sharedScore(a, b, matchesAffType, c.cfg.TypeScorePenalty))
	v = append(v, sharedScore(a, b, matchesEmailDomain, c.cfg.SharedScorePenalty))
	v = append(v, c.departmentScore(a.Department, b.Department))
	v = append(v, yearDif(a.PID, b.PID))
	v = append(v, sharedInLists(a.TitleTokens, b.TitleTokens, true))
	v = append(v, sameVenue(a.PID, b.PID))
	v = append(v, absFloat(float64(len(a.Citations)-len(b.Citations))))
	v = append(v, sharedInLists(citationAuthors(a), citationAuthors(b), false))
	v = append(v, sharedInLists(a.CitationTokens, b.CitationTokens, false))
	v = append(v, sharedInLists(a.SectionTokens, b.SectionTokens, false))
	v = append(v, c.simOrZero(a.Address.PostCode, b.Address.PostCode))
	v = append(v, c.simOrZero(a.Address.Settlement, b.Address.Settlement))
	v = append(v, c.simOrZero(a.Address.Country, b.Address.Country))
	return v
}

// firstNameScore compares first-name tokens. Two full names compare
// first token to first token; two mononyms count as a perfect match; a
// mononym against a full name scores zero because the lone token is
// treated as a surname.
func (c *Comparator) firstNameScore(nameA, nameB string) float64 {
	ta, tb := strings.Fields(nameA), strings.Fields(nameB)
	switch {
	case len(ta) == 0 || len(tb) == 0:
		return 0
	case len(ta) >= 2 && len(tb) >= 2:
		return c.sim(ta[0], tb[0])
	case len(ta) == 1 && len(tb) == 1:
		return 1
	default:
		return 0
	}
}

// initialsScore counts letter-for-letter matching initials over the
// shorter name's token count, scaled by min/max token count so a length
// mismatch penalizes both directions equally.
func (c *Comparator) initialsScore(nameA, nameB string) float64 {
	ta, tb := strings.Fields(nameA), strings.Fields(nameB)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	short := min(len(ta), len(tb))
	matched := 0
	for i := 0; i < short; i++ {
		if initial(ta[i]) == initial(tb[i]) {
			matched++
		}
	}
	return float64(matched) / float64(short) * float64(short) / float64(max(len(ta), len(tb)))
}

func initial(tok string) rune {
	for _, r := range tok {
		return r
	}
	return 0
}

func (c *Comparator) orgNameScore(orgA, orgB string) float64 {
	if orgA == "" || orgB == "" {
		return 0
	}
	score, err := c.orgs.Score(strings.Fields(orgA), strings.Fields(orgB))
	if err != nil {
		return 0
	}
	return score
}

// departmentScore takes the best soft TF-IDF score over the cross
// product of the two department lists, falling back to the plain string
// similarity of each pair when the department corpus cannot weight them.
func (c *Comparator) departmentScore(depsA, depsB []string) float64 {
	best := 0.0
	for _, da := range depsA {
		for _, db := range depsB {
			score, err := c.dept.Score(strings.Fields(da), strings.Fields(db))
			if err != nil {
				score = c.sim(da, db)
			}
			if score > best {
				best = score
			}
		}
	}
	return best
}

func (c *Comparator) simOrZero(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return c.sim(a, b)
}

// maxCrossSim returns the highest similarity across the cross product,
// a proxy for "did these two ever share a near-identically named
// co-author".
func (c *Comparator) maxCrossSim(as, bs []string) float64 {
	best := 0.0
	for _, a := range as {
		for _, b := range bs {
			if s := c.sim(a, b); s > best {
				best = s
			}
		}
	}
	return best
}

// avgCrossSim averages similarity across the cross product, skipping
// entries where either side is empty.
func (c *Comparator) avgCrossSim(as, bs []string) float64 {
	sum, n := 0.0, 0
	for _, a := range as {
		if a == "" {
			continue
		}
		for _, b := range bs {
			if b == "" {
				continue
			}
			sum += c.sim(a, b)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// sharedScore compares "fraction of my co-authors who share my own
// attribute" between the two sides. Exactly one side having co-authors
// is an informative asymmetry and emits the penalty sentinel; both
// sides empty is a neutral unknown and emits zero.
func sharedScore(a, b types.AuthorContext, matches func(types.AuthorContext, types.CoAuthor) bool, penalty float64) float64 {
	switch {
	case len(a.CoAuthors) == 0 && len(b.CoAuthors) == 0:
		return 0
	case len(a.CoAuthors) == 0 || len(b.CoAuthors) == 0:
		return penalty
	}
	return absFloat(sharedFraction(a, matches) - sharedFraction(b, matches))
}

func sharedFraction(ctx types.AuthorContext, matches func(types.AuthorContext, types.CoAuthor) bool) float64 {
	n := 0
	for _, co := range ctx.CoAuthors {
		if matches(ctx, co) {
			n++
		}
	}
	return float64(n) / float64(len(ctx.CoAuthors))
}

// hasAffType reports whether a co-author carries a typed affiliation at
// all; the resulting score compares affiliation coverage between the two
// co-author lists rather than agreement with the subject.
func hasAffType(_ types.AuthorContext, co types.CoAuthor) bool {
	return co.AffType != ""
}

func matchesAffName(ctx types.AuthorContext, co types.CoAuthor) bool {
	return ctx.AffName != "" && co.AffName == ctx.AffName
}

func matchesAffType(ctx types.AuthorContext, co types.CoAuthor) bool {
	return ctx.AffType != "" && co.AffType == ctx.AffType
}

func matchesEmailDomain(ctx types.AuthorContext, co types.CoAuthor) bool {
	return ctx.EmailDomain != "" && co.EmailDomain == ctx.EmailDomain
}

// sharedInLists counts overlap between two lists, consuming each shared
// element once so duplicates do not inflate the count. With penalty the
// count is scaled by min/max list length; citation and section overlaps
// skip the scaling because the raw count is the signal there.
func sharedInLists(as, bs []string, penalty bool) float64 {
	if len(as) == 0 || len(bs) == 0 {
		return 0
	}
	pool := make(map[string]int, len(bs))
	for _, b := range bs {
		pool[b]++
	}
	shared := 0
	for _, a := range as {
		if pool[a] > 0 {
			pool[a]--
			shared++
		}
	}
	score := float64(shared)
	if penalty {
		score *= float64(min(len(as), len(bs))) / float64(max(len(as), len(bs)))
	}
	return score
}

func equalScore(a, b string) float64 {
	if a != "" && a == b {
		return 1
	}
	return 0
}

func yearDif(pidA, pidB string) float64 {
	ya, errA := identity.PaperYear(pidA)
	yb, errB := identity.PaperYear(pidB)
	if errA != nil || errB != nil {
		return 0
	}
	return absFloat(float64(ya - yb))
}

func sameVenue(pidA, pidB string) float64 {
	va, errA := identity.PaperVenue(pidA)
	vb, errB := identity.PaperVenue(pidB)
	if errA != nil || errB != nil {
		return 0
	}
	if va == vb {
		return 1
	}
	return 0
}

func coNames(ctx types.AuthorContext) []string {
	out := make([]string, len(ctx.CoAuthors))
	for i, co := range ctx.CoAuthors {
		out[i] = co.Name
	}
	return out
}

func coEmails(ctx types.AuthorContext) []string {
	out := make([]string, 0, len(ctx.CoAuthors))
	for _, co := range ctx.CoAuthors {
		if co.EmailUser == "" {
			out = append(out, "")
			continue
		}
		out = append(out, co.EmailUser+"@"+co.EmailDomain)
	}
	return out
}

func coAffs(ctx types.AuthorContext) []string {
	out := make([]string, len(ctx.CoAuthors))
	for i, co := range ctx.CoAuthors {
		out[i] = co.AffName
	}
	return out
}

func citationAuthors(ctx types.AuthorContext) []string {
	var out []string
	for _, cit := range ctx.Citations {
		out = append(out, cit.Authors...)
	}
	return out
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
