// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package split mints fresh identifiers when one raw author id turns
// out to cover multiple people, migrating each affected paper's byline
// and affiliation entries to the new id.
package split

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/pdiddy/author-resolve/pkg/types"
)

// ErrIDCollision means a freshly minted id already exists inside a
// paper being migrated. That can only happen when the corpus and the
// author index disagree, so it is a hard data-integrity error.
var ErrIDCollision = errors.New("split: new id already present in paper")

// ErrUnknownTarget means the id to split is absent from the author
// index.
var ErrUnknownTarget = errors.New("split: unknown target id")

// Splitter migrates papers from shared ids to fresh suffixed ids. It
// mutates the papers it was built over; FillData assembles the final
// corpus view once all targets are handled.
type Splitter struct {
	cfg          types.SplitConfig
	papers       map[string]*types.Paper
	authorPapers map[string][]string
	idToName     map[string]string

	suffix          map[string]int
	errorPapers     map[string]bool
	touched         map[string]bool
	newAuthorPapers map[string][]string
	newIDToName     map[string]string
	oldIDs          map[string]bool
}

// NewSplitter builds a Splitter over the corpus. The paper objects are
// modified in place as targets are created.
func NewSplitter(cfg types.SplitConfig, papers map[string]*types.Paper, authorPapers map[string][]string, idToName map[string]string) *Splitter {
	return &Splitter{
		cfg:             cfg,
		papers:          papers,
		authorPapers:    authorPapers,
		idToName:        idToName,
		suffix:          make(map[string]int),
		errorPapers:     make(map[string]bool),
		touched:         make(map[string]bool),
		newAuthorPapers: make(map[string][]string),
		newIDToName:     make(map[string]string),
		oldIDs:          make(map[string]bool),
	}
}

// CreateTarget splits target into one or more fresh ids and returns
// them. With an explicit paper list only those papers migrate; without
// one every paper of the target migrates, either all under a single new
// id or one id per paper when TreatIDDifferentPeople is set.
func (s *Splitter) CreateTarget(target string, papers []string, w io.Writer) ([]string, error) {
	if _, ok := s.authorPapers[target]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, target)
	}

	if papers == nil && s.cfg.TreatIDDifferentPeople {
		ids := make([]string, 0, len(s.authorPapers[target]))
		for _, pid := range s.authorPapers[target] {
			id, err := s.handleTarget(target, []string{pid}, w)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, nil
	}

	if papers == nil {
		papers = s.authorPapers[target]
	}
	id, err := s.handleTarget(target, papers, w)
	if err != nil {
		return nil, err
	}
	return []string{id}, nil
}

// handleTarget allocates the next free suffixed id for target and
// migrates the given papers onto it.
func (s *Splitter) handleTarget(target string, papers []string, w io.Writer) (string, error) {
	s.suffix[target]++
	newID := target + strconv.Itoa(s.suffix[target])
	for {
		_, taken := s.authorPapers[newID]
		_, minted := s.newAuthorPapers[newID]
		if !taken && !minted {
			break
		}
		s.suffix[target]++
		newID = target + strconv.Itoa(s.suffix[target])
	}

	if err := s.migrate(target, newID, papers, w); err != nil {
		return "", err
	}
	s.newIDToName[newID] = s.idToName[target]
	s.oldIDs[target] = true
	return newID, nil
}

// migrate moves target's byline and affiliation entries to newID on
// each paper. Entries are moved, never copied: after migration the old
// id is gone from every migrated paper.
func (s *Splitter) migrate(oldID, newID string, papers []string, w io.Writer) error {
	for _, pid := range papers {
		paper, ok := s.papers[pid]
		if !ok {
			fmt.Fprintf(w, "%s is not parsed, skipping\n", pid)
			continue
		}

		_, inAuthors := paper.Authors[oldID]
		_, inAffiliations := paper.Affiliations[oldID]
		if !inAuthors || !inAffiliations {
			fmt.Fprintf(w, "%s is missing %s, adding to error papers\n", pid, oldID)
			s.errorPapers[pid] = true
			continue
		}

		if s.errorPapers[pid] && s.cfg.SkipErrorPapers {
			fmt.Fprintf(w, "skipping error paper %s\n", pid)
			continue
		}

		if s.touched[pid] && s.cfg.OneTargetPerPaper {
			fmt.Fprintf(w, "skipping %s: already has a target\n", pid)
			continue
		}

		if _, ok := paper.Authors[newID]; ok {
			return fmt.Errorf("%w: %s in %s", ErrIDCollision, newID, pid)
		}
		if _, ok := paper.Affiliations[newID]; ok {
			return fmt.Errorf("%w: %s in %s", ErrIDCollision, newID, pid)
		}

		paper.Authors[newID] = paper.Authors[oldID]
		paper.Affiliations[newID] = paper.Affiliations[oldID]
		delete(paper.Authors, oldID)
		delete(paper.Affiliations, oldID)

		s.touched[pid] = true
		s.newAuthorPapers[newID] = append(s.newAuthorPapers[newID], pid)
	}
	return nil
}

// FillData carries every untouched author and paper over into the
// post-split corpus view and returns the final maps: papers, the
// author-to-papers index and the id-to-name table.
func (s *Splitter) FillData(w io.Writer) (map[string]*types.Paper, map[string][]string, map[string]string) {
	ids := make([]string, 0, len(s.authorPapers))
	for id := range s.authorPapers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, minted := s.newAuthorPapers[id]; minted || s.oldIDs[id] {
			continue
		}
		if _, named := s.idToName[id]; !named {
			fmt.Fprintf(w, "%s is indexed but has no recorded name\n", id)
			continue
		}
		s.newAuthorPapers[id] = append([]string(nil), s.authorPapers[id]...)
		s.newIDToName[id] = s.idToName[id]
	}

	papers := make(map[string]*types.Paper, len(s.papers))
	for pid, paper := range s.papers {
		if s.errorPapers[pid] && !s.touched[pid] {
			continue
		}
		papers[pid] = paper
	}
	return papers, s.newAuthorPapers, s.newIDToName
}
