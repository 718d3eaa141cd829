// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the parsed corpus and disambiguation results
// in a SQLite database. JSON corpus dumps cross into typed records here
// and nowhere else; everything downstream works with pkg/types values.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/author-resolve/pkg/types"
)

const (
	dbFile           = "corpus.db"
	papersFile       = "papers.json"
	namesFile        = "id_to_name.json"
	authorPapersFile = "author_papers.json"
)

// Store manages the corpus SQLite database.
type Store struct {
	db      *sql.DB
	dataDir string
}

// Open opens or creates the corpus database at DataDir/corpus.db and
// creates the schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dataDir: cfg.DataDir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			pid TEXT PRIMARY KEY,
			data TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS authors (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS author_papers (
			author_id TEXT NOT NULL,
			pid TEXT NOT NULL,
			PRIMARY KEY (author_id, pid)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_author_papers_pid ON author_papers(pid)`,
		`CREATE TABLE IF NOT EXISTS decisions (
			target TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			decided_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// IngestSummary holds counts from a corpus ingestion run.
type IngestSummary struct {
	Papers  int
	Authors int
}

// Ingest reads papers.json, id_to_name.json and author_papers.json
// from DataDir and loads them into the database. Raw dumps are decoded
// into typed Paper records here; malformed dumps fail the run.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary

	papers := make(map[string]*types.Paper)
	if err := s.readDump(papersFile, &papers); err != nil {
		return summary, err
	}
	for pid, paper := range papers {
		normalize(pid, paper)
	}
	if err := s.PutPapers(ctx, papers); err != nil {
		return summary, err
	}
	summary.Papers = len(papers)
	fmt.Fprintf(w, "ingested %d papers\n", summary.Papers)

	idToName := make(map[string]string)
	if err := s.readDump(namesFile, &idToName); err != nil {
		return summary, err
	}
	if err := s.PutNames(ctx, idToName); err != nil {
		return summary, err
	}
	summary.Authors = len(idToName)
	fmt.Fprintf(w, "ingested %d author names\n", summary.Authors)

	authorPapers := make(map[string][]string)
	if err := s.readDump(authorPapersFile, &authorPapers); err != nil {
		return summary, err
	}
	if err := s.PutAuthorPapers(ctx, authorPapers); err != nil {
		return summary, err
	}
	fmt.Fprintf(w, "ingested %d author-paper index entries\n", len(authorPapers))

	return summary, nil
}

func (s *Store) readDump(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dataDir, name))
	if err != nil {
		return fmt.Errorf("reading corpus dump: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

// normalize is the one place a raw dump becomes a canonical record: the
// map key wins over any embedded pid and nil maps become empty ones.
func normalize(pid string, paper *types.Paper) {
	paper.PID = pid
	if paper.Authors == nil {
		paper.Authors = make(map[string]string)
	}
	if paper.Affiliations == nil {
		paper.Affiliations = make(map[string]types.AuthorAffiliation)
	}
}

// PutPapers upserts paper records as JSON blobs.
func (s *Store) PutPapers(ctx context.Context, papers map[string]*types.Paper) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (pid, data) VALUES (?, ?)
		 ON CONFLICT(pid) DO UPDATE SET data=excluded.data`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for pid, paper := range papers {
		data, err := json.Marshal(paper)
		if err != nil {
			return fmt.Errorf("encoding paper %s: %w", pid, err)
		}
		if _, err := stmt.ExecContext(ctx, pid, string(data)); err != nil {
			return fmt.Errorf("upserting paper %s: %w", pid, err)
		}
	}
	return tx.Commit()
}

// Papers loads every stored paper.
func (s *Store) Papers(ctx context.Context) (map[string]*types.Paper, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT pid, data FROM papers`)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	papers := make(map[string]*types.Paper)
	for rows.Next() {
		var pid, data string
		if err := rows.Scan(&pid, &data); err != nil {
			return nil, fmt.Errorf("scanning paper row: %w", err)
		}
		var paper types.Paper
		if err := json.Unmarshal([]byte(data), &paper); err != nil {
			return nil, fmt.Errorf("decoding paper %s: %w", pid, err)
		}
		normalize(pid, &paper)
		papers[pid] = &paper
	}
	return papers, rows.Err()
}

// PutNames upserts the id-to-name table.
func (s *Store) PutNames(ctx context.Context, idToName map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO authors (id, name) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for id, name := range idToName {
		if _, err := stmt.ExecContext(ctx, id, name); err != nil {
			return fmt.Errorf("upserting author %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// Names loads the id-to-name table.
func (s *Store) Names(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM authors`)
	if err != nil {
		return nil, fmt.Errorf("querying authors: %w", err)
	}
	defer rows.Close()

	idToName := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scanning author row: %w", err)
		}
		idToName[id] = name
	}
	return idToName, rows.Err()
}

// PutAuthorPapers replaces each author's paper list.
func (s *Store) PutAuthorPapers(ctx context.Context, authorPapers map[string][]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO author_papers (author_id, pid) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for id, pids := range authorPapers {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM author_papers WHERE author_id = ?`, id); err != nil {
			return fmt.Errorf("clearing index for %s: %w", id, err)
		}
		for _, pid := range pids {
			if _, err := stmt.ExecContext(ctx, id, pid); err != nil {
				return fmt.Errorf("indexing %s -> %s: %w", id, pid, err)
			}
		}
	}
	return tx.Commit()
}

// AuthorPapers loads the author-to-papers index with each paper list
// sorted.
func (s *Store) AuthorPapers(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT author_id, pid FROM author_papers`)
	if err != nil {
		return nil, fmt.Errorf("querying author papers: %w", err)
	}
	defer rows.Close()

	authorPapers := make(map[string][]string)
	for rows.Next() {
		var id, pid string
		if err := rows.Scan(&id, &pid); err != nil {
			return nil, fmt.Errorf("scanning index row: %w", err)
		}
		authorPapers[id] = append(authorPapers[id], pid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, pids := range authorPapers {
		sort.Strings(pids)
	}
	return authorPapers, nil
}

// PutDecisions records the engine's verdicts for later audit.
func (s *Store) PutDecisions(ctx context.Context, decisions map[string]types.Decision) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO decisions (target, data, decided_at) VALUES (?, ?, ?)
		 ON CONFLICT(target) DO UPDATE SET data=excluded.data, decided_at=excluded.decided_at`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for target, d := range decisions {
		data, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("encoding decision for %s: %w", target, err)
		}
		if _, err := stmt.ExecContext(ctx, target, string(data), now); err != nil {
			return fmt.Errorf("upserting decision for %s: %w", target, err)
		}
	}
	return tx.Commit()
}

// Decisions loads every recorded verdict.
func (s *Store) Decisions(ctx context.Context) (map[string]types.Decision, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT target, data FROM decisions`)
	if err != nil {
		return nil, fmt.Errorf("querying decisions: %w", err)
	}
	defer rows.Close()

	decisions := make(map[string]types.Decision)
	for rows.Next() {
		var target, data string
		if err := rows.Scan(&target, &data); err != nil {
			return nil, fmt.Errorf("scanning decision row: %w", err)
		}
		var d types.Decision
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			return nil, fmt.Errorf("decoding decision for %s: %w", target, err)
		}
		decisions[target] = d
	}
	return decisions, rows.Err()
}

// ReplaceCorpus clears the stored corpus and writes a new one. Used
// after id migrations, where retired ids must not linger in the tables.
func (s *Store) ReplaceCorpus(ctx context.Context, papers map[string]*types.Paper, authorPapers map[string][]string, idToName map[string]string) error {
	for _, table := range []string{"papers", "authors", "author_papers"} {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	if err := s.PutPapers(ctx, papers); err != nil {
		return err
	}
	if err := s.PutAuthorPapers(ctx, authorPapers); err != nil {
		return err
	}
	return s.PutNames(ctx, idToName)
}

// Corpus loads papers, the author index and the name table in one call.
func (s *Store) Corpus(ctx context.Context) (map[string]*types.Paper, map[string][]string, map[string]string, error) {
	papers, err := s.Papers(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	authorPapers, err := s.AuthorPapers(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	idToName, err := s.Names(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return papers, authorPapers, idToName, nil
}
