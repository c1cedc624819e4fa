package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lotas/arxivgruppen/internal/types"
)

// PaperStore is the SQLite-backed durable cache tier. It satisfies
// cache.Store.
type PaperStore struct {
	db *sql.DB
}

// NewPaperStore wraps an open database.
func NewPaperStore(db *sql.DB) *PaperStore {
	return &PaperStore{db: db}
}

// Get loads one paper by id. A missing id is (nil, nil).
func (s *PaperStore) Get(id string) (*types.Paper, error) {
	row := s.db.QueryRow(
		`SELECT id, title, raw_authors, authors, author, category, source_url, fetched_at
		 FROM papers WHERE id = ?`, id)

	p, err := scanPaper(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query paper %q: %w", id, err)
	}
	return p, nil
}

// Put inserts or overwrites a paper record.
func (s *PaperStore) Put(p *types.Paper) error {
	authorsJSON, err := json.Marshal(p.Authors)
	if err != nil {
		return fmt.Errorf("marshal authors for %q: %w", p.ID, err)
	}

	_, err = s.db.Exec(
		`INSERT INTO papers (id, title, raw_authors, authors, author, category, source_url, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   raw_authors = excluded.raw_authors,
		   authors = excluded.authors,
		   author = excluded.author,
		   category = excluded.category,
		   source_url = excluded.source_url,
		   fetched_at = excluded.fetched_at`,
		p.ID, p.Title, p.RawAuthors, string(authorsJSON), p.Author, p.Category, p.SourceURL, p.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("insert paper %q: %w", p.ID, err)
	}
	return nil
}

// Delete removes a paper by id. Deleting a missing id is not an error.
func (s *PaperStore) Delete(id string) error {
	if _, err := s.db.Exec("DELETE FROM papers WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete paper %q: %w", id, err)
	}
	return nil
}

// All returns every stored paper, newest fetch first.
func (s *PaperStore) All() ([]*types.Paper, error) {
	rows, err := s.db.Query(
		`SELECT id, title, raw_authors, authors, author, category, source_url, fetched_at
		 FROM papers ORDER BY fetched_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query papers: %w", err)
	}
	defer rows.Close()

	var result []*types.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("scan paper: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// Count returns the number of stored papers.
func (s *PaperStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM papers").Scan(&n); err != nil {
		return 0, fmt.Errorf("count papers: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPaper(row scanner) (*types.Paper, error) {
	var p types.Paper
	var authorsJSON string
	if err := row.Scan(&p.ID, &p.Title, &p.RawAuthors, &authorsJSON, &p.Author,
		&p.Category, &p.SourceURL, &p.FetchedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(authorsJSON), &p.Authors); err != nil {
		// A corrupt authors column should not make the record
		// unreadable; the raw text is still there.
		p.Authors = nil
	}
	return &p, nil
}
