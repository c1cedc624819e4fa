package storage

import (
	"database/sql"
	"fmt"
)

// ListPreferred returns the preferred author names in priority order
// (position ascending, first = highest priority).
func ListPreferred(db *sql.DB) ([]string, error) {
	rows, err := db.Query("SELECT name FROM preferred_authors ORDER BY position ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("query preferred authors: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan preferred author: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// AddPreferred appends a name at the lowest priority. Adding an exact
// duplicate is a no-op.
func AddPreferred(db *sql.DB, name string) error {
	_, err := db.Exec(
		`INSERT OR IGNORE INTO preferred_authors (name, position)
		 VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM preferred_authors))`,
		name,
	)
	if err != nil {
		return fmt.Errorf("add preferred author %q: %w", name, err)
	}
	return nil
}

// RemovePreferred deletes a name. Removing a missing name is not an
// error.
func RemovePreferred(db *sql.DB, name string) error {
	if _, err := db.Exec("DELETE FROM preferred_authors WHERE name = ?", name); err != nil {
		return fmt.Errorf("remove preferred author %q: %w", name, err)
	}
	return nil
}

// SetPreferred replaces the whole list in one transaction, positions
// assigned from slice order.
func SetPreferred(db *sql.DB, names []string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM preferred_authors"); err != nil {
		return fmt.Errorf("clear preferred authors: %w", err)
	}
	for i, name := range names {
		if _, err := tx.Exec(
			"INSERT INTO preferred_authors (name, position) VALUES (?, ?)", name, i+1,
		); err != nil {
			return fmt.Errorf("insert preferred author %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
