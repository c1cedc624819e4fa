// Package prefs manages the user's preferred-author list. Order is
// priority: the first name that matches any author of a paper wins. The
// in-memory copy is authoritative for a running process; the database is
// written through on every change, and write failures only cost
// persistence, not the change itself.
package prefs

import (
	"database/sql"
	"strings"
	"sync"

	"github.com/lotas/arxivgruppen/internal/applog"
	"github.com/lotas/arxivgruppen/internal/storage"
)

// Prefs holds the ordered preferred-author list. Safe for concurrent
// use. db may be nil, in which case changes live only for the session.
type Prefs struct {
	mu    sync.Mutex
	names []string
	db    *sql.DB
}

// Load reads the persisted list. A nil or failing database yields an
// empty, memory-only list.
func Load(db *sql.DB) *Prefs {
	p := &Prefs{db: db}
	if db == nil {
		return p
	}
	names, err := storage.ListPreferred(db)
	if err != nil {
		applog.Error("prefs.load", err)
		return p
	}
	p.names = names
	return p
}

// List returns a copy of the names in priority order.
func (p *Prefs) List() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.names...)
}

// Add appends a name at the lowest priority. Blank names and exact
// duplicates are ignored.
func (p *Prefs) Add(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	p.mu.Lock()
	for _, n := range p.names {
		if n == name {
			p.mu.Unlock()
			return
		}
	}
	p.names = append(p.names, name)
	p.mu.Unlock()

	if p.db != nil {
		if err := storage.AddPreferred(p.db, name); err != nil {
			applog.Error("prefs.add", err, "name", name)
		}
	}
}

// Remove deletes a name; unknown names are a no-op.
func (p *Prefs) Remove(name string) {
	p.mu.Lock()
	for i, n := range p.names {
		if n == name {
			p.names = append(p.names[:i], p.names[i+1:]...)
			break
		}
	}
	p.mu.Unlock()

	if p.db != nil {
		if err := storage.RemovePreferred(p.db, name); err != nil {
			applog.Error("prefs.remove", err, "name", name)
		}
	}
}

// MoveUp raises a name one priority slot.
func (p *Prefs) MoveUp(name string) {
	p.mu.Lock()
	for i, n := range p.names {
		if n == name && i > 0 {
			p.names[i-1], p.names[i] = p.names[i], p.names[i-1]
			break
		}
	}
	names := append([]string(nil), p.names...)
	p.mu.Unlock()

	if p.db != nil {
		if err := storage.SetPreferred(p.db, names); err != nil {
			applog.Error("prefs.reorder", err, "name", name)
		}
	}
}
