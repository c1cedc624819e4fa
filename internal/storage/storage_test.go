package storage

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/lotas/arxivgruppen/internal/types"
)

func openTestDB(t *testing.T) *PaperStore {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPaperStore(db)
}

func TestPaperRoundTrip(t *testing.T) {
	s := openTestDB(t)

	in := &types.Paper{
		ID:         "1706.03762",
		Title:      "Attention Is All You Need",
		RawAuthors: "Ashish Vaswani, Noam Shazeer",
		Authors:    []string{"Ashish Vaswani", "Noam Shazeer"},
		Author:     "Ashish Vaswani",
		Category:   "Computation and Language (cs.CL)",
		SourceURL:  "https://arxiv.org/abs/1706.03762",
		FetchedAt:  time.Now().UTC().Truncate(time.Second),
	}
	if err := s.Put(in); err != nil {
		t.Fatalf("Put: %v", err)
	}

	out, err := s.Get("1706.03762")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out == nil {
		t.Fatal("Get returned nil for stored paper")
	}
	if out.Title != in.Title || out.Author != in.Author || out.Category != in.Category {
		t.Errorf("round trip mismatch: %+v", out)
	}
	if !reflect.DeepEqual(out.Authors, in.Authors) {
		t.Errorf("Authors = %#v, want %#v", out.Authors, in.Authors)
	}
}

func TestPaperOverwrite(t *testing.T) {
	s := openTestDB(t)

	s.Put(&types.Paper{ID: "2401.00001", Title: "First", FetchedAt: time.Now()})
	s.Put(&types.Paper{ID: "2401.00001", Title: "Second", FetchedAt: time.Now()})

	out, err := s.Get("2401.00001")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out.Title != "Second" {
		t.Errorf("Title = %q, want Second (overwrite, not merge)", out.Title)
	}

	n, err := s.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestDB(t)
	out, err := s.Get("0000.00000")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out != nil {
		t.Errorf("Get missing = %+v, want nil", out)
	}
}

func TestDeleteMissingIsNoError(t *testing.T) {
	s := openTestDB(t)
	if err := s.Delete("0000.00000"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
}

func TestPreferredAuthors(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	defer db.Close()

	for _, name := range []string{"Smith", "Vaswani", "Li"} {
		if err := AddPreferred(db, name); err != nil {
			t.Fatalf("AddPreferred(%q): %v", name, err)
		}
	}
	// Duplicate add is silently ignored.
	if err := AddPreferred(db, "Smith"); err != nil {
		t.Fatalf("AddPreferred duplicate: %v", err)
	}

	names, err := ListPreferred(db)
	if err != nil {
		t.Fatalf("ListPreferred: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"Smith", "Vaswani", "Li"}) {
		t.Errorf("ListPreferred = %#v", names)
	}

	if err := RemovePreferred(db, "Vaswani"); err != nil {
		t.Fatalf("RemovePreferred: %v", err)
	}
	names, _ = ListPreferred(db)
	if !reflect.DeepEqual(names, []string{"Smith", "Li"}) {
		t.Errorf("after remove: %#v", names)
	}

	if err := SetPreferred(db, []string{"Li", "Smith"}); err != nil {
		t.Fatalf("SetPreferred: %v", err)
	}
	names, _ = ListPreferred(db)
	if !reflect.DeepEqual(names, []string{"Li", "Smith"}) {
		t.Errorf("after SetPreferred: %#v", names)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := OpenDB(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	db.Close()

	db, err = OpenDB(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	db.Close()
}
