package prefs

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/lotas/arxivgruppen/internal/storage"
)

func TestMemoryOnlyPrefs(t *testing.T) {
	p := Load(nil)

	p.Add("Smith")
	p.Add("Li")
	p.Add("Smith") // duplicate
	p.Add("   ")   // blank

	if got := p.List(); !reflect.DeepEqual(got, []string{"Smith", "Li"}) {
		t.Errorf("List = %#v", got)
	}

	p.MoveUp("Li")
	if got := p.List(); !reflect.DeepEqual(got, []string{"Li", "Smith"}) {
		t.Errorf("after MoveUp: %#v", got)
	}

	p.Remove("Li")
	p.Remove("nobody")
	if got := p.List(); !reflect.DeepEqual(got, []string{"Smith"}) {
		t.Errorf("after Remove: %#v", got)
	}
}

func TestPrefsPersistAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.OpenDB(path)
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}

	p := Load(db)
	p.Add("Vaswani")
	p.Add("Smith")
	p.MoveUp("Smith")
	db.Close()

	db, err = storage.OpenDB(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	p = Load(db)
	if got := p.List(); !reflect.DeepEqual(got, []string{"Smith", "Vaswani"}) {
		t.Errorf("reloaded List = %#v", got)
	}
}

func TestListReturnsCopy(t *testing.T) {
	p := Load(nil)
	p.Add("Smith")

	got := p.List()
	got[0] = "mutated"

	if p.List()[0] != "Smith" {
		t.Error("List exposed internal slice")
	}
}
