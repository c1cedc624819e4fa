package authors

import (
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"plain list", "Alice Johnson, Bob Smith, and Carol Davis", []string{"Alice Johnson", "Bob Smith", "Carol Davis"}},
		{"ampersand", "Alice Johnson & Bob Smith", []string{"Alice Johnson", "Bob Smith"}},
		{"single author", "Alice Johnson", []string{"Alice Johnson"}},
		{"empty", "", nil},
		{"whitespace only", "   \t ", nil},
		{"extra commas", "Alice Johnson,, , Bob Smith,", []string{"Alice Johnson", "Bob Smith"}},
		{"internal runs", "Alice \t  Johnson ,  Bob   Smith", []string{"Alice Johnson", "Bob Smith"}},
		{"capital And", "Alice Johnson, And Bob Smith", []string{"Alice Johnson", "Bob Smith"}},
		{"name starting with and", "Andrea Rossi, Bob Smith", []string{"Andrea Rossi", "Bob Smith"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %#v, want %#v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseNeverReturnsDirtyEntries(t *testing.T) {
	inputs := []string{
		"a,,b", " and , & ", "x , and  y\t, &\tz ", ", , ,", "A. B. C., and D",
	}
	for _, raw := range inputs {
		for _, name := range Parse(raw) {
			if name == "" {
				t.Errorf("Parse(%q) returned empty entry", raw)
			}
			if name != strings.TrimSpace(name) {
				t.Errorf("Parse(%q) returned untrimmed entry %q", raw, name)
			}
		}
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		candidate, query string
		want             bool
	}{
		{"John Smith", "Smith", true},
		{"Smith, J.", "Smith", true},
		{"Johnson", "Smith", false},
		{"smith", "John Smith", true}, // containment runs both ways
		{"John Smith", "john smith", true},
		{"", "Smith", false},
		{"Smith", "", false},
		{"Li Wei", "Li", true}, // known over-match, accepted behavior
	}
	for _, tt := range tests {
		if got := Match(tt.candidate, tt.query); got != tt.want {
			t.Errorf("Match(%q, %q) = %v, want %v", tt.candidate, tt.query, got, tt.want)
		}
	}
}

func TestSelect(t *testing.T) {
	list := []string{"Alice Johnson", "Bob Smith", "Carol Davis"}

	if got := Select(list, []string{"Smith"}); got != "Bob Smith" {
		t.Errorf("Select with preferred Smith = %q, want Bob Smith", got)
	}
	if got := Select(list, []string{"Davis", "Smith"}); got != "Carol Davis" {
		t.Errorf("preferred order should win: got %q, want Carol Davis", got)
	}
	if got := Select(list, nil); got != "Alice Johnson" {
		t.Errorf("no preferred: got %q, want first author", got)
	}
	if got := Select(list, []string{"Nakamura"}); got != "Alice Johnson" {
		t.Errorf("no match: got %q, want first author", got)
	}
	if got := Select(nil, []string{"Smith"}); got != "" {
		t.Errorf("empty list: got %q, want empty", got)
	}
}

func TestSelectDeterministic(t *testing.T) {
	list := []string{"A One", "B Two", "C Three"}
	pref := []string{"Two", "Three"}
	first := Select(list, pref)
	for i := 0; i < 50; i++ {
		if got := Select(list, pref); got != first {
			t.Fatalf("Select not deterministic: %q then %q", first, got)
		}
	}
}

func TestShort(t *testing.T) {
	tests := []struct {
		full, want string
	}{
		{"Smith", "Smith"},
		{"Bob Smith", "Smith"},
		{"Jan van Leeuwen", "Leeuwen"},
		{"Smith, J. R.", "Smith"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Short(tt.full); got != tt.want {
			t.Errorf("Short(%q) = %q, want %q", tt.full, got, tt.want)
		}
	}
}
