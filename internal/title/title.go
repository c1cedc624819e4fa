// Package title builds the display titles applied to paper tabs.
package title

import (
	"strings"

	"github.com/lotas/arxivgruppen/internal/authors"
)

const maxLen = 60

// Compose builds the final tab title. Steps apply in a fixed order that
// downstream consumers depend on: author prefix first, then truncation,
// then the category tag. The tag is added after truncation so a tagged
// title can run slightly past the length budget.
func Compose(pageTitle, author, category string) string {
	s := pageTitle

	if author != "" {
		s = authors.Short(author) + ": " + s
	}

	if r := []rune(s); len(r) > maxLen {
		s = string(r[:maxLen-3]) + "..."
	}

	if tag := Tag(category); tag != "" {
		s = "[" + tag + "] " + s
	}

	return s
}

// Tag reduces a category line to a short bracket tag. arXiv subject
// lines look like "Computation and Language (cs.CL)"; the parenthesized
// code is preferred, and everything from the first dot on is dropped, so
// "cs.CL" becomes "cs".
func Tag(category string) string {
	s := strings.TrimSpace(category)
	if s == "" {
		return ""
	}

	if open := strings.Index(s, "("); open >= 0 {
		if close := strings.Index(s[open:], ")"); close > 0 {
			s = s[open+1 : open+close]
		}
	}

	if dot := strings.Index(s, "."); dot >= 0 {
		s = s[:dot]
	}
	return strings.TrimSpace(s)
}
