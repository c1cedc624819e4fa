package authors

import "strings"

// Parse splits a raw author-list string ("Alice Johnson, Bob Smith, and
// Carol Davis") into cleaned author names in document order. It never
// fails; malformed input degrades to a best-effort list.
func Parse(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var names []string
	for _, frag := range strings.Split(raw, ",") {
		name := cleanFragment(frag)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// cleanFragment trims a single comma-separated fragment, strips a leading
// "and"/"&" token, and collapses internal whitespace.
func cleanFragment(frag string) string {
	s := strings.TrimSpace(frag)

	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "and ") || strings.HasPrefix(lower, "and\t") {
		s = s[3:]
	} else if strings.HasPrefix(s, "& ") || strings.HasPrefix(s, "&\t") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}

// normalize lowercases a name and strips periods and commas, so that
// "Smith, J." and "smith j" compare equal.
func normalize(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}

// Match reports whether candidate and query plausibly denote the same
// person: after normalization, one must contain the other. This is loose
// on purpose — "Smith" matches both "John Smith" and "Smith, J." — and
// short queries can over-match. Callers accept that tradeoff.
func Match(candidate, query string) bool {
	c := normalize(candidate)
	q := normalize(query)
	if c == "" || q == "" {
		return false
	}
	return strings.Contains(c, q) || strings.Contains(q, c)
}

// Select picks the representative author for a document. Preferred names
// are tried in priority order; for each, the author list is scanned in
// document order and the first match wins. With no preferred match the
// first listed author is used. Returns "" for an empty author list.
func Select(authorsList, preferred []string) string {
	for _, want := range preferred {
		for _, name := range authorsList {
			if Match(name, want) {
				return name
			}
		}
	}
	if len(authorsList) > 0 {
		return authorsList[0]
	}
	return ""
}

// Short derives the compact form of a full name used for title prefixes
// and group labels: a bare surname where one can be guessed.
//
//	"Smith"          -> "Smith"
//	"Bob Smith"      -> "Smith"
//	"Smith, J. R."   -> "Smith"
//	"Jan van Leeuwen" -> "Leeuwen"
func Short(full string) string {
	tokens := strings.Fields(full)
	switch len(tokens) {
	case 0:
		return ""
	case 1:
		return tokens[0]
	case 2:
		return tokens[1]
	}

	if strings.Contains(full, ",") {
		head := strings.SplitN(full, ",", 2)[0]
		return strings.TrimSpace(head)
	}
	return tokens[len(tokens)-1]
}
