package types

import "time"

// Paper is the cached record for one arXiv document.
type Paper struct {
	ID         string    // arXiv identifier, e.g. "2401.12345" or "math/0211159"
	Title      string    // original page title, without our decorations
	RawAuthors string    // author list as extracted from the page
	Authors    []string  // parsed, normalized author names in document order
	Author     string    // representative author; empty if none resolved
	Category   string    // primary subject line, e.g. "Computation and Language (cs.CL)"
	SourceURL  string
	FetchedAt  time.Time
}

// PageLoad is a page-load event from the extension: one tab finished
// loading an arXiv page, with whatever metadata its content script could
// scrape. Authors and Category are empty for non-abs renderings (PDF,
// HTML5 viewer).
type PageLoad struct {
	TabID    int
	URL      string
	Title    string
	Authors  string // raw comma-separated author text
	Category string
}

// OpenTab describes one open browser tab, as reported in a snapshot.
type OpenTab struct {
	TabID int
	URL   string
	Title string
}

// Profile represents a Firefox profile (offline scan mode).
type Profile struct {
	Name       string
	Path       string // absolute path to profile directory
	IsDefault  bool
	IsRelative bool
}

// Stats holds aggregate counts shown in the TUI status line.
type Stats struct {
	CachedPapers int
	ActiveGroups int
	OpenTabs     int
}
