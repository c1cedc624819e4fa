// Package arxiv knows arXiv URL shapes and fetches paper metadata from
// abstract pages when the extension could only see a metadata-free
// rendering (PDF viewer, HTML5 view).
package arxiv

import (
	"net/url"
	"regexp"
	"strings"
)

// versionSuffix matches a trailing version marker like "v2".
var versionSuffix = regexp.MustCompile(`v\d+$`)

// newStyleID matches modern identifiers like "2401.12345".
var newStyleID = regexp.MustCompile(`^\d{4}\.\d{4,5}$`)

// oldStyleID matches pre-2007 identifiers like "math/0211159" or
// "cond-mat.str-el/0211159".
var oldStyleID = regexp.MustCompile(`^[a-z-]+(\.[A-Za-z-]+)?/\d{7}$`)

// IDFromURL extracts the arXiv identifier from a paper URL. It accepts
// /abs/ and /pdf/ paths on arxiv.org and its export mirror, with or
// without a trailing version or ".pdf" suffix. ok is false for anything
// that is not an arXiv paper URL.
func IDFromURL(rawURL string) (id string, ok bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	if host != "arxiv.org" && !strings.HasSuffix(host, ".arxiv.org") {
		return "", false
	}

	path := strings.Trim(u.Path, "/")
	var rest string
	switch {
	case strings.HasPrefix(path, "abs/"):
		rest = path[len("abs/"):]
	case strings.HasPrefix(path, "pdf/"):
		rest = path[len("pdf/"):]
	case strings.HasPrefix(path, "html/"):
		rest = path[len("html/"):]
	default:
		return "", false
	}

	rest = strings.TrimSuffix(rest, ".pdf")
	rest = versionSuffix.ReplaceAllString(rest, "")

	if rest == "" {
		return "", false
	}
	if !newStyleID.MatchString(rest) && !oldStyleID.MatchString(rest) {
		return "", false
	}
	return rest, true
}

// AbsURL returns the canonical abstract-page URL for an identifier.
func AbsURL(id string) string {
	return "https://arxiv.org/abs/" + id
}

// PlaceholderTitle is the display title used when metadata for a paper
// cannot be fetched at all.
func PlaceholderTitle(id string) string {
	return "arXiv:" + id
}
