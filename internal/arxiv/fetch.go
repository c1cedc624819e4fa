package arxiv

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Meta is the metadata scraped from an abstract page.
type Meta struct {
	Title      string
	RawAuthors string // comma-joined, ready for authors.Parse
	Category   string // primary subject line, e.g. "Computation and Language (cs.CL)"
}

// Client fetches abstract pages. BaseURL is overridable for tests.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a client against arxiv.org with a sane timeout.
func NewClient() *Client {
	return &Client{
		BaseURL: "https://arxiv.org",
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Fetch downloads and parses the abstract page for an identifier. A
// failed fetch returns an error; the caller falls back to a placeholder
// title.
func (c *Client) Fetch(ctx context.Context, id string) (*Meta, error) {
	pageURL := c.BaseURL + "/abs/" + id

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", "arxivgruppen/1.0")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch %s: HTTP %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", pageURL, err)
	}

	meta := parsePage(body)
	if meta.Title == "" {
		// No citation meta tags (error page, layout change) — let
		// readability salvage a title so the tab is still labeled.
		if article, rerr := readability.FromReader(bytes.NewReader(body), nil); rerr == nil {
			meta.Title = strings.TrimSpace(article.Title)
		}
	}
	if meta.Title == "" {
		return nil, fmt.Errorf("no metadata on %s", pageURL)
	}

	return meta, nil
}

// parsePage extracts citation meta tags and the primary subject from an
// abstract page.
func parsePage(body []byte) *Meta {
	meta := &Meta{}
	var authorNames []string

	z := html.NewTokenizer(bytes.NewReader(body))
	var inPrimarySubject bool
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "meta":
				name, content := attr(tok, "name"), attr(tok, "content")
				switch name {
				case "citation_title":
					if meta.Title == "" {
						meta.Title = strings.TrimSpace(content)
					}
				case "citation_author":
					if v := strings.TrimSpace(content); v != "" {
						authorNames = append(authorNames, v)
					}
				}
			case "span":
				if strings.Contains(attr(tok, "class"), "primary-subject") {
					inPrimarySubject = true
				}
			}
		case html.TextToken:
			if inPrimarySubject && meta.Category == "" {
				meta.Category = strings.TrimSpace(string(z.Text()))
			}
		case html.EndTagToken:
			if z.Token().Data == "span" {
				inPrimarySubject = false
			}
		}
	}

	// citation_author values come as "Last, First", one tag per author.
	// Flip them so the comma-splitting parser sees one name per fragment.
	var flipped []string
	for _, n := range authorNames {
		flipped = append(flipped, flipName(n))
	}
	meta.RawAuthors = strings.Join(flipped, ", ")

	return meta
}

// flipName turns "Last, First" into "First Last"; names without a comma
// pass through unchanged.
func flipName(n string) string {
	parts := strings.SplitN(n, ",", 2)
	if len(parts) != 2 {
		return strings.TrimSpace(n)
	}
	first := strings.TrimSpace(parts[1])
	last := strings.TrimSpace(parts[0])
	if first == "" {
		return last
	}
	return first + " " + last
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
