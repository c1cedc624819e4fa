package arxiv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const absPage = `<!DOCTYPE html>
<html>
<head>
<meta name="citation_title" content="Attention Is All You Need" />
<meta name="citation_author" content="Vaswani, Ashish" />
<meta name="citation_author" content="Shazeer, Noam" />
</head>
<body>
<td class="tablecell subjects">
<span class="primary-subject">Computation and Language (cs.CL)</span>; Machine Learning (cs.LG)
</td>
</body>
</html>`

func TestFetchParsesAbsPage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/abs/1706.03762" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(absPage))
	}))
	defer ts.Close()

	c := NewClient()
	c.BaseURL = ts.URL

	meta, err := c.Fetch(context.Background(), "1706.03762")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if meta.Title != "Attention Is All You Need" {
		t.Errorf("Title = %q", meta.Title)
	}
	if meta.RawAuthors != "Ashish Vaswani, Noam Shazeer" {
		t.Errorf("RawAuthors = %q", meta.RawAuthors)
	}
	if meta.Category != "Computation and Language (cs.CL)" {
		t.Errorf("Category = %q", meta.Category)
	}
}

func TestFetchHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewClient()
	c.BaseURL = ts.URL

	if _, err := c.Fetch(context.Background(), "0000.00000"); err == nil {
		t.Fatal("expected error for HTTP 404")
	}
}

func TestFetchNoMetadata(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><head></head><body></body></html>"))
	}))
	defer ts.Close()

	c := NewClient()
	c.BaseURL = ts.URL

	if _, err := c.Fetch(context.Background(), "2401.00001"); err == nil {
		t.Fatal("expected error for page without metadata")
	}
}
