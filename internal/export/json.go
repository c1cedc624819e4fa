package export

import (
	"encoding/json"
	"time"

	"github.com/lotas/arxivgruppen/internal/types"
)

type jsonExport struct {
	ExportedAt time.Time   `json:"exported_at"`
	Authors    []jsonGroup `json:"authors"`
}

type jsonGroup struct {
	Author string      `json:"author"`
	Papers []jsonPaper `json:"papers"`
}

type jsonPaper struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Authors   []string  `json:"authors,omitempty"`
	Category  string    `json:"category,omitempty"`
	URL       string    `json:"url"`
	FetchedAt time.Time `json:"fetched_at"`
}

// JSON formats cached papers as a JSON document grouped by
// representative author.
func JSON(papers []*types.Paper) (string, error) {
	order, buckets := byAuthor(papers)

	out := jsonExport{
		ExportedAt: time.Now(),
		Authors:    make([]jsonGroup, 0, len(order)),
	}
	for _, author := range order {
		group := jsonGroup{Author: author, Papers: make([]jsonPaper, 0, len(buckets[author]))}
		for _, p := range buckets[author] {
			group.Papers = append(group.Papers, jsonPaper{
				ID:        p.ID,
				Title:     p.Title,
				Authors:   p.Authors,
				Category:  p.Category,
				URL:       p.SourceURL,
				FetchedAt: p.FetchedAt,
			})
		}
		out.Authors = append(out.Authors, group)
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
