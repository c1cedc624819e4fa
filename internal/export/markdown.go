package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lotas/arxivgruppen/internal/types"
)

// byAuthor buckets papers by representative author, authors sorted
// alphabetically and an "Unattributed" bucket last.
func byAuthor(papers []*types.Paper) ([]string, map[string][]*types.Paper) {
	buckets := make(map[string][]*types.Paper)
	for _, p := range papers {
		key := p.Author
		if key == "" {
			key = "Unattributed"
		}
		buckets[key] = append(buckets[key], p)
	}

	var order []string
	for key := range buckets {
		if key != "Unattributed" {
			order = append(order, key)
		}
	}
	sort.Strings(order)
	if _, ok := buckets["Unattributed"]; ok {
		order = append(order, "Unattributed")
	}
	return order, buckets
}

// Markdown formats cached papers as a markdown document grouped by
// representative author.
func Markdown(papers []*types.Paper) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# arXiv Papers\n")
	fmt.Fprintf(&b, "> Exported %s\n", time.Now().Format("2006-01-02 15:04"))

	order, buckets := byAuthor(papers)
	for _, author := range order {
		group := buckets[author]
		n := len(group)
		noun := "papers"
		if n == 1 {
			noun = "paper"
		}
		fmt.Fprintf(&b, "\n## %s (%d %s)\n\n", author, n, noun)

		for _, p := range group {
			title := p.Title
			if title == "" {
				title = p.ID
			}
			line := fmt.Sprintf("- [%s](%s)", title, p.SourceURL)
			if p.Category != "" {
				line += " — " + p.Category
			}
			b.WriteString(line + "\n")
		}
	}

	return b.String()
}
