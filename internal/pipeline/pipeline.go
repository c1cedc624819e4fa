// Package pipeline runs the per-tab flow: page-load event in, retitled
// and grouped tab out. Each step re-validates browser state after
// waiting on anything, because tabs navigate and close while we work.
package pipeline

import (
	"context"
	"time"

	"github.com/lotas/arxivgruppen/internal/applog"
	"github.com/lotas/arxivgruppen/internal/arxiv"
	"github.com/lotas/arxivgruppen/internal/authors"
	"github.com/lotas/arxivgruppen/internal/cache"
	"github.com/lotas/arxivgruppen/internal/color"
	"github.com/lotas/arxivgruppen/internal/group"
	"github.com/lotas/arxivgruppen/internal/prefs"
	"github.com/lotas/arxivgruppen/internal/title"
	"github.com/lotas/arxivgruppen/internal/types"
)

// TabSurface is the per-tab part of the extension bridge.
type TabSurface interface {
	SetTabTitle(ctx context.Context, tabID int, text string) error
	TabURL(ctx context.Context, tabID int) (string, error)
}

// Fetcher loads paper metadata for documents whose open rendering
// carries none (PDF view).
type Fetcher interface {
	Fetch(ctx context.Context, id string) (*arxiv.Meta, error)
}

// Pipeline wires the cache, preference list, coordinator and bridge
// into the event flow.
type Pipeline struct {
	Cache   *cache.Cache
	Prefs   *prefs.Prefs
	Coord   *group.Coordinator
	Tabs    TabSurface
	Fetcher Fetcher
}

// HandlePageLoad processes one page-load event. Non-arXiv URLs are
// ignored. Every failure mode degrades: missing metadata falls back to
// the cache, then a remote fetch, then a placeholder title; a tab that
// navigated away mid-flight is simply left alone.
func (p *Pipeline) HandlePageLoad(ctx context.Context, ev types.PageLoad) {
	id, ok := arxiv.IDFromURL(ev.URL)
	if !ok {
		return
	}

	rec := p.resolve(ctx, id, ev)

	rec.Author = authors.Select(rec.Authors, p.Prefs.List())
	display := title.Compose(rec.Title, rec.Author, rec.Category)

	if rec.Author == "" && len(rec.Authors) == 0 {
		// Incomplete record — drop it so the next load refetches
		// instead of serving a cached placeholder.
		p.Cache.Remove(id)
	} else {
		p.Cache.Put(rec)
	}

	// The tab may have navigated away while we were parsing or
	// fetching; never apply a stale result to whatever it shows now.
	if !p.stillShowing(ctx, ev.TabID, id) {
		applog.Info("pipeline.stale", "tab", ev.TabID, "id", id)
		return
	}

	if err := p.Tabs.SetTabTitle(ctx, ev.TabID, display); err != nil {
		applog.Error("pipeline.title", err, "tab", ev.TabID)
		return
	}

	if err := p.Coord.Assign(ctx, ev.TabID, rec.Author, color.For(rec.Author)); err != nil {
		applog.Error("pipeline.assign", err, "tab", ev.TabID, "author", rec.Author)
	}
}

// resolve builds the paper record for an event, preferring the
// extension's own extraction, then the cache, then a remote fetch, then
// a bare placeholder.
func (p *Pipeline) resolve(ctx context.Context, id string, ev types.PageLoad) *types.Paper {
	if ev.Authors != "" {
		return &types.Paper{
			ID:         id,
			Title:      ev.Title,
			RawAuthors: ev.Authors,
			Authors:    authors.Parse(ev.Authors),
			Category:   ev.Category,
			SourceURL:  ev.URL,
			FetchedAt:  time.Now(),
		}
	}

	if cached := p.Cache.Get(id); cached != nil {
		return cached
	}

	if p.Fetcher != nil {
		meta, err := p.Fetcher.Fetch(ctx, id)
		if err == nil {
			return &types.Paper{
				ID:         id,
				Title:      meta.Title,
				RawAuthors: meta.RawAuthors,
				Authors:    authors.Parse(meta.RawAuthors),
				Category:   meta.Category,
				SourceURL:  arxiv.AbsURL(id),
				FetchedAt:  time.Now(),
			}
		}
		applog.Error("pipeline.fetch", err, "id", id)
	}

	return &types.Paper{
		ID:        id,
		Title:     arxiv.PlaceholderTitle(id),
		SourceURL: ev.URL,
		FetchedAt: time.Now(),
	}
}

// stillShowing checks that a tab still displays the given document.
func (p *Pipeline) stillShowing(ctx context.Context, tabID int, id string) bool {
	url, err := p.Tabs.TabURL(ctx, tabID)
	if err != nil {
		return false
	}
	cur, ok := arxiv.IDFromURL(url)
	return ok && cur == id
}

// HandleTabRemoved forwards a tab-close event to the coordinator.
func (p *Pipeline) HandleTabRemoved(ctx context.Context, tabID int) {
	p.Coord.OnTabRemoved(ctx, tabID)
}

// RerunTab re-runs extraction for one tab, e.g. after the preferred
// list changed.
func (p *Pipeline) RerunTab(ctx context.Context, tabID int) {
	url, err := p.Tabs.TabURL(ctx, tabID)
	if err != nil {
		applog.Error("pipeline.rerun", err, "tab", tabID)
		return
	}
	p.HandlePageLoad(ctx, types.PageLoad{TabID: tabID, URL: url})
}

// RerunAll re-runs the flow for every open arXiv tab. Author selection
// happens against the current preferred list, so this is how a changed
// list propagates to already-open tabs.
func (p *Pipeline) RerunAll(ctx context.Context, tabs []types.OpenTab) {
	for _, tab := range tabs {
		if _, ok := arxiv.IDFromURL(tab.URL); !ok {
			continue
		}
		p.HandlePageLoad(ctx, types.PageLoad{TabID: tab.TabID, URL: tab.URL})
	}
}
