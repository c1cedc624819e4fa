// Package group keeps the live mapping from representative author to
// browser tab group. The browser owns the groups themselves; this
// package owns the bookkeeping and reconciles it when groups disappear
// or empty out under us.
package group

import (
	"context"
	"errors"
	"sync"

	"github.com/lotas/arxivgruppen/internal/applog"
	"github.com/lotas/arxivgruppen/internal/authors"
	"github.com/lotas/arxivgruppen/internal/color"
)

// ErrNoGroup is returned by a Surface when the referenced group no
// longer exists in the browser.
var ErrNoGroup = errors.New("no such group")

// Surface is the browser side of tab grouping, implemented by the
// extension bridge. Every call crosses the WebSocket, so state observed
// before a call can be stale after it.
type Surface interface {
	CreateGroup(ctx context.Context, tabIDs []int) (int, error)
	AddToGroup(ctx context.Context, groupID int, tabIDs []int) error
	SetGroupAppearance(ctx context.Context, groupID int, label, colorName string) error
	GroupMembers(ctx context.Context, groupID int) ([]int, error)
}

// Coordinator tracks author→group and tab→author bindings for one
// browser session. Construct with New; Reset clears all bindings.
type Coordinator struct {
	mu      sync.Mutex
	surface Surface
	groups  map[string]int // author -> live group id
	tabs    map[int]string // tab id -> author
}

// New returns an empty coordinator over the given surface.
func New(surface Surface) *Coordinator {
	return &Coordinator{
		surface: surface,
		groups:  make(map[string]int),
		tabs:    make(map[int]string),
	}
}

// Assign puts a tab into the group for its representative author,
// creating the group on first sight of the author. A binding that turns
// out to point at a destroyed group is dropped and recreated once. An
// empty author leaves the tab ungrouped.
func (c *Coordinator) Assign(ctx context.Context, tabID int, author string, desc *color.Descriptor) error {
	if author == "" || desc == nil {
		return nil
	}

	c.mu.Lock()
	c.tabs[tabID] = author
	gid, bound := c.groups[author]
	c.mu.Unlock()

	if bound {
		err := c.surface.AddToGroup(ctx, gid, []int{tabID})
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrNoGroup) {
			return err
		}
		// The browser destroyed the group behind our back. Drop the
		// stale binding — unless a concurrent assign already rebound
		// the author — and fall through to recreation.
		applog.Info("group.stale", "author", author, "group", gid)
		c.mu.Lock()
		if cur, ok := c.groups[author]; ok && cur == gid {
			delete(c.groups, author)
		}
		c.mu.Unlock()
	}

	return c.createAndBind(ctx, tabID, author, desc)
}

// createAndBind makes a fresh group for the author with this tab as its
// first member. The binding map is re-checked after the Assign prologue
// because another in-flight Assign for the same author may have bound it
// while we were waiting on the browser.
func (c *Coordinator) createAndBind(ctx context.Context, tabID int, author string, desc *color.Descriptor) error {
	c.mu.Lock()
	gid, bound := c.groups[author]
	c.mu.Unlock()

	if bound {
		err := c.surface.AddToGroup(ctx, gid, []int{tabID})
		if err == nil || !errors.Is(err, ErrNoGroup) {
			return err
		}
		c.mu.Lock()
		if cur, ok := c.groups[author]; ok && cur == gid {
			delete(c.groups, author)
		}
		c.mu.Unlock()
	}

	gid, err := c.surface.CreateGroup(ctx, []int{tabID})
	if err != nil {
		return err
	}

	// Re-check after the awaited create: a concurrent assign for the
	// same author may have bound a group of its own meanwhile. Join the
	// winning group and leave the one we just made to the browser's
	// empty-group handling once the tab moves out.
	c.mu.Lock()
	if existing, rebound := c.groups[author]; rebound && existing != gid {
		c.mu.Unlock()
		applog.Info("group.abandoned", "author", author, "group", gid, "bound", existing)
		return c.surface.AddToGroup(ctx, existing, []int{tabID})
	}
	c.groups[author] = gid
	c.mu.Unlock()

	if err := c.surface.SetGroupAppearance(ctx, gid, authors.Short(author), color.Bucket(desc.Hue)); err != nil {
		// The group exists and holds the tab; a default appearance is
		// a cosmetic loss only.
		applog.Error("group.appearance", err, "group", gid)
	}

	applog.Info("group.created", "author", author, "group", gid)
	return nil
}

// OnTabRemoved drops the tab's author binding and, when the author's
// group is now empty and no other tab still claims the author, the group
// binding too. The browser's own empty-group handling is left alone; we
// only stop referencing it.
func (c *Coordinator) OnTabRemoved(ctx context.Context, tabID int) {
	c.mu.Lock()
	author, ok := c.tabs[tabID]
	delete(c.tabs, tabID)
	gid, bound := c.groups[author]
	c.mu.Unlock()

	if !ok || !bound {
		return
	}

	members, err := c.surface.GroupMembers(ctx, gid)
	if err != nil {
		if errors.Is(err, ErrNoGroup) {
			c.dropBinding(author, gid)
		} else {
			applog.Error("group.members", err, "group", gid)
		}
		return
	}
	if len(members) > 0 {
		return
	}

	// Re-check under the lock: an assign may have rebound the author or
	// queued another tab while we were querying.
	c.mu.Lock()
	if cur, ok := c.groups[author]; ok && cur == gid {
		pending := false
		for _, a := range c.tabs {
			if a == author {
				pending = true
				break
			}
		}
		if !pending {
			delete(c.groups, author)
			applog.Info("group.released", "author", author, "group", gid)
		}
	}
	c.mu.Unlock()
}

// AuthorFor returns the author currently assigned to a tab.
func (c *Coordinator) AuthorFor(tabID int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.tabs[tabID]
	return a, ok
}

// HasBinding reports whether an author currently owns a group.
func (c *Coordinator) HasBinding(author string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.groups[author]
	return ok
}

// ActiveGroups returns the number of live author→group bindings.
func (c *Coordinator) ActiveGroups() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.groups)
}

// Reset clears every binding. Used with cache clear; the browser-side
// groups are left to the browser.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	c.groups = make(map[string]int)
	c.tabs = make(map[int]string)
	c.mu.Unlock()
}

func (c *Coordinator) dropBinding(author string, gid int) {
	c.mu.Lock()
	if cur, ok := c.groups[author]; ok && cur == gid {
		delete(c.groups, author)
	}
	c.mu.Unlock()
}
