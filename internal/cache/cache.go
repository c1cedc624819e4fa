// Package cache is the two-tier paper cache: a bounded in-process map in
// front of a durable store. The fast tier serves repeat page loads in the
// same session; the durable tier survives restarts.
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/lotas/arxivgruppen/internal/applog"
	"github.com/lotas/arxivgruppen/internal/types"
)

// Store is the durable tier. A miss is (nil, nil); errors are reserved
// for the store itself being unavailable.
type Store interface {
	Get(id string) (*types.Paper, error)
	Put(p *types.Paper) error
	Delete(id string) error
	All() ([]*types.Paper, error)
}

const (
	maxAge     = 30 * 24 * time.Hour
	memCap     = 100
	memEvict   = 20
	storeCap   = 200
	storeEvict = 50
)

// Cache holds both tiers. All methods are safe for concurrent use.
type Cache struct {
	mu    sync.Mutex
	mem   map[string]*types.Paper
	order []string // fast-tier insertion order, oldest first
	store Store

	now func() time.Time // test hook
}

// New returns a cache backed by the given durable store.
func New(store Store) *Cache {
	return &Cache{
		mem:   make(map[string]*types.Paper),
		store: store,
		now:   time.Now,
	}
}

// Get returns the cached paper for an id, or nil. A durable-tier hit
// younger than the retention window is promoted into the fast tier;
// anything older is dropped so the next load refetches. Store errors
// degrade to a miss.
func (c *Cache) Get(id string) *types.Paper {
	c.mu.Lock()
	if p, ok := c.mem[id]; ok {
		c.mu.Unlock()
		return p
	}
	c.mu.Unlock()

	p, err := c.store.Get(id)
	if err != nil {
		applog.Error("cache.get", err, "id", id)
		return nil
	}
	if p == nil {
		return nil
	}

	if c.now().Sub(p.FetchedAt) > maxAge {
		if err := c.store.Delete(id); err != nil {
			applog.Error("cache.expire", err, "id", id)
		}
		return nil
	}

	c.mu.Lock()
	c.insertLocked(p)
	c.mu.Unlock()
	return p
}

// Put writes a paper to both tiers, overwriting any previous record, and
// kicks off a durable-tier cleanup pass. Store failures are logged and
// the record stays available from the fast tier.
func (c *Cache) Put(p *types.Paper) {
	c.mu.Lock()
	c.insertLocked(p)
	c.mu.Unlock()

	if err := c.store.Put(p); err != nil {
		applog.Error("cache.put", err, "id", p.ID)
		return
	}

	go c.cleanupStore()
}

// Remove deletes a paper from both tiers. Used when a record turned out
// incomplete, so a future page load fetches fresh metadata.
func (c *Cache) Remove(id string) {
	c.mu.Lock()
	if _, ok := c.mem[id]; ok {
		delete(c.mem, id)
		for i, oid := range c.order {
			if oid == id {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
	c.mu.Unlock()

	if err := c.store.Delete(id); err != nil {
		applog.Error("cache.remove", err, "id", id)
	}
}

// Clear empties the fast tier and deletes every durable record.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.mem = make(map[string]*types.Paper)
	c.order = nil
	c.mu.Unlock()

	papers, err := c.store.All()
	if err != nil {
		applog.Error("cache.clear", err)
		return
	}
	for _, p := range papers {
		if err := c.store.Delete(p.ID); err != nil {
			applog.Error("cache.clear", err, "id", p.ID)
		}
	}
}

// Len reports the fast-tier entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.mem)
}

// Contains reports whether the fast tier holds an id.
func (c *Cache) Contains(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.mem[id]
	return ok
}

// insertLocked writes into the fast tier, evicting the oldest batch when
// the tier overflows. Overwriting an existing id keeps its original
// insertion slot.
func (c *Cache) insertLocked(p *types.Paper) {
	if _, ok := c.mem[p.ID]; !ok {
		c.order = append(c.order, p.ID)
	}
	c.mem[p.ID] = p

	if len(c.mem) > memCap {
		n := memEvict
		if n > len(c.order) {
			n = len(c.order)
		}
		for _, id := range c.order[:n] {
			delete(c.mem, id)
		}
		c.order = append([]string(nil), c.order[n:]...)
	}
}

// cleanupStore trims the durable tier to its capacity by dropping the
// records with the smallest timestamps. Errors are logged, never
// surfaced to the Put that triggered the pass.
func (c *Cache) cleanupStore() {
	papers, err := c.store.All()
	if err != nil {
		applog.Error("cache.cleanup", err)
		return
	}
	if len(papers) <= storeCap {
		return
	}

	sort.Slice(papers, func(i, j int) bool {
		return papers[i].FetchedAt.Before(papers[j].FetchedAt)
	})

	n := storeEvict
	if n > len(papers) {
		n = len(papers)
	}
	for _, p := range papers[:n] {
		if err := c.store.Delete(p.ID); err != nil {
			applog.Error("cache.cleanup", err, "id", p.ID)
		}
	}
	applog.Info("cache.cleanup", "evicted", n)
}
