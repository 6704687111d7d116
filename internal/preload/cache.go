// Package preload fetches the content of the entry after the cursor ahead of
// time. The cache holds a single value keyed by queue index; every value also
// remembers the entry name it was fetched for so a shifted index can never
// serve the wrong file.
package preload

import (
	"path/filepath"
	"sync"

	"winnow/internal/log"
	"winnow/internal/media"
	"winnow/pkg/types"
)

// Lister is the read side of the queue the cache needs.
type Lister interface {
	Len() int
	At(i int) (types.Entry, bool)
}

type slot struct {
	index   int
	name    string
	content Content
}

type pending struct {
	name     string
	gen      uint64
	canceled bool
}

// Cache is a capacity-one, index-keyed preload cache.
type Cache struct {
	mu       sync.Mutex
	dir      string
	loader   Loader
	value    *slot
	inflight map[int]*pending
	gen      uint64
	closed   bool
	wg       sync.WaitGroup
}

// New creates a cache loading entries of dir through loader. A nil loader
// selects an ImageLoader with 2048px previews.
func New(dir string, loader Loader) *Cache {
	if loader == nil {
		loader = NewImageLoader(2048)
	}
	return &Cache{
		dir:      dir,
		loader:   loader,
		inflight: make(map[int]*pending),
	}
}

// Request starts loading the entry at index in the background. It does
// nothing for out-of-range indexes, entries not worth caching, or entries
// already cached or in flight.
func (c *Cache) Request(q Lister, index int) {
	if index < 0 || index >= q.Len() {
		return
	}
	entry, ok := q.At(index)
	if !ok || entry.IsDir || !media.CacheWorthy(entry.Class) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.value != nil && c.value.index == index && c.value.name == entry.Name {
		return
	}
	if p, ok := c.inflight[index]; ok {
		if p.name == entry.Name {
			return
		}
		p.canceled = true
	}

	p := &pending{name: entry.Name, gen: c.gen}
	c.inflight[index] = p
	c.wg.Add(1)
	go c.load(index, p)
}

func (c *Cache) load(index int, p *pending) {
	defer c.wg.Done()

	content, err := c.loader.Load(filepath.Join(c.dir, p.name))

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[index] == p {
		delete(c.inflight, index)
	}
	if err != nil {
		log.LogWithError(err).Debug("Preload failed")
		return
	}
	if p.canceled || p.gen != c.gen || c.closed {
		log.LogWithFields(log.F("index", index), log.F("name", p.name)).Debug("Discarding stale preload")
		return
	}
	content.Name = p.name
	c.value = &slot{index: index, name: p.name, content: content}
}

// Take removes and returns the content cached for index, provided it was
// fetched for name.
func (c *Cache) Take(index int, name string) (Content, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.value == nil || c.value.index != index {
		return Content{}, false
	}
	v := c.value
	c.value = nil
	if v.name != name {
		log.LogWithFields(log.F("index", index), log.F("cached", v.name), log.F("wanted", name)).
			Warn("Preload cache held content for a different entry")
		return Content{}, false
	}
	return v.content, true
}

// Cached reports whether content for index is ready.
func (c *Cache) Cached(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value != nil && c.value.index == index
}

// Invalidate drops index and cancels a load in flight for it.
func (c *Cache) Invalidate(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.value != nil && c.value.index == index {
		c.value = nil
	}
	if p, ok := c.inflight[index]; ok {
		p.canceled = true
		delete(c.inflight, index)
	}
}

// Clear drops everything, including loads in flight.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = nil
	c.gen++
	c.inflight = make(map[int]*pending)
}

// Wait blocks until every load in flight has finished.
func (c *Cache) Wait() {
	c.wg.Wait()
}

// Close stops accepting requests and waits for loads in flight.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closed = true
	c.value = nil
	c.mu.Unlock()
	c.wg.Wait()
}
