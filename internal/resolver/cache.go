package resolver

import (
	"strings"

	gocache "github.com/patrickmn/go-cache"
)

// Key spaces kept apart inside one go-cache instance. Chain outcomes and
// the direct lookups used by the email and assistant steps never collide.
const (
	chainPrefix  = "chain:"
	directPrefix = "direct:"
)

// Entry is a cached resolution. A nil Municipality is a definitive miss.
type Entry struct {
	Municipality *Municipality
	Method       Method
}

// Found reports whether the entry is positive.
func (e Entry) Found() bool {
	return e.Municipality != nil
}

// Cache memoizes resolution outcomes for the lifetime of one import run.
// Keys are normalized (trimmed, lowercased) municipality names.
type Cache struct {
	store *gocache.Cache
}

// NewCache creates an empty cache whose entries never expire.
func NewCache() *Cache {
	return &Cache{store: gocache.New(gocache.NoExpiration, 0)}
}

// Normalize returns the cache key for a municipality name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Get returns the cached chain outcome for name.
func (c *Cache) Get(name string) (Entry, bool) {
	return c.get(chainPrefix + Normalize(name))
}

// Put stores the chain outcome for name, positive or negative.
func (c *Cache) Put(name string, e Entry) {
	c.store.Set(chainPrefix+Normalize(name), e, gocache.NoExpiration)
}

// getDirect returns a memoized exact lookup.
func (c *Cache) getDirect(name string) (Entry, bool) {
	return c.get(directPrefix + Normalize(name))
}

func (c *Cache) putDirect(name string, e Entry) {
	c.store.Set(directPrefix+Normalize(name), e, gocache.NoExpiration)
}

func (c *Cache) get(key string) (Entry, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return Entry{}, false
	}
	e, ok := v.(Entry)
	return e, ok
}

// Len returns the number of memoized chain outcomes.
func (c *Cache) Len() int {
	n := 0
	for key := range c.store.Items() {
		if strings.HasPrefix(key, chainPrefix) {
			n++
		}
	}
	return n
}

// Reset drops every entry.
func (c *Cache) Reset() {
	c.store.Flush()
}
