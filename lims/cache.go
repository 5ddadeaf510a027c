package lims

import "sync"

type cacheKey struct {
	kind string
	uri  string
}

// A Cache holds at most one entity per kind and URI. URIs are compared
// verbatim: an artifact URI carrying a state query parameter names a
// different entry than the same URI without it.
//
// Entries are never evicted; a Cache lives as long as its Session.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey]Resource
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]Resource)}
}

// Len returns the number of cached entities.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Lookup returns the cached entity of kind at uri.
func (c *Cache) Lookup(kind *Kind, uri string) (Resource, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[cacheKey{kind.Name, uri}]
	return r, ok
}

// lookupOrInsert returns the cached entity for kind and uri, calling
// build to create and insert it if there is none. The check and the
// insert happen under one lock.
func (c *Cache) lookupOrInsert(kind *Kind, uri string, build func() Resource) Resource {
	key := cacheKey{kind.Name, uri}
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.entries[key]; ok {
		return r
	}
	r := build()
	c.entries[key] = r
	return r
}
