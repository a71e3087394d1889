package catalog

import (
	"fmt"

	"github.com/dgraph-io/ristretto"
)

// Cache keeps built catalogs keyed by (catalog version, reward multiplier).
// Building is deterministic for a given key, so a miss only costs a rebuild.
type Cache struct {
	c *ristretto.Cache
}

// NewCache creates a cache holding up to maxEntries built catalogs.
func NewCache(maxEntries int64) (*Cache, error) {
	if maxEntries <= 0 {
		maxEntries = 16
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10, // keys to track frequency of
		MaxCost:     maxEntries,
		BufferItems: 64, // keys per Get buffer
	})
	if err != nil {
		return nil, fmt.Errorf("init catalog cache: %w", err)
	}
	return &Cache{c: c}, nil
}

func cacheKey(version uint64, multiplier float64) string {
	return fmt.Sprintf("catalog:%d:%g", version, multiplier)
}

// Get returns the catalog built for version and multiplier, if cached.
func (c *Cache) Get(version uint64, multiplier float64) (*Catalog, bool) {
	v, ok := c.c.Get(cacheKey(version, multiplier))
	if !ok {
		return nil, false
	}
	cat, ok := v.(*Catalog)
	return cat, ok
}

// Set stores cat under its own version and multiplier.
func (c *Cache) Set(cat *Catalog) {
	c.c.Set(cacheKey(cat.Version, cat.Multiplier), cat, 1)
	c.c.Wait()
}

// Clear drops every cached catalog.
func (c *Cache) Clear() {
	c.c.Clear()
}

func (c *Cache) Close() {
	c.c.Close()
}
