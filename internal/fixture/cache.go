// Package fixture implements the two halves of the fixture contract:
// the in-host memoizer that guarantees at-most-one invocation per
// resolved-argument tuple, and the outer-process definition that only
// ever builds call expressions.
package fixture

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/funvibe/hostbridge/internal/registry"
)

// Cache memoizes one fixture's results for the lifetime of a host
// process. Keys are derived from the resolved positional arguments; the
// cache grows monotonically and is never evicted.
type Cache struct {
	entries map[string]any
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]any)}
}

// Key derives the cache key for a resolved positional-argument tuple.
// Go's value formatting sorts map keys, so equal values produce equal
// keys; the digest keeps keys bounded regardless of argument size.
func (c *Cache) Key(args []any) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%#v", args)))
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached result for key, if present.
func (c *Cache) Lookup(key string) (any, bool) {
	v, ok := c.entries[key]
	return v, ok
}

// Store records the result for key.
func (c *Cache) Store(key string, value any) {
	c.entries[key] = value
}

// Len returns the number of distinct argument tuples seen.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Memoize wraps fn with a private Cache so that repeated calls with an
// identical resolved-argument tuple return the cached result without
// re-invoking fn. Keyword arguments do not participate in the key:
// fixture invocations never carry them.
func Memoize(fn registry.Func) registry.Func {
	cache := NewCache()
	return func(args []any, kwargs map[string]any) (any, error) {
		key := cache.Key(args)
		if v, ok := cache.Lookup(key); ok {
			return v, nil
		}
		v, err := fn(args, kwargs)
		if err != nil {
			return nil, err
		}
		cache.Store(key, v)
		return v, nil
	}
}
