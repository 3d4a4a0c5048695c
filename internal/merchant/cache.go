package merchant

import "time"

// Entry is one learned merchant-to-category mapping.
type Entry struct {
	CategoryCode string
	LearnedFrom  string // transaction ID of the reconciliation that taught it
	LearnedAt    time.Time
}

// Cache maps normalized merchant keys to previously confirmed category codes.
// It grows only through reconciliation: Learn is called when a human confirms
// or corrects a suggestion, never from an AI response.
type Cache struct {
	entries map[string]Entry
}

// NewCache creates a Cache from previously persisted entries.
func NewCache(entries map[string]Entry) *Cache {
	c := &Cache{entries: make(map[string]Entry, len(entries))}
	for k, e := range entries {
		c.entries[k] = e
	}
	return c
}

// Lookup returns the learned category code for a merchant key.
func (c *Cache) Lookup(key string) (string, bool) {
	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	return e.CategoryCode, true
}

// Learn records a human decision for a merchant key, overwriting any
// existing entry. Last reconciliation wins.
func (c *Cache) Learn(key, categoryCode, transactionID string) {
	c.entries[key] = Entry{
		CategoryCode: categoryCode,
		LearnedFrom:  transactionID,
		LearnedAt:    time.Now().UTC(),
	}
}

// Replace swaps the cache contents for the given entries. Used to restore
// a snapshot when a persistence write fails after a Learn.
func (c *Cache) Replace(entries map[string]Entry) {
	c.entries = make(map[string]Entry, len(entries))
	for k, e := range entries {
		c.entries[k] = e
	}
}

// Entries returns a copy of all cache entries, keyed by merchant key.
func (c *Cache) Entries() map[string]Entry {
	out := make(map[string]Entry, len(c.entries))
	for k, e := range c.entries {
		out[k] = e
	}
	return out
}

// Len returns the number of learned merchants.
func (c *Cache) Len() int {
	return len(c.entries)
}
