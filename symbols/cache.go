package symbols

import "sync"

// Cache tracks how often each symbol fires across messages. The scoring
// core bumps the frequency after every successful insertion; consumers use
// the counters to reorder rule evaluation.
type Cache struct {
	mu   sync.RWMutex
	freq map[string]uint64
}

// NewCache creates an empty frequency cache
func NewCache() *Cache {
	return &Cache{freq: make(map[string]uint64)}
}

// IncFrequency increments the hit counter for a symbol
func (c *Cache) IncFrequency(symbol string) {
	c.mu.Lock()
	c.freq[symbol]++
	c.mu.Unlock()
}

// Frequency returns the hit counter for a symbol
func (c *Cache) Frequency(symbol string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.freq[symbol]
}
