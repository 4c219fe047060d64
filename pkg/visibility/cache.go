package visibility

const defaultCacheSize = 512

// boundedCache is a fixed-capacity memoization map with FIFO eviction.
// Eviction order is a performance detail only; correctness comes from the
// key embedding the serialized values.
type boundedCache struct {
	capacity int
	entries  map[string]bool
	order    []string
}

func newBoundedCache(capacity int) *boundedCache {
	return &boundedCache{
		capacity: capacity,
		entries:  make(map[string]bool, capacity),
	}
}

func (c *boundedCache) get(key string) (bool, bool) {
	value, ok := c.entries[key]
	return value, ok
}

func (c *boundedCache) put(key string, value bool) {
	if _, exists := c.entries[key]; exists {
		c.entries[key] = value
		return
	}
	if len(c.entries) >= c.capacity && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = value
	c.order = append(c.order, key)
}
