package cost

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
	costdomain "github.com/perchlabs/perch/internal/domain/cost"
)

// Cache is a short-TTL in-process cache for assembled reports. Dashboard
// panels poll aggressively; one cached report per window keeps refreshes
// from re-running the whole query fan-out.
type Cache struct {
	c   *ristretto.Cache[string, *costdomain.Report]
	ttl time.Duration
}

// NewCache creates a report cache bounded to roughly maxSizeMB of report
// payload, expiring entries after ttl.
func NewCache(maxSizeMB int64, ttl time.Duration) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, *costdomain.Report]{
		NumCounters: 1 << 12,
		MaxCost:     maxSizeMB << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c, ttl: ttl}, nil
}

func (c *Cache) get(key string) (*costdomain.Report, bool) {
	return c.c.Get(key)
}

func (c *Cache) set(key string, r *costdomain.Report) {
	// Allocation items dominate report size; weigh entries by item count
	// so one pathological report cannot pin the whole budget.
	weight := int64(1+len(r.Items)) * 256
	c.c.SetWithTTL(key, r, weight, c.ttl)
}

// Invalidate drops the cached report so the next query recomputes.
func (c *Cache) Invalidate() {
	c.c.Del(cacheKeyReport)
}

// Close releases the cache's resources.
func (c *Cache) Close() {
	c.c.Close()
}
