package tenant

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/singleflight"

	"github.com/guncelgiris/platform/internal/config"
	"github.com/guncelgiris/platform/internal/metrics"
)

// Static defaults.  Override via the Cache constructor if desired.
const (
	IdleTTL       = 30 * time.Minute
	MaxEntries    = 100
	EvictInterval = 5 * time.Minute
)

// ErrNotFound is returned when a host is not present in the site table.
// Callers fall back to the global catalogue rather than failing the page.
var ErrNotFound = errors.New("tenant not found")

// Cache lazily loads tenants, stores them in a sync.Map, and evicts them on
// idle TTL or LRU pressure.
type Cache struct {
	globalDB    *sqlx.DB
	adm         config.Admin
	sfg         singleflight.Group
	m           sync.Map
	evictTicker *time.Ticker
	idleTTL     time.Duration
	maxEntries  int
}

// New constructs a Cache and starts the background evictor.
func New(global *sqlx.DB, adm config.Admin, idleTTL time.Duration, maxEntries int) *Cache {
	c := &Cache{
		globalDB:   global,
		adm:        adm,
		idleTTL:    idleTTL,
		maxEntries: maxEntries,
	}
	c.evictTicker = time.NewTicker(EvictInterval)
	go c.evictLoop()
	return c
}

// Get returns the Tenant for host, loading it on demand.  The host is
// normalised before lookup, so "WWW.Example.COM:443" and "www.example.com"
// share one entry.
func (c *Cache) Get(host string) (*Tenant, error) {
	key := Normalize(host)

	if v, ok := c.m.Load(key); ok {
		ent := v.(*entry)
		atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
		return ent.tenant, nil
	}

	v, err, _ := c.sfg.Do(key, func() (interface{}, error) {
		// Double-check after singleflight barrier.
		if v, ok := c.m.Load(key); ok {
			ent := v.(*entry)
			atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
			return ent.tenant, nil
		}
		ten, err := loadTenant(context.Background(), c.globalDB, key, c.adm)
		if err != nil {
			metrics.TenantLoadErrorsTotal.Inc()
			return nil, err
		}
		ent := &entry{
			tenant:   ten,
			lastSeen: time.Now().UnixNano(),
		}
		c.m.Store(key, ent)
		metrics.TenantLoadTotal.Inc()
		metrics.ActiveTenants.Inc()
		return ten, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Tenant), nil
}

// Invalidate drops the entry for host so the next request reloads it.
// Used after admin edits to a site row.
func (c *Cache) Invalidate(host string) {
	key := Normalize(host)
	if _, ok := c.m.LoadAndDelete(key); ok {
		metrics.ActiveTenants.Dec()
	}
}

// Close stops the background evictor.
func (c *Cache) Close() {
	c.evictTicker.Stop()
}
