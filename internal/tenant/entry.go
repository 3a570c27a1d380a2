// internal/tenant/entry.go
//
// Tenant cache entry and aggregate.
//
// Context
// -------
// A live Tenant aggregates everything request handlers need to serve one
// public site: its `site` row, its key-value config map, and the tenancy
// flags classified from its host.  The cache stores a pointer to Tenant
// inside `entry`, along with a `lastSeen` UnixNano timestamp used by the
// evictor for idle and LRU eviction.
//
// Notes
// -----
//   - Handlers must treat Tenant as immutable after initial load.
package tenant

import (
	"github.com/guncelgiris/platform/internal/site"
)

//
// Cache entry
//

type entry struct {
	tenant   *Tenant
	lastSeen int64 // UnixNano
}

//
// Tenant aggregate
//

// Tenant groups the per-site runtime data needed by request handlers.
type Tenant struct {
	Site   site.Record       // Row from `site`
	Config map[string]string // Key-value pairs from `site_config`
	Flags  Context           // Classification of Site.Host
}

// Host returns the normalised hostname this tenant serves.
func (t *Tenant) Host() string { return t.Flags.Hostname }
