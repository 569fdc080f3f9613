package entities

import (
	"time"

	"github.com/paulmach/orb"
)

// Boundary is a city's administrative reference shape held in the resolver
// cache. Entries are replaced on refresh, never mutated.
type Boundary struct {
	City      string // normalized cache key
	Geometry  orb.Geometry
	FetchedAt time.Time
	TTL       time.Duration
}

// Expired reports whether the entry is older than its TTL at the given time
func (b *Boundary) Expired(now time.Time) bool {
	return now.Sub(b.FetchedAt) >= b.TTL
}
