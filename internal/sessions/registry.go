package sessions

import (
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/foodcart/internal/cart"
)

const defaultIdleTTL = 2 * time.Hour

// Registry owns one cart per browser session. Carts live in process memory only.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	idleTTL time.Duration
	now     func() time.Time
}

type entry struct {
	store    *cart.Store
	lastSeen time.Time
}

// NewRegistry returns an empty registry evicting carts idle for longer than idleTTL.
func NewRegistry(idleTTL time.Duration) *Registry {
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	return &Registry{
		entries: make(map[string]*entry),
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Cart returns the session's cart, creating an empty one on first use, and marks the session active.
func (r *Registry) Cart(sessionID string) *cart.Store {
	sessionID = strings.TrimSpace(sessionID)

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[sessionID]
	if !ok {
		e = &entry{store: cart.NewStore()}
		r.entries[sessionID] = e
	}
	e.lastSeen = r.now()
	return e.store
}

// Lookup returns the session's cart without creating one. A found session is marked active.
func (r *Registry) Lookup(sessionID string) (*cart.Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[strings.TrimSpace(sessionID)]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.store, true
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep evicts sessions idle since before now minus the idle TTL and returns how many were removed.
func (r *Registry) Sweep(now time.Time) int {
	cutoff := now.Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			removed++
		}
	}
	return removed
}
