package session

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Store is the in-memory map of live sessions, the sole owner of Session
// values (spec.md §3 "Ownership"). At most one turn executes on a given
// session at a time, enforced here via a per-session lock token.
//
// Eviction is bounded by maxInMemory using an LRU policy, generalizing the
// teacher's hand-rolled access-time sort (DESIGN.md) into an actual O(1)
// LRU so long-running daemons do not accumulate unbounded session objects.
type Store struct {
	mu      sync.Mutex
	cache   *lru.Cache[string, *Session]
	locked  map[string]bool
}

// NewStore creates a Store holding at most maxInMemory sessions; evicted
// sessions are not deleted from disk, only from the in-memory map — they
// remain resumable via internal/persistence.
func NewStore(maxInMemory int) *Store {
	if maxInMemory <= 0 {
		maxInMemory = 64
	}
	cache, _ := lru.New[string, *Session](maxInMemory)
	return &Store{cache: cache, locked: make(map[string]bool)}
}

// Put inserts or replaces a session in the store.
func (st *Store) Put(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.cache.Add(s.ID, s)
}

// Get retrieves a session by id.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.cache.Get(id)
}

// Has reports whether a session is currently resident in memory.
func (st *Store) Has(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.cache.Contains(id)
}

// Delete removes a session from the in-memory map.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.cache.Remove(id)
	delete(st.locked, id)
}

// List returns the ids of every session currently resident in memory.
func (st *Store) List() []string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.cache.Keys()
}

// Acquire marks id as having an in-flight turn. It fails if a turn is
// already running on that session (spec.md §3 "At most one turn may
// execute on a given session at a time").
func (st *Store) Acquire(id string) (release func(), err error) {
	st.mu.Lock()
	if st.locked[id] {
		st.mu.Unlock()
		return nil, fmt.Errorf("session %s already has a turn in progress", id)
	}
	st.locked[id] = true
	st.mu.Unlock()

	return func() {
		st.mu.Lock()
		delete(st.locked, id)
		st.mu.Unlock()
	}, nil
}
