package ledger

import (
	"sync"
)

// Store is an in-memory registry of active ledgers keyed by ledger id. It is
// safe for concurrent use; the ledgers themselves carry their own locking.
// State lives only for the process lifetime, which matches the session-scoped
// lifecycle of a statement review.
type Store struct {
	mu      sync.RWMutex
	ledgers map[string]*Ledger
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{ledgers: make(map[string]*Ledger)}
}

// Put registers a ledger under its own id.
func (s *Store) Put(l *Ledger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledgers[l.ID()] = l
}

// Get returns the ledger for id, if present.
func (s *Store) Get(id string) (*Ledger, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.ledgers[id]
	return l, ok
}

// Delete discards a whole ledger. Individual records are never deleted; this
// is the only destruction path.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ledgers, id)
}

// Len reports how many ledgers are active.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ledgers)
}
