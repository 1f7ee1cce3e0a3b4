// Package history tracks answered queries for the wrapper's history
// endpoints.
package history

import (
	"sync"
	"time"
)

// Entry records one answered query.
type Entry struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Summary   string    `json:"summary,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is an in-memory query history, cleared as a whole or not at all.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewStore bootstraps an empty history.
func NewStore() *Store {
	return &Store{entries: make([]Entry, 0, 32)}
}

// Record appends an entry, stamping it if the caller did not.
func (s *Store) Record(entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
}

// List returns a copy of all entries in record order.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]Entry, len(s.entries))
	copy(copied, s.entries)
	return copied
}

// Clear drops all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = s.entries[:0]
	s.mu.Unlock()
}

// Len reports the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
